package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Mood is one of the closed set of emotional states a transition can start or end on.
type Mood string

const (
	MoodFeliz       Mood = "Feliz"
	MoodTriste      Mood = "Triste"
	MoodEnojado     Mood = "Enojado"
	MoodRelajado    Mood = "Relajado"
	MoodEnergetico  Mood = "Energético"
	MoodRomantico   Mood = "Romántico"
	MoodMelancolico Mood = "Melancólico"
	MoodCalmado     Mood = "Calmado"
)

// MoodProfile holds the audio-feature targets associated with a mood.
// The first five fields are normalized to [0,1]; Tempo is in BPM.
type MoodProfile struct {
	Valence          float64 `json:"valence"`
	Energy           float64 `json:"energy"`
	Danceability     float64 `json:"danceability"`
	Acousticness     float64 `json:"acousticness"`
	Instrumentalness float64 `json:"instrumentalness"`
	Tempo            float64 `json:"tempo"`
}

type moodDefinition struct {
	profile MoodProfile
	genres  [3]string
}

var moodTable = map[Mood]moodDefinition{
	MoodFeliz: {
		profile: MoodProfile{Valence: 0.9, Energy: 1, Danceability: 0.8, Acousticness: 0.2, Instrumentalness: 0.1, Tempo: 130},
		genres:  [3]string{"pop", "dance", "happy"},
	},
	MoodTriste: {
		profile: MoodProfile{Valence: 0.1, Energy: 0.2, Danceability: 0.3, Acousticness: 0.7, Instrumentalness: 0.3, Tempo: 70},
		genres:  [3]string{"sad", "acoustic", "piano"},
	},
	MoodEnojado: {
		profile: MoodProfile{Valence: 0.3, Energy: 0.9, Danceability: 0.5, Acousticness: 0.1, Instrumentalness: 0.2, Tempo: 150},
		genres:  [3]string{"metal", "hard-rock", "punk"},
	},
	MoodRelajado: {
		profile: MoodProfile{Valence: 0.6, Energy: 0.3, Danceability: 0.4, Acousticness: 0.8, Instrumentalness: 0.5, Tempo: 80},
		genres:  [3]string{"chill", "ambient", "acoustic"},
	},
	MoodEnergetico: {
		profile: MoodProfile{Valence: 0.7, Energy: 0.95, Danceability: 0.85, Acousticness: 0.05, Instrumentalness: 0.2, Tempo: 160},
		genres:  [3]string{"edm", "work-out", "electronic"},
	},
	MoodRomantico: {
		profile: MoodProfile{Valence: 0.7, Energy: 0.4, Danceability: 0.5, Acousticness: 0.6, Instrumentalness: 0.1, Tempo: 90},
		genres:  [3]string{"romance", "r-n-b", "soul"},
	},
	MoodMelancolico: {
		profile: MoodProfile{Valence: 0.25, Energy: 0.35, Danceability: 0.35, Acousticness: 0.6, Instrumentalness: 0.4, Tempo: 75},
		genres:  [3]string{"indie", "folk", "singer-songwriter"},
	},
	MoodCalmado: {
		profile: MoodProfile{Valence: 0.5, Energy: 0.15, Danceability: 0.25, Acousticness: 0.9, Instrumentalness: 0.7, Tempo: 40},
		genres:  [3]string{"sleep", "classical", "ambient"},
	},
}

// moodOrder fixes the listing order of the mood table.
var moodOrder = []Mood{
	MoodFeliz, MoodTriste, MoodEnojado, MoodRelajado,
	MoodEnergetico, MoodRomantico, MoodMelancolico, MoodCalmado,
}

// Moods returns every known mood in a stable order.
func Moods() []Mood {
	out := make([]Mood, len(moodOrder))
	copy(out, moodOrder)
	return out
}

// ParseMood resolves a display name to a Mood. Matching ignores case,
// surrounding whitespace and accents, so "energetico" resolves to MoodEnergetico.
func ParseMood(name string) (Mood, bool) {
	key := foldMoodName(name)
	if key == "" {
		return "", false
	}
	for _, m := range moodOrder {
		if foldMoodName(string(m)) == key {
			return m, true
		}
	}
	return "", false
}

// Valid reports whether m belongs to the mood table.
func (m Mood) Valid() bool {
	_, ok := moodTable[m]
	return ok
}

// Profile returns the audio-feature targets for m. The zero profile is
// returned for moods outside the table.
func (m Mood) Profile() MoodProfile {
	return moodTable[m].profile
}

// Genres returns a fresh copy of the genre seeds for m, empty for moods
// outside the table.
func (m Mood) Genres() []string {
	def, ok := moodTable[m]
	if !ok {
		return []string{}
	}
	out := make([]string, len(def.genres))
	copy(out, def.genres[:])
	return out
}

// GenresFor looks a genre set up by raw mood name. Unknown names resolve to
// an empty, non-nil slice and ok=false so callers can report the miss.
func GenresFor(name string) (genres []string, ok bool) {
	m, ok := ParseMood(name)
	if !ok {
		return []string{}, false
	}
	return m.Genres(), true
}

func foldMoodName(s string) string {
	var b strings.Builder
	for _, r := range norm.NFD.String(strings.TrimSpace(s)) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
