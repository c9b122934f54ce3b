package domain

// Transition shape. TracksPerStep is TotalTracks / TransitionSteps.
const (
	TransitionSteps    = 10
	TotalTracks        = 20
	TracksPerStep      = TotalTracks / TransitionSteps
	RecommendationSize = 5
	MaxArtistSeeds     = 2
)

// TransitionStep is one interpolation point between two moods.
type TransitionStep struct {
	Index   int         `json:"index"`
	Weight  float64     `json:"weight"`
	Profile MoodProfile `json:"profile"`
	Genres  []string    `json:"genres"`
}

// TransitionRequest is the input of a mood transition plan.
type TransitionRequest struct {
	CurrentMood     string
	DesiredMood     string
	SelectedArtists []string
	AccessToken     string
}

// Validate checks that every field is present. It does not resolve moods.
func (r TransitionRequest) Validate() error {
	switch {
	case r.CurrentMood == "":
		return &ValidationError{Field: "currentMood"}
	case r.DesiredMood == "":
		return &ValidationError{Field: "desiredMood"}
	case len(r.SelectedArtists) == 0:
		return &ValidationError{Field: "artistsToUse"}
	case r.AccessToken == "":
		return &ValidationError{Field: "accessToken"}
	}
	for _, a := range r.SelectedArtists {
		if a == "" {
			return &ValidationError{Field: "artistsToUse", Reason: "artist id cannot be empty"}
		}
	}
	return nil
}

// ArtistSeeds returns at most MaxArtistSeeds leading artist ids.
func (r TransitionRequest) ArtistSeeds() []string {
	n := len(r.SelectedArtists)
	if n > MaxArtistSeeds {
		n = MaxArtistSeeds
	}
	out := make([]string, n)
	copy(out, r.SelectedArtists[:n])
	return out
}

// Interpolate blends two profiles field by field: from*(1-w) + to*w.
func Interpolate(from, to MoodProfile, w float64) MoodProfile {
	lerp := func(a, b float64) float64 {
		return a*(1-w) + b*w
	}
	return MoodProfile{
		Valence:          lerp(from.Valence, to.Valence),
		Energy:           lerp(from.Energy, to.Energy),
		Danceability:     lerp(from.Danceability, to.Danceability),
		Acousticness:     lerp(from.Acousticness, to.Acousticness),
		Instrumentalness: lerp(from.Instrumentalness, to.Instrumentalness),
		Tempo:            lerp(from.Tempo, to.Tempo),
	}
}

// StepWeight is i/(steps-1), so the first step is exactly the start profile
// and the last step exactly the target.
func StepWeight(i, steps int) float64 {
	if steps <= 1 {
		return 1
	}
	return float64(i) / float64(steps-1)
}

// UsesDesiredGenres reports whether step i has crossed the midpoint. The
// switch is on the index, not the weight.
func UsesDesiredGenres(i, steps int) bool {
	return i >= steps/2
}

// BuildTransition lays out the steps between two moods.
func BuildTransition(from, to Mood, steps int) []TransitionStep {
	fromProfile, toProfile := from.Profile(), to.Profile()
	fromGenres, toGenres := from.Genres(), to.Genres()

	out := make([]TransitionStep, steps)
	for i := 0; i < steps; i++ {
		w := StepWeight(i, steps)
		genres := fromGenres
		if UsesDesiredGenres(i, steps) {
			genres = toGenres
		}
		out[i] = TransitionStep{
			Index:   i,
			Weight:  w,
			Profile: Interpolate(fromProfile, toProfile, w),
			Genres:  genres,
		}
	}
	return out
}
