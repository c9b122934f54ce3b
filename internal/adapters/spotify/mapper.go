package spotify

import (
	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"github.com/ewilliams-labs/moodshift/internal/core/domain"
	"github.com/ewilliams-labs/moodshift/internal/core/ports"
)

// mapTracks converts recommendation results, keeping their order.
func mapTracks(in []spotify.SimpleTrack) []domain.Track {
	out := make([]domain.Track, 0, len(in))
	for _, st := range in {
		out = append(out, mapTrackToDomain(st))
	}
	return out
}

func mapTrackToDomain(st spotify.SimpleTrack) domain.Track {
	artists := make([]string, 0, len(st.Artists))
	for _, a := range st.Artists {
		artists = append(artists, a.Name)
	}

	uri := string(st.URI)
	if uri == "" && st.ID != "" {
		uri = "spotify:track:" + string(st.ID)
	}

	return domain.Track{
		ID:      string(st.ID),
		URI:     uri,
		Name:    st.Name,
		Artists: artists,
	}
}

func mapPlaylist(fp *spotify.FullPlaylist) domain.Playlist {
	if fp == nil {
		return domain.Playlist{}
	}
	return domain.Playlist{
		ID:  string(fp.ID),
		URL: fp.ExternalURLs["spotify"],
	}
}

func mapSession(tok *oauth2.Token, userID string) ports.Session {
	return ports.Session{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		ExpiresAt:    tok.Expiry,
		UserID:       userID,
	}
}
