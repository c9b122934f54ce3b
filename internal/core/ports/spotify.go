package ports

import (
	"context"
	"time"

	"github.com/ewilliams-labs/moodshift/internal/core/domain"
)

// RecommendationProvider queries the streaming service for track recommendations.
type RecommendationProvider interface {
	Recommendations(ctx context.Context, q domain.RecommendationQuery) ([]domain.Track, error)
}

// PlaylistService creates and fills playlists on behalf of a user.
type PlaylistService interface {
	CreatePlaylist(ctx context.Context, userID, name, description string) (domain.Playlist, error)
	AddTracks(ctx context.Context, playlistID string, tracks []domain.Track) error
	DeletePlaylist(ctx context.Context, playlistID string) error
}

// SpotifyAPI is everything the services need from a user-scoped client.
type SpotifyAPI interface {
	RecommendationProvider
	PlaylistService
}

// SpotifyFactory builds a client bound to a user's bearer credential.
type SpotifyFactory interface {
	ForToken(accessToken string) SpotifyAPI
}

// Session is the outcome of an authorization-code exchange.
type Session struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	UserID       string
}

// Authenticator drives the OAuth authorization-code flow.
type Authenticator interface {
	AuthURL(state string) string
	Exchange(ctx context.Context, code string) (Session, error)
}
