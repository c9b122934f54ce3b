package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ewilliams-labs/moodshift/internal/core/domain"
	"github.com/ewilliams-labs/moodshift/internal/core/ports"
	"github.com/ewilliams-labs/moodshift/internal/logging"
)

const (
	playlistCreatedMessage = "Playlist creada con éxito"
	rollbackTimeout        = 5 * time.Second
)

// CreatePlaylistRequest is the input of CreateMoodPlaylist.
type CreatePlaylistRequest struct {
	UserID string
	domain.TransitionRequest
}

// CreatePlaylistResult is returned once the playlist holds its tracks.
type CreatePlaylistResult struct {
	PlaylistID  string `json:"playlistId"`
	Message     string `json:"message"`
	PlaylistURL string `json:"playlistUrl"`
}

// MoodSummary describes one entry of the mood table.
type MoodSummary struct {
	Name    string             `json:"name"`
	Profile domain.MoodProfile `json:"profile"`
	Genres  []string           `json:"genres"`
}

// Orchestrator coordinates the planner, the streaming service and the stores.
type Orchestrator struct {
	spotify ports.SpotifyFactory
	auth    ports.Authenticator
	planner *Planner
	infos   ports.PlaylistInfoStore
	codes   ports.CodeGuard
	logger  *log.Logger
	now     func() time.Time
}

// NewOrchestrator constructs an Orchestrator.
func NewOrchestrator(
	spotify ports.SpotifyFactory,
	auth ports.Authenticator,
	planner *Planner,
	infos ports.PlaylistInfoStore,
	codes ports.CodeGuard,
	logger *log.Logger,
) *Orchestrator {
	if logger == nil {
		logger = log.Default()
	}
	return &Orchestrator{
		spotify: spotify,
		auth:    auth,
		planner: planner,
		infos:   infos,
		codes:   codes,
		logger:  logging.WithComponent(logger, "orchestrator"),
		now:     time.Now,
	}
}

// CreateMoodPlaylist plans a transition, creates a private playlist for the
// user and fills it. If filling fails the new playlist is deleted again.
func (o *Orchestrator) CreateMoodPlaylist(ctx context.Context, req CreatePlaylistRequest) (CreatePlaylistResult, error) {
	// 1. Validate before touching the network
	if req.UserID == "" {
		return CreatePlaylistResult{}, fmt.Errorf("service: %w", &domain.ValidationError{Field: "userId"})
	}

	// 2. Plan the transition
	tracks, err := o.planner.PlanTransition(ctx, req.TransitionRequest)
	if err != nil {
		return CreatePlaylistResult{}, err
	}
	from, _ := domain.ParseMood(req.CurrentMood)
	to, _ := domain.ParseMood(req.DesiredMood)

	// 3. Create the playlist
	client := o.spotify.ForToken(req.AccessToken)
	playlist, err := client.CreatePlaylist(ctx, req.UserID, domain.PlaylistName(from, to), domain.PlaylistDescription(from, to))
	if err != nil {
		return CreatePlaylistResult{}, fmt.Errorf("service: %w", &domain.UpstreamError{Op: "create playlist", Err: err})
	}

	// 4. Fill it, deleting it again on failure
	if len(tracks) > 0 {
		if err := client.AddTracks(ctx, playlist.ID, tracks); err != nil {
			o.rollback(ctx, client, playlist.ID)
			return CreatePlaylistResult{}, fmt.Errorf("service: %w", &domain.UpstreamError{Op: "add tracks", Err: err})
		}
	}

	// 5. Remember it for GET /get_playlist_info
	uris := make([]string, len(tracks))
	for i, t := range tracks {
		uris[i] = t.URI
	}
	info := domain.PlaylistInfo{
		UserID:      req.UserID,
		PlaylistID:  playlist.ID,
		PlaylistURL: playlist.URL,
		Name:        domain.PlaylistName(from, to),
		CurrentMood: string(from),
		DesiredMood: string(to),
		TrackURIs:   uris,
		CreatedAt:   o.now().UTC(),
	}
	if err := o.infos.Put(ctx, info); err != nil {
		o.logger.Warn("failed to store playlist info", "user", req.UserID, "playlist", playlist.ID, "err", err)
	}

	o.logger.Info("playlist created", "user", req.UserID, "playlist", playlist.ID, "tracks", len(tracks))
	return CreatePlaylistResult{
		PlaylistID:  playlist.ID,
		Message:     playlistCreatedMessage,
		PlaylistURL: playlist.URL,
	}, nil
}

func (o *Orchestrator) rollback(ctx context.Context, client ports.PlaylistService, playlistID string) {
	rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()
	if err := client.DeletePlaylist(rbCtx, playlistID); err != nil {
		o.logger.Error("rollback failed, playlist left behind", "playlist", playlistID, "err", err)
		return
	}
	o.logger.Warn("playlist rolled back after failed track append", "playlist", playlistID)
}

// GetPlaylistInfo returns the stored metadata of the user's last playlist.
func (o *Orchestrator) GetPlaylistInfo(ctx context.Context, userID string) (domain.PlaylistInfo, error) {
	if userID == "" {
		return domain.PlaylistInfo{}, fmt.Errorf("service: %w", &domain.ValidationError{Field: "userId"})
	}
	info, err := o.infos.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.PlaylistInfo{}, fmt.Errorf("service: no playlist info for user %q: %w", userID, domain.ErrNotFound)
		}
		return domain.PlaylistInfo{}, fmt.Errorf("service: failed to load playlist info: %w", err)
	}
	return info, nil
}

// LoginURL returns the provider authorization URL for the given state.
func (o *Orchestrator) LoginURL(state string) string {
	return o.auth.AuthURL(state)
}

// ExchangeCode trades an authorization code for a session. A code is
// accepted once per cooldown window.
func (o *Orchestrator) ExchangeCode(ctx context.Context, code string) (ports.Session, error) {
	if code == "" {
		return ports.Session{}, fmt.Errorf("service: %w", &domain.ValidationError{Field: "code"})
	}

	claimed, err := o.codes.Claim(ctx, code)
	if err != nil {
		return ports.Session{}, fmt.Errorf("service: code guard: %w", err)
	}
	if !claimed {
		return ports.Session{}, fmt.Errorf("service: authorization code already processed: %w", domain.ErrConflict)
	}

	session, err := o.auth.Exchange(ctx, code)
	if err != nil {
		return ports.Session{}, fmt.Errorf("service: %w", &domain.UpstreamError{Op: "token exchange", Err: err})
	}
	return session, nil
}

// PreviewTransition returns the interpolation steps between two moods.
func (o *Orchestrator) PreviewTransition(currentMood, desiredMood string) ([]domain.TransitionStep, error) {
	return o.planner.Preview(currentMood, desiredMood)
}

// ListMoods describes the mood table.
func (o *Orchestrator) ListMoods() []MoodSummary {
	moods := domain.Moods()
	out := make([]MoodSummary, len(moods))
	for i, m := range moods {
		out[i] = MoodSummary{Name: string(m), Profile: m.Profile(), Genres: m.Genres()}
	}
	return out
}
