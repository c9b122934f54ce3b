package services

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/ewilliams-labs/moodshift/internal/core/domain"
	"github.com/ewilliams-labs/moodshift/internal/core/ports"
)

// fakeSpotify answers recommendation queries deterministically from the
// query's first genre seed and target valence.
type fakeSpotify struct {
	mu sync.Mutex

	queries   []domain.RecommendationQuery
	created   []string
	added     map[string][]domain.Track
	deleted   []string
	failStep  func(q domain.RecommendationQuery) error
	createErr error
	addErr    error
	deleteErr error
	perQuery  int
}

func newFakeSpotify() *fakeSpotify {
	return &fakeSpotify{added: map[string][]domain.Track{}, perQuery: domain.RecommendationSize}
}

func (f *fakeSpotify) Recommendations(ctx context.Context, q domain.RecommendationQuery) ([]domain.Track, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	failStep := f.failStep
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if failStep != nil {
		if err := failStep(q); err != nil {
			return nil, err
		}
	}

	genre := "none"
	if len(q.GenreSeeds) > 0 {
		genre = q.GenreSeeds[0]
	}
	out := make([]domain.Track, 0, f.perQuery)
	for i := 0; i < f.perQuery; i++ {
		id := fmt.Sprintf("%s-%.3f-%d", genre, q.Target.Valence, i)
		out = append(out, domain.Track{ID: id, URI: "spotify:track:" + id, Name: id})
	}
	return out, nil
}

func (f *fakeSpotify) CreatePlaylist(_ context.Context, userID, name, _ string) (domain.Playlist, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.Playlist{}, f.createErr
	}
	id := fmt.Sprintf("pl-%d", len(f.created)+1)
	f.created = append(f.created, name)
	return domain.Playlist{ID: id, URL: "https://open.spotify.com/playlist/" + id}, nil
}

func (f *fakeSpotify) AddTracks(_ context.Context, playlistID string, tracks []domain.Track) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.added[playlistID] = append(f.added[playlistID], tracks...)
	return nil
}

func (f *fakeSpotify) DeletePlaylist(_ context.Context, playlistID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, playlistID)
	return f.deleteErr
}

func (f *fakeSpotify) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

type fakeFactory struct {
	api    *fakeSpotify
	mu     sync.Mutex
	tokens []string
}

func (f *fakeFactory) ForToken(accessToken string) ports.SpotifyAPI {
	f.mu.Lock()
	f.tokens = append(f.tokens, accessToken)
	f.mu.Unlock()
	return f.api
}

type fakeInfoStore struct {
	infos  map[string]domain.PlaylistInfo
	putErr error
}

func (s *fakeInfoStore) Put(_ context.Context, info domain.PlaylistInfo) error {
	if s.putErr != nil {
		return s.putErr
	}
	if s.infos == nil {
		s.infos = map[string]domain.PlaylistInfo{}
	}
	s.infos[info.UserID] = info
	return nil
}

func (s *fakeInfoStore) Get(_ context.Context, userID string) (domain.PlaylistInfo, error) {
	info, ok := s.infos[userID]
	if !ok {
		return domain.PlaylistInfo{}, domain.ErrNotFound
	}
	return info, nil
}

type fakeCodeGuard struct {
	seen map[string]bool
	err  error
}

func (g *fakeCodeGuard) Claim(_ context.Context, code string) (bool, error) {
	if g.err != nil {
		return false, g.err
	}
	if g.seen == nil {
		g.seen = map[string]bool{}
	}
	if g.seen[code] {
		return false, nil
	}
	g.seen[code] = true
	return true, nil
}

type fakeAuth struct {
	calls   int
	session ports.Session
	err     error
}

func (a *fakeAuth) AuthURL(state string) string {
	return "https://accounts.example/authorize?state=" + state
}

func (a *fakeAuth) Exchange(_ context.Context, _ string) (ports.Session, error) {
	a.calls++
	return a.session, a.err
}

func quietLogger() *log.Logger {
	return log.New(io.Discard)
}

func validRequest() domain.TransitionRequest {
	return domain.TransitionRequest{
		CurrentMood:     "Triste",
		DesiredMood:     "Feliz",
		SelectedArtists: []string{"a1", "a2", "a3"},
		AccessToken:     "tok",
	}
}
