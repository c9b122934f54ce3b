package spotify

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
	"golang.org/x/oauth2"

	"github.com/ewilliams-labs/moodshift/internal/core/domain"
	"github.com/ewilliams-labs/moodshift/internal/core/ports"
)

// DefaultBaseURL is the public Web API root.
const DefaultBaseURL = "https://api.spotify.com/v1/"

// maxTracksPerRequest is the Web API limit for a single playlist append.
const maxTracksPerRequest = 100

// CallRecorder observes every Web API call the adapter makes.
type CallRecorder interface {
	ObserveSpotifyCall(op string, elapsed time.Duration, err error)
}

type nopRecorder struct{}

func (nopRecorder) ObserveSpotifyCall(string, time.Duration, error) {}

// Factory builds a Client bound to one user's access token.
type Factory struct {
	httpClient *http.Client
	baseURL    string
	recorder   CallRecorder
}

// compile-time interface assertion
var _ ports.SpotifyFactory = (*Factory)(nil)

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithHTTPClient sets the transport used under the bearer token.
func WithHTTPClient(c *http.Client) FactoryOption {
	return func(f *Factory) {
		if c != nil {
			f.httpClient = c
		}
	}
}

// WithBaseURL points the client at another API root.
func WithBaseURL(u string) FactoryOption {
	return func(f *Factory) {
		if u != "" {
			f.baseURL = strings.TrimRight(u, "/") + "/"
		}
	}
}

// WithRecorder attaches a CallRecorder.
func WithRecorder(r CallRecorder) FactoryOption {
	return func(f *Factory) {
		if r != nil {
			f.recorder = r
		}
	}
}

// NewFactory constructs a Factory.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{
		httpClient: http.DefaultClient,
		baseURL:    DefaultBaseURL,
		recorder:   nopRecorder{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ForToken returns a client that authenticates with accessToken.
func (f *Factory) ForToken(accessToken string) ports.SpotifyAPI {
	return f.NewClient(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
}

// NewClient returns a client for tok.
func (f *Factory) NewClient(tok *oauth2.Token) *Client {
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, f.httpClient)
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(tok))
	return &Client{
		api:      spotify.New(httpClient, spotify.WithBaseURL(f.baseURL)),
		recorder: f.recorder,
	}
}

// Client wraps the Web API for one user.
type Client struct {
	api      *spotify.Client
	recorder CallRecorder
}

// compile-time interface assertion
var _ ports.SpotifyAPI = (*Client)(nil)

// Recommendations asks for tracks close to the query's target profile.
func (c *Client) Recommendations(ctx context.Context, q domain.RecommendationQuery) (tracks []domain.Track, err error) {
	defer c.observe("recommendations", time.Now(), &err)

	seeds := spotify.Seeds{Genres: q.GenreSeeds}
	for _, a := range q.ArtistSeeds {
		seeds.Artists = append(seeds.Artists, spotify.ID(a))
	}
	attrs := spotify.NewTrackAttributes().
		TargetValence(q.Target.Valence).
		TargetEnergy(q.Target.Energy).
		TargetDanceability(q.Target.Danceability).
		TargetAcousticness(q.Target.Acousticness).
		TargetInstrumentalness(q.Target.Instrumentalness).
		TargetTempo(q.Target.Tempo)

	limit := q.Limit
	if limit <= 0 {
		limit = domain.RecommendationSize
	}

	res, err := c.api.GetRecommendations(ctx, seeds, attrs, spotify.Limit(limit))
	if err != nil {
		return nil, fmt.Errorf("spotify adapter: recommendations: %w", err)
	}
	return mapTracks(res.Tracks), nil
}

// CreatePlaylist creates a private, non-collaborative playlist.
func (c *Client) CreatePlaylist(ctx context.Context, userID, name, description string) (p domain.Playlist, err error) {
	defer c.observe("create_playlist", time.Now(), &err)

	fp, err := c.api.CreatePlaylistForUser(ctx, userID, name, description, false, false)
	if err != nil {
		return domain.Playlist{}, fmt.Errorf("spotify adapter: create playlist: %w", err)
	}
	return mapPlaylist(fp), nil
}

// AddTracks appends tracks in order.
func (c *Client) AddTracks(ctx context.Context, playlistID string, tracks []domain.Track) (err error) {
	defer c.observe("add_tracks", time.Now(), &err)

	ids := make([]spotify.ID, 0, len(tracks))
	for _, t := range tracks {
		ids = append(ids, spotify.ID(t.ID))
	}
	for start := 0; start < len(ids); start += maxTracksPerRequest {
		end := start + maxTracksPerRequest
		if end > len(ids) {
			end = len(ids)
		}
		if _, err := c.api.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids[start:end]...); err != nil {
			return fmt.Errorf("spotify adapter: add tracks: %w", err)
		}
	}
	return nil
}

// DeletePlaylist unfollows the playlist, which is how the Web API deletes one.
func (c *Client) DeletePlaylist(ctx context.Context, playlistID string) (err error) {
	defer c.observe("delete_playlist", time.Now(), &err)

	if err := c.api.UnfollowPlaylist(ctx, spotify.ID(playlistID)); err != nil {
		return fmt.Errorf("spotify adapter: delete playlist: %w", err)
	}
	return nil
}

// CurrentUserID returns the id of the token's owner.
func (c *Client) CurrentUserID(ctx context.Context) (id string, err error) {
	defer c.observe("current_user", time.Now(), &err)

	u, err := c.api.CurrentUser(ctx)
	if err != nil {
		return "", fmt.Errorf("spotify adapter: current user: %w", err)
	}
	return u.ID, nil
}

func (c *Client) observe(op string, start time.Time, err *error) {
	c.recorder.ObserveSpotifyCall(op, time.Since(start), *err)
}
