package spotify

import (
	"context"
	"fmt"
	"net/http"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"

	"github.com/ewilliams-labs/moodshift/internal/core/ports"
)

// Scopes requested at login.
var Scopes = []string{
	spotifyauth.ScopeUserReadEmail,
	spotifyauth.ScopeUserReadPrivate,
	spotifyauth.ScopePlaylistModifyPublic,
	spotifyauth.ScopePlaylistModifyPrivate,
	spotifyauth.ScopeUserTopRead,
}

// AuthConfig holds the OAuth client registration.
type AuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	// AuthURL and TokenURL default to the public accounts service.
	AuthURL  string
	TokenURL string
}

// Authenticator runs the authorization code flow.
type Authenticator struct {
	config     *oauth2.Config
	httpClient *http.Client
	factory    *Factory
}

// compile-time interface assertion
var _ ports.Authenticator = (*Authenticator)(nil)

// NewAuthenticator constructs an Authenticator. factory resolves the user id
// once a token is issued.
func NewAuthenticator(cfg AuthConfig, httpClient *http.Client, factory *Factory) *Authenticator {
	if cfg.AuthURL == "" {
		cfg.AuthURL = spotifyauth.AuthURL
	}
	if cfg.TokenURL == "" {
		cfg.TokenURL = spotifyauth.TokenURL
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if factory == nil {
		factory = NewFactory(WithHTTPClient(httpClient))
	}
	return &Authenticator{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURI,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		httpClient: httpClient,
		factory:    factory,
	}
}

// AuthURL returns the consent page URL. The dialog is always shown so users
// can switch accounts.
func (a *Authenticator) AuthURL(state string) string {
	return a.config.AuthCodeURL(state, oauth2.SetAuthURLParam("show_dialog", "true"))
}

// Exchange trades code for tokens and looks up the owner.
func (a *Authenticator) Exchange(ctx context.Context, code string) (ports.Session, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, a.httpClient)

	tok, err := a.config.Exchange(ctx, code)
	if err != nil {
		return ports.Session{}, fmt.Errorf("spotify adapter: token exchange: %w", err)
	}

	userID, err := a.factory.NewClient(tok).CurrentUserID(ctx)
	if err != nil {
		return ports.Session{}, err
	}
	return mapSession(tok, userID), nil
}
