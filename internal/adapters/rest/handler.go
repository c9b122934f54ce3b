package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ewilliams-labs/moodshift/internal/core/domain"
	"github.com/ewilliams-labs/moodshift/internal/core/ports"
	"github.com/ewilliams-labs/moodshift/internal/core/services"
	"github.com/ewilliams-labs/moodshift/internal/logging"
)

// Service is the core API the handler drives.
type Service interface {
	CreateMoodPlaylist(ctx context.Context, req services.CreatePlaylistRequest) (services.CreatePlaylistResult, error)
	GetPlaylistInfo(ctx context.Context, userID string) (domain.PlaylistInfo, error)
	ExchangeCode(ctx context.Context, code string) (ports.Session, error)
	LoginURL(state string) string
	PreviewTransition(currentMood, desiredMood string) ([]domain.TransitionStep, error)
	ListMoods() []services.MoodSummary
}

// RequestObserver records served requests.
type RequestObserver interface {
	ObserveHTTPRequest(route, method string, status int, elapsed time.Duration)
}

// Handler manages the HTTP interface for our application.
type Handler struct {
	svc    Service
	router chi.Router
	logger *log.Logger

	allowedOrigins []string
	observer       RequestObserver
	metrics        http.Handler
	secureCookies  bool
}

// Option configures a Handler.
type Option func(*Handler)

// WithAllowedOrigins sets the CORS allow list.
func WithAllowedOrigins(origins []string) Option {
	return func(h *Handler) { h.allowedOrigins = origins }
}

// WithMetrics records every request on o and serves metrics at GET /metrics.
func WithMetrics(o RequestObserver, metrics http.Handler) Option {
	return func(h *Handler) {
		h.observer = o
		h.metrics = metrics
	}
}

// WithSecureCookies marks the OAuth state cookie Secure.
func WithSecureCookies(secure bool) Option {
	return func(h *Handler) { h.secureCookies = secure }
}

// NewHandler initializes the HTTP adapter and sets up routes.
func NewHandler(svc Service, logger *log.Logger, opts ...Option) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	h := &Handler{
		svc:            svc,
		router:         chi.NewRouter(),
		logger:         logging.WithComponent(logger, "http"),
		allowedOrigins: []string{"http://localhost:3000"},
	}
	for _, opt := range opts {
		opt(h)
	}

	h.routes()
	return h
}

// ServeHTTP satisfies the http.Handler interface.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// routes defines the mapping between URLs and methods.
func (h *Handler) routes() {
	r := h.router
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(h.accessLog)
	r.Use(h.recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   h.allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health Check
	r.Get("/health", h.HealthCheck)
	if h.metrics != nil {
		r.Method(http.MethodGet, "/metrics", h.metrics)
	}

	// OAuth
	r.Get("/login", h.Login)
	r.Get("/callback", h.Callback)
	r.Post("/exchange_code", h.ExchangeCode)

	// Playlists
	r.Post("/create_playlist", h.CreatePlaylist)
	r.Get("/get_playlist_info", h.GetPlaylistInfo)

	// Mood table
	r.Get("/moods", h.ListMoods)
	r.Get("/moods/transition", h.PreviewTransition)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
}

// HealthCheck is a simple endpoint to verify the API is running.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "Moodshift is live 🎶"})
}
