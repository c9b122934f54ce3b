package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ewilliams-labs/moodshift/internal/core/domain"
	"github.com/ewilliams-labs/moodshift/internal/core/ports"
	"github.com/ewilliams-labs/moodshift/internal/core/services"
)

// --- Mocks ---

type mockService struct {
	mock.Mock
}

func (m *mockService) CreateMoodPlaylist(ctx context.Context, req services.CreatePlaylistRequest) (services.CreatePlaylistResult, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(services.CreatePlaylistResult), args.Error(1)
}

func (m *mockService) GetPlaylistInfo(ctx context.Context, userID string) (domain.PlaylistInfo, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(domain.PlaylistInfo), args.Error(1)
}

func (m *mockService) ExchangeCode(ctx context.Context, code string) (ports.Session, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(ports.Session), args.Error(1)
}

func (m *mockService) LoginURL(state string) string {
	return m.Called(state).String(0)
}

func (m *mockService) PreviewTransition(currentMood, desiredMood string) ([]domain.TransitionStep, error) {
	args := m.Called(currentMood, desiredMood)
	steps, _ := args.Get(0).([]domain.TransitionStep)
	return steps, args.Error(1)
}

func (m *mockService) ListMoods() []services.MoodSummary {
	return m.Called().Get(0).([]services.MoodSummary)
}

type observedRequest struct {
	route  string
	method string
	status int
}

type fakeObserver struct {
	requests []observedRequest
}

func (o *fakeObserver) ObserveHTTPRequest(route, method string, status int, _ time.Duration) {
	o.requests = append(o.requests, observedRequest{route: route, method: method, status: status})
}

func newTestHandler(svc Service, opts ...Option) *Handler {
	return NewHandler(svc, log.New(io.Discard), opts...)
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body.Error
}

// --- Tests ---

func TestHandler_HealthCheck(t *testing.T) {
	h := newTestHandler(&mockService{})
	rr := do(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ok"`)
}

func TestHandler_CreatePlaylist(t *testing.T) {
	validBody := `{"userId":"u1","currentMood":"Triste","desiredMood":"Feliz","artistsToUse":["a1","a2"],"accessToken":"tok"}`
	wantReq := services.CreatePlaylistRequest{
		UserID: "u1",
		TransitionRequest: domain.TransitionRequest{
			CurrentMood:     "Triste",
			DesiredMood:     "Feliz",
			SelectedArtists: []string{"a1", "a2"},
			AccessToken:     "tok",
		},
	}

	tests := []struct {
		name       string
		body       string
		setupMock  func(m *mockService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "Happy Path",
			body: validBody,
			setupMock: func(m *mockService) {
				m.On("CreateMoodPlaylist", mock.Anything, wantReq).Return(services.CreatePlaylistResult{
					PlaylistID:  "pl-1",
					Message:     "Playlist creada con éxito",
					PlaylistURL: "https://open.spotify.com/playlist/pl-1",
				}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `"playlistId":"pl-1"`,
		},
		{
			name: "Missing access token",
			body: `{"userId":"u1","currentMood":"Triste","desiredMood":"Feliz","artistsToUse":["a1"]}`,
			setupMock: func(m *mockService) {
				m.On("CreateMoodPlaylist", mock.Anything, mock.Anything).Return(services.CreatePlaylistResult{},
					fmt.Errorf("service: %w", &domain.ValidationError{Field: "accessToken"}))
			},
			wantStatus: http.StatusBadRequest,
			wantBody:   "accessToken is required",
		},
		{
			name:       "Malformed JSON",
			body:       `{"userId":`,
			setupMock:  func(m *mockService) {},
			wantStatus: http.StatusBadRequest,
			wantBody:   "Invalid request body",
		},
		{
			name: "Upstream failure is generic",
			body: validBody,
			setupMock: func(m *mockService) {
				m.On("CreateMoodPlaylist", mock.Anything, wantReq).Return(services.CreatePlaylistResult{},
					&domain.UpstreamError{Op: "add tracks", Err: errors.New("spotify says 502 with secrets")})
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"internal server error"}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockService{}
			tc.setupMock(svc)
			h := newTestHandler(svc)

			rr := do(h, http.MethodPost, "/create_playlist", tc.body)

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.wantBody)
			assert.NotContains(t, rr.Body.String(), "secrets")
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_CreatePlaylist_RequiresJSON(t *testing.T) {
	svc := &mockService{}
	h := newTestHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/create_playlist", strings.NewReader("userId=u1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rr.Code)
	svc.AssertNotCalled(t, "CreateMoodPlaylist", mock.Anything, mock.Anything)
}

func TestHandler_GetPlaylistInfo(t *testing.T) {
	info := domain.PlaylistInfo{UserID: "u1", PlaylistID: "pl-1", TrackURIs: []string{"spotify:track:1"}}

	tests := []struct {
		name       string
		target     string
		setupMock  func(m *mockService)
		wantStatus int
	}{
		{
			name:   "Found",
			target: "/get_playlist_info?userId=u1",
			setupMock: func(m *mockService) {
				m.On("GetPlaylistInfo", mock.Anything, "u1").Return(info, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "Unknown user",
			target: "/get_playlist_info?userId=ghost",
			setupMock: func(m *mockService) {
				m.On("GetPlaylistInfo", mock.Anything, "ghost").Return(domain.PlaylistInfo{}, fmt.Errorf("service: %w", domain.ErrNotFound))
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name:   "Missing user id",
			target: "/get_playlist_info",
			setupMock: func(m *mockService) {
				m.On("GetPlaylistInfo", mock.Anything, "").Return(domain.PlaylistInfo{}, &domain.ValidationError{Field: "userId"})
			},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockService{}
			tc.setupMock(svc)
			rr := do(newTestHandler(svc), http.MethodGet, tc.target, "")

			assert.Equal(t, tc.wantStatus, rr.Code)
			if tc.wantStatus == http.StatusOK {
				var got domain.PlaylistInfo
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&got))
				assert.Equal(t, info, got)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_ExchangeCode(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		setupMock  func(m *mockService)
		wantStatus int
		wantBody   string
	}{
		{
			name: "Happy Path",
			body: `{"code":"abc"}`,
			setupMock: func(m *mockService) {
				m.On("ExchangeCode", mock.Anything, "abc").Return(ports.Session{AccessToken: "acc", UserID: "u1"}, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"accessToken":"acc","userId":"u1"}`,
		},
		{
			name: "Duplicate code",
			body: `{"code":"abc"}`,
			setupMock: func(m *mockService) {
				m.On("ExchangeCode", mock.Anything, "abc").Return(ports.Session{}, fmt.Errorf("service: %w", domain.ErrConflict))
			},
			wantStatus: http.StatusConflict,
		},
		{
			name: "Provider failure",
			body: `{"code":"abc"}`,
			setupMock: func(m *mockService) {
				m.On("ExchangeCode", mock.Anything, "abc").Return(ports.Session{}, &domain.UpstreamError{Op: "token exchange", Err: errors.New("invalid_grant")})
			},
			wantStatus: http.StatusInternalServerError,
			wantBody:   internalErrorMessage,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockService{}
			tc.setupMock(svc)
			rr := do(newTestHandler(svc), http.MethodPost, "/exchange_code", tc.body)

			assert.Equal(t, tc.wantStatus, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.wantBody)
			svc.AssertExpectations(t)
		})
	}
}

func TestHandler_ExchangeCode_SameCodeTwice(t *testing.T) {
	svc := &mockService{}
	svc.On("ExchangeCode", mock.Anything, "abc").Return(ports.Session{AccessToken: "acc", UserID: "u1"}, nil).Once()
	svc.On("ExchangeCode", mock.Anything, "abc").Return(ports.Session{}, domain.ErrConflict).Once()
	h := newTestHandler(svc)

	first := do(h, http.MethodPost, "/exchange_code", `{"code":"abc"}`)
	second := do(h, http.MethodPost, "/exchange_code", `{"code":"abc"}`)

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusConflict, second.Code)
	assert.Equal(t, "Conflict", decodeError(t, second))
}

func TestHandler_Login(t *testing.T) {
	svc := &mockService{}
	svc.On("LoginURL", mock.AnythingOfType("string")).Return("https://accounts.example/authorize?state=x")
	h := newTestHandler(svc)

	rr := do(h, http.MethodGet, "/login", "")

	assert.Equal(t, http.StatusFound, rr.Code)
	assert.Equal(t, "https://accounts.example/authorize?state=x", rr.Header().Get("Location"))

	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, stateCookie, cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	svc.AssertCalled(t, "LoginURL", cookies[0].Value)
}

func TestHandler_Callback(t *testing.T) {
	callback := func(h http.Handler, cookieState, query string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/callback?"+query, nil)
		if cookieState != "" {
			req.AddCookie(&http.Cookie{Name: stateCookie, Value: cookieState})
		}
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr
	}

	t.Run("Happy Path", func(t *testing.T) {
		svc := &mockService{}
		svc.On("ExchangeCode", mock.Anything, "code-1").Return(ports.Session{AccessToken: "acc", UserID: "u1"}, nil)

		rr := callback(newTestHandler(svc), "s1", "state=s1&code=code-1")

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "text/plain; charset=utf-8", rr.Header().Get("Content-Type"))
		assert.Equal(t, "Puede cerrar esta pestaña", rr.Body.String())
		svc.AssertExpectations(t)
	})

	t.Run("State mismatch restarts login", func(t *testing.T) {
		svc := &mockService{}
		rr := callback(newTestHandler(svc), "s1", "state=other&code=code-1")

		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/login", rr.Header().Get("Location"))
		svc.AssertNotCalled(t, "ExchangeCode", mock.Anything, mock.Anything)
	})

	t.Run("Provider denied access", func(t *testing.T) {
		svc := &mockService{}
		rr := callback(newTestHandler(svc), "s1", "state=s1&error=access_denied")

		assert.Equal(t, http.StatusFound, rr.Code)
		assert.Equal(t, "/login", rr.Header().Get("Location"))
	})

	t.Run("Exchange failure", func(t *testing.T) {
		svc := &mockService{}
		svc.On("ExchangeCode", mock.Anything, "code-1").Return(ports.Session{}, &domain.UpstreamError{Op: "token exchange", Err: errors.New("boom")})

		rr := callback(newTestHandler(svc), "s1", "state=s1&code=code-1")
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func TestHandler_Moods(t *testing.T) {
	svc := &mockService{}
	svc.On("ListMoods").Return([]services.MoodSummary{{Name: "Feliz", Genres: []string{"pop"}}})
	svc.On("PreviewTransition", "Feliz", "Triste").Return(domain.BuildTransition(domain.MoodFeliz, domain.MoodTriste, domain.TransitionSteps), nil)
	svc.On("PreviewTransition", "Feliz", "Euphoric").Return(nil, &domain.ValidationError{Field: "desiredMood", Reason: `unknown mood "Euphoric"`})
	h := newTestHandler(svc)

	rr := do(h, http.MethodGet, "/moods", "")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"name":"Feliz"`)

	rr = do(h, http.MethodGet, "/moods/transition?from=Feliz&to=Triste", "")
	require.Equal(t, http.StatusOK, rr.Code)
	var steps []domain.TransitionStep
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&steps))
	require.Len(t, steps, domain.TransitionSteps)
	assert.InDelta(t, 0.644, steps[4].Profile.Energy, 0.001)

	rr = do(h, http.MethodGet, "/moods/transition?from=Feliz&to=Euphoric", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, decodeError(t, rr), "Euphoric")
}

func TestHandler_CORS(t *testing.T) {
	h := newTestHandler(&mockService{}, WithAllowedOrigins([]string{"http://localhost:3000"}))

	req := httptest.NewRequest(http.MethodOptions, "/create_playlist", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Equal(t, "http://localhost:3000", rr.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/create_playlist", nil)
	req.Header.Set("Origin", "http://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	assert.Empty(t, rr.Header().Get("Access-Control-Allow-Origin"))
}

func TestHandler_MetricsAndNotFound(t *testing.T) {
	obs := &fakeObserver{}
	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	svc := &mockService{}
	svc.On("GetPlaylistInfo", mock.Anything, "u1").Return(domain.PlaylistInfo{UserID: "u1"}, nil)
	h := newTestHandler(svc, WithMetrics(obs, metricsHandler))

	do(h, http.MethodGet, "/get_playlist_info?userId=u1", "")
	rr := do(h, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(h, http.MethodGet, "/metrics", "")
	assert.Equal(t, "# metrics", rr.Body.String())

	require.Len(t, obs.requests, 3)
	assert.Equal(t, observedRequest{route: "/get_playlist_info", method: http.MethodGet, status: http.StatusOK}, obs.requests[0])
	assert.Equal(t, http.StatusNotFound, obs.requests[1].status)
}

func TestHandler_RecoversFromPanic(t *testing.T) {
	svc := &mockService{}
	svc.On("ListMoods").Run(func(mock.Arguments) { panic("boom") }).Return([]services.MoodSummary(nil))

	rr := do(newTestHandler(svc), http.MethodGet, "/moods", "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, internalErrorMessage, decodeError(t, rr))
}
