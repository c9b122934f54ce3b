package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	stateCookie    = "oauth_state"
	stateCookieTTL = 10 * time.Minute
	callbackPage   = "Puede cerrar esta pestaña"
)

type exchangeCodeRequest struct {
	Code string `json:"code"`
}

type exchangeCodeResponse struct {
	AccessToken string `json:"accessToken"`
	UserID      string `json:"userId"`
}

// Login handles GET /login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	state := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.svc.LoginURL(state), http.StatusFound)
}

// Callback handles GET /callback
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	// 1. Verify state; anything off restarts the flow
	q := r.URL.Query()
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != q.Get("state") || q.Get("error") != "" || q.Get("code") == "" {
		h.requestLogger(r).Warn("oauth callback rejected", "provider_error", q.Get("error"))
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/", MaxAge: -1})

	// 2. Exchange the code
	session, err := h.svc.ExchangeCode(r.Context(), q.Get("code"))
	if err != nil {
		status := statusFor(err)
		if status >= http.StatusInternalServerError {
			h.requestLogger(r).Error("oauth callback failed", "err", err)
		}
		http.Error(w, http.StatusText(status), status)
		return
	}

	h.requestLogger(r).Info("user logged in", "user", session.UserID)
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(callbackPage))
}

// ExchangeCode handles POST /exchange_code
func (h *Handler) ExchangeCode(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	var req exchangeCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	session, err := h.svc.ExchangeCode(r.Context(), req.Code)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, exchangeCodeResponse{AccessToken: session.AccessToken, UserID: session.UserID})
}
