package rest

import (
	"encoding/json"
	"net/http"

	"github.com/ewilliams-labs/moodshift/internal/core/domain"
	"github.com/ewilliams-labs/moodshift/internal/core/services"
)

type createPlaylistRequest struct {
	UserID       string   `json:"userId"`
	CurrentMood  string   `json:"currentMood"`
	DesiredMood  string   `json:"desiredMood"`
	ArtistsToUse []string `json:"artistsToUse"`
	AccessToken  string   `json:"accessToken"`
}

// CreatePlaylist handles POST /create_playlist
func (h *Handler) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	if !isJSONContentType(r) {
		writeError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
		return
	}

	// 1. Decode Request
	var req createPlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// 2. Call Service
	res, err := h.svc.CreateMoodPlaylist(r.Context(), services.CreatePlaylistRequest{
		UserID: req.UserID,
		TransitionRequest: domain.TransitionRequest{
			CurrentMood:     req.CurrentMood,
			DesiredMood:     req.DesiredMood,
			SelectedArtists: req.ArtistsToUse,
			AccessToken:     req.AccessToken,
		},
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	// 3. Respond
	writeJSON(w, http.StatusOK, res)
}

// GetPlaylistInfo handles GET /get_playlist_info?userId=
func (h *Handler) GetPlaylistInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.svc.GetPlaylistInfo(r.Context(), r.URL.Query().Get("userId"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// ListMoods handles GET /moods
func (h *Handler) ListMoods(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.ListMoods())
}

// PreviewTransition handles GET /moods/transition?from=&to=
func (h *Handler) PreviewTransition(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	steps, err := h.svc.PreviewTransition(q.Get("from"), q.Get("to"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, steps)
}
