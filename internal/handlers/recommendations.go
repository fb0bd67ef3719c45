package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/moodify/backend/internal/middleware"
	"github.com/moodify/backend/internal/models"
	"github.com/moodify/backend/internal/services"
)

// RecommendationHandler turns a mood description into a track list.
type RecommendationHandler struct {
	translator *services.MoodTranslator
	spotify    *services.SpotifyService
}

// NewRecommendationHandler creates a RecommendationHandler.
func NewRecommendationHandler(translator *services.MoodTranslator, spotify *services.SpotifyService) *RecommendationHandler {
	return &RecommendationHandler{translator: translator, spotify: spotify}
}

// Get handles GET /api/recommendations?mood=...
func (h *RecommendationHandler) Get(w http.ResponseWriter, r *http.Request) {
	mood := r.URL.Query().Get("mood")
	if mood == "" {
		writeError(w, http.StatusBadRequest, "query parameter 'mood' is required")
		return
	}

	sess := middleware.GetSession(r.Context())
	profile := h.translator.Translate(r.Context(), mood)

	tracks, err := h.spotify.Recommendations(r.Context(), sess.AccessToken, profile)
	if err != nil {
		var recErr *services.RecommendationError
		if errors.As(err, &recErr) {
			writeErrorWithCause(r.Context(), w, http.StatusBadGateway,
				fmt.Sprintf("recommendations unavailable (upstream status %d)", recErr.Status), err)
			return
		}
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to fetch recommendations", err)
		return
	}

	writeJSON(w, http.StatusOK, models.RecommendationsResponse{
		Mood:   mood,
		Tracks: tracks,
	})
}
