package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/moodify/backend/internal/middleware"
	"github.com/moodify/backend/internal/models"
	"github.com/moodify/backend/internal/services"
)

// PlaylistHandler saves a generated track list as a Spotify playlist.
type PlaylistHandler struct {
	spotify *services.SpotifyService
}

// NewPlaylistHandler creates a PlaylistHandler.
func NewPlaylistHandler(spotify *services.SpotifyService) *PlaylistHandler {
	return &PlaylistHandler{spotify: spotify}
}

// Create handles POST /api/playlists.
func (h *PlaylistHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePlaylistRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Mood == "" {
		writeError(w, http.StatusBadRequest, "mood is required")
		return
	}
	if len(req.TrackIDs) == 0 {
		writeError(w, http.StatusBadRequest, "track_ids must not be empty")
		return
	}

	sess := middleware.GetSession(r.Context())

	result, err := h.spotify.CreateMoodPlaylist(r.Context(), sess.AccessToken, sess.UserID, req.Mood, req.TrackIDs)
	if err != nil {
		var plErr *services.PlaylistError
		if errors.As(err, &plErr) {
			writeErrorWithCause(r.Context(), w, http.StatusBadGateway,
				fmt.Sprintf("playlist creation failed (upstream status %d)", plErr.Status), err)
			return
		}
		writeErrorWithCause(r.Context(), w, http.StatusInternalServerError, "failed to create playlist", err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}
