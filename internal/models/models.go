// Package models defines the request and response shapes of the HTTP API.
package models

// Track is the stable track representation returned to clients.
// It is built from one raw Spotify record and never persisted.
type Track struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Artist      string `json:"artist"`
	Album       string `json:"album"`
	Image       string `json:"image,omitempty"`
	PreviewURL  string `json:"preview_url,omitempty"`
	ExternalURL string `json:"external_url"`
}

// Recommendations
type RecommendationsResponse struct {
	Mood   string  `json:"mood"`
	Tracks []Track `json:"tracks"`
}

// Playlist creation
type CreatePlaylistRequest struct {
	Mood     string   `json:"mood"`
	TrackIDs []string `json:"track_ids"`
}

type PlaylistResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	URL         string `json:"url"`
	TracksAdded int    `json:"tracks_added"`
}

// Authenticated user summary
type MeResponse struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
}

// Public configuration
type PublicConfigResponse struct {
	SpotifyClientID string `json:"spotifyClientId"`
}

// Error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
