package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode"

	"github.com/moodify/backend/internal/models"
)

// PlaylistError reports a failed playlist creation or track addition.
type PlaylistError struct {
	Status  int
	Message string
}

func (e *PlaylistError) Error() string {
	return fmt.Sprintf("spotify playlist operation failed: status %d: %s", e.Status, e.Message)
}

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Public      bool   `json:"public"`
}

type createPlaylistResponse struct {
	ID           string `json:"id"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

type addTracksRequest struct {
	URIs []string `json:"uris"`
}

// CreateMoodPlaylist creates a private playlist named after the mood and adds
// the given tracks in one batch call. The two calls run strictly in order and
// are not rolled back: a failing track addition leaves the empty playlist
// behind on Spotify, and its id is not returned to the caller.
func (s *SpotifyService) CreateMoodPlaylist(ctx context.Context, accessToken, userID, mood string, trackIDs []string) (models.PlaylistResponse, error) {
	if len(trackIDs) == 0 {
		return models.PlaylistResponse{}, fmt.Errorf("no track ids to add")
	}

	name := titleCaseMood(mood) + " Vibes"
	created, err := s.createPlaylist(ctx, accessToken, userID, name, mood)
	if err != nil {
		return models.PlaylistResponse{}, err
	}

	if err := s.addTracks(ctx, accessToken, created.ID, trackIDs); err != nil {
		return models.PlaylistResponse{}, err
	}

	return models.PlaylistResponse{
		ID:          created.ID,
		Name:        name,
		URL:         created.ExternalURLs.Spotify,
		TracksAdded: len(trackIDs),
	}, nil
}

func (s *SpotifyService) createPlaylist(ctx context.Context, accessToken, userID, name, mood string) (createPlaylistResponse, error) {
	body, err := json.Marshal(createPlaylistRequest{
		Name:        name,
		Description: fmt.Sprintf("Curated by Moodify for your %q mood", mood),
		Public:      false,
	})
	if err != nil {
		return createPlaylistResponse{}, fmt.Errorf("failed to encode playlist request: %w", err)
	}

	endpoint := s.apiURL + "/users/" + url.PathEscape(userID) + "/playlists"
	status, respBody, err := s.postJSON(ctx, accessToken, endpoint, body)
	if err != nil {
		return createPlaylistResponse{}, err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return createPlaylistResponse{}, &PlaylistError{Status: status, Message: string(respBody)}
	}

	var created createPlaylistResponse
	if err := json.Unmarshal(respBody, &created); err != nil {
		return createPlaylistResponse{}, fmt.Errorf("failed to decode playlist response: %w", err)
	}
	if created.ID == "" {
		return createPlaylistResponse{}, fmt.Errorf("playlist response missing id")
	}
	return created, nil
}

func (s *SpotifyService) addTracks(ctx context.Context, accessToken, playlistID string, trackIDs []string) error {
	uris := make([]string, len(trackIDs))
	for i, id := range trackIDs {
		uris[i] = "spotify:track:" + id
	}

	body, err := json.Marshal(addTracksRequest{URIs: uris})
	if err != nil {
		return fmt.Errorf("failed to encode add-tracks request: %w", err)
	}

	endpoint := s.apiURL + "/playlists/" + url.PathEscape(playlistID) + "/tracks"
	status, respBody, err := s.postJSON(ctx, accessToken, endpoint, body)
	if err != nil {
		return err
	}
	if status != http.StatusCreated && status != http.StatusOK {
		return &PlaylistError{Status: status, Message: string(respBody)}
	}
	return nil
}

func (s *SpotifyService) postJSON(ctx context.Context, accessToken, endpoint string, body []byte) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// titleCaseMood upper-cases the first letter of each word and lower-cases the
// rest, so "chill RAINY evening" becomes "Chill Rainy Evening".
func titleCaseMood(mood string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(mood)))
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
