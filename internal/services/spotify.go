// Package services contains the core business logic for Moodify: mood
// translation, genre validation, and the Spotify client used for the OAuth
// token lifecycle, recommendation retrieval, and playlist creation.
package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/moodify/backend/internal/models"
)

const (
	spotifyScope = "playlist-modify-public playlist-modify-private user-read-private user-read-email"

	// Full and degraded request sizes for the recommendations endpoint.
	recommendationLimit = 20
	fallbackLimit       = 10

	// A market is always sent; without it the endpoint answers 404 for
	// otherwise valid seed combinations in some regions.
	recommendationMarket = "US"
)

// AuthError reports a failed token exchange, token refresh, or profile fetch.
type AuthError struct {
	Status  int
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("spotify auth failed: status %d: %s", e.Status, e.Message)
}

// RecommendationError reports a recommendations call that failed after the
// single degrade-and-retry attempt.
type RecommendationError struct {
	Status  int
	Message string
}

func (e *RecommendationError) Error() string {
	return fmt.Sprintf("spotify recommendations failed: status %d: %s", e.Status, e.Message)
}

// Credentials holds the token material returned by the accounts service.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// UserProfile identifies the authenticated Spotify user.
type UserProfile struct {
	ID          string
	DisplayName string
}

// SpotifyService talks to the Spotify accounts and Web API endpoints.
type SpotifyService struct {
	clientID     string
	clientSecret string
	redirectURI  string
	accountsURL  string
	apiURL       string
	httpClient   *http.Client
}

// NewSpotifyService creates a SpotifyService for the given application
// credentials. accountsURL and apiURL point at the accounts service and the
// Web API base respectively.
func NewSpotifyService(clientID, clientSecret, redirectURI, accountsURL, apiURL string) *SpotifyService {
	return &SpotifyService{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		accountsURL:  strings.TrimRight(accountsURL, "/"),
		apiURL:       strings.TrimRight(apiURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// AuthorizeURL builds the authorization redirect for the OAuth code flow.
func (s *SpotifyService) AuthorizeURL(state string) string {
	params := url.Values{}
	params.Set("client_id", s.clientID)
	params.Set("response_type", "code")
	params.Set("redirect_uri", s.redirectURI)
	params.Set("scope", spotifyScope)
	params.Set("state", state)
	params.Set("show_dialog", "true")
	return s.accountsURL + "/authorize?" + params.Encode()
}

type spotifyTokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// ExchangeCode trades an authorization code for access credentials.
func (s *SpotifyService) ExchangeCode(ctx context.Context, code string) (Credentials, error) {
	data := url.Values{}
	data.Set("grant_type", "authorization_code")
	data.Set("code", code)
	data.Set("redirect_uri", s.redirectURI)
	return s.requestToken(ctx, data)
}

// RefreshAccessToken trades a refresh token for a fresh access token. The
// accounts service may omit the refresh token from the response, in which
// case the caller keeps using the old one.
func (s *SpotifyService) RefreshAccessToken(ctx context.Context, refreshToken string) (Credentials, error) {
	data := url.Values{}
	data.Set("grant_type", "refresh_token")
	data.Set("refresh_token", refreshToken)
	return s.requestToken(ctx, data)
}

func (s *SpotifyService) requestToken(ctx context.Context, data url.Values) (Credentials, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.accountsURL+"/api/token", strings.NewReader(data.Encode()))
	if err != nil {
		return Credentials{}, fmt.Errorf("failed to create token request: %w", err)
	}

	basic := base64.StdEncoding.EncodeToString([]byte(s.clientID + ":" + s.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return Credentials{}, fmt.Errorf("token request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return Credentials{}, &AuthError{Status: resp.StatusCode, Message: string(body)}
	}

	var tokenResp spotifyTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return Credentials{}, fmt.Errorf("failed to decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return Credentials{}, fmt.Errorf("token response missing access_token")
	}
	if tokenResp.ExpiresIn <= 0 {
		tokenResp.ExpiresIn = 3600
	}

	return Credentials{
		AccessToken:  tokenResp.AccessToken,
		RefreshToken: tokenResp.RefreshToken,
		ExpiresIn:    tokenResp.ExpiresIn,
	}, nil
}

type spotifyProfileResponse struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// GetUserProfile fetches the authenticated user's id and display name.
func (s *SpotifyService) GetUserProfile(ctx context.Context, accessToken string) (UserProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"/me", nil)
	if err != nil {
		return UserProfile{}, fmt.Errorf("failed to create profile request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return UserProfile{}, fmt.Errorf("profile request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return UserProfile{}, &AuthError{Status: resp.StatusCode, Message: string(body)}
	}

	var profile spotifyProfileResponse
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return UserProfile{}, fmt.Errorf("failed to decode profile response: %w", err)
	}
	if profile.ID == "" {
		return UserProfile{}, fmt.Errorf("profile response missing id")
	}

	return UserProfile{ID: profile.ID, DisplayName: profile.DisplayName}, nil
}

// spotifyTrack is the raw track record shape of the Web API.
type spotifyTrack struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		Name   string `json:"name"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
	PreviewURL   string `json:"preview_url"`
	ExternalURLs struct {
		Spotify string `json:"spotify"`
	} `json:"external_urls"`
}

type spotifyRecommendationsResponse struct {
	Tracks []spotifyTrack `json:"tracks"`
}

// Recommendations fetches tracks matching the taste profile. The first
// attempt carries the validated seed genres plus the rounded energy target;
// a 404 (the endpoint's signal for an unresolvable parameter combination)
// triggers exactly one retry with a minimal parameter set. Any other failure
// surfaces as a RecommendationError.
func (s *SpotifyService) Recommendations(ctx context.Context, accessToken string, profile TasteProfile) ([]models.Track, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(recommendationLimit))
	params.Set("seed_genres", strings.Join(ValidateGenres(profile.Genres), ","))
	params.Set("market", recommendationMarket)
	if energy, ok := profile.AudioFeatures["energy"]; ok {
		params.Set("target_energy", strconv.FormatFloat(math.Round(energy*10)/10, 'f', 1, 64))
	}

	status, body, err := s.recommendationsRequest(ctx, accessToken, params)
	if err != nil {
		return nil, err
	}

	if status == http.StatusNotFound {
		minimal := url.Values{}
		minimal.Set("limit", strconv.Itoa(fallbackLimit))
		minimal.Set("seed_genres", defaultSeedGenre)
		minimal.Set("market", recommendationMarket)

		status, body, err = s.recommendationsRequest(ctx, accessToken, minimal)
		if err != nil {
			return nil, err
		}
	}

	if status != http.StatusOK {
		return nil, &RecommendationError{Status: status, Message: string(body)}
	}

	var recResp spotifyRecommendationsResponse
	if err := json.Unmarshal(body, &recResp); err != nil {
		return nil, fmt.Errorf("failed to decode recommendations response: %w", err)
	}

	tracks := make([]models.Track, len(recResp.Tracks))
	for i, raw := range recResp.Tracks {
		tracks[i] = normalizeTrack(raw)
	}
	return tracks, nil
}

func (s *SpotifyService) recommendationsRequest(ctx context.Context, accessToken string, params url.Values) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.apiURL+"/recommendations?"+params.Encode(), nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create recommendations request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("recommendations request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read recommendations response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// normalizeTrack maps one raw Spotify record to the stable Track shape:
// artists comma-joined in API order, first album image or none.
func normalizeTrack(raw spotifyTrack) models.Track {
	artists := make([]string, len(raw.Artists))
	for i, a := range raw.Artists {
		artists[i] = a.Name
	}

	var image string
	if len(raw.Album.Images) > 0 {
		image = raw.Album.Images[0].URL
	}

	return models.Track{
		ID:          raw.ID,
		Name:        raw.Name,
		Artist:      strings.Join(artists, ", "),
		Album:       raw.Album.Name,
		Image:       image,
		PreviewURL:  raw.PreviewURL,
		ExternalURL: raw.ExternalURLs.Spotify,
	}
}
