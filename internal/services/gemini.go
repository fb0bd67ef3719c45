package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const geminiModel = "gemini-1.5-flash"

// geminiPrompt instructs the model to answer with a bare TasteProfile JSON
// object. The genre vocabulary and feature semantics are pinned so the output
// survives validation downstream.
const geminiPrompt = `You are a music taste profiler. Translate the mood description below into a JSON object with exactly this shape:

{"genres": ["genre1", "genre2", "genre3"], "audio_features": {"valence": 0.0, "energy": 0.0, "danceability": 0.0}}

Rules:
- genres: 1 to 3 Spotify seed genres, chosen only from well-known tags such as pop, rock, dance, edm, electronic, ambient, chill, new-age, acoustic, piano, sad, happy, classical, study, work-out, jazz, hip-hop, indie, folk, metal, r-n-b, soul, techno, house.
- audio_features values are floats between 0.0 and 1.0.
- valence: 0.0 is sad, 1.0 is happy.
- energy: 0.0 is calm, 1.0 is intense.
- danceability: 0.0 is low, 1.0 is high.
- Return ONLY the JSON object. No explanations, no markdown.

Mood: %q`

// GeminiClient calls the Gemini text-generation API to translate moods.
// It is the primary translation strategy; every failure mode is a miss, not
// an error, so the keyword fallback can take over.
type GeminiClient struct {
	apiKey string
	http   *resty.Client
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// NewGeminiClient builds a client against the given API base URL.
func NewGeminiClient(apiKey, baseURL string) *GeminiClient {
	return &GeminiClient{
		apiKey: apiKey,
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(30 * time.Second),
	}
}

// Translate asks Gemini for a TasteProfile. A missing API key, transport
// failure, non-success status, or malformed response all count as a miss;
// a malformed profile is discarded wholesale, never merged.
func (c *GeminiClient) Translate(ctx context.Context, mood string) (TasteProfile, error) {
	if c.apiKey == "" {
		return TasteProfile{}, fmt.Errorf("gemini: %w: no API key configured", ErrTranslationMiss)
	}

	body := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: fmt.Sprintf(geminiPrompt, mood)}}},
		},
	}

	var parsed geminiResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(&parsed).
		Post("/v1beta/models/" + geminiModel + ":generateContent")
	if err != nil {
		return TasteProfile{}, fmt.Errorf("gemini: %w: %v", ErrTranslationMiss, err)
	}
	if resp.IsError() {
		return TasteProfile{}, fmt.Errorf("gemini: %w: status %d", ErrTranslationMiss, resp.StatusCode())
	}
	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return TasteProfile{}, fmt.Errorf("gemini: %w: empty response", ErrTranslationMiss)
	}

	raw := stripCodeFences(parsed.Candidates[0].Content.Parts[0].Text)

	var profile TasteProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		return TasteProfile{}, fmt.Errorf("gemini: %w: decode profile: %v", ErrTranslationMiss, err)
	}
	if err := validateProfile(profile); err != nil {
		return TasteProfile{}, fmt.Errorf("gemini: %w: %v", ErrTranslationMiss, err)
	}

	return profile, nil
}

// stripCodeFences removes an optional Markdown code fence wrapper from the
// model's text response.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	if idx := strings.Index(s, "\n"); idx != -1 {
		s = s[idx+1:]
	} else {
		s = strings.TrimPrefix(s, "```")
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// profileFeatures are the dimensions every TasteProfile must carry.
var profileFeatures = []string{"valence", "energy", "danceability"}

// validateProfile rejects profiles that would violate the TasteProfile
// invariants: genres must be present and all three audio features must be
// present and sit in [0, 1]. A profile failing any check is discarded
// wholesale; partial feature maps never cross the translator boundary.
func validateProfile(p TasteProfile) error {
	if len(p.Genres) == 0 {
		return fmt.Errorf("profile has no genres")
	}
	for _, name := range profileFeatures {
		v, ok := p.AudioFeatures[name]
		if !ok {
			return fmt.Errorf("profile missing feature %s", name)
		}
		if v < 0.0 || v > 1.0 {
			return fmt.Errorf("feature %s out of range: %v", name, v)
		}
	}
	return nil
}
