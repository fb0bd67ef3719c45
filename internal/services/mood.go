package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// ErrTranslationMiss signals that a translation strategy could not produce a
// profile for this mood. It is recovered inside the translator and never
// reaches callers.
var ErrTranslationMiss = errors.New("mood translation miss")

// TasteProfile is the structured hand-off between mood translation and
// recommendation retrieval: seed genre candidates plus audio-feature targets
// in [0.0, 1.0].
type TasteProfile struct {
	Genres        []string           `json:"genres"`
	AudioFeatures map[string]float64 `json:"audio_features"`
}

// translationStrategy turns a mood description into a TasteProfile, or
// reports a miss. Strategies must not partially populate a profile.
type translationStrategy interface {
	Translate(ctx context.Context, mood string) (TasteProfile, error)
}

// MoodTranslator runs an ordered chain of translation strategies and returns
// the first profile produced. The last strategy in the chain is total, so
// Translate never fails the caller.
type MoodTranslator struct {
	strategies []translationStrategy
}

// NewMoodTranslator builds the default chain: the Gemini-backed strategy
// first (a nil client is skipped), then the keyword fallback.
func NewMoodTranslator(gemini *GeminiClient) *MoodTranslator {
	var strategies []translationStrategy
	if gemini != nil {
		strategies = append(strategies, gemini)
	}
	strategies = append(strategies, keywordStrategy{})
	return &MoodTranslator{strategies: strategies}
}

// Translate maps a free-text mood to a TasteProfile. Strategy failures are
// absorbed here: any error moves on to the next strategy.
func (t *MoodTranslator) Translate(ctx context.Context, mood string) TasteProfile {
	for _, s := range t.strategies {
		profile, err := s.Translate(ctx, mood)
		if err != nil {
			slog.DebugContext(ctx, "translation strategy missed", slog.String("mood", mood), slog.String("reason", err.Error()))
			continue
		}
		return profile
	}
	// Unreachable while the keyword strategy terminates the chain.
	return neutralProfile()
}

// moodCategory maps a keyword set to a fixed genre list and feature triple.
type moodCategory struct {
	name     string
	keywords []string
	genres   []string
	valence  float64
	energy   float64
	dance    float64
}

// moodCategories are matched in order; the first category with any keyword
// present in the lower-cased mood wins.
var moodCategories = []moodCategory{
	{
		name:     "calm",
		keywords: []string{"calm", "chill", "relax", "peaceful", "mellow", "rainy", "cozy", "quiet", "unwind"},
		genres:   []string{"ambient", "chill", "new-age"},
		valence:  0.3, energy: 0.2, dance: 0.3,
	},
	{
		name:     "happy",
		keywords: []string{"happy", "joy", "upbeat", "cheerful", "sunny", "excited", "celebrat", "party", "good mood"},
		genres:   []string{"pop", "happy", "dance"},
		valence:  0.9, energy: 0.7, dance: 0.8,
	},
	{
		name:     "sad",
		keywords: []string{"sad", "melancholy", "heartbreak", "lonely", "gloomy", "crying", "blue", "miss you"},
		genres:   []string{"sad", "acoustic", "piano"},
		valence:  0.15, energy: 0.3, dance: 0.2,
	},
	{
		name:     "workout",
		keywords: []string{"workout", "gym", "run", "exercise", "training", "pump", "lift", "cardio"},
		genres:   []string{"work-out", "edm", "electronic"},
		valence:  0.7, energy: 0.9, dance: 0.8,
	},
	{
		name:     "focus",
		keywords: []string{"focus", "study", "concentrate", "coding", "work", "reading", "productive"},
		genres:   []string{"study", "classical", "minimal-techno"},
		valence:  0.5, energy: 0.3, dance: 0.2,
	},
}

// keywordStrategy is the deterministic fallback: pure, total, zero-latency.
type keywordStrategy struct{}

func (keywordStrategy) Translate(_ context.Context, mood string) (TasteProfile, error) {
	lowered := strings.ToLower(mood)
	for _, cat := range moodCategories {
		for _, kw := range cat.keywords {
			if strings.Contains(lowered, kw) {
				return TasteProfile{
					Genres: append([]string(nil), cat.genres...),
					AudioFeatures: map[string]float64{
						"valence":      cat.valence,
						"energy":       cat.energy,
						"danceability": cat.dance,
					},
				}, nil
			}
		}
	}
	return neutralProfile(), nil
}

func neutralProfile() TasteProfile {
	return TasteProfile{
		Genres: []string{defaultSeedGenre},
		AudioFeatures: map[string]float64{
			"valence":      0.5,
			"energy":       0.5,
			"danceability": 0.5,
		},
	}
}
