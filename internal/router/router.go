// Package router wires the HTTP routes, middleware, and service
// constructors.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/moodify/backend/internal/config"
	"github.com/moodify/backend/internal/handlers"
	"github.com/moodify/backend/internal/middleware"
	"github.com/moodify/backend/internal/services"
	"github.com/moodify/backend/internal/store"
)

func New(cfg *config.Config, sessions *store.SessionStore) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestContextMiddleware)
	r.Use(middleware.CORSMiddleware(cfg.CORSAllowedOrigins))

	// Services
	authService := services.NewAuthService(cfg.SessionSecret, cfg.SessionDuration)
	spotifyService := services.NewSpotifyService(cfg.SpotifyClientID, cfg.SpotifyClientSecret, cfg.SpotifyRedirectURI, cfg.SpotifyAccountsURL, cfg.SpotifyAPIURL)

	var gemini *services.GeminiClient
	if cfg.GeminiAPIKey != "" {
		gemini = services.NewGeminiClient(cfg.GeminiAPIKey, cfg.GeminiAPIURL)
	}
	translator := services.NewMoodTranslator(gemini)

	// Handlers
	authHandler := handlers.NewAuthHandler(cfg, spotifyService, authService, sessions)
	configHandler := handlers.NewConfigHandler(cfg)
	recommendationHandler := handlers.NewRecommendationHandler(translator, spotifyService)
	playlistHandler := handlers.NewPlaylistHandler(spotifyService)

	// Rate limiter for the endpoints that fan out to Spotify and Gemini
	upstreamRateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerMinute)

	requireSession := middleware.AuthMiddleware(authService, sessions, spotifyService)

	// Routes
	r.Route("/api", func(r chi.Router) {
		// Health check
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"status":"ok"}`))
		})

		// Public configuration (Spotify client ID, etc.)
		r.Get("/config", configHandler.PublicConfig)

		// OAuth flow
		r.Route("/auth", func(r chi.Router) {
			r.Get("/login", authHandler.Login)
			r.Get("/callback", authHandler.Callback)

			r.With(requireSession).Post("/logout", authHandler.Logout)
		})

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(requireSession)

			r.Get("/me", authHandler.Me)

			r.With(upstreamRateLimiter.Middleware).Get("/recommendations", recommendationHandler.Get)
			r.With(upstreamRateLimiter.Middleware).Post("/playlists", playlistHandler.Create)
		})
	})

	return r
}
