package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/api/middleware"
	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/auth"
	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/config"
	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/handlers"
	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/messaging"
	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/models"
	"github.com/Helm1Rahmad1/WEB-LIDM-sub000/internal/store"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(logger zerolog.Logger, cfg *config.Config, db store.DataStore, redisStore *store.RedisStore) *chi.Mux {
	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	// Security middleware (order matters!)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.MaxBodySize(16 * 1024)) // 16KB max body
	r.Use(middleware.ValidateRequest)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Rate limiting (requires Redis)
	if redisStore != nil {
		limiter := middleware.NewRateLimiter(redisStore.Client(), logger, middleware.RateLimiterConfig{
			Whitelist:        cfg.RateLimitWhitelist,
			AutoBlockEnabled: cfg.AutoBlockEnabled,
		})
		r.Use(limiter.Middleware)
	}

	// CORS - the Next.js frontend sends the session cookie
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Wire the messaging core and the handlers
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL)
	messageService := messaging.NewService(db, redisStore, logger)
	h := handlers.NewHandler(db, redisStore, messageService, tokens, !cfg.IsDevelopment())
	authmw := middleware.NewAuthMiddleware(db, tokens)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Public routes (no auth required)
	r.Get("/", h.Root)
	r.Get("/health", h.Health)
	r.Get("/stats", h.Stats)
	r.Post("/auth/register", h.Register)
	r.Post("/auth/login", h.Login)

	// Authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(authmw.RequireAuth)

		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/me", h.Me)
		r.Get("/users/{id}", h.GetUser)

		// Messaging
		r.Post("/messages/{id}", h.SendMessage)
		r.Get("/messages/{id}", h.GetThread)
		r.Get("/messages/unread/count", h.UnreadCount)
		r.Patch("/messages/{id}/read", h.MarkMessageRead)
		r.Get("/conversations", h.ListConversations)
		r.Post("/conversations/{id}/read", h.MarkConversationRead)

		// Rooms
		r.With(middleware.RequireRole(models.RoleGuru)).Post("/rooms", h.CreateRoom)
		r.Post("/rooms/join", h.JoinRoom)
		r.Get("/rooms", h.ListRooms)
		r.Get("/rooms/{id}/members", h.RoomMembers)

		// Learning progress and test scores
		r.Put("/progress/{letter}", h.UpsertProgress)
		r.Get("/progress", h.ListProgress)
		r.Put("/scores/{letter}", h.UpsertScore)
		r.Get("/scores", h.ListScores)
	})

	return r
}
