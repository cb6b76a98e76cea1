package api

import (
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/Afhammirza1/sharingapp/internal/api/middleware"
	"github.com/Afhammirza1/sharingapp/internal/handlers"
	"github.com/Afhammirza1/sharingapp/internal/store"
)

// Options configures the HTTP surface.
type Options struct {
	MaxBodyBytes   int64
	AllowedOrigins []string
	// RateLimiter is optional; nil disables rate limiting.
	RateLimiter middleware.Limiter
	// ResolveCaller defaults to middleware.AnonymousResolver.
	ResolveCaller middleware.CallerResolver
}

// NewRouter creates and configures the HTTP router. A nil store serves the
// informational routes and answers 503 on every store-backed route.
func NewRouter(logger zerolog.Logger, s store.RoomStore, opts Options) *chi.Mux {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 64 * 1024
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.ResolveCaller == nil {
		opts.ResolveCaller = middleware.AnonymousResolver
	}

	r := chi.NewRouter()

	// Metrics middleware (first to capture all requests)
	r.Use(middleware.Metrics)

	r.Use(middleware.SecurityHeaders)

	// Standard middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders:   []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(middleware.Identify(opts.ResolveCaller))

	h := handlers.NewHandler(s, logger)

	// Metrics endpoint (for Prometheus scraping)
	r.Handle("/metrics", promhttp.Handler())

	// Request checks. Store-backed routes run them after the store gate.
	guard := chi.Middlewares{
		middleware.MaxBodySize(opts.MaxBodyBytes),
		middleware.ValidateRequest,
	}
	if opts.RateLimiter != nil {
		guard = append(guard, opts.RateLimiter.Middleware)
	}

	r.Route("/api", func(r chi.Router) {
		// Public routes (answer without a store)
		r.Group(func(r chi.Router) {
			r.Use(guard...)

			r.Get("/", h.Root)
			r.Get("/health", h.Health)
			r.Post("/test-connection", h.TestConnection)
			r.Post("/test-firebase", h.TestConnection)
		})

		// Store-backed routes
		r.Group(func(r chi.Router) {
			r.Use(h.RequireStore)
			r.Use(guard...)

			r.Post("/rooms", h.CreateRoom)
			r.Get("/rooms/{code}", h.GetRoom)
			r.Post("/rooms/{code}/files", h.AppendFile)
			r.Post("/rooms/{code}/messages", h.SendMessage)
			r.Get("/rooms/{code}/messages", h.GetMessages)
			r.Post("/rooms/{code}/signal", h.PostSignal)
		})
	})

	return r
}
