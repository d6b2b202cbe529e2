// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, the global fault boundary, metrics,
// compression, CORS, security headers, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Exactly one fault boundary for the whole pipeline; handlers never
//     install their own recovery
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/tbourn/go-polls-backend/internal/config"
	"github.com/tbourn/go-polls-backend/internal/domain"
	"github.com/tbourn/go-polls-backend/internal/http/handlers"
	"github.com/tbourn/go-polls-backend/internal/http/middleware"
	"github.com/tbourn/go-polls-backend/internal/repo"
	"github.com/tbourn/go-polls-backend/internal/services"
)

// pollRepoShim adapts the repository free functions to the services.PollRepo
// interface expected by the PollService. This keeps services decoupled from
// the concrete repo package while reusing existing functions.
type pollRepoShim struct{}

// CreatePoll proxies repo.CreatePoll.
func (pollRepoShim) CreatePoll(ctx context.Context, db *gorm.DB, title, note string, optionLabels []string) (*domain.Poll, error) {
	return repo.CreatePoll(ctx, db, title, note, optionLabels)
}

// GetPoll proxies repo.GetPoll.
func (pollRepoShim) GetPoll(ctx context.Context, db *gorm.DB, id string) (*domain.Poll, error) {
	return repo.GetPoll(ctx, db, id)
}

// CountPolls proxies repo.CountPolls (pagination support).
func (pollRepoShim) CountPolls(ctx context.Context, db *gorm.DB) (int64, error) {
	return repo.CountPolls(ctx, db)
}

// ListPollsPage proxies repo.ListPollsPage (pagination support).
func (pollRepoShim) ListPollsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.Poll, error) {
	return repo.ListPollsPage(ctx, db, offset, limit)
}

// UpdatePollTitle proxies repo.UpdatePollTitle.
func (pollRepoShim) UpdatePollTitle(ctx context.Context, db *gorm.DB, id, title string) error {
	return repo.UpdatePollTitle(ctx, db, id, title)
}

// ClosePoll proxies repo.ClosePoll.
func (pollRepoShim) ClosePoll(ctx context.Context, db *gorm.DB, id string) error {
	return repo.ClosePoll(ctx, db, id)
}

// DeletePoll proxies repo.DeletePoll.
func (pollRepoShim) DeletePoll(ctx context.Context, db *gorm.DB, id string) error {
	return repo.DeletePoll(ctx, db, id)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), compression, rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured logs with identity masking
//  4. FaultBoundary: capture panics after logger
//  5. Body size limiter
//  6. Metrics
//  7. Gzip compression
//  8. Rate limiter (per voter/IP)
//  9. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with identity masking
	r.Use(middleware.Logger(middleware.LoggerOptions{}))

	// 4) The single fault boundary: panics become sanitized problem 500s
	r.Use(middleware.FaultBoundary())

	// 5) Global body size limit (256 KiB; poll payloads are small)
	r.Use(limitBody(256 << 10))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) Compress JSON responses
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 8) Token-bucket rate limiter per voter/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByVoterOrIP())
	r.Use(rl.Handler())

	// 9) CORS posture (safe defaults: allow all if none configured)
	corsHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Voter-ID"}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     corsHeaders,
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
	}))

	// Fallbacks emit problem documents too
	r.NoRoute(func(c *gin.Context) {
		handlers.Problem(c, http.StatusNotFound)
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Problem(c, http.StatusMethodNotAllowed)
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Dependency injection: services ← repo/db
	pollSvc := services.NewPollService(db, pollRepoShim{})
	pollSvc.TitleMaxLen = cfg.PollTitleMaxLen
	pollSvc.MinOptions = cfg.PollMinOptions
	voteSvc := &services.VoteService{DB: db}
	h := handlers.New(pollSvc, voteSvc)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Polls
		api.POST("/polls", h.CreatePoll)
		api.GET("/polls", h.ListPolls)
		api.GET("/polls/:id", h.GetPoll)
		api.PUT("/polls/:id/title", h.RenamePoll)
		api.POST("/polls/:id/close", h.ClosePoll)
		api.DELETE("/polls/:id", h.DeletePoll)

		// Votes
		api.POST("/polls/:id/votes", h.CastVote)
		api.GET("/polls/:id/results", h.PollResults)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
