package server

import (
	"net/http"
	"time"

	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/metrics"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RegisterRoutes configures all API routes, middleware, and error handlers
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	// Set custom error handler for consistent JSON responses
	e.HTTPErrorHandler = JSONErrorHandler(h.Logger)

	e.Use(SetJSONContentType)
	e.Use(SetNoCacheHeaders)

	// Optional API key authentication; health and metrics stay open for probes
	if cfg.APIKey != "" {
		e.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key",
			Skipper: func(c echo.Context) bool {
				p := c.Path()
				return p == "/v1/health" || p == "/metrics"
			},
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil
			},
		}))
	}

	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	v1 := e.Group("/v1")
	v1.GET("/health", h.Health)

	// Decode endpoints with body size and per-client rate limits
	decode := v1.Group("/decode")
	decode.Use(middleware.BodyLimit(cfg.bodyLimit()))
	decode.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(cfg.rateLimit()),
		Burst:     cfg.burst(),
		ExpiresIn: 2 * time.Minute,
	})))
	decode.POST("/transaction", h.DecodeTransaction)
	decode.POST("/block", h.DecodeBlock)

	// Feature flags CRUD endpoints, only when Redis is configured
	if h.Flags != nil {
		flagGroup := v1.Group("/flags")
		flagGroup.GET("", h.FlagsList)
		flagGroup.POST("", h.FlagsUpsert)
		flagGroup.GET("/:key", h.FlagsGet)
		flagGroup.PUT("/:key", h.FlagsUpdate)
		flagGroup.DELETE("/:key", h.FlagsDelete)
	}

	// Catch-all route for 404 responses
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}
