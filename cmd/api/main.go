package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/config"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/flags"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/publish"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/server"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/service"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main is the entry point for the API server
// It initializes all dependencies and starts the HTTP server with graceful shutdown
func main() {
	bootLogger := logrus.New()

	// load .env BEFORE anything reads os.Getenv
	loadEnv(bootLogger)

	// Load and validate configuration from environment variables
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		bootLogger.WithError(err).Fatal("invalid configuration")
	}
	logger := cfg.NewLogger()

	opts, err := cfg.DecodeOptions()
	if err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown (Ctrl+C, SIGTERM)
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	// Feature flags are optional and need Redis
	var flagStore *flags.Store
	if cfg.RedisAddr != "" {
		rclient := redis.NewClient(&redis.Options{
			Addr: cfg.RedisAddr,
			DB:   0, // Use default database for main application
		})
		defer rclient.Close()
		if err := rclient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Fatal("failed to connect to Redis")
		}

		store, err := flags.NewStore(rclient)
		if err != nil {
			logger.WithError(err).Fatal("failed to create flags store")
		}
		flagStore = store
	} else {
		logger.Info("REDIS_ADDR not set, feature flags disabled")
	}

	pub, err := publish.New(cfg.PublishConfig())
	if err != nil {
		logger.WithError(err).Fatal("failed to create publisher")
	}
	defer func() {
		_ = pub.Close()
	}()

	// Create handlers with all dependencies injected
	h := &server.Handlers{
		Decoder: service.NewDecoder(service.DecoderConfig{
			Publisher:         pub,
			ValidateAddresses: cfg.ValidateAddresses,
			Logger:            logger,
		}),
		Flags:         flagStore,       // Optional Redis-backed feature flags
		Options:       opts,            // Config-level decode defaults
		DecodeTimeout: cfg.HTTPTimeout, // Per-request decode timeout
		DevMode:       cfg.DevMode,     // Enable detailed error responses in development
		Logger:        logger,          // Structured logger
	}

	// Create HTTP server with configuration and handlers
	srv, err := server.NewServer(server.ServerDeps{
		Handlers: h,
		Config: server.ServerConfig{
			Addr:      cfg.APIAddr,      // Server bind address (e.g., ":8090")
			DevMode:   cfg.DevMode,      // Development mode flag
			APIKey:    cfg.APIKey,       // Optional API key for authentication
			BodyLimit: cfg.APIBodyLimit, // Max decode request body
			RateLimit: cfg.APIRateLimit, // Decode requests per second per client
			Burst:     cfg.APIBurst,     // Decode request burst per client
		},
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create http server")
	}

	// Setup graceful shutdown in a separate goroutine
	go func() {
		<-sigCh // Wait for shutdown signal
		logger.Info("shutting down")
		cancel()                               // Cancel context to stop ongoing operations
		_ = srv.Shutdown(context.Background()) // Gracefully shutdown HTTP server
	}()

	// Start the HTTP server
	logger.WithField("addr", cfg.APIAddr).Info("api server starting")
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("api server failed")
	}

	// Wait for server to be fully shut down
	if err := srv.WaitClosed(context.Background()); err != nil {
		logger.WithError(err).Warn("server did not close cleanly")
	}
}
