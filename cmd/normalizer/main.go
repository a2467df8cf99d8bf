package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/config"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/publish"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/report"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/rpc"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/service"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Debugf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Debugf("loaded .env from %s", envPath)
	}
}

// main decodes a captured getTransaction or getBlock response and prints a summary.
//
//	normalizer [path] [transaction|block]
//
// Arguments override INPUT_PATH and INPUT_KIND.
func main() {
	bootLogger := logrus.New()
	loadEnv(bootLogger)

	cfg := config.Load()
	cfg.ApplyArgs(os.Args[1:])
	if err := cfg.Validate(); err != nil {
		bootLogger.WithError(err).Fatal("invalid configuration")
	}
	opts, err := cfg.DecodeOptions()
	if err != nil {
		bootLogger.WithError(err).Fatal("invalid configuration")
	}
	logger := cfg.NewLogger()

	if cfg.InputPath == "" {
		logger.Fatal("no input: pass a file path or set INPUT_PATH")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	pub, err := publish.New(cfg.PublishConfig())
	if err != nil {
		logger.WithError(err).Fatal("failed to create publisher")
	}
	defer func() {
		if err := pub.Close(); err != nil {
			logger.WithError(err).Warn("failed to close publisher")
		}
	}()

	decoder := service.NewDecoder(service.DecoderConfig{
		Publisher:         pub,
		ValidateAddresses: cfg.ValidateAddresses,
		Logger:            logger,
	})

	log := logger.WithFields(logrus.Fields{"input": cfg.InputPath, "kind": cfg.InputKind})

	var out any
	switch cfg.InputKind {
	case config.KindTransaction:
		raw, err := rpc.LoadTransactionFile(cfg.InputPath)
		if err != nil {
			log.WithError(err).Fatal("failed to load transaction")
		}
		tx, err := decoder.DecodeTransaction(ctx, raw, opts)
		if err != nil {
			log.WithError(err).Fatal("failed to normalize transaction")
		}
		report.Transaction(logger, tx)
		out = tx

	case config.KindBlock:
		raw, err := rpc.LoadBlockFile(cfg.InputPath)
		if err != nil {
			log.WithError(err).Fatal("failed to load block")
		}
		res, err := decoder.DecodeBlock(ctx, raw, opts)
		if err != nil {
			log.WithError(err).Fatal("failed to normalize block")
		}
		report.Block(logger, res.Block, res.Stats)
		out = publish.BlockMessage{Block: res.Block, Stats: res.Stats}
	}

	if cfg.OutputPath != "" {
		if err := writeJSON(cfg.OutputPath, out); err != nil {
			log.WithError(err).Fatal("failed to write output")
		}
		log.WithField("output", cfg.OutputPath).Info("wrote normalized output")
	}
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}
