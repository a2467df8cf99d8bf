// ============================================================================
// cmd/subscriber/main.go - Example Subscriber (Consumer)
// ============================================================================
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/config"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/constants"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/models"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/publish"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/report"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	logger := cfg.NewLogger()

	addr := cfg.RedisAddr
	if addr == "" {
		addr = "localhost:6379"
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	sub := publish.NewRedisPublisherFromClient(redis.NewClient(&redis.Options{Addr: addr}), logger)
	defer sub.Close()

	logger.WithField("redis", addr).Info("starting normalized block subscriber")

	// Every block with its stats
	go func() {
		err := sub.SubscribeBlocks(ctx, func(msg *publish.BlockMessage) {
			report.Block(logger, msg.Block, msg.Stats)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("block subscription ended")
		}
	}()

	// Transactions touching any program
	go func() {
		pattern := constants.PubSubChannelProgramPrefix + "*"
		err := sub.PSubscribeTransactions(ctx, pattern, func(channel string, tx *models.Transaction) {
			logger.WithFields(logrus.Fields{
				"channel":   channel,
				"signature": tx.Signature,
				"success":   tx.IsSuccess,
			}).Info("program transaction")
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			logger.WithError(err).Error("transaction subscription ended")
		}
	}()

	logger.Info("subscriber running, press Ctrl+C to stop")
	<-ctx.Done()
	logger.Info("shutting down subscriber")
}
