// ============================================================================
// publish/redis.go - Redis Pub/Sub fan-out of normalized records
// ============================================================================
package publish

import (
	"context"
	"encoding/json"

	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/constants"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

type RedisPublisher struct {
	client *redis.Client
	logger *logrus.Logger
}

func NewRedisPublisher(addr string) *RedisPublisher {
	return NewRedisPublisherFromClient(redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   0,
	}), nil)
}

func NewRedisPublisherFromClient(client *redis.Client, logger *logrus.Logger) *RedisPublisher {
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisPublisher{client: client, logger: logger}
}

// PublishTransaction publishes to the transaction channel and to one channel
// per distinct program the transaction invokes
func (p *RedisPublisher) PublishTransaction(ctx context.Context, tx *models.Transaction) error {
	data, err := json.Marshal(tx)
	if err != nil {
		return err
	}

	pipe := p.client.Pipeline()
	pipe.Publish(ctx, constants.PubSubChannelTransactions, data)
	for _, program := range tx.Programs() {
		pipe.Publish(ctx, constants.PubSubChannelProgramPrefix+program, data)
	}

	_, err = pipe.Exec(ctx)
	return err
}

// PublishBlock publishes the block message and every transaction in it
func (p *RedisPublisher) PublishBlock(ctx context.Context, block *models.Block, stats models.BlockStats) error {
	data, err := json.Marshal(BlockMessage{Block: block, Stats: stats})
	if err != nil {
		return err
	}

	pipe := p.client.Pipeline()
	pipe.Publish(ctx, constants.PubSubChannelBlocks, data)
	for i := range block.Transactions {
		tx := &block.Transactions[i]
		txData, err := json.Marshal(tx)
		if err != nil {
			return err
		}
		pipe.Publish(ctx, constants.PubSubChannelTransactions, txData)
		for _, program := range tx.Programs() {
			pipe.Publish(ctx, constants.PubSubChannelProgramPrefix+program, txData)
		}
	}

	_, err = pipe.Exec(ctx)
	return err
}

// SubscribeBlocks delivers every published block to handler until ctx is done
func (p *RedisPublisher) SubscribeBlocks(ctx context.Context, handler func(*BlockMessage)) error {
	pubsub := p.client.Subscribe(ctx, constants.PubSubChannelBlocks)
	defer pubsub.Close()

	p.logger.WithField("channel", constants.PubSubChannelBlocks).Info("subscribed")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var bm BlockMessage
			if err := json.Unmarshal([]byte(msg.Payload), &bm); err != nil {
				p.logger.WithError(err).Warn("failed to unmarshal block message")
				continue
			}
			handler(&bm)
		}
	}
}

// PSubscribeTransactions delivers transactions published on channels matching
// pattern, e.g. "normalized:program:*"
func (p *RedisPublisher) PSubscribeTransactions(ctx context.Context, pattern string, handler func(channel string, tx *models.Transaction)) error {
	pubsub := p.client.PSubscribe(ctx, pattern)
	defer pubsub.Close()

	p.logger.WithField("pattern", pattern).Info("subscribed")

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var tx models.Transaction
			if err := json.Unmarshal([]byte(msg.Payload), &tx); err != nil {
				p.logger.WithError(err).Warn("failed to unmarshal transaction message")
				continue
			}
			handler(msg.Channel, &tx)
		}
	}
}

func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
