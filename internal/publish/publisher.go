package publish

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/models"
)

// Publisher fans normalized records out to a transport. Nothing is stored.
type Publisher interface {
	// PublishTransaction publishes a single normalized transaction
	PublishTransaction(ctx context.Context, tx *models.Transaction) error

	// PublishBlock publishes a normalized block together with its stats
	PublishBlock(ctx context.Context, block *models.Block, stats models.BlockStats) error

	io.Closer
}

// BlockMessage is the payload published for a block
type BlockMessage struct {
	Block *models.Block     `json:"block"`
	Stats models.BlockStats `json:"stats"`
}

// Sink names accepted by New
const (
	SinkNone  = "none"
	SinkRedis = "redis"
	SinkKafka = "kafka"
)

// Config selects and configures a publisher
type Config struct {
	Sink             string
	RedisAddr        string
	KafkaBrokers     []string
	KafkaTopicPrefix string
}

// New builds the publisher for cfg.Sink
func New(cfg Config) (Publisher, error) {
	switch strings.ToLower(cfg.Sink) {
	case "", SinkNone:
		return Nop{}, nil
	case SinkRedis:
		if cfg.RedisAddr == "" {
			return nil, fmt.Errorf("redis sink requires a redis address")
		}
		return NewRedisPublisher(cfg.RedisAddr), nil
	case SinkKafka:
		return NewKafkaPublisher(KafkaConfig{
			Brokers:     cfg.KafkaBrokers,
			TopicPrefix: cfg.KafkaTopicPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown publish sink %q", cfg.Sink)
	}
}

// Nop discards everything
type Nop struct{}

func (Nop) PublishTransaction(context.Context, *models.Transaction) error { return nil }

func (Nop) PublishBlock(context.Context, *models.Block, models.BlockStats) error { return nil }

func (Nop) Close() error { return nil }
