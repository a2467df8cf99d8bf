package publish

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/constants"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/models"

	"github.com/segmentio/kafka-go"
)

const defaultTopicPrefix = "solana-normalized"

type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
}

// KafkaPublisher writes transactions keyed by signature and blocks keyed by blockhash
type KafkaPublisher struct {
	writer *kafka.Writer
	prefix string
}

func NewKafkaPublisher(cfg KafkaConfig) (*KafkaPublisher, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers are required")
	}
	if strings.TrimSpace(cfg.TopicPrefix) == "" {
		cfg.TopicPrefix = defaultTopicPrefix
	}
	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.Hash{},
		BatchTimeout:           500 * time.Millisecond,
		AllowAutoTopicCreation: true,
	}
	return &KafkaPublisher{writer: writer, prefix: cfg.TopicPrefix}, nil
}

func (p *KafkaPublisher) PublishTransaction(ctx context.Context, tx *models.Transaction) error {
	msg, err := p.transactionMessage(tx)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, msg)
}

func (p *KafkaPublisher) PublishBlock(ctx context.Context, block *models.Block, stats models.BlockStats) error {
	payload, err := json.Marshal(BlockMessage{Block: block, Stats: stats})
	if err != nil {
		return err
	}

	messages := make([]kafka.Message, 0, len(block.Transactions)+1)
	messages = append(messages, kafka.Message{
		Topic: p.topic(constants.KafkaTopicBlocks),
		Key:   []byte(block.Blockhash),
		Value: payload,
	})
	for i := range block.Transactions {
		msg, err := p.transactionMessage(&block.Transactions[i])
		if err != nil {
			return err
		}
		messages = append(messages, msg)
	}
	return p.writer.WriteMessages(ctx, messages...)
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

func (p *KafkaPublisher) transactionMessage(tx *models.Transaction) (kafka.Message, error) {
	payload, err := json.Marshal(tx)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Topic: p.topic(constants.KafkaTopicTransactions),
		Key:   []byte(tx.Signature),
		Value: payload,
	}, nil
}

func (p *KafkaPublisher) topic(suffix string) string {
	return p.prefix + "." + suffix
}
