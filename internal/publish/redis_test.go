package publish

import (
	"context"
	"testing"
	"time"

	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/constants"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   1, // Use different DB for tests
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedisPublisher_BlockRoundTrip(t *testing.T) {
	client := setupTestRedis(t)
	pub := NewRedisPublisherFromClient(client, nil)
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got := make(chan *BlockMessage, 1)
	go func() {
		_ = pub.SubscribeBlocks(ctx, func(bm *BlockMessage) {
			got <- bm
		})
	}()

	// give the subscription time to register
	time.Sleep(200 * time.Millisecond)

	block := &models.Block{
		Blockhash: "hash",
		Transactions: []models.Transaction{
			{Signature: "sig", Instructions: []models.Instruction{{ProgramID: "prog"}}},
		},
	}
	require.NoError(t, pub.PublishBlock(ctx, block, models.BlockStats{Transactions: 1, Successful: 1}))

	select {
	case bm := <-got:
		assert.Equal(t, "hash", bm.Block.Blockhash)
		assert.Equal(t, 1, bm.Stats.Successful)
		require.Len(t, bm.Block.Transactions, 1)
	case <-ctx.Done():
		t.Fatal("timed out waiting for block message")
	}
}

func TestRedisPublisher_ProgramChannels(t *testing.T) {
	client := setupTestRedis(t)
	pub := NewRedisPublisherFromClient(client, nil)
	defer pub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	type delivery struct {
		channel string
		sig     string
	}
	got := make(chan delivery, 4)
	go func() {
		_ = pub.PSubscribeTransactions(ctx, constants.PubSubChannelProgramPrefix+"*", func(channel string, tx *models.Transaction) {
			got <- delivery{channel: channel, sig: tx.Signature}
		})
	}()
	time.Sleep(200 * time.Millisecond)

	tx := &models.Transaction{
		Signature: "sig",
		Instructions: []models.Instruction{
			{ProgramID: "progA"}, {ProgramID: "progB"}, {ProgramID: "progA"},
		},
	}
	require.NoError(t, pub.PublishTransaction(ctx, tx))

	channels := map[string]bool{}
	for i := 0; i < 2; i++ {
		select {
		case d := <-got:
			assert.Equal(t, "sig", d.sig)
			channels[d.channel] = true
		case <-ctx.Done():
			t.Fatal("timed out waiting for transaction message")
		}
	}
	assert.True(t, channels[constants.PubSubChannelProgramPrefix+"progA"])
	assert.True(t, channels[constants.PubSubChannelProgramPrefix+"progB"])
}
