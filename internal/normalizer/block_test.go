package normalizer

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"
	"testing"

	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/models"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blockTx(sig string, fee uint64, failed bool) rpc.TransactionResult {
	meta := &rpc.TransactionMeta{Fee: fee}
	if failed {
		meta.Err = map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}
	}
	return rpc.TransactionResult{
		Meta: meta,
		Transaction: &rpc.Transaction{
			Signatures: []string{sig},
			Message: rpc.TransactionMessage{
				AccountKeys:  []string{"payer-" + sig, "prog"},
				Instructions: []rpc.Instruction{{ProgramIDIndex: 1, Accounts: []int{0}, Data: sig}},
			},
		},
	}
}

func testBlock(txs ...rpc.TransactionResult) *rpc.Block {
	commission := uint8(10)
	return &rpc.Block{
		BlockHeight:       100,
		BlockTime:         1700000000,
		Blockhash:         "hash",
		ParentSlot:        99,
		PreviousBlockhash: "prev",
		Rewards: []rpc.Reward{
			{Pubkey: "validator", Lamports: 5000, PostBalance: 10000, RewardType: "Fee"},
			{Pubkey: "staker", Lamports: -20, PostBalance: 80, RewardType: "Rent", Commission: &commission},
		},
		Transactions: txs,
	}
}

func TestNormalizeBlock_Header(t *testing.T) {
	res, err := NormalizeBlock(testBlock(blockTx("s1", 10, false)), Options{})
	require.NoError(t, err)

	block := res.Block
	assert.Equal(t, uint64(100), block.BlockHeight)
	assert.Equal(t, int64(1700000000), block.BlockTime)
	assert.Equal(t, "hash", block.Blockhash)
	assert.Equal(t, uint64(99), block.ParentSlot)
	assert.Equal(t, "prev", block.PreviousBlockhash)
	assert.Empty(t, res.Skipped)

	require.Len(t, block.Rewards, 2)
	assert.Equal(t, models.Reward{Pubkey: "validator", Lamports: 5000, PostBalance: 10000, RewardType: "Fee"}, block.Rewards[0])
	require.NotNil(t, block.Rewards[1].Commission)
	assert.Equal(t, uint8(10), *block.Rewards[1].Commission)
	assert.Equal(t, int64(-20), block.Rewards[1].Lamports)
}

func TestNormalizeBlock_Stats(t *testing.T) {
	res, err := NormalizeBlock(testBlock(
		blockTx("s1", 10, false),
		blockTx("s2", 20, true),
		blockTx("s3", 30, false),
	), Options{})
	require.NoError(t, err)

	stats := Stats(res.Block)
	assert.Equal(t, 3, stats.Transactions)
	assert.Equal(t, 2, stats.Successful)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, uint64(60), stats.TotalFees)
	assert.False(t, stats.FeesSaturated)
	assert.Equal(t, stats.Transactions, stats.Successful+stats.Failed)
}

func TestNormalizeBlock_PreservesOrder(t *testing.T) {
	var txs []rpc.TransactionResult
	for i := 0; i < 50; i++ {
		txs = append(txs, blockTx(fmt.Sprintf("s%02d", i), uint64(i), i%7 == 0))
	}

	for _, workers := range []int{0, 1, 4, 64} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			res, err := NormalizeBlock(testBlock(txs...), Options{Workers: workers})
			require.NoError(t, err)
			require.Len(t, res.Block.Transactions, len(txs))
			for i, tx := range res.Block.Transactions {
				assert.Equal(t, fmt.Sprintf("s%02d", i), tx.Signature)
				assert.Equal(t, "prog", tx.Instructions[0].ProgramID)
			}
		})
	}
}

func TestNormalizeBlock_ParallelUnresolvedHook(t *testing.T) {
	var txs []rpc.TransactionResult
	for i := 0; i < 40; i++ {
		tx := blockTx(fmt.Sprintf("s%02d", i), 1, false)
		tx.Transaction.Message.Instructions = []rpc.Instruction{
			{ProgramIDIndex: 1, Accounts: []int{0, 9}},
			{ProgramIDIndex: 5, Accounts: []int{-1}},
		}
		txs = append(txs, tx)
	}

	var mu sync.Mutex
	var refs []UnresolvedRef
	opts := Options{
		Workers: 8,
		OnUnresolved: func(ref UnresolvedRef) {
			mu.Lock()
			defer mu.Unlock()
			refs = append(refs, ref)
		},
	}

	res, err := NormalizeBlock(testBlock(txs...), opts)
	require.NoError(t, err)
	require.Len(t, res.Block.Transactions, len(txs))

	for i, tx := range res.Block.Transactions {
		assert.Equal(t, fmt.Sprintf("s%02d", i), tx.Signature)
		assert.Equal(t, []string{"payer-" + tx.Signature, "UNKNOWN_IDX_9"}, tx.Instructions[0].Accounts)
		assert.Equal(t, "UNKNOWN_PROGRAM_INDEX", tx.Instructions[1].ProgramID)
		assert.Equal(t, []string{"UNKNOWN_IDX_-1"}, tx.Instructions[1].Accounts)
	}

	// three substitutions per transaction, each reported once
	require.Len(t, refs, 3*len(txs))
	perSig := make(map[string]int)
	for _, ref := range refs {
		perSig[ref.Signature]++
		assert.Equal(t, 2, ref.TableLen)
	}
	sigs := make([]string, 0, len(perSig))
	for sig, n := range perSig {
		assert.Equal(t, 3, n, sig)
		sigs = append(sigs, sig)
	}
	sort.Strings(sigs)
	assert.Len(t, sigs, len(txs))
	assert.Equal(t, "s00", sigs[0])
}

func TestNormalizeBlock_FailFast(t *testing.T) {
	bad := blockTx("s2", 20, false)
	bad.Transaction.Message.AccountKeys = nil
	worse := blockTx("s3", 30, false)
	worse.Transaction.Signatures = nil

	for _, workers := range []int{1, 3} {
		t.Run(fmt.Sprintf("workers=%d", workers), func(t *testing.T) {
			res, err := NormalizeBlock(testBlock(blockTx("s1", 10, false), bad, worse), Options{Workers: workers})
			assert.Nil(t, res)
			require.Error(t, err)

			var txErr *TransactionError
			require.True(t, errors.As(err, &txErr))
			assert.Equal(t, 1, txErr.Index)
			assert.Equal(t, "s2", txErr.Signature)
			assert.True(t, errors.Is(err, ErrMissingField))
		})
	}
}

func TestNormalizeBlock_Skip(t *testing.T) {
	bad := blockTx("s2", 20, false)
	bad.Transaction.Signatures = nil

	res, err := NormalizeBlock(testBlock(blockTx("s1", 10, false), bad, blockTx("s3", 30, true)), Options{Policy: Skip})
	require.NoError(t, err)

	require.Len(t, res.Block.Transactions, 2)
	assert.Equal(t, "s1", res.Block.Transactions[0].Signature)
	assert.Equal(t, "s3", res.Block.Transactions[1].Signature)

	require.Len(t, res.Skipped, 1)
	assert.Equal(t, 1, res.Skipped[0].Index)
	assert.Empty(t, res.Skipped[0].Signature)

	stats := Stats(res.Block)
	assert.Equal(t, 1, stats.Successful)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, uint64(40), stats.TotalFees)
}

func TestNormalizeBlock_Empty(t *testing.T) {
	res, err := NormalizeBlock(testBlock(), Options{})
	require.NoError(t, err)
	assert.NotNil(t, res.Block.Transactions)
	assert.Empty(t, res.Block.Transactions)
	assert.Equal(t, models.BlockStats{}, Stats(res.Block))

	_, err = NormalizeBlock(nil, Options{})
	assert.True(t, errors.Is(err, ErrMissingField))
}

func TestStats_SaturatesFees(t *testing.T) {
	block := &models.Block{Transactions: []models.Transaction{
		{Fee: math.MaxUint64 - 5, IsSuccess: true},
		{Fee: 10, IsSuccess: true},
		{Fee: 1, IsSuccess: false},
	}}

	stats := Stats(block)
	assert.True(t, stats.FeesSaturated)
	assert.Equal(t, uint64(math.MaxUint64), stats.TotalFees)
	assert.Equal(t, 2, stats.Successful)
	assert.Equal(t, 1, stats.Failed)
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    ErrorPolicy
		wantErr bool
	}{
		{in: "", want: FailFast},
		{in: "fail_fast", want: FailFast},
		{in: "SKIP", want: Skip},
		{in: "abort", wantErr: true},
	}

	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
	assert.Equal(t, "skip", Skip.String())
}
