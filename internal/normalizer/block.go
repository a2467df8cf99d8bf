package normalizer

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/models"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/rpc"
)

// ErrorPolicy decides how a block handles a transaction that cannot be normalized
type ErrorPolicy int

const (
	// FailFast aborts the whole block on the first failed transaction
	FailFast ErrorPolicy = iota
	// Skip drops the failed transaction, records it and continues
	Skip
)

func (p ErrorPolicy) String() string {
	switch p {
	case FailFast:
		return "fail_fast"
	case Skip:
		return "skip"
	default:
		return fmt.Sprintf("ErrorPolicy(%d)", int(p))
	}
}

// ParsePolicy parses "fail_fast" or "skip"
func ParsePolicy(s string) (ErrorPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "fail_fast", "failfast":
		return FailFast, nil
	case "skip":
		return Skip, nil
	default:
		return FailFast, fmt.Errorf("unknown error policy %q", s)
	}
}

// BlockResult is a normalized block plus the transactions dropped under Skip
type BlockResult struct {
	Block   *models.Block
	Skipped []*TransactionError
}

// NormalizeBlock normalizes every transaction of raw in input order and
// copies the reward list through. Under FailFast the first failing
// transaction (lowest index) is returned as a *TransactionError.
func NormalizeBlock(raw *rpc.Block, opts Options) (*BlockResult, error) {
	if raw == nil {
		return nil, &MissingFieldError{Field: "block"}
	}

	n := len(raw.Transactions)
	txs := make([]*models.Transaction, n)
	errs := make([]error, n)

	if opts.Workers > 1 && n > 1 {
		normalizeParallel(raw.Transactions, txs, errs, opts)
	} else {
		for i := range raw.Transactions {
			txs[i], errs[i] = NormalizeTransaction(raw.Transactions[i].Transaction, raw.Transactions[i].Meta, opts)
			if errs[i] != nil && opts.Policy == FailFast {
				break
			}
		}
	}

	result := &BlockResult{
		Block: &models.Block{
			BlockHeight:       raw.BlockHeight,
			BlockTime:         raw.BlockTime,
			Blockhash:         raw.Blockhash,
			ParentSlot:        raw.ParentSlot,
			PreviousBlockhash: raw.PreviousBlockhash,
			Rewards:           convertRewards(raw.Rewards),
			Transactions:      make([]models.Transaction, 0, n),
		},
	}

	for i := range raw.Transactions {
		if errs[i] != nil {
			txErr := &TransactionError{
				Index:     i,
				Signature: firstSignature(raw.Transactions[i].Transaction),
				Err:       errs[i],
			}
			if opts.Policy == FailFast {
				return nil, txErr
			}
			result.Skipped = append(result.Skipped, txErr)
			continue
		}
		if txs[i] == nil {
			continue
		}
		result.Block.Transactions = append(result.Block.Transactions, *txs[i])
	}

	return result, nil
}

func normalizeParallel(in []rpc.TransactionResult, txs []*models.Transaction, errs []error, opts Options) {
	workers := opts.Workers
	if workers > len(in) {
		workers = len(in)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				txs[i], errs[i] = NormalizeTransaction(in[i].Transaction, in[i].Meta, opts)
			}
		}()
	}

	for i := range in {
		jobs <- i
	}
	close(jobs)
	wg.Wait()
}

func convertRewards(in []rpc.Reward) []models.Reward {
	out := make([]models.Reward, len(in))
	for i, r := range in {
		out[i] = models.Reward{
			Pubkey:      r.Pubkey,
			Lamports:    r.Lamports,
			PostBalance: r.PostBalance,
			RewardType:  r.RewardType,
		}
		if r.Commission != nil {
			c := *r.Commission
			out[i].Commission = &c
		}
	}
	return out
}

func firstSignature(tx *rpc.Transaction) string {
	if tx == nil || len(tx.Signatures) == 0 {
		return ""
	}
	return tx.Signatures[0]
}
