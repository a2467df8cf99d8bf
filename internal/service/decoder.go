package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/metrics"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/models"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/normalizer"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/publish"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/rpc"

	"github.com/sirupsen/logrus"
)

// Decoder wraps the pure normalizer with validation, metrics and publishing
type Decoder struct {
	publisher         publish.Publisher
	validateAddresses bool
	logger            *logrus.Logger
}

// DecoderConfig holds the decoder dependencies
type DecoderConfig struct {
	Publisher         publish.Publisher
	ValidateAddresses bool
	Logger            *logrus.Logger
}

// BlockOutput is a decoded block with its derived stats
type BlockOutput struct {
	Block   *models.Block
	Stats   models.BlockStats
	Skipped []*normalizer.TransactionError
}

func NewDecoder(cfg DecoderConfig) *Decoder {
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	if cfg.Publisher == nil {
		cfg.Publisher = publish.Nop{}
	}
	return &Decoder{
		publisher:         cfg.Publisher,
		validateAddresses: cfg.ValidateAddresses,
		logger:            cfg.Logger,
	}
}

// DecodeTransaction normalizes one getTransaction result and publishes it.
// A publish failure is logged and does not fail the decode.
func (d *Decoder) DecodeTransaction(ctx context.Context, raw *rpc.TransactionResult, opts normalizer.Options) (*models.Transaction, error) {
	if raw == nil {
		metrics.DecodesTotal.WithLabelValues("transaction", "error").Inc()
		return nil, rpc.ErrMissingTransaction
	}
	if d.validateAddresses {
		if err := rpc.Validate(raw); err != nil {
			metrics.DecodesTotal.WithLabelValues("transaction", "invalid").Inc()
			return nil, err
		}
	}

	opts.OnUnresolved = d.observer(opts.OnUnresolved)
	tx, err := normalizer.NormalizeTransaction(raw.Transaction, raw.Meta, opts)
	if err != nil {
		metrics.DecodesTotal.WithLabelValues("transaction", "error").Inc()
		return nil, err
	}
	metrics.DecodesTotal.WithLabelValues("transaction", "ok").Inc()
	metrics.ObserveTransaction(tx.IsSuccess)

	if err := d.publisher.PublishTransaction(ctx, tx); err != nil {
		d.logger.WithError(err).WithField("signature", tx.Signature).Warn("publish transaction failed")
	}
	return tx, nil
}

// DecodeBlock normalizes one getBlock result, computes its stats and publishes it.
// With address validation on, a malformed transaction is handled by the
// block error policy like any other per-transaction failure.
func (d *Decoder) DecodeBlock(ctx context.Context, raw *rpc.Block, opts normalizer.Options) (*BlockOutput, error) {
	if raw == nil {
		metrics.DecodesTotal.WithLabelValues("block", "error").Inc()
		return nil, fmt.Errorf("nil block")
	}

	opts.OnUnresolved = d.observer(opts.OnUnresolved)
	res, err := d.normalizeBlock(raw, opts)
	if err != nil {
		status := "error"
		var valErr *rpc.ValidationError
		if errors.As(err, &valErr) {
			status = "invalid"
		}
		metrics.DecodesTotal.WithLabelValues("block", status).Inc()
		return nil, err
	}

	stats := normalizer.Stats(res.Block)
	metrics.DecodesTotal.WithLabelValues("block", "ok").Inc()
	metrics.SkippedTransactionsTotal.Add(float64(len(res.Skipped)))
	metrics.BlockFeesTotal.Add(float64(stats.TotalFees))
	for i := range res.Block.Transactions {
		metrics.ObserveTransaction(res.Block.Transactions[i].IsSuccess)
	}

	for _, skipped := range res.Skipped {
		d.logger.WithError(skipped.Err).WithFields(logrus.Fields{
			"index":     skipped.Index,
			"signature": skipped.Signature,
			"blockhash": res.Block.Blockhash,
		}).Warn("skipped transaction")
	}

	if err := d.publisher.PublishBlock(ctx, res.Block, stats); err != nil {
		d.logger.WithError(err).WithField("blockhash", res.Block.Blockhash).Warn("publish block failed")
	}

	return &BlockOutput{Block: res.Block, Stats: stats, Skipped: res.Skipped}, nil
}

// normalizeBlock runs address validation per transaction ahead of the
// normalizer. Invalid transactions never reach it: under FailFast the lowest
// failing index wins across both stages, under Skip they join Skipped with
// their original index.
func (d *Decoder) normalizeBlock(raw *rpc.Block, opts normalizer.Options) (*normalizer.BlockResult, error) {
	if !d.validateAddresses {
		return normalizer.NormalizeBlock(raw, opts)
	}

	var invalid []*normalizer.TransactionError
	valid := make([]rpc.TransactionResult, 0, len(raw.Transactions))
	origIndex := make([]int, 0, len(raw.Transactions))
	for i := range raw.Transactions {
		if err := rpc.Validate(&raw.Transactions[i]); err != nil {
			txErr := &normalizer.TransactionError{
				Index:     i,
				Signature: signatureOf(&raw.Transactions[i]),
				Err:       err,
			}
			if opts.Policy == normalizer.FailFast {
				// an earlier normalization failure outranks this one
				prefix := *raw
				prefix.Transactions = raw.Transactions[:i]
				if _, err := normalizer.NormalizeBlock(&prefix, opts); err != nil {
					return nil, err
				}
				return nil, txErr
			}
			invalid = append(invalid, txErr)
			continue
		}
		valid = append(valid, raw.Transactions[i])
		origIndex = append(origIndex, i)
	}

	if len(invalid) == 0 {
		return normalizer.NormalizeBlock(raw, opts)
	}

	filtered := *raw
	filtered.Transactions = valid
	res, err := normalizer.NormalizeBlock(&filtered, opts)
	if err != nil {
		return nil, err
	}

	skipped := make([]*normalizer.TransactionError, 0, len(invalid)+len(res.Skipped))
	for _, s := range res.Skipped {
		s.Index = origIndex[s.Index]
	}
	// merge two index-ordered lists
	i, j := 0, 0
	for i < len(invalid) || j < len(res.Skipped) {
		if j >= len(res.Skipped) || (i < len(invalid) && invalid[i].Index < res.Skipped[j].Index) {
			skipped = append(skipped, invalid[i])
			i++
			continue
		}
		skipped = append(skipped, res.Skipped[j])
		j++
	}
	res.Skipped = skipped
	return res, nil
}

func signatureOf(tx *rpc.TransactionResult) string {
	if tx.Transaction == nil || len(tx.Transaction.Signatures) == 0 {
		return ""
	}
	return tx.Transaction.Signatures[0]
}

// observer chains the metrics hook in front of any caller-supplied hook
func (d *Decoder) observer(next func(normalizer.UnresolvedRef)) func(normalizer.UnresolvedRef) {
	return func(ref normalizer.UnresolvedRef) {
		metrics.ObserveUnresolved(ref)
		d.logger.WithFields(logrus.Fields{
			"signature":   ref.Signature,
			"instruction": ref.Instruction,
			"role":        ref.Role,
			"index":       ref.Index,
		}).Debug("unresolved account reference")
		if next != nil {
			next(ref)
		}
	}
}
