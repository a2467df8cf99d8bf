package report

import (
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/constants"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/models"

	"github.com/sirupsen/logrus"
)

// ProgramLabel returns a display name for well-known programs and a shortened
// address for everything else
func ProgramLabel(addr string) string {
	if label, ok := constants.ProgramLabels[addr]; ok {
		return label
	}
	if len(addr) > 8 {
		return addr[:4] + "..." + addr[len(addr)-4:]
	}
	return addr
}

// Transaction logs a one-line summary of tx followed by any swap program
// interactions it contains
func Transaction(logger logrus.FieldLogger, tx *models.Transaction) {
	fields := logrus.Fields{
		"signature": tx.Signature,
		"success":   tx.IsSuccess,
		"fee_payer": tx.FeePayer,
		"fee":       tx.Fee,
		"accounts":  len(tx.AccountKeys),
		"ixs":       len(tx.Instructions),
	}
	if tx.ComputeUnitsConsumed != nil {
		fields["compute_units"] = *tx.ComputeUnitsConsumed
	}
	logger.WithFields(fields).Info("transaction")

	for i, ix := range tx.Instructions {
		if !constants.SwapPrograms[ix.ProgramID] {
			continue
		}
		logger.WithFields(logrus.Fields{
			"signature":   tx.Signature,
			"instruction": i,
			"program":     ProgramLabel(ix.ProgramID),
			"data":        ix.Data,
		}).Info("swap program interaction")
	}
}

// Block logs the block header, its rewards and the transaction statistics
func Block(logger logrus.FieldLogger, block *models.Block, stats models.BlockStats) {
	logger.WithFields(logrus.Fields{
		"block_height":       block.BlockHeight,
		"block_time":         block.BlockTime,
		"blockhash":          block.Blockhash,
		"parent_slot":        block.ParentSlot,
		"previous_blockhash": block.PreviousBlockhash,
		"rewards":            len(block.Rewards),
		"transactions":       len(block.Transactions),
	}).Info("block")

	for _, r := range block.Rewards {
		logger.WithFields(logrus.Fields{
			"pubkey":      r.Pubkey,
			"lamports":    r.Lamports,
			"reward_type": r.RewardType,
		}).Debug("reward")
	}

	entry := logger.WithFields(logrus.Fields{
		"successful": stats.Successful,
		"failed":     stats.Failed,
		"total_fees": stats.TotalFees,
	})
	if stats.FeesSaturated {
		entry.Warn("transaction stats (fee total saturated)")
		return
	}
	entry.Info("transaction stats")
}
