package normalizer

import (
	"math"
	"math/bits"

	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/models"
)

// Stats computes success/failure counts and the fee total of a block.
// The fee sum saturates at math.MaxUint64 and sets FeesSaturated.
func Stats(block *models.Block) models.BlockStats {
	var stats models.BlockStats
	if block == nil {
		return stats
	}

	stats.Transactions = len(block.Transactions)
	for i := range block.Transactions {
		tx := &block.Transactions[i]
		if tx.IsSuccess {
			stats.Successful++
		} else {
			stats.Failed++
		}

		if stats.FeesSaturated {
			continue
		}
		sum, carry := bits.Add64(stats.TotalFees, tx.Fee, 0)
		if carry != 0 {
			stats.TotalFees = math.MaxUint64
			stats.FeesSaturated = true
			continue
		}
		stats.TotalFees = sum
	}

	return stats
}
