package flags

import (
	"context"

	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/constants"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/normalizer"
)

// DecodeOptions overlays the decode flags onto base. Flags that are not set
// keep the value from base.
func (s *Store) DecodeOptions(ctx context.Context, base normalizer.Options) (normalizer.Options, error) {
	opts := base

	strict, err := s.Enabled(ctx, constants.FlagStrictIndices, base.StrictIndices)
	if err != nil {
		return base, err
	}
	opts.StrictIndices = strict

	skip, err := s.Enabled(ctx, constants.FlagSkipFailed, base.Policy == normalizer.Skip)
	if err != nil {
		return base, err
	}
	if skip {
		opts.Policy = normalizer.Skip
	} else {
		opts.Policy = normalizer.FailFast
	}

	return opts, nil
}
