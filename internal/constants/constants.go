package constants

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Sentinels substituted for references that fall outside the account table
const (
	UnknownProgramIndex  = "UNKNOWN_PROGRAM_INDEX"
	UnknownAccountPrefix = "UNKNOWN_IDX_"
)

// UnknownAccountIndex returns the sentinel for an unresolvable account index.
// The index is embedded so consumers can tell which reference failed.
func UnknownAccountIndex(idx int) string {
	return fmt.Sprintf("%s%d", UnknownAccountPrefix, idx)
}

// Redis Pub/Sub channels
const (
	PubSubChannelTransactions  = "normalized:tx"
	PubSubChannelBlocks        = "normalized:block"
	PubSubChannelProgramPrefix = "normalized:program:"
)

// Kafka topic suffixes, joined to the configured prefix
const (
	KafkaTopicTransactions = "transactions"
	KafkaTopicBlocks       = "blocks"
)

// Feature flags read by the API when picking decode options
const (
	FlagStrictIndices = "normalizer.strict_indices"
	FlagSkipFailed    = "normalizer.skip_failed"
)

// Program addresses not exported by solana-go
const (
	Token2022Program          = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	AddressLookupTableProgram = "AddressLookupTab1e1111111111111111111111111"
	RaydiumAMMProgram         = "675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8"
	JupiterV6Program          = "JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4"
	OrcaSwapProgram           = "9W959DqEETiGZocYWCQPaJ6sBmUzgfxXfqGeTEdp3aQP"
	OrcaWhirlpoolProgram      = "whirLbMiicVdio4qvUfM5KAg6Ct8VwpYzGff3uctyCc"
)

// ProgramLabels maps well-known program addresses to display names
var ProgramLabels = map[string]string{
	solana.SystemProgramID.String():                    "System",
	solana.ComputeBudget.String():                      "ComputeBudget",
	solana.VoteProgramID.String():                      "Vote",
	solana.StakeProgramID.String():                     "Stake",
	solana.TokenProgramID.String():                     "SPL Token",
	solana.SPLAssociatedTokenAccountProgramID.String(): "Associated Token Account",
	solana.MemoProgramID.String():                      "Memo",
	solana.BPFLoaderUpgradeableProgramID.String():      "BPF Upgradeable Loader",

	Token2022Program:          "SPL Token-2022",
	AddressLookupTableProgram: "Address Lookup Table",
	RaydiumAMMProgram:         "Raydium AMM",
	JupiterV6Program:          "Jupiter",
	OrcaSwapProgram:           "Orca",
	OrcaWhirlpoolProgram:      "Orca Whirlpool",
}

// SwapPrograms are the DEX programs flagged in transaction summaries
var SwapPrograms = map[string]bool{
	RaydiumAMMProgram:    true,
	JupiterV6Program:     true,
	OrcaSwapProgram:      true,
	OrcaWhirlpoolProgram: true,
}
