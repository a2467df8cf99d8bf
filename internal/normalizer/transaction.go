package normalizer

import (
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/models"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/rpc"
)

// Options controls how references and failures are handled. The zero value
// sentinels bad indices, aborts a block on the first failed transaction and
// runs sequentially.
type Options struct {
	// StrictIndices fails the transaction on an out-of-range index instead of
	// substituting a sentinel.
	StrictIndices bool

	// Policy decides what a block does with a transaction that fails.
	Policy ErrorPolicy

	// Workers bounds the number of transactions normalized concurrently
	// within one block. Values below 2 run sequentially.
	Workers int

	// OnUnresolved, if set, is called for every sentinel substituted. It must
	// be safe for concurrent use when Workers > 1.
	OnUnresolved func(UnresolvedRef)
}

// NormalizeTransaction resolves every account reference of tx against its
// account table and returns the flat record. The inputs are not modified and
// the result shares no slices with them.
func NormalizeTransaction(tx *rpc.Transaction, meta *rpc.TransactionMeta, opts Options) (*models.Transaction, error) {
	if tx == nil {
		return nil, &MissingFieldError{Field: "transaction"}
	}
	if meta == nil {
		return nil, &MissingFieldError{Field: "meta"}
	}

	signature, err := head("signatures", tx.Signatures)
	if err != nil {
		return nil, err
	}
	feePayer, err := head("message.accountKeys", tx.Message.AccountKeys)
	if err != nil {
		return nil, err
	}

	table := BuildAccountTable(tx.Message.AccountKeys, meta.LoadedAddresses)

	instructions := make([]models.Instruction, len(tx.Message.Instructions))
	for i, ix := range tx.Message.Instructions {
		out, err := resolveInstruction(table, signature, i, ix, opts)
		if err != nil {
			return nil, err
		}
		instructions[i] = out
	}

	return &models.Transaction{
		Signature:            signature,
		FeePayer:             feePayer,
		IsSuccess:            !meta.Failed(),
		AccountKeys:          table.Keys(),
		Instructions:         instructions,
		LogMessages:          cloneStrings(meta.LogMessages),
		PreBalances:          cloneBalances(meta.PreBalances),
		PostBalances:         cloneBalances(meta.PostBalances),
		Fee:                  meta.Fee,
		ComputeUnitsConsumed: cloneUint64(meta.ComputeUnitsConsumed),
	}, nil
}

func resolveInstruction(table AccountTable, signature string, pos int, ix rpc.Instruction, opts Options) (models.Instruction, error) {
	unresolved := func(role RefRole, idx int) error {
		ref := UnresolvedRef{
			Signature:   signature,
			Instruction: pos,
			Role:        role,
			Index:       idx,
			TableLen:    table.Len(),
		}
		if opts.StrictIndices {
			return &UnresolvedIndexError{Ref: ref}
		}
		if opts.OnUnresolved != nil {
			opts.OnUnresolved(ref)
		}
		return nil
	}

	program, ok := table.ResolveProgram(ix.ProgramIDIndex)
	if !ok {
		if err := unresolved(RoleProgram, ix.ProgramIDIndex); err != nil {
			return models.Instruction{}, err
		}
	}

	accounts := make([]string, len(ix.Accounts))
	for j, idx := range ix.Accounts {
		addr, ok := table.ResolveAccount(idx)
		if !ok {
			if err := unresolved(RoleAccount, idx); err != nil {
				return models.Instruction{}, err
			}
		}
		accounts[j] = addr
	}

	return models.Instruction{
		ProgramID: program,
		Accounts:  accounts,
		Data:      ix.Data,
	}, nil
}

// head returns the first element of values or a MissingFieldError
func head(field string, values []string) (string, error) {
	if len(values) == 0 {
		return "", &MissingFieldError{Field: field}
	}
	return values[0], nil
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func cloneBalances(in []uint64) []uint64 {
	out := make([]uint64, len(in))
	copy(out, in)
	return out
}

func cloneUint64(v *uint64) *uint64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
