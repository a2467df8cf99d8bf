package rpc

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
)

const signatureLength = 64

// ValidationError reports a structurally malformed field in a raw transaction
type ValidationError struct {
	Field string
	Value string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks that signatures and addresses are well-formed base58.
// It does not verify signatures.
func Validate(tx *TransactionResult) error {
	if tx == nil || tx.Transaction == nil {
		return ErrMissingTransaction
	}

	for i, sig := range tx.Transaction.Signatures {
		raw, err := base58.Decode(sig)
		if err != nil {
			return &ValidationError{Field: fmt.Sprintf("signatures[%d]", i), Value: sig, Err: err}
		}
		if len(raw) != signatureLength {
			return &ValidationError{
				Field: fmt.Sprintf("signatures[%d]", i),
				Value: sig,
				Err:   fmt.Errorf("decoded length %d, want %d", len(raw), signatureLength),
			}
		}
	}

	if err := validateKeys("accountKeys", tx.Transaction.Message.AccountKeys); err != nil {
		return err
	}

	if tx.Meta != nil && tx.Meta.LoadedAddresses != nil {
		if err := validateKeys("loadedAddresses.writable", tx.Meta.LoadedAddresses.Writable); err != nil {
			return err
		}
		if err := validateKeys("loadedAddresses.readonly", tx.Meta.LoadedAddresses.Readonly); err != nil {
			return err
		}
	}

	return nil
}

func validateKeys(field string, keys []string) error {
	for i, key := range keys {
		if _, err := solana.PublicKeyFromBase58(key); err != nil {
			return &ValidationError{Field: fmt.Sprintf("%s[%d]", field, i), Value: key, Err: err}
		}
	}
	return nil
}
