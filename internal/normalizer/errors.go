package normalizer

import (
	"errors"
	"fmt"
)

// ErrMissingField matches every *MissingFieldError via errors.Is
var ErrMissingField = errors.New("missing required field")

// MissingFieldError is returned when a required sequence is empty, such as a
// transaction without signatures or a message without account keys.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("missing required field: %s", e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}

// RefRole tells whether an index referenced a program or an instruction account
type RefRole string

const (
	RoleProgram RefRole = "program"
	RoleAccount RefRole = "account"
)

// UnresolvedRef describes one index that fell outside the account table
type UnresolvedRef struct {
	Signature   string  `json:"signature"`
	Instruction int     `json:"instruction"`
	Role        RefRole `json:"role"`
	Index       int     `json:"index"`
	TableLen    int     `json:"table_len"`
}

// UnresolvedIndexError is returned instead of a sentinel when strict index
// resolution is enabled.
type UnresolvedIndexError struct {
	Ref UnresolvedRef
}

func (e *UnresolvedIndexError) Error() string {
	return fmt.Sprintf("instruction %d: %s index %d out of range (table has %d accounts)",
		e.Ref.Instruction, e.Ref.Role, e.Ref.Index, e.Ref.TableLen)
}

// TransactionError identifies which transaction of a block failed to normalize
type TransactionError struct {
	Index     int
	Signature string
	Err       error
}

func (e *TransactionError) Error() string {
	if e.Signature != "" {
		return fmt.Sprintf("transaction %d (%s): %v", e.Index, e.Signature, e.Err)
	}
	return fmt.Sprintf("transaction %d: %v", e.Index, e.Err)
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}
