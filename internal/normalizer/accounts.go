package normalizer

import (
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/constants"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/rpc"
)

// AccountTable is the ordered list of addresses that instruction indices
// resolve against: static keys, then writable loaded addresses, then readonly
// loaded addresses. Duplicates are kept at every position they occur.
type AccountTable struct {
	keys []string
}

// BuildAccountTable assembles the table for one transaction
func BuildAccountTable(static []string, loaded *rpc.LoadedAddresses) AccountTable {
	size := len(static)
	if loaded != nil {
		size += len(loaded.Writable) + len(loaded.Readonly)
	}

	keys := make([]string, 0, size)
	keys = append(keys, static...)
	if loaded != nil {
		keys = append(keys, loaded.Writable...)
		keys = append(keys, loaded.Readonly...)
	}
	return AccountTable{keys: keys}
}

// Len returns the number of positions in the table
func (t AccountTable) Len() int {
	return len(t.keys)
}

// Get returns the address at idx, or false when idx is out of range
func (t AccountTable) Get(idx int) (string, bool) {
	if idx < 0 || idx >= len(t.keys) {
		return "", false
	}
	return t.keys[idx], true
}

// Keys returns a copy of the table contents
func (t AccountTable) Keys() []string {
	out := make([]string, len(t.keys))
	copy(out, t.keys)
	return out
}

// ResolveProgram returns the program address at idx or the program sentinel
func (t AccountTable) ResolveProgram(idx int) (string, bool) {
	if addr, ok := t.Get(idx); ok {
		return addr, true
	}
	return constants.UnknownProgramIndex, false
}

// ResolveAccount returns the account address at idx or an index-tagged sentinel
func (t AccountTable) ResolveAccount(idx int) (string, bool) {
	if addr, ok := t.Get(idx); ok {
		return addr, true
	}
	return constants.UnknownAccountIndex(idx), false
}
