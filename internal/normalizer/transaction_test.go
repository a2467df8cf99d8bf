package normalizer

import (
	"errors"
	"testing"

	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/models"
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTx(keys []string, ixs ...rpc.Instruction) *rpc.Transaction {
	return &rpc.Transaction{
		Signatures: []string{"sig1"},
		Message: rpc.TransactionMessage{
			AccountKeys:  keys,
			Instructions: ixs,
		},
	}
}

func TestNormalizeTransaction_StaticKeys(t *testing.T) {
	tx := newTx([]string{"A", "B"}, rpc.Instruction{ProgramIDIndex: 0, Accounts: []int{1}, Data: "x"})
	meta := &rpc.TransactionMeta{}

	out, err := NormalizeTransaction(tx, meta, Options{})
	require.NoError(t, err)
	require.Len(t, out.Instructions, 1)
	assert.Equal(t, models.Instruction{ProgramID: "A", Accounts: []string{"B"}, Data: "x"}, out.Instructions[0])
}

func TestNormalizeTransaction_LoadedAddressesAndOutOfRange(t *testing.T) {
	tx := newTx([]string{"A"}, rpc.Instruction{ProgramIDIndex: 2, Accounts: []int{5}, Data: "y"})
	meta := &rpc.TransactionMeta{
		LoadedAddresses: &rpc.LoadedAddresses{Writable: []string{"B"}, Readonly: []string{"C"}},
	}

	out, err := NormalizeTransaction(tx, meta, Options{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, out.AccountKeys)
	require.Len(t, out.Instructions, 1)
	assert.Equal(t, "C", out.Instructions[0].ProgramID)
	assert.Equal(t, []string{"UNKNOWN_IDX_5"}, out.Instructions[0].Accounts)
	assert.Equal(t, "y", out.Instructions[0].Data)
}

func TestNormalizeTransaction_UnknownProgram(t *testing.T) {
	tx := newTx([]string{"A"},
		rpc.Instruction{ProgramIDIndex: 4, Accounts: []int{0, 3, -1}},
	)

	out, err := NormalizeTransaction(tx, &rpc.TransactionMeta{}, Options{})
	require.NoError(t, err)
	assert.Equal(t, "UNKNOWN_PROGRAM_INDEX", out.Instructions[0].ProgramID)
	assert.Equal(t, []string{"A", "UNKNOWN_IDX_3", "UNKNOWN_IDX_-1"}, out.Instructions[0].Accounts)
}

func TestNormalizeTransaction_SuccessFlag(t *testing.T) {
	tests := []struct {
		name string
		err  interface{}
		want bool
	}{
		{name: "null error", err: nil, want: true},
		{name: "instruction error", err: map[string]interface{}{"InstructionError": []interface{}{0, "Custom"}}, want: false},
		{name: "string error", err: "AccountInUse", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NormalizeTransaction(newTx([]string{"A"}), &rpc.TransactionMeta{Err: tt.err}, Options{})
			require.NoError(t, err)
			assert.Equal(t, tt.want, out.IsSuccess)
		})
	}
}

func TestNormalizeTransaction_CopiesMeta(t *testing.T) {
	cu := uint64(1400)
	meta := &rpc.TransactionMeta{
		LogMessages:          []string{"Program log: hi"},
		PreBalances:          []uint64{100, 5},
		PostBalances:         []uint64{95, 5},
		Fee:                  5000,
		ComputeUnitsConsumed: &cu,
	}
	tx := newTx([]string{"payer", "other"})

	out, err := NormalizeTransaction(tx, meta, Options{})
	require.NoError(t, err)

	assert.Equal(t, "sig1", out.Signature)
	assert.Equal(t, "payer", out.FeePayer)
	assert.Equal(t, uint64(5000), out.Fee)
	assert.Equal(t, []string{"Program log: hi"}, out.LogMessages)
	assert.Equal(t, []uint64{100, 5}, out.PreBalances)
	assert.Equal(t, []uint64{95, 5}, out.PostBalances)
	require.NotNil(t, out.ComputeUnitsConsumed)
	assert.Equal(t, uint64(1400), *out.ComputeUnitsConsumed)

	// output must not share memory with the input
	meta.PreBalances[0] = 1
	meta.LogMessages[0] = "changed"
	cu = 1
	assert.Equal(t, uint64(100), out.PreBalances[0])
	assert.Equal(t, "Program log: hi", out.LogMessages[0])
	assert.Equal(t, uint64(1400), *out.ComputeUnitsConsumed)
}

func TestNormalizeTransaction_NilComputeUnits(t *testing.T) {
	out, err := NormalizeTransaction(newTx([]string{"A"}), &rpc.TransactionMeta{}, Options{})
	require.NoError(t, err)
	assert.Nil(t, out.ComputeUnitsConsumed)
	assert.NotNil(t, out.LogMessages)
	assert.NotNil(t, out.Instructions)
}

func TestNormalizeTransaction_MissingFields(t *testing.T) {
	tests := []struct {
		name  string
		tx    *rpc.Transaction
		meta  *rpc.TransactionMeta
		field string
	}{
		{
			name:  "no signatures",
			tx:    &rpc.Transaction{Message: rpc.TransactionMessage{AccountKeys: []string{"A"}}},
			meta:  &rpc.TransactionMeta{},
			field: "signatures",
		},
		{
			name:  "no account keys",
			tx:    &rpc.Transaction{Signatures: []string{"sig"}},
			meta:  &rpc.TransactionMeta{},
			field: "message.accountKeys",
		},
		{
			name:  "nil meta",
			tx:    newTx([]string{"A"}),
			field: "meta",
		},
		{
			name:  "nil transaction",
			meta:  &rpc.TransactionMeta{},
			field: "transaction",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := NormalizeTransaction(tt.tx, tt.meta, Options{})
			assert.Nil(t, out)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMissingField))

			var mf *MissingFieldError
			require.True(t, errors.As(err, &mf))
			assert.Equal(t, tt.field, mf.Field)
		})
	}
}

func TestNormalizeTransaction_StrictIndices(t *testing.T) {
	tx := newTx([]string{"A", "B"}, rpc.Instruction{ProgramIDIndex: 0, Accounts: []int{1, 9}})

	_, err := NormalizeTransaction(tx, &rpc.TransactionMeta{}, Options{StrictIndices: true})
	require.Error(t, err)

	var ue *UnresolvedIndexError
	require.True(t, errors.As(err, &ue))
	assert.Equal(t, RoleAccount, ue.Ref.Role)
	assert.Equal(t, 9, ue.Ref.Index)
	assert.Equal(t, 2, ue.Ref.TableLen)
	assert.Equal(t, "sig1", ue.Ref.Signature)
}

func TestNormalizeTransaction_OnUnresolved(t *testing.T) {
	tx := newTx([]string{"A"},
		rpc.Instruction{ProgramIDIndex: 0, Accounts: []int{0}},
		rpc.Instruction{ProgramIDIndex: 3, Accounts: []int{2, 0}},
	)

	var refs []UnresolvedRef
	_, err := NormalizeTransaction(tx, &rpc.TransactionMeta{}, Options{
		OnUnresolved: func(ref UnresolvedRef) { refs = append(refs, ref) },
	})
	require.NoError(t, err)
	require.Len(t, refs, 2)
	assert.Equal(t, UnresolvedRef{Signature: "sig1", Instruction: 1, Role: RoleProgram, Index: 3, TableLen: 1}, refs[0])
	assert.Equal(t, UnresolvedRef{Signature: "sig1", Instruction: 1, Role: RoleAccount, Index: 2, TableLen: 1}, refs[1])
}

func TestNormalizeTransaction_Deterministic(t *testing.T) {
	tx := newTx([]string{"A", "B"}, rpc.Instruction{ProgramIDIndex: 1, Accounts: []int{0, 1, 2}, Data: "3Bxs"})
	meta := &rpc.TransactionMeta{Fee: 10, PreBalances: []uint64{1, 2}}

	first, err := NormalizeTransaction(tx, meta, Options{})
	require.NoError(t, err)
	second, err := NormalizeTransaction(tx, meta, Options{})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
