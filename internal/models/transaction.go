package models

// Instruction is a compiled instruction with every index resolved to an address
type Instruction struct {
	ProgramID string   `json:"program_id"`
	Accounts  []string `json:"accounts"`
	Data      string   `json:"data"` // opaque payload, passed through unchanged
}

// Transaction is the flat, self-contained form of one RPC transaction
type Transaction struct {
	Signature            string        `json:"signature"`
	FeePayer             string        `json:"fee_payer"`
	IsSuccess            bool          `json:"is_success"`
	AccountKeys          []string      `json:"account_keys"`
	Instructions         []Instruction `json:"instructions"`
	LogMessages          []string      `json:"log_messages"`
	PreBalances          []uint64      `json:"pre_balances"`
	PostBalances         []uint64      `json:"post_balances"`
	Fee                  uint64        `json:"fee"`
	ComputeUnitsConsumed *uint64       `json:"compute_units_consumed"`
}

// Programs returns the distinct program addresses invoked, in first-seen order
func (t *Transaction) Programs() []string {
	seen := make(map[string]struct{}, len(t.Instructions))
	out := make([]string, 0, len(t.Instructions))
	for _, ix := range t.Instructions {
		if _, ok := seen[ix.ProgramID]; ok {
			continue
		}
		seen[ix.ProgramID] = struct{}{}
		out = append(out, ix.ProgramID)
	}
	return out
}
