package models

// Reward is a protocol-level balance credit reported alongside a block
type Reward struct {
	Pubkey      string `json:"pubkey"`
	Lamports    int64  `json:"lamports"`
	PostBalance uint64 `json:"post_balance"`
	RewardType  string `json:"reward_type"`
	Commission  *uint8 `json:"commission"`
}

// Block is the normalized form of a getBlock result
type Block struct {
	BlockHeight       uint64        `json:"block_height"`
	BlockTime         int64         `json:"block_time"`
	Blockhash         string        `json:"blockhash"`
	ParentSlot        uint64        `json:"parent_slot"`
	PreviousBlockhash string        `json:"previous_blockhash"`
	Rewards           []Reward      `json:"rewards"`
	Transactions      []Transaction `json:"transactions"`
}

// BlockStats is a derived view over a Block used for reporting.
// It is not part of the persisted record.
type BlockStats struct {
	Transactions  int    `json:"transactions"`
	Successful    int    `json:"successful"`
	Failed        int    `json:"failed"`
	TotalFees     uint64 `json:"total_fees"`
	FeesSaturated bool   `json:"fees_saturated,omitempty"`
}
