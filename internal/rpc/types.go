package rpc

import "fmt"

// RPCError represents a JSON-RPC error response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return fmt.Sprintf("rpc error %d: %s", e.Code, e.Message)
}

// LoadedAddresses holds the addresses resolved from address lookup tables
type LoadedAddresses struct {
	Writable []string `json:"writable"`
	Readonly []string `json:"readonly"`
}

// TransactionMeta contains execution metadata about a transaction
type TransactionMeta struct {
	Err                  interface{}      `json:"err"`
	LogMessages          []string         `json:"logMessages"`
	PreBalances          []uint64         `json:"preBalances"`
	PostBalances         []uint64         `json:"postBalances"`
	LoadedAddresses      *LoadedAddresses `json:"loadedAddresses"`
	Fee                  uint64           `json:"fee"`
	ComputeUnitsConsumed *uint64          `json:"computeUnitsConsumed"`
}

// Failed reports whether the transaction carried an execution error
func (m *TransactionMeta) Failed() bool {
	return m != nil && m.Err != nil
}

// Instruction is a compiled instruction referencing accounts by index
type Instruction struct {
	ProgramIDIndex int    `json:"programIdIndex"`
	Accounts       []int  `json:"accounts"`
	Data           string `json:"data"`
}

// TransactionMessage contains the static account keys and instructions
type TransactionMessage struct {
	AccountKeys  []string      `json:"accountKeys"`
	Instructions []Instruction `json:"instructions"`
}

// Transaction represents a signed transaction as returned by the RPC
type Transaction struct {
	Signatures []string           `json:"signatures"`
	Message    TransactionMessage `json:"message"`
}

// TransactionResult pairs a transaction with its execution metadata
type TransactionResult struct {
	Meta        *TransactionMeta `json:"meta"`
	Transaction *Transaction     `json:"transaction"`
}

// Reward is a protocol-level balance credit reported with a block
type Reward struct {
	Pubkey      string `json:"pubkey"`
	Lamports    int64  `json:"lamports"`
	PostBalance uint64 `json:"postBalance"`
	RewardType  string `json:"rewardType"`
	Commission  *uint8 `json:"commission"`
}

// Block is the result object of getBlock
type Block struct {
	BlockHeight       uint64              `json:"blockHeight"`
	BlockTime         int64               `json:"blockTime"`
	Blockhash         string              `json:"blockhash"`
	ParentSlot        uint64              `json:"parentSlot"`
	PreviousBlockhash string              `json:"previousBlockhash"`
	Rewards           []Reward            `json:"rewards"`
	Transactions      []TransactionResult `json:"transactions"`
}

// TransactionResponse is the response from getTransaction
type TransactionResponse struct {
	Result *TransactionResult `json:"result"`
	Error  *RPCError          `json:"error"`
}

// BlockResponse is the response from getBlock
type BlockResponse struct {
	Result *Block    `json:"result"`
	Error  *RPCError `json:"error"`
}
