package rpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

var (
	// ErrEmptyResult is returned when the RPC envelope carries a null result,
	// e.g. a transaction or slot the node does not have.
	ErrEmptyResult = errors.New("rpc response has a null result")

	// ErrMissingTransaction is returned when a result lacks its transaction or meta object
	ErrMissingTransaction = errors.New("rpc result is missing transaction or meta")
)

type envelope struct {
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

// DecodeTransactionResponse reads a getTransaction response. Both the full
// JSON-RPC envelope and a bare result object are accepted.
func DecodeTransactionResponse(r io.Reader) (*TransactionResult, error) {
	var result TransactionResult
	if err := decodeResult(r, &result); err != nil {
		return nil, err
	}
	if result.Transaction == nil || result.Meta == nil {
		return nil, ErrMissingTransaction
	}
	return &result, nil
}

// DecodeBlockResponse reads a getBlock response. Both the full JSON-RPC
// envelope and a bare result object are accepted.
func DecodeBlockResponse(r io.Reader) (*Block, error) {
	var block Block
	if err := decodeResult(r, &block); err != nil {
		return nil, err
	}
	for i, tx := range block.Transactions {
		if tx.Transaction == nil || tx.Meta == nil {
			return nil, fmt.Errorf("block transaction %d: %w", i, ErrMissingTransaction)
		}
	}
	return &block, nil
}

// LoadTransactionFile decodes a getTransaction response stored on disk
func LoadTransactionFile(path string) (*TransactionResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return DecodeTransactionResponse(f)
}

// LoadBlockFile decodes a getBlock response stored on disk
func LoadBlockFile(path string) (*Block, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return DecodeBlockResponse(f)
}

func decodeResult(r io.Reader, out interface{}) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if env.Error != nil {
		return env.Error
	}

	payload := data
	if env.Result != nil {
		if bytes.Equal(bytes.TrimSpace(env.Result), []byte("null")) {
			return ErrEmptyResult
		}
		payload = env.Result
	}

	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return nil
}
