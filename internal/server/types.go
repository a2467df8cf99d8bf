package server

import (
	"github.com/aman-zulfiqar/solana-tx-normalizer/internal/models"
)

// ErrorResponse represents a standardized error response format
type ErrorResponse struct {
	Error   string `json:"error"`             // Human-readable error message
	Code    int    `json:"code"`              // HTTP status code
	Details any    `json:"details,omitempty"` // Additional error details (dev mode only)
}

// HealthResponse represents the health check response
type HealthResponse struct {
	OK bool `json:"ok"`
}

// TransactionResponse wraps a normalized transaction
type TransactionResponse struct {
	Transaction *models.Transaction `json:"transaction"`
}

// SkippedTransaction describes a block transaction dropped under the skip policy
type SkippedTransaction struct {
	Index     int    `json:"index"`
	Signature string `json:"signature,omitempty"`
	Error     string `json:"error"`
}

// BlockResponse wraps a normalized block with its derived stats
type BlockResponse struct {
	Block   *models.Block        `json:"block"`
	Stats   models.BlockStats    `json:"stats"`
	Skipped []SkippedTransaction `json:"skipped"`
}

// FlagUpsertRequest represents a request to create or update a feature flag
type FlagUpsertRequest struct {
	Key   string `json:"key"`   // Flag key (must match regex pattern)
	Value bool   `json:"value"` // Flag value (true/false)
}

// FlagUpdateRequest represents a request to update an existing feature flag
type FlagUpdateRequest struct {
	Value bool `json:"value"`
}
