package flags

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned by Get for a key that was never set or was deleted
	ErrNotFound = errors.New("flag not found")

	// ErrInvalidKey wraps every key rejected by ValidateKey
	ErrInvalidKey = errors.New("invalid flag key")
)

// Flag is a boolean runtime switch. The decode options read
// normalizer.strict_indices and normalizer.skip_failed; any other key is
// stored and listed but has no effect on decoding.
type Flag struct {
	Key       string    `json:"key"`
	Value     bool      `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
