package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransaction_Programs(t *testing.T) {
	tx := &Transaction{
		Instructions: []Instruction{
			{ProgramID: "B"},
			{ProgramID: "A"},
			{ProgramID: "B"},
			{ProgramID: "UNKNOWN_PROGRAM_INDEX"},
		},
	}
	assert.Equal(t, []string{"B", "A", "UNKNOWN_PROGRAM_INDEX"}, tx.Programs())

	assert.Empty(t, (&Transaction{}).Programs())
}
