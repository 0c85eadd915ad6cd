package postgres

import (
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestNewClient_RequiresDSN(t *testing.T) {
	_, err := NewClient()
	assert.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert admin: %w", &pq.Error{Code: UniqueViolation})
	assert.True(t, IsUniqueViolation(err))
	assert.False(t, IsUniqueViolation(&pq.Error{Code: "23503"}))
	assert.False(t, IsUniqueViolation(fmt.Errorf("plain")))
}
