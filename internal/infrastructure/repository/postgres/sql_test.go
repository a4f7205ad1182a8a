package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	t.Run("matches 23505 through wrapping", func(t *testing.T) {
		err := fmt.Errorf("insert team: %w", &pq.Error{Code: "23505", Constraint: "teams_external_id_key"})
		assert.True(t, isUniqueViolation(err))
	})

	t.Run("ignores other pq codes", func(t *testing.T) {
		assert.False(t, isUniqueViolation(&pq.Error{Code: "23503"}))
	})

	t.Run("ignores non pq errors", func(t *testing.T) {
		assert.False(t, isUniqueViolation(errors.New("duplicate key value violates unique constraint")))
	})
}

func TestIsNotFound(t *testing.T) {
	assert.True(t, isNotFound(fmt.Errorf("get run: %w", sql.ErrNoRows)))
	assert.False(t, isNotFound(errors.New("timeout")))
}

func TestNullableConversions(t *testing.T) {
	assert.Nil(t, nullIntToPtr(sql.NullInt64{}))
	assert.Equal(t, 29, *nullIntToPtr(sql.NullInt64{Int64: 29, Valid: true}))

	assert.Nil(t, nullStringToPtr(sql.NullString{String: " ", Valid: true}))
	assert.Equal(t, "0194", *nullStringToPtr(sql.NullString{String: "0194", Valid: true}))

	assert.Nil(t, optionalString("  "))
	assert.Equal(t, "boom", *optionalString(" boom "))
}
