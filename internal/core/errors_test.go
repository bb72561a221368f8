package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyPersistenceError(t *testing.T) {
	cases := []struct {
		msg  string
		want PersistenceErrorClass
	}{
		{`column "installment_current" of relation "transactions" does not exist`, LikelySchemaMismatch},
		{"no such table: categories", LikelySchemaMismatch},
		{"PGRST204: Could not find the 'status' column", LikelySchemaMismatch},
		{"SQLSTATE 42703 undefined_column", LikelySchemaMismatch},
		{"connection refused", Generic},
		{"context deadline exceeded", Generic},
		{"", Generic},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ClassifyPersistenceError(tc.msg), tc.msg)
	}
}

func TestPersistenceErrorHint(t *testing.T) {
	schema := &PersistenceError{Op: "create transactions", Err: errors.New("no such column: status")}
	generic := &PersistenceError{Op: "create transactions", Err: errors.New("dial tcp: timeout")}

	assert.Equal(t, LikelySchemaMismatch, schema.Class())
	assert.Contains(t, schema.Hint(), "schema")
	assert.Equal(t, Generic, generic.Class())
	assert.NotEqual(t, schema.Hint(), generic.Hint())
	assert.Equal(t, "create transactions: dial tcp: timeout", generic.Error())
}

func TestNewPersistenceError(t *testing.T) {
	assert.Nil(t, NewPersistenceError("op", nil))

	wrapped := fmt.Errorf("lookup: %w", ErrNotFound)
	assert.Same(t, wrapped, NewPersistenceError("op", wrapped))

	inner := &PersistenceError{Op: "inner", Err: errors.New("boom")}
	assert.Same(t, error(inner), NewPersistenceError("outer", inner))

	var pe *PersistenceError
	assert.ErrorAs(t, NewPersistenceError("op", errors.New("boom")), &pe)
	assert.Equal(t, "op", pe.Op)
}

func TestConfigurationError(t *testing.T) {
	err := &ConfigurationError{Missing: []string{"REMOTE_URL", "REMOTE_KEY"}}
	assert.Equal(t, "configuration required: REMOTE_URL, REMOTE_KEY", err.Error())
}
