package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without cause",
			err:  New(ErrKindTypeDecode, "unknown type"),
			want: "[type_decode] unknown type",
		},
		{
			name: "with cause",
			err:  Wrap(ErrKindQueryFailed, "query failed", errors.New("boom")),
			want: "[query_failed] query failed: boom",
		},
		{
			name: "formatted",
			err:  Newf(ErrKindInvalidInput, "bad key %q", "x"),
			want: `[invalid_input] bad key "x"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestPredicates(t *testing.T) {
	wrapped := fmt.Errorf("loading columns: %w", New(ErrKindSchemaLookup, "no such table"))

	assert.True(t, IsSchemaLookup(wrapped))
	assert.False(t, IsTypeDecode(wrapped))
	assert.True(t, IsTypeDecode(New(ErrKindTypeDecode, "x")))
	assert.True(t, IsUnsupported(New(ErrKindUnsupported, "x")))
	assert.True(t, IsNotFound(New(ErrKindNotFound, "x")))
	assert.True(t, IsTimeout(New(ErrKindTimeout, "x")))
	assert.True(t, IsConnectionFailed(New(ErrKindConnectionFailed, "x")))
	assert.True(t, IsQueryFailed(New(ErrKindQueryFailed, "x")))
	assert.True(t, IsInvalidInput(New(ErrKindInvalidInput, "x")))
	assert.True(t, IsPermissionDenied(New(ErrKindPermissionDenied, "x")))
	assert.False(t, IsNotFound(errors.New("plain")))
}

func TestSQLState(t *testing.T) {
	inner := WithCode(ErrKindQueryFailed, "query failed", "42P01", errors.New("relation does not exist"))
	outer := Wrap(ErrKindSchemaLookup, "table not found", inner)

	assert.Equal(t, "42P01", SQLState(inner))
	assert.Equal(t, "42P01", SQLState(outer))
	assert.Equal(t, "42P01", outer.Code)
	assert.Equal(t, "", SQLState(errors.New("plain")))
	assert.Equal(t, "", SQLState(nil))
	assert.True(t, errors.Is(outer, inner))
}
