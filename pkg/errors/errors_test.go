package errors_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/cofina/leads/pkg/errors"
)

func TestMessages(t *testing.T) {
	base := errors.New("boom")
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"not found", pkgerrors.NewNotFoundError("category", "Series A"), `category "Series A" not found`},
		{"validation", pkgerrors.NewValidationError("row", 12, "out of range [0,3)"), "invalid row: out of range [0,3)"},
		{"validation no field", &pkgerrors.ValidationError{Message: "empty request"}, "invalid: empty request"},
		{"config", pkgerrors.NewConfigError("store", "unknown backend", nil), "config store: unknown backend"},
		{"config no component", &pkgerrors.ConfigError{Message: "missing"}, "config: missing"},
		{"persist", pkgerrors.NewPersistError("Series A", 3, base), `persist 3 change(s) for category "Series A": boom`},
		{"parse position", &pkgerrors.ParseError{Format: "csv", File: "leads.csv", Line: 4, Column: 2, Message: "bare quote"}, "csv leads.csv:4:2: bare quote"},
		{"parse file", pkgerrors.NewParseError("json", "state.json", "unexpected EOF", nil), "json state.json: unexpected EOF"},
		{"parse bare", pkgerrors.NewParseError("yaml", "", "bad indent", nil), "yaml: bad indent"},
		{"io", pkgerrors.WrapIO("write", "/tmp/state.json", base), "write /tmp/state.json: boom"},
		{"io no path", &pkgerrors.IOError{Operation: "read", Message: "eof"}, "read: eof"},
		{"resource", pkgerrors.WrapResource("load", "category", "Series Seed", base), `load category "Series Seed": boom`},
		{"resource no id", pkgerrors.WrapResource("save", "state", "", base), "save state: boom"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.EqualError(t, tt.err, tt.want)
		})
	}
}

func TestPredicates(t *testing.T) {
	notFound := pkgerrors.NewNotFoundError("category", "x")
	assert.True(t, pkgerrors.IsNotFound(fmt.Errorf("show: %w", notFound)))
	assert.True(t, pkgerrors.IsNotFound(errors.Join(errors.New("failed"), notFound)))
	assert.ErrorIs(t, notFound, pkgerrors.ErrNotFound)

	invalid := pkgerrors.NewValidationError("mode", "x", "unknown")
	assert.True(t, pkgerrors.IsValidationError(invalid))
	assert.ErrorIs(t, invalid, pkgerrors.ErrInvalidInput)
	assert.False(t, pkgerrors.IsNotFound(invalid))

	assert.True(t, pkgerrors.IsAlreadyExists(fmt.Errorf("category: %w", pkgerrors.ErrAlreadyExists)))

	base := errors.New("disk full")
	persist := pkgerrors.NewPersistError("Series A", 1, base)
	assert.True(t, pkgerrors.IsPersistError(persist))
	assert.ErrorIs(t, persist, base)
}

func TestWrapHelpers(t *testing.T) {
	require.NoError(t, pkgerrors.WrapIO("read", "x", nil))
	require.NoError(t, pkgerrors.WrapResource("load", "category", "x", nil))
	require.NoError(t, pkgerrors.WrapParse("csv", "x", nil))

	base := errors.New("boom")

	var ioErr *pkgerrors.IOError
	require.ErrorAs(t, pkgerrors.WrapIO("read", "x", base), &ioErr)
	assert.Equal(t, "read", ioErr.Operation)
	assert.Equal(t, base, errors.Unwrap(ioErr))

	var parseErr *pkgerrors.ParseError
	require.ErrorAs(t, pkgerrors.WrapParse("csv", "leads.csv", base), &parseErr)
	assert.Equal(t, "leads.csv", parseErr.File)

	assert.ErrorIs(t, pkgerrors.WrapResource("load", "category", "", base), base)
	assert.ErrorIs(t, pkgerrors.NewConfigError("source", "bad url", base), base)
}

func TestForwarders(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.EqualError(t, err, "test error")
	assert.True(t, pkgerrors.Is(fmt.Errorf("wrap: %w", err), err))
}
