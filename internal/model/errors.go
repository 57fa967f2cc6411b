package model

import (
	"errors"
	"fmt"
)

// Data availability failures reported by market data providers.
var (
	ErrNoData         = errors.New("no data returned")
	ErrSymbolNotFound = errors.New("symbol not found")
	ErrMissingClose   = errors.New("close column missing")
)

// InputError rejects a request parameter before any computation runs.
type InputError struct {
	Field  string
	Reason string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewInputError builds an InputError with a formatted reason.
func NewInputError(field, format string, args ...any) *InputError {
	return &InputError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsDataUnavailable reports whether err means the provider had nothing usable.
func IsDataUnavailable(err error) bool {
	return errors.Is(err, ErrNoData) || errors.Is(err, ErrSymbolNotFound) || errors.Is(err, ErrMissingClose)
}
