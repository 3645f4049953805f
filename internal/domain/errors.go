package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrRateUnavailable   = errors.New("rate unavailable")
	ErrRateStale         = errors.New("rate stale")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrCurrencyNotFound  = errors.New("unknown currency")
	ErrValidation        = errors.New("validation failed")
	ErrStoreWrite        = errors.New("store write failed")
)

// SourceError marks one provider as unavailable for a cycle. It is absorbed
// by the refresh loop and never aborts it.
type SourceError struct {
	Source string
	Cause  error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Cause)
}

func (e *SourceError) Unwrap() error { return e.Cause }
