package services

import (
	"errors"
	"fmt"

	"github.com/nusakarya/construction-api/internal/validation"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// ValidationError carries field-level violations up to the handler layer.
type ValidationError struct {
	Violations validation.Violations
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %d violation(s)", len(e.Violations))
}

// InsufficientBalanceError means the funding account cannot cover the
// requested amount. Handlers surface all four figures so the client can
// show the shortfall.
type InsufficientBalanceError struct {
	AccountName string
	Available   int64
	Required    int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance on %s: have %d, need %d", e.AccountName, e.Available, e.Required)
}

func (e *InsufficientBalanceError) Shortfall() int64 { return e.Required - e.Available }
