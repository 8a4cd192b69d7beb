package services

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrStockExhausted    = errors.New("stock exhausted")
	ErrValidation        = errors.New("validation failed")
	ErrTransactionFailed = errors.New("transaction failed")
)

// ValidationError rejects a request before any ledger is touched.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// TransactionFailedError reports a write step that failed after mutations began.
// The request transaction is rolled back by the caller.
type TransactionFailedError struct {
	Step string
	Err  error
}

func (e *TransactionFailedError) Error() string {
	return fmt.Sprintf("transaction failed at %s: %v", e.Step, e.Err)
}

func (e *TransactionFailedError) Unwrap() error { return e.Err }

func (e *TransactionFailedError) Is(target error) bool { return target == ErrTransactionFailed }

func failed(step string, err error) error {
	return &TransactionFailedError{Step: step, Err: err}
}
