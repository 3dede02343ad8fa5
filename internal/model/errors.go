package model

import (
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("no record")
var ErrAlreadyExists = errors.New("entity already exists")

var (
	ErrInvalidRRule        = errors.New("invalid recurrence rule")
	ErrNotRecurring        = errors.New("event is not recurring")
	ErrInvalidRecurrenceID = errors.New("invalid recurrence id")
	ErrTransactionFailed   = errors.New("transaction failed")
	ErrInvalidTimeRange    = errors.New("event ends before it starts")
)

// InvalidRRuleError carries the part of the rule text that could not be parsed.
type InvalidRRuleError struct {
	Fragment string
	Reason   string
}

func (e *InvalidRRuleError) Error() string {
	return fmt.Sprintf("invalid recurrence rule fragment %q: %s", e.Fragment, e.Reason)
}

func (e *InvalidRRuleError) Is(target error) bool {
	return target == ErrInvalidRRule
}

// TransactionError wraps a persistence failure that aborted a mutation.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrTransactionFailed, e.Op, e.Err)
}

func (e *TransactionError) Is(target error) bool {
	return target == ErrTransactionFailed
}

func (e *TransactionError) Unwrap() error {
	return e.Err
}
