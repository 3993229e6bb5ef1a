package models

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrEndDateNotSet      = errors.New("task end date not set")
)

// AggregationError reports a storage failure inside the project aggregator.
// A call that returns one never returns partial data alongside it.
type AggregationError struct {
	Op  string
	Err error
}

func (e *AggregationError) Error() string {
	return fmt.Sprintf("aggregate %s: %v", e.Op, e.Err)
}

func (e *AggregationError) Unwrap() error { return e.Err }

// TimingError reports a storage or timestamp-parse failure inside the task
// timing engine. Parse failures are fatal to the operation; they are never
// folded into a wrong numeric result.
type TimingError struct {
	Op  string
	Err error
}

func (e *TimingError) Error() string {
	return fmt.Sprintf("timing %s: %v", e.Op, e.Err)
}

func (e *TimingError) Unwrap() error { return e.Err }
