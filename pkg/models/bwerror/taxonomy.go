package bwerror

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrConcurrencyConflict       = errors.New("concurrency conflict")
	ErrWriteFailed               = errors.New("write failed")
	ErrChannel                   = errors.New("channel error")
	ErrRangeOverflow             = errors.New("range overflow")
	ErrProtocolContractViolation = errors.New("protocol contract violation")
)

// describe renders a wrapped error without its closing period.
func describe(err error) string {
	if err == nil {
		return "<nil>"
	}
	return strings.TrimRight(err.Error(), ".")
}

// ConcurrencyConflictError reports a write that expected one affected or
// returned row and got none. Entries is the write's opaque back-reference.
type ConcurrencyConflictError struct {
	Entries  any
	Table    string
	Expected int64
	Actual   int64
}

func NewConcurrencyConflict(entries any, table string, expected, actual int64) *ConcurrencyConflictError {
	return &ConcurrencyConflictError{
		Entries:  entries,
		Table:    table,
		Expected: expected,
		Actual:   actual,
	}
}

func (e *ConcurrencyConflictError) Error() string {
	return fmt.Sprintf("Code: %s. Name: %s. Description: write to %q expected to affect %d row(s) but actually affected %d; data may have been modified or deleted since entities were loaded.",
		e.Code(), GetMessageByCode(e.Code()), e.Table, e.Expected, e.Actual)
}

func (e *ConcurrencyConflictError) Code() string { return BW_CONCURRENCY_CONFLICT }

func (e *ConcurrencyConflictError) Is(target error) bool {
	return target == ErrConcurrencyConflict
}

// WriteFailedError wraps any non-conflict failure raised while a batch was
// being executed, attributed to the write under the cursor.
type WriteFailedError struct {
	Err     error
	Entries any
}

func NewWriteFailed(err error, entries any) *WriteFailedError {
	return &WriteFailedError{Err: err, Entries: entries}
}

func (e *WriteFailedError) Error() string {
	return fmt.Sprintf("Code: %s. Name: %s. Description: an error occurred while saving entries: %s.",
		e.Code(), GetMessageByCode(e.Code()), describe(e.Err))
}

func (e *WriteFailedError) Code() string { return BW_WRITE_FAILED }

func (e *WriteFailedError) Unwrap() error { return e.Err }

func (e *WriteFailedError) Is(target error) bool {
	return target == ErrWriteFailed
}

// ChannelError is a transport or protocol level failure talking to the server.
type ChannelError struct {
	Err error
}

func NewChannelError(err error) *ChannelError {
	return &ChannelError{Err: err}
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("Code: %s. Name: %s. Description: %s.",
		e.Code(), GetMessageByCode(e.Code()), describe(e.Err))
}

func (e *ChannelError) Code() string { return BW_CHANNEL_ERROR }

func (e *ChannelError) Unwrap() error { return e.Err }

func (e *ChannelError) Is(target error) bool {
	return target == ErrChannel
}

// RangeOverflowError is raised when a generated value does not fit the
// requested integral type.
type RangeOverflowError struct {
	Value int64
	Type  string
}

func NewRangeOverflow(value int64, typeName string) *RangeOverflowError {
	return &RangeOverflowError{Value: value, Type: typeName}
}

func (e *RangeOverflowError) Error() string {
	return fmt.Sprintf("Code: %s. Name: %s. Description: value %d is out of range for type %s.",
		e.Code(), GetMessageByCode(e.Code()), e.Value, e.Type)
}

func (e *RangeOverflowError) Code() string { return BW_RANGE_OVERFLOW }

func (e *RangeOverflowError) Is(target error) bool {
	return target == ErrRangeOverflow
}

// ProtocolContractViolationError means the outcome stream length did not
// match the number of submitted statements. It is an integration defect.
type ProtocolContractViolationError struct {
	Expected int
	Actual   int
	Surplus  bool
}

func NewProtocolContractViolation(expected, actual int, surplus bool) *ProtocolContractViolationError {
	return &ProtocolContractViolationError{
		Expected: expected,
		Actual:   actual,
		Surplus:  surplus,
	}
}

func (e *ProtocolContractViolationError) Error() string {
	if e.Surplus {
		return fmt.Sprintf("Code: %s. Name: %s. Description: expected %d statement outcome(s), got more.",
			e.Code(), GetMessageByCode(e.Code()), e.Expected)
	}
	return fmt.Sprintf("Code: %s. Name: %s. Description: expected %d statement outcome(s), got %d.",
		e.Code(), GetMessageByCode(e.Code()), e.Expected, e.Actual)
}

func (e *ProtocolContractViolationError) Code() string { return BW_PROTOCOL_VIOLATION }

func (e *ProtocolContractViolationError) Is(target error) bool {
	return target == ErrProtocolContractViolation
}
