package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failure so the HTTP layer can map it to a status
// code without string matching.
type ErrorKind string

const (
	// KindInvalidRequest marks a malformed or out-of-bounds client request.
	// Never retried.
	KindInvalidRequest ErrorKind = "invalid_request"

	// KindBackendRejected marks a query the billing backend refused as
	// invalid (unsupported dimension, bad capability combination).
	KindBackendRejected ErrorKind = "backend_rejected"

	// KindBackendTransient marks a throttle or timeout from the backend
	// after local retries were exhausted.
	KindBackendTransient ErrorKind = "backend_transient"

	// KindAggregationInconsistency marks a contract violation observed
	// while merging backend pages (mixed currencies, duplicate periods).
	KindAggregationInconsistency ErrorKind = "aggregation_inconsistency"
)

// DomainError carries an ErrorKind alongside the human-readable reason.
type DomainError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewInvalidRequest creates an InvalidRequest error with a formatted reason.
func NewInvalidRequest(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindInvalidRequest, Message: fmt.Sprintf(format, args...)}
}

// NewBackendRejected creates a BackendRejected error wrapping the backend failure.
func NewBackendRejected(err error, format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindBackendRejected, Message: fmt.Sprintf(format, args...), Err: err}
}

// NewBackendTransient creates a BackendTransient error wrapping the backend failure.
func NewBackendTransient(err error, format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindBackendTransient, Message: fmt.Sprintf(format, args...), Err: err}
}

// NewAggregationInconsistency creates an AggregationInconsistency error.
func NewAggregationInconsistency(format string, args ...interface{}) *DomainError {
	return &DomainError{Kind: KindAggregationInconsistency, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the ErrorKind from an error chain. Unclassified errors
// report KindAggregationInconsistency so they surface as internal failures.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindAggregationInconsistency
}
