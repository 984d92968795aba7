package entity

import (
	"errors"
	"fmt"
)

// Sentinel errors for entity graph operations.
// These errors can be used with errors.Is() for error checking.
var (
	// ErrMalformedReference indicates a property claims a reference-bearing
	// type but its value cannot be decoded as one.
	ErrMalformedReference = errors.New("malformed reference value")

	// ErrDanglingReference indicates a local reference names an id that is
	// not present in the document.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrCyclicParentage indicates the parent links of the document form a
	// cycle, or an edit would create one.
	ErrCyclicParentage = errors.New("cyclic parentage")

	// ErrNoSuchNode indicates an operation targeted an id absent from the
	// document.
	ErrNoSuchNode = errors.New("no such entity")

	// ErrConnectionNotFound indicates a reverse-reference record could not be
	// matched to a concrete connection entry. The index and the document have
	// diverged; this is an internal consistency fault.
	ErrConnectionNotFound = errors.New("connection not found")

	// ErrRootEntity indicates an attempt to delete or reparent the root entity.
	ErrRootEntity = errors.New("operation not permitted on the root entity")

	// ErrInvalidClipboard indicates copied data that cannot be pasted.
	ErrInvalidClipboard = errors.New("invalid clipboard data")

	// ErrIDExhausted indicates no fresh id could be generated within the
	// configured number of attempts.
	ErrIDExhausted = errors.New("could not generate a unique entity id")
)

// OpError records the operation, entity and field that caused a failure.
//
// Example:
//
//	err := &OpError{Op: "delete", NodeID: "cafe0123456789ab", Err: ErrNoSuchNode}
//	errors.Is(err, ErrNoSuchNode) // true
type OpError struct {
	// Op is the engine operation that failed ("index", "delete", "paste", ...).
	Op string
	// NodeID is the entity the failure is about, if any.
	NodeID string
	// Field names the relation or property involved, if any.
	Field string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *OpError) Error() string {
	msg := e.Op
	if e.NodeID != "" {
		msg += " " + e.NodeID
	}
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	return fmt.Sprintf("%s: %v", msg, e.Err)
}

// Unwrap returns the underlying error.
func (e *OpError) Unwrap() error {
	return e.Err
}

// NewOpError builds an *OpError.
func NewOpError(op, nodeID, field string, err error) *OpError {
	return &OpError{Op: op, NodeID: nodeID, Field: field, Err: err}
}
