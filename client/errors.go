package client

import "fmt"

// ValidationError reports bad input caught before any remote call,
// or rejected by the server with a 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return "validation failed: " + e.Message
}

// NotFoundError reports that the remote does not know the entity.
// Message carries the server's own wording when the error comes off
// the wire; Entity and ID describe lookups that fail locally.
type NotFoundError struct {
	Entity  string
	ID      string
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// TransportError wraps a network or remote failure.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// AuthError reports invalid credentials or an expired session.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string { return e.Message }

// ConflictError reports an operation rejected by a state invariant,
// for example deleting a column that still has tasks.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }
