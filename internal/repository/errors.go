package repository

import "errors"

// Common repository errors
var (
	// ErrEventNotFound is returned when an event is not found
	ErrEventNotFound = errors.New("event not found")

	// ErrChatNotFound is returned when a chat is not found
	ErrChatNotFound = errors.New("chat not found")

	// ErrMessageNotFound is returned when a chat message is not found
	ErrMessageNotFound = errors.New("message not found")

	// ErrColumnNotEmpty is returned when deleting a column that still has tasks
	ErrColumnNotEmpty = errors.New("column still has tasks")

	// ErrColumnEventMismatch is returned when a column does not belong to the given event
	ErrColumnEventMismatch = errors.New("column does not belong to the specified event")
)
