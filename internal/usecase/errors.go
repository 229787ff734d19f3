package usecase

import (
	"fmt"
	"strings"
)

// NotFoundError means the referenced resource does not exist.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// ValidationError carries per-field messages for a rejected request.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "validation failed"
}

// NotAuthorizedError means the caller may not act on this resource.
type NotAuthorizedError struct {
	Reason string
}

func (e *NotAuthorizedError) Error() string {
	return e.Reason
}

// SeatConflictError names the seats that are already held for a showtime.
type SeatConflictError struct {
	SeatNumbers []string
}

func (e *SeatConflictError) Error() string {
	return fmt.Sprintf("seats already taken: %s", strings.Join(e.SeatNumbers, ", "))
}

// ShowtimeConflictError means a proposed showtime overlaps an existing one
// in the same room, including the cleanup buffer.
type ShowtimeConflictError struct {
	RoomName string
}

func (e *ShowtimeConflictError) Error() string {
	return fmt.Sprintf("showtime overlaps an existing schedule in room %s", e.RoomName)
}

// StateError means the resource is not in a state that allows the
// requested operation.
type StateError struct {
	Reason string
}

func (e *StateError) Error() string {
	return e.Reason
}

// AdapterError wraps a failure in an upstream service (QR rendering).
type AdapterError struct {
	Err error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("upstream service failed: %v", e.Err)
}

func (e *AdapterError) Unwrap() error {
	return e.Err
}
