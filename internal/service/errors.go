package service

import (
	"errors"
	"fmt"
)

// Outcome errors. The HTTP layer maps each to a status code; their text is
// safe to show to clients.
var (
	ErrConflict           = errors.New("username or email already exists")
	ErrUserNotFound       = errors.New("no account found with that username")
	ErrInvalidCredentials = errors.New("the password you entered was not valid")
	ErrUnauthorized       = errors.New("authorization token is missing")
	ErrTokenMissing       = errors.New("access token is missing")
	ErrWrongClient        = errors.New("this playlist can only be accessed by OTT Navigator")
	ErrInvalidToken       = errors.New("invalid access token")
	ErrNotAdmin           = errors.New("admin privileges are required")
	ErrNoChannels         = errors.New("no channels found in the database")
)

// ValidationError reports malformed or missing input. Message is user-facing.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(field, msg string) error {
	return &ValidationError{Field: field, Message: msg}
}

// StorageError wraps an unexpected store failure. Its text is for logs only.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
