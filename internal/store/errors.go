package store

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds. Match them with errors.Is; every error returned by
// Store wraps exactly one of these.
var (
	ErrInvalidInput      = errors.New("InvalidInput")
	ErrReferenceNotFound = errors.New("ReferenceNotFound")
	ErrNotFound          = errors.New("NotFound")
	ErrWorkspaceNotFound = errors.New("WorkspaceNotFound")
	ErrStorageFailure    = errors.New("StorageFailure")
)

// Error carries an error kind plus a human-readable message.
// Err holds the underlying cause for storage failures.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches the error against its kind sentinel.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind name of err ("InvalidInput", "NotFound", ...).
// Errors that did not originate in the store report "StorageFailure".
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	var se *Error
	if errors.As(err, &se) {
		return se.Kind.Error()
	}
	return ErrStorageFailure.Error()
}

// MessageOf returns the human-readable part of err without the kind prefix.
func MessageOf(err error) string {
	var se *Error
	if errors.As(err, &se) {
		if se.Err != nil {
			return fmt.Sprintf("%s: %v", se.Message, se.Err)
		}
		return se.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}

func invalidInput(msg string) error {
	return &Error{Kind: ErrInvalidInput, Message: msg}
}

func notFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func referenceNotFound(msg string) error {
	return &Error{Kind: ErrReferenceNotFound, Message: msg}
}

func workspaceNotFound(msg string) error {
	return &Error{Kind: ErrWorkspaceNotFound, Message: msg}
}

// storageFailure wraps a database error. A nil err yields nil so call
// sites can wrap unconditionally.
func storageFailure(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return err
	}
	return &Error{Kind: ErrStorageFailure, Message: op, Err: err}
}

// requireText returns InvalidInput naming the first empty or
// whitespace-only field. Pairs are (name, value).
func requireText(pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if strings.TrimSpace(pairs[i+1]) == "" {
			return invalidInput(fmt.Sprintf("'%s' is required", pairs[i]))
		}
	}
	return nil
}
