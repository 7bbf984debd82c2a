package directory

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for programmatic error handling.
// Use errors.Is() to check for these error types.
var (
	// ErrNotFound indicates no freelancer has the requested ID.
	ErrNotFound = errors.New("freelancer not found")

	// ErrNoChanges indicates an update carried no fields.
	ErrNoChanges = errors.New("no changes")

	// ErrInvalidInput indicates required fields are missing or blank.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidTag indicates a struct tag has an invalid format or value.
	ErrInvalidTag = errors.New("invalid tag")

	// ErrInvalidRow indicates a stored value could not be assigned to the model.
	ErrInvalidRow = errors.New("invalid row")
)

// Operation names a Repository method for errors and events.
type Operation string

const (
	OpRegister Operation = "register"
	OpList     Operation = "list"
	OpGet      Operation = "get"
	OpUpdate   Operation = "update"
	OpExists   Operation = "exists"
	OpPing     Operation = "ping"
)

// OperationError records which Repository method failed.
type OperationError struct {
	Op  Operation
	Err error
}

func (e *OperationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *OperationError) Unwrap() error {
	return e.Err
}

// ValidationError lists the input fields that failed validation.
type ValidationError struct {
	Fields []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: missing %s", ErrInvalidInput, strings.Join(e.Fields, ", "))
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}

// TagError represents a model tag that cannot be honored.
type TagError struct {
	Field string // Go field name
	Tag   string // Tag key, e.g. store.encrypt
	Value string // Offending tag value
}

func (e *TagError) Error() string {
	return fmt.Sprintf("%s %s:%q (field %s)", ErrInvalidTag, e.Tag, e.Value, e.Field)
}

func (e *TagError) Unwrap() error {
	return ErrInvalidTag
}

// newOperationError wraps err with op. A nil err stays nil.
func newOperationError(op Operation, err error) error {
	if err == nil {
		return nil
	}
	return &OperationError{Op: op, Err: err}
}

// newTagError creates a TagError for an unsupported tag value.
func newTagError(field, tag, value string) error {
	return &TagError{Field: field, Tag: tag, Value: value}
}
