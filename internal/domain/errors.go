package domain

import (
	"errors"
	"fmt"
)

// Error kind codes. The HTTP boundary maps these to status codes.
const (
	CodeNotFound      = "NOT_FOUND"
	CodeAlreadyExists = "ALREADY_EXISTS"
	CodeInvalidRoles  = "INVALID_ROLES"
	CodeInvalidRange  = "INVALID_RANGE"
	CodeValidation    = "VALIDATION_FAILED"
	CodeInternal      = "INTERNAL"
)

// Error is a typed application error carrying a kind code and a
// caller-facing message.
type Error struct {
	Code    string
	Message string
}

// Error returns the error message
func (e *Error) Error() string {
	return e.Message
}

var (
	// ErrUserNotFound is returned when no user has the requested id
	ErrUserNotFound = &Error{Code: CodeNotFound, Message: "User with this ID does not exist."}

	// ErrAccountNotFound is returned for an unknown login or a wrong password
	ErrAccountNotFound = &Error{Code: CodeNotFound, Message: "Account not found."}

	// ErrTokenNotFound is returned when the issuer yields no token
	ErrTokenNotFound = &Error{Code: CodeNotFound, Message: "Token not found."}

	// ErrUserExists is returned when creating a user with a taken email
	ErrUserExists = &Error{Code: CodeAlreadyExists, Message: "A user with this email already exists."}

	// ErrEmailTaken is returned when an update would steal another user's email
	ErrEmailTaken = &Error{Code: CodeAlreadyExists, Message: "Email already belongs to another user."}

	// ErrAccountExists is returned when registering a taken login
	ErrAccountExists = &Error{Code: CodeAlreadyExists, Message: "Account with the specified login already exists."}

	// ErrEmptyRoles is returned when a role operation receives no ids
	ErrEmptyRoles = &Error{Code: CodeInvalidRoles, Message: "Role list is empty."}

	// ErrDuplicateRoles is returned when the role ids left after dropping
	// already-assigned ones still contain duplicates
	ErrDuplicateRoles = &Error{Code: CodeInvalidRoles, Message: "Role list contains duplicates."}

	// ErrNoMatchingRoles is returned when a removal names only roles the
	// user does not hold
	ErrNoMatchingRoles = &Error{Code: CodeInvalidRoles, Message: "User has no roles that match the given roles."}

	// ErrInvalidAgeRange is returned when AgeTo < AgeFrom
	ErrInvalidAgeRange = &Error{Code: CodeInvalidRange, Message: "AgeTo must be greater or equal than AgeFrom"}

	// ErrTokenGeneration is returned when signing a token fails
	ErrTokenGeneration = &Error{Code: CodeInternal, Message: "failed to generate token"}

	// ErrDatabaseQuery is returned when a store round-trip fails
	ErrDatabaseQuery = &Error{Code: CodeInternal, Message: "database query failed"}

	// ErrInternal is returned when there is an internal server error
	ErrInternal = &Error{Code: CodeInternal, Message: "internal server error"}
)

// NewRoleNotFound names the first role id missing from the catalog.
func NewRoleNotFound(id int) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("Role with ID %d does not exist.", id)}
}

// NewValidationError wraps a pre-core validation failure.
func NewValidationError(message string) *Error {
	return &Error{Code: CodeValidation, Message: message}
}

// CodeOf extracts the kind code of err, or CodeInternal for untyped errors.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}
