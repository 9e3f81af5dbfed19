package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
)

// Error codes exposed to API clients.
const (
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeUsernameTaken      = "USERNAME_TAKEN"
	CodeQuotaExceeded      = "QUOTA_EXCEEDED"
	CodeMuted              = "MUTED"
	CodeChatClosed         = "CHAT_CLOSED"
	CodeEmptyMessage       = "EMPTY_MESSAGE"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeTokenExpired       = "TOKEN_EXPIRED"
	CodeStorageError       = "STORAGE_ERROR"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
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

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, details)
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

func NewUsernameTaken(username string) error {
	return NewDomainError(CodeUsernameTaken, "username already taken", http.StatusBadRequest,
		map[string]any{"username": username})
}

func NewQuotaExceeded(message string, details map[string]any) error {
	return NewDomainError(CodeQuotaExceeded, message, http.StatusBadRequest, details)
}

func NewMuted(message string, details map[string]any) error {
	return NewDomainError(CodeMuted, message, http.StatusForbidden, details)
}

func NewChatClosed() error {
	return NewDomainError(CodeChatClosed, "chat is closed", http.StatusForbidden, nil)
}

func NewEmptyMessage() error {
	return NewDomainError(CodeEmptyMessage, "message cannot be empty", http.StatusBadRequest, nil)
}

// NewInvalidCredentials deliberately does not distinguish an unknown username
// from a wrong password, to avoid account enumeration.
func NewInvalidCredentials() error {
	return NewDomainError(CodeInvalidCredentials, "invalid username or password", http.StatusUnauthorized, nil)
}

func NewInvalidToken(message string) error {
	return NewDomainError(CodeInvalidToken, message, http.StatusUnauthorized, nil)
}

func NewTokenExpired() error {
	return NewDomainError(CodeTokenExpired, "token expired", http.StatusUnauthorized, nil)
}

// NewStorageError wraps a persistence failure. The underlying error is kept for
// logs but never exposed to the caller.
func NewStorageError(err error) error {
	return &DomainError{
		Code:       CodeStorageError,
		Message:    "storage failure",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError. Unrecognized errors are
// treated as storage failures: the persistent store is the only collaborator
// whose errors reach this layer unwrapped.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	return NewStorageError(err).(*DomainError)
}

// MapError converts generic errors to DomainError.
func MapError(err error) error {
	return ToDomainError(err)
}
