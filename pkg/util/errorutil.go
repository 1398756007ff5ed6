package util

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/eventra/entrypass/internal/domain"
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
	return NewDomainError("VALIDATION_FAILED", message, http.StatusBadRequest, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError("UNAUTHORIZED", message, http.StatusUnauthorized, nil)
}

func NewForbidden(message string) error {
	return NewDomainError("FORBIDDEN", message, http.StatusForbidden, nil)
}

func NewConflict(message string, details map[string]any) error {
	return NewDomainError("CONFLICT", message, http.StatusConflict, details)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// sentinelMapping pairs each domain condition with a distinct wire code.
// Scan failures must stay distinguishable: an operator acts differently on
// "wrong event" vs "already used" vs "not allowed to scan here".
type sentinelMapping struct {
	sentinel error
	code     string
	message  string
	status   int
}

var sentinelMappings = []sentinelMapping{
	{domain.ErrAlreadyRegistered, "ALREADY_REGISTERED", "participant is already registered for this event", http.StatusConflict},
	{domain.ErrIssuanceFailed, "ISSUANCE_FAILED", "registration failed, try again", http.StatusInternalServerError},
	{domain.ErrMalformedPayload, "MALFORMED_PAYLOAD", "the scanned code could not be read", http.StatusBadRequest},
	{domain.ErrUnknownTicket, "UNKNOWN_TICKET", "no ticket matches the scanned code", http.StatusNotFound},
	{domain.ErrForbidden, "FORBIDDEN", "you are not authorized to scan for this event", http.StatusForbidden},
	{domain.ErrDuplicateRedemption, "DUPLICATE_REDEMPTION", "ticket already used", http.StatusConflict},
	{domain.ErrWrongEvent, "WRONG_EVENT", "this ticket is for a different event", http.StatusConflict},
	{domain.ErrEventNotFound, "EVENT_NOT_FOUND", "event not found", http.StatusNotFound},
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	for _, m := range sentinelMappings {
		if errors.Is(err, m.sentinel) {
			return &DomainError{Code: m.code, Message: m.message, HTTPStatus: m.status, Err: err}
		}
	}
	return &DomainError{
		Code:       "INTERNAL_ERROR",
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func MapError(err error) error {
	return ToDomainError(err)
}
