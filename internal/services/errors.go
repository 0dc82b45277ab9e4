package services

import "errors"

type ErrorCode string

const (
	ErrorInvalid      ErrorCode = "invalid"
	ErrorNotFound     ErrorCode = "not_found"
	ErrorConflict     ErrorCode = "conflict"
	ErrorUnauthorized ErrorCode = "unauthorized"
)

// ServiceError carries a code the HTTP layer maps to a status.
type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error  { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewNotFoundError(msg string) error { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewConflictError(msg string) error { return &ServiceError{Code: ErrorConflict, Message: msg} }
func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

var (
	// ErrInvalidAnswerValue is returned when a value is not on the Likert scale.
	ErrInvalidAnswerValue = errors.New("invalid answer value")
	// ErrUnknownQuestion is returned for question ids missing from the catalog.
	ErrUnknownQuestion = errors.New("unknown question")
	// ErrIncompleteAssessment blocks submission until every question is answered.
	ErrIncompleteAssessment = errors.New("assessment incomplete")
	// ErrPersistence wraps record store failures; the caller may retry.
	ErrPersistence = errors.New("persistence failure")
	// ErrAuthRequired is returned when no authenticated user is present.
	ErrAuthRequired = errors.New("authentication required")
	// ErrNotFound is returned by stores for missing or foreign records.
	ErrNotFound = errors.New("record not found")
	// ErrSessionNotFound is returned for unknown, expired or foreign sessions.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionClosed is returned when answering an already submitted session.
	ErrSessionClosed = errors.New("session already submitted")
)
