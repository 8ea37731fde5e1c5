package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
	CodeInvalidInput ErrorCode = "INVALID_INPUT"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"

	// Request validation
	CodeValidation    ErrorCode = "REQUEST_VALIDATION"
	CodeMissingField  ErrorCode = "MISSING_FIELD"
	CodeInvalidFormat ErrorCode = "INVALID_FORMAT"

	// Pipeline errors
	CodeInvalidURL       ErrorCode = "INVALID_URL"
	CodeFetchError       ErrorCode = "FETCH_ERROR"
	CodeGenerationError  ErrorCode = "GENERATION_ERROR"
	CodeOutputValidation ErrorCode = "VALIDATION_ERROR"
	CodeConflict         ErrorCode = "CONFLICT"
	CodeQuizNotFound     ErrorCode = "QUIZ_NOT_FOUND"
)

// DomainError represents a domain-specific error
type DomainError struct {
	Code    ErrorCode              `json:"code"`
	Message string                 `json:"message"`
	Cause   error                  `json:"-"`
	Context map[string]interface{} `json:"context,omitempty"`
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
	})
}

// WithContext attaches a detail to the error and returns it.
func (e *DomainError) WithContext(key string, value interface{}) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// IsCode reports whether err carries a DomainError with the given code.
func IsCode(err error, code ErrorCode) bool {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

func NewNotFoundError(message string) *DomainError {
	return NewError(CodeNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(CodeInvalidInput, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(CodeInternal, message, err)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(CodeUnauthorized, message, nil)
}

func NewQuizNotFoundError(quizID int64) *DomainError {
	return NewError(CodeQuizNotFound, fmt.Sprintf("Quiz with ID %d not found", quizID), nil).
		WithContext("quiz_id", quizID)
}

func NewInvalidURLError(url string) *DomainError {
	return NewError(CodeInvalidURL, "Invalid Wikipedia URL. Please provide a valid Wikipedia article URL.", nil).
		WithContext("url", url)
}

func NewFetchError(message string, cause error) *DomainError {
	return NewError(CodeFetchError, message, cause)
}

func NewGenerationError(cause error) *DomainError {
	return NewError(CodeGenerationError, "Quiz generation failed", cause)
}

// ErrConflict is returned by the store when the url is already present.
var ErrConflict = NewError(CodeConflict, "a quiz for this url already exists", nil)

// OutputViolation distinguishes why model output was rejected.
type OutputViolation string

const (
	ViolationMalformedJSON OutputViolation = "MALFORMED_JSON"
	ViolationSchema        OutputViolation = "SCHEMA_VIOLATION"
	ViolationRule          OutputViolation = "RULE_VIOLATION"
)

// OutputValidationError is returned when generated text does not satisfy the quiz schema.
// QuestionIndex is zero-based and -1 when the failure is not tied to a question.
type OutputValidationError struct {
	Kind          OutputViolation
	Field         string
	QuestionIndex int
	Reason        string
	Cause         error
}

func (e *OutputValidationError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	if e.QuestionIndex >= 0 {
		fmt.Fprintf(&b, ": question %d", e.QuestionIndex)
	}
	if e.Field != "" {
		fmt.Fprintf(&b, ": %s", e.Field)
	}
	if e.Reason != "" {
		fmt.Fprintf(&b, ": %s", e.Reason)
	}
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	return b.String()
}

func (e *OutputValidationError) Unwrap() error {
	return e.Cause
}

// AsDomainError converts the violation into the VALIDATION_ERROR surfaced to callers.
func (e *OutputValidationError) AsDomainError() *DomainError {
	de := NewError(CodeOutputValidation, "Quiz validation failed: "+e.Error(), e).
		WithContext("kind", string(e.Kind))
	if e.QuestionIndex >= 0 {
		de.WithContext("question_index", e.QuestionIndex)
	}
	if e.Field != "" {
		de.WithContext("field", e.Field)
	}
	return de
}

// ValidationError describes a single invalid request field.
type ValidationError struct {
	Field   string      `json:"field"`
	Code    ErrorCode   `json:"code"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
}

// ValidationErrors is returned by request validators.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(msgs, "; ")
}

func NewMissingFieldError(field string) ValidationError {
	return ValidationError{Field: field, Code: CodeMissingField, Message: field + " is required"}
}

func NewInvalidFormatError(field string, value interface{}) ValidationError {
	return ValidationError{Field: field, Code: CodeInvalidFormat, Message: field + " has an invalid format", Value: value}
}
