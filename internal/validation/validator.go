package validation

import (
	"strconv"
	"strings"
	"unicode/utf8"

	"wiki-quiz/internal/domain"
)

const maxURLLength = 2048

// Validator provides request validation functionality
type Validator struct{}

// NewValidator creates a new validator instance
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateGenerateQuizRequest checks presence and size of the url field.
// Whether the url is a Wikipedia article is decided by the service.
func (v *Validator) ValidateGenerateQuizRequest(url string) domain.ValidationErrors {
	var errors domain.ValidationErrors

	trimmed := strings.TrimSpace(url)
	if trimmed == "" {
		errors = append(errors, domain.NewMissingFieldError("url"))
	} else if len(trimmed) > maxURLLength {
		errors = append(errors, domain.NewInvalidFormatError("url", echoPrefix(trimmed, 64)+"..."))
	}

	return errors
}

// ParseQuizID parses a positive integer quiz id from a path parameter.
func (v *Validator) ParseQuizID(raw string) (int64, domain.ValidationErrors) {
	if strings.TrimSpace(raw) == "" {
		return 0, domain.ValidationErrors{domain.NewMissingFieldError("id")}
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, domain.ValidationErrors{domain.NewInvalidFormatError("id", raw)}
	}
	return id, nil
}

// echoPrefix returns at most n runes of s for echoing back in an error.
func echoPrefix(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
