package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"wiki-quiz/internal/config"
	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/logger"

	"go.uber.org/zap"
)

var codeFenceRe = regexp.MustCompile("```(?:json|JSON)?[ \t]*")

// rawDocument mirrors domain.QuizDocument with pointers so absent fields can be told apart from empty ones.
type rawDocument struct {
	Summary       *string         `json:"summary"`
	KeyEntities   *rawKeyEntities `json:"key_entities"`
	Sections      []string        `json:"sections"`
	Quiz          *[]rawQuestion  `json:"quiz"`
	RelatedTopics []string        `json:"related_topics"`
}

type rawKeyEntities struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
}

type rawQuestion struct {
	Question    *string    `json:"question"`
	Options     *[]*string `json:"options"`
	Answer      *string    `json:"answer"`
	Difficulty  *string    `json:"difficulty"`
	Explanation *string    `json:"explanation"`
}

// QuizOutputValidator parses raw model output into a domain.QuizDocument.
type QuizOutputValidator struct {
	countPolicy string
}

// NewQuizOutputValidator creates a validator with a fixed question count policy
// (config.QuestionCountStrict or config.QuestionCountWarn).
func NewQuizOutputValidator(countPolicy string) *QuizOutputValidator {
	if countPolicy != config.QuestionCountWarn {
		countPolicy = config.QuestionCountStrict
	}
	return &QuizOutputValidator{countPolicy: countPolicy}
}

// Validate extracts the first JSON object from raw, decodes it and checks every question.
// Failures are *domain.OutputValidationError.
func (v *QuizOutputValidator) Validate(raw string) (*domain.QuizDocument, error) {
	payload, ok := ExtractJSONObject(raw)
	if !ok {
		return nil, &domain.OutputValidationError{
			Kind:          domain.ViolationMalformedJSON,
			QuestionIndex: -1,
			Reason:        "no JSON object found in model output",
		}
	}

	var rd rawDocument
	if err := json.Unmarshal([]byte(payload), &rd); err != nil {
		verr := &domain.OutputValidationError{Kind: domain.ViolationSchema, QuestionIndex: -1, Cause: err}
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			verr.Field = typeErr.Field
			verr.Reason = fmt.Sprintf("expected %s, got %s", typeErr.Type, typeErr.Value)
			verr.Cause = nil
		}
		return nil, verr
	}

	if rd.Summary == nil {
		return nil, schemaViolation(-1, "summary", "missing required field")
	}
	if rd.Quiz == nil {
		return nil, schemaViolation(-1, "quiz", "missing required field")
	}

	doc := &domain.QuizDocument{
		Summary:       strings.TrimSpace(*rd.Summary),
		Sections:      rd.Sections,
		RelatedTopics: rd.RelatedTopics,
		Quiz:          make([]domain.QuizQuestion, 0, len(*rd.Quiz)),
	}
	if rd.KeyEntities != nil {
		doc.KeyEntities = domain.KeyEntities{
			People:        rd.KeyEntities.People,
			Organizations: rd.KeyEntities.Organizations,
			Locations:     rd.KeyEntities.Locations,
		}
	}

	for i, rq := range *rd.Quiz {
		q, err := validateQuestion(i, rq)
		if err != nil {
			return nil, err
		}
		doc.Quiz = append(doc.Quiz, q)
	}

	if n := len(doc.Quiz); n < domain.MinQuestions || n > domain.MaxQuestions {
		reason := fmt.Sprintf("got %d questions, want between %d and %d", n, domain.MinQuestions, domain.MaxQuestions)
		if v.countPolicy == config.QuestionCountStrict || n == 0 {
			return nil, &domain.OutputValidationError{
				Kind:          domain.ViolationRule,
				Field:         "quiz",
				QuestionIndex: -1,
				Reason:        reason,
			}
		}
		logger.Get().Warn("Question count outside expected range", zap.Int("count", n), zap.String("policy", v.countPolicy))
	}

	doc.Normalize()
	return doc, nil
}

func validateQuestion(i int, rq rawQuestion) (domain.QuizQuestion, error) {
	switch {
	case rq.Question == nil:
		return domain.QuizQuestion{}, schemaViolation(i, "question", "missing required field")
	case rq.Options == nil:
		return domain.QuizQuestion{}, schemaViolation(i, "options", "missing required field")
	case rq.Answer == nil:
		return domain.QuizQuestion{}, schemaViolation(i, "answer", "missing required field")
	case rq.Difficulty == nil:
		return domain.QuizQuestion{}, schemaViolation(i, "difficulty", "missing required field")
	case rq.Explanation == nil:
		return domain.QuizQuestion{}, schemaViolation(i, "explanation", "missing required field")
	}

	options := make([]string, 0, len(*rq.Options))
	for j, opt := range *rq.Options {
		if opt == nil {
			return domain.QuizQuestion{}, schemaViolation(i, "options", fmt.Sprintf("option %d must be a string, got null", j))
		}
		options = append(options, *opt)
	}

	q := domain.QuizQuestion{
		Question:    strings.TrimSpace(*rq.Question),
		Options:     options,
		Answer:      *rq.Answer,
		Difficulty:  domain.Difficulty(*rq.Difficulty),
		Explanation: strings.TrimSpace(*rq.Explanation),
	}

	if q.Question == "" {
		return q, ruleViolation(i, "question", "must not be empty")
	}
	if len(q.Options) != domain.OptionsPerItem {
		return q, ruleViolation(i, "options", fmt.Sprintf("must have exactly %d options, got %d", domain.OptionsPerItem, len(q.Options)))
	}
	seen := make(map[string]struct{}, len(q.Options))
	for j, opt := range q.Options {
		if strings.TrimSpace(opt) == "" {
			return q, ruleViolation(i, "options", fmt.Sprintf("option %d must not be blank", j))
		}
		if _, dup := seen[opt]; dup {
			return q, ruleViolation(i, "options", fmt.Sprintf("duplicate option %q", opt))
		}
		seen[opt] = struct{}{}
	}
	if !q.HasAnswerInOptions() {
		return q, ruleViolation(i, "answer", fmt.Sprintf("answer %q is not one of the options", q.Answer))
	}
	if !q.Difficulty.Valid() {
		return q, ruleViolation(i, "difficulty", fmt.Sprintf("difficulty %q must be easy, medium or hard", q.Difficulty))
	}
	if q.Explanation == "" {
		return q, ruleViolation(i, "explanation", "must not be empty")
	}
	return q, nil
}

func schemaViolation(i int, field, reason string) error {
	return &domain.OutputValidationError{Kind: domain.ViolationSchema, Field: field, QuestionIndex: i, Reason: reason}
}

func ruleViolation(i int, field, reason string) error {
	return &domain.OutputValidationError{Kind: domain.ViolationRule, Field: field, QuestionIndex: i, Reason: reason}
}

// ExtractJSONObject returns the first balanced {...} block of text that is valid JSON.
// Markdown code fences are stripped first and braces inside string literals are ignored.
func ExtractJSONObject(text string) (string, bool) {
	text = strings.TrimSpace(codeFenceRe.ReplaceAllString(text, ""))

	for start := 0; start < len(text); start++ {
		if text[start] != '{' {
			continue
		}
		end := matchingBrace(text, start)
		if end < 0 {
			continue
		}
		if candidate := text[start : end+1]; json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}
	return "", false
}

// matchingBrace returns the index of the brace closing the one at start, or -1.
func matchingBrace(text string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

var _ domain.QuizOutputValidator = (*QuizOutputValidator)(nil)
