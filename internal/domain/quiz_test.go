package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDifficulty_Valid(t *testing.T) {
	for _, d := range []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard} {
		assert.True(t, d.Valid(), string(d))
	}
	for _, d := range []Difficulty{"", "Easy", "extreme"} {
		assert.False(t, d.Valid(), string(d))
	}
}

func TestQuizQuestion_HasAnswerInOptions(t *testing.T) {
	tests := []struct {
		name   string
		q      QuizQuestion
		expect bool
	}{
		{"exact match", QuizQuestion{Options: []string{"A", "B", "C", "D"}, Answer: "B"}, true},
		{"case differs", QuizQuestion{Options: []string{"Paris", "Rome", "Oslo", "Bern"}, Answer: "paris"}, false},
		{"trailing space", QuizQuestion{Options: []string{"Paris", "Rome", "Oslo", "Bern"}, Answer: "Paris "}, false},
		{"duplicated option", QuizQuestion{Options: []string{"A", "A", "C", "D"}, Answer: "A"}, false},
		{"missing", QuizQuestion{Options: []string{"A", "B", "C", "D"}, Answer: "E"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.q.HasAnswerInOptions())
		})
	}
}

func TestNewQuizRecord_NormalizesDocument(t *testing.T) {
	article := &Article{URL: "https://en.wikipedia.org/wiki/Alan_Turing", Title: " Alan Turing ", Content: "text"}
	rec := NewQuizRecord(article, &QuizDocument{Summary: "s"})

	assert.Equal(t, "Alan Turing", rec.Title)
	assert.Equal(t, "text", rec.ScrapedContent)
	assert.NotNil(t, rec.Document.KeyEntities.People)
	assert.NotNil(t, rec.Document.Sections)
	assert.NotNil(t, rec.Document.RelatedTopics)
	assert.Zero(t, rec.ID)
}

func TestNewQuizRecord_PrefersFetchedSections(t *testing.T) {
	article := &Article{Title: "Alan Turing", Sections: []string{"Early life", "Career"}}

	rec := NewQuizRecord(article, &QuizDocument{Summary: "s"})
	assert.Equal(t, []string{"Early life", "Career"}, rec.Document.Sections)

	rec = NewQuizRecord(article, &QuizDocument{Summary: "s", Sections: []string{"Career", "Legacy"}})
	assert.Equal(t, []string{"Early life", "Career"}, rec.Document.Sections)

	article.Sections[0] = "Changed"
	assert.Equal(t, "Early life", rec.Document.Sections[0])
}

func TestNewQuizRecord_FallsBackToModelSections(t *testing.T) {
	article := &Article{Title: "Alan Turing"}
	rec := NewQuizRecord(article, &QuizDocument{Summary: "s", Sections: []string{"Legacy"}})
	assert.Equal(t, []string{"Legacy"}, rec.Document.Sections)
}

func TestQuizRecord_CloneSharesNoSlices(t *testing.T) {
	orig := &QuizRecord{
		ID:  7,
		URL: "https://en.wikipedia.org/wiki/Alan_Turing",
		Document: QuizDocument{
			Summary:       "s",
			KeyEntities:   KeyEntities{People: []string{"Alan Turing"}, Organizations: []string{}, Locations: []string{"London"}},
			Sections:      []string{"Early life"},
			Quiz:          []QuizQuestion{{Question: "Q?", Options: []string{"A", "B", "C", "D"}, Answer: "B"}},
			RelatedTopics: []string{"Enigma"},
		},
	}

	cp := orig.Clone()
	require.Equal(t, orig, cp)

	cp.Document.Quiz[0].Options[0] = "changed"
	cp.Document.Quiz[0].Question = "changed"
	cp.Document.Sections[0] = "changed"
	cp.Document.KeyEntities.People[0] = "changed"
	cp.Document.RelatedTopics[0] = "changed"

	assert.Equal(t, "A", orig.Document.Quiz[0].Options[0])
	assert.Equal(t, "Q?", orig.Document.Quiz[0].Question)
	assert.Equal(t, "Early life", orig.Document.Sections[0])
	assert.Equal(t, "Alan Turing", orig.Document.KeyEntities.People[0])
	assert.Equal(t, "Enigma", orig.Document.RelatedTopics[0])

	var nilRecord *QuizRecord
	assert.Nil(t, nilRecord.Clone())
}

func TestValidateArticleURL(t *testing.T) {
	valid := []string{
		"https://en.wikipedia.org/wiki/Alan_Turing",
		"http://wikipedia.org/wiki/Go_(programming_language)",
	}
	for _, u := range valid {
		assert.NoError(t, ValidateArticleURL(u), u)
	}

	invalid := []string{
		"https://example.com/not-wikipedia",
		"https://en.wikipedia.org/wiki/",
		"https://de.wikipedia.org/wiki/Berlin",
		"ftp://en.wikipedia.org/wiki/Alan_Turing",
		"",
	}
	for _, u := range invalid {
		err := ValidateArticleURL(u)
		require.Error(t, err, u)
		assert.True(t, IsCode(err, CodeInvalidURL), u)
	}
}

func TestNormalizeArticleURL(t *testing.T) {
	assert.Equal(t, "https://en.wikipedia.org/wiki/X", NormalizeArticleURL("  https://en.wikipedia.org/wiki/X\n"))
}

func TestOutputValidationError_AsDomainError(t *testing.T) {
	verr := &OutputValidationError{Kind: ViolationRule, Field: "answer", QuestionIndex: 2, Reason: "answer not in options"}
	de := verr.AsDomainError()

	assert.Equal(t, CodeOutputValidation, de.Code)
	assert.Equal(t, 2, de.Context["question_index"])
	assert.Equal(t, "RULE_VIOLATION", de.Context["kind"])
	assert.Contains(t, de.Message, "question 2")

	var unwrapped *OutputValidationError
	require.True(t, errors.As(de, &unwrapped))
	assert.Equal(t, ViolationRule, unwrapped.Kind)
}
