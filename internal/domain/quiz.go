package domain

import (
	"strings"
	"time"
)

// Difficulty is the closed set of question difficulties.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of easy, medium or hard.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

const (
	MinQuestions   = 5
	MaxQuestions   = 7
	OptionsPerItem = 4
)

// Article is what the fetcher extracts from a Wikipedia page.
type Article struct {
	URL      string
	Title    string
	Content  string
	Sections []string
}

// KeyEntities groups the named entities of an article.
type KeyEntities struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
}

// Normalize replaces nil lists with empty ones.
func (k *KeyEntities) Normalize() {
	if k.People == nil {
		k.People = []string{}
	}
	if k.Organizations == nil {
		k.Organizations = []string{}
	}
	if k.Locations == nil {
		k.Locations = []string{}
	}
}

// QuizQuestion is a single multiple choice question.
type QuizQuestion struct {
	Question    string     `json:"question"`
	Options     []string   `json:"options"`
	Answer      string     `json:"answer"`
	Difficulty  Difficulty `json:"difficulty"`
	Explanation string     `json:"explanation"`
}

// HasAnswerInOptions reports whether the answer matches exactly one option verbatim.
func (q QuizQuestion) HasAnswerInOptions() bool {
	matches := 0
	for _, opt := range q.Options {
		if opt == q.Answer {
			matches++
		}
	}
	return matches == 1
}

// QuizDocument is the structured payload stored in full_quiz_data.
type QuizDocument struct {
	Summary       string         `json:"summary"`
	KeyEntities   KeyEntities    `json:"key_entities"`
	Sections      []string       `json:"sections"`
	Quiz          []QuizQuestion `json:"quiz"`
	RelatedTopics []string       `json:"related_topics"`
}

// Normalize replaces nil collections with empty ones so the document serialises as lists.
func (d *QuizDocument) Normalize() {
	d.KeyEntities.Normalize()
	if d.Sections == nil {
		d.Sections = []string{}
	}
	if d.Quiz == nil {
		d.Quiz = []QuizQuestion{}
	}
	if d.RelatedTopics == nil {
		d.RelatedTopics = []string{}
	}
}

// QuizRecord is the persisted quiz, one per article url.
type QuizRecord struct {
	ID             int64
	URL            string
	Title          string
	DateGenerated  time.Time
	ScrapedContent string
	Document       QuizDocument
}

// QuizSummary is the listing projection of a QuizRecord.
type QuizSummary struct {
	ID            int64
	URL           string
	Title         string
	DateGenerated time.Time
}

// NewQuizRecord builds an unsaved record from a fetched article and a validated document.
// Section headings extracted from the page take precedence over the model's list; the
// model's list is kept only when the page yielded none.
func NewQuizRecord(article *Article, doc *QuizDocument) *QuizRecord {
	d := *doc
	if len(article.Sections) > 0 {
		d.Sections = cloneStrings(article.Sections)
	}
	d.Normalize()
	return &QuizRecord{
		URL:            article.URL,
		Title:          strings.TrimSpace(article.Title),
		ScrapedContent: article.Content,
		Document:       d,
	}
}

// Clone returns a deep copy of the record; no slice is shared with r.
func (r *QuizRecord) Clone() *QuizRecord {
	if r == nil {
		return nil
	}
	cp := *r
	d := &cp.Document
	d.KeyEntities.People = cloneStrings(r.Document.KeyEntities.People)
	d.KeyEntities.Organizations = cloneStrings(r.Document.KeyEntities.Organizations)
	d.KeyEntities.Locations = cloneStrings(r.Document.KeyEntities.Locations)
	d.Sections = cloneStrings(r.Document.Sections)
	d.RelatedTopics = cloneStrings(r.Document.RelatedTopics)
	if r.Document.Quiz != nil {
		d.Quiz = make([]QuizQuestion, len(r.Document.Quiz))
		for i, q := range r.Document.Quiz {
			q.Options = cloneStrings(q.Options)
			d.Quiz[i] = q
		}
	}
	return &cp
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return append(make([]string, 0, len(s)), s...)
}

// Summary returns the listing projection of the record.
func (r *QuizRecord) Summary() QuizSummary {
	return QuizSummary{
		ID:            r.ID,
		URL:           r.URL,
		Title:         r.Title,
		DateGenerated: r.DateGenerated,
	}
}
