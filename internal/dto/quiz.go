package dto

import (
	"time"

	"wiki-quiz/internal/domain"
)

// GenerateQuizRequest is the body of POST /generate_quiz
// @Description Request body for generating a quiz from a Wikipedia article
type GenerateQuizRequest struct {
	URL string `json:"url" example:"https://en.wikipedia.org/wiki/Alan_Turing"`
}

// QuizQuestionResponse is a single multiple choice question
type QuizQuestionResponse struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Difficulty  string   `json:"difficulty" enums:"easy,medium,hard"`
	Explanation string   `json:"explanation"`
}

// KeyEntitiesResponse groups the named entities found in the article
type KeyEntitiesResponse struct {
	People        []string `json:"people"`
	Organizations []string `json:"organizations"`
	Locations     []string `json:"locations"`
}

// QuizResponse is a stored quiz with its full generated document
// @Description Generated quiz for a Wikipedia article
type QuizResponse struct {
	ID            int64                  `json:"id"`
	URL           string                 `json:"url"`
	Title         string                 `json:"title"`
	DateGenerated string                 `json:"date_generated" example:"2024-01-02T15:04:05Z"`
	Summary       string                 `json:"summary"`
	KeyEntities   KeyEntitiesResponse    `json:"key_entities"`
	Sections      []string               `json:"sections"`
	Quiz          []QuizQuestionResponse `json:"quiz"`
	RelatedTopics []string               `json:"related_topics"`
}

// QuizHistoryItem is one row of GET /history
type QuizHistoryItem struct {
	ID            int64  `json:"id"`
	URL           string `json:"url"`
	Title         string `json:"title"`
	DateGenerated string `json:"date_generated" example:"2024-01-02T15:04:05Z"`
}

// MessageResponse carries a plain confirmation message
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse is returned by the liveness probe
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// DBHealthResponse is returned by the storage probe
type DBHealthResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
	Cache    string `json:"cache,omitempty"`
}

// RootResponse describes the service at GET /
type RootResponse struct {
	Message   string            `json:"message"`
	Status    string            `json:"status"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// FormatTimestamp renders t as RFC3339 in UTC.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func NewQuizResponse(r *domain.QuizRecord) QuizResponse {
	doc := r.Document
	doc.Normalize()

	questions := make([]QuizQuestionResponse, 0, len(doc.Quiz))
	for _, q := range doc.Quiz {
		options := q.Options
		if options == nil {
			options = []string{}
		}
		questions = append(questions, QuizQuestionResponse{
			Question:    q.Question,
			Options:     options,
			Answer:      q.Answer,
			Difficulty:  string(q.Difficulty),
			Explanation: q.Explanation,
		})
	}

	return QuizResponse{
		ID:            r.ID,
		URL:           r.URL,
		Title:         r.Title,
		DateGenerated: FormatTimestamp(r.DateGenerated),
		Summary:       doc.Summary,
		KeyEntities: KeyEntitiesResponse{
			People:        doc.KeyEntities.People,
			Organizations: doc.KeyEntities.Organizations,
			Locations:     doc.KeyEntities.Locations,
		},
		Sections:      doc.Sections,
		Quiz:          questions,
		RelatedTopics: doc.RelatedTopics,
	}
}

func NewQuizHistory(summaries []domain.QuizSummary) []QuizHistoryItem {
	items := make([]QuizHistoryItem, 0, len(summaries))
	for _, s := range summaries {
		items = append(items, QuizHistoryItem{
			ID:            s.ID,
			URL:           s.URL,
			Title:         s.Title,
			DateGenerated: FormatTimestamp(s.DateGenerated),
		})
	}
	return items
}
