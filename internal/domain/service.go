package domain

import "context"

// ArticleFetcher retrieves and extracts a Wikipedia article.
type ArticleFetcher interface {
	Fetch(ctx context.Context, url string) (*Article, error)
}

// PromptBuilder renders the generation prompt for an article. It is pure.
type PromptBuilder func(title, content string) string

// TextGenerator sends a prompt to a language model and returns its raw text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// QuizOutputValidator turns raw model text into a QuizDocument.
type QuizOutputValidator interface {
	Validate(raw string) (*QuizDocument, error)
}

// QuizRepository is the persistence port for quiz records, keyed by url.
type QuizRepository interface {
	// FindByURL returns nil, nil when no record exists.
	FindByURL(ctx context.Context, url string) (*QuizRecord, error)
	// Insert assigns id and date_generated. It returns ErrConflict when the url is already stored.
	Insert(ctx context.Context, record *QuizRecord) (*QuizRecord, error)
	// FindByID returns nil, nil when no record exists.
	FindByID(ctx context.Context, id int64) (*QuizRecord, error)
	// ListAll returns summaries ordered by date_generated, newest first.
	ListAll(ctx context.Context) ([]QuizSummary, error)
	// Delete reports whether a row was removed.
	Delete(ctx context.Context, id int64) (bool, error)
	Ping(ctx context.Context) error
}

// QuizService is the application facade used by the HTTP layer.
type QuizService interface {
	GenerateOrFetch(ctx context.Context, url string) (*QuizRecord, error)
	ListHistory(ctx context.Context) ([]QuizSummary, error)
	GetQuiz(ctx context.Context, id int64) (*QuizRecord, error)
	DeleteQuiz(ctx context.Context, id int64) error
	CheckStorage(ctx context.Context) error
}

// TransactionManager runs fn inside a single storage transaction.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
