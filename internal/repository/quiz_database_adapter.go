package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"wiki-quiz/internal/config"
	"wiki-quiz/internal/database"
	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/logger"
	"wiki-quiz/internal/repository/models"
	"wiki-quiz/internal/util"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const (
	selectQuizColumns = `SELECT
		id "id",
		url "url",
		title "title",
		date_generated "date_generated",
		scraped_content "scraped_content",
		full_quiz_data "full_quiz_data"
	FROM quizzes`

	insertQuizQuery = `INSERT INTO quizzes (
		url, title, date_generated, scraped_content, full_quiz_data
	) VALUES (?, ?, ?, ?, ?)`

	selectQuizIDByURLQuery = `SELECT id "id" FROM quizzes WHERE url = ?`

	listQuizSummariesQuery = `SELECT
		id "id",
		url "url",
		title "title",
		date_generated "date_generated"
	FROM quizzes
	ORDER BY date_generated DESC, id DESC`

	deleteQuizQuery = `DELETE FROM quizzes WHERE id = ?`
)

// QuizDatabaseAdapter implements domain.QuizRepository using sqlx.DB
type QuizDatabaseAdapter struct {
	db      *sqlx.DB
	cfg     config.DBConfig
	dialect Dialect
	tm      domain.TransactionManager
}

// NewQuizDatabaseAdapter creates a new instance of QuizDatabaseAdapter
func NewQuizDatabaseAdapter(db *sqlx.DB, cfg config.DBConfig) *QuizDatabaseAdapter {
	return &QuizDatabaseAdapter{
		db:      db,
		cfg:     cfg,
		dialect: Dialect(cfg.Driver),
		tm:      NewTransactionManagerAdapter(db),
	}
}

// OpenQuizDatabaseAdapter connects to the configured database.
// Call Initialize before use and Close when done.
func OpenQuizDatabaseAdapter(ctx context.Context, cfg config.DBConfig) (*QuizDatabaseAdapter, error) {
	db, err := database.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return NewQuizDatabaseAdapter(db, cfg), nil
}

// Initialize brings the schema up to date.
func (a *QuizDatabaseAdapter) Initialize(ctx context.Context) error {
	return database.Migrate(ctx, a.cfg)
}

// Close releases the underlying connection pool.
func (a *QuizDatabaseAdapter) Close() error {
	return a.db.Close()
}

// Ping implements domain.QuizRepository
func (a *QuizDatabaseAdapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

// FindByURL implements domain.QuizRepository
func (a *QuizDatabaseAdapter) FindByURL(ctx context.Context, url string) (*domain.QuizRecord, error) {
	var row models.Quiz
	exec := GetExecutor(ctx, a.db)
	err := exec.GetContext(ctx, &row, exec.Rebind(selectQuizColumns+` WHERE url = ?`), url)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by url %s: %w", url, err)
	}
	return toDomainQuizRecord(&row), nil
}

// FindByID implements domain.QuizRepository
func (a *QuizDatabaseAdapter) FindByID(ctx context.Context, id int64) (*domain.QuizRecord, error) {
	var row models.Quiz
	exec := GetExecutor(ctx, a.db)
	err := exec.GetContext(ctx, &row, exec.Rebind(selectQuizColumns+` WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get quiz by ID %d: %w", id, err)
	}
	return toDomainQuizRecord(&row), nil
}

// Insert implements domain.QuizRepository. Uniqueness of url is left to the
// database constraint; a violation is reported as domain.ErrConflict.
func (a *QuizDatabaseAdapter) Insert(ctx context.Context, record *domain.QuizRecord) (*domain.QuizRecord, error) {
	if record == nil {
		return nil, fmt.Errorf("cannot insert nil quiz record")
	}
	row := toModelQuiz(record)
	row.DateGenerated = time.Now().UTC().Truncate(time.Microsecond)

	quizData, err := row.FullQuizData.Value()
	if err != nil {
		return nil, fmt.Errorf("failed to encode quiz data: %w", err)
	}

	err = a.tm.WithTransaction(ctx, func(txCtx context.Context) error {
		exec := GetExecutor(txCtx, a.db)
		if _, err := exec.ExecContext(txCtx, exec.Rebind(insertQuizQuery),
			row.URL,
			row.Title,
			row.DateGenerated,
			a.nullableText(row.ScrapedContent),
			a.dialect.textArg(quizData.(string)),
		); err != nil {
			return err
		}
		return exec.GetContext(txCtx, &row.ID, exec.Rebind(selectQuizIDByURLQuery), row.URL)
	})
	if err != nil {
		if a.dialect.IsUniqueViolation(err) {
			logger.Get().Debug("Quiz insert hit unique url constraint", zap.String("url", row.URL))
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("failed to insert quiz for %s: %w", row.URL, err)
	}

	return toDomainQuizRecord(&row), nil
}

// ListAll implements domain.QuizRepository
func (a *QuizDatabaseAdapter) ListAll(ctx context.Context) ([]domain.QuizSummary, error) {
	var rows []models.QuizSummary
	exec := GetExecutor(ctx, a.db)
	if err := exec.SelectContext(ctx, &rows, exec.Rebind(listQuizSummariesQuery)); err != nil {
		return nil, fmt.Errorf("failed to list quizzes: %w", err)
	}

	summaries := make([]domain.QuizSummary, 0, len(rows))
	for _, r := range rows {
		summaries = append(summaries, domain.QuizSummary{
			ID:            r.ID,
			URL:           r.URL,
			Title:         r.Title,
			DateGenerated: r.DateGenerated,
		})
	}
	return summaries, nil
}

// Delete implements domain.QuizRepository
func (a *QuizDatabaseAdapter) Delete(ctx context.Context, id int64) (bool, error) {
	exec := GetExecutor(ctx, a.db)
	result, err := exec.ExecContext(ctx, exec.Rebind(deleteQuizQuery), id)
	if err != nil {
		return false, fmt.Errorf("failed to delete quiz %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected for quiz %d: %w", id, err)
	}
	return affected > 0, nil
}

func (a *QuizDatabaseAdapter) nullableText(s sql.NullString) interface{} {
	if !s.Valid {
		return nil
	}
	return a.dialect.textArg(s.String)
}

func toModelQuiz(r *domain.QuizRecord) models.Quiz {
	return models.Quiz{
		ID:             r.ID,
		URL:            r.URL,
		Title:          r.Title,
		DateGenerated:  r.DateGenerated,
		ScrapedContent: util.StringToNullString(r.ScrapedContent),
		FullQuizData:   models.QuizData(r.Document),
	}
}

func toDomainQuizRecord(row *models.Quiz) *domain.QuizRecord {
	doc := domain.QuizDocument(row.FullQuizData)
	doc.Normalize()
	return &domain.QuizRecord{
		ID:             row.ID,
		URL:            row.URL,
		Title:          row.Title,
		DateGenerated:  row.DateGenerated.UTC(),
		ScrapedContent: row.ScrapedContent.String,
		Document:       doc,
	}
}

var _ domain.QuizRepository = (*QuizDatabaseAdapter)(nil)
