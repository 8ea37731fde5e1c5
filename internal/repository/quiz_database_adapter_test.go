package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"wiki-quiz/internal/config"
	"wiki-quiz/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const quizDataJSON = `{"summary":"Turing summary","key_entities":{"people":["Alan Turing"],"organizations":[],"locations":[]},"sections":["Early life"],"quiz":[{"question":"Q?","options":["A","B","C","D"],"answer":"A","difficulty":"easy","explanation":"E"}],"related_topics":[]}`

// setupTestDB creates a new sqlx.DB instance and sqlmock for testing.
func setupTestDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { mockDB.Close() })
	return sqlx.NewDb(mockDB, "pgx"), mock
}

func newPostgresAdapter(t *testing.T) (*QuizDatabaseAdapter, sqlmock.Sqlmock) {
	db, mock := setupTestDB(t)
	return NewQuizDatabaseAdapter(db, config.DBConfig{Driver: "postgres"}), mock
}

func quizColumns() []string {
	return []string{"id", "url", "title", "date_generated", "scraped_content", "full_quiz_data"}
}

func sampleRecord() *domain.QuizRecord {
	return &domain.QuizRecord{
		URL:            "https://en.wikipedia.org/wiki/Alan_Turing",
		Title:          "Alan Turing",
		ScrapedContent: "Alan Turing was a mathematician.",
		Document: domain.QuizDocument{
			Summary: "Turing summary",
			Quiz: []domain.QuizQuestion{{
				Question: "Q?", Options: []string{"A", "B", "C", "D"}, Answer: "A",
				Difficulty: domain.DifficultyEasy, Explanation: "E",
			}},
		},
	}
}

func TestFindByURL(t *testing.T) {
	repo, mock := newPostgresAdapter(t)
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	url := "https://en.wikipedia.org/wiki/Alan_Turing"

	mock.ExpectQuery(`FROM quizzes\s+WHERE url = \$1`).
		WithArgs(url).
		WillReturnRows(sqlmock.NewRows(quizColumns()).
			AddRow(int64(7), url, "Alan Turing", now, "content", quizDataJSON))

	rec, err := repo.FindByURL(context.Background(), url)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(7), rec.ID)
	assert.Equal(t, "Alan Turing", rec.Title)
	assert.Equal(t, now, rec.DateGenerated)
	assert.Equal(t, "content", rec.ScrapedContent)
	assert.Equal(t, "Turing summary", rec.Document.Summary)
	assert.Equal(t, []string{"Alan Turing"}, rec.Document.KeyEntities.People)
	require.Len(t, rec.Document.Quiz, 1)
	assert.Equal(t, domain.DifficultyEasy, rec.Document.Quiz[0].Difficulty)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByURL_NotFound(t *testing.T) {
	repo, mock := newPostgresAdapter(t)

	mock.ExpectQuery(`FROM quizzes\s+WHERE url = \$1`).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(quizColumns()))

	rec, err := repo.FindByURL(context.Background(), "missing")
	assert.NoError(t, err)
	assert.Nil(t, rec)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByID(t *testing.T) {
	repo, mock := newPostgresAdapter(t)
	now := time.Now().UTC().Truncate(time.Second)

	mock.ExpectQuery(`FROM quizzes\s+WHERE id = \$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows(quizColumns()).
			AddRow(int64(3), "u", "t", now, nil, quizDataJSON))

	rec, err := repo.FindByID(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, int64(3), rec.ID)
	assert.Empty(t, rec.ScrapedContent)

	mock.ExpectQuery(`FROM quizzes\s+WHERE id = \$1`).
		WithArgs(int64(4)).
		WillReturnError(errors.New("connection reset"))
	_, err = repo.FindByID(context.Background(), 4)
	assert.Error(t, err)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert(t *testing.T) {
	repo, mock := newPostgresAdapter(t)
	rec := sampleRecord()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO quizzes`)).
		WithArgs(rec.URL, rec.Title, sqlmock.AnyArg(), rec.ScrapedContent, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id "id" FROM quizzes WHERE url = $1`)).
		WithArgs(rec.URL).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(11)))
	mock.ExpectCommit()

	before := time.Now().UTC().Add(-time.Second)
	saved, err := repo.Insert(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, int64(11), saved.ID)
	assert.Equal(t, rec.URL, saved.URL)
	assert.True(t, saved.DateGenerated.After(before))
	assert.Equal(t, []string{}, saved.Document.Sections)
	assert.Zero(t, rec.ID, "input record is not mutated")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_UniqueViolationIsConflict(t *testing.T) {
	repo, mock := newPostgresAdapter(t)
	rec := sampleRecord()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO quizzes`)).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint \"uq_quizzes_url\""})
	mock.ExpectRollback()

	saved, err := repo.Insert(context.Background(), rec)
	assert.Nil(t, saved)
	assert.True(t, errors.Is(err, domain.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsert_OtherErrorIsNotConflict(t *testing.T) {
	repo, mock := newPostgresAdapter(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO quizzes`)).
		WillReturnError(&pgconn.PgError{Code: "23502", Message: "null value in column"})
	mock.ExpectRollback()

	_, err := repo.Insert(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrConflict))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListAll(t *testing.T) {
	repo, mock := newPostgresAdapter(t)
	newer := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	older := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM quizzes\s+ORDER BY date_generated DESC, id DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "url", "title", "date_generated"}).
			AddRow(int64(2), "u2", "Second", newer).
			AddRow(int64(1), "u1", "First", older))

	list, err := repo.ListAll(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, int64(2), list[0].ID)
	assert.Equal(t, "First", list[1].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	repo, mock := newPostgresAdapter(t)

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM quizzes WHERE id = $1`)).
		WithArgs(int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM quizzes WHERE id = $1`)).
		WithArgs(int64(6)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := repo.Delete(context.Background(), 5)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.Delete(context.Background(), 6)
	require.NoError(t, err)
	assert.False(t, removed)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDialect_IsUniqueViolation(t *testing.T) {
	assert.True(t, DialectPostgres.IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, DialectPostgres.IsUniqueViolation(&pgconn.PgError{Code: "40001"}))
	assert.True(t, DialectOracle.IsUniqueViolation(errors.New("ORA-00001: unique constraint (APP.UQ_QUIZZES_URL) violated")))
	assert.True(t, DialectSQLite.IsUniqueViolation(errors.New("UNIQUE constraint failed: quizzes.url")))
	assert.False(t, DialectSQLite.IsUniqueViolation(nil))
}
