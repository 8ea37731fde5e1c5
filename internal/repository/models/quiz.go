package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wiki-quiz/internal/domain"
)

// QuizData stores a domain.QuizDocument as JSON text in full_quiz_data.
type QuizData domain.QuizDocument

// Value implements the driver.Valuer interface
func (d QuizData) Value() (driver.Value, error) {
	doc := domain.QuizDocument(d)
	doc.Normalize()
	jsonData, err := json.Marshal(doc)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (d *QuizData) Scan(value interface{}) error {
	var bytesToParse []byte

	switch v := value.(type) {
	case nil:
		return errors.New("QuizData Scan: full_quiz_data is NULL")
	case []byte:
		bytesToParse = v
	case string:
		bytesToParse = []byte(v)
	default:
		return errors.New("QuizData Scan: unsupported type " + fmt.Sprintf("%T", value))
	}

	var doc domain.QuizDocument
	if err := json.Unmarshal(bytesToParse, &doc); err != nil {
		return fmt.Errorf("QuizData Scan: %w", err)
	}
	doc.Normalize()
	*d = QuizData(doc)
	return nil
}

// Quiz is a row of the quizzes table.
type Quiz struct {
	ID             int64          `db:"id"`
	URL            string         `db:"url"`
	Title          string         `db:"title"`
	DateGenerated  time.Time      `db:"date_generated"`
	ScrapedContent sql.NullString `db:"scraped_content"`
	FullQuizData   QuizData       `db:"full_quiz_data"`
}

// QuizSummary is the listing projection of the quizzes table.
type QuizSummary struct {
	ID            int64     `db:"id"`
	URL           string    `db:"url"`
	Title         string    `db:"title"`
	DateGenerated time.Time `db:"date_generated"`
}
