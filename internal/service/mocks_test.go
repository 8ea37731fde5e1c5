package service

import (
	"context"
	"sync"
	"time"

	"wiki-quiz/internal/domain"

	"github.com/stretchr/testify/mock"
)

// --- MockQuizRepository ---
type MockQuizRepository struct {
	mock.Mock
}

func (m *MockQuizRepository) FindByURL(ctx context.Context, url string) (*domain.QuizRecord, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuizRecord), args.Error(1)
}

func (m *MockQuizRepository) Insert(ctx context.Context, record *domain.QuizRecord) (*domain.QuizRecord, error) {
	args := m.Called(ctx, record)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuizRecord), args.Error(1)
}

func (m *MockQuizRepository) FindByID(ctx context.Context, id int64) (*domain.QuizRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.QuizRecord), args.Error(1)
}

func (m *MockQuizRepository) ListAll(ctx context.Context) ([]domain.QuizSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.QuizSummary), args.Error(1)
}

func (m *MockQuizRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuizRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// --- MockArticleFetcher ---
type MockArticleFetcher struct {
	mock.Mock
}

func (m *MockArticleFetcher) Fetch(ctx context.Context, url string) (*domain.Article, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Article), args.Error(1)
}

// --- MockTextGenerator ---
type MockTextGenerator struct {
	mock.Mock
}

func (m *MockTextGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

// --- MockCache ---
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockCache) Set(ctx context.Context, key string, value string, expiration time.Duration) error {
	args := m.Called(ctx, key, value, expiration)
	return args.Error(0)
}

func (m *MockCache) Delete(ctx context.Context, keys ...string) error {
	args := m.Called(ctx, keys)
	return args.Error(0)
}

func (m *MockCache) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// memoryQuizRepository is an in-memory store enforcing the unique url constraint.
type memoryQuizRepository struct {
	mu      sync.Mutex
	nextID  int64
	byID    map[int64]*domain.QuizRecord
	inserts int
}

func newMemoryQuizRepository() *memoryQuizRepository {
	return &memoryQuizRepository{byID: make(map[int64]*domain.QuizRecord)}
}

func (r *memoryQuizRepository) FindByURL(_ context.Context, url string) (*domain.QuizRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range r.byID {
		if rec.URL == url {
			cp := *rec
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memoryQuizRepository) Insert(_ context.Context, record *domain.QuizRecord) (*domain.QuizRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts++
	for _, rec := range r.byID {
		if rec.URL == record.URL {
			return nil, domain.ErrConflict
		}
	}
	r.nextID++
	stored := *record
	stored.ID = r.nextID
	stored.DateGenerated = time.Now().UTC()
	r.byID[stored.ID] = &stored
	cp := stored
	return &cp, nil
}

func (r *memoryQuizRepository) FindByID(_ context.Context, id int64) (*domain.QuizRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.byID[id]
	if !ok {
		return nil, nil
	}
	cp := *rec
	return &cp, nil
}

func (r *memoryQuizRepository) ListAll(_ context.Context) ([]domain.QuizSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.QuizSummary, 0, len(r.byID))
	for _, rec := range r.byID {
		out = append(out, rec.Summary())
	}
	return out, nil
}

func (r *memoryQuizRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return false, nil
	}
	delete(r.byID, id)
	return true, nil
}

func (r *memoryQuizRepository) Ping(context.Context) error { return nil }

func (r *memoryQuizRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
