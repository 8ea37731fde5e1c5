package service

import (
	"context"
	"errors"
	"time"

	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/logger"
	"wiki-quiz/internal/observability"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	stageFetch    = "fetch"
	stageGenerate = "generate"
	stageValidate = "validate"
	stageStore    = "store"
)

// QuizServiceConfig bounds the generation retry loop.
type QuizServiceConfig struct {
	MaxAttempts  int
	RetryBackoff time.Duration
}

type quizService struct {
	repo        domain.QuizRepository
	fetcher     domain.ArticleFetcher
	generator   domain.TextGenerator
	validator   domain.QuizOutputValidator
	buildPrompt domain.PromptBuilder
	recordCache QuizRecordCache
	cfg         QuizServiceConfig
}

// NewQuizService wires the generate-or-fetch pipeline.
func NewQuizService(
	repo domain.QuizRepository,
	fetcher domain.ArticleFetcher,
	generator domain.TextGenerator,
	validator domain.QuizOutputValidator,
	buildPrompt domain.PromptBuilder,
	recordCache QuizRecordCache,
	cfg QuizServiceConfig,
) domain.QuizService {
	if recordCache == nil {
		recordCache = noopQuizRecordCache{}
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &quizService{
		repo:        repo,
		fetcher:     fetcher,
		generator:   generator,
		validator:   validator,
		buildPrompt: buildPrompt,
		recordCache: recordCache,
		cfg:         cfg,
	}
}

// GenerateOrFetch returns the stored quiz for url, generating and storing it first when absent.
// Concurrent first calls for one url may both generate; the store's unique url constraint
// decides the winner and the loser returns the winner's record.
func (s *quizService) GenerateOrFetch(ctx context.Context, rawURL string) (record *domain.QuizRecord, err error) {
	url := domain.NormalizeArticleURL(rawURL)
	if err := domain.ValidateArticleURL(url); err != nil {
		observability.QuizRequests.WithLabelValues(observability.OutcomeError).Inc()
		return nil, err
	}

	// a disconnecting client must not abort a run whose result benefits later callers
	ctx = context.WithoutCancel(ctx)
	ctx, span := observability.StartSpan(ctx, "quiz.generate_or_fetch", attribute.String("url", url))
	defer func() {
		observability.EndSpan(span, err)
		if err != nil {
			observability.QuizRequests.WithLabelValues(observability.OutcomeError).Inc()
		}
	}()

	if cached := s.recordCache.GetByURL(ctx, url); cached != nil {
		logger.Get().Debug("Quiz served from cache", zap.String("url", url), zap.Int64("quiz_id", cached.ID))
		observability.QuizRequests.WithLabelValues(observability.OutcomeCached).Inc()
		return cached, nil
	}

	existing, err := s.repo.FindByURL(ctx, url)
	if err != nil {
		return nil, domain.NewInternalError("failed to look up quiz", err).WithContext("url", url)
	}
	if existing != nil {
		logger.Get().Info("Quiz already stored", zap.String("url", url), zap.Int64("quiz_id", existing.ID))
		s.recordCache.Put(ctx, existing)
		observability.QuizRequests.WithLabelValues(observability.OutcomeExisting).Inc()
		return existing, nil
	}

	article, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}

	doc, err := s.generateDocument(ctx, article)
	if err != nil {
		return nil, err
	}

	candidate := domain.NewQuizRecord(article, doc)
	candidate.URL = url

	var outcome string
	err = s.stage(ctx, stageStore, func(ctx context.Context) error {
		saved, insertErr := s.repo.Insert(ctx, candidate)
		if insertErr == nil {
			record, outcome = saved, observability.OutcomeStored
			return nil
		}
		if !errors.Is(insertErr, domain.ErrConflict) {
			return domain.NewInternalError("failed to store quiz", insertErr).WithContext("url", url)
		}

		logger.Get().Info("Concurrent generation already stored this url, returning stored quiz", zap.String("url", url))
		winner, findErr := s.repo.FindByURL(ctx, url)
		if findErr != nil {
			return domain.NewInternalError("failed to load conflicting quiz", findErr).WithContext("url", url)
		}
		if winner == nil {
			return domain.NewInternalError("quiz conflicted on insert but is not stored", insertErr).WithContext("url", url)
		}
		record, outcome = winner, observability.OutcomeConflict
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordCache.Put(ctx, record)
	observability.QuizRequests.WithLabelValues(outcome).Inc()
	logger.Get().Info("Quiz ready",
		zap.String("url", url),
		zap.Int64("quiz_id", record.ID),
		zap.String("outcome", outcome),
		zap.Int("questions", len(record.Document.Quiz)))
	return record, nil
}

func (s *quizService) fetch(ctx context.Context, url string) (*domain.Article, error) {
	var article *domain.Article
	err := s.stage(ctx, stageFetch, func(ctx context.Context) error {
		a, err := s.fetcher.Fetch(ctx, url)
		if err != nil {
			var domainErr *domain.DomainError
			if !errors.As(err, &domainErr) {
				err = domain.NewFetchError("Failed to fetch article", err).WithContext("url", url)
			}
			return err
		}
		article = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	article.URL = url
	logger.Get().Info("Article fetched",
		zap.String("url", url),
		zap.String("title", article.Title),
		zap.Int("content_chars", len(article.Content)),
		zap.Int("sections", len(article.Sections)))
	return article, nil
}

// generateDocument runs prompt, generate and validate, retrying generation and validation
// failures up to MaxAttempts times in total. The article is never refetched.
func (s *quizService) generateDocument(ctx context.Context, article *domain.Article) (*domain.QuizDocument, error) {
	prompt := s.buildPrompt(article.Title, article.Content)
	attempt := 0

	operation := func() (*domain.QuizDocument, error) {
		attempt++
		logger.Get().Debug("Generating quiz", zap.String("url", article.URL), zap.Int("attempt", attempt))

		var raw string
		err := s.stage(ctx, stageGenerate, func(ctx context.Context) error {
			out, err := s.generator.Generate(ctx, prompt)
			if err != nil {
				var domainErr *domain.DomainError
				if !errors.As(err, &domainErr) {
					err = domain.NewGenerationError(err)
				}
				return err
			}
			raw = out
			return nil
		})
		if err != nil {
			return nil, retryable(err)
		}

		var doc *domain.QuizDocument
		err = s.stage(ctx, stageValidate, func(ctx context.Context) error {
			d, err := s.validator.Validate(raw)
			if err != nil {
				var violation *domain.OutputValidationError
				if errors.As(err, &violation) {
					return violation.AsDomainError()
				}
				return domain.NewError(domain.CodeOutputValidation, "Quiz validation failed", err)
			}
			doc = d
			return nil
		})
		if err != nil {
			return nil, retryable(err)
		}
		return doc, nil
	}

	doc, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewConstantBackOff(s.cfg.RetryBackoff)),
		backoff.WithMaxTries(uint(s.cfg.MaxAttempts)),
		backoff.WithNotify(func(err error, next time.Duration) {
			logger.Get().Warn("Quiz generation attempt failed, retrying",
				zap.String("url", article.URL),
				zap.Int("attempt", attempt),
				zap.Duration("backoff", next),
				zap.Error(err))
		}),
	)
	observability.GenerationAttempts.Observe(float64(attempt))
	if err != nil {
		logger.Get().Error("Quiz generation failed", zap.String("url", article.URL), zap.Int("attempts", attempt), zap.Error(err))
		return nil, err
	}
	return doc, nil
}

// retryable marks everything except generation and output validation failures as permanent.
func retryable(err error) error {
	if domain.IsCode(err, domain.CodeGenerationError) || domain.IsCode(err, domain.CodeOutputValidation) {
		return err
	}
	return backoff.Permanent(err)
}

// stage runs fn under a child span and records its duration and failure code.
func (s *quizService) stage(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	start := time.Now()
	ctx, span := observability.StartSpan(ctx, "quiz."+name)
	err := fn(ctx)
	observability.EndSpan(span, err)
	observability.ObserveStage(name, start, err)
	if err != nil {
		observability.StageErrors.WithLabelValues(name, string(errorCode(err))).Inc()
	}
	return err
}

func errorCode(err error) domain.ErrorCode {
	var domainErr *domain.DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return domain.CodeInternal
}

func (s *quizService) ListHistory(ctx context.Context) ([]domain.QuizSummary, error) {
	summaries, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, domain.NewInternalError("failed to list quizzes", err)
	}
	if summaries == nil {
		summaries = []domain.QuizSummary{}
	}
	return summaries, nil
}

func (s *quizService) GetQuiz(ctx context.Context, id int64) (*domain.QuizRecord, error) {
	if cached := s.recordCache.GetByID(ctx, id); cached != nil {
		return cached, nil
	}
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, domain.NewInternalError("failed to load quiz", err).WithContext("quiz_id", id)
	}
	if record == nil {
		return nil, domain.NewQuizNotFoundError(id)
	}
	s.recordCache.Put(ctx, record)
	return record, nil
}

// DeleteQuiz removes the quiz and its cache entries. A later GenerateOrFetch for the same url
// generates a fresh record.
func (s *quizService) DeleteQuiz(ctx context.Context, id int64) error {
	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return domain.NewInternalError("failed to load quiz", err).WithContext("quiz_id", id)
	}
	if record == nil {
		return domain.NewQuizNotFoundError(id)
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return domain.NewInternalError("failed to delete quiz", err).WithContext("quiz_id", id)
	}
	s.recordCache.Invalidate(ctx, record)
	if !deleted {
		return domain.NewQuizNotFoundError(id)
	}
	logger.Get().Info("Quiz deleted", zap.Int64("quiz_id", id), zap.String("url", record.URL))
	return nil
}

func (s *quizService) CheckStorage(ctx context.Context) error {
	if err := s.repo.Ping(ctx); err != nil {
		return domain.NewInternalError("database connection failed", err)
	}
	return nil
}
