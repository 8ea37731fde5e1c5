package handler

import (
	"fmt"

	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/dto"
	"wiki-quiz/internal/logger"
	"wiki-quiz/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service domain.QuizService
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service domain.QuizService) *QuizHandler {
	return &QuizHandler{
		service: service,
	}
}

// GenerateQuiz godoc
// @Summary Generate a quiz from a Wikipedia article
// @Description Returns the stored quiz for the url, generating and storing it first when absent
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuizRequest true "Article url"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 422 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /generate_quiz [post]
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	url := middleware.ValidatedURL(c)

	record, err := h.service.GenerateOrFetch(c.UserContext(), url)
	if err != nil {
		return err
	}

	logger.Get().Debug("Quiz returned", zap.Int64("quiz_id", record.ID), zap.String("url", record.URL))
	return c.JSON(dto.NewQuizResponse(record))
}

// GetHistory godoc
// @Summary List generated quizzes
// @Description Returns every stored quiz, newest first
// @Tags quiz
// @Produce json
// @Success 200 {array} dto.QuizHistoryItem
// @Failure 500 {object} middleware.ErrorResponse
// @Router /history [get]
func (h *QuizHandler) GetHistory(c *fiber.Ctx) error {
	summaries, err := h.service.ListHistory(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewQuizHistory(summaries))
}

// GetQuiz godoc
// @Summary Get a stored quiz
// @Tags quiz
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quiz/{id} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	id, ok := middleware.ValidatedQuizID(c)
	if !ok {
		return domain.NewInvalidInputError("quiz id is required")
	}

	record, err := h.service.GetQuiz(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(dto.NewQuizResponse(record))
}

// DeleteQuiz godoc
// @Summary Delete a stored quiz
// @Description Requires an admin bearer token when admin auth is configured
// @Tags quiz
// @Produce json
// @Param id path int true "Quiz ID"
// @Success 200 {object} dto.MessageResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Security ApiKeyAuth
// @Router /quiz/{id} [delete]
func (h *QuizHandler) DeleteQuiz(c *fiber.Ctx) error {
	id, ok := middleware.ValidatedQuizID(c)
	if !ok {
		return domain.NewInvalidInputError("quiz id is required")
	}

	if err := h.service.DeleteQuiz(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(dto.MessageResponse{Message: fmt.Sprintf("Quiz %d deleted successfully", id)})
}
