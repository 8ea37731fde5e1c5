package handler

import (
	"time"

	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/dto"
	"wiki-quiz/internal/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// HealthHandler serves the service description and the liveness and storage probes.
type HealthHandler struct {
	service domain.QuizService
	cache   domain.Cache
	version string
	now     func() time.Time
}

// NewHealthHandler creates a HealthHandler. cache may be nil when Redis is disabled.
func NewHealthHandler(service domain.QuizService, cache domain.Cache, version string) *HealthHandler {
	return &HealthHandler{
		service: service,
		cache:   cache,
		version: version,
		now:     time.Now,
	}
}

// Root godoc
// @Summary Describe the service
// @Tags health
// @Produce json
// @Success 200 {object} dto.RootResponse
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(dto.RootResponse{
		Message: "Wiki Quiz Generator API",
		Status:  "running",
		Version: h.version,
		Endpoints: map[string]string{
			"generate_quiz": "POST /generate_quiz",
			"history":       "GET /history",
			"quiz":          "GET /quiz/{id}",
			"delete_quiz":   "DELETE /quiz/{id}",
			"health":        "GET /health",
			"health_db":     "GET /health/db",
			"docs":          "GET /swagger/index.html",
		},
	})
}

// Health godoc
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(dto.HealthResponse{
		Status:    "healthy",
		Timestamp: dto.FormatTimestamp(h.now()),
	})
}

// HealthDB godoc
// @Summary Storage connectivity probe
// @Tags health
// @Produce json
// @Success 200 {object} dto.DBHealthResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /health/db [get]
func (h *HealthHandler) HealthDB(c *fiber.Ctx) error {
	if err := h.service.CheckStorage(c.UserContext()); err != nil {
		return err
	}

	resp := dto.DBHealthResponse{Status: "healthy", Database: "connected"}
	if h.cache != nil {
		resp.Cache = "connected"
		if err := h.cache.Ping(c.UserContext()); err != nil {
			logger.Get().Warn("Cache ping failed", zap.Error(err))
			resp.Cache = "unavailable"
		}
	}
	return c.JSON(resp)
}
