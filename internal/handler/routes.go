package handler

import (
	"wiki-quiz/internal/middleware"
	"wiki-quiz/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Routes groups what SetupRoutes mounts.
type Routes struct {
	Quiz          *QuizHandler
	Health        *HealthHandler
	AdminAuth     service.AdminAuthService
	EnableMetrics bool
	EnableSwagger bool
}

// SetupRoutes mounts every public route on app.
func SetupRoutes(app *fiber.App, r Routes) {
	vm := middleware.NewValidationMiddleware()

	app.Get("/", r.Health.Root)
	app.Get("/health", r.Health.Health)
	app.Get("/health/db", r.Health.HealthDB)

	app.Post("/generate_quiz", vm.ValidateGenerateQuiz(), r.Quiz.GenerateQuiz)
	app.Get("/history", r.Quiz.GetHistory)
	app.Get("/quiz/:id", vm.ValidateQuizID(), r.Quiz.GetQuiz)
	app.Delete("/quiz/:id", middleware.AdminOnly(r.AdminAuth), vm.ValidateQuizID(), r.Quiz.DeleteQuiz)

	if r.EnableMetrics {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	}
	if r.EnableSwagger {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}
}
