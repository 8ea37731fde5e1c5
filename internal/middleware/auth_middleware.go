package middleware

import (
	"strings"

	"wiki-quiz/internal/domain"
	"wiki-quiz/internal/logger"
	"wiki-quiz/internal/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	AuthorizationHeader = "Authorization"
	BearerSchema        = "Bearer "
	AdminSubjectKey     = "adminSubject"
)

// AdminOnly requires a valid admin bearer token. When admin auth is not configured
// the route stays open.
func AdminOnly(adminAuth service.AdminAuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if adminAuth == nil || !adminAuth.Enabled() {
			return c.Next()
		}

		authHeader := c.Get(AuthorizationHeader)
		if authHeader == "" {
			return domain.NewUnauthorizedError("Authorization header is missing")
		}
		if !strings.HasPrefix(authHeader, BearerSchema) {
			return domain.NewUnauthorizedError("Authorization scheme is not Bearer")
		}
		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, BearerSchema))
		if tokenString == "" {
			return domain.NewUnauthorizedError("Token is empty")
		}

		claims, err := adminAuth.ValidateAdminToken(tokenString)
		if err != nil {
			logger.Get().Debug("AdminOnly: token rejected", zap.Error(err), zap.String("path", c.Path()))
			return domain.NewUnauthorizedError("Invalid admin token")
		}

		c.Locals(AdminSubjectKey, claims.Subject)
		return c.Next()
	}
}
