package service

import (
	"errors"
	"fmt"
	"time"

	"wiki-quiz/internal/config"
	"wiki-quiz/internal/dto"
	"wiki-quiz/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

const adminRole = "admin"

var (
	ErrInvalidAdminToken = errors.New("invalid admin token")
	ErrAdminAuthDisabled = errors.New("admin auth is not configured")
)

// AdminAuthService mints and verifies the HS256 bearer tokens that guard quiz deletion.
type AdminAuthService interface {
	// Enabled is false when no admin secret is configured; admin routes are then open.
	Enabled() bool
	CreateAdminToken(subject string, ttl time.Duration) (string, error)
	ValidateAdminToken(tokenString string) (*dto.AdminClaims, error)
}

type adminAuthService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

func NewAdminAuthService(cfg config.AuthConfig) AdminAuthService {
	return &adminAuthService{
		secret: []byte(cfg.AdminSecret),
		issuer: cfg.Issuer,
		now:    time.Now,
	}
}

func (s *adminAuthService) Enabled() bool {
	return len(s.secret) > 0
}

func (s *adminAuthService) CreateAdminToken(subject string, ttl time.Duration) (string, error) {
	if !s.Enabled() {
		return "", ErrAdminAuthDisabled
	}
	now := s.now()
	claims := dto.AdminClaims{
		Role: adminRole,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *adminAuthService) ValidateAdminToken(tokenString string) (*dto.AdminClaims, error) {
	if !s.Enabled() {
		return nil, ErrAdminAuthDisabled
	}
	token, err := jwt.ParseWithClaims(tokenString, &dto.AdminClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Get().Warn("Admin token expired", zap.Error(err))
		} else {
			logger.Get().Warn("Admin token validation failed", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidAdminToken, err)
	}

	claims, ok := token.Claims.(*dto.AdminClaims)
	if !ok || !token.Valid || claims.Role != adminRole {
		return nil, ErrInvalidAdminToken
	}
	return claims, nil
}
