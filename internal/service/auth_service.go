package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cwrk-planet/dm-service/internal/domain"
	"github.com/cwrk-planet/dm-service/internal/errs"
	"github.com/cwrk-planet/dm-service/internal/repository"
	"github.com/cwrk-planet/dm-service/internal/security"
)

type LoginResult struct {
	User        *domain.User
	AccessToken string
}

type AuthService struct {
	users repository.UserRepository
	jwt   *security.JWTSigner
	now   func() time.Time
}

func NewAuthService(users repository.UserRepository, jwt *security.JWTSigner, now func() time.Time) *AuthService {
	if now == nil {
		now = time.Now
	}

	return &AuthService{
		users: users,
		jwt:   jwt,
		now:   now,
	}
}

// Login аутентифицирует по username+пароль и выпускает access-токен
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, errs.ErrInvalidCredentials
		}
		slog.Error("auth.login.getByUsername failed", slog.Any("err", err))
		return nil, err
	}

	if err := security.ComparePassword(u.PasswordHash, password); err != nil {
		return nil, errs.ErrInvalidCredentials
	}

	access, err := s.jwt.SignAccessToken(u, s.now())
	if err != nil {
		slog.Error("auth.login.signAccessToken failed", slog.Any("err", err))
		return nil, err
	}

	return &LoginResult{User: u, AccessToken: access}, nil
}

// Identity проверяет access-токен и возвращает личность пользователя.
// Чистая операция: никакого похода в БД, всё берётся из клеймов.
func (s *AuthService) Identity(token string) (*domain.Identity, error) {
	claims, err := s.jwt.ParseAndValidate(token)
	if err != nil {
		return nil, err
	}

	return security.IdentityFromClaims(claims)
}

func (s *AuthService) AccessTTL() time.Duration { return s.jwt.TTL() }
