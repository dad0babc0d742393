package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/seu-repo/jarvis/internal/domain"
	"github.com/seu-repo/jarvis/internal/ports"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

const statusActive = "Active"

type Service struct {
	userRepo ports.UserRepository
	tokens   *JWTService
	log      *zap.Logger
}

func NewService(userRepo ports.UserRepository, tokens *JWTService, log *zap.Logger) *Service {
	return &Service{
		userRepo: userRepo,
		tokens:   tokens,
		log:      log,
	}
}

func (s *Service) Login(ctx context.Context, email, password string) (string, string, error) {
	user, err := s.userRepo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil || user == nil {
		return "", "", ErrInvalidCredentials
	}
	if user.Status != statusActive {
		return "", "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", "", ErrInvalidCredentials
	}

	access, err := s.tokens.GenerateAccessToken(user)
	if err != nil {
		return "", "", err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user)
	if err != nil {
		return "", "", err
	}

	s.log.Info("User logged in", zap.String("user_id", user.ID))
	return access, refresh, nil
}

func (s *Service) Register(ctx context.Context, user *domain.User) error {
	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.Password = string(hashedPwd)
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	user.CreatedAt = time.Now()
	user.UpdatedAt = time.Now()
	if user.Role == "" {
		user.Role = domain.UserRoleGuest
	}
	user.Status = statusActive

	return s.userRepo.Save(ctx, user)
}

// EnsureOwner creates the owner account on first start. An existing account
// with the same email is left untouched.
func (s *Service) EnsureOwner(ctx context.Context, id, name, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("auth: owner email and password are required")
	}

	existing, err := s.userRepo.FindByEmail(ctx, strings.ToLower(email))
	if err == nil && existing != nil {
		return nil
	}
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("auth: look up owner: %w", err)
	}

	if err := s.Register(ctx, &domain.User{
		ID:       id,
		Name:     name,
		Email:    email,
		Password: password,
		Role:     domain.UserRoleOwner,
	}); err != nil {
		return fmt.Errorf("auth: create owner: %w", err)
	}

	s.log.Info("Owner account created", zap.String("email", email))
	return nil
}

func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.ValidateToken(ctx, refreshToken, TokenTypeRefresh)
	if err != nil {
		return "", errors.New("invalid refresh token")
	}

	user, err := s.userRepo.FindByID(ctx, claims.Subject)
	if err != nil || user == nil {
		return "", errors.New("user not found")
	}
	if user.Status != statusActive {
		return "", errors.New("user is not active")
	}

	return s.tokens.GenerateAccessToken(user)
}

func (s *Service) ValidateToken(ctx context.Context, tokenStr string) (*domain.User, error) {
	claims, err := s.tokens.ValidateToken(ctx, tokenStr, TokenTypeAccess)
	if err != nil {
		return nil, errors.New("invalid token")
	}

	user, err := s.userRepo.FindByID(ctx, claims.Subject)
	if err != nil || user == nil {
		return nil, errors.New("user not found")
	}
	return user, nil
}

// Logout revokes the given token. Both access and refresh tokens are accepted.
func (s *Service) Logout(ctx context.Context, tokenStr string) error {
	claims, err := s.tokens.ValidateToken(ctx, tokenStr, TokenTypeAccess)
	if err != nil {
		claims, err = s.tokens.ValidateToken(ctx, tokenStr, TokenTypeRefresh)
		if err != nil {
			return errors.New("invalid token")
		}
	}
	return s.tokens.RevokeToken(ctx, claims)
}
