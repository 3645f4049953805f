package application

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"valutatrade-service/internal/domain"
)

// AuthService supplies the identity the ledger requires. It stays narrow:
// salted password hashes in the user store, no sessions or tokens.
type AuthService struct {
	users      UserRepo
	portfolios PortfolioRepo
	clock      Clock
	log        *zap.Logger
}

type AuthOption func(*AuthService)

func WithAuthClock(c Clock) AuthOption { return func(s *AuthService) { s.clock = c } }

func NewAuthService(users UserRepo, portfolios PortfolioRepo, log *zap.Logger, opts ...AuthOption) *AuthService {
	s := &AuthService{users: users, portfolios: portfolios, log: log}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

func (s *AuthService) Register(ctx context.Context, username, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return domain.User{}, fmt.Errorf("%w: username must not be empty", domain.ErrValidation)
	}
	if len(password) < 4 {
		return domain.User{}, fmt.Errorf("%w: password must be at least 4 characters", domain.ErrValidation)
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		return domain.User{}, fmt.Errorf("%w: %q", ErrUserExists, username)
	} else if !errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, err
	}

	salt, err := newSalt()
	if err != nil {
		return domain.User{}, err
	}
	user, err := s.users.Create(ctx, domain.User{
		Username:       username,
		HashedPassword: hashPassword(password, salt),
		Salt:           salt,
		RegisteredAt:   s.clock.Now(),
	})
	if err != nil {
		return domain.User{}, err
	}
	if err := s.portfolios.Save(ctx, domain.NewPortfolio(user.ID)); err != nil {
		return domain.User{}, err
	}

	s.log.Info("ledger_action", zap.String("action", "REGISTER"),
		zap.Int64("user_id", user.ID), zap.String("result", "OK"))
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return domain.User{}, err
	}
	if hashPassword(password, user.Salt) != user.HashedPassword {
		s.log.Info("ledger_action", zap.String("action", "LOGIN"),
			zap.Int64("user_id", user.ID), zap.String("result", "ERROR"))
		return domain.User{}, ErrInvalidCredentials
	}
	s.log.Info("ledger_action", zap.String("action", "LOGIN"),
		zap.Int64("user_id", user.ID), zap.String("result", "OK"))
	return user, nil
}

func hashPassword(password, salt string) string {
	sum := sha256.Sum256([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}

func newSalt() (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	return hex.EncodeToString(b), nil
}
