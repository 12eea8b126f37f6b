package auth

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/yawwnann/fintrack/internal/core"
	"github.com/yawwnann/fintrack/internal/storage"
)

const minPasswordLength = 6

type Service struct {
	repo   *storage.Repository
	tokens *TokenManager
}

func NewService(repo *storage.Repository, tokens *TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Register creates the user together with their default account, in one
// transaction, and returns a signed token. A duplicate email surfaces as
// ErrConflict.
func (s *Service) Register(ctx context.Context, email, name, password string, initialBalance core.Money) (core.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return core.User{}, "", fmt.Errorf("%w: a valid email is required", core.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return core.User{}, "", fmt.Errorf("%w: password must be at least %d characters", core.ErrInvalidInput, minPasswordLength)
	}
	if initialBalance.Cents < 0 {
		return core.User{}, "", core.ErrInvalidAmount
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return core.User{}, "", fmt.Errorf("hash password: %w", err)
	}

	var user core.User
	err = s.repo.WithTx(ctx, func(q *storage.Queries) error {
		user, err = q.CreateUser(ctx, core.User{
			Email:        email,
			Name:         strings.TrimSpace(name),
			PasswordHash: string(hash),
		})
		if err != nil {
			return err
		}
		_, err = q.CreateAccount(ctx, core.Account{
			UserID:         user.ID,
			Name:           "Main Account",
			Type:           "General",
			CurrentBalance: initialBalance,
		})
		return err
	})
	if err != nil {
		return core.User{}, "", err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return core.User{}, "", err
	}

	slog.InfoContext(ctx, "user registered", "user_id", user.ID)
	return user, token, nil
}

// Login verifies the credentials and issues a token. Unknown email and
// wrong password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (core.User, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return core.User{}, "", core.ErrUnauthenticated
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return core.User{}, "", core.ErrUnauthenticated
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return core.User{}, "", err
	}

	slog.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return user, token, nil
}

// Verify resolves a bearer token to the acting user id.
func (s *Service) Verify(token string) (int64, error) {
	return s.tokens.Verify(token)
}
