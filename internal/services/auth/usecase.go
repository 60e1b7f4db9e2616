// Package auth implements credential issuance and the request guard: sign-up,
// login, refresh-token renewal, and the middleware protecting directory
// operations.
package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"orgdir/internal/domain/account"
	"orgdir/internal/repository"
	"orgdir/internal/token"
)

var (
	// ErrInvalidCredentials covers every authentication failure: unknown
	// subject, wrong password, bad or expired refresh token. One error for all
	// of them, so callers cannot probe which check failed.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountExists deliberately does not say whether the username or the
	// email collided.
	ErrAccountExists = errors.New("username or email already in use")
)

type Usecase struct {
	accounts account.Repo
	tokens   *token.Service
	hashCost int
}

func NewUsecase(accounts account.Repo, tokens *token.Service, hashCost int) *Usecase {
	if hashCost < bcrypt.DefaultCost {
		hashCost = bcrypt.DefaultCost
	}
	return &Usecase{accounts: accounts, tokens: tokens, hashCost: hashCost}
}

// SignUp hashes the password and persists the account. Input validation
// happens at the transport boundary, not here.
func (u *Usecase) SignUp(ctx context.Context, username, email, password string) (*account.Account, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a := &account.Account{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := u.accounts.Create(ctx, a); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrAccountExists
		}
		return nil, fmt.Errorf("create account: %w", err)
	}
	return a, nil
}

// Login resolves the identifier as a username first, then as an email, and
// verifies the password. Both an unknown subject and a wrong password come
// back as the identical ErrInvalidCredentials.
func (u *Usecase) Login(ctx context.Context, usernameOrEmail, password string) (*account.Account, string, string, error) {
	a, err := u.accounts.GetByUsername(ctx, usernameOrEmail)
	if errors.Is(err, repository.ErrNotFound) {
		a, err = u.accounts.GetByEmail(ctx, usernameOrEmail)
	}
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", "", ErrInvalidCredentials
		}
		return nil, "", "", fmt.Errorf("lookup account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)) != nil {
		return nil, "", "", ErrInvalidCredentials
	}

	access, err := u.tokens.IssueAccess(a.ID, a.Email)
	if err != nil {
		return nil, "", "", fmt.Errorf("issue access: %w", err)
	}
	refresh, err := u.tokens.IssueRefresh(a.ID)
	if err != nil {
		return nil, "", "", fmt.Errorf("issue refresh: %w", err)
	}
	return a, access, refresh, nil
}

// RefreshAccess exchanges a valid refresh token for a fresh access token. The
// subject must still exist; a deleted account makes its refresh tokens dead
// letters.
func (u *Usecase) RefreshAccess(ctx context.Context, rawRefresh string) (string, error) {
	claims, err := u.tokens.VerifyRefresh(rawRefresh)
	if err != nil {
		return "", ErrInvalidCredentials
	}
	id, err := claims.SubjectID()
	if err != nil {
		return "", ErrInvalidCredentials
	}

	a, err := u.accounts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("lookup account: %w", err)
	}

	access, err := u.tokens.IssueAccess(a.ID, a.Email)
	if err != nil {
		return "", fmt.Errorf("issue access: %w", err)
	}
	return access, nil
}

func (u *Usecase) Tokens() *token.Service { return u.tokens }
