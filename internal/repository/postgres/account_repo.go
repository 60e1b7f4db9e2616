package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"orgdir/internal/domain/account"
)

var _ account.Repo = (*AccountRepo)(nil)

type AccountRepo struct {
	db *DB
}

func NewAccountRepo(db *DB) *AccountRepo { return &AccountRepo{db: db} }

const (
	qAccountInsert = `
INSERT INTO accounts (id, username, email, password_hash)
VALUES ($1, $2, $3, $4)
RETURNING id, username, email, password_hash, created_at;`

	qAccountByID = `
SELECT id, username, email, password_hash, created_at
FROM accounts
WHERE id = $1;`

	qAccountByUsername = `
SELECT id, username, email, password_hash, created_at
FROM accounts
WHERE username = $1;`

	qAccountByEmail = `
SELECT id, username, email, password_hash, created_at
FROM accounts
WHERE email = $1;`
)

// Create inserts the account; username/email uniqueness is enforced by the
// table constraints, so concurrent registrations race in the database and the
// loser gets ErrConflict.
func (r *AccountRepo) Create(ctx context.Context, a *account.Account) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	row := r.db.Pool.QueryRow(ctx, qAccountInsert, a.ID, a.Username, a.Email, a.PasswordHash)
	if err := scanAccount(row, a); err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("account insert: %w", err)
	}
	return nil
}

func (r *AccountRepo) GetByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var a account.Account
	if err := scanAccount(r.db.Pool.QueryRow(ctx, qAccountByID, id), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) GetByUsername(ctx context.Context, username string) (*account.Account, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var a account.Account
	if err := scanAccount(r.db.Pool.QueryRow(ctx, qAccountByUsername, username), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *AccountRepo) GetByEmail(ctx context.Context, email string) (*account.Account, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var a account.Account
	if err := scanAccount(r.db.Pool.QueryRow(ctx, qAccountByEmail, email), &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func scanAccount(row pgx.Row, out *account.Account) error {
	if err := row.Scan(&out.ID, &out.Username, &out.Email, &out.PasswordHash, &out.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("scan account: %w", err)
	}
	return nil
}
