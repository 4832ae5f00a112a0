package admin

import (
	"context"
	"database/sql"
	"errors"
)

// Repository stores admin accounts in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// ByEmail returns an account or nil when the email is unknown.
func (r *Repository) ByEmail(ctx context.Context, email string) (*Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT email, password_hash FROM admin_accounts WHERE email = $1
	`, email)
	var acct Account
	if err := row.Scan(&acct.Email, &acct.PasswordHash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &acct, nil
}

// UpdatePassword replaces the stored hash.
func (r *Repository) UpdatePassword(ctx context.Context, email, hash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE admin_accounts SET password_hash = $2, updated_at = NOW() WHERE email = $1
	`, email, hash)
	return err
}

// Seed ensures an initial account exists; an existing one is left alone.
func (r *Repository) Seed(ctx context.Context, email, hash string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO admin_accounts (email, password_hash)
		VALUES ($1, $2)
		ON CONFLICT (email) DO NOTHING
	`, email, hash)
	return err
}
