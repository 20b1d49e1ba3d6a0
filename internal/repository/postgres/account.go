package postgres

import (
	"context"
	"database/sql"
	"time"

	"ligo/internal/domain"
	"ligo/internal/repository"
)

// LinkedAccountRepository implements repository.LinkedAccountRepository
// using PostgreSQL.
type LinkedAccountRepository struct {
	q Querier
}

// NewLinkedAccountRepository creates a new LinkedAccountRepository.
func NewLinkedAccountRepository(db *sql.DB) *LinkedAccountRepository {
	return &LinkedAccountRepository{q: db}
}

// Upsert inserts the account or replaces the tokens of the existing
// (provider, external_user_id) row.
func (r *LinkedAccountRepository) Upsert(ctx context.Context, account *domain.LinkedAccount) error {
	query := `
		INSERT INTO linked_accounts (id, provider, external_user_id, access_token, refresh_token, token_expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (provider, external_user_id) DO UPDATE SET
			access_token = EXCLUDED.access_token,
			refresh_token = EXCLUDED.refresh_token,
			token_expires_at = EXCLUDED.token_expires_at,
			updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	_, err := r.q.ExecContext(ctx, query,
		account.ID,
		account.Provider,
		account.ExternalUserID,
		account.AccessToken,
		account.RefreshToken,
		account.TokenExpiresAt,
		now,
	)
	return err
}

const accountColumns = `id, provider, external_user_id, access_token, refresh_token, token_expires_at, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (*domain.LinkedAccount, error) {
	var account domain.LinkedAccount
	err := row.Scan(
		&account.ID,
		&account.Provider,
		&account.ExternalUserID,
		&account.AccessToken,
		&account.RefreshToken,
		&account.TokenExpiresAt,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByProviderUser retrieves an account by provider and external user id.
func (r *LinkedAccountRepository) GetByProviderUser(ctx context.Context, provider, externalUserID string) (*domain.LinkedAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM linked_accounts WHERE provider = $1 AND external_user_id = $2`
	return scanAccount(r.q.QueryRowContext(ctx, query, provider, externalUserID))
}

// GetByID retrieves an account by ID.
func (r *LinkedAccountRepository) GetByID(ctx context.Context, id string) (*domain.LinkedAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM linked_accounts WHERE id = $1`
	return scanAccount(r.q.QueryRowContext(ctx, query, id))
}

// GetExpiring retrieves accounts whose access token expires before the
// given instant.
func (r *LinkedAccountRepository) GetExpiring(ctx context.Context, before time.Time) ([]*domain.LinkedAccount, error) {
	query := `SELECT ` + accountColumns + ` FROM linked_accounts WHERE token_expires_at < $1 ORDER BY token_expires_at`
	rows, err := r.q.QueryContext(ctx, query, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*domain.LinkedAccount
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// Ensure the interface is satisfied.
var _ repository.LinkedAccountRepository = (*LinkedAccountRepository)(nil)
