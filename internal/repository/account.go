package repository

import (
	"context"
	"time"

	"ligo/internal/domain"
)

// LinkedAccountRepository defines the persistence operations for linked
// telematics accounts.
type LinkedAccountRepository interface {
	// Upsert inserts the account or, when the (provider, external user id)
	// pair already exists, replaces its tokens.
	Upsert(ctx context.Context, account *domain.LinkedAccount) error

	// GetByProviderUser retrieves an account by provider and external user id.
	GetByProviderUser(ctx context.Context, provider, externalUserID string) (*domain.LinkedAccount, error)

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id string) (*domain.LinkedAccount, error)

	// GetExpiring retrieves accounts whose access token expires before the
	// given instant.
	GetExpiring(ctx context.Context, before time.Time) ([]*domain.LinkedAccount, error)
}
