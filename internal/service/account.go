package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ligo/internal/domain"
	"ligo/internal/redis"
	"ligo/internal/repository"
	"ligo/internal/telematics"
)

// AccountService links telematics accounts through the OAuth relay and
// serves their vehicles.
type AccountService struct {
	providers map[string]*telematics.Client
	accounts  repository.LinkedAccountRepository
	cache     redis.VehicleCacheInterface
	logger    *zap.Logger
}

// NewAccountService creates a new AccountService over the configured
// providers.
func NewAccountService(
	providers map[string]*telematics.Client,
	accounts repository.LinkedAccountRepository,
	cache redis.VehicleCacheInterface,
	logger *zap.Logger,
) *AccountService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AccountService{
		providers: providers,
		accounts:  accounts,
		cache:     cache,
		logger:    logger,
	}
}

func (s *AccountService) provider(name string) (*telematics.Client, error) {
	client, ok := s.providers[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}
	return client, nil
}

// Authorize exchanges an OAuth authorization code and links (or re-links)
// the provider account.
func (s *AccountService) Authorize(ctx context.Context, provider, code string) (*domain.LinkedAccount, error) {
	client, err := s.provider(provider)
	if err != nil {
		return nil, err
	}
	if code == "" {
		return nil, ErrInvalidAuthCode
	}

	token, err := client.ExchangeCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}

	externalUserID, err := client.UserID(ctx, token.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}

	account, err := s.accounts.GetByProviderUser(ctx, provider, externalUserID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	if account == nil {
		account = &domain.LinkedAccount{
			ID:             uuid.New().String(),
			Provider:       provider,
			ExternalUserID: externalUserID,
		}
	}

	account.AccessToken = token.AccessToken
	account.RefreshToken = token.RefreshToken
	account.TokenExpiresAt = token.ExpiresAt()

	if err := s.accounts.Upsert(ctx, account); err != nil {
		return nil, err
	}

	if err := s.cache.InvalidateVehicles(ctx, account.ID); err != nil {
		s.logger.Warn("vehicle cache invalidation failed",
			zap.String("account_id", account.ID), zap.Error(err))
	}

	return account, nil
}

// Vehicles returns the linked account's vehicles, served from cache when
// fresh enough.
func (s *AccountService) Vehicles(ctx context.Context, provider, externalUserID string) ([]domain.Vehicle, error) {
	client, err := s.provider(provider)
	if err != nil {
		return nil, err
	}

	account, err := s.accounts.GetByProviderUser(ctx, provider, externalUserID)
	if err != nil {
		return nil, err
	}

	cached, err := s.cache.GetVehicles(ctx, account.ID)
	if err != nil {
		s.logger.Warn("vehicle cache read failed",
			zap.String("account_id", account.ID), zap.Error(err))
	}
	if cached != nil {
		return cached, nil
	}

	if account.TokenExpired(time.Now()) {
		if err := s.RefreshAccount(ctx, account); err != nil {
			return nil, err
		}
	}

	vehicles, err := client.Vehicles(ctx, account.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}

	if err := s.cache.SetVehicles(ctx, account.ID, vehicles); err != nil {
		s.logger.Warn("vehicle cache write failed",
			zap.String("account_id", account.ID), zap.Error(err))
	}

	return vehicles, nil
}

// VehicleOdometer returns a vehicle's current odometer reading. Live oracle
// data is never cached.
func (s *AccountService) VehicleOdometer(ctx context.Context, provider, externalUserID, vehicleID string) (*telematics.Odometer, error) {
	client, account, err := s.freshAccount(ctx, provider, externalUserID)
	if err != nil {
		return nil, err
	}

	odometer, err := client.VehicleOdometer(ctx, account.AccessToken, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}
	return odometer, nil
}

// VehicleLocation returns a vehicle's current GPS position. Live oracle data
// is never cached.
func (s *AccountService) VehicleLocation(ctx context.Context, provider, externalUserID, vehicleID string) (*telematics.Location, error) {
	client, account, err := s.freshAccount(ctx, provider, externalUserID)
	if err != nil {
		return nil, err
	}

	location, err := client.VehicleLocation(ctx, account.AccessToken, vehicleID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}
	return location, nil
}

// freshAccount resolves the linked account and refreshes its token if
// needed.
func (s *AccountService) freshAccount(ctx context.Context, provider, externalUserID string) (*telematics.Client, *domain.LinkedAccount, error) {
	client, err := s.provider(provider)
	if err != nil {
		return nil, nil, err
	}

	account, err := s.accounts.GetByProviderUser(ctx, provider, externalUserID)
	if err != nil {
		return nil, nil, err
	}

	if account.TokenExpired(time.Now()) {
		if err := s.RefreshAccount(ctx, account); err != nil {
			return nil, nil, err
		}
	}

	return client, account, nil
}

// RefreshAccount refreshes the account's token pair and persists it.
func (s *AccountService) RefreshAccount(ctx context.Context, account *domain.LinkedAccount) error {
	client, err := s.provider(account.Provider)
	if err != nil {
		return err
	}

	token, err := client.Refresh(ctx, account.RefreshToken)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}

	account.AccessToken = token.AccessToken
	account.RefreshToken = token.RefreshToken
	account.TokenExpiresAt = token.ExpiresAt()

	return s.accounts.Upsert(ctx, account)
}
