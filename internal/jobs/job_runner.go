package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ligo/internal/config"
	"ligo/internal/redis"
	"ligo/internal/repository"
	"ligo/internal/service"
)

const refreshLockTTL = 5 * time.Minute

// JobRunner coordinates all scheduled jobs.
type JobRunner struct {
	accounts       repository.LinkedAccountRepository
	accountService *service.AccountService
	locks          redis.LockStoreInterface
	cfg            config.JobsConfig
	logger         *zap.Logger
}

// NewJobRunner creates a new job runner with all dependencies.
func NewJobRunner(
	accounts repository.LinkedAccountRepository,
	accountService *service.AccountService,
	locks redis.LockStoreInterface,
	cfg config.JobsConfig,
	logger *zap.Logger,
) *JobRunner {
	return &JobRunner{
		accounts:       accounts,
		accountService: accountService,
		locks:          locks,
		cfg:            cfg,
		logger:         logger,
	}
}

// Config returns the job configuration.
func (jr *JobRunner) Config() config.JobsConfig {
	return jr.cfg
}

// runWithRecovery wraps job execution with panic recovery.
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			jr.logger.Error("job panicked", zap.String("job", jobName), zap.Any("panic", r))
		}
	}()

	jr.logger.Info("starting job", zap.String("job", jobName))
	jobFunc()
	jr.logger.Info("job completed", zap.String("job", jobName))
}

// RefreshExpiringTokens refreshes provider tokens that expire within the
// configured window. Each account is guarded by a Redis lock so concurrent
// relay instances do not race the provider's single-use refresh tokens.
func (jr *JobRunner) RefreshExpiringTokens() {
	jr.runWithRecovery("refresh_expiring_tokens", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		before := time.Now().Add(jr.cfg.TokenRefreshWindow)
		accounts, err := jr.accounts.GetExpiring(ctx, before)
		if err != nil {
			jr.logger.Error("failed to list expiring accounts", zap.Error(err))
			return
		}

		for _, account := range accounts {
			acquired, err := jr.locks.AcquireRefreshLock(ctx, account.ID, refreshLockTTL)
			if err != nil {
				jr.logger.Warn("failed to acquire refresh lock",
					zap.String("account_id", account.ID), zap.Error(err))
				continue
			}
			if !acquired {
				continue
			}

			if err := jr.accountService.RefreshAccount(ctx, account); err != nil {
				jr.logger.Warn("failed to refresh account token",
					zap.String("account_id", account.ID),
					zap.String("provider", account.Provider),
					zap.Error(err))
			}

			if err := jr.locks.ReleaseRefreshLock(ctx, account.ID); err != nil {
				jr.logger.Warn("failed to release refresh lock",
					zap.String("account_id", account.ID), zap.Error(err))
			}
		}
	})
}
