package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"venuebook/internal/domain"
	"venuebook/internal/models"

	"github.com/rs/zerolog"
)

const recoveryInterval = time.Minute

// FailoverStateRepository uses primary until it fails, then serves from
// fallback and retries primary once per recoveryInterval.
type FailoverStateRepository struct {
	primary  domain.StateRepository
	fallback domain.StateRepository
	logger   *zerolog.Logger
	isDown   atomic.Bool

	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverStateRepository(primary, fallback domain.StateRepository, logger *zerolog.Logger) *FailoverStateRepository {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &FailoverStateRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

// usePrimary reports whether the call should go to primary: either it is
// healthy or a recovery probe is due.
func (r *FailoverStateRepository) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.lastCheck) > recoveryInterval {
		r.lastCheck = time.Now()
		return true
	}
	return false
}

func (r *FailoverStateRepository) primaryFailed(op string, err error) {
	if !r.isDown.Swap(true) {
		r.logger.Error().Err(err).Str("op", op).Msg("Primary state repository failed, falling back to memory")
	}
	r.mu.Lock()
	r.lastCheck = time.Now()
	r.mu.Unlock()
}

func (r *FailoverStateRepository) primaryOK() {
	if r.isDown.Swap(false) {
		r.logger.Info().Msg("Primary state repository recovered")
	}
}

func (r *FailoverStateRepository) GetState(ctx context.Context, userID int64) (*models.UserState, error) {
	if r.usePrimary() {
		state, err := r.primary.GetState(ctx, userID)
		if err == nil {
			r.primaryOK()
			return state, nil
		}
		r.primaryFailed("get", err)
	}
	return r.fallback.GetState(ctx, userID)
}

func (r *FailoverStateRepository) SetState(ctx context.Context, state *models.UserState) error {
	if r.usePrimary() {
		err := r.primary.SetState(ctx, state)
		if err == nil {
			r.primaryOK()
			return nil
		}
		r.primaryFailed("set", err)
	}
	return r.fallback.SetState(ctx, state)
}

func (r *FailoverStateRepository) ClearState(ctx context.Context, userID int64) error {
	// fallback may hold a state written while primary was down
	_ = r.fallback.ClearState(ctx, userID)
	if r.usePrimary() {
		err := r.primary.ClearState(ctx, userID)
		if err == nil {
			r.primaryOK()
			return nil
		}
		r.primaryFailed("clear", err)
	}
	return nil
}

func (r *FailoverStateRepository) CheckRateLimit(ctx context.Context, userID int64, limit int, window time.Duration) (bool, error) {
	if r.usePrimary() {
		allowed, err := r.primary.CheckRateLimit(ctx, userID, limit, window)
		if err == nil {
			r.primaryOK()
			return allowed, nil
		}
		r.primaryFailed("rate_limit", err)
	}
	return r.fallback.CheckRateLimit(ctx, userID, limit, window)
}
