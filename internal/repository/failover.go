package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"bookvideolink/internal/domain"
	"bookvideolink/internal/models"

	"github.com/rs/zerolog"
)

// FailoverSessionRepository serves sessions from memory while Redis is unavailable.
type FailoverSessionRepository struct {
	primary   domain.SessionRepository
	fallback  domain.SessionRepository
	logger    *zerolog.Logger
	isDown    atomic.Bool
	mu        sync.Mutex
	lastCheck time.Time
	retry     time.Duration
}

func NewFailoverSessionRepository(primary, fallback domain.SessionRepository, logger *zerolog.Logger) *FailoverSessionRepository {
	return &FailoverSessionRepository{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		retry:    time.Minute,
	}
}

func (r *FailoverSessionRepository) markDown(err error) {
	r.logger.Error().Err(err).Msg("Primary session repository failed, falling back to memory")
	r.isDown.Store(true)
	r.mu.Lock()
	r.lastCheck = time.Now()
	r.mu.Unlock()
}

// usePrimary reports whether the primary should be tried, allowing one probe per retry period while down.
func (r *FailoverSessionRepository) usePrimary() bool {
	if !r.isDown.Load() {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if time.Since(r.lastCheck) > r.retry {
		r.lastCheck = time.Now()
		return true
	}
	return false
}

func (r *FailoverSessionRepository) recovered() {
	if r.isDown.CompareAndSwap(true, false) {
		r.logger.Info().Msg("Primary session repository recovered")
	}
}

func (r *FailoverSessionRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	if r.usePrimary() {
		session, err := r.primary.GetSession(ctx, id)
		if err == nil {
			r.recovered()
			return session, nil
		}
		r.markDown(err)
	}

	return r.fallback.GetSession(ctx, id)
}

func (r *FailoverSessionRepository) SaveSession(ctx context.Context, session *models.Session) error {
	if r.usePrimary() {
		err := r.primary.SaveSession(ctx, session)
		if err == nil {
			r.recovered()
			return nil
		}
		r.markDown(err)
	}

	return r.fallback.SaveSession(ctx, session)
}

func (r *FailoverSessionRepository) DeleteSession(ctx context.Context, id string) error {
	if r.usePrimary() {
		err := r.primary.DeleteSession(ctx, id)
		if err == nil {
			r.recovered()
			return r.fallback.DeleteSession(ctx, id)
		}
		r.markDown(err)
	}

	return r.fallback.DeleteSession(ctx, id)
}

func (r *FailoverSessionRepository) Claim(ctx context.Context, key string, window time.Duration) (bool, error) {
	if r.usePrimary() {
		claimed, err := r.primary.Claim(ctx, key, window)
		if err == nil {
			r.recovered()
			return claimed, nil
		}
		r.markDown(err)
	}

	return r.fallback.Claim(ctx, key, window)
}

func (r *FailoverSessionRepository) ReleaseClaim(ctx context.Context, key string) error {
	if r.usePrimary() {
		err := r.primary.ReleaseClaim(ctx, key)
		if err == nil {
			r.recovered()
			return r.fallback.ReleaseClaim(ctx, key)
		}
		r.markDown(err)
	}

	return r.fallback.ReleaseClaim(ctx, key)
}
