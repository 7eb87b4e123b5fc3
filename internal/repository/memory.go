package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"bookvideolink/internal/models"
)

// MemorySessionRepository keeps sessions in process. Values are stored as JSON so callers
// never share a *models.Session across requests.
type MemorySessionRepository struct {
	sessions sync.Map // map[string]memoryEntry
	claims   sync.Map // map[string]*claimEntry
	ttl      time.Duration
	now      func() time.Time
	mu       sync.Mutex
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

type claimEntry struct {
	expiresAt time.Time
}

func NewMemorySessionRepository(ttl time.Duration) *MemorySessionRepository {
	return &MemorySessionRepository{
		ttl: ttl,
		now: time.Now,
	}
}

func (r *MemorySessionRepository) GetSession(ctx context.Context, id string) (*models.Session, error) {
	val, ok := r.sessions.Load(id)
	if !ok {
		return nil, nil
	}
	entry := val.(memoryEntry)
	if r.ttl > 0 && r.now().After(entry.expiresAt) {
		r.sessions.Delete(id)
		return nil, nil
	}

	var session models.Session
	if err := json.Unmarshal(entry.data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (r *MemorySessionRepository) SaveSession(ctx context.Context, session *models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	r.sessions.Store(session.ID, memoryEntry{data: data, expiresAt: r.now().Add(r.ttl)})
	return nil
}

func (r *MemorySessionRepository) DeleteSession(ctx context.Context, id string) error {
	r.sessions.Delete(id)
	return nil
}

func (r *MemorySessionRepository) Claim(ctx context.Context, key string, window time.Duration) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	if val, ok := r.claims.Load(key); ok && now.Before(val.(*claimEntry).expiresAt) {
		return false, nil
	}
	r.claims.Store(key, &claimEntry{expiresAt: now.Add(window)})
	return true, nil
}

func (r *MemorySessionRepository) ReleaseClaim(ctx context.Context, key string) error {
	r.claims.Delete(key)
	return nil
}
