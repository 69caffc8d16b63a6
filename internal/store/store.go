// Package store persists saved quotes, a named deal configuration under a
// generated id, so an offer can be reopened or compared later. Two backends:
// an in-memory map with expiry sweep for single-node setups, Redis when
// REDIS_ADDR points somewhere.
package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"coutloa/internal/models"
)

var ErrNotFound = errors.New("devis introuvable")

type Quote struct {
	ID        string             `json:"id"`
	Name      string             `json:"name"`
	Config    models.LeaseConfig `json:"config"`
	CreatedAt time.Time          `json:"created_at"`
}

type QuoteStore interface {
	Save(ctx context.Context, name string, cfg models.LeaseConfig) (Quote, error)
	Get(ctx context.Context, id string) (Quote, error)
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	quote     Quote
	expiresAt time.Time
}

// Memory keeps quotes in a map guarded by a RWMutex. A background sweep
// drops expired entries; reads check expiry themselves so a stale entry is
// never served between sweeps.
type Memory struct {
	mu  sync.RWMutex
	ttl time.Duration
	m   map[string]memoryEntry
}

// NewMemory builds the in-memory store. A zero ttl keeps quotes forever.
func NewMemory(ttl time.Duration) *Memory {
	s := &Memory{ttl: ttl, m: make(map[string]memoryEntry)}
	if ttl > 0 {
		go s.sweep()
	}
	return s
}

func (s *Memory) sweep() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		now := time.Now()
		s.mu.Lock()
		for id, e := range s.m {
			if now.After(e.expiresAt) {
				delete(s.m, id)
			}
		}
		s.mu.Unlock()
	}
}

func (s *Memory) Save(_ context.Context, name string, cfg models.LeaseConfig) (Quote, error) {
	q := Quote{
		ID:        uuid.NewString(),
		Name:      name,
		Config:    cfg,
		CreatedAt: time.Now().UTC(),
	}
	e := memoryEntry{quote: q}
	if s.ttl > 0 {
		e.expiresAt = time.Now().Add(s.ttl)
	}
	s.mu.Lock()
	s.m[q.ID] = e
	s.mu.Unlock()
	return q, nil
}

func (s *Memory) Get(_ context.Context, id string) (Quote, error) {
	s.mu.RLock()
	e, ok := s.m[id]
	s.mu.RUnlock()
	if !ok {
		return Quote{}, ErrNotFound
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		return Quote{}, ErrNotFound
	}
	return e.quote, nil
}

func (s *Memory) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[id]; !ok {
		return ErrNotFound
	}
	delete(s.m, id)
	return nil
}
