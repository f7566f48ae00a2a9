package session

import (
	"context"
	"sync"
	"time"

	"github.com/cyberdas/backend/pkg/pg"
)

// MemShortStore is an in-memory ShortStore for tests and local development.
// The transaction handle is accepted for interface compatibility and ignored.
type MemShortStore struct {
	mu   sync.RWMutex
	ttl  time.Duration
	rows map[string]ShortSession
}

// NewMemShortStore creates an empty in-memory short session store.
func NewMemShortStore(ttl time.Duration) *MemShortStore {
	return &MemShortStore{
		ttl:  ttl,
		rows: make(map[string]ShortSession),
	}
}

func (s *MemShortStore) Get(_ context.Context, _ pg.DBTX, sid string) (ShortSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.rows[sid]
	if !ok {
		return ShortSession{}, ErrNoSession
	}
	return rec, nil
}

func (s *MemShortStore) Create(_ context.Context, _ pg.DBTX, rec ShortSession) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Expires = time.Now().Add(s.ttl)
	rec.CreatedAt = time.Now()
	s.rows[rec.SID] = rec
	return rec.Expires, nil
}

func (s *MemShortStore) Prolong(_ context.Context, _ pg.DBTX, sid string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.rows[sid]
	if !ok {
		return time.Time{}, ErrNoSession
	}
	rec.Expires = time.Now().Add(s.ttl)
	s.rows[sid] = rec
	return rec.Expires, nil
}

func (s *MemShortStore) Terminate(_ context.Context, _ pg.DBTX, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[sid]; !ok {
		return ErrNoSession
	}
	delete(s.rows, sid)
	return nil
}

// Expire force-expires a session; test helper.
func (s *MemShortStore) Expire(sid string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.rows[sid]; ok {
		rec.Expires = time.Now().Add(-time.Second)
		s.rows[sid] = rec
	}
}

// MemLongStore is an in-memory LongStore for tests and local development.
type MemLongStore struct {
	mu   sync.RWMutex
	ttl  time.Duration
	rows map[string]LongSession // keyed by selector; one live row per series
}

// NewMemLongStore creates an empty in-memory long token store.
func NewMemLongStore(ttl time.Duration) *MemLongStore {
	return &MemLongStore{
		ttl:  ttl,
		rows: make(map[string]LongSession),
	}
}

func (s *MemLongStore) Get(_ context.Context, _ pg.DBTX, selector, validator string) (LongSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.rows[selector]
	if !ok {
		return LongSession{}, ErrNoSession
	}
	if !rec.Validator.Matches(validator) {
		return LongSession{}, ErrTokenTheft
	}
	return rec, nil
}

func (s *MemLongStore) FindByAssociatedSID(_ context.Context, _ pg.DBTX, sid string) (LongSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, rec := range s.rows {
		if rec.AssociatedSID != nil && *rec.AssociatedSID == sid {
			return rec, nil
		}
	}
	return LongSession{}, ErrNoSession
}

func (s *MemLongStore) Create(_ context.Context, _ pg.DBTX, rec LongSession) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.Expires = time.Now().Add(s.ttl)
	s.rows[rec.Selector] = rec
	return rec.Expires, nil
}

func (s *MemLongStore) Prolong(_ context.Context, _ pg.DBTX, selector string) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.rows[selector]
	if !ok {
		return time.Time{}, ErrNoSession
	}
	rec.Expires = time.Now().Add(s.ttl)
	s.rows[selector] = rec
	return rec.Expires, nil
}

func (s *MemLongStore) Rotate(_ context.Context, _ pg.DBTX, selector string, validator Digest, associatedSID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.rows[selector]
	if !ok {
		return ErrNoSession
	}
	rec.Validator = validator
	rec.AssociatedSID = &associatedSID
	s.rows[selector] = rec
	return nil
}

func (s *MemLongStore) Terminate(_ context.Context, _ pg.DBTX, selector string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[selector]; !ok {
		return ErrNoSession
	}
	delete(s.rows, selector)
	return nil
}

// Expire force-expires a series; test helper.
func (s *MemLongStore) Expire(selector string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.rows[selector]; ok {
		rec.Expires = time.Now().Add(-time.Second)
		s.rows[selector] = rec
	}
}

var (
	_ ShortStore = (*MemShortStore)(nil)
	_ LongStore  = (*MemLongStore)(nil)
)
