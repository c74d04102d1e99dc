package cart

import (
	"context"
	"sync"
	"time"
)

// Store keeps one cart per session
type Store interface {
	// Load returns the session's cart, or an empty cart when none is stored.
	Load(ctx context.Context, sessionID string) (*Cart, error)
	Save(ctx context.Context, sessionID string, c *Cart) error
	Clear(ctx context.Context, sessionID string) error
}

// MemoryStore is a process-local Store. Carts idle for longer than ttl are dropped;
// a zero ttl keeps them until cleared.
type MemoryStore struct {
	mu        sync.Mutex
	carts     map[string]memoryCart
	ttl       time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type memoryCart struct {
	lines   []Line
	touched time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		carts: make(map[string]memoryCart),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := New()
	entry, ok := s.carts[sessionID]
	if !ok {
		return c, nil
	}
	if s.expired(entry, s.now()) {
		delete(s.carts, sessionID)
		return c, nil
	}
	c.Lines = append(c.Lines, entry.lines...)
	return c, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, c *Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.sweep(now)

	if c.IsEmpty() {
		delete(s.carts, sessionID)
		return nil
	}
	s.carts[sessionID] = memoryCart{lines: append([]Line(nil), c.Lines...), touched: now}
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, sessionID)
	return nil
}

// Len returns the number of stored carts, expired ones included until swept
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

func (s *MemoryStore) expired(entry memoryCart, now time.Time) bool {
	return s.ttl > 0 && now.Sub(entry.touched) > s.ttl
}

// sweep drops idle carts, at most once per ttl. Caller holds mu.
func (s *MemoryStore) sweep(now time.Time) {
	if s.ttl <= 0 || now.Sub(s.lastSweep) < s.ttl {
		return
	}
	for id, entry := range s.carts {
		if s.expired(entry, now) {
			delete(s.carts, id)
		}
	}
	s.lastSweep = now
}
