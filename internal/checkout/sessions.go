package checkout

import (
	"sync"

	"github.com/google/uuid"

	"pos-service/internal/model"
	"pos-service/internal/pricing"
)

// Sessions holds the open checkout carts, one per POS session. A cart lives
// only until it is committed or cancelled; nothing here is persisted.
type Sessions struct {
	mu    sync.Mutex
	carts map[string]*session
}

type session struct {
	mu    sync.Mutex
	cart  *pricing.Cart
	spent bool
}

// NewSessions returns an empty session table.
func NewSessions() *Sessions {
	return &Sessions{carts: make(map[string]*session)}
}

// Open creates a fresh empty cart and returns its session ID.
func (s *Sessions) Open() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.carts[id] = &session{cart: pricing.NewCart()}
	s.mu.Unlock()
	return id
}

// With runs fn against the session's cart while holding its lock, so
// concurrent requests against the same cart are serialized.
func (s *Sessions) With(id string, fn func(*pricing.Cart) error) error {
	s.mu.Lock()
	sess, ok := s.carts[id]
	s.mu.Unlock()
	if !ok {
		return model.Errf(model.ErrNotFound, "cart session %s not found", id)
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.spent {
		return model.Errf(model.ErrNotFound, "cart session %s not found", id)
	}
	return fn(sess.cart)
}

// Consume runs fn against the cart and, when fn succeeds, retires the
// session before releasing its lock. A concurrent request on the same
// session waits on the lock and then finds it spent, so the cart can be
// committed at most once.
func (s *Sessions) Consume(id string, fn func(*pricing.Cart) error) error {
	s.mu.Lock()
	sess, ok := s.carts[id]
	s.mu.Unlock()
	if !ok {
		return model.Errf(model.ErrNotFound, "cart session %s not found", id)
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	if sess.spent {
		return model.Errf(model.ErrNotFound, "cart session %s not found", id)
	}
	if err := fn(sess.cart); err != nil {
		return err
	}
	sess.spent = true
	s.mu.Lock()
	delete(s.carts, id)
	s.mu.Unlock()
	return nil
}

// Close discards the session. Closing an unknown or already closed session
// is a no-op.
func (s *Sessions) Close(id string) {
	s.mu.Lock()
	delete(s.carts, id)
	s.mu.Unlock()
}
