package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	sessionKeyPrefix  = "cart:"
	evictCloseTimeout = 10 * time.Second
)

type session struct {
	store    *Store
	lastUsed time.Time
}

// Sessions hands out one Store per session id. Stores are created and loaded
// on first access and live until Release, EvictIdle or Close.
type Sessions struct {
	mirror Mirror
	opts   []Option
	now    func() time.Time

	mu     sync.Mutex
	stores map[string]*session
}

func NewSessions(mirror Mirror, opts ...Option) *Sessions {
	return &Sessions{
		mirror: mirror,
		opts:   opts,
		now:    time.Now,
		stores: make(map[string]*session),
	}
}

// SessionKey is the mirror key used for a session's cart.
func SessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// Get returns the loaded store for sessionID.
func (s *Sessions) Get(ctx context.Context, sessionID string) *Store {
	s.mu.Lock()
	sess, ok := s.stores[sessionID]
	if !ok {
		sess = &session{store: NewStore(s.mirror, SessionKey(sessionID), s.opts...)}
		s.stores[sessionID] = sess
	}
	sess.lastUsed = s.now()
	s.mu.Unlock()

	sess.store.Load(ctx)
	return sess.store
}

// Len returns the number of open stores.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.stores)
}

// Release flushes and forgets the store of sessionID. The next Get reloads it
// from the mirror.
func (s *Sessions) Release(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	sess, ok := s.stores[sessionID]
	delete(s.stores, sessionID)
	s.mu.Unlock()
	if !ok {
		return nil
	}
	return sess.store.Close(ctx)
}

// EvictIdle releases every store not used for longer than maxIdle and
// returns how many were released.
func (s *Sessions) EvictIdle(ctx context.Context, maxIdle time.Duration) (int, error) {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	var idle []*Store
	for id, sess := range s.stores {
		if sess.lastUsed.Before(cutoff) {
			idle = append(idle, sess.store)
			delete(s.stores, id)
		}
	}
	s.mu.Unlock()

	return len(idle), closeAll(ctx, idle)
}

// RunEviction calls EvictIdle every interval until ctx is done.
func (s *Sessions) RunEviction(ctx context.Context, interval, maxIdle time.Duration, logger *zap.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), evictCloseTimeout)
			n, err := s.EvictIdle(closeCtx, maxIdle)
			cancel()
			if err != nil {
				logger.Error("failed to flush idle carts", zap.Error(err))
			}
			if n > 0 {
				logger.Debug("evicted idle carts", zap.Int("count", n), zap.Int("open", s.Len()))
			}
		}
	}
}

// Close flushes and stops every open store.
func (s *Sessions) Close(ctx context.Context) error {
	s.mu.Lock()
	stores := make([]*Store, 0, len(s.stores))
	for _, sess := range s.stores {
		stores = append(stores, sess.store)
	}
	s.stores = make(map[string]*session)
	s.mu.Unlock()

	return closeAll(ctx, stores)
}

func closeAll(ctx context.Context, stores []*Store) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, store := range stores {
		store := store
		g.Go(func() error {
			return store.Close(ctx)
		})
	}
	return g.Wait()
}
