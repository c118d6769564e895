package cart

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

const defaultSaveTimeout = 5 * time.Second

// DefaultTaxRate applies when no rate is configured.
var DefaultTaxRate = decimal.RequireFromString("0.08")

// Option configures a Store.
type Option func(*Store)

func WithTaxRate(rate decimal.Decimal) Option {
	return func(s *Store) { s.taxRate = rate }
}

func WithReporter(r Reporter) Option {
	return func(s *Store) { s.reporter = r }
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) { s.logger = logger }
}

// WithSaveTimeout bounds a single write to the mirror.
func WithSaveTimeout(d time.Duration) Option {
	return func(s *Store) { s.saveTimeout = d }
}

// Store owns the cart of one session. Mutations are applied to memory
// immediately and written to the mirror in the background; only the latest
// state is written when several mutations pile up.
type Store struct {
	mirror      Mirror
	key         string
	taxRate     decimal.Decimal
	reporter    Reporter
	logger      *zap.Logger
	saveTimeout time.Duration

	mu       sync.Mutex // serializes Load and mutations
	current  atomic.Pointer[Cart]
	loaded   atomic.Bool
	unread   bool              // the last read of the record failed
	deferred []func(Cart) Cart // mutations applied while unread, replayed on the stored cart

	wmu      sync.Mutex // guards pending, version, saved, progress, closed
	pending  *Cart
	version  uint64
	saved    uint64
	progress chan struct{}
	closed   bool

	wake      chan struct{}
	done      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
}

// NewStore creates an unloaded store for the record named key and starts its
// background writer. Call Close when the session ends.
func NewStore(mirror Mirror, key string, opts ...Option) *Store {
	s := &Store{
		mirror:      mirror,
		key:         key,
		taxRate:     DefaultTaxRate,
		saveTimeout: defaultSaveTimeout,
		progress:    make(chan struct{}),
		wake:        make(chan struct{}, 1),
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	if s.reporter == nil {
		s.reporter = NewLogReporter(s.logger)
	}
	s.current.Store(&Cart{})

	go s.run()
	return s
}

// Key names the record this store mirrors to.
func (s *Store) Key() string {
	return s.key
}

// Load reads the stored cart. A missing or malformed record leaves the cart
// empty and later calls do nothing. When the record cannot be read the cart
// also starts empty, but nothing is written to the mirror until a later Load
// or mutation reads it; mutations made meanwhile are then replayed on top of
// the stored cart.
func (s *Store) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) {
	if s.loaded.Load() && !s.unread {
		return
	}
	defer s.loaded.Store(true)

	data, err := s.mirror.Load(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		s.settle(Cart{})
		return
	}
	if err != nil {
		s.unread = true
		s.reporter.LoadFailed(s.key, err)
		return
	}

	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		s.reporter.LoadFailed(s.key, err)
		c = Cart{}
	}
	s.settle(c)
	s.logger.Debug("cart loaded", zap.String("key", s.key), zap.Int("lines", c.Len()))
}

// settle installs the stored cart with any deferred mutations applied.
func (s *Store) settle(stored Cart) {
	replay := len(s.deferred) > 0
	for _, fn := range s.deferred {
		stored = fn(stored)
	}
	s.deferred = nil
	s.unread = false
	s.current.Store(&stored)
	if replay {
		s.schedule(stored)
	}
}

// IsLoaded reports whether a load has been attempted.
func (s *Store) IsLoaded() bool {
	return s.loaded.Load()
}

// Snapshot returns the current cart value.
func (s *Store) Snapshot() Cart {
	return *s.current.Load()
}

func (s *Store) Items() []Item {
	return s.Snapshot().Items()
}

func (s *Store) Subtotal() decimal.Decimal {
	return s.Snapshot().Subtotal()
}

func (s *Store) Tax() decimal.Decimal {
	return s.Snapshot().Tax(s.taxRate)
}

func (s *Store) Total() decimal.Decimal {
	return s.Snapshot().Total(s.taxRate)
}

func (s *Store) ItemCount() int {
	return s.Snapshot().ItemCount()
}

// TaxRate returns the rate used by Tax and Total.
func (s *Store) TaxRate() decimal.Decimal {
	return s.taxRate
}

// AddToCart adds quantity units of p. See Cart.Add.
func (s *Store) AddToCart(p Product, quantity int) Cart {
	return s.mutate(func(c Cart) Cart { return c.Add(p, quantity) })
}

// RemoveFromCart drops the line for id, if any.
func (s *Store) RemoveFromCart(id int64) Cart {
	return s.mutate(func(c Cart) Cart { return c.Remove(id) })
}

// UpdateQuantity sets the quantity for id; zero or less removes the line.
func (s *Store) UpdateQuantity(id int64, quantity int) Cart {
	return s.mutate(func(c Cart) Cart { return c.UpdateQuantity(id, quantity) })
}

// ClearCart empties the cart.
func (s *Store) ClearCart() Cart {
	return s.mutate(func(c Cart) Cart { return c.Clear() })
}

func (s *Store) mutate(fn func(Cart) Cart) Cart {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.loadLocked(context.Background())
	next := fn(*s.current.Load())
	s.current.Store(&next)
	if s.unread {
		s.deferred = append(s.deferred, fn)
		return next
	}
	s.schedule(next)
	return next
}

func (s *Store) schedule(c Cart) {
	s.wmu.Lock()
	if s.closed {
		s.wmu.Unlock()
		s.reporter.PersistFailed(s.key, ErrClosed)
		return
	}
	s.version++
	s.pending = &c
	s.wmu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Store) run() {
	defer close(s.stopped)
	for {
		select {
		case <-s.wake:
			s.writePending()
		case <-s.done:
			s.writePending()
			return
		}
	}
}

func (s *Store) writePending() {
	s.wmu.Lock()
	c, version := s.pending, s.version
	s.pending = nil
	s.wmu.Unlock()
	if c == nil {
		return
	}

	data, err := json.Marshal(*c)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.saveTimeout)
		err = s.mirror.Save(ctx, s.key, data)
		cancel()
	}
	if err != nil {
		s.reporter.PersistFailed(s.key, err)
	} else {
		s.logger.Debug("cart persisted", zap.String("key", s.key), zap.Int("lines", c.Len()))
	}

	s.wmu.Lock()
	s.saved = version
	close(s.progress)
	s.progress = make(chan struct{})
	s.wmu.Unlock()
}

// Flush waits until the mutations made before the call have been written, or
// a write of them has failed and been reported.
func (s *Store) Flush(ctx context.Context) error {
	s.wmu.Lock()
	target := s.version
	s.wmu.Unlock()

	for {
		s.wmu.Lock()
		if s.saved >= target {
			s.wmu.Unlock()
			return nil
		}
		progress := s.progress
		s.wmu.Unlock()

		select {
		case <-progress:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close writes any pending state and stops the background writer. The cart
// stays readable and mutable in memory, but later mutations are not persisted.
func (s *Store) Close(ctx context.Context) error {
	s.closeOnce.Do(func() {
		s.wmu.Lock()
		s.closed = true
		s.wmu.Unlock()
		close(s.done)
	})

	select {
	case <-s.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
