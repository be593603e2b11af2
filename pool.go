package resourcepool

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/cohmetrix/resource-pool/api"
	"github.com/cohmetrix/resource-pool/engine"
	"github.com/cohmetrix/resource-pool/eviction"
	"github.com/cohmetrix/resource-pool/tier"
	"github.com/cohmetrix/resource-pool/types"
)

// Hook and Accessor are re-exported so callers rarely need the subpackages.
type (
	Hook     = types.Hook
	Accessor = api.Accessor
)

var identifier = regexp.MustCompile(`^[_A-Za-z][_A-Za-z0-9]*$`)

// IsIdentifier reports whether name can have a convenience accessor.
func IsIdentifier(name string) bool {
	return identifier.MatchString(name)
}

type registration struct {
	hook   types.Hook
	pinned bool
}

// call is one in-flight hook invocation. Other goroutines asking for the
// same key wait on done and share val/err.
type call struct {
	key  types.Key
	done chan struct{}
	val  any
	err  error

	// waits holds the in-flight calls the owner's chain is blocked on; guarded by Pool.mu.
	waits map[*call]int
}

/*
Pool is the resource pool implementation.
This struct is the orchestrator that connects:
- the registry of hooks (and their accessors)
- the pinned and bounded tiers
- in-flight bookkeeping, so a key is computed once even under concurrency
- the engine, which runs hooks and reports on them
*/
type Pool struct {
	engine *engine.Engine
	logger *zap.Logger

	// regMu guards registry and accessors.
	regMu     sync.RWMutex
	registry  map[string]registration
	accessors map[string]api.Accessor

	// pinned reads are lock-free; its writes and everything below go through mu.
	pinned *tier.Pinned

	mu       sync.Mutex
	unpinned *tier.Bounded
	inflight map[types.Key]*call

	closed atomic.Bool

	hits      atomic.Int64
	misses    atomic.Int64
	evictions atomic.Int64
}

var _ api.Pool = (*Pool)(nil)

/*
New creates an empty pool whose unpinned tier holds at most capacity entries.
A capacity of 0 is legal: unpinned values are computed, returned and dropped.
*/
func New(capacity int, opts ...Option) (*Pool, error) {
	if capacity < 0 {
		return nil, fmt.Errorf("%w: %d, must be >= 0", ErrInvalidCapacity, capacity)
	}

	var cfg config
	for _, opt := range opts {
		opt(&cfg)
	}

	eng := engine.New(cfg.metrics, cfg.logger, cfg.tracer, cfg.clock)

	return &Pool{
		engine:    eng,
		logger:    eng.Logger,
		registry:  make(map[string]registration),
		accessors: make(map[string]api.Accessor),
		pinned:    tier.NewPinned(),
		unpinned:  tier.NewBounded(capacity, eviction.FIFO),
		inflight:  make(map[types.Key]*call),
	}, nil
}

// Register stores hook under name. See api.Pool.
func (p *Pool) Register(name string, hook types.Hook, pinned bool) error {
	if p.closed.Load() {
		return ErrPoolClosed
	}
	if name == "" {
		return ErrInvalidName
	}
	if hook == nil {
		return fmt.Errorf("%w: %q", ErrNilHook, name)
	}

	p.regMu.Lock()
	_, dup := p.registry[name]
	p.registry[name] = registration{hook: hook, pinned: pinned}
	if IsIdentifier(name) {
		p.accessors[name] = func(ctx context.Context, args ...any) (any, error) {
			return p.Get(ctx, name, args...)
		}
	}
	p.regMu.Unlock()

	if dup {
		p.logger.Warn("resource already registered", zap.String("resource", name), zap.Bool("pinned", pinned))
		p.engine.Metrics.Duplicate(name)
	}
	return nil
}

// MustRegister is Register for wiring code that cannot continue on error.
func (p *Pool) MustRegister(name string, hook types.Hook, pinned bool) {
	if err := p.Register(name, hook, pinned); err != nil {
		panic(err)
	}
}

func (p *Pool) lookup(name string) (registration, bool) {
	p.regMu.RLock()
	defer p.regMu.RUnlock()
	reg, ok := p.registry[name]
	return reg, ok
}

/*
Get retrieves a resource, computing it on a miss.
*/
func (p *Pool) Get(ctx context.Context, name string, args ...any) (any, error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}

	reg, ok := p.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrResourceNotRegistered, name)
	}

	k, err := types.NewKey(name, args...)
	if err != nil {
		return nil, err
	}

	// A key already being computed by this very call chain can never finish.
	if err := p.checkCycle(ctx, k); err != nil {
		return nil, err
	}

	var t tier.Tier = p.unpinned
	if reg.pinned {
		t = p.pinned

		// fast path, no lock
		if ent, ok := p.pinned.Get(k); ok {
			p.hit(k)
			return ent.Value, nil
		}
	}

	p.mu.Lock()
	if ent, ok := t.Get(k); ok {
		p.mu.Unlock()
		p.hit(k)
		return ent.Value, nil
	}

	/*
		Someone else is already computing this key.
		Wait for them instead of running the hook a second time.
	*/
	if c, ok := p.inflight[k]; ok {
		if err := p.waitCycle(ctx, c); err != nil {
			p.mu.Unlock()
			return nil, err
		}
		p.addWaits(ctx, c)
		p.mu.Unlock()

		defer func() {
			p.mu.Lock()
			p.removeWaits(ctx, c)
			p.mu.Unlock()
		}()

		select {
		case <-c.done:
			if c.err == nil {
				p.hit(k)
			}
			return c.val, c.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	c := &call{key: k, done: make(chan struct{})}
	p.inflight[k] = c
	p.mu.Unlock()

	p.misses.Add(1)
	p.compute(ctx, k, reg.hook, t, c)
	return c.val, c.err
}

/*
compute runs the hook outside the lock, then stores the result.

If the hook panics, waiters are released with ErrHookPanicked and the panic
keeps unwinding through the caller. A value that finishes after Close is
closed if it is an io.Closer, and callers get ErrPoolClosed.
*/
func (p *Pool) compute(ctx context.Context, k types.Key, hook types.Hook, t tier.Tier, c *call) {
	returned := false
	var evicted []types.Key
	var orphan io.Closer

	defer func() {
		p.mu.Lock()
		delete(p.inflight, k)
		switch {
		case !returned:
			c.val, c.err = nil, fmt.Errorf("%w: %s", ErrHookPanicked, k)
		case c.err != nil:
		case p.closed.Load():
			// Close already released the tiers; nobody else will close this value.
			orphan, _ = c.val.(io.Closer)
			c.val, c.err = nil, ErrPoolClosed
		default:
			evicted = t.Put(&types.Entry{
				Key:       k,
				Value:     c.val,
				CreatedAt: p.engine.Clock.Now(),
				Pinned:    t == tier.Tier(p.pinned),
			})
		}
		p.mu.Unlock()

		if orphan != nil {
			if err := orphan.Close(); err != nil {
				p.logger.Warn("closing resource computed after close", zap.String("resource", k.Name), zap.Error(err))
			}
		}
		close(c.done)

		for _, ek := range evicted {
			p.evictions.Add(1)
			p.engine.OnEvict(ek)
		}
	}()

	c.val, c.err = p.engine.Invoke(p.withFrame(ctx, k, c), k, hook)
	returned = true
}

func (p *Pool) hit(k types.Key) {
	p.hits.Add(1)
	p.engine.OnHit(k)
}

// Accessor returns the shortcut for name. See api.Pool.
func (p *Pool) Accessor(name string) (api.Accessor, bool) {
	p.regMu.RLock()
	defer p.regMu.RUnlock()
	a, ok := p.accessors[name]
	return a, ok
}

// Registered reports whether name has a hook.
func (p *Pool) Registered(name string) bool {
	_, ok := p.lookup(name)
	return ok
}

// Pinned reports whether name is registered as pinned.
func (p *Pool) Pinned(name string) bool {
	reg, ok := p.lookup(name)
	return ok && reg.pinned
}

// Names lists registered resources in lexical order.
func (p *Pool) Names() []string {
	p.regMu.RLock()
	names := make([]string, 0, len(p.registry))
	for name := range p.registry {
		names = append(names, name)
	}
	p.regMu.RUnlock()

	sort.Strings(names)
	return names
}

// Stats is a point-in-time view of the pool.
type Stats struct {
	Registered int
	Pinned     int // entries in the pinned tier
	Unpinned   int // entries in the bounded tier
	Capacity   int
	InFlight   int

	Hits      int64
	Misses    int64
	Evictions int64
}

// Stats returns current pool statistics with thread-safe access.
func (p *Pool) Stats() Stats {
	p.regMu.RLock()
	registered := len(p.registry)
	p.regMu.RUnlock()

	p.mu.Lock()
	unpinned := p.unpinned.Len()
	inflight := len(p.inflight)
	p.mu.Unlock()

	return Stats{
		Registered: registered,
		Pinned:     p.pinned.Len(),
		Unpinned:   unpinned,
		Capacity:   p.unpinned.Capacity(),
		InFlight:   inflight,
		Hits:       p.hits.Load(),
		Misses:     p.misses.Load(),
		Evictions:  p.evictions.Load(),
	}
}

/*
Close releases the pool.

BEHAVIOR:
---------
- Marks the pool closed: Register and Get return ErrPoolClosed from now on
- Closes every pinned value that implements io.Closer, joining their errors
- Drops both tiers
*/
func (p *Pool) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return ErrPoolClosed
	}

	p.mu.Lock()
	values := p.pinned.Values()
	p.pinned.Clear()
	p.unpinned.Clear()
	p.mu.Unlock()

	var errs []error
	for _, v := range values {
		if closer, ok := v.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	p.logger.Debug("resource pool closed", zap.Int("pinned_closed", len(values)))
	return errors.Join(errs...)
}

/*
Resolve is a typed Get. It fails with ErrUnexpectedType when the stored
value is not a T.
*/
func Resolve[T any](ctx context.Context, p api.Pool, name string, args ...any) (T, error) {
	var zero T

	v, err := p.Get(ctx, name, args...)
	if err != nil {
		return zero, err
	}

	out, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("%w: %q holds %T", ErrUnexpectedType, name, v)
	}
	return out, nil
}
