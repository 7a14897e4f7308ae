// Package lazyonce provides Cell, a value that is constructed at most once,
// lazily, on first access, and is then shared by every goroutine that asks
// for it.
//
// All strategies publish the constructed value through a synchronizing
// operation (an atomic store, a mutex unlock, or sync.Once), so a goroutine
// that receives the value from Get also observes every write the factory made
// while building it.
//
// A Cell never resets. Once a value has been published it keeps the same
// identity for the life of the Cell.
//
// For a fixed, statically known set of instances, prefer a plain package-level
// variable: the Go runtime initializes package variables exactly once, on a
// single goroutine, before any init function or main runs, so no Cell is
// needed at all.
package lazyonce

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// Cell holds a lazily constructed value of type T. Use New or NewWithArg to
// create one; the zero Cell is not usable.
type Cell[T any] struct {
	fn       func(arg string) (T, error)
	strategy Strategy
	policy   Policy
	logger   *slog.Logger

	mu         sync.Mutex
	arg        string
	configured bool
	started    bool

	res      atomic.Pointer[result[T]]
	holder   func() (T, error)
	attempts atomic.Int64
}

type result[T any] struct {
	val T
	err error
}

// New returns a Cell whose value is built by fn.
func New[T any](fn func() (T, error), opts ...Option) *Cell[T] {
	if fn == nil {
		return NewWithArg[T](nil, opts...)
	}
	return NewWithArg(func(string) (T, error) { return fn() }, opts...)
}

// NewWithArg returns a Cell whose factory receives the argument set by
// Configure or WithArgument, or "" if neither was used before the first Get.
func NewWithArg[T any](fn func(arg string) (T, error), opts ...Option) *Cell[T] {
	o := options{strategy: DoubleChecked, policy: Poison}
	for _, opt := range opts {
		opt(&o)
	}
	if fn == nil {
		fn = func(string) (T, error) {
			var zero T
			return zero, ErrNilFactory
		}
	}

	c := &Cell[T]{
		fn:       fn,
		strategy: o.strategy,
		policy:   o.policy,
		logger:   o.logger,
	}
	if o.arg != nil {
		c.arg, c.configured = *o.arg, true
	}

	switch c.strategy {
	case Holder:
		// sync.Once cannot be re-armed after a failure
		if c.policy == Retry {
			c.strategy = DoubleChecked
			break
		}
		c.holder = sync.OnceValues(func() (T, error) {
			c.mu.Lock()
			defer c.mu.Unlock()
			return c.constructLocked()
		})
	case Eager:
		c.getSlow()
	}
	return c
}

// Get returns the value, constructing it first if no goroutine has done so
// yet. Concurrent first callers block until the single construction
// finishes and then all receive its outcome.
//
// Under the Poison policy a failed construction is final: every call returns
// the same *ConstructionError. Under Retry the next call tries again.
func (c *Cell[T]) Get() (T, error) {
	switch c.strategy {
	case Holder:
		return c.holder()
	case Locked:
		return c.getSlow()
	}
	if r := c.res.Load(); r != nil {
		return r.val, r.err
	}
	return c.getSlow()
}

// MustGet is like Get but panics if construction failed.
func (c *Cell[T]) MustGet() T {
	v, err := c.Get()
	if err != nil {
		panic(err)
	}
	return v
}

func (c *Cell[T]) getSlow() (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r := c.res.Load(); r != nil {
		return r.val, r.err
	}
	return c.constructLocked()
}

// c.mu must be held.
func (c *Cell[T]) constructLocked() (T, error) {
	c.started = true
	val, err := c.invoke(c.arg)
	if err != nil {
		err = &ConstructionError{Strategy: c.strategy, Cause: err}
		if c.policy == Poison {
			c.res.Store(&result[T]{err: err})
		}
		var zero T
		return zero, err
	}
	c.res.Store(&result[T]{val: val})
	return val, nil
}

func (c *Cell[T]) invoke(arg string) (val T, err error) {
	n := c.attempts.Add(1)
	c.log(slog.LevelDebug, "constructing", "attempt", n)
	defer func() {
		if r := recover(); r != nil {
			var zero T
			val, err = zero, &PanicError{Value: r, Stack: debug.Stack()}
		}
		if err != nil {
			c.log(slog.LevelWarn, "construction failed", "attempt", n, "error", err)
			return
		}
		c.log(slog.LevelDebug, "constructed", "attempt", n)
	}()
	return c.fn(arg)
}

// Configure sets the argument handed to the factory. It must be called at
// most once, and before the first Get; otherwise it returns a
// *ConfigurationError and leaves the Cell untouched.
func (c *Cell[T]) Configure(arg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return &ConfigurationError{Reason: ReasonConstructionStarted}
	}
	if c.configured {
		return &ConfigurationError{Reason: ReasonAlreadyConfigured}
	}
	c.arg, c.configured = arg, true
	return nil
}

// Argument reports the configured argument, if any.
func (c *Cell[T]) Argument() (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.arg, c.configured
}

// Initialized reports whether a value has been published.
func (c *Cell[T]) Initialized() bool {
	r := c.res.Load()
	return r != nil && r.err == nil
}

// Strategy returns the effective strategy, which differs from the requested
// one when Holder is combined with Retry.
func (c *Cell[T]) Strategy() Strategy { return c.strategy }

// Attempts returns how many times the factory has been invoked.
func (c *Cell[T]) Attempts() int64 { return c.attempts.Load() }

func (c *Cell[T]) log(level slog.Level, msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Log(context.Background(), level, msg, append([]any{"strategy", c.strategy}, args...)...)
}

// OnceValue returns a getter that builds its value with fn on first call.
// If fn panics, every call to the getter panics with a *ConstructionError.
func OnceValue[T any](fn func() T) func() T {
	var c *Cell[T]
	if fn == nil {
		c = New[T](nil)
	} else {
		c = New(func() (T, error) { return fn(), nil })
	}
	return c.MustGet
}
