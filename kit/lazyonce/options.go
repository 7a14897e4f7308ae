package lazyonce

import "log/slog"

// Strategy selects how a Cell synchronizes its first construction.
type Strategy uint8

const (
	// DoubleChecked reads the published value without locking and only takes
	// the mutex, re-checking under it, while the value is still absent.
	DoubleChecked Strategy = iota
	// Eager constructs inside New, before the Cell can be shared.
	Eager
	// Locked takes the mutex on every Get. It exists as a baseline for the
	// other strategies and serializes all readers.
	Locked
	// Holder delegates to sync.OnceValues.
	Holder
)

// Strategies lists every strategy in declaration order.
func Strategies() []Strategy {
	return []Strategy{DoubleChecked, Eager, Locked, Holder}
}

func (s Strategy) String() string {
	switch s {
	case DoubleChecked:
		return "double-checked"
	case Eager:
		return "eager"
	case Locked:
		return "locked"
	case Holder:
		return "holder"
	default:
		return "unknown"
	}
}

// Lazy reports whether the strategy defers construction until the first Get.
func (s Strategy) Lazy() bool { return s != Eager }

// Policy decides what a failed construction leaves behind.
type Policy uint8

const (
	// Poison keeps the first failure and returns it from every later Get.
	Poison Policy = iota
	// Retry forgets failures so the next Get constructs again.
	Retry
)

func (p Policy) String() string {
	if p == Retry {
		return "retry"
	}
	return "poison"
}

type Option func(*options)

type options struct {
	strategy Strategy
	policy   Policy
	arg      *string
	logger   *slog.Logger
}

func WithStrategy(s Strategy) Option {
	return func(o *options) { o.strategy = s }
}

// WithRetry switches the failure policy from Poison to Retry.
func WithRetry() Option {
	return func(o *options) { o.policy = Retry }
}

// WithArgument configures the factory argument at creation time. A later
// Configure call fails with ReasonAlreadyConfigured.
func WithArgument(arg string) Option {
	return func(o *options) { o.arg = &arg }
}

// WithLogger makes the Cell log each construction attempt. Failures are
// logged at warn level and still returned to the caller.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}
