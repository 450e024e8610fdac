package impulse

import "log/slog"

// GuardMode controls what happens when an illegal call is detected inside a
// read-only context. It only matters in builds without the impulse_prod tag.
type GuardMode int

const (
	// GuardWarn logs the violation, reports it to the observer and raises
	// and recovers a panic at the call site so a debugger can stop there.
	GuardWarn GuardMode = iota

	// GuardPanic panics with the *Violation instead of recovering.
	GuardPanic

	// GuardOff skips detection entirely.
	GuardOff
)

// String returns the configuration name of the mode.
func (m GuardMode) String() string {
	switch m {
	case GuardWarn:
		return "warn"
	case GuardPanic:
		return "panic"
	case GuardOff:
		return "off"
	default:
		return "unknown"
	}
}

// Runtime owns the state shared by a group of cells: the open transaction,
// the current read-only context and the instrumentation sinks.
//
// A Runtime is not safe for concurrent use. Every cell, emitter and batch
// bound to it must be driven from one goroutine at a time.
type Runtime struct {
	logger    *slog.Logger
	observer  Observer
	guardMode GuardMode

	// tx is the open transaction, nil between batches.
	tx *transaction

	// context is the guard context of the innermost tracked run.
	context ReadContext
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithLogger sets the logger used for guard diagnostics and named batches.
func WithLogger(l *slog.Logger) RuntimeOption {
	return func(rt *Runtime) {
		rt.logger = l
	}
}

// WithObserver installs an instrumentation observer.
func WithObserver(o Observer) RuntimeOption {
	return func(rt *Runtime) {
		if o != nil {
			rt.observer = o
		}
	}
}

// WithGuardMode sets the guard mode.
func WithGuardMode(m GuardMode) RuntimeOption {
	return func(rt *Runtime) {
		rt.guardMode = m
	}
}

// NewRuntime creates a Runtime.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	rt := &Runtime{observer: nopObserver{}}
	for _, opt := range opts {
		opt(rt)
	}
	return rt
}

var defaultRuntime = NewRuntime()

// Default returns the runtime used when no InRuntime option is given.
func Default() *Runtime {
	return defaultRuntime
}

// Logger returns the runtime's logger, falling back to slog.Default.
func (rt *Runtime) Logger() *slog.Logger {
	if rt.logger != nil {
		return rt.logger
	}
	return slog.Default()
}

// InTransaction reports whether a batch is currently open.
func (rt *Runtime) InTransaction() bool {
	return rt.tx != nil
}

// Context returns the guard context of the innermost tracked run.
func (rt *Runtime) Context() ReadContext {
	return rt.context
}

// Ignore runs fn with the static scope and without any guard context, so
// reads inside it register nothing and writes are allowed.
func (rt *Runtime) Ignore(fn func(Scope)) {
	prev := rt.enter(ContextNone)
	defer rt.leave(prev)
	fn(Scope{})
}

func (rt *Runtime) enter(c ReadContext) ReadContext {
	prev := rt.context
	rt.context = c
	return prev
}

func (rt *Runtime) leave(prev ReadContext) {
	rt.context = prev
}
