package impulse

import (
	"errors"
	"runtime"
	"strings"

	ierrors "github.com/vango-dev/impulse/internal/errors"
)

const packagePath = "github.com/vango-dev/impulse/pkg/impulse"

// ErrReadOnlyContext matches every *Violation via errors.Is.
var ErrReadOnlyContext = errors.New("impulse: illegal call inside a read-only context")

// ReadContext names the kind of tracked run that is currently executing.
type ReadContext uint8

const (
	// ContextNone allows every operation.
	ContextNone ReadContext = iota

	// ContextWatch is installed while a Watch computation or a ReadOnly
	// emitter is tracking.
	ContextWatch

	// ContextTransmit is installed while a transmitting getter runs.
	ContextTransmit
)

// String returns a human-readable name for the context.
func (c ReadContext) String() string {
	switch c {
	case ContextNone:
		return "none"
	case ContextWatch:
		return "watch"
	case ContextTransmit:
		return "transmit"
	default:
		return "unknown"
	}
}

// Operation is a guarded call.
type Operation uint8

const (
	OpCreate Operation = iota + 1
	OpClone
	OpWrite
	OpSubscribe
)

// String returns a human-readable name for the operation.
func (op Operation) String() string {
	switch op {
	case OpCreate:
		return "create"
	case OpClone:
		return "clone"
	case OpWrite:
		return "write"
	case OpSubscribe:
		return "subscribe"
	default:
		return "unknown"
	}
}

// violationCodes maps a context and an operation to a registered code.
var violationCodes = map[ReadContext]map[Operation]string{
	ContextWatch: {
		OpCreate:    "E101",
		OpClone:     "E102",
		OpWrite:     "E103",
		OpSubscribe: "E104",
	},
	ContextTransmit: {
		OpCreate:    "E111",
		OpClone:     "E112",
		OpWrite:     "E113",
		OpSubscribe: "E114",
	},
}

// Violation describes an illegal call made inside a read-only context.
type Violation struct {
	Op      Operation
	Context ReadContext
	Err     *ierrors.ImpulseError
}

// Code returns the registered error code.
func (v *Violation) Code() string {
	return v.Err.Code
}

func (v *Violation) Error() string {
	return v.Err.Error()
}

func (v *Violation) Unwrap() []error {
	return []error{ErrReadOnlyContext, v.Err}
}

// Aborted reports whether the guarded call was dropped. Creation and cloning
// still go through; writes and subscriptions do not.
func (v *Violation) Aborted() bool {
	return v.Op == OpWrite || v.Op == OpSubscribe
}

func newViolation(op Operation, c ReadContext) *Violation {
	err := ierrors.New(violationCodes[c][op])
	if file, line, ok := callSite(); ok {
		err.WithLocation(file, line)
	}
	return &Violation{Op: op, Context: c, Err: err}
}

// callSite returns the first frame outside this package.
func callSite() (string, int, bool) {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(3, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		if !strings.HasPrefix(f.Function, packagePath+".") || strings.HasSuffix(f.File, "_test.go") {
			return f.File, f.Line, f.File != ""
		}
		if !more {
			return "", 0, false
		}
	}
}

// violate reports an illegal call according to the guard mode.
func (rt *Runtime) violate(op Operation) {
	v := newViolation(op, rt.context)
	rt.Logger().Error(v.Err.Message,
		"code", v.Code(),
		"op", op.String(),
		"context", rt.context.String(),
		"location", v.Err.Location.String(),
	)
	rt.observer.OnViolation(v)

	if rt.guardMode == GuardPanic {
		panic(v)
	}
	trap(v)
}

// trap raises err and recovers it right away. Debuggers configured to stop
// on panics halt here with the offending call on the stack.
func trap(err error) {
	defer func() {
		_ = recover()
	}()
	panic(err)
}
