// Package subsystem reference-counts initialization of the native library's
// process-wide subsystems so that independent components can share them.
package subsystem

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/kappaduck/aquila/internal/platform"
)

var (
	// ErrAlreadyReleased is returned when a handle is released twice.
	ErrAlreadyReleased = errors.New("subsystem handle already released")
	// ErrForeignHandle is returned when a handle is released on a registry
	// that did not issue it.
	ErrForeignHandle = errors.New("subsystem handle belongs to another registry")
	// ErrNilHandle is returned when releasing a nil handle.
	ErrNilHandle = errors.New("nil subsystem handle")
	// ErrNotAcquired is returned when releasing a handle no registry issued.
	ErrNotAcquired = errors.New("subsystem handle was never acquired")
)

// InitError reports that the native library refused to initialize a
// subsystem.
type InitError struct {
	Subsystem platform.Subsystem
	Err       error
}

func (e *InitError) Error() string {
	return fmt.Sprintf("initialize %s subsystem: %v", e.Subsystem, e.Err)
}

func (e *InitError) Unwrap() error { return e.Err }

// Registry tracks active subsystems and outstanding acquisitions. The native
// library is torn down exactly once, when the last handle is released, and
// initialized again by the next Acquire.
type Registry struct {
	driver platform.Subsystems
	logger *slog.Logger

	mu     sync.Mutex
	refs   int
	active atomic.Uint32
}

// Handle is one caller's claim on a set of subsystems.
type Handle struct {
	registry *Registry
	mask     platform.Subsystem
	released atomic.Bool
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger used for lifecycle transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry returns an empty registry driving the given native library.
func NewRegistry(driver platform.Subsystems, opts ...Option) *Registry {
	r := &Registry{
		driver: driver,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Acquire initializes every subsystem in mask that is not already active and
// returns a handle that must be released. On failure nothing is retained:
// subsystems initialized by this call are shut down again and the reference
// count is unchanged.
func (r *Registry) Acquire(mask platform.Subsystem) (*Handle, error) {
	if mask == platform.SubsystemNone {
		return nil, fmt.Errorf("acquire: empty subsystem mask")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	active := platform.Subsystem(r.active.Load())
	var started platform.Subsystem
	for _, bit := range mask.Bits() {
		if active&bit != 0 {
			continue
		}
		if err := r.driver.InitSubsystem(bit); err != nil {
			r.rollback(started)
			r.logger.Warn("subsystem init failed",
				"subsystem", bit,
				"requested", mask,
				"error", err)
			return nil, &InitError{Subsystem: bit, Err: err}
		}
		started |= bit
	}

	r.active.Store(uint32(active | started))
	r.refs++
	r.logger.Debug("subsystems acquired",
		"requested", mask,
		"initialized", started,
		"active", active|started,
		"refs", r.refs)

	return &Handle{registry: r, mask: mask}, nil
}

// rollback undoes a partial Acquire. When nothing else holds the library the
// native side is torn down completely.
func (r *Registry) rollback(started platform.Subsystem) {
	if started != 0 {
		r.driver.QuitSubsystem(started)
	}
	if r.refs == 0 {
		r.driver.Quit()
	}
}

// Release drops one reference. When the count reaches zero every active
// subsystem is shut down and the native library is told to quit.
func (r *Registry) Release(h *Handle) error {
	if h == nil {
		return ErrNilHandle
	}
	if r == nil || h.registry == nil {
		return ErrNotAcquired
	}
	if h.registry != r {
		return ErrForeignHandle
	}
	if !h.released.CompareAndSwap(false, true) {
		return ErrAlreadyReleased
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.refs--
	if r.refs > 0 {
		r.logger.Debug("subsystems released", "mask", h.mask, "refs", r.refs)
		return nil
	}

	active := platform.Subsystem(r.active.Load())
	r.driver.QuitSubsystem(active)
	r.driver.Quit()
	r.active.Store(0)
	r.refs = 0
	r.logger.Debug("native library shut down", "subsystems", active)
	return nil
}

// IsActive reports whether every subsystem in mask is initialized. It does not
// take the registry lock.
func (r *Registry) IsActive(mask platform.Subsystem) bool {
	active := platform.Subsystem(r.active.Load())
	return mask != platform.SubsystemNone && active&mask == mask
}

// Active returns the initialized subsystems.
func (r *Registry) Active() platform.Subsystem {
	return platform.Subsystem(r.active.Load())
}

// RefCount returns the number of outstanding handles.
func (r *Registry) RefCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.refs
}

// Subsystems returns the mask the handle was acquired with.
func (h *Handle) Subsystems() platform.Subsystem { return h.mask }

// Released reports whether the handle has been released.
func (h *Handle) Released() bool { return h.released.Load() }

// Release returns the handle to its registry.
func (h *Handle) Release() error {
	if h == nil {
		return ErrNilHandle
	}
	if h.registry == nil {
		return ErrNotAcquired
	}
	return h.registry.Release(h)
}

// Close is Release in io.Closer form, for use with defer.
func (h *Handle) Close() error { return h.Release() }
