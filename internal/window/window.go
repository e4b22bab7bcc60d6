// Package window wraps native windows with a locally cached view of their
// state.
//
// The cache is the single source of truth for queries. It is changed in two
// ways: mutators update it optimistically before forwarding the request to the
// backend, and events returned by PollEvent overwrite it with what the window
// system actually did. Geometry is only ever taken from events, since window
// managers are free to clamp, defer or deny move and resize requests.
//
// A Window is not safe for concurrent use. Like the native libraries it wraps,
// it expects to be driven from a single goroutine.
package window

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kappaduck/aquila/internal/platform"
)

// DefaultSyncTimeout bounds Sync when no timeout is configured.
const DefaultSyncTimeout = 2 * time.Second

// ErrNotRecreatable is returned by Create on a window that was opened with
// Open and has since been closed.
var ErrNotRecreatable = errors.New("window was opened directly and cannot be recreated")

// ErrAlreadyCreated is returned by Create while the window is still open.
var ErrAlreadyCreated = errors.New("window already created")

// ErrInvalidOpacity is returned by SetOpacity for NaN.
var ErrInvalidOpacity = errors.New("opacity is not a number")

// ErrInvalidRect is returned by SetMouseClip for a rectangle with a negative
// size.
var ErrInvalidRect = errors.New("rectangle has a negative size")

// Window is a native window plus its cached state.
type Window struct {
	backend     platform.Backend
	base        *slog.Logger
	logger      *slog.Logger
	syncTimeout time.Duration
	reusable    bool

	handle    platform.Handle
	id        platform.WindowID
	closed    bool
	destroyed bool

	flags       platform.WindowFlags
	pos         platform.Point
	width       int
	height      int
	pixelWidth  int
	pixelHeight int
	title       string
	opacity     float32
	minSize     [2]int
	maxSize     [2]int

	// requested holds the last geometry asked for by a setter, until an
	// event confirms what the window system made of it.
	requested platform.Rect

	// mouseClip and fullscreenMode outlive the native window and are
	// applied again when it is re-created.
	mouseClip      platform.Rect
	fullscreenMode *platform.DisplayMode
}

// Option configures a Window.
type Option func(*Window)

// WithLogger sets the logger used for state transitions.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Window) {
		if logger != nil {
			w.base = logger
		}
	}
}

// WithSyncTimeout bounds how long Sync waits for the backend.
func WithSyncTimeout(d time.Duration) Option {
	return func(w *Window) {
		if d > 0 {
			w.syncTimeout = d
		}
	}
}

// New returns an empty window. Call Create to make the native window. An
// empty window may be created again after Close.
func New(backend platform.Backend, opts ...Option) *Window {
	w := &Window{
		backend:     backend,
		base:        slog.New(slog.DiscardHandler),
		syncTimeout: DefaultSyncTimeout,
		reusable:    true,
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.base
	return w
}

// Open creates a native window immediately.
func Open(backend platform.Backend, title string, width, height int, flags platform.WindowFlags, opts ...Option) (*Window, error) {
	w := New(backend, opts...)
	w.reusable = false
	if err := w.create(title, width, height, flags); err != nil {
		return nil, err
	}
	return w, nil
}

// Create makes the native window for an empty window, or re-creates it after
// Close.
func (w *Window) Create(title string, width, height int, flags platform.WindowFlags) error {
	if w.handle.Valid() {
		return ErrAlreadyCreated
	}
	if w.closed && !w.reusable {
		return ErrNotRecreatable
	}
	return w.create(title, width, height, flags)
}

func (w *Window) create(title string, width, height int, flags platform.WindowFlags) error {
	if flags&^platform.CreationFlags != 0 {
		return fmt.Errorf("create window: flags %s cannot be requested at creation", flags&^platform.CreationFlags)
	}

	h, err := w.backend.CreateWindow(title, width, height, flags)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	if !h.Valid() {
		return fmt.Errorf("create window: %w", platform.ErrInvalidHandle)
	}

	id := w.backend.WindowID(h)
	info, err := w.backend.QueryWindow(h)
	if err != nil || id == 0 {
		w.backend.DestroyWindow(h)
		if err == nil {
			err = platform.ErrInvalidHandle
		}
		return fmt.Errorf("create window: query native state: %w", err)
	}

	w.handle = h
	w.id = id
	w.closed = false
	w.destroyed = false
	w.seed(info)

	w.logger = w.base.With("window_id", id)
	w.reapply()
	w.logger.Debug("window created",
		"title", w.title,
		"flags", w.flags,
		"width", w.width,
		"height", w.height)
	return nil
}

// seed fills the cache from the native view. This is the only place the
// cache is read from the backend.
func (w *Window) seed(info platform.WindowInfo) {
	w.flags = info.Flags
	w.pos = platform.Point{X: info.Bounds.X, Y: info.Bounds.Y}
	w.width = info.Bounds.Width
	w.height = info.Bounds.Height
	w.pixelWidth = info.PixelWidth
	w.pixelHeight = info.PixelHeight
	w.title = info.Title
	w.opacity = info.Opacity
	w.minSize = [2]int{}
	w.maxSize = [2]int{}
	w.requested = info.Bounds
}

// reapply pushes settings kept across re-creation to a new native window.
// Failures are logged; the window is usable without them.
func (w *Window) reapply() {
	if !w.mouseClip.Empty() {
		if err := w.backend.SetWindowMouseRect(w.handle, w.mouseClip); err != nil {
			w.logger.Warn("mouse clip not restored", "error", err)
		}
	}
	if w.fullscreenMode != nil {
		if err := w.backend.SetWindowFullscreenMode(w.handle, w.fullscreenMode); err != nil {
			w.logger.Warn("fullscreen mode not restored", "mode", w.fullscreenMode, "error", err)
		}
	}
}

// Close destroys the native window. Calling it again is a no-op.
func (w *Window) Close() error {
	if !w.handle.Valid() {
		return nil
	}
	h := w.handle
	w.handle = 0
	w.closed = true
	if !w.destroyed {
		w.backend.DestroyWindow(h)
	}
	w.logger.Debug("window closed")
	return nil
}

// IsOpen reports whether the window has a live native handle.
func (w *Window) IsOpen() bool {
	return w.handle.Valid() && !w.closed && !w.destroyed
}

// Sync blocks until the backend has applied pending state changes, or the sync
// timeout elapses. It is best effort: a timeout is reported but leaves the
// window usable.
func (w *Window) Sync() error {
	ctx, cancel := context.WithTimeout(context.Background(), w.syncTimeout)
	defer cancel()
	return w.SyncContext(ctx)
}

// SyncContext is Sync with a caller-provided deadline.
func (w *Window) SyncContext(ctx context.Context) error {
	if !w.IsOpen() {
		return nil
	}
	if err := w.backend.SyncWindow(ctx, w.handle); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = platform.ErrTimeout
		}
		return fmt.Errorf("window %d: sync: %w", w.id, err)
	}
	return nil
}

// PollEvent returns the next event from the native queue, applying it to the
// cache first when it concerns this window. Events for other windows are
// returned unchanged. It reports false when the queue is empty or the window
// is closed.
func (w *Window) PollEvent() (platform.Event, bool) {
	if !w.IsOpen() {
		return platform.Event{}, false
	}
	ev, ok := w.backend.PollEvent()
	if !ok {
		return platform.Event{}, false
	}
	w.Apply(ev)
	return ev, true
}

// ID returns the native window identifier, or zero before creation.
func (w *Window) ID() platform.WindowID { return w.id }

// Handle returns the native handle, or zero when closed.
func (w *Window) Handle() platform.Handle { return w.handle }

// Flags returns the cached state flags.
func (w *Window) Flags() platform.WindowFlags { return w.flags }

// Has reports whether every flag in mask is set in the cache.
func (w *Window) Has(mask platform.WindowFlags) bool { return w.flags.Has(mask) }

// The predicates below read single flags from the cache. IsFocusable is the
// inverse of WindowNotFocusable; the rest report whether their flag is set.

func (w *Window) IsFullscreen() bool      { return w.flags.Has(platform.WindowFullscreen) }
func (w *Window) IsMinimized() bool       { return w.flags.Has(platform.WindowMinimized) }
func (w *Window) IsMaximized() bool       { return w.flags.Has(platform.WindowMaximized) }
func (w *Window) IsHidden() bool          { return w.flags.Has(platform.WindowHidden) }
func (w *Window) IsResizable() bool       { return w.flags.Has(platform.WindowResizable) }
func (w *Window) IsBorderless() bool      { return w.flags.Has(platform.WindowBorderless) }
func (w *Window) IsAlwaysOnTop() bool     { return w.flags.Has(platform.WindowAlwaysOnTop) }
func (w *Window) IsOccluded() bool        { return w.flags.Has(platform.WindowOccluded) }
func (w *Window) IsFocusable() bool       { return !w.flags.Has(platform.WindowNotFocusable) }
func (w *Window) HasInputFocus() bool     { return w.flags.Has(platform.WindowInputFocus) }
func (w *Window) HasMouseFocus() bool     { return w.flags.Has(platform.WindowMouseFocus) }
func (w *Window) IsMouseGrabbed() bool    { return w.flags.Has(platform.WindowMouseGrabbed) }
func (w *Window) IsKeyboardGrabbed() bool { return w.flags.Has(platform.WindowKeyboardGrabbed) }
func (w *Window) IsMouseCaptured() bool   { return w.flags.Has(platform.WindowMouseCaptured) }
func (w *Window) IsRelativeMouse() bool   { return w.flags.Has(platform.WindowRelativeMouse) }

// MouseClip returns the area the pointer is confined to, in window
// coordinates. The zero Rect means no confinement.
func (w *Window) MouseClip() platform.Rect { return w.mouseClip }

// FullscreenMode returns the exclusive fullscreen mode, or nil when
// fullscreen uses the desktop mode.
func (w *Window) FullscreenMode() *platform.DisplayMode {
	if w.fullscreenMode == nil {
		return nil
	}
	mode := *w.fullscreenMode
	return &mode
}

// Position returns the last confirmed position.
func (w *Window) Position() platform.Point { return w.pos }

// Size returns the last confirmed size in screen coordinates.
func (w *Window) Size() (width, height int) { return w.width, w.height }

// Width returns the last confirmed width.
func (w *Window) Width() int { return w.width }

// Height returns the last confirmed height.
func (w *Window) Height() int { return w.height }

// SizeInPixels returns the last confirmed drawable size.
func (w *Window) SizeInPixels() (width, height int) { return w.pixelWidth, w.pixelHeight }

// Bounds returns position and size as one rectangle.
func (w *Window) Bounds() platform.Rect {
	return platform.Rect{X: w.pos.X, Y: w.pos.Y, Width: w.width, Height: w.height}
}

// RequestedBounds returns the geometry most recently asked for. It matches
// Bounds once the window system has confirmed the request.
func (w *Window) RequestedBounds() platform.Rect { return w.requested }

// PixelDensity is the ratio of drawable pixels to screen coordinates.
func (w *Window) PixelDensity() float64 {
	if w.width == 0 {
		return 1
	}
	return float64(w.pixelWidth) / float64(w.width)
}

// Title returns the cached title.
func (w *Window) Title() string { return w.title }

// Opacity returns the cached opacity in [0, 1].
func (w *Window) Opacity() float32 { return w.opacity }

// MinimumSize returns the size limits last requested, zero meaning unset.
func (w *Window) MinimumSize() (width, height int) { return w.minSize[0], w.minSize[1] }

// MaximumSize returns the size limits last requested, zero meaning unset.
func (w *Window) MaximumSize() (width, height int) { return w.maxSize[0], w.maxSize[1] }

// Display returns the display the window is on.
func (w *Window) Display() (platform.Display, error) {
	if !w.IsOpen() {
		return platform.Display{}, fmt.Errorf("window %d: %w", w.id, platform.ErrInvalidHandle)
	}
	return w.backend.DisplayForWindow(w.handle)
}
