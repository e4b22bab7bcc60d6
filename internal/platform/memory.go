package platform

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
)

func init() {
	Register("memory", func(logger *slog.Logger) (Backend, error) {
		b := NewMemoryBackend()
		b.AutoConfirm = true
		b.logger = logger
		return b, nil
	})
}

// MemoryBackend is an in-process Backend. It keeps the "native" view of every
// window, records each call and can be told to fail specific operations.
//
// With AutoConfirm set it behaves like a compliant window manager and queues
// the confirming events for each request, which makes it usable for headless
// runs of the event loop.
type MemoryBackend struct {
	AutoConfirm bool

	mu         sync.Mutex
	logger     *slog.Logger
	start      time.Time
	active     Subsystem
	initErrs   map[Subsystem]error
	failures   map[string]error
	calls      []string
	windows    map[Handle]*memWindow
	destroyed  map[Handle]int
	nextHandle Handle
	nextID     WindowID
	queue      []Event
	displays   []Display
	input      InputState
	scale      int
	saver      bool
}

type memWindow struct {
	id      WindowID
	info    WindowInfo
	restore Rect
	minW    int
	minH    int
	maxW    int
	maxH    int
	extra   MemoryWindowState
}

// MemoryWindowState is the part of the simulated native state that
// WindowInfo does not carry.
type MemoryWindowState struct {
	MouseRect      Rect
	FullscreenMode *DisplayMode
	Flash          FlashState
}

var _ Backend = (*MemoryBackend)(nil)

// NewMemoryBackend returns a backend with a single 1920x1080 primary display.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		logger:     slog.New(slog.DiscardHandler),
		start:      time.Now(),
		initErrs:   map[Subsystem]error{},
		failures:   map[string]error{},
		windows:    map[Handle]*memWindow{},
		destroyed:  map[Handle]int{},
		nextHandle: 0x1000,
		nextID:     1,
		scale:      1,
		saver:      true,
		displays: []Display{{
			ID:           0,
			Name:         "MEM-0",
			Primary:      true,
			Bounds:       Rect{Width: 1920, Height: 1080},
			Usable:       Rect{Y: 32, Width: 1920, Height: 1048},
			RefreshRate:  60,
			ContentScale: 1,
			CurrentMode:  memMode(1920, 1080, 60),
			DesktopMode:  memMode(1920, 1080, 60),
			Modes: []DisplayMode{
				memMode(1920, 1080, 144),
				memMode(1920, 1080, 60),
				memMode(1600, 900, 60),
				memMode(1280, 720, 120),
				memMode(1280, 720, 60),
			},
		}},
	}
}

func memMode(width, height int, hz float64) DisplayMode {
	return DisplayMode{Width: width, Height: height, PixelDensity: 1, RefreshRate: hz}
}

// SetInitError makes InitSubsystem fail for the given subsystem bit.
func (b *MemoryBackend) SetInitError(s Subsystem, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.initErrs, s)
		return
	}
	b.initErrs[s] = err
}

// Fail makes every call to the named method (e.g. "MaximizeWindow") return
// err. A nil err clears the failure.
func (b *MemoryBackend) Fail(method string, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err == nil {
		delete(b.failures, method)
		return
	}
	b.failures[method] = err
}

// SetDisplays replaces the simulated display layout.
func (b *MemoryBackend) SetDisplays(displays []Display) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.displays = append([]Display(nil), displays...)
}

// SetPixelScale sets the pixel-to-point ratio reported for new windows.
func (b *MemoryBackend) SetPixelScale(scale int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if scale < 1 {
		scale = 1
	}
	b.scale = scale
}

// SetInputState replaces the snapshot returned by InputState.
func (b *MemoryBackend) SetInputState(s InputState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.input = s
}

// Push appends an event to the queue.
func (b *MemoryBackend) Push(events ...Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ev := range events {
		if ev.Timestamp == 0 {
			ev.Timestamp = b.now()
		}
		b.queue = append(b.queue, ev)
	}
}

// Calls returns the recorded calls in order, formatted as "Method(args)".
func (b *MemoryBackend) Calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

// CallCount counts recorded calls whose text starts with prefix.
func (b *MemoryBackend) CallCount(prefix string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, c := range b.calls {
		if strings.HasPrefix(c, prefix) {
			n++
		}
	}
	return n
}

// ResetCalls clears the call log.
func (b *MemoryBackend) ResetCalls() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
}

// Destroyed reports how many times DestroyWindow was called for h.
func (b *MemoryBackend) Destroyed(h Handle) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.destroyed[h]
}

// Active returns the initialized subsystems.
func (b *MemoryBackend) Active() Subsystem {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

// NativeInfo returns the backend's own view of a window.
func (b *MemoryBackend) NativeInfo(h Handle) (WindowInfo, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[h]
	if !ok {
		return WindowInfo{}, false
	}
	return w.info, true
}

// NativeState returns the backend's mouse confinement, fullscreen mode and
// flash state for a window.
func (b *MemoryBackend) NativeState(h Handle) (MemoryWindowState, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[h]
	if !ok {
		return MemoryWindowState{}, false
	}
	return w.extra, true
}

func (b *MemoryBackend) now() uint64 {
	return uint64(time.Since(b.start).Nanoseconds())
}

func (b *MemoryBackend) record(format string, args ...any) {
	b.calls = append(b.calls, fmt.Sprintf(format, args...))
}

func (b *MemoryBackend) failure(method string) error {
	if err, ok := b.failures[method]; ok {
		return err
	}
	return nil
}

func (b *MemoryBackend) window(h Handle) (*memWindow, error) {
	if b.active&SubsystemVideo == 0 {
		return nil, ErrNotInitialized
	}
	w, ok := b.windows[h]
	if !ok {
		return nil, fmt.Errorf("%w: %#x", ErrInvalidHandle, uint64(h))
	}
	return w, nil
}

func (b *MemoryBackend) confirm(w *memWindow, typ EventType, d1, d2 int) {
	if !b.AutoConfirm {
		return
	}
	b.queue = append(b.queue, Event{
		Type:      typ,
		Timestamp: b.now(),
		WindowID:  w.id,
		Data1:     int32(d1),
		Data2:     int32(d2),
	})
}

func (b *MemoryBackend) resizeTo(w *memWindow, r Rect) {
	moved := r.X != w.info.Bounds.X || r.Y != w.info.Bounds.Y
	resized := r.Width != w.info.Bounds.Width || r.Height != w.info.Bounds.Height
	w.info.Bounds = r
	w.info.PixelWidth = r.Width * b.scale
	w.info.PixelHeight = r.Height * b.scale
	if moved {
		b.confirm(w, EventWindowMoved, r.X, r.Y)
	}
	if resized {
		b.confirm(w, EventWindowResized, r.Width, r.Height)
		b.confirm(w, EventWindowPixelSizeChanged, w.info.PixelWidth, w.info.PixelHeight)
	}
}

func (b *MemoryBackend) displayFor(w *memWindow) Display {
	d, _ := DisplayContaining(b.displays, w.info.Bounds)
	return d
}

// InitSubsystem implements Subsystems.
func (b *MemoryBackend) InitSubsystem(mask Subsystem) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("InitSubsystem(%s)", mask)
	for _, bit := range mask.Bits() {
		if err, ok := b.initErrs[bit]; ok {
			return err
		}
	}
	if b.active == 0 {
		b.start = time.Now()
	}
	b.active |= mask
	b.logger.Debug("subsystem initialized", "subsystem", mask)
	return nil
}

// QuitSubsystem implements Subsystems.
func (b *MemoryBackend) QuitSubsystem(mask Subsystem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("QuitSubsystem(%s)", mask)
	b.active &^= mask
}

// Quit implements Subsystems. Windows still alive are dropped and the screen
// saver is enabled again.
func (b *MemoryBackend) Quit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("Quit()")
	b.active = 0
	b.saver = true
	b.windows = map[Handle]*memWindow{}
	b.queue = nil
}

// CreateWindow implements Backend.
func (b *MemoryBackend) CreateWindow(title string, width, height int, flags WindowFlags) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("CreateWindow(%q, %d, %d, %s)", title, width, height, flags)
	if b.active&SubsystemVideo == 0 {
		return 0, ErrNotInitialized
	}
	if err := b.failure("CreateWindow"); err != nil {
		return 0, err
	}
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("invalid window size %dx%d", width, height)
	}

	h := b.nextHandle
	b.nextHandle++
	id := b.nextID
	b.nextID++

	flags &= CreationFlags
	if b.scale > 1 {
		flags |= WindowHighPixelDensity
	}
	bounds := Rect{X: 64, Y: 64, Width: width, Height: height}
	if len(b.displays) > 0 {
		u := b.displays[0].Usable
		bounds.X = u.X + (u.Width-width)/2
		bounds.Y = u.Y + (u.Height-height)/2
	}
	w := &memWindow{
		id:      id,
		restore: bounds,
		info: WindowInfo{
			Flags:       flags,
			Bounds:      bounds,
			PixelWidth:  width * b.scale,
			PixelHeight: height * b.scale,
			Title:       title,
			Opacity:     1,
		},
	}
	if flags&WindowHidden == 0 && flags&WindowMinimized == 0 && flags&WindowNotFocusable == 0 {
		w.info.Flags |= WindowInputFocus
	}
	b.windows[h] = w
	b.logger.Debug("window created", "handle", uint64(h), "window_id", id)
	return h, nil
}

// DestroyWindow implements Backend.
func (b *MemoryBackend) DestroyWindow(h Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("DestroyWindow(%#x)", uint64(h))
	b.destroyed[h]++
	delete(b.windows, h)
}

// WindowID implements Backend.
func (b *MemoryBackend) WindowID(h Handle) WindowID {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w, ok := b.windows[h]; ok {
		return w.id
	}
	return 0
}

// QueryWindow implements Backend.
func (b *MemoryBackend) QueryWindow(h Handle) (WindowInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("QueryWindow(%#x)", uint64(h))
	w, err := b.window(h)
	if err != nil {
		return WindowInfo{}, err
	}
	return w.info, nil
}

// SetWindowTitle implements Backend.
func (b *MemoryBackend) SetWindowTitle(h Handle, title string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("SetWindowTitle(%#x, %q)", uint64(h), title)
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if err := b.failure("SetWindowTitle"); err != nil {
		return err
	}
	w.info.Title = title
	return nil
}

// SetWindowPosition implements Backend.
func (b *MemoryBackend) SetWindowPosition(h Handle, x, y int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("SetWindowPosition(%#x, %d, %d)", uint64(h), x, y)
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if err := b.failure("SetWindowPosition"); err != nil {
		return err
	}
	r := w.info.Bounds
	r.X, r.Y = x, y
	b.resizeTo(w, r)
	w.restore = r
	return nil
}

// SetWindowSize implements Backend. Requests are clamped to the size limits
// like a window manager would.
func (b *MemoryBackend) SetWindowSize(h Handle, width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("SetWindowSize(%#x, %d, %d)", uint64(h), width, height)
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if err := b.failure("SetWindowSize"); err != nil {
		return err
	}
	width, height = clampSize(width, height, w.minW, w.minH, w.maxW, w.maxH)
	r := w.info.Bounds
	r.Width, r.Height = width, height
	b.resizeTo(w, r)
	w.restore = r
	return nil
}

func clampSize(w, h, minW, minH, maxW, maxH int) (int, int) {
	if minW > 0 && w < minW {
		w = minW
	}
	if minH > 0 && h < minH {
		h = minH
	}
	if maxW > 0 && w > maxW {
		w = maxW
	}
	if maxH > 0 && h > maxH {
		h = maxH
	}
	return max(w, 1), max(h, 1)
}

// SetWindowMinimumSize implements Backend.
func (b *MemoryBackend) SetWindowMinimumSize(h Handle, width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("SetWindowMinimumSize(%#x, %d, %d)", uint64(h), width, height)
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if err := b.failure("SetWindowMinimumSize"); err != nil {
		return err
	}
	w.minW, w.minH = width, height
	return nil
}

// SetWindowMaximumSize implements Backend.
func (b *MemoryBackend) SetWindowMaximumSize(h Handle, width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("SetWindowMaximumSize(%#x, %d, %d)", uint64(h), width, height)
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if err := b.failure("SetWindowMaximumSize"); err != nil {
		return err
	}
	w.maxW, w.maxH = width, height
	return nil
}

// SetWindowOpacity implements Backend.
func (b *MemoryBackend) SetWindowOpacity(h Handle, opacity float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("SetWindowOpacity(%#x, %.2f)", uint64(h), opacity)
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if err := b.failure("SetWindowOpacity"); err != nil {
		return err
	}
	w.info.Opacity = opacity
	return nil
}

// SetWindowState implements Backend.
func (b *MemoryBackend) SetWindowState(h Handle, flag WindowFlags, on bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("SetWindowState(%#x, %s, %t)", uint64(h), flag, on)
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if flag&^SettableFlags != 0 {
		return fmt.Errorf("%w: state %s", ErrUnsupported, flag)
	}
	if err := b.failure("SetWindowState"); err != nil {
		return err
	}

	was := w.info.Flags
	w.info.Flags = was.With(flag, on)

	switch {
	case flag == WindowFullscreen && on && !was.Has(WindowFullscreen):
		b.confirm(w, EventWindowEnterFullscreen, 0, 0)
		b.resizeTo(w, b.fullscreenBounds(w))
	case flag == WindowFullscreen && !on && was.Has(WindowFullscreen):
		b.confirm(w, EventWindowLeaveFullscreen, 0, 0)
		b.resizeTo(w, w.restore)
	case flag == WindowHidden && on && !was.Has(WindowHidden):
		b.confirm(w, EventWindowHidden, 0, 0)
	case flag == WindowHidden && !on && was.Has(WindowHidden):
		b.confirm(w, EventWindowShown, 0, 0)
		b.confirm(w, EventWindowExposed, 0, 0)
	}
	return nil
}

// MinimizeWindow implements Backend.
func (b *MemoryBackend) MinimizeWindow(h Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("MinimizeWindow(%#x)", uint64(h))
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if err := b.failure("MinimizeWindow"); err != nil {
		return err
	}
	if !w.info.Flags.Has(WindowMinimized) {
		w.info.Flags |= WindowMinimized
		w.info.Flags &^= WindowInputFocus
		b.confirm(w, EventWindowMinimized, 0, 0)
		if b.AutoConfirm {
			b.confirm(w, EventWindowFocusLost, 0, 0)
		}
	}
	return nil
}

// MaximizeWindow implements Backend.
func (b *MemoryBackend) MaximizeWindow(h Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("MaximizeWindow(%#x)", uint64(h))
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if err := b.failure("MaximizeWindow"); err != nil {
		return err
	}
	if !w.info.Flags.Has(WindowMaximized) {
		w.info.Flags = (w.info.Flags | WindowMaximized) &^ WindowMinimized
		b.confirm(w, EventWindowMaximized, 0, 0)
		b.resizeTo(w, b.displayFor(w).Usable)
	}
	return nil
}

// RestoreWindow implements Backend.
func (b *MemoryBackend) RestoreWindow(h Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("RestoreWindow(%#x)", uint64(h))
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if err := b.failure("RestoreWindow"); err != nil {
		return err
	}
	if w.info.Flags&(WindowMinimized|WindowMaximized) != 0 {
		w.info.Flags &^= WindowMinimized | WindowMaximized
		b.confirm(w, EventWindowRestored, 0, 0)
		b.resizeTo(w, w.restore)
	}
	return nil
}

// RaiseWindow implements Backend.
func (b *MemoryBackend) RaiseWindow(h Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("RaiseWindow(%#x)", uint64(h))
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if err := b.failure("RaiseWindow"); err != nil {
		return err
	}
	if !w.info.Flags.Has(WindowInputFocus) && !w.info.Flags.Has(WindowNotFocusable) {
		w.info.Flags |= WindowInputFocus
		w.extra.Flash = FlashCancel
		b.confirm(w, EventWindowFocusGained, 0, 0)
	}
	return nil
}

// FlashWindow implements Backend. Flashing until focused stops at the next
// RaiseWindow.
func (b *MemoryBackend) FlashWindow(h Handle, state FlashState) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("FlashWindow(%#x, %s)", uint64(h), state)
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if err := b.failure("FlashWindow"); err != nil {
		return err
	}
	if state == FlashBriefly {
		state = FlashCancel
	}
	w.extra.Flash = state
	return nil
}

// WarpMouse implements Backend. The pointer lands inside the mouse rect when
// one is set, and a motion event reports the new position.
func (b *MemoryBackend) WarpMouse(h Handle, x, y int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("WarpMouse(%#x, %d, %d)", uint64(h), x, y)
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if err := b.failure("WarpMouse"); err != nil {
		return err
	}
	if !w.extra.MouseRect.Empty() {
		p := w.extra.MouseRect.Clamp(x, y)
		x, y = p.X, p.Y
	}
	b.input.Pointer = Point{X: w.info.Bounds.X + x, Y: w.info.Bounds.Y + y}
	b.confirm(w, EventMouseMotion, x, y)
	return nil
}

// SetWindowMouseRect implements Backend.
func (b *MemoryBackend) SetWindowMouseRect(h Handle, r Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("SetWindowMouseRect(%#x, %v)", uint64(h), r)
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if err := b.failure("SetWindowMouseRect"); err != nil {
		return err
	}
	if r.Empty() {
		r = Rect{}
	}
	w.extra.MouseRect = r
	return nil
}

// SetWindowFullscreenMode implements Backend. The mode must be one of the
// display's fullscreen modes.
func (b *MemoryBackend) SetWindowFullscreenMode(h Handle, mode *DisplayMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("SetWindowFullscreenMode(%#x, %v)", uint64(h), mode)
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if err := b.failure("SetWindowFullscreenMode"); err != nil {
		return err
	}
	if mode != nil && !hasMode(b.displayFor(w).Modes, *mode) {
		return fmt.Errorf("%w: display mode %s", ErrUnsupported, mode)
	}
	if mode != nil {
		m := *mode
		mode = &m
	}
	w.extra.FullscreenMode = mode
	if w.info.Flags.Has(WindowFullscreen) {
		b.resizeTo(w, b.fullscreenBounds(w))
	}
	return nil
}

func hasMode(modes []DisplayMode, m DisplayMode) bool {
	for _, candidate := range modes {
		if candidate.Width == m.Width && candidate.Height == m.Height && candidate.RefreshRate == m.RefreshRate {
			return true
		}
	}
	return false
}

func (b *MemoryBackend) fullscreenBounds(w *memWindow) Rect {
	r := b.displayFor(w).Bounds
	if m := w.extra.FullscreenMode; m != nil {
		r.Width, r.Height = m.Width, m.Height
	}
	return r
}

// SyncWindow implements Backend. The simulated manager applies requests
// immediately, so this only checks the handle and the context.
func (b *MemoryBackend) SyncWindow(ctx context.Context, h Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("SyncWindow(%#x)", uint64(h))
	if _, err := b.window(h); err != nil {
		return err
	}
	if err := b.failure("SyncWindow"); err != nil {
		return err
	}
	return ctx.Err()
}

// PollEvent implements Backend.
func (b *MemoryBackend) PollEvent() (Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.queue) == 0 {
		return Event{}, false
	}
	ev := b.queue[0]
	b.queue = b.queue[1:]
	return ev, true
}

// Displays implements Backend.
func (b *MemoryBackend) Displays() ([]Display, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active&SubsystemVideo == 0 {
		return nil, ErrNotInitialized
	}
	return append([]Display(nil), b.displays...), nil
}

// DisplayForWindow implements Backend.
func (b *MemoryBackend) DisplayForWindow(h Handle) (Display, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return Display{}, err
	}
	d, ok := DisplayContaining(b.displays, w.info.Bounds)
	if !ok {
		return Display{}, fmt.Errorf("no displays")
	}
	return d, nil
}

// ScreenSaverEnabled implements Backend.
func (b *MemoryBackend) ScreenSaverEnabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.saver
}

// SetScreenSaverEnabled implements Backend.
func (b *MemoryBackend) SetScreenSaverEnabled(on bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.record("SetScreenSaverEnabled(%t)", on)
	if b.active&SubsystemVideo == 0 {
		return ErrNotInitialized
	}
	if err := b.failure("SetScreenSaverEnabled"); err != nil {
		return err
	}
	b.saver = on
	return nil
}

// InputState implements Backend.
func (b *MemoryBackend) InputState() (InputState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active&SubsystemVideo == 0 {
		return InputState{}, ErrNotInitialized
	}
	s := b.input
	if s.KeyboardFocus == 0 {
		for _, w := range b.windows {
			if w.info.Flags.Has(WindowInputFocus) {
				s.KeyboardFocus = w.id
				break
			}
		}
	}
	return s, nil
}
