//go:build linux

package platform

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/kappaduck/aquila/internal/audio"
	"github.com/kappaduck/aquila/internal/x11"
)

func init() {
	Register("x11", func(logger *slog.Logger) (Backend, error) {
		return NewX11Backend(logger), nil
	})
}

// x11HandleTag keeps handles distinct from X window ids so the two are never
// confused by callers.
const x11HandleTag Handle = 1 << 40

// syncSettle is how long SyncWindow waits for a reply from the window
// manager after a round trip produced events.
const syncSettle = 15 * time.Millisecond

// flashBrief is how long a brief flash keeps the urgency hint set.
const flashBrief = time.Second

// saverResetInterval is how often the screen saver timer is restarted while
// the screen saver is disabled.
const saverResetInterval = 30 * time.Second

// X11Backend drives top-level windows on an X server.
type X11Backend struct {
	logger *slog.Logger

	mu      sync.Mutex
	conn    *x11.Connection
	active  Subsystem
	start   time.Time
	windows map[Handle]*x11Window
	byXID   map[xproto.Window]*x11Window
	pending []Event

	buttons    MouseButtons
	mouseFocus WindowID

	saverOff   bool
	saverReset time.Time
}

type x11Window struct {
	handle  Handle
	win     *xwindow.Window
	flags   WindowFlags
	bounds  Rect
	title   string
	opacity float32
	minW    int
	minH    int
	maxW    int
	maxH    int
	pointer Point
	// mouseRect confines the pointer, in window coordinates, while the
	// window has mouse focus.
	mouseRect  Rect
	urgent     bool
	flashUntil time.Time
	// netState mirrors the last _NET_WM_STATE seen, used to turn property
	// changes into transitions.
	netState map[string]bool
}

func (w *x11Window) id() WindowID { return WindowID(w.win.Id) }

var _ Backend = (*X11Backend)(nil)

// NewX11Backend returns a backend that connects to $DISPLAY when the video
// subsystem is initialized.
func NewX11Backend(logger *slog.Logger) *X11Backend {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &X11Backend{
		logger:  logger,
		windows: map[Handle]*x11Window{},
		byXID:   map[xproto.Window]*x11Window{},
	}
}

// InitSubsystem implements Subsystems.
func (b *X11Backend) InitSubsystem(mask Subsystem) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, bit := range mask.Bits() {
		if b.active&bit != 0 {
			continue
		}
		switch bit {
		case SubsystemVideo:
			conn, err := x11.NewConnection(b.logger)
			if err != nil {
				return fmt.Errorf("failed to connect to X11: %w", err)
			}
			b.conn = conn
			b.start = time.Now()
		case SubsystemAudio:
			if err := audio.Init(); err != nil {
				return err
			}
		case SubsystemEvents:
			// Events arrive over the video connection.
		default:
			return fmt.Errorf("%w: subsystem %s", ErrUnsupported, bit)
		}
		b.active |= bit
		b.logger.Debug("subsystem initialized", "subsystem", bit)
	}
	return nil
}

// QuitSubsystem implements Subsystems.
func (b *X11Backend) QuitSubsystem(mask Subsystem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.quitLocked(mask)
}

// Quit implements Subsystems.
func (b *X11Backend) Quit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.quitLocked(b.active)
}

func (b *X11Backend) quitLocked(mask Subsystem) {
	mask &= b.active
	if mask&SubsystemVideo != 0 {
		for h := range b.windows {
			b.destroyLocked(h)
		}
		b.pending = nil
		b.saverOff = false
		b.conn.Close()
		b.conn = nil
	}
	if mask&SubsystemAudio != 0 {
		if err := audio.Terminate(); err != nil {
			b.logger.Warn("audio shutdown failed", "error", err)
		}
	}
	b.active &^= mask
	if mask != 0 {
		b.logger.Debug("subsystem shut down", "subsystem", mask)
	}
}

func (b *X11Backend) window(h Handle) (*x11Window, error) {
	if b.conn == nil {
		return nil, ErrNotInitialized
	}
	w, ok := b.windows[h]
	if !ok {
		return nil, fmt.Errorf("%w: %#x", ErrInvalidHandle, uint64(h))
	}
	return w, nil
}

// CreateWindow implements Backend. The window is centered on the primary
// display's usable area.
func (b *X11Backend) CreateWindow(title string, width, height int, flags WindowFlags) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return 0, ErrNotInitialized
	}
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("invalid window size %dx%d", width, height)
	}
	flags &= CreationFlags

	bounds := Rect{Width: width, Height: height}
	if displays, err := b.displaysLocked(); err == nil {
		if d, ok := PrimaryDisplay(displays); ok {
			bounds.X = d.Usable.X + (d.Usable.Width-width)/2
			bounds.Y = d.Usable.Y + (d.Usable.Height-height)/2
		}
	}

	win, err := b.conn.CreateWindow(x11.WindowConfig{
		Title:        title,
		X:            bounds.X,
		Y:            bounds.Y,
		Width:        width,
		Height:       height,
		Resizable:    flags.Has(WindowResizable),
		Borderless:   flags.Has(WindowBorderless),
		Hidden:       flags.Has(WindowHidden),
		Minimized:    flags.Has(WindowMinimized),
		Maximized:    flags.Has(WindowMaximized),
		Fullscreen:   flags.Has(WindowFullscreen),
		AlwaysOnTop:  flags.Has(WindowAlwaysOnTop),
		NotFocusable: flags.Has(WindowNotFocusable),
	})
	if err != nil {
		return 0, err
	}

	w := &x11Window{
		handle:   Handle(win.Id) | x11HandleTag,
		win:      win,
		flags:    flags &^ WindowHighPixelDensity,
		bounds:   bounds,
		title:    title,
		opacity:  1,
		netState: map[string]bool{},
	}
	if !flags.Has(WindowResizable) {
		w.minW, w.minH, w.maxW, w.maxH = width, height, width, height
	}
	b.windows[w.handle] = w
	b.byXID[win.Id] = w

	if flags.Has(WindowMouseGrabbed) {
		if err := b.conn.GrabPointer(win.Id, true); err != nil {
			w.flags &^= WindowMouseGrabbed
			b.logger.Warn("initial pointer grab failed", "window_id", win.Id, "error", err)
		}
	}
	if flags.Has(WindowKeyboardGrabbed) {
		if err := b.conn.GrabKeyboard(win.Id); err != nil {
			w.flags &^= WindowKeyboardGrabbed
			b.logger.Warn("initial keyboard grab failed", "window_id", win.Id, "error", err)
		}
	}
	b.logger.Debug("window created", "window_id", win.Id, "flags", w.flags)
	return w.handle, nil
}

// DestroyWindow implements Backend.
func (b *X11Backend) DestroyWindow(h Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return
	}
	b.destroyLocked(h)
}

func (b *X11Backend) destroyLocked(h Handle) {
	w, ok := b.windows[h]
	if !ok {
		return
	}
	if w.flags&(WindowMouseGrabbed|WindowMouseCaptured|WindowRelativeMouse) != 0 {
		_ = b.conn.UngrabPointer()
	}
	if w.flags.Has(WindowKeyboardGrabbed) {
		_ = b.conn.UngrabKeyboard()
	}
	delete(b.windows, h)
	delete(b.byXID, w.win.Id)
	w.win.Destroy()
	if b.mouseFocus == w.id() {
		b.mouseFocus = 0
	}
}

// WindowID implements Backend.
func (b *X11Backend) WindowID(h Handle) WindowID {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w, ok := b.windows[h]; ok {
		return w.id()
	}
	return 0
}

// QueryWindow implements Backend.
func (b *X11Backend) QueryWindow(h Handle) (WindowInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return WindowInfo{}, err
	}
	if x, y, width, height, err := b.conn.Geometry(w.win.Id); err == nil {
		w.bounds = Rect{X: x, Y: y, Width: width, Height: height}
	}
	return WindowInfo{
		Flags:       w.flags,
		Bounds:      w.bounds,
		PixelWidth:  w.bounds.Width,
		PixelHeight: w.bounds.Height,
		Title:       w.title,
		Opacity:     w.opacity,
	}, nil
}

// SetWindowTitle implements Backend.
func (b *X11Backend) SetWindowTitle(h Handle, title string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if err := b.conn.SetTitle(w.win.Id, title); err != nil {
		return err
	}
	w.title = title
	return nil
}

// SetWindowPosition implements Backend.
func (b *X11Backend) SetWindowPosition(h Handle, x, y int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	w.win.Move(x, y)
	return nil
}

// SetWindowSize implements Backend.
func (b *X11Backend) SetWindowSize(h Handle, width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if !w.flags.Has(WindowResizable) {
		// Fixed-size windows pin min and max to the size; move the pin first.
		w.minW, w.minH, w.maxW, w.maxH = width, height, width, height
		if err := b.conn.SetSizeHints(w.win.Id, width, height, width, height); err != nil {
			return err
		}
	}
	w.win.Resize(width, height)
	return nil
}

// SetWindowMinimumSize implements Backend.
func (b *X11Backend) SetWindowMinimumSize(h Handle, width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	w.minW, w.minH = width, height
	return b.publishSizeHints(w)
}

// SetWindowMaximumSize implements Backend.
func (b *X11Backend) SetWindowMaximumSize(h Handle, width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	w.maxW, w.maxH = width, height
	return b.publishSizeHints(w)
}

func (b *X11Backend) publishSizeHints(w *x11Window) error {
	if !w.flags.Has(WindowResizable) {
		// Limits are stored and applied when the window becomes resizable.
		return nil
	}
	return b.conn.SetSizeHints(w.win.Id, w.minW, w.minH, w.maxW, w.maxH)
}

// SetWindowOpacity implements Backend.
func (b *X11Backend) SetWindowOpacity(h Handle, opacity float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if err := b.conn.SetOpacity(w.win.Id, opacity); err != nil {
		return err
	}
	w.opacity = opacity
	return nil
}

// SetWindowState implements Backend. Fullscreen and hidden are confirmed by
// events; the remaining flags are client-side and take effect immediately.
func (b *X11Backend) SetWindowState(h Handle, flag WindowFlags, on bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	id := w.win.Id

	switch flag {
	case WindowFullscreen:
		return b.conn.SetNetState(id, x11.StateFullscreen, on)
	case WindowHidden:
		if on {
			w.win.Unmap()
		} else {
			w.win.Map()
		}
		return nil
	case WindowAlwaysOnTop:
		err = b.conn.SetNetState(id, x11.StateAbove, on)
	case WindowBorderless:
		err = b.conn.SetBorderless(id, on)
	case WindowNotFocusable:
		err = b.conn.SetFocusable(id, !on)
	case WindowResizable:
		w.flags = w.flags.With(WindowResizable, on)
		if on {
			w.minW, w.minH, w.maxW, w.maxH = 0, 0, 0, 0
			err = b.conn.SetSizeHints(id, 0, 0, 0, 0)
		} else {
			wd, ht := w.bounds.Width, w.bounds.Height
			w.minW, w.minH, w.maxW, w.maxH = wd, ht, wd, ht
			err = b.conn.SetSizeHints(id, wd, ht, wd, ht)
		}
	case WindowKeyboardGrabbed:
		if on {
			err = b.conn.GrabKeyboard(id)
		} else {
			err = b.conn.UngrabKeyboard()
		}
	case WindowMouseGrabbed, WindowRelativeMouse, WindowMouseCaptured:
		err = b.setPointerGrab(w, flag, on)
	default:
		return fmt.Errorf("%w: state %s", ErrUnsupported, flag)
	}
	if err != nil {
		return err
	}
	w.flags = w.flags.With(flag, on)
	return nil
}

// setPointerGrab maps the three pointer modes onto a single X pointer grab.
// Confined grabs win over plain capture.
func (b *X11Backend) setPointerGrab(w *x11Window, flag WindowFlags, on bool) error {
	next := w.flags.With(flag, on) & (WindowMouseGrabbed | WindowRelativeMouse | WindowMouseCaptured)
	if next == 0 {
		return b.conn.UngrabPointer()
	}
	confine := next&(WindowMouseGrabbed|WindowRelativeMouse) != 0
	if flag == WindowRelativeMouse && on {
		if p, err := b.conn.QueryPointer(); err == nil {
			w.pointer = Point{X: p.X - w.bounds.X, Y: p.Y - w.bounds.Y}
		}
	}
	return b.conn.GrabPointer(w.win.Id, confine)
}

// SetWindowMouseRect implements Backend. X11 has no confinement to part of a
// window, so motion outside r warps the pointer back.
func (b *X11Backend) SetWindowMouseRect(h Handle, r Rect) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if r.Empty() {
		r = Rect{}
	}
	w.mouseRect = r
	return nil
}

// SetWindowFullscreenMode implements Backend. Fullscreen windows keep the
// desktop mode, so only that mode is accepted.
func (b *X11Backend) SetWindowFullscreenMode(h Handle, mode *DisplayMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if mode == nil {
		return nil
	}
	displays, err := b.displaysLocked()
	if err != nil {
		return err
	}
	d, ok := DisplayContaining(displays, w.bounds)
	if !ok || d.DesktopMode.Width != mode.Width || d.DesktopMode.Height != mode.Height {
		return fmt.Errorf("%w: switching display to %s", ErrUnsupported, mode)
	}
	return nil
}

// FlashWindow implements Backend. Flashing sets the urgency hint; a brief
// flash clears it after flashBrief and any flash clears it on focus.
func (b *X11Backend) FlashWindow(h Handle, state FlashState) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	switch state {
	case FlashCancel:
		w.flashUntil = time.Time{}
		if !w.urgent {
			return nil
		}
		w.urgent = false
		return b.conn.SetUrgent(w.win.Id, false)
	case FlashBriefly, FlashUntilFocused:
		if w.flags.Has(WindowInputFocus) {
			return nil
		}
		w.flashUntil = time.Time{}
		if state == FlashBriefly {
			w.flashUntil = time.Now().Add(flashBrief)
		}
		w.urgent = true
		return b.conn.SetUrgent(w.win.Id, true)
	}
	return fmt.Errorf("%w: flash state %s", ErrUnsupported, state)
}

// WarpMouse implements Backend.
func (b *X11Backend) WarpMouse(h Handle, x, y int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if !w.mouseRect.Empty() {
		p := w.mouseRect.Clamp(x, y)
		x, y = p.X, p.Y
	}
	return b.conn.WarpPointer(w.win.Id, x, y)
}

// MinimizeWindow implements Backend.
func (b *X11Backend) MinimizeWindow(h Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	return b.conn.Iconify(w.win.Id)
}

// MaximizeWindow implements Backend.
func (b *X11Backend) MaximizeWindow(h Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if w.flags.Has(WindowMinimized) {
		w.win.Map()
	}
	return b.conn.SetMaximized(w.win.Id, true)
}

// RestoreWindow implements Backend.
func (b *X11Backend) RestoreWindow(h Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if w.flags.Has(WindowMinimized) {
		w.win.Map()
		return b.conn.Activate(w.win.Id)
	}
	return b.conn.SetMaximized(w.win.Id, false)
}

// RaiseWindow implements Backend.
func (b *X11Backend) RaiseWindow(h Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	return b.conn.Activate(w.win.Id)
}

// SyncWindow implements Backend. It round-trips to the server and keeps
// collecting events until a round trip produces none, so replies from the
// window manager to earlier requests are queued when it returns.
func (b *X11Backend) SyncWindow(ctx context.Context, h Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, err := b.window(h); err != nil {
		return err
	}
	for {
		if err := b.conn.Sync(ctx); err != nil {
			return err
		}
		if b.pumpLocked() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(syncSettle):
		}
	}
}

// PollEvent implements Backend.
func (b *X11Backend) PollEvent() (Event, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.pending) == 0 && b.conn != nil {
		b.pumpLocked()
	}
	if len(b.pending) == 0 {
		return Event{}, false
	}
	ev := b.pending[0]
	b.pending = b.pending[1:]
	return ev, true
}

// pumpLocked translates every event already read from the connection and
// returns how many platform events it produced.
func (b *X11Backend) pumpLocked() int {
	b.tickLocked(time.Now())
	n := 0
	for {
		xev, ok := b.conn.NextEvent()
		if !ok {
			return n
		}
		out := b.translate(xev)
		b.pending = append(b.pending, out...)
		n += len(out)
	}
}

// tickLocked runs the timed work of the backend: ending brief flashes and
// holding off the screen saver.
func (b *X11Backend) tickLocked(now time.Time) {
	for _, w := range b.windows {
		if w.urgent && !w.flashUntil.IsZero() && now.After(w.flashUntil) {
			b.clearUrgentLocked(w)
		}
	}
	if b.saverOff && now.Sub(b.saverReset) >= saverResetInterval {
		b.saverReset = now
		if err := b.conn.ResetScreenSaver(); err != nil {
			b.logger.Warn("screen saver reset failed", "error", err)
		}
	}
}

func (b *X11Backend) clearUrgentLocked(w *x11Window) {
	w.urgent = false
	w.flashUntil = time.Time{}
	if err := b.conn.SetUrgent(w.win.Id, false); err != nil {
		b.logger.Warn("clearing urgency failed", "window_id", w.win.Id, "error", err)
	}
}

// ScreenSaverEnabled implements Backend.
func (b *X11Backend) ScreenSaverEnabled() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.saverOff
}

// SetScreenSaverEnabled implements Backend. The server's screen saver is
// held off by restarting its timer while events are pumped.
func (b *X11Backend) SetScreenSaverEnabled(on bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return ErrNotInitialized
	}
	b.saverOff = !on
	if on {
		return nil
	}
	b.saverReset = time.Now()
	return b.conn.ResetScreenSaver()
}

func (b *X11Backend) now() uint64 {
	return uint64(time.Since(b.start).Nanoseconds())
}

// Displays implements Backend.
func (b *X11Backend) Displays() ([]Display, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return nil, ErrNotInitialized
	}
	return b.displaysLocked()
}

func (b *X11Backend) displaysLocked() ([]Display, error) {
	monitors, err := b.conn.GetMonitors()
	if err != nil {
		return nil, err
	}

	displays := make([]Display, 0, len(monitors))
	for _, m := range monitors {
		displays = append(displays, displayFromMonitor(m))
	}

	sort.Slice(displays, func(i, j int) bool {
		return displays[i].ID < displays[j].ID
	})

	return displays, nil
}

// DisplayForWindow implements Backend.
func (b *X11Backend) DisplayForWindow(h Handle) (Display, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return Display{}, err
	}
	displays, err := b.displaysLocked()
	if err != nil {
		return Display{}, err
	}
	d, ok := DisplayContaining(displays, w.bounds)
	if !ok {
		return Display{}, fmt.Errorf("no monitors found")
	}
	return d, nil
}

// InputState implements Backend.
func (b *X11Backend) InputState() (InputState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.conn == nil {
		return InputState{}, ErrNotInitialized
	}
	p, err := b.conn.QueryPointer()
	if err != nil {
		return InputState{}, err
	}
	s := InputState{
		Pointer:    Point{X: p.X, Y: p.Y},
		Buttons:    buttonsFromMask(p.Mask),
		Modifiers:  modifiersFromMask(p.Mask),
		MouseFocus: b.mouseFocus,
	}
	if focus, err := b.conn.InputFocus(); err == nil {
		if w, ok := b.byXID[focus]; ok {
			s.KeyboardFocus = w.id()
		}
	}
	return s, nil
}

func displayFromMonitor(m x11.Monitor) Display {
	return Display{
		ID:      m.ID,
		Name:    m.Name,
		Primary: m.Primary,
		Bounds: Rect{
			X:      m.X,
			Y:      m.Y,
			Width:  m.Width,
			Height: m.Height,
		},
		Usable: Rect{
			X:      m.UsableX,
			Y:      m.UsableY,
			Width:  m.UsableWidth,
			Height: m.UsableHeight,
		},
		RefreshRate:  m.RefreshRate,
		ContentScale: m.Scale,
		CurrentMode:  modeFromX11(m.ID, m.Mode),
		// Modes are never switched, so the desktop mode is the current one.
		DesktopMode: modeFromX11(m.ID, m.Mode),
		Modes:       modesFromX11(m.ID, m.Modes),
	}
}

func modeFromX11(id int, m x11.Mode) DisplayMode {
	dm := DisplayMode{
		DisplayID:    id,
		Width:        m.Width,
		Height:       m.Height,
		PixelDensity: 1,
		RefreshRate:  m.RefreshRate,
	}
	if m.Htotal > 0 && m.Vtotal > 0 {
		dm.RefreshNumerator = int(m.DotClock)
		dm.RefreshDenominator = m.Htotal * m.Vtotal
	}
	return dm
}

func modesFromX11(id int, modes []x11.Mode) []DisplayMode {
	out := make([]DisplayMode, 0, len(modes))
	for _, m := range modes {
		out = append(out, modeFromX11(id, m))
	}
	SortModes(out)
	return out
}
