//go:build glfw

package platform

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync"

	glfw "github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	// GLFW must be driven from the main thread; init runs on it.
	runtime.LockOSThread()
	Register("glfw", func(logger *slog.Logger) (Backend, error) {
		return NewGLFWBackend(logger), nil
	})
}

// GLFWBackend drives windows through GLFW. Requests GLFW applies synchronously
// and reports no callback for (fullscreen, show, hide) are confirmed with
// synthesized events.
type GLFWBackend struct {
	logger *slog.Logger

	mu         sync.Mutex
	active     Subsystem
	windows    map[Handle]*glfwWindow
	byWin      map[*glfw.Window]*glfwWindow
	queue      []Event
	nextHandle Handle
	nextID     WindowID
	buttons    MouseButtons
	mods       Modifiers
	mouseFocus WindowID
	keyFocus   WindowID
}

type glfwWindow struct {
	handle   Handle
	id       WindowID
	win      *glfw.Window
	flags    WindowFlags
	title    string
	windowed Rect
	cursor   Point
	minW     int
	minH     int
	maxW     int
	maxH     int
	// mouseRect confines the cursor, in window coordinates, while the
	// window has mouse focus.
	mouseRect      Rect
	fullscreenMode *DisplayMode
}

var _ Backend = (*GLFWBackend)(nil)

// NewGLFWBackend returns a backend that initializes GLFW with the video
// subsystem.
func NewGLFWBackend(logger *slog.Logger) *GLFWBackend {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &GLFWBackend{
		logger:     logger,
		windows:    map[Handle]*glfwWindow{},
		byWin:      map[*glfw.Window]*glfwWindow{},
		nextHandle: 0x100,
		nextID:     1,
	}
}

// InitSubsystem implements Subsystems.
func (b *GLFWBackend) InitSubsystem(mask Subsystem) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, bit := range mask.Bits() {
		if b.active&bit != 0 {
			continue
		}
		switch bit {
		case SubsystemVideo:
			if err := glfw.Init(); err != nil {
				return fmt.Errorf("failed to initialize glfw: %w", err)
			}
			glfw.SetMonitorCallback(func(*glfw.Monitor, glfw.PeripheralEvent) {
				b.queue = append(b.queue, Event{Type: EventDisplaysChanged, Timestamp: b.now()})
			})
		case SubsystemEvents:
		default:
			return fmt.Errorf("%w: subsystem %s", ErrUnsupported, bit)
		}
		b.active |= bit
		b.logger.Debug("subsystem initialized", "subsystem", bit)
	}
	return nil
}

// QuitSubsystem implements Subsystems.
func (b *GLFWBackend) QuitSubsystem(mask Subsystem) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.quitLocked(mask)
}

// Quit implements Subsystems.
func (b *GLFWBackend) Quit() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.quitLocked(b.active)
}

func (b *GLFWBackend) quitLocked(mask Subsystem) {
	mask &= b.active
	if mask&SubsystemVideo != 0 {
		for _, w := range b.windows {
			w.win.Destroy()
		}
		b.windows = map[Handle]*glfwWindow{}
		b.byWin = map[*glfw.Window]*glfwWindow{}
		b.queue = nil
		glfw.Terminate()
	}
	b.active &^= mask
}

func (b *GLFWBackend) now() uint64 {
	return uint64(glfw.GetTime() * 1e9)
}

func (b *GLFWBackend) window(h Handle) (*glfwWindow, error) {
	if b.active&SubsystemVideo == 0 {
		return nil, ErrNotInitialized
	}
	w, ok := b.windows[h]
	if !ok {
		return nil, fmt.Errorf("%w: %#x", ErrInvalidHandle, uint64(h))
	}
	return w, nil
}

func (b *GLFWBackend) push(w *glfwWindow, typ EventType, d1, d2 int) {
	b.queue = append(b.queue, Event{
		Type:      typ,
		Timestamp: b.now(),
		WindowID:  w.id,
		Data1:     int32(d1),
		Data2:     int32(d2),
	})
}

func glfwBool(on bool) int {
	if on {
		return glfw.True
	}
	return glfw.False
}

// CreateWindow implements Backend.
func (b *GLFWBackend) CreateWindow(title string, width, height int, flags WindowFlags) (Handle, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active&SubsystemVideo == 0 {
		return 0, ErrNotInitialized
	}
	flags &= CreationFlags

	glfw.DefaultWindowHints()
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfwBool(flags.Has(WindowResizable)))
	glfw.WindowHint(glfw.Decorated, glfwBool(!flags.Has(WindowBorderless)))
	glfw.WindowHint(glfw.Visible, glfwBool(!flags.Has(WindowHidden)))
	glfw.WindowHint(glfw.Maximized, glfwBool(flags.Has(WindowMaximized)))
	glfw.WindowHint(glfw.Floating, glfwBool(flags.Has(WindowAlwaysOnTop)))
	glfw.WindowHint(glfw.FocusOnShow, glfwBool(!flags.Has(WindowNotFocusable)))
	glfw.WindowHint(glfw.ScaleToMonitor, glfwBool(flags.Has(WindowHighPixelDensity)))

	var monitor *glfw.Monitor
	if flags.Has(WindowFullscreen) {
		monitor = glfw.GetPrimaryMonitor()
	}
	win, err := glfw.CreateWindow(width, height, title, monitor, nil)
	if err != nil {
		return 0, fmt.Errorf("create window: %w", err)
	}

	w := &glfwWindow{
		handle: b.nextHandle,
		id:     b.nextID,
		win:    win,
		flags:  flags &^ (WindowMouseGrabbed | WindowKeyboardGrabbed),
		title:  title,
	}
	b.nextHandle++
	b.nextID++
	x, y := win.GetPos()
	w.windowed = Rect{X: x, Y: y, Width: width, Height: height}
	if flags.Has(WindowMinimized) {
		win.Iconify()
	}
	if win.GetAttrib(glfw.Focused) == glfw.True {
		w.flags |= WindowInputFocus
		b.keyFocus = w.id
	}

	b.windows[w.handle] = w
	b.byWin[win] = w
	b.installCallbacks(w)
	b.logger.Debug("window created", "window_id", w.id, "flags", w.flags)
	return w.handle, nil
}

func (b *GLFWBackend) installCallbacks(w *glfwWindow) {
	w.win.SetPosCallback(func(_ *glfw.Window, x, y int) {
		b.push(w, EventWindowMoved, x, y)
	})
	w.win.SetSizeCallback(func(_ *glfw.Window, width, height int) {
		b.push(w, EventWindowResized, width, height)
	})
	w.win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		b.push(w, EventWindowPixelSizeChanged, width, height)
	})
	w.win.SetRefreshCallback(func(*glfw.Window) {
		b.push(w, EventWindowExposed, 0, 0)
	})
	w.win.SetCloseCallback(func(win *glfw.Window) {
		win.SetShouldClose(false)
		b.push(w, EventWindowCloseRequested, 0, 0)
	})
	w.win.SetFocusCallback(func(_ *glfw.Window, focused bool) {
		if focused {
			w.flags |= WindowInputFocus
			b.keyFocus = w.id
			b.push(w, EventWindowFocusGained, 0, 0)
			return
		}
		w.flags &^= WindowInputFocus
		if b.keyFocus == w.id {
			b.keyFocus = 0
		}
		b.push(w, EventWindowFocusLost, 0, 0)
	})
	w.win.SetIconifyCallback(func(_ *glfw.Window, iconified bool) {
		if iconified {
			w.flags |= WindowMinimized
			b.push(w, EventWindowMinimized, 0, 0)
			return
		}
		w.flags &^= WindowMinimized
		b.push(w, EventWindowRestored, 0, 0)
	})
	w.win.SetMaximizeCallback(func(_ *glfw.Window, maximized bool) {
		if maximized {
			w.flags |= WindowMaximized
			b.push(w, EventWindowMaximized, 0, 0)
			return
		}
		w.flags &^= WindowMaximized
		b.push(w, EventWindowRestored, 0, 0)
	})
	w.win.SetCursorEnterCallback(func(_ *glfw.Window, entered bool) {
		if entered {
			b.mouseFocus = w.id
			b.push(w, EventWindowMouseEnter, 0, 0)
			return
		}
		if b.mouseFocus == w.id {
			b.mouseFocus = 0
		}
		b.push(w, EventWindowMouseLeave, 0, 0)
	})
	w.win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, scancode int, action glfw.Action, mods glfw.ModifierKey) {
		b.mods = modifiersFromGLFW(mods)
		typ := EventKeyDown
		if action == glfw.Release {
			typ = EventKeyUp
		}
		b.push(w, typ, scancode, int(b.mods))
		b.queue[len(b.queue)-1].Key = glfwKeyName(key, scancode)
	})
	w.win.SetMouseButtonCallback(func(_ *glfw.Window, button glfw.MouseButton, action glfw.Action, mods glfw.ModifierKey) {
		btn := buttonFromGLFW(button)
		if btn == 0 {
			return
		}
		b.mods = modifiersFromGLFW(mods)
		typ := EventMouseButtonDown
		if action == glfw.Release {
			typ = EventMouseButtonUp
			b.buttons &^= btn
		} else {
			b.buttons |= btn
		}
		b.push(w, typ, w.cursor.X, w.cursor.Y)
		b.queue[len(b.queue)-1].Button = btn
	})
	w.win.SetCursorPosCallback(func(win *glfw.Window, x, y float64) {
		pos := Point{X: int(x), Y: int(y)}
		if r := w.mouseRect; !r.Empty() && b.mouseFocus == w.id && !r.Contains(pos.X, pos.Y) {
			pos = r.Clamp(pos.X, pos.Y)
			win.SetCursorPos(float64(pos.X), float64(pos.Y))
		}
		d1, d2 := pos.X, pos.Y
		if w.flags.Has(WindowRelativeMouse) {
			d1, d2 = pos.X-w.cursor.X, pos.Y-w.cursor.Y
		}
		w.cursor = pos
		b.push(w, EventMouseMotion, d1, d2)
		b.queue[len(b.queue)-1].Button = b.buttons
	})
	w.win.SetScrollCallback(func(_ *glfw.Window, dx, dy float64) {
		b.push(w, EventMouseWheel, int(dx), int(dy))
	})
}

func glfwKeyName(key glfw.Key, scancode int) string {
	if name := glfw.GetKeyName(key, scancode); name != "" {
		return name
	}
	switch key {
	case glfw.KeyEscape:
		return "Escape"
	case glfw.KeyEnter:
		return "Return"
	case glfw.KeySpace:
		return "space"
	case glfw.KeyTab:
		return "Tab"
	}
	return ""
}

// DestroyWindow implements Backend.
func (b *GLFWBackend) DestroyWindow(h Handle) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.windows[h]
	if !ok {
		return
	}
	delete(b.windows, h)
	delete(b.byWin, w.win)
	w.win.Destroy()
}

// WindowID implements Backend.
func (b *GLFWBackend) WindowID(h Handle) WindowID {
	b.mu.Lock()
	defer b.mu.Unlock()
	if w, ok := b.windows[h]; ok {
		return w.id
	}
	return 0
}

// QueryWindow implements Backend.
func (b *GLFWBackend) QueryWindow(h Handle) (WindowInfo, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return WindowInfo{}, err
	}
	x, y := w.win.GetPos()
	width, height := w.win.GetSize()
	pw, ph := w.win.GetFramebufferSize()
	return WindowInfo{
		Flags:       w.flags,
		Bounds:      Rect{X: x, Y: y, Width: width, Height: height},
		PixelWidth:  pw,
		PixelHeight: ph,
		Title:       w.title,
		Opacity:     w.win.GetOpacity(),
	}, nil
}

// SetWindowTitle implements Backend.
func (b *GLFWBackend) SetWindowTitle(h Handle, title string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	w.win.SetTitle(title)
	w.title = title
	return nil
}

// SetWindowPosition implements Backend.
func (b *GLFWBackend) SetWindowPosition(h Handle, x, y int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	w.win.SetPos(x, y)
	return nil
}

// SetWindowSize implements Backend.
func (b *GLFWBackend) SetWindowSize(h Handle, width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	w.win.SetSize(width, height)
	return nil
}

// SetWindowMinimumSize implements Backend.
func (b *GLFWBackend) SetWindowMinimumSize(h Handle, width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	w.minW, w.minH = width, height
	w.win.SetSizeLimits(dontCare(w.minW), dontCare(w.minH), dontCare(w.maxW), dontCare(w.maxH))
	return nil
}

// SetWindowMaximumSize implements Backend.
func (b *GLFWBackend) SetWindowMaximumSize(h Handle, width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	w.maxW, w.maxH = width, height
	w.win.SetSizeLimits(dontCare(w.minW), dontCare(w.minH), dontCare(w.maxW), dontCare(w.maxH))
	return nil
}

func dontCare(v int) int {
	if v <= 0 {
		return glfw.DontCare
	}
	return v
}

// SetWindowOpacity implements Backend.
func (b *GLFWBackend) SetWindowOpacity(h Handle, opacity float32) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	w.win.SetOpacity(opacity)
	return nil
}

// SetWindowState implements Backend. GLFW 3.3 has no pointer confinement or
// keyboard grab, so those flags report ErrUnsupported.
func (b *GLFWBackend) SetWindowState(h Handle, flag WindowFlags, on bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}

	switch flag {
	case WindowResizable:
		w.win.SetAttrib(glfw.Resizable, glfwBool(on))
	case WindowBorderless:
		w.win.SetAttrib(glfw.Decorated, glfwBool(!on))
	case WindowAlwaysOnTop:
		w.win.SetAttrib(glfw.Floating, glfwBool(on))
	case WindowNotFocusable:
		w.win.SetAttrib(glfw.FocusOnShow, glfwBool(!on))
	case WindowHidden:
		if on {
			w.win.Hide()
			b.push(w, EventWindowHidden, 0, 0)
		} else {
			w.win.Show()
			b.push(w, EventWindowShown, 0, 0)
			b.push(w, EventWindowExposed, 0, 0)
		}
	case WindowFullscreen:
		b.setFullscreen(w, on)
	case WindowRelativeMouse:
		mode := glfw.CursorNormal
		if on {
			mode = glfw.CursorDisabled
		}
		w.win.SetInputMode(glfw.CursorMode, mode)
		if glfw.RawMouseMotionSupported() {
			w.win.SetInputMode(glfw.RawMouseMotion, glfwBool(on))
		}
	default:
		return fmt.Errorf("%w: state %s", ErrUnsupported, flag)
	}
	w.flags = w.flags.With(flag, on)
	return nil
}

func (b *GLFWBackend) setFullscreen(w *glfwWindow, on bool) {
	isFull := w.win.GetMonitor() != nil
	if on == isFull {
		return
	}
	if on {
		x, y := w.win.GetPos()
		width, height := w.win.GetSize()
		w.windowed = Rect{X: x, Y: y, Width: width, Height: height}
		m := glfw.GetPrimaryMonitor()
		width, height, rate := fullscreenSize(m, w.fullscreenMode)
		w.win.SetMonitor(m, 0, 0, width, height, rate)
		b.push(w, EventWindowEnterFullscreen, 0, 0)
		return
	}
	r := w.windowed
	w.win.SetMonitor(nil, r.X, r.Y, r.Width, r.Height, glfw.DontCare)
	b.push(w, EventWindowLeaveFullscreen, 0, 0)
}

// fullscreenSize picks the monitor's desktop mode unless an exclusive mode
// was selected.
func fullscreenSize(m *glfw.Monitor, mode *DisplayMode) (width, height, rate int) {
	if mode != nil {
		return mode.Width, mode.Height, int(mode.RefreshRate + 0.5)
	}
	vm := m.GetVideoMode()
	return vm.Width, vm.Height, vm.RefreshRate
}

// SetWindowFullscreenMode implements Backend. The mode must be one the
// primary monitor supports; a fullscreen window switches immediately.
func (b *GLFWBackend) SetWindowFullscreenMode(h Handle, mode *DisplayMode) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	if mode != nil {
		m := glfw.GetPrimaryMonitor()
		if !hasGLFWMode(m, *mode) {
			return fmt.Errorf("%w: display mode %s", ErrUnsupported, mode)
		}
		copied := *mode
		mode = &copied
	}
	w.fullscreenMode = mode
	if m := w.win.GetMonitor(); m != nil {
		width, height, rate := fullscreenSize(m, mode)
		w.win.SetMonitor(m, 0, 0, width, height, rate)
	}
	return nil
}

func hasGLFWMode(m *glfw.Monitor, mode DisplayMode) bool {
	for _, vm := range m.GetVideoModes() {
		if vm.Width == mode.Width && vm.Height == mode.Height && vm.RefreshRate == int(mode.RefreshRate+0.5) {
			return true
		}
	}
	return false
}

// SetWindowMouseRect implements Backend. GLFW cannot confine the cursor to
// part of a window, so the cursor callback moves it back inside r.
func (b *GLFWBackend) SetWindowMouseRect(h Handle, r Rect) error {
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

// FlashWindow implements Backend. GLFW's attention request ends when the
// window is focused and cannot be withdrawn, so cancel does nothing.
func (b *GLFWBackend) FlashWindow(h Handle, state FlashState) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	switch state {
	case FlashCancel:
		return nil
	case FlashBriefly, FlashUntilFocused:
		if !w.flags.Has(WindowInputFocus) {
			w.win.RequestAttention()
		}
		return nil
	}
	return fmt.Errorf("%w: flash state %s", ErrUnsupported, state)
}

// WarpMouse implements Backend.
func (b *GLFWBackend) WarpMouse(h Handle, x, y int) error {
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
	w.win.SetCursorPos(float64(x), float64(y))
	return nil
}

// MinimizeWindow implements Backend.
func (b *GLFWBackend) MinimizeWindow(h Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	w.win.Iconify()
	return nil
}

// MaximizeWindow implements Backend.
func (b *GLFWBackend) MaximizeWindow(h Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	w.win.Maximize()
	return nil
}

// RestoreWindow implements Backend.
func (b *GLFWBackend) RestoreWindow(h Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	w.win.Restore()
	return nil
}

// RaiseWindow implements Backend.
func (b *GLFWBackend) RaiseWindow(h Handle) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return err
	}
	w.win.Focus()
	return nil
}

// SyncWindow implements Backend. GLFW applies requests before returning, so
// a single event poll collects the confirmations.
func (b *GLFWBackend) SyncWindow(ctx context.Context, h Handle) error {
	b.mu.Lock()
	_, err := b.window(h)
	b.mu.Unlock()
	if err != nil {
		return err
	}
	glfw.PollEvents()
	return ctx.Err()
}

// PollEvent implements Backend. Callbacks run inside glfw.PollEvents and
// append to the queue, so the lock is not held while polling.
func (b *GLFWBackend) PollEvent() (Event, bool) {
	b.mu.Lock()
	empty := len(b.queue) == 0
	active := b.active&SubsystemVideo != 0
	b.mu.Unlock()
	if empty && active {
		glfw.PollEvents()
	}

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
func (b *GLFWBackend) Displays() ([]Display, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active&SubsystemVideo == 0 {
		return nil, ErrNotInitialized
	}
	return glfwDisplays(), nil
}

func glfwDisplays() []Display {
	primary := glfw.GetPrimaryMonitor()
	monitors := glfw.GetMonitors()
	out := make([]Display, 0, len(monitors))
	for i, m := range monitors {
		x, y := m.GetPos()
		mode := m.GetVideoMode()
		wx, wy, ww, wh := m.GetWorkarea()
		sx, _ := m.GetContentScale()
		current := modeFromGLFW(i, mode)
		var modes []DisplayMode
		for _, vm := range m.GetVideoModes() {
			modes = append(modes, modeFromGLFW(i, vm))
		}
		SortModes(modes)
		out = append(out, Display{
			ID:           i,
			Name:         m.GetName(),
			Primary:      m == primary,
			Bounds:       Rect{X: x, Y: y, Width: mode.Width, Height: mode.Height},
			Usable:       Rect{X: wx, Y: wy, Width: ww, Height: wh},
			RefreshRate:  float64(mode.RefreshRate),
			ContentScale: float64(sx),
			CurrentMode:  current,
			// GLFW 3.3 does not report the mode a monitor had before a
			// fullscreen window changed it.
			DesktopMode: current,
			Modes:       modes,
		})
	}
	return out
}

func modeFromGLFW(id int, vm *glfw.VidMode) DisplayMode {
	return DisplayMode{
		DisplayID:    id,
		Width:        vm.Width,
		Height:       vm.Height,
		PixelDensity: 1,
		RefreshRate:  float64(vm.RefreshRate),
	}
}

// DisplayForWindow implements Backend.
func (b *GLFWBackend) DisplayForWindow(h Handle) (Display, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, err := b.window(h)
	if err != nil {
		return Display{}, err
	}
	x, y := w.win.GetPos()
	width, height := w.win.GetSize()
	d, ok := DisplayContaining(glfwDisplays(), Rect{X: x, Y: y, Width: width, Height: height})
	if !ok {
		return Display{}, fmt.Errorf("no monitors found")
	}
	return d, nil
}

// InputState implements Backend. GLFW only reports the cursor relative to a
// window, so the pointer is taken from the focused window.
func (b *GLFWBackend) InputState() (InputState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.active&SubsystemVideo == 0 {
		return InputState{}, ErrNotInitialized
	}
	s := InputState{
		Buttons:       b.buttons,
		Modifiers:     b.mods,
		KeyboardFocus: b.keyFocus,
		MouseFocus:    b.mouseFocus,
	}
	for _, w := range b.windows {
		if w.id != b.mouseFocus && w.id != b.keyFocus {
			continue
		}
		wx, wy := w.win.GetPos()
		cx, cy := w.win.GetCursorPos()
		s.Pointer = Point{X: wx + int(cx), Y: wy + int(cy)}
		break
	}
	return s, nil
}

// ScreenSaverEnabled implements Backend. GLFW leaves the screen saver alone.
func (b *GLFWBackend) ScreenSaverEnabled() bool { return true }

// SetScreenSaverEnabled implements Backend. GLFW cannot inhibit the screen
// saver.
func (b *GLFWBackend) SetScreenSaverEnabled(on bool) error {
	if on {
		return nil
	}
	return fmt.Errorf("%w: disabling the screen saver", ErrUnsupported)
}

func buttonFromGLFW(button glfw.MouseButton) MouseButtons {
	switch button {
	case glfw.MouseButtonLeft:
		return ButtonLeft
	case glfw.MouseButtonMiddle:
		return ButtonMiddle
	case glfw.MouseButtonRight:
		return ButtonRight
	case glfw.MouseButton4:
		return ButtonX1
	case glfw.MouseButton5:
		return ButtonX2
	}
	return 0
}

func modifiersFromGLFW(mods glfw.ModifierKey) Modifiers {
	var m Modifiers
	if mods&glfw.ModShift != 0 {
		m |= ModShift
	}
	if mods&glfw.ModControl != 0 {
		m |= ModCtrl
	}
	if mods&glfw.ModAlt != 0 {
		m |= ModAlt
	}
	if mods&glfw.ModSuper != 0 {
		m |= ModSuper
	}
	if mods&glfw.ModCapsLock != 0 {
		m |= ModCapsLock
	}
	if mods&glfw.ModNumLock != 0 {
		m |= ModNumLock
	}
	return m
}
