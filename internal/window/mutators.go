package window

import (
	"fmt"

	"github.com/kappaduck/aquila/internal/platform"
)

// Mutators share one contract: on a closed window they do nothing and return
// nil; when the cache already shows the requested state they do nothing;
// otherwise they update the cache first and then forward the request. A
// backend error is returned but the cache is not rolled back, because window
// managers may still apply the change later. The next confirming event
// settles the cached value either way.

func (w *Window) forward(op string, err error) error {
	if err == nil {
		return nil
	}
	w.logger.Warn("native request failed", "op", op, "error", err)
	return fmt.Errorf("window %d: %s: %w", w.id, op, err)
}

func (w *Window) setFlag(op string, flag platform.WindowFlags, on bool) error {
	if !w.IsOpen() || w.flags.Has(flag) == on {
		return nil
	}
	w.flags = w.flags.With(flag, on)
	w.logger.Debug("state requested", "op", op, "flag", flag, "on", on)
	return w.forward(op, w.backend.SetWindowState(w.handle, flag, on))
}

// SetTitle changes the title.
func (w *Window) SetTitle(title string) error {
	if !w.IsOpen() || title == w.title {
		return nil
	}
	w.title = title
	return w.forward("set title", w.backend.SetWindowTitle(w.handle, title))
}

// SetPosition asks the window system to move the window. Position() keeps
// reporting the old value until a move event confirms the new one. The call is
// ignored while the window is fullscreen or maximized.
func (w *Window) SetPosition(x, y int) error {
	if !w.IsOpen() || w.flags&(platform.WindowFullscreen|platform.WindowMaximized) != 0 {
		return nil
	}
	w.requested.X, w.requested.Y = x, y
	return w.forward("set position", w.backend.SetWindowPosition(w.handle, x, y))
}

// SetSize asks the window system to resize the window. Size() keeps reporting
// the old value until a resize event confirms the new one. The call is
// ignored while the window is fullscreen or maximized.
func (w *Window) SetSize(width, height int) error {
	if !w.IsOpen() || w.flags&(platform.WindowFullscreen|platform.WindowMaximized) != 0 {
		return nil
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("window %d: set size: invalid size %dx%d", w.id, width, height)
	}
	w.requested.Width, w.requested.Height = width, height
	return w.forward("set size", w.backend.SetWindowSize(w.handle, width, height))
}

// SetWidth resizes horizontally, keeping the most recently requested height.
func (w *Window) SetWidth(width int) error {
	return w.SetSize(width, w.requested.Height)
}

// SetHeight resizes vertically, keeping the most recently requested width.
func (w *Window) SetHeight(height int) error {
	return w.SetSize(w.requested.Width, height)
}

// SetMinimumSize limits how small the user can make the window. Zero removes
// the limit on that axis.
func (w *Window) SetMinimumSize(width, height int) error {
	if !w.IsOpen() {
		return nil
	}
	if width < 0 || height < 0 {
		return fmt.Errorf("window %d: set minimum size: negative size %dx%d", w.id, width, height)
	}
	if (w.maxSize[0] > 0 && width > w.maxSize[0]) || (w.maxSize[1] > 0 && height > w.maxSize[1]) {
		return fmt.Errorf("window %d: set minimum size: %dx%d exceeds maximum %dx%d",
			w.id, width, height, w.maxSize[0], w.maxSize[1])
	}
	w.minSize = [2]int{width, height}
	return w.forward("set minimum size", w.backend.SetWindowMinimumSize(w.handle, width, height))
}

// SetMaximumSize limits how large the user can make the window. Zero removes
// the limit on that axis.
func (w *Window) SetMaximumSize(width, height int) error {
	if !w.IsOpen() {
		return nil
	}
	if width < 0 || height < 0 {
		return fmt.Errorf("window %d: set maximum size: negative size %dx%d", w.id, width, height)
	}
	if (width > 0 && width < w.minSize[0]) || (height > 0 && height < w.minSize[1]) {
		return fmt.Errorf("window %d: set maximum size: %dx%d is below minimum %dx%d",
			w.id, width, height, w.minSize[0], w.minSize[1])
	}
	w.maxSize = [2]int{width, height}
	return w.forward("set maximum size", w.backend.SetWindowMaximumSize(w.handle, width, height))
}

// SetOpacity sets window opacity, clamped to [0, 1]. NaN is rejected.
func (w *Window) SetOpacity(opacity float32) error {
	if !w.IsOpen() {
		return nil
	}
	if opacity != opacity {
		return fmt.Errorf("window %d: set opacity: %w", w.id, ErrInvalidOpacity)
	}
	opacity = min(max(opacity, 0), 1)
	if opacity == w.opacity {
		return nil
	}
	w.opacity = opacity
	return w.forward("set opacity", w.backend.SetWindowOpacity(w.handle, opacity))
}

// SetFullscreen enters or leaves fullscreen.
func (w *Window) SetFullscreen(on bool) error {
	return w.setFlag("set fullscreen", platform.WindowFullscreen, on)
}

// Minimize iconifies the window. It is a no-op when already minimized.
func (w *Window) Minimize() error {
	if !w.IsOpen() || w.IsMinimized() {
		return nil
	}
	w.flags |= platform.WindowMinimized
	w.logger.Debug("state requested", "op", "minimize")
	return w.forward("minimize", w.backend.MinimizeWindow(w.handle))
}

// Maximize makes the window fill its display's work area. It is a no-op when
// the window is already maximized or is not resizable. If the window manager
// refuses, only a restored event clears the optimistic state.
func (w *Window) Maximize() error {
	if !w.IsOpen() || w.IsMaximized() || !w.IsResizable() {
		return nil
	}
	w.flags = (w.flags | platform.WindowMaximized) &^ platform.WindowMinimized
	w.logger.Debug("state requested", "op", "maximize")
	return w.forward("maximize", w.backend.MaximizeWindow(w.handle))
}

// Restore returns a minimized or maximized window to its normal state.
func (w *Window) Restore() error {
	if !w.IsOpen() || w.flags&(platform.WindowMinimized|platform.WindowMaximized) == 0 {
		return nil
	}
	w.flags &^= platform.WindowMinimized | platform.WindowMaximized
	w.logger.Debug("state requested", "op", "restore")
	return w.forward("restore", w.backend.RestoreWindow(w.handle))
}

// Hide unmaps the window.
func (w *Window) Hide() error {
	return w.setFlag("hide", platform.WindowHidden, true)
}

// Show maps the window.
func (w *Window) Show() error {
	return w.setFlag("show", platform.WindowHidden, false)
}

// Raise brings the window to the front and asks for input focus. Focus is
// reported by a focus event, not assumed.
func (w *Window) Raise() error {
	if !w.IsOpen() {
		return nil
	}
	return w.forward("raise", w.backend.RaiseWindow(w.handle))
}

// SetResizable controls whether the user may resize the window.
func (w *Window) SetResizable(on bool) error {
	return w.setFlag("set resizable", platform.WindowResizable, on)
}

// SetBordered adds or removes window decorations.
func (w *Window) SetBordered(on bool) error {
	return w.setFlag("set bordered", platform.WindowBorderless, !on)
}

// SetAlwaysOnTop keeps the window above others.
func (w *Window) SetAlwaysOnTop(on bool) error {
	return w.setFlag("set always on top", platform.WindowAlwaysOnTop, on)
}

// SetFocusable controls whether the window accepts input focus.
func (w *Window) SetFocusable(on bool) error {
	return w.setFlag("set focusable", platform.WindowNotFocusable, !on)
}

// SetMouseGrab confines the pointer to the window.
func (w *Window) SetMouseGrab(on bool) error {
	return w.setFlag("set mouse grab", platform.WindowMouseGrabbed, on)
}

// SetKeyboardGrab routes all keyboard input to the window.
func (w *Window) SetKeyboardGrab(on bool) error {
	return w.setFlag("set keyboard grab", platform.WindowKeyboardGrabbed, on)
}

// SetRelativeMouseMode hides the pointer and reports motion as deltas.
func (w *Window) SetRelativeMouseMode(on bool) error {
	return w.setFlag("set relative mouse mode", platform.WindowRelativeMouse, on)
}

// CaptureMouse keeps delivering pointer events to the window while the
// pointer is outside it.
func (w *Window) CaptureMouse(on bool) error {
	return w.setFlag("capture mouse", platform.WindowMouseCaptured, on)
}

// SetMouseClip confines the pointer to r, in window coordinates, while the
// window has mouse focus. An empty rectangle removes the confinement. The
// clip is kept while the window is closed and applied when it is created
// again.
func (w *Window) SetMouseClip(r platform.Rect) error {
	if r.Width < 0 || r.Height < 0 {
		return fmt.Errorf("window %d: set mouse clip: %w", w.id, ErrInvalidRect)
	}
	if r.Empty() {
		r = platform.Rect{}
	}
	if r == w.mouseClip {
		return nil
	}
	w.mouseClip = r
	if !w.IsOpen() {
		return nil
	}
	w.logger.Debug("mouse clip requested", "rect", r)
	return w.forward("set mouse clip", w.backend.SetWindowMouseRect(w.handle, r))
}

// SetFullscreenMode selects the display mode used while fullscreen. Nil
// returns to the desktop mode. Like the mouse clip it survives Close. Unlike
// the other mutators it checks with the backend first: a mode the display
// cannot drive is rejected and the cache keeps the previous mode.
func (w *Window) SetFullscreenMode(mode *platform.DisplayMode) error {
	if sameMode(mode, w.fullscreenMode) {
		return nil
	}
	if w.IsOpen() {
		if err := w.backend.SetWindowFullscreenMode(w.handle, mode); err != nil {
			return w.forward("set fullscreen mode", err)
		}
	}
	if mode != nil {
		copied := *mode
		mode = &copied
	}
	w.fullscreenMode = mode
	return nil
}

func sameMode(a, b *platform.DisplayMode) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// Flash asks for the user's attention without taking focus.
func (w *Window) Flash(state platform.FlashState) error {
	if !w.IsOpen() {
		return nil
	}
	w.logger.Debug("flash requested", "state", state)
	return w.forward("flash", w.backend.FlashWindow(w.handle, state))
}

// WarpMouse moves the pointer to x, y in window coordinates. Motion is
// reported through the event queue like any other pointer movement.
func (w *Window) WarpMouse(x, y int) error {
	if !w.IsOpen() {
		return nil
	}
	return w.forward("warp mouse", w.backend.WarpMouse(w.handle, x, y))
}
