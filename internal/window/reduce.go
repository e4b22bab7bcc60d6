package window

import "github.com/kappaduck/aquila/internal/platform"

// State is the part of a window's cache that native events may change.
type State struct {
	Flags       platform.WindowFlags
	Position    platform.Point
	Width       int
	Height      int
	PixelWidth  int
	PixelHeight int
}

// Reduce returns s with ev applied. The caller is responsible for checking
// that ev belongs to the window s describes; event types that carry no window
// state leave s unchanged.
func Reduce(s State, ev platform.Event) State {
	switch ev.Type {
	case platform.EventWindowExposed:
		s.Flags &^= platform.WindowOccluded
	case platform.EventWindowOccluded:
		s.Flags |= platform.WindowOccluded
	case platform.EventWindowResized:
		s.Width, s.Height = int(ev.Data1), int(ev.Data2)
	case platform.EventWindowPixelSizeChanged:
		s.PixelWidth, s.PixelHeight = int(ev.Data1), int(ev.Data2)
	case platform.EventWindowMoved:
		s.Position = platform.Point{X: int(ev.Data1), Y: int(ev.Data2)}
	case platform.EventWindowMouseEnter:
		s.Flags |= platform.WindowMouseFocus
	case platform.EventWindowMouseLeave:
		s.Flags &^= platform.WindowMouseFocus
	case platform.EventWindowFocusGained:
		s.Flags |= platform.WindowInputFocus
	case platform.EventWindowFocusLost:
		s.Flags &^= platform.WindowInputFocus
	case platform.EventWindowRestored:
		s.Flags &^= platform.WindowMinimized | platform.WindowMaximized
	case platform.EventWindowMinimized:
		s.Flags |= platform.WindowMinimized
	case platform.EventWindowMaximized:
		s.Flags = (s.Flags | platform.WindowMaximized) &^ platform.WindowMinimized
	case platform.EventWindowShown:
		s.Flags &^= platform.WindowHidden
	case platform.EventWindowHidden:
		s.Flags |= platform.WindowHidden
	case platform.EventWindowEnterFullscreen:
		s.Flags |= platform.WindowFullscreen
	case platform.EventWindowLeaveFullscreen:
		s.Flags &^= platform.WindowFullscreen
	}
	return s
}

// State returns a snapshot of the event-driven part of the cache.
func (w *Window) State() State {
	return State{
		Flags:       w.flags,
		Position:    w.pos,
		Width:       w.width,
		Height:      w.height,
		PixelWidth:  w.pixelWidth,
		PixelHeight: w.pixelHeight,
	}
}

// Apply updates the cache from ev when ev concerns this window, and reports
// whether it did. Events for other windows are ignored.
func (w *Window) Apply(ev platform.Event) bool {
	if w.id == 0 || ev.WindowID != w.id || !ev.Type.IsWindowEvent() {
		return false
	}

	if ev.Type == platform.EventWindowDestroyed {
		w.destroyed = true
		w.logger.Debug("native window destroyed")
		return true
	}

	prev := w.State()
	next := Reduce(prev, ev)

	w.flags = next.Flags
	w.pos = next.Position
	w.width, w.height = next.Width, next.Height
	w.pixelWidth, w.pixelHeight = next.PixelWidth, next.PixelHeight

	switch ev.Type {
	case platform.EventWindowMoved:
		w.requested.X, w.requested.Y = next.Position.X, next.Position.Y
	case platform.EventWindowResized:
		w.requested.Width, w.requested.Height = next.Width, next.Height
	}

	if prev.Flags != next.Flags {
		w.logger.Debug("state confirmed",
			"event", ev.Type,
			"set", next.Flags&^prev.Flags,
			"cleared", prev.Flags&^next.Flags)
	}
	return true
}
