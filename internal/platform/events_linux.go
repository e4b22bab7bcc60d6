//go:build linux

package platform

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/kappaduck/aquila/internal/x11"
)

// translate turns one X event into zero or more platform events, updating the
// backend's own view of the window on the way.
func (b *X11Backend) translate(xev xgb.Event) []Event {
	switch e := xev.(type) {
	case xproto.ConfigureNotifyEvent:
		return b.onConfigure(e)
	case xproto.MapNotifyEvent:
		return b.onMap(e.Window)
	case xproto.UnmapNotifyEvent:
		return b.onUnmap(e.Window)
	case xproto.ExposeEvent:
		if e.Count != 0 {
			return nil
		}
		return b.simple(e.Window, EventWindowExposed)
	case xproto.VisibilityNotifyEvent:
		if e.State == xproto.VisibilityFullyObscured {
			return b.simple(e.Window, EventWindowOccluded)
		}
		return b.simple(e.Window, EventWindowExposed)
	case xproto.EnterNotifyEvent:
		if e.Detail == xproto.NotifyDetailInferior {
			return nil
		}
		if w, ok := b.byXID[e.Event]; ok {
			b.mouseFocus = w.id()
		}
		return b.simple(e.Event, EventWindowMouseEnter)
	case xproto.LeaveNotifyEvent:
		if e.Detail == xproto.NotifyDetailInferior {
			return nil
		}
		if w, ok := b.byXID[e.Event]; ok && b.mouseFocus == w.id() {
			b.mouseFocus = 0
		}
		return b.simple(e.Event, EventWindowMouseLeave)
	case xproto.FocusInEvent:
		if e.Mode == xproto.NotifyModeGrab || e.Mode == xproto.NotifyModeUngrab {
			return nil
		}
		return b.simple(e.Event, EventWindowFocusGained)
	case xproto.FocusOutEvent:
		if e.Mode == xproto.NotifyModeGrab || e.Mode == xproto.NotifyModeUngrab {
			return nil
		}
		return b.simple(e.Event, EventWindowFocusLost)
	case xproto.PropertyNotifyEvent:
		if b.conn.AtomName(e.Atom) != "_NET_WM_STATE" {
			return nil
		}
		return b.onNetState(e.Window)
	case xproto.ClientMessageEvent:
		if !b.conn.IsDeleteRequest(e) {
			return nil
		}
		return b.simple(e.Window, EventWindowCloseRequested)
	case xproto.DestroyNotifyEvent:
		w, ok := b.byXID[e.Window]
		if !ok {
			return nil
		}
		delete(b.byXID, e.Window)
		delete(b.windows, w.handle)
		return []Event{b.event(w, EventWindowDestroyed, 0, 0)}
	case xproto.KeyPressEvent:
		return b.key(e.Event, EventKeyDown, e.State, e.Detail)
	case xproto.KeyReleaseEvent:
		return b.key(e.Event, EventKeyUp, e.State, e.Detail)
	case xproto.ButtonPressEvent:
		return b.button(e.Event, true, e.Detail, e.EventX, e.EventY)
	case xproto.ButtonReleaseEvent:
		return b.button(e.Event, false, e.Detail, e.EventX, e.EventY)
	case xproto.MotionNotifyEvent:
		return b.motion(e)
	case randr.ScreenChangeNotifyEvent, randr.NotifyEvent:
		return []Event{{Type: EventDisplaysChanged, Timestamp: b.now()}}
	}
	return nil
}

func (b *X11Backend) event(w *x11Window, typ EventType, d1, d2 int) Event {
	return Event{
		Type:      typ,
		Timestamp: b.now(),
		WindowID:  w.id(),
		Data1:     int32(d1),
		Data2:     int32(d2),
	}
}

func (b *X11Backend) simple(xid xproto.Window, typ EventType) []Event {
	w, ok := b.byXID[xid]
	if !ok {
		return nil
	}
	switch typ {
	case EventWindowFocusGained:
		w.flags |= WindowInputFocus
		if w.urgent {
			b.clearUrgentLocked(w)
		}
	case EventWindowFocusLost:
		w.flags &^= WindowInputFocus
	case EventWindowMouseEnter:
		w.flags |= WindowMouseFocus
	case EventWindowMouseLeave:
		w.flags &^= WindowMouseFocus
	case EventWindowOccluded:
		w.flags |= WindowOccluded
	case EventWindowExposed:
		w.flags &^= WindowOccluded
	}
	return []Event{b.event(w, typ, 0, 0)}
}

func (b *X11Backend) onConfigure(e xproto.ConfigureNotifyEvent) []Event {
	w, ok := b.byXID[e.Window]
	if !ok {
		return nil
	}
	// Reparenting window managers report positions relative to the frame,
	// so the root position is looked up instead.
	next := Rect{X: int(e.X), Y: int(e.Y), Width: int(e.Width), Height: int(e.Height)}
	if x, y, _, _, err := b.conn.Geometry(e.Window); err == nil {
		next.X, next.Y = x, y
	}

	var out []Event
	if next.X != w.bounds.X || next.Y != w.bounds.Y {
		out = append(out, b.event(w, EventWindowMoved, next.X, next.Y))
	}
	if next.Width != w.bounds.Width || next.Height != w.bounds.Height {
		out = append(out,
			b.event(w, EventWindowResized, next.Width, next.Height),
			b.event(w, EventWindowPixelSizeChanged, next.Width, next.Height))
	}
	w.bounds = next
	return out
}

func (b *X11Backend) onMap(xid xproto.Window) []Event {
	w, ok := b.byXID[xid]
	if !ok {
		return nil
	}
	var out []Event
	if w.flags.Has(WindowMinimized) {
		w.flags &^= WindowMinimized
		out = append(out, b.event(w, EventWindowRestored, 0, 0))
	}
	if w.flags.Has(WindowHidden) {
		w.flags &^= WindowHidden
	}
	out = append(out, b.event(w, EventWindowShown, 0, 0))
	return out
}

// onUnmap distinguishes iconify, which the window manager records in
// WM_STATE, from a plain hide.
func (b *X11Backend) onUnmap(xid xproto.Window) []Event {
	w, ok := b.byXID[xid]
	if !ok {
		return nil
	}
	if b.conn.IsIconic(xid) {
		if w.flags.Has(WindowMinimized) {
			return nil
		}
		w.flags = (w.flags | WindowMinimized) &^ WindowInputFocus
		return []Event{b.event(w, EventWindowMinimized, 0, 0)}
	}
	w.flags |= WindowHidden
	return []Event{b.event(w, EventWindowHidden, 0, 0)}
}

// onNetState diffs _NET_WM_STATE against the last value seen.
func (b *X11Backend) onNetState(xid xproto.Window) []Event {
	w, ok := b.byXID[xid]
	if !ok {
		return nil
	}
	states, err := b.conn.NetState(xid)
	if err != nil {
		return nil
	}
	next := make(map[string]bool, len(states))
	for _, s := range states {
		next[s] = true
	}
	prev := w.netState
	w.netState = next

	var out []Event
	if on := next[x11.StateFullscreen]; on != prev[x11.StateFullscreen] {
		w.flags = w.flags.With(WindowFullscreen, on)
		if on {
			out = append(out, b.event(w, EventWindowEnterFullscreen, 0, 0))
		} else {
			out = append(out, b.event(w, EventWindowLeaveFullscreen, 0, 0))
		}
	}

	maxed := next[x11.StateMaxHorz] && next[x11.StateMaxVert]
	wasMaxed := prev[x11.StateMaxHorz] && prev[x11.StateMaxVert]
	switch {
	case maxed && !wasMaxed:
		w.flags = (w.flags | WindowMaximized) &^ WindowMinimized
		out = append(out, b.event(w, EventWindowMaximized, 0, 0))
	case !maxed && wasMaxed && !next[x11.StateHidden]:
		w.flags &^= WindowMaximized
		out = append(out, b.event(w, EventWindowRestored, 0, 0))
	}

	if on := next[x11.StateHidden]; on != prev[x11.StateHidden] {
		switch {
		case on && !w.flags.Has(WindowMinimized):
			w.flags = (w.flags | WindowMinimized) &^ WindowInputFocus
			out = append(out, b.event(w, EventWindowMinimized, 0, 0))
		case !on && w.flags.Has(WindowMinimized):
			w.flags &^= WindowMinimized
			out = append(out, b.event(w, EventWindowRestored, 0, 0))
		}
	}

	if on := next[x11.StateAbove]; on != prev[x11.StateAbove] {
		w.flags = w.flags.With(WindowAlwaysOnTop, on)
	}
	return out
}

func (b *X11Backend) key(xid xproto.Window, typ EventType, state uint16, code xproto.Keycode) []Event {
	w, ok := b.byXID[xid]
	if !ok {
		return nil
	}
	ev := b.event(w, typ, int(code), int(modifiersFromMask(state)))
	ev.Key = b.conn.KeyName(state, code)
	return []Event{ev}
}

func (b *X11Backend) button(xid xproto.Window, down bool, detail xproto.Button, x, y int16) []Event {
	w, ok := b.byXID[xid]
	if !ok {
		return nil
	}
	// Buttons 4-7 are the scroll wheel; only the press carries meaning.
	switch detail {
	case 4, 5, 6, 7:
		if !down {
			return nil
		}
		dx, dy := 0, 0
		switch detail {
		case 4:
			dy = 1
		case 5:
			dy = -1
		case 6:
			dx = -1
		case 7:
			dx = 1
		}
		return []Event{b.event(w, EventMouseWheel, dx, dy)}
	}

	btn := buttonFromDetail(detail)
	if btn == 0 {
		return nil
	}
	typ := EventMouseButtonUp
	if down {
		typ = EventMouseButtonDown
		b.buttons |= btn
	} else {
		b.buttons &^= btn
	}
	ev := b.event(w, typ, int(x), int(y))
	ev.Button = btn
	return []Event{ev}
}

// motion reports window coordinates, or deltas in relative mouse mode.
func (b *X11Backend) motion(e xproto.MotionNotifyEvent) []Event {
	w, ok := b.byXID[e.Event]
	if !ok {
		return nil
	}
	pos := Point{X: int(e.EventX), Y: int(e.EventY)}
	if r := w.mouseRect; !r.Empty() && w.flags.Has(WindowMouseFocus) && !r.Contains(pos.X, pos.Y) {
		p := r.Clamp(pos.X, pos.Y)
		if err := b.conn.WarpPointer(w.win.Id, p.X, p.Y); err == nil {
			pos = p
		}
	}
	d1, d2 := pos.X, pos.Y
	if w.flags.Has(WindowRelativeMouse) {
		d1, d2 = pos.X-w.pointer.X, pos.Y-w.pointer.Y
	}
	w.pointer = pos
	ev := b.event(w, EventMouseMotion, d1, d2)
	ev.Button = buttonsFromMask(e.State)
	return []Event{ev}
}

func buttonFromDetail(detail xproto.Button) MouseButtons {
	switch detail {
	case 1:
		return ButtonLeft
	case 2:
		return ButtonMiddle
	case 3:
		return ButtonRight
	case 8:
		return ButtonX1
	case 9:
		return ButtonX2
	}
	return 0
}

func buttonsFromMask(mask uint16) MouseButtons {
	var b MouseButtons
	if mask&xproto.KeyButMaskButton1 != 0 {
		b |= ButtonLeft
	}
	if mask&xproto.KeyButMaskButton2 != 0 {
		b |= ButtonMiddle
	}
	if mask&xproto.KeyButMaskButton3 != 0 {
		b |= ButtonRight
	}
	return b
}

func modifiersFromMask(mask uint16) Modifiers {
	var m Modifiers
	if mask&xproto.ModMaskShift != 0 {
		m |= ModShift
	}
	if mask&xproto.ModMaskControl != 0 {
		m |= ModCtrl
	}
	if mask&xproto.ModMask1 != 0 {
		m |= ModAlt
	}
	if mask&xproto.ModMask4 != 0 {
		m |= ModSuper
	}
	if mask&xproto.ModMaskLock != 0 {
		m |= ModCapsLock
	}
	if mask&xproto.ModMask2 != 0 {
		m |= ModNumLock
	}
	return m
}
