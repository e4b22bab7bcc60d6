package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/keybind"
)

// Pointer is a snapshot of the pointer in root coordinates.
type Pointer struct {
	X, Y  int
	Mask  uint16
	Child xproto.Window
}

// QueryPointer returns the pointer position and the button/modifier mask.
func (c *Connection) QueryPointer() (Pointer, error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return Pointer{}, fmt.Errorf("query pointer: %w", err)
	}
	return Pointer{
		X:     int(reply.RootX),
		Y:     int(reply.RootY),
		Mask:  reply.Mask,
		Child: reply.Child,
	}, nil
}

// InputFocus returns the window holding keyboard focus.
func (c *Connection) InputFocus() (xproto.Window, error) {
	reply, err := xproto.GetInputFocus(c.XUtil.Conn()).Reply()
	if err != nil {
		return 0, fmt.Errorf("get input focus: %w", err)
	}
	return reply.Focus, nil
}

// GrabPointer routes pointer events to windowID. With confine set the pointer
// cannot leave the window.
func (c *Connection) GrabPointer(windowID xproto.Window, confine bool) error {
	confineTo := xproto.Window(xproto.WindowNone)
	if confine {
		confineTo = windowID
	}
	mask := uint16(xproto.EventMaskButtonPress | xproto.EventMaskButtonRelease |
		xproto.EventMaskPointerMotion | xproto.EventMaskEnterWindow | xproto.EventMaskLeaveWindow)
	reply, err := xproto.GrabPointer(c.XUtil.Conn(), true, windowID, mask,
		xproto.GrabModeAsync, xproto.GrabModeAsync,
		confineTo, xproto.CursorNone, xproto.TimeCurrentTime).Reply()
	if err != nil {
		return fmt.Errorf("grab pointer: %w", err)
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("grab pointer: status %d", reply.Status)
	}
	return nil
}

// UngrabPointer releases a pointer grab.
func (c *Connection) UngrabPointer() error {
	return xproto.UngrabPointerChecked(c.XUtil.Conn(), xproto.TimeCurrentTime).Check()
}

// GrabKeyboard routes all keyboard events to windowID.
func (c *Connection) GrabKeyboard(windowID xproto.Window) error {
	reply, err := xproto.GrabKeyboard(c.XUtil.Conn(), true, windowID,
		xproto.TimeCurrentTime, xproto.GrabModeAsync, xproto.GrabModeAsync).Reply()
	if err != nil {
		return fmt.Errorf("grab keyboard: %w", err)
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("grab keyboard: status %d", reply.Status)
	}
	return nil
}

// UngrabKeyboard releases a keyboard grab.
func (c *Connection) UngrabKeyboard() error {
	return xproto.UngrabKeyboardChecked(c.XUtil.Conn(), xproto.TimeCurrentTime).Check()
}

// WarpPointer moves the pointer to (x, y) relative to windowID.
func (c *Connection) WarpPointer(windowID xproto.Window, x, y int) error {
	err := xproto.WarpPointerChecked(c.XUtil.Conn(), xproto.WindowNone, windowID,
		0, 0, 0, 0, int16(x), int16(y)).Check()
	if err != nil {
		return fmt.Errorf("warp pointer: %w", err)
	}
	return nil
}

// ResetScreenSaver restarts the server's screen saver timer.
func (c *Connection) ResetScreenSaver() error {
	err := xproto.ForceScreenSaverChecked(c.XUtil.Conn(), xproto.ScreenSaverReset).Check()
	if err != nil {
		return fmt.Errorf("reset screen saver: %w", err)
	}
	return nil
}

// KeyName returns the keysym name for a key event, e.g. "a" or "Escape".
func (c *Connection) KeyName(state uint16, keycode xproto.Keycode) string {
	return keybind.LookupString(c.XUtil, state, keycode)
}
