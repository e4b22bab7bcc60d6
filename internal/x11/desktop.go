package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
)

// sendRootMessage sends a 32-bit client message about windowID to the root
// window, where the window manager listens for it. The message is built by
// hand because some xgbutil ewmh request helpers panic on this library
// version (uint vs int type assertion).
func (c *Connection) sendRootMessage(windowID xproto.Window, atomName string, data ...uint32) error {
	atom, err := c.Atom(atomName)
	if err != nil {
		return err
	}

	payload := make([]uint32, 5)
	copy(payload, data)
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: windowID,
		Type:   atom,
		Data:   xproto.ClientMessageDataUnionData32New(payload),
	}

	err = xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.Root,
		xproto.EventMaskSubstructureRedirect|xproto.EventMaskSubstructureNotify,
		string(ev.Bytes()),
	).Check()
	if err != nil {
		return fmt.Errorf("send %s: %w", atomName, err)
	}
	return nil
}

// Activate raises a window and asks for input focus using _NET_ACTIVE_WINDOW.
func (c *Connection) Activate(windowID xproto.Window) error {
	const sourceIndication = 1 // normal application
	return c.sendRootMessage(windowID, "_NET_ACTIVE_WINDOW", sourceIndication, uint32(xproto.TimeCurrentTime))
}

// Iconify minimizes a window via WM_CHANGE_STATE.
func (c *Connection) Iconify(windowID xproto.Window) error {
	const iconicState = 3
	return c.sendRootMessage(windowID, "WM_CHANGE_STATE", iconicState)
}

// IsDeleteRequest reports whether ev is the window manager asking the client
// to close its window.
func (c *Connection) IsDeleteRequest(ev xproto.ClientMessageEvent) bool {
	if ev.Format != 32 || c.AtomName(ev.Type) != "WM_PROTOCOLS" {
		return false
	}
	return c.AtomName(xproto.Atom(ev.Data.Data32[0])) == "WM_DELETE_WINDOW"
}
