package x11

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xprop"
)

// Connection manages the X11 connection and core X resources
type Connection struct {
	XUtil  *xgbutil.XUtil
	Root   xproto.Window
	logger *slog.Logger
	randr  bool
}

// NewConnection establishes a connection to the X11 server and initializes required extensions
func NewConnection(logger *slog.Logger) (*Connection, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	// Needed for keysym lookup on key events.
	keybind.Initialize(xu)

	c := &Connection{
		XUtil:  xu,
		Root:   xu.RootWin(),
		logger: logger,
	}
	if err := randr.Init(xu.Conn()); err != nil {
		logger.Warn("randr unavailable, display changes will not be reported", "error", err)
	} else {
		c.randr = true
		err := randr.SelectInputChecked(xu.Conn(), c.Root,
			randr.NotifyMaskScreenChange|randr.NotifyMaskCrtcChange|randr.NotifyMaskOutputChange).Check()
		if err != nil {
			logger.Warn("randr select input failed", "error", err)
		}
	}
	return c, nil
}

// Close cleanly disconnects from the X11 server
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}

// Atom interns name, caching the result.
func (c *Connection) Atom(name string) (xproto.Atom, error) {
	atom, err := xprop.Atm(c.XUtil, name)
	if err != nil {
		return 0, fmt.Errorf("intern %s: %w", name, err)
	}
	return atom, nil
}

// AtomName resolves an atom back to its name.
func (c *Connection) AtomName(atom xproto.Atom) string {
	name, err := xprop.AtomName(c.XUtil, atom)
	if err != nil {
		return ""
	}
	return name
}

// NextEvent returns the next queued event without blocking. Protocol errors
// that arrive in the queue are logged and skipped.
func (c *Connection) NextEvent() (xgb.Event, bool) {
	for {
		ev, xerr := c.XUtil.Conn().PollForEvent()
		if xerr != nil {
			c.logger.Debug("x11 protocol error", "error", xerr)
			continue
		}
		if ev == nil {
			return nil, false
		}
		return ev, true
	}
}

// Sync performs a round trip, so every request sent before it has been
// processed by the server and its events are queued locally.
func (c *Connection) Sync(ctx context.Context) error {
	done := make(chan error, 1)
	go func() {
		_, err := xproto.GetInputFocus(c.XUtil.Conn()).Reply()
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
