package x11

import (
	"fmt"
	"os"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/motif"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/BurntSushi/xgbutil/xwindow"
)

// _NET_WM_STATE client message actions.
const (
	netWMStateRemove = 0
	netWMStateAdd    = 1
)

// EWMH state atoms used by the backend.
const (
	StateFullscreen = "_NET_WM_STATE_FULLSCREEN"
	StateMaxHorz    = "_NET_WM_STATE_MAXIMIZED_HORZ"
	StateMaxVert    = "_NET_WM_STATE_MAXIMIZED_VERT"
	StateHidden     = "_NET_WM_STATE_HIDDEN"
	StateAbove      = "_NET_WM_STATE_ABOVE"
	StateAttention  = "_NET_WM_STATE_DEMANDS_ATTENTION"
)

const clientEventMask = xproto.EventMaskExposure |
	xproto.EventMaskStructureNotify |
	xproto.EventMaskPropertyChange |
	xproto.EventMaskFocusChange |
	xproto.EventMaskEnterWindow |
	xproto.EventMaskLeaveWindow |
	xproto.EventMaskVisibilityChange |
	xproto.EventMaskKeyPress |
	xproto.EventMaskKeyRelease |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPointerMotion

// WindowConfig describes a top-level window to create.
type WindowConfig struct {
	Title        string
	X, Y         int
	Width        int
	Height       int
	Resizable    bool
	Borderless   bool
	Hidden       bool
	Minimized    bool
	Maximized    bool
	Fullscreen   bool
	AlwaysOnTop  bool
	NotFocusable bool
}

// CreateWindow creates and, unless hidden, maps a top-level window with the
// ICCCM and EWMH properties a window manager expects.
func (c *Connection) CreateWindow(cfg WindowConfig) (*xwindow.Window, error) {
	win, err := xwindow.Generate(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("generate window id: %w", err)
	}

	err = win.CreateChecked(c.Root, cfg.X, cfg.Y, cfg.Width, cfg.Height,
		xproto.CwBackPixel|xproto.CwEventMask,
		c.XUtil.Screen().BlackPixel, clientEventMask)
	if err != nil {
		return nil, fmt.Errorf("create window: %w", err)
	}

	id := win.Id
	if err := icccm.WmProtocolsSet(c.XUtil, id, []string{"WM_DELETE_WINDOW"}); err != nil {
		win.Destroy()
		return nil, fmt.Errorf("set WM_PROTOCOLS: %w", err)
	}
	if err := c.SetTitle(id, cfg.Title); err != nil {
		win.Destroy()
		return nil, err
	}
	if err := icccm.WmClassSet(c.XUtil, id, &icccm.WmClass{Instance: "aquila", Class: "Aquila"}); err != nil {
		c.logger.Debug("set WM_CLASS failed", "window", id, "error", err)
	}
	if err := ewmh.WmPidSet(c.XUtil, id, uint(os.Getpid())); err != nil {
		c.logger.Debug("set _NET_WM_PID failed", "window", id, "error", err)
	}

	if !cfg.Resizable {
		if err := c.SetSizeHints(id, cfg.Width, cfg.Height, cfg.Width, cfg.Height); err != nil {
			c.logger.Debug("set fixed size hints failed", "window", id, "error", err)
		}
	}
	if cfg.Borderless {
		if err := c.SetBorderless(id, true); err != nil {
			c.logger.Debug("set motif hints failed", "window", id, "error", err)
		}
	}

	hints := &icccm.Hints{
		Flags:        icccm.HintInput | icccm.HintState,
		Input:        1,
		InitialState: icccm.StateNormal,
	}
	if cfg.NotFocusable {
		hints.Input = 0
	}
	if cfg.Minimized {
		hints.InitialState = icccm.StateIconic
	}
	if err := icccm.WmHintsSet(c.XUtil, id, hints); err != nil {
		c.logger.Debug("set WM_HINTS failed", "window", id, "error", err)
	}

	// Before mapping, _NET_WM_STATE is set directly on the window rather than
	// requested from the window manager.
	var states []string
	if cfg.Fullscreen {
		states = append(states, StateFullscreen)
	}
	if cfg.Maximized {
		states = append(states, StateMaxHorz, StateMaxVert)
	}
	if cfg.AlwaysOnTop {
		states = append(states, StateAbove)
	}
	if len(states) > 0 {
		if err := ewmh.WmStateSet(c.XUtil, id, states); err != nil {
			c.logger.Debug("set initial _NET_WM_STATE failed", "window", id, "error", err)
		}
	}

	if !cfg.Hidden {
		win.Map()
	}
	return win, nil
}

// SetTitle sets both the ICCCM and the EWMH (UTF-8) title.
func (c *Connection) SetTitle(windowID xproto.Window, title string) error {
	if err := icccm.WmNameSet(c.XUtil, windowID, title); err != nil {
		return fmt.Errorf("set WM_NAME: %w", err)
	}
	if err := ewmh.WmNameSet(c.XUtil, windowID, title); err != nil {
		return fmt.Errorf("set _NET_WM_NAME: %w", err)
	}
	return nil
}

// SetNetState asks the window manager to add or remove a _NET_WM_STATE atom.
func (c *Connection) SetNetState(windowID xproto.Window, state string, on bool) error {
	action := netWMStateRemove
	if on {
		action = netWMStateAdd
	}
	if err := ewmh.WmStateReq(c.XUtil, windowID, action, state); err != nil {
		return fmt.Errorf("request %s: %w", state, err)
	}
	return nil
}

// SetMaximized adds or removes both maximized states.
func (c *Connection) SetMaximized(windowID xproto.Window, on bool) error {
	if err := c.SetNetState(windowID, StateMaxHorz, on); err != nil {
		return err
	}
	return c.SetNetState(windowID, StateMaxVert, on)
}

// NetState returns the window's current _NET_WM_STATE atoms.
func (c *Connection) NetState(windowID xproto.Window) ([]string, error) {
	return ewmh.WmStateGet(c.XUtil, windowID)
}

// IsIconic reports whether WM_STATE says the window is iconified.
func (c *Connection) IsIconic(windowID xproto.Window) bool {
	state, err := icccm.WmStateGet(c.XUtil, windowID)
	if err != nil {
		return false
	}
	return state.State == icccm.StateIconic
}

// SetSizeHints publishes WM_NORMAL_HINTS. Zero leaves a limit unset.
func (c *Connection) SetSizeHints(windowID xproto.Window, minW, minH, maxW, maxH int) error {
	hints := &icccm.NormalHints{}
	if minW > 0 || minH > 0 {
		hints.Flags |= icccm.SizeHintPMinSize
		hints.MinWidth, hints.MinHeight = uint(minW), uint(minH)
	}
	if maxW > 0 || maxH > 0 {
		hints.Flags |= icccm.SizeHintPMaxSize
		hints.MaxWidth, hints.MaxHeight = uint(maxW), uint(maxH)
		// An unset axis must not cap the other one at zero.
		if maxW == 0 {
			hints.MaxWidth = 1<<15 - 1
		}
		if maxH == 0 {
			hints.MaxHeight = 1<<15 - 1
		}
	}
	if err := icccm.WmNormalHintsSet(c.XUtil, windowID, hints); err != nil {
		return fmt.Errorf("set WM_NORMAL_HINTS: %w", err)
	}
	return nil
}

// SetBorderless toggles window decorations through Motif hints, which every
// common window manager still honors.
func (c *Connection) SetBorderless(windowID xproto.Window, on bool) error {
	hints := &motif.Hints{
		Flags:      motif.HintDecorations,
		Decoration: motif.DecorationAll,
	}
	if on {
		hints.Decoration = motif.DecorationNone
	}
	if err := motif.WmHintsSet(c.XUtil, windowID, hints); err != nil {
		return fmt.Errorf("set _MOTIF_WM_HINTS: %w", err)
	}
	return nil
}

// SetFocusable sets the ICCCM input hint.
func (c *Connection) SetFocusable(windowID xproto.Window, on bool) error {
	return c.updateHints(windowID, func(h *icccm.Hints) {
		h.Flags |= icccm.HintInput
		h.Input = 0
		if on {
			h.Input = 1
		}
	})
}

// SetUrgent sets or clears the ICCCM urgency hint and the matching EWMH
// demands-attention state.
func (c *Connection) SetUrgent(windowID xproto.Window, on bool) error {
	err := c.updateHints(windowID, func(h *icccm.Hints) {
		if on {
			h.Flags |= icccm.HintUrgency
		} else {
			h.Flags &^= icccm.HintUrgency
		}
	})
	if err != nil {
		return err
	}
	return c.SetNetState(windowID, StateAttention, on)
}

// updateHints rewrites WM_HINTS, keeping the fields set by other callers.
func (c *Connection) updateHints(windowID xproto.Window, edit func(*icccm.Hints)) error {
	hints, err := icccm.WmHintsGet(c.XUtil, windowID)
	if err != nil || hints == nil {
		hints = &icccm.Hints{}
	}
	edit(hints)
	if err := icccm.WmHintsSet(c.XUtil, windowID, hints); err != nil {
		return fmt.Errorf("set WM_HINTS: %w", err)
	}
	return nil
}

// SetOpacity sets _NET_WM_WINDOW_OPACITY. Full opacity removes the property,
// which compositors treat as opaque.
func (c *Connection) SetOpacity(windowID xproto.Window, opacity float32) error {
	if opacity >= 1 {
		atom, err := c.Atom("_NET_WM_WINDOW_OPACITY")
		if err != nil {
			return err
		}
		return xproto.DeletePropertyChecked(c.XUtil.Conn(), windowID, atom).Check()
	}
	if !(opacity > 0) {
		opacity = 0
	}
	value := uint(float64(opacity) * 0xffffffff)
	if err := xprop.ChangeProp32(c.XUtil, windowID, "_NET_WM_WINDOW_OPACITY", "CARDINAL", value); err != nil {
		return fmt.Errorf("set _NET_WM_WINDOW_OPACITY: %w", err)
	}
	return nil
}

// Geometry returns the window's position in root coordinates and its size.
func (c *Connection) Geometry(windowID xproto.Window) (x, y, width, height int, err error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(windowID)).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}

	translate, err := xproto.TranslateCoordinates(
		c.XUtil.Conn(),
		windowID,
		c.Root,
		0, 0,
	).Reply()
	if err != nil {
		return 0, 0, 0, 0, err
	}

	return int(translate.DstX), int(translate.DstY), int(geom.Width), int(geom.Height), nil
}
