package x11

import (
	"fmt"
	"math"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
)

// Monitor represents a physical display
type Monitor struct {
	ID      int
	Name    string
	Primary bool
	X       int
	Y       int
	Width   int
	Height  int

	// Usable area, excluding docks and panels.
	UsableX      int
	UsableY      int
	UsableWidth  int
	UsableHeight int

	RefreshRate float64
	Scale       float64

	// Mode is the CRTC's current mode; Modes are those its output supports.
	Mode  Mode
	Modes []Mode
}

// Mode is a RandR mode reduced to its size and refresh rate.
type Mode struct {
	Width       int
	Height      int
	RefreshRate float64
	// DotClock / (Htotal * Vtotal) is the exact refresh rate.
	DotClock uint32
	Htotal   int
	Vtotal   int
}

func modeFromInfo(info randr.ModeInfo) Mode {
	return Mode{
		Width:       int(info.Width),
		Height:      int(info.Height),
		RefreshRate: refreshRate(info),
		DotClock:    info.DotClock,
		Htotal:      int(info.Htotal),
		Vtotal:      int(info.Vtotal),
	}
}

// GetMonitors retrieves all active monitors using XRandR
func (c *Connection) GetMonitors() ([]Monitor, error) {
	if !c.randr {
		return nil, fmt.Errorf("randr extension not available")
	}

	// Get screen resources
	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var primary randr.Output
	if reply, err := randr.GetOutputPrimary(c.XUtil.Conn(), c.Root).Reply(); err == nil {
		primary = reply.Output
	}

	modes := make(map[uint32]randr.ModeInfo, len(resources.Modes))
	for _, m := range resources.Modes {
		modes[m.Id] = m
	}

	var monitors []Monitor

	// Query each CRTC for active monitors
	for i, crtc := range resources.Crtcs {
		crtcInfo, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}

		// Skip disabled CRTCs
		if crtcInfo.Width == 0 || crtcInfo.Height == 0 || len(crtcInfo.Outputs) == 0 {
			continue
		}

		m := Monitor{
			ID:     i,
			Name:   fmt.Sprintf("Monitor%d", i),
			X:      int(crtcInfo.X),
			Y:      int(crtcInfo.Y),
			Width:  int(crtcInfo.Width),
			Height: int(crtcInfo.Height),
			Scale:  1,
		}
		for _, out := range crtcInfo.Outputs {
			if out == primary && primary != 0 {
				m.Primary = true
			}
		}

		outputInfo, err := randr.GetOutputInfo(c.XUtil.Conn(), crtcInfo.Outputs[0], resources.ConfigTimestamp).Reply()
		if err == nil {
			m.Name = string(outputInfo.Name)
			m.Scale = scaleFromPhysical(m.Width, int(outputInfo.MmWidth))
			for _, id := range outputInfo.Modes {
				if info, ok := modes[uint32(id)]; ok {
					m.Modes = append(m.Modes, modeFromInfo(info))
				}
			}
		}
		if info, ok := modes[uint32(crtcInfo.Mode)]; ok {
			m.Mode = modeFromInfo(info)
			m.RefreshRate = m.Mode.RefreshRate
		}

		m.UsableX, m.UsableY, m.UsableWidth, m.UsableHeight = m.X, m.Y, m.Width, m.Height
		monitors = append(monitors, m)
	}

	if len(monitors) > 0 && primary == 0 {
		monitors[0].Primary = true
	}

	c.applyUsableAreas(monitors)
	return monitors, nil
}

// refreshRate derives the vertical refresh in Hz from mode timings.
func refreshRate(mode randr.ModeInfo) float64 {
	if mode.Htotal == 0 || mode.Vtotal == 0 {
		return 0
	}
	hz := float64(mode.DotClock) / (float64(mode.Htotal) * float64(mode.Vtotal))
	return math.Round(hz*100) / 100
}

// scaleFromPhysical rounds the monitor's DPI relative to 96 to the nearest
// quarter step. Monitors that report no physical size get scale 1.
func scaleFromPhysical(widthPx, widthMM int) float64 {
	if widthMM <= 0 || widthPx <= 0 {
		return 1
	}
	dpi := float64(widthPx) / (float64(widthMM) / 25.4)
	scale := math.Round(dpi/96*4) / 4
	return max(scale, 1)
}

// applyUsableAreas shrinks each monitor's usable area by dock struts, falling
// back to the EWMH work area when no dock reserves space.
func (c *Connection) applyUsableAreas(monitors []Monitor) {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return
	}
	rootWidth := int(rootGeom.Width)
	rootHeight := int(rootGeom.Height)

	partials := c.dockStruts(rootWidth, rootHeight)
	if len(partials) > 0 {
		for i := range monitors {
			var struts dockStruts
			for _, sp := range partials {
				updateStrutsForMonitor(&monitors[i], rootWidth, rootHeight, sp, &struts)
			}
			struts.apply(&monitors[i])
		}
		return
	}

	// Fallback: intersect each monitor with the current desktop's work area.
	workArea, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(workArea) == 0 {
		return
	}
	desktopIndex := 0
	if currentDesktop, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil {
		if int(currentDesktop) < len(workArea) {
			desktopIndex = int(currentDesktop)
		}
	}
	wa := workArea[desktopIndex]
	for i := range monitors {
		m := &monitors[i]
		x1 := max(m.X, int(wa.X))
		y1 := max(m.Y, int(wa.Y))
		x2 := min(m.X+m.Width, int(wa.X)+int(wa.Width))
		y2 := min(m.Y+m.Height, int(wa.Y)+int(wa.Height))
		if x2 > x1 && y2 > y1 {
			m.UsableX, m.UsableY = x1, y1
			m.UsableWidth, m.UsableHeight = x2-x1, y2-y1
		}
	}
}

type dockStruts struct {
	left   int
	right  int
	top    int
	bottom int
}

func (s dockStruts) apply(m *Monitor) {
	m.UsableX = m.X + s.left
	m.UsableY = m.Y + s.top
	m.UsableWidth = max(m.Width-(s.left+s.right), 1)
	m.UsableHeight = max(m.Height-(s.top+s.bottom), 1)
}

// dockStruts collects the reserved edges of every dock window.
func (c *Connection) dockStruts(rootWidth, rootHeight int) []*ewmh.WmStrutPartial {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil
	}

	var out []*ewmh.WmStrutPartial
	for _, windowID := range clients {
		types, err := ewmh.WmWindowTypeGet(c.XUtil, windowID)
		if err != nil {
			continue
		}

		isDock := false
		for _, t := range types {
			if t == "_NET_WM_WINDOW_TYPE_DOCK" {
				isDock = true
				break
			}
		}
		if !isDock {
			continue
		}

		if sp, err := ewmh.WmStrutPartialGet(c.XUtil, windowID); err == nil {
			out = append(out, sp)
			continue
		}

		// Some docks only set _NET_WM_STRUT (no partial ranges).
		if s, err := ewmh.WmStrutGet(c.XUtil, windowID); err == nil {
			out = append(out, &ewmh.WmStrutPartial{
				Left:         s.Left,
				Right:        s.Right,
				Top:          s.Top,
				Bottom:       s.Bottom,
				LeftStartY:   0,
				LeftEndY:     uint(rootHeight - 1),
				RightStartY:  0,
				RightEndY:    uint(rootHeight - 1),
				TopStartX:    0,
				TopEndX:      uint(rootWidth - 1),
				BottomStartX: 0,
				BottomEndX:   uint(rootWidth - 1),
			})
		}
	}
	return out
}

func updateStrutsForMonitor(monitor *Monitor, rootWidth, rootHeight int, sp *ewmh.WmStrutPartial, acc *dockStruts) {
	monX1 := monitor.X
	monY1 := monitor.Y
	monX2 := monitor.X + monitor.Width
	monY2 := monitor.Y + monitor.Height

	// Top strut: y=[0,Top), x=[TopStartX,TopEndX]
	if sp.Top > 0 {
		x1 := int(sp.TopStartX)
		x2 := int(sp.TopEndX) + 1
		y1 := 0
		y2 := int(sp.Top)
		if isect := intersectionSize(monX1, monY1, monX2, monY2, x1, y1, x2, y2); isect.nonEmpty() {
			acc.top = max(acc.top, isect.h)
		}
	}

	// Bottom strut: y=[rootHeight-Bottom,rootHeight), x=[BottomStartX,BottomEndX]
	if sp.Bottom > 0 {
		x1 := int(sp.BottomStartX)
		x2 := int(sp.BottomEndX) + 1
		y2 := rootHeight
		y1 := rootHeight - int(sp.Bottom)
		if isect := intersectionSize(monX1, monY1, monX2, monY2, x1, y1, x2, y2); isect.nonEmpty() {
			acc.bottom = max(acc.bottom, isect.h)
		}
	}

	// Left strut: x=[0,Left), y=[LeftStartY,LeftEndY]
	if sp.Left > 0 {
		x1 := 0
		x2 := int(sp.Left)
		y1 := int(sp.LeftStartY)
		y2 := int(sp.LeftEndY) + 1
		if isect := intersectionSize(monX1, monY1, monX2, monY2, x1, y1, x2, y2); isect.nonEmpty() {
			acc.left = max(acc.left, isect.w)
		}
	}

	// Right strut: x=[rootWidth-Right,rootWidth), y=[RightStartY,RightEndY]
	if sp.Right > 0 {
		x2 := rootWidth
		x1 := rootWidth - int(sp.Right)
		y1 := int(sp.RightStartY)
		y2 := int(sp.RightEndY) + 1
		if isect := intersectionSize(monX1, monY1, monX2, monY2, x1, y1, x2, y2); isect.nonEmpty() {
			acc.right = max(acc.right, isect.w)
		}
	}
}

type intersection struct {
	w int
	h int
}

func (i intersection) nonEmpty() bool { return i.w > 0 && i.h > 0 }

func intersectionSize(ax1, ay1, ax2, ay2, bx1, by1, bx2, by2 int) intersection {
	x1 := max(ax1, bx1)
	y1 := max(ay1, by1)
	x2 := min(ax2, bx2)
	y2 := min(ay2, by2)

	if x2 <= x1 || y2 <= y1 {
		return intersection{}
	}
	return intersection{w: x2 - x1, h: y2 - y1}
}
