package platform

import (
	"context"
	"errors"
)

var (
	// ErrUnsupported is returned when a backend cannot honor a request at all.
	ErrUnsupported = errors.New("operation not supported by backend")
	// ErrInvalidHandle is returned for handles the backend does not know.
	ErrInvalidHandle = errors.New("invalid window handle")
	// ErrNotInitialized is returned when the video subsystem is not active.
	ErrNotInitialized = errors.New("video subsystem not initialized")
	// ErrTimeout is returned when a sync barrier gives up waiting.
	ErrTimeout = errors.New("timed out waiting for window state")
)

// Handle is an opaque reference to a native window. Zero is invalid.
type Handle uint64

// Valid reports whether h refers to a native window.
func (h Handle) Valid() bool { return h != 0 }

// WindowID is the native identifier used to correlate events with windows.
// Zero is invalid.
type WindowID uint32

// Point is a position in screen coordinates.
type Point struct {
	X int
	Y int
}

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether (x, y) lies inside r.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Empty reports whether r has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Clamp returns the point of r nearest to (x, y).
func (r Rect) Clamp(x, y int) Point {
	return Point{
		X: min(max(x, r.X), r.X+r.Width-1),
		Y: min(max(y, r.Y), r.Y+r.Height-1),
	}
}

// Center returns the center point of r.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Display describes a physical display and its usable work area.
type Display struct {
	ID           int
	Name         string
	Primary      bool
	Bounds       Rect
	Usable       Rect
	RefreshRate  float64
	ContentScale float64

	// CurrentMode is the mode the display is driven at now. DesktopMode is
	// the mode it had before any fullscreen window changed it.
	CurrentMode DisplayMode
	DesktopMode DisplayMode
	// Modes lists the fullscreen modes, in SortModes order.
	Modes []DisplayMode
}

// WindowInfo is the native view of a window, read once at creation.
type WindowInfo struct {
	Flags       WindowFlags
	Bounds      Rect
	PixelWidth  int
	PixelHeight int
	Title       string
	Opacity     float32
}

// InputState is a snapshot of global pointer and keyboard state.
type InputState struct {
	Pointer       Point
	Buttons       MouseButtons
	Modifiers     Modifiers
	KeyboardFocus WindowID
	MouseFocus    WindowID
}

// MouseButtons is a bitmask of pressed pointer buttons.
type MouseButtons uint8

const (
	ButtonLeft MouseButtons = 1 << iota
	ButtonMiddle
	ButtonRight
	ButtonX1
	ButtonX2
)

// Modifiers is a bitmask of active keyboard modifiers.
type Modifiers uint16

const (
	ModShift Modifiers = 1 << iota
	ModCtrl
	ModAlt
	ModSuper
	ModCapsLock
	ModNumLock
)

// Subsystems is the part of the native library that manages process-wide
// initialization.
type Subsystems interface {
	InitSubsystem(mask Subsystem) error
	QuitSubsystem(mask Subsystem)
	Quit()
}

// Backend abstracts the native windowing library.
//
// Implementations follow the threading rules of the library they wrap; callers
// are expected to drive windows and the event queue from one goroutine.
type Backend interface {
	Subsystems

	CreateWindow(title string, width, height int, flags WindowFlags) (Handle, error)
	DestroyWindow(h Handle)
	WindowID(h Handle) WindowID
	QueryWindow(h Handle) (WindowInfo, error)

	SetWindowTitle(h Handle, title string) error
	SetWindowPosition(h Handle, x, y int) error
	SetWindowSize(h Handle, width, height int) error
	SetWindowMinimumSize(h Handle, width, height int) error
	SetWindowMaximumSize(h Handle, width, height int) error
	SetWindowOpacity(h Handle, opacity float32) error

	// SetWindowMouseRect confines the pointer to r, in window coordinates,
	// while the window has mouse focus. An empty r removes the confinement.
	SetWindowMouseRect(h Handle, r Rect) error
	// SetWindowFullscreenMode selects the mode used while the window is
	// fullscreen. Nil means borderless fullscreen at the desktop mode.
	SetWindowFullscreenMode(h Handle, mode *DisplayMode) error

	// SetWindowState toggles one of the flags in SettableFlags.
	SetWindowState(h Handle, flag WindowFlags, on bool) error
	MinimizeWindow(h Handle) error
	MaximizeWindow(h Handle) error
	RestoreWindow(h Handle) error
	RaiseWindow(h Handle) error
	FlashWindow(h Handle, state FlashState) error
	// WarpMouse moves the pointer to (x, y) in window coordinates.
	WarpMouse(h Handle, x, y int) error

	// SyncWindow blocks until pending state changes for h have been applied
	// or ctx is done.
	SyncWindow(ctx context.Context, h Handle) error

	// PollEvent returns the next queued event without blocking.
	PollEvent() (Event, bool)

	Displays() ([]Display, error)
	DisplayForWindow(h Handle) (Display, error)
	InputState() (InputState, error)

	ScreenSaverEnabled() bool
	SetScreenSaverEnabled(on bool) error
}

// DisplayContaining returns the display whose bounds contain the center of r,
// falling back to the primary display and then the first one.
func DisplayContaining(displays []Display, r Rect) (Display, bool) {
	if len(displays) == 0 {
		return Display{}, false
	}
	c := r.Center()
	for _, d := range displays {
		if d.Bounds.Contains(c.X, c.Y) {
			return d, true
		}
	}
	for _, d := range displays {
		if d.Primary {
			return d, true
		}
	}
	return displays[0], true
}

// PrimaryDisplay returns the display flagged primary, or the first one.
func PrimaryDisplay(displays []Display) (Display, bool) {
	for _, d := range displays {
		if d.Primary {
			return d, true
		}
	}
	if len(displays) == 0 {
		return Display{}, false
	}
	return displays[0], true
}
