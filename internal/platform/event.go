package platform

import "fmt"

// EventType discriminates Event payloads.
type EventType uint16

const (
	EventNone EventType = iota
	EventQuit

	EventWindowShown
	EventWindowHidden
	EventWindowExposed
	EventWindowOccluded
	EventWindowMoved
	EventWindowResized
	EventWindowPixelSizeChanged
	EventWindowMinimized
	EventWindowMaximized
	EventWindowRestored
	EventWindowMouseEnter
	EventWindowMouseLeave
	EventWindowFocusGained
	EventWindowFocusLost
	EventWindowCloseRequested
	EventWindowEnterFullscreen
	EventWindowLeaveFullscreen
	EventWindowDestroyed

	EventKeyDown
	EventKeyUp
	EventMouseMotion
	EventMouseButtonDown
	EventMouseButtonUp
	EventMouseWheel

	EventDisplaysChanged
)

var eventTypeNames = map[EventType]string{
	EventNone:                   "none",
	EventQuit:                   "quit",
	EventWindowShown:            "window-shown",
	EventWindowHidden:           "window-hidden",
	EventWindowExposed:          "window-exposed",
	EventWindowOccluded:         "window-occluded",
	EventWindowMoved:            "window-moved",
	EventWindowResized:          "window-resized",
	EventWindowPixelSizeChanged: "window-pixel-size-changed",
	EventWindowMinimized:        "window-minimized",
	EventWindowMaximized:        "window-maximized",
	EventWindowRestored:         "window-restored",
	EventWindowMouseEnter:       "window-mouse-enter",
	EventWindowMouseLeave:       "window-mouse-leave",
	EventWindowFocusGained:      "window-focus-gained",
	EventWindowFocusLost:        "window-focus-lost",
	EventWindowCloseRequested:   "window-close-requested",
	EventWindowEnterFullscreen:  "window-enter-fullscreen",
	EventWindowLeaveFullscreen:  "window-leave-fullscreen",
	EventWindowDestroyed:        "window-destroyed",
	EventKeyDown:                "key-down",
	EventKeyUp:                  "key-up",
	EventMouseMotion:            "mouse-motion",
	EventMouseButtonDown:        "mouse-button-down",
	EventMouseButtonUp:          "mouse-button-up",
	EventMouseWheel:             "mouse-wheel",
	EventDisplaysChanged:        "displays-changed",
}

func (t EventType) String() string {
	if name, ok := eventTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", uint16(t))
}

// IsWindowEvent reports whether t is one of the window-scoped notifications.
func (t EventType) IsWindowEvent() bool {
	return t >= EventWindowShown && t <= EventWindowDestroyed
}

// Event is a native notification. Data1 and Data2 are reused per type:
//
//	window-moved               x, y
//	window-resized             width, height
//	window-pixel-size-changed  width, height in pixels
//	key-down / key-up          keycode, modifiers
//	mouse-motion               x, y (deltas in relative mode)
//	mouse-button-*             x, y
//	mouse-wheel                dx, dy
type Event struct {
	Type      EventType
	Timestamp uint64 // nanoseconds since the backend was initialized
	WindowID  WindowID
	Data1     int32
	Data2     int32
	Button    MouseButtons
	Key       string
}

func (e Event) String() string {
	switch {
	case e.Type == EventKeyDown || e.Type == EventKeyUp:
		return fmt.Sprintf("%s window=%d key=%q code=%d", e.Type, e.WindowID, e.Key, e.Data1)
	case e.Type == EventMouseButtonDown || e.Type == EventMouseButtonUp:
		return fmt.Sprintf("%s window=%d button=%d at=%d,%d", e.Type, e.WindowID, e.Button, e.Data1, e.Data2)
	case e.Type.IsWindowEvent() || e.Type == EventMouseMotion || e.Type == EventMouseWheel:
		return fmt.Sprintf("%s window=%d data=%d,%d", e.Type, e.WindowID, e.Data1, e.Data2)
	default:
		return e.Type.String()
	}
}
