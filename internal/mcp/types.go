package mcp

// ListDisplaysInput is the input for the list_displays tool.
type ListDisplaysInput struct{}

// DisplayInfo describes one connected display.
type DisplayInfo struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	Primary      bool    `json:"primary"`
	X            int     `json:"x"`
	Y            int     `json:"y"`
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	UsableX      int     `json:"usable_x"`
	UsableY      int     `json:"usable_y"`
	UsableWidth  int     `json:"usable_width"`
	UsableHeight int     `json:"usable_height"`
	RefreshRate  float64 `json:"refresh_rate"`
	ContentScale float64 `json:"content_scale"`

	CurrentMode DisplayMode   `json:"current_mode"`
	DesktopMode DisplayMode   `json:"desktop_mode"`
	Modes       []DisplayMode `json:"modes"`
}

// DisplayMode is a resolution and refresh rate. In window_action input only
// width, height and refresh_rate are read.
type DisplayMode struct {
	Width        int     `json:"width"`
	Height       int     `json:"height"`
	RefreshRate  float64 `json:"refresh_rate"`
	PixelDensity float64 `json:"pixel_density,omitempty"`
}

// ListDisplaysOutput is the output for the list_displays tool.
type ListDisplaysOutput struct {
	Displays []DisplayInfo `json:"displays"`
}

// SubsystemStatusInput is the input for the subsystem_status tool.
type SubsystemStatusInput struct{}

// SubsystemStatusOutput is the output for the subsystem_status tool.
type SubsystemStatusOutput struct {
	Backend     string   `json:"backend"`
	Drivers     []string `json:"drivers"`
	Active      []string `json:"active"`
	RefCount    int      `json:"ref_count"`
	Windows     []uint32 `json:"windows"`
	ScreenSaver bool     `json:"screen_saver"`
}

// ScreenSaverInput is the input for the screen_saver tool.
type ScreenSaverInput struct {
	Enabled *bool `json:"enabled,omitempty" jsonschema:"Allow (true) or inhibit (false) the screen saver. Omit to only report the current setting"`
}

// ScreenSaverOutput is the output for the screen_saver tool.
type ScreenSaverOutput struct {
	Enabled bool `json:"enabled"`
}

// OpenWindowInput is the input for the open_window tool.
type OpenWindowInput struct {
	Title  string   `json:"title,omitempty" jsonschema:"Window title (default: configured window.title)"`
	Width  int      `json:"width,omitempty" jsonschema:"Width in screen coordinates (default: configured window.width)"`
	Height int      `json:"height,omitempty" jsonschema:"Height in screen coordinates (default: configured window.height)"`
	Flags  []string `json:"flags,omitempty" jsonschema:"Creation flags such as resizable, borderless, fullscreen, hidden, always-on-top (default: configured window.flags)"`
}

// WindowRef names a window opened through this server.
type WindowRef struct {
	WindowID uint32 `json:"window_id" jsonschema:"required,Window id returned by open_window"`
}

// WindowStateOutput is the cached view of a window.
type WindowStateOutput struct {
	WindowID    uint32   `json:"window_id"`
	Open        bool     `json:"open"`
	Title       string   `json:"title"`
	Flags       []string `json:"flags"`
	X           int      `json:"x"`
	Y           int      `json:"y"`
	Width       int      `json:"width"`
	Height      int      `json:"height"`
	PixelWidth  int      `json:"pixel_width"`
	PixelHeight int      `json:"pixel_height"`
	Opacity     float32  `json:"opacity"`
	Requested   *Rect    `json:"requested,omitempty"`

	MouseClip      *Rect        `json:"mouse_clip,omitempty"`
	FullscreenMode *DisplayMode `json:"fullscreen_mode,omitempty"`
}

// Rect is a rectangle in screen coordinates.
type Rect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// WindowActionInput is the input for the window_action tool.
type WindowActionInput struct {
	WindowID uint32       `json:"window_id" jsonschema:"required,Window id returned by open_window"`
	Action   string       `json:"action" jsonschema:"required,One of: fullscreen, minimize, maximize, restore, hide, show, raise, resizable, bordered, always_on_top, focusable, mouse_grab, keyboard_grab, relative_mouse, capture_mouse, title, position, size, minimum_size, maximum_size, opacity, flash, warp_mouse, mouse_clip, fullscreen_mode"`
	On       *bool        `json:"on,omitempty" jsonschema:"Target value for toggle actions (default: true)"`
	Title    string       `json:"title,omitempty" jsonschema:"New title for the title action"`
	X        int          `json:"x,omitempty" jsonschema:"X coordinate for position, warp_mouse and mouse_clip"`
	Y        int          `json:"y,omitempty" jsonschema:"Y coordinate for position, warp_mouse and mouse_clip"`
	Width    int          `json:"width,omitempty" jsonschema:"Width for size, minimum_size, maximum_size and mouse_clip"`
	Height   int          `json:"height,omitempty" jsonschema:"Height for size, minimum_size, maximum_size and mouse_clip"`
	Opacity  *float32     `json:"opacity,omitempty" jsonschema:"Opacity in [0, 1] for the opacity action"`
	State    string       `json:"state,omitempty" jsonschema:"Flash state for the flash action: cancel, briefly or until_focused (default: briefly)"`
	Mode     *DisplayMode `json:"mode,omitempty" jsonschema:"Display mode for the fullscreen_mode action. Omit to return to the desktop mode"`
	Sync     bool         `json:"sync,omitempty" jsonschema:"When true, wait for the window system to apply the change and drain its events before returning"`
}

// PollEventsInput is the input for the poll_events tool.
type PollEventsInput struct {
	Max int `json:"max,omitempty" jsonschema:"Maximum number of events to return (default: 64)"`
}

// EventInfo is one native event after it has been applied to its window.
type EventInfo struct {
	Type      string `json:"type"`
	Timestamp uint64 `json:"timestamp"`
	WindowID  uint32 `json:"window_id,omitempty"`
	Data1     int32  `json:"data1"`
	Data2     int32  `json:"data2"`
	Key       string `json:"key,omitempty"`
	Text      string `json:"text"`
}

// PollEventsOutput is the output for the poll_events tool.
type PollEventsOutput struct {
	Events  []EventInfo `json:"events"`
	Pending bool        `json:"pending"`
}

// CloseWindowOutput is the output for the close_window tool.
type CloseWindowOutput struct {
	WindowID uint32 `json:"window_id"`
	Closed   bool   `json:"closed"`
}
