// Package mcp exposes window control over the Model Context Protocol, so an
// agent can open windows, change their state and watch the resulting events.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kappaduck/aquila/internal/config"
	"github.com/kappaduck/aquila/internal/platform"
	"github.com/kappaduck/aquila/internal/subsystem"
	"github.com/kappaduck/aquila/internal/window"
)

const (
	ServerName    = "aquila"
	ServerVersion = "0.1.0"

	defaultPollMax = 64
)

// Server is the MCP server. Every tool call runs under one mutex, so the
// backend is only ever driven by one goroutine at a time.
type Server struct {
	mcpServer   *mcpsdk.Server
	config      *config.Config
	backendName string
	backend     platform.Backend
	registry    *subsystem.Registry
	logger      *slog.Logger

	mu      sync.Mutex
	handle  *subsystem.Handle
	windows map[platform.WindowID]*window.Window
}

// NewServer acquires the configured subsystems on backend and registers the
// tools. Close releases them.
func NewServer(cfg *config.Config, backendName string, backend platform.Backend, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	mask, err := cfg.SubsystemMask()
	if err != nil {
		return nil, err
	}

	s := &Server{
		config:      cfg,
		backendName: backendName,
		backend:     backend,
		registry:    subsystem.NewRegistry(backend, subsystem.WithLogger(logger)),
		logger:      logger,
		windows:     make(map[platform.WindowID]*window.Window),
	}
	s.handle, err = s.registry.Acquire(mask | platform.SubsystemVideo | platform.SubsystemEvents)
	if err != nil {
		return nil, fmt.Errorf("mcp: %w", err)
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    ServerName,
			Version: ServerVersion,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// Run serves MCP on stdio, blocking until the client disconnects or ctx is
// done.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// Close destroys every open window and releases the subsystems.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, w := range s.windows {
		_ = w.Close()
		delete(s.windows, id)
	}
	if s.handle == nil {
		return nil
	}
	err := s.handle.Release()
	s.handle = nil
	return err
}

func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "list_displays",
		Description: "List connected displays with their bounds, usable area (excluding panels and docks), refresh rate, content scale, current and desktop modes and the fullscreen modes they support.",
	}, s.handleListDisplays)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "subsystem_status",
		Description: "Report the backend in use, the initialized subsystems, the outstanding subsystem references and the ids of open windows.",
	}, s.handleSubsystemStatus)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "screen_saver",
		Description: "Report whether the screen saver may run, or allow or inhibit it with enabled. Backends that cannot inhibit it return an error.",
	}, s.handleScreenSaver)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "open_window",
		Description: "Open a native window. Omitted fields fall back to the configured window defaults. Returns the window's cached state, including the window_id used by the other tools.",
	}, s.handleOpenWindow)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_state",
		Description: "Return the cached state of a window: flags, confirmed position and size, drawable size, opacity and any geometry still awaiting confirmation. Call poll_events first to fold in pending events.",
	}, s.handleWindowState)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "window_action",
		Description: "Change a window: toggle a state (fullscreen, resizable, bordered, always_on_top, focusable, grabs, relative mouse), minimize, maximize, restore, hide, show, raise, flash, warp the pointer, or set title, position, size, size limits, opacity, pointer confinement (mouse_clip) or the exclusive fullscreen mode. With sync set, waits for the window system and drains events before returning the new state.",
	}, s.handleWindowAction)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "poll_events",
		Description: "Drain queued native events, applying each to its window's cached state. Returns at most max events (default 64); pending reports whether more remain.",
	}, s.handlePollEvents)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "close_window",
		Description: "Destroy a window opened with open_window.",
	}, s.handleCloseWindow)
}

// lookup returns an open window by id. Caller holds s.mu.
func (s *Server) lookup(id uint32) (*window.Window, error) {
	w, ok := s.windows[platform.WindowID(id)]
	if !ok {
		return nil, fmt.Errorf("no window with id %d", id)
	}
	return w, nil
}

// pump drains up to limit events into the windows they concern. Windows whose
// native side was destroyed are forgotten. Caller holds s.mu.
func (s *Server) pump(limit int) ([]platform.Event, bool) {
	var out []platform.Event
	for limit <= 0 || len(out) < limit {
		ev, ok := s.backend.PollEvent()
		if !ok {
			return out, false
		}
		if w, ok := s.windows[ev.WindowID]; ok {
			w.Apply(ev)
			if ev.Type == platform.EventWindowDestroyed {
				_ = w.Close()
				delete(s.windows, ev.WindowID)
			}
		}
		out = append(out, ev)
	}
	return out, true
}

func (s *Server) windowIDs() []uint32 {
	ids := make([]uint32, 0, len(s.windows))
	for id := range s.windows {
		ids = append(ids, uint32(id))
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func stateOf(w *window.Window) WindowStateOutput {
	out := WindowStateOutput{
		WindowID: uint32(w.ID()),
		Open:     w.IsOpen(),
		Title:    w.Title(),
		Flags:    w.Flags().Names(),
		Opacity:  w.Opacity(),
	}
	if out.Flags == nil {
		out.Flags = []string{}
	}
	b := w.Bounds()
	out.X, out.Y, out.Width, out.Height = b.X, b.Y, b.Width, b.Height
	out.PixelWidth, out.PixelHeight = w.SizeInPixels()
	if req := w.RequestedBounds(); req != b {
		out.Requested = &Rect{X: req.X, Y: req.Y, Width: req.Width, Height: req.Height}
	}
	if c := w.MouseClip(); !c.Empty() {
		out.MouseClip = &Rect{X: c.X, Y: c.Y, Width: c.Width, Height: c.Height}
	}
	if m := w.FullscreenMode(); m != nil {
		mode := modeInfo(*m)
		out.FullscreenMode = &mode
	}
	return out
}

func modeInfo(m platform.DisplayMode) DisplayMode {
	return DisplayMode{
		Width:        m.Width,
		Height:       m.Height,
		RefreshRate:  m.RefreshRate,
		PixelDensity: m.PixelDensity,
	}
}

func displayInfo(d platform.Display) DisplayInfo {
	info := DisplayInfo{
		ID:           d.ID,
		Name:         d.Name,
		Primary:      d.Primary,
		X:            d.Bounds.X,
		Y:            d.Bounds.Y,
		Width:        d.Bounds.Width,
		Height:       d.Bounds.Height,
		UsableX:      d.Usable.X,
		UsableY:      d.Usable.Y,
		UsableWidth:  d.Usable.Width,
		UsableHeight: d.Usable.Height,
		RefreshRate:  d.RefreshRate,
		ContentScale: d.ContentScale,
		CurrentMode:  modeInfo(d.CurrentMode),
		DesktopMode:  modeInfo(d.DesktopMode),
		Modes:        make([]DisplayMode, 0, len(d.Modes)),
	}
	for _, m := range d.Modes {
		info.Modes = append(info.Modes, modeInfo(m))
	}
	return info
}

func eventInfo(ev platform.Event) EventInfo {
	return EventInfo{
		Type:      ev.Type.String(),
		Timestamp: ev.Timestamp,
		WindowID:  uint32(ev.WindowID),
		Data1:     ev.Data1,
		Data2:     ev.Data2,
		Key:       ev.Key,
		Text:      ev.String(),
	}
}
