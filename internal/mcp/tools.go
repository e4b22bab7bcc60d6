package mcp

import (
	"context"
	"fmt"
	"math"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/kappaduck/aquila/internal/platform"
	"github.com/kappaduck/aquila/internal/window"
)

func (s *Server) handleListDisplays(_ context.Context, _ *mcpsdk.CallToolRequest, _ ListDisplaysInput) (*mcpsdk.CallToolResult, ListDisplaysOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	displays, err := s.backend.Displays()
	if err != nil {
		return nil, ListDisplaysOutput{}, fmt.Errorf("list displays: %w", err)
	}
	out := ListDisplaysOutput{Displays: make([]DisplayInfo, 0, len(displays))}
	for _, d := range displays {
		out.Displays = append(out.Displays, displayInfo(d))
	}
	return nil, out, nil
}

func (s *Server) handleSubsystemStatus(_ context.Context, _ *mcpsdk.CallToolRequest, _ SubsystemStatusInput) (*mcpsdk.CallToolResult, SubsystemStatusOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := []string{}
	for _, bit := range s.registry.Active().Bits() {
		active = append(active, bit.String())
	}
	return nil, SubsystemStatusOutput{
		Backend:     s.backendName,
		Drivers:     platform.Backends(),
		Active:      active,
		RefCount:    s.registry.RefCount(),
		Windows:     s.windowIDs(),
		ScreenSaver: s.backend.ScreenSaverEnabled(),
	}, nil
}

func (s *Server) handleScreenSaver(_ context.Context, _ *mcpsdk.CallToolRequest, args ScreenSaverInput) (*mcpsdk.CallToolResult, ScreenSaverOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if args.Enabled != nil {
		if err := s.backend.SetScreenSaverEnabled(*args.Enabled); err != nil {
			return nil, ScreenSaverOutput{Enabled: s.backend.ScreenSaverEnabled()}, fmt.Errorf("screen saver: %w", err)
		}
		s.logger.Info("screen saver changed", "enabled", *args.Enabled)
	}
	return nil, ScreenSaverOutput{Enabled: s.backend.ScreenSaverEnabled()}, nil
}

func (s *Server) handleOpenWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args OpenWindowInput) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	title := args.Title
	if title == "" {
		title = s.config.Window.Title
	}
	width, height := args.Width, args.Height
	if width <= 0 {
		width = s.config.Window.Width
	}
	if height <= 0 {
		height = s.config.Window.Height
	}
	names := args.Flags
	if names == nil {
		names = s.config.Window.Flags
	}
	flags, err := platform.ParseWindowFlags(names)
	if err != nil {
		return nil, WindowStateOutput{}, err
	}
	if extra := flags &^ platform.CreationFlags; extra != 0 {
		return nil, WindowStateOutput{}, fmt.Errorf("flags cannot be requested at creation: %s", extra)
	}

	w, err := window.Open(s.backend, title, width, height, flags,
		window.WithLogger(s.logger),
		window.WithSyncTimeout(s.config.SyncTimeout.Std()))
	if err != nil {
		return nil, WindowStateOutput{}, fmt.Errorf("open window: %w", err)
	}
	s.windows[w.ID()] = w
	s.logger.Info("window opened", "window_id", w.ID(), "title", title, "flags", flags)
	return nil, stateOf(w), nil
}

func (s *Server) handleWindowState(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowRef) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.lookup(args.WindowID)
	if err != nil {
		return nil, WindowStateOutput{}, err
	}
	return nil, stateOf(w), nil
}

// toggles maps toggle action names to their mutators.
var toggles = map[string]func(*window.Window, bool) error{
	"fullscreen":     (*window.Window).SetFullscreen,
	"resizable":      (*window.Window).SetResizable,
	"bordered":       (*window.Window).SetBordered,
	"always_on_top":  (*window.Window).SetAlwaysOnTop,
	"focusable":      (*window.Window).SetFocusable,
	"mouse_grab":     (*window.Window).SetMouseGrab,
	"keyboard_grab":  (*window.Window).SetKeyboardGrab,
	"relative_mouse": (*window.Window).SetRelativeMouseMode,
	"capture_mouse":  (*window.Window).CaptureMouse,
}

var commands = map[string]func(*window.Window) error{
	"minimize": (*window.Window).Minimize,
	"maximize": (*window.Window).Maximize,
	"restore":  (*window.Window).Restore,
	"hide":     (*window.Window).Hide,
	"show":     (*window.Window).Show,
	"raise":    (*window.Window).Raise,
}

func (s *Server) handleWindowAction(ctx context.Context, _ *mcpsdk.CallToolRequest, args WindowActionInput) (*mcpsdk.CallToolResult, WindowStateOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.lookup(args.WindowID)
	if err != nil {
		return nil, WindowStateOutput{}, err
	}

	action := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(args.Action)), "-", "_")
	if err := applyAction(w, action, args); err != nil {
		s.logger.Warn("window action failed", "window_id", args.WindowID, "action", action, "error", err)
		return nil, stateOf(w), err
	}

	if args.Sync {
		syncCtx, cancel := context.WithTimeout(ctx, s.config.SyncTimeout.Std())
		err := w.SyncContext(syncCtx)
		cancel()
		s.pump(0)
		if err != nil {
			return nil, stateOf(w), err
		}
	}
	return nil, stateOf(w), nil
}

// findMode resolves a requested mode against the modes of the window's
// display. A zero refresh rate picks the fastest rate at that size.
func findMode(w *window.Window, want DisplayMode) (platform.DisplayMode, error) {
	d, err := w.Display()
	if err != nil {
		return platform.DisplayMode{}, err
	}
	for _, m := range d.Modes {
		if m.Width != want.Width || m.Height != want.Height {
			continue
		}
		if want.RefreshRate <= 0 || math.Abs(m.RefreshRate-want.RefreshRate) < 0.5 {
			return m, nil
		}
	}
	return platform.DisplayMode{}, fmt.Errorf("display %d has no mode %dx%d@%g", d.ID, want.Width, want.Height, want.RefreshRate)
}

func applyAction(w *window.Window, action string, args WindowActionInput) error {
	if set, ok := toggles[action]; ok {
		on := true
		if args.On != nil {
			on = *args.On
		}
		return set(w, on)
	}
	if run, ok := commands[action]; ok {
		return run(w)
	}

	switch action {
	case "title":
		return w.SetTitle(args.Title)
	case "position":
		return w.SetPosition(args.X, args.Y)
	case "size":
		return w.SetSize(args.Width, args.Height)
	case "minimum_size":
		return w.SetMinimumSize(args.Width, args.Height)
	case "maximum_size":
		return w.SetMaximumSize(args.Width, args.Height)
	case "opacity":
		if args.Opacity == nil {
			return fmt.Errorf("opacity action requires opacity")
		}
		return w.SetOpacity(*args.Opacity)
	case "flash":
		state := platform.FlashBriefly
		if args.State != "" {
			var err error
			if state, err = platform.ParseFlashState(args.State); err != nil {
				return err
			}
		}
		return w.Flash(state)
	case "warp_mouse":
		return w.WarpMouse(args.X, args.Y)
	case "mouse_clip":
		return w.SetMouseClip(platform.Rect{X: args.X, Y: args.Y, Width: args.Width, Height: args.Height})
	case "fullscreen_mode":
		if args.Mode == nil {
			return w.SetFullscreenMode(nil)
		}
		mode, err := findMode(w, *args.Mode)
		if err != nil {
			return err
		}
		return w.SetFullscreenMode(&mode)
	}
	return fmt.Errorf("unknown action %q", args.Action)
}

func (s *Server) handlePollEvents(_ context.Context, _ *mcpsdk.CallToolRequest, args PollEventsInput) (*mcpsdk.CallToolResult, PollEventsOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	limit := args.Max
	if limit <= 0 {
		limit = defaultPollMax
	}
	events, pending := s.pump(limit)
	out := PollEventsOutput{Events: make([]EventInfo, 0, len(events)), Pending: pending}
	for _, ev := range events {
		out.Events = append(out.Events, eventInfo(ev))
	}
	return nil, out, nil
}

func (s *Server) handleCloseWindow(_ context.Context, _ *mcpsdk.CallToolRequest, args WindowRef) (*mcpsdk.CallToolResult, CloseWindowOutput, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.lookup(args.WindowID)
	if err != nil {
		return nil, CloseWindowOutput{WindowID: args.WindowID}, err
	}
	if err := w.Close(); err != nil {
		return nil, CloseWindowOutput{WindowID: args.WindowID}, err
	}
	delete(s.windows, platform.WindowID(args.WindowID))
	s.logger.Info("window closed", "window_id", args.WindowID)
	return nil, CloseWindowOutput{WindowID: args.WindowID, Closed: true}, nil
}
