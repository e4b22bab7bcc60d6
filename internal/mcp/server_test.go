package mcp

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/kappaduck/aquila/internal/config"
	"github.com/kappaduck/aquila/internal/platform"
)

func newTestServer(t *testing.T) (*Server, *platform.MemoryBackend) {
	t.Helper()
	backend := platform.NewMemoryBackend()
	backend.AutoConfirm = true
	s, err := NewServer(config.DefaultConfig(), "memory", backend, nil)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s, backend
}

func openTestWindow(t *testing.T, s *Server, in OpenWindowInput) WindowStateOutput {
	t.Helper()
	_, out, err := s.handleOpenWindow(context.Background(), nil, in)
	if err != nil {
		t.Fatalf("open_window: %v", err)
	}
	return out
}

func boolPtr(b bool) *bool { return &b }

func TestNewServer_AcquiresSubsystems(t *testing.T) {
	s, backend := newTestServer(t)

	_, status, err := s.handleSubsystemStatus(context.Background(), nil, SubsystemStatusInput{})
	if err != nil {
		t.Fatalf("subsystem_status: %v", err)
	}
	if status.Backend != "memory" {
		t.Fatalf("backend = %q", status.Backend)
	}
	if status.RefCount != 1 {
		t.Fatalf("ref count = %d, want 1", status.RefCount)
	}
	if !slices.Equal(status.Active, []string{"video", "events"}) {
		t.Fatalf("active = %v", status.Active)
	}
	if backend.Active() != platform.SubsystemVideo|platform.SubsystemEvents {
		t.Fatalf("backend active = %s", backend.Active())
	}

	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if backend.Active() != platform.SubsystemNone {
		t.Fatalf("expected subsystems shut down, got %s", backend.Active())
	}
}

func TestNewServer_InitFailure(t *testing.T) {
	backend := platform.NewMemoryBackend()
	backend.SetInitError(platform.SubsystemVideo, errors.New("no display"))

	if _, err := NewServer(config.DefaultConfig(), "memory", backend, nil); err == nil {
		t.Fatalf("expected init error")
	}
	if backend.Active() != platform.SubsystemNone {
		t.Fatalf("expected nothing left initialized, got %s", backend.Active())
	}
}

func TestListDisplays(t *testing.T) {
	s, _ := newTestServer(t)

	_, out, err := s.handleListDisplays(context.Background(), nil, ListDisplaysInput{})
	if err != nil {
		t.Fatalf("list_displays: %v", err)
	}
	if len(out.Displays) != 1 {
		t.Fatalf("expected 1 display, got %d", len(out.Displays))
	}
	d := out.Displays[0]
	if !d.Primary || d.Width != 1920 || d.Height != 1080 || d.UsableY != 32 {
		t.Fatalf("display = %+v", d)
	}
}

func TestOpenWindow_UsesConfigDefaults(t *testing.T) {
	s, _ := newTestServer(t)

	out := openTestWindow(t, s, OpenWindowInput{})
	if out.WindowID == 0 || !out.Open {
		t.Fatalf("expected open window, got %+v", out)
	}
	if out.Title != config.DefaultTitle {
		t.Fatalf("title = %q", out.Title)
	}
	if out.Width != config.DefaultWidth || out.Height != config.DefaultHeight {
		t.Fatalf("size = %dx%d", out.Width, out.Height)
	}
	if !slices.Contains(out.Flags, "resizable") {
		t.Fatalf("flags = %v", out.Flags)
	}

	_, status, _ := s.handleSubsystemStatus(context.Background(), nil, SubsystemStatusInput{})
	if !slices.Equal(status.Windows, []uint32{out.WindowID}) {
		t.Fatalf("windows = %v", status.Windows)
	}
}

func TestOpenWindow_RejectsBadFlags(t *testing.T) {
	s, _ := newTestServer(t)

	tests := []struct {
		name  string
		flags []string
	}{
		{name: "unknown", flags: []string{"sparkly"}},
		{name: "runtime only", flags: []string{"input-focus"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.handleOpenWindow(context.Background(), nil, OpenWindowInput{Flags: tt.flags})
			if err == nil {
				t.Fatalf("expected error for flags %v", tt.flags)
			}
		})
	}
}

func TestWindowAction_ToggleAndSync(t *testing.T) {
	s, _ := newTestServer(t)
	win := openTestWindow(t, s, OpenWindowInput{Title: "scratch", Width: 640, Height: 480})

	_, out, err := s.handleWindowAction(context.Background(), nil, WindowActionInput{
		WindowID: win.WindowID,
		Action:   "fullscreen",
		Sync:     true,
	})
	if err != nil {
		t.Fatalf("fullscreen: %v", err)
	}
	if !slices.Contains(out.Flags, "fullscreen") {
		t.Fatalf("expected fullscreen flag, got %v", out.Flags)
	}

	_, out, err = s.handleWindowAction(context.Background(), nil, WindowActionInput{
		WindowID: win.WindowID,
		Action:   "fullscreen",
		On:       boolPtr(false),
		Sync:     true,
	})
	if err != nil {
		t.Fatalf("leave fullscreen: %v", err)
	}
	if slices.Contains(out.Flags, "fullscreen") {
		t.Fatalf("expected fullscreen cleared, got %v", out.Flags)
	}
}

func TestWindowAction_GeometryConfirmedByEvents(t *testing.T) {
	s, _ := newTestServer(t)
	win := openTestWindow(t, s, OpenWindowInput{Width: 640, Height: 480})

	_, out, err := s.handleWindowAction(context.Background(), nil, WindowActionInput{
		WindowID: win.WindowID,
		Action:   "size",
		Width:    800,
		Height:   600,
	})
	if err != nil {
		t.Fatalf("size: %v", err)
	}
	if out.Width != 640 || out.Requested == nil || out.Requested.Width != 800 {
		t.Fatalf("expected request pending confirmation, got %+v", out)
	}

	_, polled, err := s.handlePollEvents(context.Background(), nil, PollEventsInput{})
	if err != nil {
		t.Fatalf("poll_events: %v", err)
	}
	if len(polled.Events) == 0 || polled.Pending {
		t.Fatalf("expected drained events, got %+v", polled)
	}
	var sawResize bool
	for _, ev := range polled.Events {
		if ev.Type == platform.EventWindowResized.String() && ev.Data1 == 800 && ev.Data2 == 600 {
			sawResize = true
		}
	}
	if !sawResize {
		t.Fatalf("expected resize event, got %+v", polled.Events)
	}

	_, out, err = s.handleWindowState(context.Background(), nil, WindowRef{WindowID: win.WindowID})
	if err != nil {
		t.Fatalf("window_state: %v", err)
	}
	if out.Width != 800 || out.Height != 600 || out.Requested != nil {
		t.Fatalf("expected confirmed size, got %+v", out)
	}
}

func TestWindowAction_Commands(t *testing.T) {
	tests := []struct {
		action string
		want   string
		absent string
	}{
		{action: "minimize", want: "minimized"},
		{action: "maximize", want: "maximized"},
		{action: "hide", want: "hidden"},
	}
	for _, tt := range tests {
		t.Run(tt.action, func(t *testing.T) {
			s, _ := newTestServer(t)
			win := openTestWindow(t, s, OpenWindowInput{})

			_, out, err := s.handleWindowAction(context.Background(), nil, WindowActionInput{
				WindowID: win.WindowID,
				Action:   tt.action,
				Sync:     true,
			})
			if err != nil {
				t.Fatalf("%s: %v", tt.action, err)
			}
			if !slices.Contains(out.Flags, tt.want) {
				t.Fatalf("expected %s in %v", tt.want, out.Flags)
			}
		})
	}
}

func TestWindowAction_Errors(t *testing.T) {
	s, _ := newTestServer(t)
	win := openTestWindow(t, s, OpenWindowInput{})

	tests := []struct {
		name string
		in   WindowActionInput
		want string
	}{
		{name: "unknown window", in: WindowActionInput{WindowID: 999, Action: "raise"}, want: "no window"},
		{name: "unknown action", in: WindowActionInput{WindowID: win.WindowID, Action: "spin"}, want: "unknown action"},
		{name: "opacity missing", in: WindowActionInput{WindowID: win.WindowID, Action: "opacity"}, want: "requires opacity"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := s.handleWindowAction(context.Background(), nil, tt.in)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestWindowAction_TitleAndOpacity(t *testing.T) {
	s, _ := newTestServer(t)
	win := openTestWindow(t, s, OpenWindowInput{})

	_, out, err := s.handleWindowAction(context.Background(), nil, WindowActionInput{
		WindowID: win.WindowID,
		Action:   "title",
		Title:    "renamed",
	})
	if err != nil {
		t.Fatalf("title: %v", err)
	}
	if out.Title != "renamed" {
		t.Fatalf("title = %q", out.Title)
	}

	half := float32(0.5)
	_, out, err = s.handleWindowAction(context.Background(), nil, WindowActionInput{
		WindowID: win.WindowID,
		Action:   "opacity",
		Opacity:  &half,
	})
	if err != nil {
		t.Fatalf("opacity: %v", err)
	}
	if out.Opacity != 0.5 {
		t.Fatalf("opacity = %v", out.Opacity)
	}
}

func TestPollEvents_RespectsMax(t *testing.T) {
	s, backend := newTestServer(t)
	backend.Push(
		platform.Event{Type: platform.EventDisplaysChanged},
		platform.Event{Type: platform.EventDisplaysChanged},
		platform.Event{Type: platform.EventDisplaysChanged},
	)

	_, out, err := s.handlePollEvents(context.Background(), nil, PollEventsInput{Max: 2})
	if err != nil {
		t.Fatalf("poll_events: %v", err)
	}
	if len(out.Events) != 2 || !out.Pending {
		t.Fatalf("expected 2 events with more pending, got %+v", out)
	}

	_, out, _ = s.handlePollEvents(context.Background(), nil, PollEventsInput{Max: 2})
	if len(out.Events) != 1 || out.Pending {
		t.Fatalf("expected last event, got %+v", out)
	}
}

func TestPollEvents_DestroyedWindowForgotten(t *testing.T) {
	s, backend := newTestServer(t)
	win := openTestWindow(t, s, OpenWindowInput{})
	backend.Push(platform.Event{Type: platform.EventWindowDestroyed, WindowID: platform.WindowID(win.WindowID)})

	if _, _, err := s.handlePollEvents(context.Background(), nil, PollEventsInput{}); err != nil {
		t.Fatalf("poll_events: %v", err)
	}
	if _, _, err := s.handleWindowState(context.Background(), nil, WindowRef{WindowID: win.WindowID}); err == nil {
		t.Fatalf("expected destroyed window to be forgotten")
	}
}

func TestCloseWindow(t *testing.T) {
	s, backend := newTestServer(t)
	win := openTestWindow(t, s, OpenWindowInput{})

	_, out, err := s.handleCloseWindow(context.Background(), nil, WindowRef{WindowID: win.WindowID})
	if err != nil {
		t.Fatalf("close_window: %v", err)
	}
	if !out.Closed {
		t.Fatalf("expected closed")
	}
	if backend.CallCount("DestroyWindow") != 1 {
		t.Fatalf("expected one DestroyWindow call, calls: %v", backend.Calls())
	}
	if _, _, err := s.handleCloseWindow(context.Background(), nil, WindowRef{WindowID: win.WindowID}); err == nil {
		t.Fatalf("expected error closing twice")
	}
}

func TestListDisplays_Modes(t *testing.T) {
	s, _ := newTestServer(t)

	_, out, err := s.handleListDisplays(context.Background(), nil, ListDisplaysInput{})
	if err != nil {
		t.Fatalf("list_displays: %v", err)
	}
	d := out.Displays[0]
	if d.CurrentMode.Width != 1920 || d.CurrentMode.RefreshRate != 60 {
		t.Fatalf("current mode = %+v", d.CurrentMode)
	}
	if len(d.Modes) != 5 || d.Modes[0].RefreshRate != 144 {
		t.Fatalf("modes = %+v", d.Modes)
	}
}

func TestSubsystemStatus_DriversAndScreenSaver(t *testing.T) {
	s, _ := newTestServer(t)

	_, status, err := s.handleSubsystemStatus(context.Background(), nil, SubsystemStatusInput{})
	if err != nil {
		t.Fatalf("subsystem_status: %v", err)
	}
	if !slices.Contains(status.Drivers, "memory") {
		t.Fatalf("drivers = %v, want memory listed", status.Drivers)
	}
	if !status.ScreenSaver {
		t.Fatal("screen saver reported disabled")
	}

	_, saver, err := s.handleScreenSaver(context.Background(), nil, ScreenSaverInput{Enabled: boolPtr(false)})
	if err != nil {
		t.Fatalf("screen_saver: %v", err)
	}
	if saver.Enabled {
		t.Fatal("screen saver still enabled")
	}
	_, saver, err = s.handleScreenSaver(context.Background(), nil, ScreenSaverInput{})
	if err != nil || saver.Enabled {
		t.Fatalf("report = %+v, %v", saver, err)
	}
}

func TestWindowAction_AttentionAndPointer(t *testing.T) {
	s, backend := newTestServer(t)
	win := openTestWindow(t, s, OpenWindowInput{})

	act := func(in WindowActionInput) (WindowStateOutput, error) {
		in.WindowID = win.WindowID
		_, out, err := s.handleWindowAction(context.Background(), nil, in)
		return out, err
	}

	if _, err := act(WindowActionInput{Action: "flash", State: "until_focused"}); err != nil {
		t.Fatalf("flash: %v", err)
	}
	if _, err := act(WindowActionInput{Action: "flash", State: "forever"}); err == nil {
		t.Fatal("unknown flash state accepted")
	}

	out, err := act(WindowActionInput{Action: "mouse_clip", X: 10, Y: 10, Width: 100, Height: 50})
	if err != nil {
		t.Fatalf("mouse_clip: %v", err)
	}
	if out.MouseClip == nil || *out.MouseClip != (Rect{X: 10, Y: 10, Width: 100, Height: 50}) {
		t.Fatalf("mouse clip = %+v", out.MouseClip)
	}
	if _, err := act(WindowActionInput{Action: "warp_mouse", X: 500, Y: 500}); err != nil {
		t.Fatalf("warp_mouse: %v", err)
	}
	if backend.CallCount("WarpMouse") != 1 {
		t.Fatalf("WarpMouse calls = %d", backend.CallCount("WarpMouse"))
	}
}

func TestWindowAction_FullscreenMode(t *testing.T) {
	s, _ := newTestServer(t)
	win := openTestWindow(t, s, OpenWindowInput{})

	act := func(mode *DisplayMode) (WindowStateOutput, error) {
		_, out, err := s.handleWindowAction(context.Background(), nil, WindowActionInput{
			WindowID: win.WindowID,
			Action:   "fullscreen_mode",
			Mode:     mode,
		})
		return out, err
	}

	if _, err := act(&DisplayMode{Width: 1000, Height: 700}); err == nil {
		t.Fatal("unknown mode accepted")
	}
	out, err := act(&DisplayMode{Width: 1920, Height: 1080})
	if err != nil {
		t.Fatalf("fullscreen_mode: %v", err)
	}
	if out.FullscreenMode == nil || out.FullscreenMode.RefreshRate != 144 {
		t.Fatalf("fullscreen mode = %+v, want the 144Hz mode", out.FullscreenMode)
	}
	out, err = act(nil)
	if err != nil {
		t.Fatalf("clear fullscreen_mode: %v", err)
	}
	if out.FullscreenMode != nil {
		t.Fatalf("fullscreen mode = %+v after clearing", out.FullscreenMode)
	}
}
