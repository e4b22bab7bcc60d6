package main

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/kappaduck/aquila/internal/config"
	"github.com/kappaduck/aquila/internal/platform"
	"github.com/kappaduck/aquila/internal/window"
)

func TestNewLogger_Format(t *testing.T) {
	tests := []struct {
		name     string
		format   string
		isTTY    bool
		wantJSON bool
	}{
		{name: "auto on terminal", format: "auto", isTTY: true, wantJSON: false},
		{name: "auto piped", format: "auto", isTTY: false, wantJSON: true},
		{name: "text piped", format: "text", isTTY: false, wantJSON: false},
		{name: "json on terminal", format: "json", isTTY: true, wantJSON: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := newLogger(&buf, config.LoggingConfig{Level: "info", Format: tt.format}, tt.isTTY)
			logger.Info("hello", "k", "v")
			gotJSON := strings.HasPrefix(buf.String(), "{")
			if gotJSON != tt.wantJSON {
				t.Fatalf("output %q, want json=%t", buf.String(), tt.wantJSON)
			}
		})
	}
}

func TestNewLogger_Level(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, config.LoggingConfig{Level: "warn", Format: "text"}, false)
	logger.Info("quiet")
	if buf.Len() != 0 {
		t.Fatalf("expected info to be filtered, got %q", buf.String())
	}
	logger.Warn("loud")
	if !strings.Contains(buf.String(), "loud") {
		t.Fatalf("expected warn to be logged, got %q", buf.String())
	}
}

func newTestSandbox(t *testing.T) (*sandbox, *platform.MemoryBackend) {
	t.Helper()
	backend := platform.NewMemoryBackend()
	backend.AutoConfirm = true
	if err := backend.InitSubsystem(platform.SubsystemVideo | platform.SubsystemEvents); err != nil {
		t.Fatalf("init: %v", err)
	}
	w, err := window.Open(backend, "sandbox", 640, 480, platform.WindowResizable)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = w.Close() })
	return &sandbox{w: w, logger: slog.New(slog.DiscardHandler)}, backend
}

func TestSandbox_Keys(t *testing.T) {
	tests := []struct {
		key   string
		check func(*window.Window) bool
	}{
		{key: "f", check: (*window.Window).IsFullscreen},
		{key: "m", check: (*window.Window).IsMinimized},
		{key: "x", check: (*window.Window).IsMaximized},
		{key: "g", check: (*window.Window).IsMouseGrabbed},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			sb, backend := newTestSandbox(t)
			backend.Push(platform.Event{Type: platform.EventKeyDown, WindowID: sb.w.ID(), Key: tt.key})

			if quit := sb.pump(); quit {
				t.Fatalf("key %q should not quit", tt.key)
			}
			if !tt.check(sb.w) {
				t.Fatalf("key %q had no effect, flags %s", tt.key, sb.w.Flags())
			}
		})
	}
}

func TestSandbox_PointerKeys(t *testing.T) {
	sb, backend := newTestSandbox(t)
	press := func(key string) {
		backend.Push(platform.Event{Type: platform.EventKeyDown, WindowID: sb.w.ID(), Key: key})
		sb.pump()
	}

	press("c")
	if want := (platform.Rect{X: 160, Y: 120, Width: 320, Height: 240}); sb.w.MouseClip() != want {
		t.Fatalf("clip = %v, want %v", sb.w.MouseClip(), want)
	}
	press("w")
	if backend.CallCount("WarpMouse(") != 1 {
		t.Fatalf("WarpMouse calls = %d, want 1", backend.CallCount("WarpMouse("))
	}
	press("a")
	if backend.CallCount("FlashWindow(") != 1 {
		t.Fatalf("FlashWindow calls = %d, want 1", backend.CallCount("FlashWindow("))
	}
	press("c")
	if !sb.w.MouseClip().Empty() {
		t.Fatalf("second c kept clip %v", sb.w.MouseClip())
	}
}

func TestSandbox_MaximizeToggles(t *testing.T) {
	sb, backend := newTestSandbox(t)
	backend.Push(platform.Event{Type: platform.EventKeyDown, WindowID: sb.w.ID(), Key: "x"})
	sb.pump()
	backend.Push(platform.Event{Type: platform.EventKeyDown, WindowID: sb.w.ID(), Key: "x"})
	sb.pump()
	if sb.w.IsMaximized() {
		t.Fatalf("expected second x to restore")
	}
}

func TestSandbox_Quit(t *testing.T) {
	tests := []struct {
		name string
		ev   func(id platform.WindowID) platform.Event
	}{
		{name: "escape", ev: func(id platform.WindowID) platform.Event {
			return platform.Event{Type: platform.EventKeyDown, WindowID: id, Key: "Escape"}
		}},
		{name: "close requested", ev: func(id platform.WindowID) platform.Event {
			return platform.Event{Type: platform.EventWindowCloseRequested, WindowID: id}
		}},
		{name: "destroyed", ev: func(id platform.WindowID) platform.Event {
			return platform.Event{Type: platform.EventWindowDestroyed, WindowID: id}
		}},
		{name: "quit", ev: func(platform.WindowID) platform.Event {
			return platform.Event{Type: platform.EventQuit}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sb, backend := newTestSandbox(t)
			backend.Push(tt.ev(sb.w.ID()))
			if !sb.pump() {
				t.Fatalf("expected %s to quit", tt.name)
			}
		})
	}
}

func TestSandbox_RunStopsAtFrameLimit(t *testing.T) {
	sb, _ := newTestSandbox(t)
	if err := sb.run(context.Background(), 3); err != nil {
		t.Fatalf("run: %v", err)
	}
	if sb.frames != 3 {
		t.Fatalf("frames = %d, want 3", sb.frames)
	}
}

func TestSandbox_RunStopsOnCancel(t *testing.T) {
	sb, _ := newTestSandbox(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sb.run(ctx, 0); err != nil {
		t.Fatalf("run: %v", err)
	}
	if sb.frames != 1 {
		t.Fatalf("frames = %d, want 1", sb.frames)
	}
}

func TestFormatRect(t *testing.T) {
	got := formatRect(platform.Rect{X: 10, Y: -20, Width: 800, Height: 600})
	if got != "800x600+10+-20" {
		t.Fatalf("formatRect = %q", got)
	}
}

func TestPrintDrivers(t *testing.T) {
	var buf bytes.Buffer
	printDrivers(&buf, []string{"glfw", "memory", "x11"}, "x11")
	want := "  glfw\n  memory\n* x11\n"
	if buf.String() != want {
		t.Fatalf("printDrivers = %q, want %q", buf.String(), want)
	}
}

func TestPrintModes(t *testing.T) {
	displays := []platform.Display{{
		ID:          0,
		Name:        "MEM-0",
		DesktopMode: platform.DisplayMode{Width: 1920, Height: 1080, RefreshRate: 60},
		Modes: []platform.DisplayMode{
			{Width: 1920, Height: 1080, RefreshRate: 144},
			{Width: 1920, Height: 1080, RefreshRate: 60},
		},
	}}
	var buf bytes.Buffer
	printModes(&buf, displays)
	want := "\nDisplay 0 (MEM-0) modes:\n   1920x1080@144.00Hz\n * 1920x1080@60.00Hz\n"
	if buf.String() != want {
		t.Fatalf("printModes = %q, want %q", buf.String(), want)
	}
}
