package platform

import (
	"context"
	"errors"
	"testing"
)

func newVideoBackend(t *testing.T) *MemoryBackend {
	t.Helper()
	b := NewMemoryBackend()
	if err := b.InitSubsystem(SubsystemVideo); err != nil {
		t.Fatalf("InitSubsystem: %v", err)
	}
	return b
}

func drainTypes(b *MemoryBackend) []EventType {
	var out []EventType
	for {
		ev, ok := b.PollEvent()
		if !ok {
			return out
		}
		out = append(out, ev.Type)
	}
}

func TestMemoryCreateRequiresVideo(t *testing.T) {
	b := NewMemoryBackend()
	if _, err := b.CreateWindow("t", 10, 10, 0); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("CreateWindow error = %v, want ErrNotInitialized", err)
	}
	if _, err := b.Displays(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Displays error = %v, want ErrNotInitialized", err)
	}
}

func TestMemoryCreateCentersOnUsableArea(t *testing.T) {
	b := newVideoBackend(t)
	h, err := b.CreateWindow("t", 800, 600, WindowResizable|WindowInputFocus)
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	info, err := b.QueryWindow(h)
	if err != nil {
		t.Fatalf("QueryWindow: %v", err)
	}
	want := Rect{X: 560, Y: 256, Width: 800, Height: 600}
	if info.Bounds != want {
		t.Errorf("Bounds = %+v, want %+v", info.Bounds, want)
	}
	// Focus is granted by the window system, and the requested bit is
	// dropped along with the other non-creation flags.
	if info.Flags != WindowResizable|WindowInputFocus {
		t.Errorf("Flags = %s", info.Flags)
	}
	if id := b.WindowID(h); id == 0 || uint64(id) == uint64(h) {
		t.Errorf("WindowID = %d for handle %#x", id, uint64(h))
	}
}

func TestMemoryHiddenWindowHasNoFocus(t *testing.T) {
	b := newVideoBackend(t)
	h, err := b.CreateWindow("t", 100, 100, WindowHidden)
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	info, _ := b.NativeInfo(h)
	if info.Flags.Has(WindowInputFocus) {
		t.Error("hidden window was given focus")
	}
}

func TestMemoryPixelScale(t *testing.T) {
	b := newVideoBackend(t)
	b.SetPixelScale(2)
	h, err := b.CreateWindow("t", 100, 50, 0)
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	info, _ := b.NativeInfo(h)
	if info.PixelWidth != 200 || info.PixelHeight != 100 {
		t.Errorf("pixel size = %dx%d", info.PixelWidth, info.PixelHeight)
	}
	if !info.Flags.Has(WindowHighPixelDensity) {
		t.Error("high pixel density not reported")
	}
}

func TestMemoryWithoutAutoConfirmQueuesNothing(t *testing.T) {
	b := newVideoBackend(t)
	h, _ := b.CreateWindow("t", 100, 100, WindowResizable)
	if err := b.SetWindowSize(h, 300, 200); err != nil {
		t.Fatalf("SetWindowSize: %v", err)
	}
	if err := b.MaximizeWindow(h); err != nil {
		t.Fatalf("MaximizeWindow: %v", err)
	}
	if types := drainTypes(b); len(types) != 0 {
		t.Errorf("queued %v without AutoConfirm", types)
	}
}

func TestMemoryAutoConfirm(t *testing.T) {
	tests := []struct {
		name string
		do   func(*MemoryBackend, Handle) error
		want []EventType
	}{
		{
			name: "resize",
			do:   func(b *MemoryBackend, h Handle) error { return b.SetWindowSize(h, 300, 200) },
			want: []EventType{EventWindowResized, EventWindowPixelSizeChanged},
		},
		{
			name: "move",
			do:   func(b *MemoryBackend, h Handle) error { return b.SetWindowPosition(h, 5, 6) },
			want: []EventType{EventWindowMoved},
		},
		{
			name: "fullscreen",
			do:   func(b *MemoryBackend, h Handle) error { return b.SetWindowState(h, WindowFullscreen, true) },
			want: []EventType{EventWindowEnterFullscreen, EventWindowMoved, EventWindowResized, EventWindowPixelSizeChanged},
		},
		{
			name: "maximize",
			do:   func(b *MemoryBackend, h Handle) error { return b.MaximizeWindow(h) },
			want: []EventType{EventWindowMaximized, EventWindowMoved, EventWindowResized, EventWindowPixelSizeChanged},
		},
		{
			name: "minimize",
			do:   func(b *MemoryBackend, h Handle) error { return b.MinimizeWindow(h) },
			want: []EventType{EventWindowMinimized, EventWindowFocusLost},
		},
		{
			name: "hide",
			do:   func(b *MemoryBackend, h Handle) error { return b.SetWindowState(h, WindowHidden, true) },
			want: []EventType{EventWindowHidden},
		},
		{
			name: "raise focused window",
			do:   func(b *MemoryBackend, h Handle) error { return b.RaiseWindow(h) },
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newVideoBackend(t)
			b.AutoConfirm = true
			h, err := b.CreateWindow("t", 100, 100, WindowResizable)
			if err != nil {
				t.Fatalf("CreateWindow: %v", err)
			}
			if err := tt.do(b, h); err != nil {
				t.Fatalf("request: %v", err)
			}
			got := drainTypes(b)
			if len(got) != len(tt.want) {
				t.Fatalf("events = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Fatalf("events = %v, want %v", got, tt.want)
				}
			}
		})
	}
}

func TestMemoryRestoreReturnsToSavedBounds(t *testing.T) {
	b := newVideoBackend(t)
	b.AutoConfirm = true
	h, _ := b.CreateWindow("t", 400, 300, WindowResizable)
	before, _ := b.NativeInfo(h)

	if err := b.MaximizeWindow(h); err != nil {
		t.Fatalf("MaximizeWindow: %v", err)
	}
	maxed, _ := b.NativeInfo(h)
	if maxed.Bounds != b.displays[0].Usable {
		t.Errorf("maximized bounds = %+v", maxed.Bounds)
	}
	if err := b.RestoreWindow(h); err != nil {
		t.Fatalf("RestoreWindow: %v", err)
	}
	after, _ := b.NativeInfo(h)
	if after.Bounds != before.Bounds {
		t.Errorf("restored bounds = %+v, want %+v", after.Bounds, before.Bounds)
	}
	if after.Flags.Has(WindowMaximized) {
		t.Error("still maximized")
	}
}

func TestMemorySizeLimitsClamp(t *testing.T) {
	b := newVideoBackend(t)
	h, _ := b.CreateWindow("t", 400, 300, WindowResizable)
	_ = b.SetWindowMinimumSize(h, 200, 200)
	_ = b.SetWindowMaximumSize(h, 500, 0)
	if err := b.SetWindowSize(h, 900, 50); err != nil {
		t.Fatalf("SetWindowSize: %v", err)
	}
	info, _ := b.NativeInfo(h)
	if info.Bounds.Width != 500 || info.Bounds.Height != 200 {
		t.Errorf("size = %dx%d, want 500x200", info.Bounds.Width, info.Bounds.Height)
	}
}

func TestMemoryRejectsUnsettableState(t *testing.T) {
	b := newVideoBackend(t)
	h, _ := b.CreateWindow("t", 10, 10, 0)
	if err := b.SetWindowState(h, WindowInputFocus, true); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("error = %v, want ErrUnsupported", err)
	}
}

func TestMemoryFailureInjection(t *testing.T) {
	b := newVideoBackend(t)
	h, _ := b.CreateWindow("t", 10, 10, 0)
	boom := errors.New("boom")

	b.Fail("SetWindowTitle", boom)
	if err := b.SetWindowTitle(h, "x"); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want boom", err)
	}
	info, _ := b.NativeInfo(h)
	if info.Title != "t" {
		t.Errorf("title changed to %q despite failure", info.Title)
	}

	b.Fail("SetWindowTitle", nil)
	if err := b.SetWindowTitle(h, "x"); err != nil {
		t.Fatalf("cleared failure still fails: %v", err)
	}
}

func TestMemoryInvalidHandle(t *testing.T) {
	b := newVideoBackend(t)
	if _, err := b.QueryWindow(0xdead); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("error = %v, want ErrInvalidHandle", err)
	}
	if err := b.SyncWindow(context.Background(), 0xdead); !errors.Is(err, ErrInvalidHandle) {
		t.Fatalf("error = %v, want ErrInvalidHandle", err)
	}
	if b.WindowID(0xdead) != 0 {
		t.Fatal("unknown handle has an id")
	}
}

func TestMemoryInitErrorAndQuit(t *testing.T) {
	b := NewMemoryBackend()
	boom := errors.New("no audio device")
	b.SetInitError(SubsystemAudio, boom)

	if err := b.InitSubsystem(SubsystemAudio); !errors.Is(err, boom) {
		t.Fatalf("error = %v, want injected error", err)
	}
	if b.Active() != 0 {
		t.Fatalf("Active = %s after failed init", b.Active())
	}

	if err := b.InitSubsystem(SubsystemVideo); err != nil {
		t.Fatalf("InitSubsystem: %v", err)
	}
	h, _ := b.CreateWindow("t", 10, 10, 0)
	b.Push(Event{Type: EventQuit})
	b.Quit()

	if b.Active() != 0 {
		t.Errorf("Active = %s after Quit", b.Active())
	}
	if _, ok := b.NativeInfo(h); ok {
		t.Error("window survived Quit")
	}
	if _, ok := b.PollEvent(); ok {
		t.Error("queue survived Quit")
	}
}

func TestMemorySyncHonorsContext(t *testing.T) {
	b := newVideoBackend(t)
	h, _ := b.CreateWindow("t", 10, 10, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.SyncWindow(ctx, h); !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}

func TestMemoryInputStateFocus(t *testing.T) {
	b := newVideoBackend(t)
	h, _ := b.CreateWindow("t", 10, 10, 0)
	s, err := b.InputState()
	if err != nil {
		t.Fatalf("InputState: %v", err)
	}
	if s.KeyboardFocus != b.WindowID(h) {
		t.Errorf("KeyboardFocus = %d, want %d", s.KeyboardFocus, b.WindowID(h))
	}

	b.SetInputState(InputState{Pointer: Point{X: 3, Y: 4}, Buttons: ButtonLeft, KeyboardFocus: 99})
	s, _ = b.InputState()
	if s.Pointer != (Point{X: 3, Y: 4}) || s.Buttons != ButtonLeft || s.KeyboardFocus != 99 {
		t.Errorf("InputState = %+v", s)
	}
}

func TestMemoryCallLog(t *testing.T) {
	b := newVideoBackend(t)
	h, _ := b.CreateWindow("t", 10, 20, WindowResizable)
	b.DestroyWindow(h)
	b.DestroyWindow(h)

	if got := b.CallCount("CreateWindow"); got != 1 {
		t.Errorf("CreateWindow calls = %d", got)
	}
	if got := b.Destroyed(h); got != 2 {
		t.Errorf("Destroyed = %d, want 2", got)
	}
	calls := b.Calls()
	if calls[0] != "InitSubsystem(video)" || calls[1] != `CreateWindow("t", 10, 20, resizable)` {
		t.Errorf("calls = %q", calls)
	}
	b.ResetCalls()
	if len(b.Calls()) != 0 {
		t.Error("ResetCalls left entries")
	}
}

func TestMemoryFullscreenMode(t *testing.T) {
	b := newVideoBackend(t)
	h, err := b.CreateWindow("t", 800, 600, 0)
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}

	odd := DisplayMode{Width: 1000, Height: 500, RefreshRate: 60}
	if err := b.SetWindowFullscreenMode(h, &odd); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("unknown mode error = %v, want ErrUnsupported", err)
	}
	mode := memMode(1280, 720, 120)
	if err := b.SetWindowFullscreenMode(h, &mode); err != nil {
		t.Fatalf("SetWindowFullscreenMode: %v", err)
	}
	if err := b.SetWindowState(h, WindowFullscreen, true); err != nil {
		t.Fatalf("enter fullscreen: %v", err)
	}
	info, _ := b.NativeInfo(h)
	if want := (Rect{Width: 1280, Height: 720}); info.Bounds != want {
		t.Errorf("fullscreen bounds = %v, want %v", info.Bounds, want)
	}

	if err := b.SetWindowFullscreenMode(h, nil); err != nil {
		t.Fatalf("clear mode: %v", err)
	}
	info, _ = b.NativeInfo(h)
	if want := (Rect{Width: 1920, Height: 1080}); info.Bounds != want {
		t.Errorf("desktop fullscreen bounds = %v, want %v", info.Bounds, want)
	}
	if st, _ := b.NativeState(h); st.FullscreenMode != nil {
		t.Errorf("mode = %v after clearing", st.FullscreenMode)
	}
}

func TestMemoryWarpMouse(t *testing.T) {
	b := newVideoBackend(t)
	b.AutoConfirm = true
	h, err := b.CreateWindow("t", 800, 600, 0)
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	info, _ := b.NativeInfo(h)

	tests := []struct {
		name  string
		clip  Rect
		x, y  int
		wantX int
		wantY int
	}{
		{"free", Rect{}, 40, 30, 40, 30},
		{"clamped", Rect{X: 10, Y: 10, Width: 100, Height: 50}, 500, 5, 109, 10},
		{"inside clip", Rect{X: 10, Y: 10, Width: 100, Height: 50}, 20, 20, 20, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := b.SetWindowMouseRect(h, tt.clip); err != nil {
				t.Fatalf("SetWindowMouseRect: %v", err)
			}
			if err := b.WarpMouse(h, tt.x, tt.y); err != nil {
				t.Fatalf("WarpMouse: %v", err)
			}
			ev, ok := b.PollEvent()
			if !ok || ev.Type != EventMouseMotion {
				t.Fatalf("event = %v, %t, want mouse motion", ev.Type, ok)
			}
			if int(ev.Data1) != tt.wantX || int(ev.Data2) != tt.wantY {
				t.Errorf("motion = %d,%d, want %d,%d", ev.Data1, ev.Data2, tt.wantX, tt.wantY)
			}
			in, err := b.InputState()
			if err != nil {
				t.Fatalf("InputState: %v", err)
			}
			want := Point{X: info.Bounds.X + tt.wantX, Y: info.Bounds.Y + tt.wantY}
			if in.Pointer != want {
				t.Errorf("pointer = %v, want %v", in.Pointer, want)
			}
		})
	}
}

func TestMemoryFlash(t *testing.T) {
	b := newVideoBackend(t)
	h, err := b.CreateWindow("t", 800, 600, WindowHidden)
	if err != nil {
		t.Fatalf("CreateWindow: %v", err)
	}
	flash := func() FlashState {
		st, _ := b.NativeState(h)
		return st.Flash
	}

	if err := b.FlashWindow(h, FlashBriefly); err != nil {
		t.Fatalf("FlashWindow: %v", err)
	}
	if got := flash(); got != FlashCancel {
		t.Errorf("brief flash left state %s", got)
	}
	if err := b.FlashWindow(h, FlashUntilFocused); err != nil {
		t.Fatalf("FlashWindow: %v", err)
	}
	if got := flash(); got != FlashUntilFocused {
		t.Errorf("state = %s, want until-focused", got)
	}
	if err := b.RaiseWindow(h); err != nil {
		t.Fatalf("RaiseWindow: %v", err)
	}
	if got := flash(); got != FlashCancel {
		t.Errorf("focus left state %s", got)
	}

	b.Fail("FlashWindow", ErrUnsupported)
	if err := b.FlashWindow(h, FlashUntilFocused); !errors.Is(err, ErrUnsupported) {
		t.Errorf("injected failure = %v", err)
	}
}

func TestMemoryScreenSaver(t *testing.T) {
	b := NewMemoryBackend()
	if err := b.SetScreenSaverEnabled(false); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("without video error = %v, want ErrNotInitialized", err)
	}
	if err := b.InitSubsystem(SubsystemVideo); err != nil {
		t.Fatalf("InitSubsystem: %v", err)
	}
	if !b.ScreenSaverEnabled() {
		t.Fatal("screen saver disabled by default")
	}
	if err := b.SetScreenSaverEnabled(false); err != nil {
		t.Fatalf("disable: %v", err)
	}
	if b.ScreenSaverEnabled() {
		t.Error("still enabled after disable")
	}
	b.Quit()
	if !b.ScreenSaverEnabled() {
		t.Error("Quit did not restore the screen saver")
	}
}
