package window

import (
	"testing"

	"github.com/kappaduck/aquila/internal/platform"
)

func TestReduce(t *testing.T) {
	base := State{
		Flags:       platform.WindowResizable | platform.WindowOccluded | platform.WindowMinimized | platform.WindowMaximized,
		Position:    platform.Point{X: 10, Y: 20},
		Width:       800,
		Height:      600,
		PixelWidth:  1600,
		PixelHeight: 1200,
	}

	tests := []struct {
		name string
		ev   platform.Event
		want func(State) State
	}{
		{
			name: "exposed clears occluded",
			ev:   platform.Event{Type: platform.EventWindowExposed},
			want: func(s State) State { s.Flags &^= platform.WindowOccluded; return s },
		},
		{
			name: "occluded",
			ev:   platform.Event{Type: platform.EventWindowOccluded},
			want: func(s State) State { s.Flags |= platform.WindowOccluded; return s },
		},
		{
			name: "resized",
			ev:   platform.Event{Type: platform.EventWindowResized, Data1: 1024, Data2: 768},
			want: func(s State) State { s.Width, s.Height = 1024, 768; return s },
		},
		{
			name: "pixel size",
			ev:   platform.Event{Type: platform.EventWindowPixelSizeChanged, Data1: 2048, Data2: 1536},
			want: func(s State) State { s.PixelWidth, s.PixelHeight = 2048, 1536; return s },
		},
		{
			name: "moved",
			ev:   platform.Event{Type: platform.EventWindowMoved, Data1: -5, Data2: 7},
			want: func(s State) State { s.Position = platform.Point{X: -5, Y: 7}; return s },
		},
		{
			name: "mouse enter",
			ev:   platform.Event{Type: platform.EventWindowMouseEnter},
			want: func(s State) State { s.Flags |= platform.WindowMouseFocus; return s },
		},
		{
			name: "focus gained",
			ev:   platform.Event{Type: platform.EventWindowFocusGained},
			want: func(s State) State { s.Flags |= platform.WindowInputFocus; return s },
		},
		{
			name: "restored clears minimized and maximized",
			ev:   platform.Event{Type: platform.EventWindowRestored},
			want: func(s State) State { s.Flags &^= platform.WindowMinimized | platform.WindowMaximized; return s },
		},
		{
			name: "maximized clears minimized",
			ev:   platform.Event{Type: platform.EventWindowMaximized},
			want: func(s State) State { s.Flags &^= platform.WindowMinimized; return s },
		},
		{
			name: "hidden",
			ev:   platform.Event{Type: platform.EventWindowHidden},
			want: func(s State) State { s.Flags |= platform.WindowHidden; return s },
		},
		{
			name: "enter fullscreen",
			ev:   platform.Event{Type: platform.EventWindowEnterFullscreen},
			want: func(s State) State { s.Flags |= platform.WindowFullscreen; return s },
		},
		{
			name: "key events carry no window state",
			ev:   platform.Event{Type: platform.EventKeyDown, Data1: 9},
			want: func(s State) State { return s },
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reduce(base, tt.ev)
			if want := tt.want(base); got != want {
				t.Errorf("Reduce = %+v, want %+v", got, want)
			}
		})
	}
}

func TestReducePairsAreInverse(t *testing.T) {
	pairs := []struct {
		on, off platform.EventType
		flag    platform.WindowFlags
	}{
		{platform.EventWindowOccluded, platform.EventWindowExposed, platform.WindowOccluded},
		{platform.EventWindowMouseEnter, platform.EventWindowMouseLeave, platform.WindowMouseFocus},
		{platform.EventWindowFocusGained, platform.EventWindowFocusLost, platform.WindowInputFocus},
		{platform.EventWindowHidden, platform.EventWindowShown, platform.WindowHidden},
		{platform.EventWindowEnterFullscreen, platform.EventWindowLeaveFullscreen, platform.WindowFullscreen},
	}
	for _, p := range pairs {
		s := Reduce(State{}, platform.Event{Type: p.on})
		if !s.Flags.Has(p.flag) {
			t.Errorf("%s did not set %s", p.on, p.flag)
		}
		s = Reduce(s, platform.Event{Type: p.off})
		if s.Flags != 0 {
			t.Errorf("%s left flags %s", p.off, s.Flags)
		}
	}
}

func TestApplyIgnoresNonWindowEvents(t *testing.T) {
	_, w := openWindow(t, 0)
	before := w.State()

	if w.Apply(platform.Event{Type: platform.EventMouseMotion, WindowID: w.ID(), Data1: 5, Data2: 5}) {
		t.Error("mouse motion applied to window state")
	}
	if w.Apply(platform.Event{Type: platform.EventWindowMoved, WindowID: w.ID() + 7, Data1: 5, Data2: 5}) {
		t.Error("foreign window event applied")
	}
	if w.State() != before {
		t.Errorf("state changed: %+v -> %+v", before, w.State())
	}
	if !w.Apply(platform.Event{Type: platform.EventWindowMoved, WindowID: w.ID(), Data1: 5, Data2: 6}) {
		t.Fatal("own move event not applied")
	}
	if w.Position() != (platform.Point{X: 5, Y: 6}) {
		t.Errorf("Position = %+v", w.Position())
	}
}
