package platform

import "testing"

func TestIsWindowEvent(t *testing.T) {
	tests := []struct {
		typ  EventType
		want bool
	}{
		{EventQuit, false},
		{EventWindowShown, true},
		{EventWindowResized, true},
		{EventWindowCloseRequested, true},
		{EventWindowDestroyed, true},
		{EventKeyDown, false},
		{EventMouseMotion, false},
		{EventDisplaysChanged, false},
	}
	for _, tt := range tests {
		if got := tt.typ.IsWindowEvent(); got != tt.want {
			t.Errorf("%s.IsWindowEvent() = %t, want %t", tt.typ, got, tt.want)
		}
	}
}

func TestEventTypeNames(t *testing.T) {
	for typ := EventNone; typ <= EventDisplaysChanged; typ++ {
		if _, ok := eventTypeNames[typ]; !ok {
			t.Errorf("event type %d has no name", typ)
		}
	}
	if got := EventType(999).String(); got != "event(999)" {
		t.Errorf("unknown type String() = %q", got)
	}
}

func TestEventString(t *testing.T) {
	ev := Event{Type: EventWindowResized, WindowID: 3, Data1: 1024, Data2: 768}
	if got := ev.String(); got != "window-resized window=3 data=1024,768" {
		t.Errorf("String() = %q", got)
	}
}
