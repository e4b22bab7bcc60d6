package x11

import (
	"testing"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgbutil/ewmh"
)

func TestRefreshRate(t *testing.T) {
	tests := []struct {
		name string
		mode randr.ModeInfo
		want float64
	}{
		// 1920x1080@60 CEA timing.
		{"1080p60", randr.ModeInfo{DotClock: 148500000, Htotal: 2200, Vtotal: 1125}, 60},
		// 2560x1440 reduced blanking.
		{"1440p59.95", randr.ModeInfo{DotClock: 241500000, Htotal: 2720, Vtotal: 1481}, 59.95},
		{"no timings", randr.ModeInfo{DotClock: 148500000}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := refreshRate(tt.mode); got != tt.want {
				t.Fatalf("refreshRate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestScaleFromPhysical(t *testing.T) {
	tests := []struct {
		name      string
		px, mm    int
		wantScale float64
	}{
		{"unknown size", 1920, 0, 1},
		{"24in 1080p", 1920, 531, 1},
		{"27in 4k", 3840, 597, 1.75},
		{"13in 2560", 2560, 286, 2.25},
		{"low dpi clamps to 1", 1024, 600, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scaleFromPhysical(tt.px, tt.mm); got != tt.wantScale {
				t.Fatalf("scaleFromPhysical(%d, %d) = %v, want %v", tt.px, tt.mm, got, tt.wantScale)
			}
		})
	}
}

func TestStrutsOnlyAffectTheirMonitor(t *testing.T) {
	left := Monitor{X: 0, Y: 0, Width: 1920, Height: 1080}
	right := Monitor{X: 1920, Y: 0, Width: 1920, Height: 1080}
	rootW, rootH := 3840, 1080

	// A 32px top panel spanning only the left monitor.
	panel := &ewmh.WmStrutPartial{Top: 32, TopStartX: 0, TopEndX: 1919}

	for _, tc := range []struct {
		name    string
		mon     Monitor
		wantTop int
	}{
		{"left", left, 32},
		{"right", right, 0},
	} {
		t.Run(tc.name, func(t *testing.T) {
			var acc dockStruts
			mon := tc.mon
			updateStrutsForMonitor(&mon, rootW, rootH, panel, &acc)
			if acc.top != tc.wantTop {
				t.Fatalf("top strut = %d, want %d", acc.top, tc.wantTop)
			}
			acc.apply(&mon)
			if mon.UsableY != tc.mon.Y+tc.wantTop || mon.UsableHeight != tc.mon.Height-tc.wantTop {
				t.Fatalf("usable = y%d h%d", mon.UsableY, mon.UsableHeight)
			}
		})
	}
}

func TestStrutsBottomAndSides(t *testing.T) {
	mon := Monitor{X: 0, Y: 0, Width: 1920, Height: 1080}
	var acc dockStruts
	updateStrutsForMonitor(&mon, 1920, 1080, &ewmh.WmStrutPartial{
		Bottom: 40, BottomStartX: 0, BottomEndX: 1919,
	}, &acc)
	updateStrutsForMonitor(&mon, 1920, 1080, &ewmh.WmStrutPartial{
		Left: 48, LeftStartY: 0, LeftEndY: 1079,
	}, &acc)
	acc.apply(&mon)

	if mon.UsableX != 48 || mon.UsableWidth != 1872 {
		t.Errorf("usable x/width = %d/%d", mon.UsableX, mon.UsableWidth)
	}
	if mon.UsableY != 0 || mon.UsableHeight != 1040 {
		t.Errorf("usable y/height = %d/%d", mon.UsableY, mon.UsableHeight)
	}
}

func TestIntersectionSize(t *testing.T) {
	if got := intersectionSize(0, 0, 10, 10, 5, 5, 20, 20); got != (intersection{w: 5, h: 5}) {
		t.Errorf("overlap = %+v", got)
	}
	if got := intersectionSize(0, 0, 10, 10, 10, 0, 20, 10); got.nonEmpty() {
		t.Errorf("touching edges overlap: %+v", got)
	}
}

func TestModeFromInfo(t *testing.T) {
	got := modeFromInfo(randr.ModeInfo{Width: 1920, Height: 1080, DotClock: 148500000, Htotal: 2200, Vtotal: 1125})
	want := Mode{Width: 1920, Height: 1080, RefreshRate: 60, DotClock: 148500000, Htotal: 2200, Vtotal: 1125}
	if got != want {
		t.Fatalf("modeFromInfo = %+v, want %+v", got, want)
	}
}
