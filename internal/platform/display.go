package platform

import (
	"fmt"
	"math"
	"sort"
	"strings"
)

// DisplayMode is a resolution and refresh rate a display can be driven at.
type DisplayMode struct {
	DisplayID    int
	Width        int
	Height       int
	PixelDensity float64
	RefreshRate  float64
	// RefreshNumerator/RefreshDenominator is the exact rate when the backend
	// knows the mode timings. Both are zero otherwise.
	RefreshNumerator   int
	RefreshDenominator int
}

func (m DisplayMode) String() string {
	return fmt.Sprintf("%dx%d@%.2fHz", m.Width, m.Height, m.RefreshRate)
}

// SortModes orders modes the way fullscreen modes are listed: largest first,
// then highest pixel density, then highest refresh rate.
func SortModes(modes []DisplayMode) {
	sort.SliceStable(modes, func(i, j int) bool {
		a, b := modes[i], modes[j]
		if a.Width != b.Width {
			return a.Width > b.Width
		}
		if a.Height != b.Height {
			return a.Height > b.Height
		}
		if a.PixelDensity != b.PixelDensity {
			return a.PixelDensity > b.PixelDensity
		}
		return a.RefreshRate > b.RefreshRate
	})
}

// ClosestMode returns the smallest mode at least width x height, breaking
// ties by the refresh rate nearest to refresh. A refresh of zero prefers the
// fastest rate. Modes with a pixel density above 1 are skipped unless
// highDensity is set.
func ClosestMode(modes []DisplayMode, width, height int, refresh float64, highDensity bool) (DisplayMode, bool) {
	var best DisplayMode
	found := false
	for _, m := range modes {
		if m.Width < width || m.Height < height {
			continue
		}
		if m.PixelDensity > 1 && !highDensity {
			continue
		}
		if !found || closerMode(m, best, refresh) {
			best, found = m, true
		}
	}
	return best, found
}

func closerMode(m, than DisplayMode, refresh float64) bool {
	if a, b := m.Width*m.Height, than.Width*than.Height; a != b {
		return a < b
	}
	if refresh <= 0 {
		return m.RefreshRate > than.RefreshRate
	}
	return math.Abs(m.RefreshRate-refresh) < math.Abs(than.RefreshRate-refresh)
}

// FlashState is how a window asks for the user's attention.
type FlashState uint8

const (
	// FlashCancel stops a flash in progress.
	FlashCancel FlashState = iota
	// FlashBriefly flashes once.
	FlashBriefly
	// FlashUntilFocused flashes until the window gains input focus.
	FlashUntilFocused
)

var flashNames = []string{"cancel", "briefly", "until-focused"}

func (s FlashState) String() string {
	if int(s) < len(flashNames) {
		return flashNames[s]
	}
	return fmt.Sprintf("FlashState(%d)", uint8(s))
}

// ParseFlashState converts "cancel", "briefly" or "until-focused" (dashes
// and underscores alike) into a FlashState.
func ParseFlashState(raw string) (FlashState, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-")
	for i, n := range flashNames {
		if n == name {
			return FlashState(i), nil
		}
	}
	return 0, fmt.Errorf("unknown flash state %q", raw)
}
