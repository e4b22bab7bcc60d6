package platform

import (
	"fmt"
	"math/bits"
	"strings"
)

// Subsystem is a bitmask of native capability areas.
type Subsystem uint32

const (
	SubsystemVideo Subsystem = 1 << iota
	SubsystemAudio
	SubsystemEvents

	SubsystemNone Subsystem = 0
)

var subsystemNames = []struct {
	bit  Subsystem
	name string
}{
	{SubsystemVideo, "video"},
	{SubsystemAudio, "audio"},
	{SubsystemEvents, "events"},
}

// Bits splits the mask into its individual subsystems, lowest bit first.
func (s Subsystem) Bits() []Subsystem {
	out := make([]Subsystem, 0, bits.OnesCount32(uint32(s)))
	for rest := s; rest != 0; {
		bit := rest & -rest
		out = append(out, bit)
		rest &^= bit
	}
	return out
}

func (s Subsystem) String() string {
	if s == SubsystemNone {
		return "none"
	}
	var parts []string
	rest := s
	for _, n := range subsystemNames {
		if s&n.bit != 0 {
			parts = append(parts, n.name)
			rest &^= n.bit
		}
	}
	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return strings.Join(parts, "|")
}

// ParseSubsystems converts names such as "video" into a mask.
func ParseSubsystems(names []string) (Subsystem, error) {
	var mask Subsystem
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		found := false
		for _, n := range subsystemNames {
			if n.name == name {
				mask |= n.bit
				found = true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("unknown subsystem %q", raw)
		}
	}
	return mask, nil
}

// WindowFlags is the set of window state bits.
type WindowFlags uint32

const (
	WindowResizable WindowFlags = 1 << iota
	WindowBorderless
	WindowFullscreen
	WindowMaximized
	WindowMinimized
	WindowHidden
	WindowAlwaysOnTop
	WindowInputFocus
	WindowMouseFocus
	WindowMouseGrabbed
	WindowKeyboardGrabbed
	WindowMouseCaptured
	WindowOccluded
	WindowHighPixelDensity
	WindowNotFocusable
	WindowRelativeMouse
)

// CreationFlags are the bits a caller may request when creating a window.
const CreationFlags = WindowResizable | WindowBorderless | WindowFullscreen |
	WindowMaximized | WindowMinimized | WindowHidden | WindowAlwaysOnTop |
	WindowMouseGrabbed | WindowKeyboardGrabbed | WindowHighPixelDensity |
	WindowNotFocusable

// SettableFlags are the bits accepted by Backend.SetWindowState.
const SettableFlags = WindowResizable | WindowBorderless | WindowFullscreen |
	WindowHidden | WindowAlwaysOnTop | WindowMouseGrabbed |
	WindowKeyboardGrabbed | WindowMouseCaptured | WindowNotFocusable |
	WindowRelativeMouse

var windowFlagNames = []struct {
	bit  WindowFlags
	name string
}{
	{WindowResizable, "resizable"},
	{WindowBorderless, "borderless"},
	{WindowFullscreen, "fullscreen"},
	{WindowMaximized, "maximized"},
	{WindowMinimized, "minimized"},
	{WindowHidden, "hidden"},
	{WindowAlwaysOnTop, "always-on-top"},
	{WindowInputFocus, "input-focus"},
	{WindowMouseFocus, "mouse-focus"},
	{WindowMouseGrabbed, "mouse-grabbed"},
	{WindowKeyboardGrabbed, "keyboard-grabbed"},
	{WindowMouseCaptured, "mouse-captured"},
	{WindowOccluded, "occluded"},
	{WindowHighPixelDensity, "high-pixel-density"},
	{WindowNotFocusable, "not-focusable"},
	{WindowRelativeMouse, "relative-mouse"},
}

// Has reports whether all bits of mask are set.
func (f WindowFlags) Has(mask WindowFlags) bool { return f&mask == mask }

// With returns f with mask set or cleared.
func (f WindowFlags) With(mask WindowFlags, on bool) WindowFlags {
	if on {
		return f | mask
	}
	return f &^ mask
}

func (f WindowFlags) String() string {
	if f == 0 {
		return "none"
	}
	names := f.Names()
	return strings.Join(names, "|")
}

// Names lists the set flags by name.
func (f WindowFlags) Names() []string {
	var names []string
	rest := f
	for _, n := range windowFlagNames {
		if f&n.bit != 0 {
			names = append(names, n.name)
			rest &^= n.bit
		}
	}
	if rest != 0 {
		names = append(names, fmt.Sprintf("0x%x", uint32(rest)))
	}
	return names
}

// ParseWindowFlag converts a single flag name into its bit. Underscores and
// dashes are interchangeable.
func ParseWindowFlag(raw string) (WindowFlags, error) {
	name := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-")
	for _, n := range windowFlagNames {
		if n.name == name {
			return n.bit, nil
		}
	}
	return 0, fmt.Errorf("unknown window flag %q", raw)
}

// ParseWindowFlags converts a list of flag names into a mask.
func ParseWindowFlags(names []string) (WindowFlags, error) {
	var mask WindowFlags
	for _, raw := range names {
		bit, err := ParseWindowFlag(raw)
		if err != nil {
			return 0, err
		}
		mask |= bit
	}
	return mask, nil
}
