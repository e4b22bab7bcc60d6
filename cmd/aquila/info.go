package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/kappaduck/aquila/internal/audio"
	"github.com/kappaduck/aquila/internal/platform"
)

type infoFlags struct {
	fs      *flag.FlagSet
	path    *string
	backend *string
	json    *bool
}

func newInfoFlags(name, summary string) *infoFlags {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	f := &infoFlags{
		fs:      fs,
		path:    fs.String("path", "", "Config file path (default: ~/.config/aquila/config.yaml)"),
		backend: fs.String("backend", "", "Backend to use (default: config backend)"),
		json:    fs.Bool("json", false, "Output JSON"),
	}
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: aquila %s [--backend NAME] [--json]\n", name)
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, summary)
	}
	return f
}

// open parses args and starts a session with the given subsystems. A zero
// exit code with a nil session means help was printed.
func (f *infoFlags) open(args []string, mask platform.Subsystem) (*session, int) {
	if err := f.fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, 0
		}
		return nil, 2
	}
	res, err := loadConfig(*f.path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return nil, 1
	}
	name := *f.backend
	if name == "" {
		name = res.Config.Backend
	}
	sess, err := openSession(name, mask, stderrLogger(res.Config))
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open backend %q: %v\n", name, err)
		return nil, 1
	}
	return sess, 0
}

func writeJSON(w io.Writer, v any) int {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runDisplays(args []string) int {
	f := newInfoFlags("displays", "List connected displays with their bounds and usable area.")
	modes := f.fs.Bool("modes", false, "Also list each display's fullscreen modes")
	sess, code := f.open(args, platform.SubsystemVideo)
	if sess == nil {
		return code
	}
	defer sess.Close()

	displays, err := sess.backend.Displays()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *f.json {
		return writeJSON(os.Stdout, displays)
	}
	printDisplays(os.Stdout, displays)
	if *modes {
		printModes(os.Stdout, displays)
	}
	return 0
}

// printModes lists fullscreen modes per display, marking the desktop mode.
func printModes(w io.Writer, displays []platform.Display) {
	for _, d := range displays {
		fmt.Fprintf(w, "\nDisplay %d (%s) modes:\n", d.ID, d.Name)
		for _, m := range d.Modes {
			mark := " "
			if m.Width == d.DesktopMode.Width && m.Height == d.DesktopMode.Height && m.RefreshRate == d.DesktopMode.RefreshRate {
				mark = "*"
			}
			fmt.Fprintf(w, " %s %s\n", mark, m)
		}
	}
}

func runDrivers(args []string) int {
	fs := flag.NewFlagSet("drivers", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/aquila/config.yaml)")
	asJSON := fs.Bool("json", false, "Output JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: aquila drivers [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List the backends built into this binary. The configured one is marked.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	res, err := loadConfig(*path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	names := platform.Backends()
	if *asJSON {
		return writeJSON(os.Stdout, struct {
			Drivers    []string `json:"drivers"`
			Configured string   `json:"configured"`
		}{names, res.Config.Backend})
	}
	printDrivers(os.Stdout, names, res.Config.Backend)
	return 0
}

func printDrivers(w io.Writer, names []string, configured string) {
	for _, name := range names {
		mark := " "
		if name == configured {
			mark = "*"
		}
		fmt.Fprintf(w, "%s %s\n", mark, name)
	}
}

func printDisplays(w io.Writer, displays []platform.Display) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tPRIMARY\tBOUNDS\tUSABLE\tHZ\tSCALE")
	for _, d := range displays {
		primary := ""
		if d.Primary {
			primary = "*"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%.2f\t%.2f\n",
			d.ID, d.Name, primary, formatRect(d.Bounds), formatRect(d.Usable), d.RefreshRate, d.ContentScale)
	}
	tw.Flush()
}

func formatRect(r platform.Rect) string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

func runInput(args []string) int {
	f := newInfoFlags("input", "Show the pointer position, pressed buttons, modifiers and focus.")
	sess, code := f.open(args, platform.SubsystemVideo|platform.SubsystemEvents)
	if sess == nil {
		return code
	}
	defer sess.Close()

	st, err := sess.backend.InputState()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *f.json {
		return writeJSON(os.Stdout, st)
	}
	fmt.Printf("pointer:        %d,%d\n", st.Pointer.X, st.Pointer.Y)
	fmt.Printf("buttons:        %#x\n", uint8(st.Buttons))
	fmt.Printf("modifiers:      %#x\n", uint16(st.Modifiers))
	fmt.Printf("keyboard focus: %d\n", st.KeyboardFocus)
	fmt.Printf("mouse focus:    %d\n", st.MouseFocus)
	return 0
}

func runAudio(args []string) int {
	fs := flag.NewFlagSet("audio", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Output JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: aquila audio [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "List audio devices.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if err := audio.Init(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, audio.ErrUnavailable) {
			return 2
		}
		return 1
	}
	defer audio.Terminate()

	devices, err := audio.Devices()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		return writeJSON(os.Stdout, devices)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "INDEX\tNAME\tHOST API\tIN\tOUT\tRATE\tDEFAULT")
	for _, d := range devices {
		def := ""
		switch {
		case d.DefaultInput && d.DefaultOutput:
			def = "in,out"
		case d.DefaultInput:
			def = "in"
		case d.DefaultOutput:
			def = "out"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%d\t%.0f\t%s\n",
			d.Index, d.Name, d.HostAPI, d.MaxInputChannels, d.MaxOutputChannels, d.DefaultSampleRate, def)
	}
	tw.Flush()
	return 0
}
