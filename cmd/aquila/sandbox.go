package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kappaduck/aquila/internal/platform"
	"github.com/kappaduck/aquila/internal/subsystem"
	"github.com/kappaduck/aquila/internal/window"
)

const frameInterval = 16 * time.Millisecond

// session is an opened backend with its subsystems acquired.
type session struct {
	backend  platform.Backend
	registry *subsystem.Registry
	handle   *subsystem.Handle
}

func openSession(name string, mask platform.Subsystem, logger *slog.Logger) (*session, error) {
	backend, err := platform.Open(name, logger)
	if err != nil {
		return nil, err
	}
	reg := subsystem.NewRegistry(backend, subsystem.WithLogger(logger))
	h, err := reg.Acquire(mask)
	if err != nil {
		return nil, err
	}
	return &session{backend: backend, registry: reg, handle: h}, nil
}

func (s *session) Close() error { return s.handle.Release() }

func runSandbox(args []string) int {
	fs := flag.NewFlagSet("sandbox", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	path := fs.String("path", "", "Config file path (default: ~/.config/aquila/config.yaml)")
	backendName := fs.String("backend", "", "Backend to use (default: config backend)")
	title := fs.String("title", "", "Window title (default: config window.title)")
	width := fs.Int("width", 0, "Window width (default: config window.width)")
	height := fs.Int("height", 0, "Window height (default: config window.height)")
	frames := fs.Int("frames", 0, "Stop after this many frames (0: run until closed)")
	noSaver := fs.Bool("no-screensaver", false, "Inhibit the screen saver while the sandbox runs")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: aquila sandbox [options]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Open a window and log its events and state changes.")
		fmt.Fprintln(os.Stderr, "Keys: f fullscreen, m minimize, x maximize, r restore, g grab mouse,")
		fmt.Fprintln(os.Stderr, "      c clip mouse to the center, w warp mouse to the center, a flash, Esc quit.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
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
	cfg := res.Config
	logger := stderrLogger(cfg)

	if *backendName == "" {
		*backendName = cfg.Backend
	}
	if *title == "" {
		*title = cfg.Window.Title
	}
	if *width <= 0 {
		*width = cfg.Window.Width
	}
	if *height <= 0 {
		*height = cfg.Window.Height
	}
	mask, err := cfg.SubsystemMask()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	flags, err := cfg.WindowFlags()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	sess, err := openSession(*backendName, mask|platform.SubsystemVideo|platform.SubsystemEvents, logger)
	if err != nil {
		logger.Error("failed to start", "backend", *backendName, "error", err)
		return 1
	}
	defer sess.Close()

	if *noSaver {
		if err := sess.backend.SetScreenSaverEnabled(false); err != nil {
			logger.Warn("screen saver not inhibited", "error", err)
		} else {
			defer sess.backend.SetScreenSaverEnabled(true)
		}
	}

	w, err := window.Open(sess.backend, *title, *width, *height, flags,
		window.WithLogger(logger),
		window.WithSyncTimeout(cfg.SyncTimeout.Std()))
	if err != nil {
		logger.Error("failed to open window", "error", err)
		return 1
	}
	defer w.Close()
	if cfg.Window.Opacity < 1 {
		if err := w.SetOpacity(cfg.Window.Opacity); err != nil {
			logger.Warn("opacity not applied", "error", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sb := &sandbox{w: w, logger: logger}
	logger.Info("sandbox started",
		"backend", *backendName,
		"window_id", w.ID(),
		"bounds", w.Bounds(),
		"flags", w.Flags())

	if err := sb.run(ctx, *frames); err != nil {
		logger.Error("sandbox stopped", "error", err)
		return 1
	}
	logger.Info("sandbox finished", "frames", sb.frames)
	return 0
}

type sandbox struct {
	w      *window.Window
	logger *slog.Logger
	frames int
}

// run pumps events once per frame until the window goes away, a quit key is
// pressed, ctx is done or the frame limit is reached.
func (s *sandbox) run(ctx context.Context, limit int) error {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	for limit <= 0 || s.frames < limit {
		if s.pump() {
			return nil
		}
		s.frames++
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
	return nil
}

// pump drains the event queue and reports whether the sandbox should quit.
func (s *sandbox) pump() bool {
	for {
		before := s.w.State()
		ev, ok := s.w.PollEvent()
		if !ok {
			return !s.w.IsOpen()
		}
		s.logger.Debug("event", "event", ev.String())
		if after := s.w.State(); after != before {
			s.logger.Info("window state",
				"flags", after.Flags,
				"x", after.Position.X,
				"y", after.Position.Y,
				"width", after.Width,
				"height", after.Height)
		}

		switch ev.Type {
		case platform.EventWindowCloseRequested, platform.EventWindowDestroyed:
			if ev.WindowID == s.w.ID() {
				return true
			}
		case platform.EventQuit:
			return true
		case platform.EventKeyDown:
			if s.key(ev.Key) {
				return true
			}
		}
	}
}

// key runs the action bound to a key and reports whether it asks to quit.
func (s *sandbox) key(name string) bool {
	var err error
	switch name {
	case "Escape":
		return true
	case "f":
		err = s.w.SetFullscreen(!s.w.IsFullscreen())
	case "m":
		err = s.w.Minimize()
	case "x":
		if s.w.IsMaximized() {
			err = s.w.Restore()
		} else {
			err = s.w.Maximize()
		}
	case "r":
		err = s.w.Restore()
	case "g":
		err = s.w.SetMouseGrab(!s.w.IsMouseGrabbed())
	case "c":
		var clip platform.Rect
		if s.w.MouseClip().Empty() {
			width, height := s.w.Size()
			clip = platform.Rect{X: width / 4, Y: height / 4, Width: width / 2, Height: height / 2}
		}
		err = s.w.SetMouseClip(clip)
	case "w":
		width, height := s.w.Size()
		err = s.w.WarpMouse(width/2, height/2)
	case "a":
		err = s.w.Flash(platform.FlashBriefly)
	default:
		return false
	}
	if err != nil {
		s.logger.Warn("key action failed", "key", name, "error", err)
		return false
	}
	if err := s.w.Sync(); err != nil && !errors.Is(err, platform.ErrTimeout) {
		s.logger.Warn("sync failed", "key", name, "error", err)
	}
	return false
}
