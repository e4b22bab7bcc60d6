package subsystem

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/kappaduck/aquila/internal/platform"
)

func TestAcquireTwiceReleaseTwice(t *testing.T) {
	backend := platform.NewMemoryBackend()
	reg := NewRegistry(backend)

	h1, err := reg.Acquire(platform.SubsystemVideo)
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	h2, err := reg.Acquire(platform.SubsystemVideo)
	if err != nil {
		t.Fatalf("second acquire: %v", err)
	}
	if got := reg.RefCount(); got != 2 {
		t.Fatalf("RefCount = %d, want 2", got)
	}

	if err := h1.Release(); err != nil {
		t.Fatalf("first release: %v", err)
	}
	if !reg.IsActive(platform.SubsystemVideo) {
		t.Fatal("video should stay active while a handle is outstanding")
	}
	if err := h2.Release(); err != nil {
		t.Fatalf("second release: %v", err)
	}

	want := []string{
		"InitSubsystem(video)",
		"QuitSubsystem(video)",
		"Quit()",
	}
	if got := backend.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
	if reg.Active() != platform.SubsystemNone {
		t.Errorf("Active = %s, want none", reg.Active())
	}
}

func TestAcquireActiveSubsystemSkipsInit(t *testing.T) {
	backend := platform.NewMemoryBackend()
	reg := NewRegistry(backend)

	h1, err := reg.Acquire(platform.SubsystemVideo | platform.SubsystemEvents)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	h2, err := reg.Acquire(platform.SubsystemVideo)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	if got := backend.CallCount("InitSubsystem(video)"); got != 1 {
		t.Errorf("video initialized %d times, want 1", got)
	}
	if got := backend.CallCount("InitSubsystem(events)"); got != 1 {
		t.Errorf("events initialized %d times, want 1", got)
	}

	if err := h1.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if got := backend.CallCount("Quit()"); got != 0 {
		t.Fatalf("Quit called with a handle outstanding")
	}
	if !reg.IsActive(platform.SubsystemVideo | platform.SubsystemEvents) {
		t.Error("subsystems should stay active until the last release")
	}
	if err := h2.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if got := backend.CallCount("Quit()"); got != 1 {
		t.Errorf("Quit called %d times, want 1", got)
	}
}

func TestAcquireFailureRollsBack(t *testing.T) {
	backend := platform.NewMemoryBackend()
	errNoAudio := errors.New("no audio device")
	backend.SetInitError(platform.SubsystemAudio, errNoAudio)
	reg := NewRegistry(backend)

	h, err := reg.Acquire(platform.SubsystemVideo | platform.SubsystemAudio)
	if err == nil {
		t.Fatal("expected error")
	}
	if h != nil {
		t.Error("handle returned on failure")
	}

	var initErr *InitError
	if !errors.As(err, &initErr) {
		t.Fatalf("error %T is not *InitError", err)
	}
	if initErr.Subsystem != platform.SubsystemAudio {
		t.Errorf("failed subsystem = %s, want audio", initErr.Subsystem)
	}
	if !errors.Is(err, errNoAudio) {
		t.Error("InitError does not unwrap to the native error")
	}

	if reg.RefCount() != 0 {
		t.Errorf("RefCount = %d, want 0", reg.RefCount())
	}
	if reg.Active() != platform.SubsystemNone {
		t.Errorf("Active = %s, want none", reg.Active())
	}
	want := []string{
		"InitSubsystem(video)",
		"InitSubsystem(audio)",
		"QuitSubsystem(video)",
		"Quit()",
	}
	if got := backend.Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestAcquireFailureKeepsOtherCallers(t *testing.T) {
	backend := platform.NewMemoryBackend()
	backend.SetInitError(platform.SubsystemAudio, errors.New("busy"))
	reg := NewRegistry(backend)

	video, err := reg.Acquire(platform.SubsystemVideo)
	if err != nil {
		t.Fatalf("acquire video: %v", err)
	}
	backend.ResetCalls()

	if _, err := reg.Acquire(platform.SubsystemAudio); err == nil {
		t.Fatal("expected audio acquire to fail")
	}
	if !reg.IsActive(platform.SubsystemVideo) {
		t.Error("video was torn down by an unrelated failure")
	}
	if reg.RefCount() != 1 {
		t.Errorf("RefCount = %d, want 1", reg.RefCount())
	}
	if backend.CallCount("Quit") != 0 {
		t.Errorf("unexpected teardown calls: %v", backend.Calls())
	}

	if err := video.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if reg.Active() != platform.SubsystemNone {
		t.Errorf("Active = %s after last release", reg.Active())
	}
}

func TestReleaseMisuse(t *testing.T) {
	backend := platform.NewMemoryBackend()
	reg := NewRegistry(backend)
	other := NewRegistry(platform.NewMemoryBackend())

	keep, err := reg.Acquire(platform.SubsystemVideo)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	h, err := reg.Acquire(platform.SubsystemVideo)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}

	if err := other.Release(h); !errors.Is(err, ErrForeignHandle) {
		t.Errorf("foreign release error = %v, want ErrForeignHandle", err)
	}
	if err := reg.Release(nil); !errors.Is(err, ErrNilHandle) {
		t.Errorf("nil release error = %v, want ErrNilHandle", err)
	}

	var zero Handle
	if err := zero.Release(); !errors.Is(err, ErrNotAcquired) {
		t.Errorf("zero handle release error = %v, want ErrNotAcquired", err)
	}
	if err := reg.Release(&Handle{}); !errors.Is(err, ErrNotAcquired) {
		t.Errorf("unissued handle release error = %v, want ErrNotAcquired", err)
	}
	var nilReg *Registry
	if err := nilReg.Release(h); !errors.Is(err, ErrNotAcquired) {
		t.Errorf("nil registry release error = %v, want ErrNotAcquired", err)
	}
	if h.Released() {
		t.Error("misuse marked a live handle released")
	}

	if err := h.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
	if err := h.Release(); !errors.Is(err, ErrAlreadyReleased) {
		t.Errorf("double release error = %v, want ErrAlreadyReleased", err)
	}
	if !h.Released() {
		t.Error("Released() = false after release")
	}
	if reg.RefCount() != 1 {
		t.Errorf("double release changed RefCount to %d", reg.RefCount())
	}
	if !reg.IsActive(platform.SubsystemVideo) {
		t.Error("double release tore down the subsystem")
	}

	if err := keep.Release(); err != nil {
		t.Fatalf("release: %v", err)
	}
}

func TestReacquireAfterTeardown(t *testing.T) {
	backend := platform.NewMemoryBackend()
	reg := NewRegistry(backend)

	for i := 0; i < 3; i++ {
		h, err := reg.Acquire(platform.SubsystemVideo)
		if err != nil {
			t.Fatalf("round %d: acquire: %v", i, err)
		}
		if backend.Active() != platform.SubsystemVideo {
			t.Fatalf("round %d: native active = %s", i, backend.Active())
		}
		if err := h.Release(); err != nil {
			t.Fatalf("round %d: release: %v", i, err)
		}
	}
	if got := backend.CallCount("InitSubsystem(video)"); got != 3 {
		t.Errorf("video initialized %d times, want 3", got)
	}
	if got := backend.CallCount("Quit()"); got != 3 {
		t.Errorf("Quit called %d times, want 3", got)
	}
}

func TestAcquireEmptyMask(t *testing.T) {
	reg := NewRegistry(platform.NewMemoryBackend())
	if _, err := reg.Acquire(platform.SubsystemNone); err == nil {
		t.Fatal("expected error for empty mask")
	}
	if reg.IsActive(platform.SubsystemNone) {
		t.Error("IsActive(none) = true")
	}
}

func TestConcurrentAcquireRelease(t *testing.T) {
	backend := platform.NewMemoryBackend()
	reg := NewRegistry(backend)

	const workers = 16
	const rounds = 50

	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			mask := platform.SubsystemVideo
			if w%2 == 1 {
				mask |= platform.SubsystemEvents
			}
			for i := 0; i < rounds; i++ {
				h, err := reg.Acquire(mask)
				if err != nil {
					errs <- err
					return
				}
				if !reg.IsActive(mask) {
					errs <- errors.New("mask inactive while held")
					return
				}
				if err := h.Release(); err != nil {
					errs <- err
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	if reg.RefCount() != 0 {
		t.Errorf("RefCount = %d, want 0", reg.RefCount())
	}
	if reg.Active() != platform.SubsystemNone {
		t.Errorf("Active = %s, want none", reg.Active())
	}
	if backend.Active() != platform.SubsystemNone {
		t.Errorf("native active = %s, want none", backend.Active())
	}
	if inits, quits := backend.CallCount("InitSubsystem(video)"), backend.CallCount("Quit()"); inits != quits {
		t.Errorf("video initialized %d times but library quit %d times", inits, quits)
	}
}
