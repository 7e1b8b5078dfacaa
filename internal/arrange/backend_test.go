package arrange

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"
)

// fakeBackend simulates the window system for tests. Geometry requests
// reflect the last MoveResize, optionally drifted on the X axis to mimic a
// window manager applying frame offsets.
type fakeBackend struct {
	mu      sync.Mutex
	windows []WindowInfo

	geoms    map[WindowID]Rect
	drift    map[WindowID]int  // X offset applied to every placement
	dead     map[WindowID]bool // stale handles: every mutation fails
	stripped map[WindowID]int
	clipped  map[WindowID]int
	restored map[WindowID]int

	moves []moveCall
	above []aboveCall
}

type moveCall struct {
	id   WindowID
	rect Rect
}

type aboveCall struct {
	id    WindowID
	above bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		geoms:    make(map[WindowID]Rect),
		drift:    make(map[WindowID]int),
		dead:     make(map[WindowID]bool),
		stripped: make(map[WindowID]int),
		clipped:  make(map[WindowID]int),
		restored: make(map[WindowID]int),
	}
}

func (f *fakeBackend) ListWindows() ([]WindowInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]WindowInfo(nil), f.windows...), nil
}

func (f *fakeBackend) Restore(id WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dead[id] {
		return fmt.Errorf("window %d gone", id)
	}
	f.restored[id]++
	return nil
}

func (f *fakeBackend) ClearMaximized(id WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dead[id] {
		return fmt.Errorf("window %d gone", id)
	}
	return nil
}

func (f *fakeBackend) StripChrome(id WindowID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dead[id] {
		return fmt.Errorf("window %d gone", id)
	}
	f.stripped[id]++
	return nil
}

func (f *fakeBackend) SetAbove(id WindowID, above bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.above = append(f.above, aboveCall{id, above})
	return nil
}

func (f *fakeBackend) MoveResize(id WindowID, r Rect) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dead[id] {
		return fmt.Errorf("window %d gone", id)
	}
	f.moves = append(f.moves, moveCall{id, r})
	placed := r
	placed.X += f.drift[id]
	f.geoms[id] = placed
	return nil
}

func (f *fakeBackend) ClipTitlebar(id WindowID, height int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dead[id] {
		return fmt.Errorf("window %d gone", id)
	}
	f.clipped[id]++
	return nil
}

func (f *fakeBackend) Geometry(id WindowID) (Rect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.dead[id] {
		return Rect{}, fmt.Errorf("window %d gone", id)
	}
	g, ok := f.geoms[id]
	if !ok {
		return Rect{}, fmt.Errorf("window %d has no geometry", id)
	}
	return g, nil
}

// lastPlacement returns the final rectangle each window landed in.
func (f *fakeBackend) lastPlacement() map[WindowID]Rect {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[WindowID]Rect)
	for _, mc := range f.moves {
		out[mc.id] = mc.rect
	}
	return out
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSlots() []Rect {
	return []Rect{
		{X: 0, Y: 0, Width: 480, Height: 800},
		{X: 480, Y: 0, Width: 480, Height: 800},
		{X: 960, Y: 0, Width: 480, Height: 800},
		{X: 1440, Y: 0, Width: 480, Height: 800},
	}
}

func testPositioner(backend Backend) *Positioner {
	p := NewPositioner(backend, PlaceConfig{
		Borderless:     true,
		HideTitlebar:   true,
		TitlebarHeight: 32,
		Retries:        3,
		Tolerance:      10,
		Backoff:        time.Millisecond,
	}, testLogger())
	p.sleep = func(time.Duration) {}
	return p
}

func testManager(backend Backend, order []int) *Manager {
	m, err := NewManager(testSlots(), order, testPositioner(backend), testLogger())
	if err != nil {
		panic(err)
	}
	m.sleep = func(time.Duration) {}
	return m
}
