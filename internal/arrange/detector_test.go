package arrange

import (
	"context"
	"testing"
	"time"
)

// fakeClock drives the detector without real time: every sleep advances the
// virtual clock.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) sleep(d time.Duration) { c.t = c.t.Add(d) }
func (c *fakeClock) now() time.Time        { return c.t }

// scriptedLister returns a fixed listing per poll, repeating the final one.
type scriptedLister struct {
	polls [][]WindowInfo
	calls int
}

func (s *scriptedLister) ListWindows() ([]WindowInfo, error) {
	i := s.calls
	if i >= len(s.polls) {
		i = len(s.polls) - 1
	}
	s.calls++
	return s.polls[i], nil
}

func previewWindows(n int) []WindowInfo {
	all := []WindowInfo{
		{ID: 101, Title: "MyGame Preview [NetMode: Server]"},
		{ID: 102, Title: "MyGame Preview [NetMode: Client 1]"},
		{ID: 103, Title: "MyGame Preview [NetMode: Client 2]"},
		{ID: 104, Title: "MyGame Preview [NetMode: Client 3]"},
	}
	return all[:n]
}

func testDetector(lister Lister, m *Manager) (*Detector, *fakeClock) {
	d := NewDetector(lister, m, DetectorConfig{
		Timeout:      60 * time.Second,
		PollInterval: 500 * time.Millisecond,
		SettleDelay:  2 * time.Second,
		Logger:       testLogger(),
	})
	clock := &fakeClock{}
	d.sleep = clock.sleep
	d.now = clock.now
	return d, clock
}

func TestDetector_AllFoundPositionsEverything(t *testing.T) {
	backend := newFakeBackend()
	m := testManager(backend, []int{4, 2, 3, 1})

	lister := &scriptedLister{polls: [][]WindowInfo{
		previewWindows(0),
		previewWindows(2),
		previewWindows(4),
	}}
	d, _ := testDetector(lister, m)

	phase := d.Run(context.Background())
	if phase != PhasePositioned {
		t.Fatalf("expected positioned, got %v", phase)
	}
	if d.Phase() != PhasePositioned {
		t.Fatalf("phase accessor disagrees: %v", d.Phase())
	}

	st := m.Status()
	if st.WindowsFound != 4 {
		t.Fatalf("expected 4 windows found, got %d", st.WindowsFound)
	}

	// Default order [4,2,3,1]: slot 0 gets Client 3's handle.
	if got := backend.lastPlacement()[104]; got != testSlots()[0] {
		t.Fatalf("Client 3 should land in slot 0, got %v", got)
	}
}

func TestDetector_TimeoutWithPartialWindows(t *testing.T) {
	backend := newFakeBackend()
	m := testManager(backend, []int{1, 2, 3, 4})

	lister := &scriptedLister{polls: [][]WindowInfo{previewWindows(2)}}
	d, _ := testDetector(lister, m)

	phase := d.Run(context.Background())
	if phase != PhaseTimedOut {
		t.Fatalf("expected timed-out, got %v", phase)
	}

	// No placement pass ran, so the manager never learned the handles.
	if st := m.Status(); st.WindowsFound != 0 {
		t.Fatalf("expected 0 windows found after timeout, got %d", st.WindowsFound)
	}
	if len(backend.moves) != 0 {
		t.Fatalf("no windows should have been moved, got %d moves", len(backend.moves))
	}
}

func TestDetector_MonotonicAcrossFlakyPolls(t *testing.T) {
	backend := newFakeBackend()
	m := testManager(backend, []int{1, 2, 3, 4})

	// Enumeration momentarily loses the first two windows; detection must
	// not forget them.
	lister := &scriptedLister{polls: [][]WindowInfo{
		previewWindows(2),
		previewWindows(0),
		{
			{ID: 103, Title: "MyGame Preview [NetMode: Client 2]"},
			{ID: 104, Title: "MyGame Preview [NetMode: Client 3]"},
		},
	}}
	d, _ := testDetector(lister, m)

	phase := d.Run(context.Background())
	if phase != PhasePositioned {
		t.Fatalf("expected positioned, got %v", phase)
	}
	if st := m.Status(); st.WindowsFound != 4 {
		t.Fatalf("expected all 4 roles accumulated, got %d", st.WindowsFound)
	}
}

func TestDetector_RerunAfterPositioned(t *testing.T) {
	backend := newFakeBackend()
	m := testManager(backend, []int{1, 2, 3, 4})

	lister := &scriptedLister{polls: [][]WindowInfo{previewWindows(4)}}
	d, _ := testDetector(lister, m)

	if phase := d.Run(context.Background()); phase != PhasePositioned {
		t.Fatalf("first run: expected positioned, got %v", phase)
	}
	moves := len(backend.moves)

	// Manual re-trigger reruns the same classify+place sequence.
	if phase := d.Run(context.Background()); phase != PhasePositioned {
		t.Fatalf("second run: expected positioned, got %v", phase)
	}
	if len(backend.moves) <= moves {
		t.Fatalf("second run should place again")
	}
}

func TestDetector_CancelledContextStops(t *testing.T) {
	backend := newFakeBackend()
	m := testManager(backend, []int{1, 2, 3, 4})

	lister := &scriptedLister{polls: [][]WindowInfo{previewWindows(1)}}
	d, _ := testDetector(lister, m)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if phase := d.Run(ctx); phase != PhaseSearching {
		t.Fatalf("cancelled run should stop while searching, got %v", phase)
	}
}
