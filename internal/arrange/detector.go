package arrange

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/previewgrid/internal/roles"
)

// Phase is the detection loop state.
type Phase int

const (
	PhaseSearching Phase = iota
	PhaseAllFound
	PhasePositioned
	PhaseTimedOut
)

func (p Phase) String() string {
	switch p {
	case PhaseSearching:
		return "searching"
	case PhaseAllFound:
		return "all-found"
	case PhasePositioned:
		return "positioned"
	case PhaseTimedOut:
		return "timed-out"
	default:
		return "unknown"
	}
}

// DetectorConfig holds configuration for the detection loop.
type DetectorConfig struct {
	// Timeout bounds how long one detection run waits for all four windows.
	Timeout time.Duration
	// PollInterval is the delay between enumeration passes.
	PollInterval time.Duration
	// SettleDelay is waited after all four windows appear, because the
	// external application registers titles before window surfaces are
	// fully initialized.
	SettleDelay time.Duration
	Logger      *slog.Logger
}

// Detector polls the window system until all four preview windows are
// classified, then hands the handles to the Manager for an initial
// placement pass. The external application gives no readiness signal, so
// polling is the only option.
type Detector struct {
	lister  Lister
	manager *Manager

	timeout time.Duration
	poll    time.Duration
	settle  time.Duration
	logger  *slog.Logger

	// sleep and now are swappable so the loop is testable without real time.
	sleep func(time.Duration)
	now   func() time.Time

	mu    sync.Mutex
	phase Phase
	found map[roles.Role]WindowID
}

// NewDetector creates a detection loop bound to the given manager.
func NewDetector(lister Lister, manager *Manager, cfg DetectorConfig) *Detector {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 500 * time.Millisecond
	}
	if cfg.SettleDelay < 0 {
		cfg.SettleDelay = 0
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Detector{
		lister:  lister,
		manager: manager,
		timeout: cfg.Timeout,
		poll:    cfg.PollInterval,
		settle:  cfg.SettleDelay,
		logger:  cfg.Logger,
		sleep:   time.Sleep,
		now:     time.Now,
		phase:   PhaseSearching,
		found:   make(map[roles.Role]WindowID),
	}
}

// Phase returns the current detection phase.
func (d *Detector) Phase() Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase
}

// Run performs one detection pass: poll until all four roles are found,
// settle, then position everything; or give up when the timeout elapses.
// Run may be called again after it returns to re-trigger the whole
// classify+place sequence.
func (d *Detector) Run(ctx context.Context) Phase {
	d.mu.Lock()
	d.phase = PhaseSearching
	d.found = make(map[roles.Role]WindowID)
	d.mu.Unlock()

	d.logger.Info("waiting for preview windows", "timeout", d.timeout)

	deadline := d.now().Add(d.timeout)
	lastCount := -1

	for {
		if ctx.Err() != nil {
			d.logger.Info("detection cancelled")
			return d.Phase()
		}

		count := d.scan()
		if count != lastCount {
			d.logger.Info("detection progress", "found", count, "expected", roles.Count)
			lastCount = count
		}

		if count >= roles.Count {
			d.setPhase(PhaseAllFound)
			// Titles show up before the windows finish initializing; give
			// the application a moment before touching their geometry.
			d.sleep(d.settle)

			placed := d.manager.ApplyDetected(d.snapshotFound())
			d.setPhase(PhasePositioned)
			d.logger.Info("initial placement complete", "placed", placed, "expected", roles.Count)
			return PhasePositioned
		}

		if d.now().After(deadline) {
			d.setPhase(PhaseTimedOut)
			d.logger.Warn("detection timed out", "found", count, "expected", roles.Count)
			return PhaseTimedOut
		}

		d.sleep(d.poll)
	}
}

// scan runs one enumeration pass and merges the classified windows into the
// accumulated role map. Merging keeps detection monotonic: a role seen once
// is not lost to a flaky enumeration; its handle is simply refreshed when
// the window is seen again.
func (d *Detector) scan() int {
	windows, err := d.lister.ListWindows()
	if err != nil {
		d.logger.Warn("window enumeration failed", "error", err)
		return d.countFound()
	}

	located := LocateRoles(windows)

	d.mu.Lock()
	defer d.mu.Unlock()
	for role, id := range located {
		d.found[role] = id
	}
	return len(d.found)
}

func (d *Detector) countFound() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.found)
}

func (d *Detector) snapshotFound() map[roles.Role]WindowID {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[roles.Role]WindowID, len(d.found))
	for role, id := range d.found {
		out[role] = id
	}
	return out
}

func (d *Detector) setPhase(p Phase) {
	d.mu.Lock()
	d.phase = p
	d.mu.Unlock()
}
