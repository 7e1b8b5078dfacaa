package arrange

import (
	"fmt"
	"log/slog"
	"time"
)

// verifyDelay lets the window manager settle before geometry is read back.
const verifyDelay = 100 * time.Millisecond

// PlaceConfig controls how windows are reshaped and positioned.
type PlaceConfig struct {
	// Borderless strips window chrome before positioning.
	Borderless bool
	// HideTitlebar clips the top TitlebarHeight band of the window.
	HideTitlebar   bool
	TitlebarHeight int
	// Retries bounds the number of placement attempts per window.
	Retries int
	// Tolerance is the allowed deviation, per axis, between the requested
	// and actual window origin. Window managers apply small frame offsets,
	// so exact placement cannot be demanded.
	Tolerance int
	// Backoff is the delay between retry attempts.
	Backoff time.Duration
}

// PlaceResult reports the outcome of positioning one window. Failures are
// data, not faults: callers count them instead of aborting.
type PlaceResult struct {
	OK       bool
	Attempts int
	Err      error
}

// Positioner applies target geometry to windows with verification and
// bounded retry. Every step is best-effort; only a geometry that never
// converges within tolerance counts as failure.
type Positioner struct {
	backend Backend
	cfg     PlaceConfig
	logger  *slog.Logger

	// sleep is swappable so tests run without real delays.
	sleep func(time.Duration)
}

// NewPositioner creates a positioner over the given backend.
func NewPositioner(backend Backend, cfg PlaceConfig, logger *slog.Logger) *Positioner {
	if cfg.Retries <= 0 {
		cfg.Retries = 3
	}
	if cfg.Tolerance < 0 {
		cfg.Tolerance = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = 200 * time.Millisecond
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Positioner{
		backend: backend,
		cfg:     cfg,
		logger:  logger,
		sleep:   time.Sleep,
	}
}

// Place moves and resizes a window to the target rectangle. It restores
// minimized windows, clears maximized state, strips chrome when borderless
// mode is on, raises the window above the stack for the move and demotes it
// again, re-applies the title-bar clip, then verifies the resulting origin
// against the request within the configured tolerance.
func (p *Positioner) Place(id WindowID, target Rect) PlaceResult {
	var lastErr error

	for attempt := 1; attempt <= p.cfg.Retries; attempt++ {
		if err := p.backend.Restore(id); err != nil {
			p.logger.Debug("restore failed", "window", id, "error", err)
		}
		if err := p.backend.ClearMaximized(id); err != nil {
			p.logger.Debug("clear maximized failed", "window", id, "error", err)
		}

		if p.cfg.Borderless {
			if err := p.backend.StripChrome(id); err != nil {
				// Partial disfigurement beats no placement; keep going.
				p.logger.Warn("could not strip window chrome", "window", id, "error", err)
			}
		}

		// Raise above everything for the move so the window is visible in a
		// crowded scene, then demote so the four windows don't permanently
		// fight for the top of the stack.
		if err := p.backend.SetAbove(id, true); err != nil {
			p.logger.Debug("raise failed", "window", id, "error", err)
		}
		moveErr := p.backend.MoveResize(id, target)
		if err := p.backend.SetAbove(id, false); err != nil {
			p.logger.Debug("demote failed", "window", id, "error", err)
		}

		// A geometry change can reset the clip region, so re-apply it after
		// every move.
		if p.cfg.Borderless && p.cfg.HideTitlebar {
			if err := p.backend.ClipTitlebar(id, p.cfg.TitlebarHeight); err != nil {
				p.logger.Warn("could not apply title-bar clip", "window", id, "error", err)
			}
		}

		if moveErr != nil {
			lastErr = moveErr
			p.logger.Warn("move/resize failed", "window", id, "attempt", attempt, "error", moveErr)
			if attempt < p.cfg.Retries {
				p.sleep(p.cfg.Backoff)
			}
			continue
		}

		p.sleep(verifyDelay)

		actual, err := p.backend.Geometry(id)
		if err != nil {
			lastErr = err
			p.logger.Warn("geometry readback failed", "window", id, "attempt", attempt, "error", err)
			if attempt < p.cfg.Retries {
				p.sleep(p.cfg.Backoff)
			}
			continue
		}

		if abs(actual.X-target.X) <= p.cfg.Tolerance && abs(actual.Y-target.Y) <= p.cfg.Tolerance {
			return PlaceResult{OK: true, Attempts: attempt}
		}

		lastErr = fmt.Errorf("position mismatch: want (%d,%d), got (%d,%d)",
			target.X, target.Y, actual.X, actual.Y)
		if attempt < p.cfg.Retries {
			p.logger.Debug("position mismatch, retrying", "window", id, "attempt", attempt)
			p.sleep(p.cfg.Backoff)
		}
	}

	return PlaceResult{OK: false, Attempts: p.cfg.Retries, Err: lastErr}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
