package arrange

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/1broseidon/previewgrid/internal/roles"
)

// interWindowDelay paces placement so the window manager isn't flooded with
// style/geometry changes for four windows at once.
const interWindowDelay = 150 * time.Millisecond

// Manager holds the shared layout state: the four slot rectangles, the
// current role -> slot permutation, and the last-known role -> handle map.
// One mutex covers every read and write, and every full placement pass runs
// while holding it, so a detection-triggered pass and a reorder-triggered
// pass can never interleave their window mutations.
type Manager struct {
	mu      sync.Mutex
	slots   []Rect
	order   []int // order[slot] = role number (1..4); always a permutation
	handles map[roles.Role]WindowID

	pos    *Positioner
	logger *slog.Logger
	sleep  func(time.Duration)
}

// NewManager creates the layout state with the given static slots and
// initial order permutation.
func NewManager(slots []Rect, defaultOrder []int, pos *Positioner, logger *slog.Logger) (*Manager, error) {
	if len(slots) != roles.Count {
		return nil, fmt.Errorf("expected %d display slots, got %d", roles.Count, len(slots))
	}
	if err := ValidateOrder(defaultOrder); err != nil {
		return nil, fmt.Errorf("invalid default order: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		slots:   append([]Rect(nil), slots...),
		order:   append([]int(nil), defaultOrder...),
		handles: make(map[roles.Role]WindowID),
		pos:     pos,
		logger:  logger,
		sleep:   time.Sleep,
	}, nil
}

// ValidateOrder checks that order is a permutation of 1..4. The returned
// error messages are part of the control protocol.
func ValidateOrder(order []int) error {
	if len(order) != roles.Count {
		return fmt.Errorf("Order must contain exactly %d values", roles.Count)
	}
	seen := make(map[int]bool, roles.Count)
	for _, v := range order {
		if v < 1 || v > roles.Count {
			return fmt.Errorf("All values must be between 1 and %d", roles.Count)
		}
		if seen[v] {
			return fmt.Errorf("All values must be unique")
		}
		seen[v] = true
	}
	return nil
}

// ApplyDetected replaces the handle map with freshly detected windows and
// runs a full placement pass under the current order. Returns the number of
// windows successfully placed.
func (m *Manager) ApplyDetected(found map[roles.Role]WindowID) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.handles = make(map[roles.Role]WindowID, len(found))
	for role, id := range found {
		m.handles[role] = id
	}

	return m.placeAllLocked()
}

// ReorderOutcome is the structured result of a reorder request.
type ReorderOutcome struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Order   []int  `json:"order,omitempty"`
	Placed  int    `json:"-"`
}

// Reorder validates the proposed permutation and, if valid, installs it and
// re-places all four windows. Validation failures leave state untouched.
// A partial placement reports failure but keeps the new order, matching the
// behavior of manual re-triggering: the next pass retries the same handles.
func (m *Manager) Reorder(newOrder []int) ReorderOutcome {
	if err := ValidateOrder(newOrder); err != nil {
		return ReorderOutcome{Success: false, Message: err.Error()}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.handles) == 0 {
		return ReorderOutcome{Success: false, Message: "No windows found. Start the game first."}
	}

	m.order = append([]int(nil), newOrder...)
	m.logger.Info("reordering windows", "order", newOrder)

	placed := m.placeAllLocked()

	if placed == roles.Count {
		return ReorderOutcome{
			Success: true,
			Message: fmt.Sprintf("Successfully reordered to %v", newOrder),
			Order:   append([]int(nil), newOrder...),
			Placed:  placed,
		}
	}
	return ReorderOutcome{
		Success: false,
		Message: fmt.Sprintf("Only positioned %d/%d windows", placed, roles.Count),
		Order:   append([]int(nil), newOrder...),
		Placed:  placed,
	}
}

// placeAllLocked runs one placement pass: for each slot, place the window of
// the role the current order assigns there. Callers must hold m.mu.
func (m *Manager) placeAllLocked() int {
	placed := 0
	for slotIdx, roleNum := range m.order {
		role, ok := roles.FromIndex(roleNum)
		if !ok {
			continue
		}
		id, ok := m.handles[role]
		if !ok {
			continue
		}

		target := m.slots[slotIdx]
		m.logger.Info("placing window", "slot", slotIdx, "role", role.Label(), "target", target.String())

		res := m.pos.Place(id, target)
		if res.OK {
			placed++
		} else {
			m.logger.Warn("failed to place window",
				"slot", slotIdx, "role", role.Label(), "attempts", res.Attempts, "error", res.Err)
		}

		m.sleep(interWindowDelay)
	}
	return placed
}

// Status is a read-only snapshot of the layout state.
type Status struct {
	WindowsFound int
	CurrentOrder []int
	Mapping      map[string]string
}

// Status reports how many handles are known, the current order, and the
// static role-label table.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Status{
		WindowsFound: len(m.handles),
		CurrentOrder: append([]int(nil), m.order...),
		Mapping:      roles.Labels(),
	}
}

// Snapshot returns a copy of the current role -> handle map.
func (m *Manager) Snapshot() map[roles.Role]WindowID {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[roles.Role]WindowID, len(m.handles))
	for role, id := range m.handles {
		out[role] = id
	}
	return out
}
