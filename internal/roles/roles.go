package roles

import "strings"

// Role identifies one of the four expected preview windows.
// Roles are numbered 1..4 for the control protocol.
type Role int

const (
	Server Role = iota + 1
	Client1
	Client2
	Client3
)

// Count is the number of windows a complete session has.
const Count = 4

var labels = map[Role]string{
	Server:  "Server",
	Client1: "Client 1",
	Client2: "Client 2",
	Client3: "Client 3",
}

// Label returns the human-readable name used in window titles and status output.
func (r Role) Label() string {
	if label, ok := labels[r]; ok {
		return label
	}
	return "Unknown"
}

// Index returns the protocol number of the role (1..4).
func (r Role) Index() int {
	return int(r)
}

// FromIndex maps a protocol number (1..4) back to a role.
func FromIndex(i int) (Role, bool) {
	if i < 1 || i > Count {
		return 0, false
	}
	return Role(i), true
}

// All returns the four roles in protocol order.
func All() []Role {
	return []Role{Server, Client1, Client2, Client3}
}

// Labels returns the protocol-number -> label table reported by /status.
func Labels() map[string]string {
	return map[string]string{
		"1": Server.Label(),
		"2": Client1.Label(),
		"3": Client2.Label(),
		"4": Client3.Label(),
	}
}

// Preview window titles look like "GameName Preview [NetMode: Server]" or
// "GameName Preview [NetMode: Client 1]". Both markers must be present
// before any role substring is considered.
const (
	markerPreview = "Preview"
	markerNetMode = "NetMode:"
)

// matchOrder is the fixed precedence for role substrings. A title that
// somehow contains more than one role substring resolves to the first match.
var matchOrder = []struct {
	substr string
	role   Role
}{
	{"Server", Server},
	{"Client 1", Client1},
	{"Client 2", Client2},
	{"Client 3", Client3},
}

// Classify inspects a window title and reports which role it belongs to,
// if any.
func Classify(title string) (Role, bool) {
	if !strings.Contains(title, markerPreview) || !strings.Contains(title, markerNetMode) {
		return 0, false
	}
	for _, m := range matchOrder {
		if strings.Contains(title, m.substr) {
			return m.role, true
		}
	}
	return 0, false
}
