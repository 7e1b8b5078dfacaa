package arrange

import "github.com/1broseidon/previewgrid/internal/roles"

// LocateRoles classifies a window listing into the role -> handle map.
// Roles whose window is absent are simply omitted; a missing window is not
// an error. When several windows match the same role the last one in the
// listing wins, matching enumeration-order behavior.
func LocateRoles(windows []WindowInfo) map[roles.Role]WindowID {
	found := make(map[roles.Role]WindowID)
	for _, w := range windows {
		if role, ok := roles.Classify(w.Title); ok {
			found[role] = w.ID
		}
	}
	return found
}
