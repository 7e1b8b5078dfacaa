package arrange

// WindowID is a window-system-neutral window identifier. The windows it
// names belong to an external application; any operation against one may
// fail at any time because the window was closed out from under us.
type WindowID uint32

// WindowInfo contains metadata for a top-level window.
type WindowInfo struct {
	ID    WindowID
	Title string
}

// Backend abstracts the window-system operations needed to place preview
// windows. internal/x11 provides the real implementation; tests use fakes.
type Backend interface {
	// ListWindows enumerates visible top-level application windows.
	ListWindows() ([]WindowInfo, error)

	// Restore de-minimizes and maps a window.
	Restore(id WindowID) error

	// ClearMaximized removes horizontal/vertical maximized state.
	ClearMaximized(id WindowID) error

	// StripChrome removes the title bar, borders and system menu.
	StripChrome(id WindowID) error

	// SetAbove adds or removes the always-on-top state.
	SetAbove(id WindowID, above bool) error

	// MoveResize applies the target geometry.
	MoveResize(id WindowID, r Rect) error

	// ClipTitlebar hides the top band of the window so residual title-bar
	// pixels are not rendered.
	ClipTitlebar(id WindowID, height int) error

	// Geometry reads back the window's actual root-relative geometry.
	Geometry(id WindowID) (Rect, error)
}

// Lister is the read-only subset of Backend used for window detection.
type Lister interface {
	ListWindows() ([]WindowInfo, error)
}
