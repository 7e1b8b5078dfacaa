package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/previewgrid/internal/arrange"
)

var _ arrange.Backend = (*Connection)(nil)

// ListWindows enumerates visible, normal top-level windows with their titles.
func (c *Connection) ListWindows() ([]arrange.WindowInfo, error) {
	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return nil, fmt.Errorf("failed to get client list: %w", err)
	}

	var windows []arrange.WindowInfo
	for _, win := range clients {
		if !c.isViewable(win) || !c.isNormalWindow(win) {
			continue
		}
		title := c.windowTitle(win)
		if title == "" {
			continue
		}
		windows = append(windows, arrange.WindowInfo{
			ID:    arrange.WindowID(win),
			Title: title,
		})
	}
	return windows, nil
}

func (c *Connection) isViewable(win xproto.Window) bool {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), win).Reply()
	if err != nil {
		return false
	}
	return attrs.MapState == xproto.MapStateViewable
}

// isNormalWindow checks if a window is a normal application window.
func (c *Connection) isNormalWindow(win xproto.Window) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		// If we can't determine type, assume it's normal
		return true
	}

	for _, t := range types {
		if t == "_NET_WM_WINDOW_TYPE_NORMAL" {
			return true
		}
		// Reject desktop, dock, splash, etc.
		if t == "_NET_WM_WINDOW_TYPE_DESKTOP" ||
			t == "_NET_WM_WINDOW_TYPE_DOCK" ||
			t == "_NET_WM_WINDOW_TYPE_SPLASH" ||
			t == "_NET_WM_WINDOW_TYPE_NOTIFICATION" {
			return false
		}
	}

	// If no specific type is set, assume it's normal
	return len(types) == 0
}

// windowTitle returns the EWMH title, falling back to the ICCCM name for
// windows that never set _NET_WM_NAME.
func (c *Connection) windowTitle(win xproto.Window) string {
	if name, err := ewmh.WmNameGet(c.XUtil, win); err == nil && name != "" {
		return name
	}
	if name, err := icccm.WmNameGet(c.XUtil, win); err == nil {
		return name
	}
	return ""
}

// Restore de-minimizes a window and ensures it is mapped.
func (c *Connection) Restore(id arrange.WindowID) error {
	win := xproto.Window(id)

	if state, err := icccm.WmStateGet(c.XUtil, win); err == nil && state.State == icccm.StateIconic {
		if err := ewmh.WmStateReq(c.XUtil, win, ewmh.StateRemove, "_NET_WM_STATE_HIDDEN"); err != nil {
			return fmt.Errorf("failed to clear hidden state: %w", err)
		}
	}

	xwindow.New(c.XUtil, win).Map()
	return nil
}

// ClearMaximized removes maximized state from a window.
func (c *Connection) ClearMaximized(id arrange.WindowID) error {
	win := xproto.Window(id)

	states, err := ewmh.WmStateGet(c.XUtil, win)
	if err != nil {
		return err
	}

	for _, state := range states {
		if state == "_NET_WM_STATE_MAXIMIZED_HORZ" || state == "_NET_WM_STATE_MAXIMIZED_VERT" {
			if err := ewmh.WmStateReq(c.XUtil, win, ewmh.StateRemove, state); err != nil {
				return err
			}
		}
	}
	return nil
}

// SetAbove adds or removes the always-on-top state. Placement raises a
// window above the whole scene for the move, then demotes it again so the
// four preview windows don't permanently fight over stacking.
func (c *Connection) SetAbove(id arrange.WindowID, above bool) error {
	action := ewmh.StateRemove
	if above {
		action = ewmh.StateAdd
	}
	return ewmh.WmStateReq(c.XUtil, xproto.Window(id), action, "_NET_WM_STATE_ABOVE")
}

// MoveResize moves and resizes a window to the specified geometry.
func (c *Connection) MoveResize(id arrange.WindowID, r arrange.Rect) error {
	win := xproto.Window(id)

	// Use EWMH MoveResize for better WM compatibility
	err := ewmh.MoveresizeWindow(c.XUtil, win, r.X, r.Y, r.Width, r.Height)
	if err != nil {
		// Fallback to direct window manipulation
		xwindow.New(c.XUtil, win).MoveResize(r.X, r.Y, r.Width, r.Height)
	}
	return nil
}

// Geometry reads back the window's actual root-relative geometry.
func (c *Connection) Geometry(id arrange.WindowID) (arrange.Rect, error) {
	win := xproto.Window(id)

	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return arrange.Rect{}, fmt.Errorf("failed to get geometry: %w", err)
	}

	translate, err := xproto.TranslateCoordinates(c.XUtil.Conn(), win, c.Root, 0, 0).Reply()
	if err != nil {
		return arrange.Rect{}, fmt.Errorf("failed to translate coordinates: %w", err)
	}

	return arrange.Rect{
		X:      int(translate.DstX),
		Y:      int(translate.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}
