package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/motif"

	"github.com/1broseidon/previewgrid/internal/arrange"
)

// StripChrome removes the title bar, resize border and window menu by
// zeroing the Motif WM hint decorations, leaving a plain undecorated
// surface. Move and close remain allowed so the window stays manageable.
// The window manager re-frames the window on its own once the hint changes.
func (c *Connection) StripChrome(id arrange.WindowID) error {
	win := xproto.Window(id)

	hints := &motif.Hints{
		Flags:      motif.HintDecorations | motif.HintFunctions,
		Decoration: 0,
		Function:   motif.FunctionMove | motif.FunctionClose,
	}
	if err := motif.WmHintsSet(c.XUtil, win, hints); err != nil {
		return fmt.Errorf("failed to set motif hints: %w", err)
	}

	// Shaded or fullscreen state would override the plain overlay look.
	for _, state := range []string{"_NET_WM_STATE_SHADED", "_NET_WM_STATE_FULLSCREEN"} {
		ewmh.WmStateReq(c.XUtil, win, ewmh.StateRemove, state)
	}
	return nil
}

// ClipTitlebar applies a bounding shape that excludes the top band of the
// window, hiding any title-bar pixels the application still renders itself.
// The shape is window-relative, so it must be re-applied after every
// geometry change.
func (c *Connection) ClipTitlebar(id arrange.WindowID, height int) error {
	if !c.shapeOK {
		return fmt.Errorf("shape extension unavailable")
	}
	if height <= 0 {
		return nil
	}

	win := xproto.Window(id)
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return fmt.Errorf("failed to get geometry: %w", err)
	}
	if int(geom.Height) <= height {
		return nil
	}

	rect := xproto.Rectangle{
		X:      0,
		Y:      int16(height),
		Width:  geom.Width,
		Height: geom.Height - uint16(height),
	}
	return shape.RectanglesChecked(
		c.XUtil.Conn(),
		shape.SoSet,
		shape.SkBounding,
		xproto.ClipOrderingUnsorted,
		win,
		0, 0,
		[]xproto.Rectangle{rect},
	).Check()
}
