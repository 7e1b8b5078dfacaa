package x11

import (
	"github.com/BurntSushi/xgb/shape"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
)

// Connection manages the X11 connection and core X resources.
type Connection struct {
	XUtil *xgbutil.XUtil
	Root  xproto.Window

	// shapeOK records whether the X Shape extension is available. The
	// title-bar clip degrades gracefully without it.
	shapeOK bool
}

// NewConnection establishes a connection to the X11 server and initializes
// the Shape extension used for title-bar clipping.
func NewConnection() (*Connection, error) {
	xu, err := xgbutil.NewConn()
	if err != nil {
		return nil, err
	}

	c := &Connection{
		XUtil: xu,
		Root:  xu.RootWin(),
	}
	if err := shape.Init(xu.Conn()); err == nil {
		c.shapeOK = true
	}
	return c, nil
}

// Close cleanly disconnects from the X11 server.
func (c *Connection) Close() {
	c.XUtil.Conn().Close()
}
