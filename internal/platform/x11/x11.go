// Package x11 drives a real browser window through the X server: pixels are
// read from the root window with GetImage and keys are injected with the
// XTEST extension.
package x11

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/jezek/xgb/xtest"

	"github.com/vovakirdan/dinobot/internal/config"
	"github.com/vovakirdan/dinobot/internal/core"
	"github.com/vovakirdan/dinobot/internal/platform"
	"github.com/vovakirdan/dinobot/internal/registry"
)

// Keysyms for the keys the bot uses.
const (
	keysymSpace xproto.Keysym = 0x0020
	keysymUp    xproto.Keysym = 0xff52
	keysymDown  xproto.Keysym = 0xff54
)

var (
	// ErrShortImage is returned when the server sends fewer bytes than a pixel needs.
	ErrShortImage = errors.New("x11: short image reply")
	// ErrUnsupportedFormat is returned by Open when root window pixels are
	// not 24 or 32 bits deep in LSBFirst byte order.
	ErrUnsupportedFormat = errors.New("x11: unsupported pixel format")
)

// Device reads the root window and injects keys through XTEST.
type Device struct {
	conn     *xgb.Conn
	root     xproto.Window
	keycodes map[core.Key]xproto.Keycode
	logger   *log.Logger
}

// Open connects to display (empty means $DISPLAY) and prepares XTEST
// and the keycodes for every bot key.
func Open(display string, logger *log.Logger) (*Device, error) {
	conn, err := xgb.NewConnDisplay(display)
	if err != nil {
		return nil, fmt.Errorf("x11: connect %q: %w", display, err)
	}
	if err := xtest.Init(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("x11: XTEST unavailable: %w", err)
	}

	setup := xproto.Setup(conn)
	screen := setup.DefaultScreen(conn)
	if err := checkFormat(setup.ImageByteOrder, setup.PixmapFormats, screen.RootDepth); err != nil {
		conn.Close()
		return nil, err
	}

	count := byte(setup.MaxKeycode - setup.MinKeycode + 1)
	mapping, err := xproto.GetKeyboardMapping(conn, setup.MinKeycode, count).Reply()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("x11: keyboard mapping: %w", err)
	}

	d := &Device{
		conn:     conn,
		root:     screen.Root,
		keycodes: make(map[core.Key]xproto.Keycode),
		logger:   logger,
	}
	for key, sym := range map[core.Key]xproto.Keysym{
		core.KeySpace: keysymSpace,
		core.KeyUp:    keysymUp,
		core.KeyDown:  keysymDown,
	} {
		code, ok := keycodeFor(mapping.Keysyms, int(mapping.KeysymsPerKeycode), setup.MinKeycode, sym)
		if !ok {
			logger.Warn("no keycode for key", "key", key, "keysym", fmt.Sprintf("0x%04x", uint32(sym)))
			continue
		}
		d.keycodes[key] = code
	}

	logger.Info("x11 connected",
		"display", display,
		"root", fmt.Sprintf("0x%x", uint32(screen.Root)),
		"size", []int{int(screen.WidthInPixels), int(screen.HeightInPixels)})
	return d, nil
}

// keycodeFor finds the first keycode whose mapping contains sym.
// keysyms holds perKeycode entries for each keycode starting at min.
func keycodeFor(keysyms []xproto.Keysym, perKeycode int, min xproto.Keycode, sym xproto.Keysym) (xproto.Keycode, bool) {
	if perKeycode <= 0 {
		return 0, false
	}
	for i, s := range keysyms {
		if s == sym {
			return min + xproto.Keycode(i/perKeycode), true
		}
	}
	return 0, false
}

// checkFormat accepts the root window's ZPixmap format only when
// decodePixel can read it: LSBFirst, depth 24 or 32, 24 or 32 bits per pixel.
func checkFormat(order byte, formats []xproto.Format, depth byte) error {
	if order != xproto.ImageOrderLSBFirst {
		return fmt.Errorf("%w: image byte order %d, want LSBFirst", ErrUnsupportedFormat, order)
	}
	if depth != 24 && depth != 32 {
		return fmt.Errorf("%w: root depth %d", ErrUnsupportedFormat, depth)
	}
	for _, f := range formats {
		if f.Depth != depth {
			continue
		}
		if f.BitsPerPixel != 24 && f.BitsPerPixel != 32 {
			return fmt.Errorf("%w: %d bits per pixel at depth %d", ErrUnsupportedFormat, f.BitsPerPixel, depth)
		}
		return nil
	}
	return fmt.Errorf("%w: no pixmap format for depth %d", ErrUnsupportedFormat, depth)
}

// decodePixel converts one LSBFirst ZPixmap pixel (BGR or BGRX) to RGB.
func decodePixel(data []byte) (core.RGB, error) {
	if len(data) < 3 {
		return core.RGB{}, fmt.Errorf("%w: %d bytes", ErrShortImage, len(data))
	}
	return core.RGB{R: data[2], G: data[1], B: data[0]}, nil
}

// ReadPixel reads one pixel of the root window.
func (d *Device) ReadPixel(x, y int) (core.RGB, error) {
	reply, err := xproto.GetImage(d.conn, xproto.ImageFormatZPixmap, xproto.Drawable(d.root),
		int16(x), int16(y), 1, 1, 0xffffffff).Reply()
	if err != nil {
		return core.RGB{}, fmt.Errorf("x11: get image (%d,%d): %w", x, y, err)
	}
	return decodePixel(reply.Data)
}

// PressKey sends a synthetic key press.
func (d *Device) PressKey(key core.Key) error {
	return d.fakeInput(xproto.KeyPress, key)
}

// ReleaseKey sends a synthetic key release.
func (d *Device) ReleaseKey(key core.Key) error {
	return d.fakeInput(xproto.KeyRelease, key)
}

func (d *Device) fakeInput(event byte, key core.Key) error {
	code, ok := d.keycodes[key]
	if !ok {
		return fmt.Errorf("x11: no keycode for %s", key)
	}
	if err := xtest.FakeInputChecked(d.conn, event, byte(code), 0, d.root, 0, 0, 0).Check(); err != nil {
		return fmt.Errorf("x11: fake input %s: %w", key, err)
	}
	return nil
}

// Close closes the X connection.
func (d *Device) Close() error {
	d.conn.Close()
	return nil
}

// Register the backend with the registry
func init() {
	registry.Register("x11", "X11 screen and XTEST keyboard", func(cfg config.Config, logger *log.Logger) (registry.Backend, error) {
		d, err := Open(cfg.X11.Display, logger)
		if err != nil {
			return registry.Backend{}, err
		}
		return registry.Backend{Device: d, Clock: platform.RealClock{}, Config: cfg}, nil
	})
}
