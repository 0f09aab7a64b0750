package x11

import (
	"testing"

	"github.com/jezek/xgb/xproto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/dinobot/internal/core"
)

func TestKeycodeFor(t *testing.T) {
	// keycodes 8..11, two keysyms each
	keysyms := []xproto.Keysym{
		0x0061, 0x0041, // 8: a A
		keysymDown, 0, // 9
		0x0031, 0x0021, // 10: 1 !
		keysymSpace, keysymSpace, // 11
	}

	code, ok := keycodeFor(keysyms, 2, 8, keysymSpace)
	require.True(t, ok)
	assert.Equal(t, xproto.Keycode(11), code)

	code, ok = keycodeFor(keysyms, 2, 8, keysymDown)
	require.True(t, ok)
	assert.Equal(t, xproto.Keycode(9), code)

	_, ok = keycodeFor(keysyms, 2, 8, keysymUp)
	assert.False(t, ok)

	_, ok = keycodeFor(keysyms, 0, 8, keysymSpace)
	assert.False(t, ok)
}

func TestDecodePixel(t *testing.T) {
	c, err := decodePixel([]byte{0x10, 0x20, 0x30, 0x00})
	require.NoError(t, err)
	assert.Equal(t, core.RGB{R: 0x30, G: 0x20, B: 0x10}, c)

	_, err = decodePixel([]byte{1, 2})
	assert.ErrorIs(t, err, ErrShortImage)
}

func TestCheckFormat(t *testing.T) {
	formats := []xproto.Format{
		{Depth: 1, BitsPerPixel: 1, ScanlinePad: 32},
		{Depth: 16, BitsPerPixel: 16, ScanlinePad: 32},
		{Depth: 24, BitsPerPixel: 32, ScanlinePad: 32},
		{Depth: 32, BitsPerPixel: 32, ScanlinePad: 32},
	}
	assert.NoError(t, checkFormat(xproto.ImageOrderLSBFirst, formats, 24))
	assert.NoError(t, checkFormat(xproto.ImageOrderLSBFirst, formats, 32))
	assert.NoError(t, checkFormat(xproto.ImageOrderLSBFirst,
		[]xproto.Format{{Depth: 24, BitsPerPixel: 24, ScanlinePad: 32}}, 24))

	tests := []struct {
		name    string
		order   byte
		formats []xproto.Format
		depth   byte
	}{
		{"big endian", xproto.ImageOrderMSBFirst, formats, 24},
		{"16 bit depth", xproto.ImageOrderLSBFirst, formats, 16},
		{"30 bit depth", xproto.ImageOrderLSBFirst, []xproto.Format{{Depth: 30, BitsPerPixel: 32}}, 30},
		{"packed bits", xproto.ImageOrderLSBFirst, []xproto.Format{{Depth: 24, BitsPerPixel: 16}}, 24},
		{"no format for depth", xproto.ImageOrderLSBFirst, formats[:2], 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, checkFormat(tt.order, tt.formats, tt.depth), ErrUnsupportedFormat)
		})
	}
}
