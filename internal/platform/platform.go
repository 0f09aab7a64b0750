// Package platform defines the primitives the bot needs from the host that
// shows the game: reading a screen pixel, injecting key events, and waiting
// between control-loop iterations.
package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/vovakirdan/dinobot/internal/core"
)

// Screen reads single pixels of the game page.
type Screen interface {
	ReadPixel(x, y int) (core.RGB, error)
}

// Keyboard injects key events into the game page.
type Keyboard interface {
	PressKey(key core.Key) error
	ReleaseKey(key core.Key) error
}

// Device is a screen and keyboard backed by one connection.
type Device interface {
	Screen
	Keyboard
	Close() error
}

// Clock suspends the control loop between iterations.
// Wait returns ctx.Err() if the context ends first.
type Clock interface {
	Wait(ctx context.Context, d time.Duration) error
}

// Tap presses and immediately releases key.
func Tap(kb Keyboard, key core.Key) error {
	if err := kb.PressKey(key); err != nil {
		return fmt.Errorf("platform: press %s: %w", key, err)
	}
	if err := kb.ReleaseKey(key); err != nil {
		return fmt.Errorf("platform: release %s: %w", key, err)
	}
	return nil
}

// RealClock waits on the wall clock.
type RealClock struct{}

// Wait sleeps for d or until ctx is done.
func (RealClock) Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
