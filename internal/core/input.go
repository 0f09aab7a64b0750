package core

import (
	"fmt"
	"strings"
)

// Action is a decision the agent can take when an obstacle is incoming.
// The numeric value doubles as the index into a Q-value vector.
type Action int

const (
	ActionJump Action = iota // Tap the jump key
	ActionDuck               // Tap the duck key
)

// NumActions is the size of the action space.
const NumActions = 2

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionJump:
		return "Jump"
	case ActionDuck:
		return "Duck"
	default:
		return "Unknown"
	}
}

// Valid reports whether a is inside the action space.
func (a Action) Valid() bool {
	return a >= 0 && int(a) < NumActions
}

// Key is a physical key the platform layer can press and release.
type Key int

const (
	KeyNone Key = iota
	KeySpace
	KeyDown
	KeyUp
)

// String returns the config name of the key.
func (k Key) String() string {
	switch k {
	case KeySpace:
		return "space"
	case KeyDown:
		return "down"
	case KeyUp:
		return "up"
	default:
		return "none"
	}
}

// ParseKey converts a config key name into a Key.
func ParseKey(name string) (Key, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "space", " ":
		return KeySpace, nil
	case "down", "arrowdown":
		return KeyDown, nil
	case "up", "arrowup":
		return KeyUp, nil
	}
	return KeyNone, fmt.Errorf("core: unknown key %q", name)
}
