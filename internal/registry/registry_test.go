package registry

import (
	"errors"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/dinobot/internal/config"
	"github.com/vovakirdan/dinobot/internal/platform"
)

func TestRegisterOpenList(t *testing.T) {
	opened := 0
	Register("test-ok", "Test backend", func(cfg config.Config, logger *log.Logger) (Backend, error) {
		opened++
		return Backend{Clock: platform.RealClock{}}, nil
	})
	Register("test-fail", "Failing backend", func(cfg config.Config, logger *log.Logger) (Backend, error) {
		return Backend{}, errors.New("no display")
	})

	assert.True(t, Exists("test-ok"))
	assert.False(t, Exists("test-missing"))

	b, err := Open("test-ok", config.Default(), log.New(io.Discard))
	require.NoError(t, err)
	assert.Equal(t, platform.RealClock{}, b.Clock)
	assert.Equal(t, 1, opened)

	_, err = Open("test-fail", config.Default(), log.New(io.Discard))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open test-fail")

	_, err = Open("test-missing", config.Default(), log.New(io.Discard))
	assert.Error(t, err)

	list := List()
	var ids []string
	for _, info := range list {
		ids = append(ids, info.ID)
	}
	assert.IsIncreasing(t, ids)
	assert.Contains(t, ids, "test-ok")
}

func TestRegisterDuplicatePanics(t *testing.T) {
	f := func(cfg config.Config, logger *log.Logger) (Backend, error) { return Backend{}, nil }
	Register("test-dup", "Dup", f)
	assert.Panics(t, func() { Register("test-dup", "Dup", f) })
}
