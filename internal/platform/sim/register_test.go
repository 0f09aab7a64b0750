package sim

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/dinobot/internal/config"
	"github.com/vovakirdan/dinobot/internal/registry"
)

func TestRegisteredBackend(t *testing.T) {
	require.True(t, registry.Exists("sim"))

	b, err := registry.Open("sim", config.Default(), log.New(io.Discard))
	require.NoError(t, err)
	defer b.Device.Close()

	assert.IsType(t, &Game{}, b.Device)
	assert.IsType(t, &Clock{}, b.Clock)
	assert.Equal(t, config.Default().Sim.PlayerX, b.Config.Layout.PlayerX)
}
