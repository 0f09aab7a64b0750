package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRGBIsGray(t *testing.T) {
	assert.True(t, Gray(172).IsGray(172))
	assert.False(t, RGB{R: 172, G: 172, B: 171}.IsGray(172))
	assert.False(t, RGB{R: 173, G: 172, B: 172}.IsGray(172))
	assert.False(t, Gray(171).IsGray(172))
}

func TestRGBFloats(t *testing.T) {
	assert.Equal(t, [3]float64{83, 0, 255}, RGB{R: 83, G: 0, B: 255}.Floats())
	assert.Equal(t, "rgb(1,2,3)", RGB{R: 1, G: 2, B: 3}.String())
}

func TestParseKey(t *testing.T) {
	tests := []struct {
		in   string
		want Key
	}{
		{"space", KeySpace},
		{" Space ", KeySpace},
		{"down", KeyDown},
		{"ArrowDown", KeyDown},
		{"up", KeyUp},
	}
	for _, tc := range tests {
		got, err := ParseKey(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.Equal(t, tc.want, mustParse(t, got.String()), "round trip of %s", tc.in)
	}

	_, err := ParseKey("enter")
	assert.Error(t, err)
}

func TestActionValid(t *testing.T) {
	assert.True(t, ActionJump.Valid())
	assert.True(t, ActionDuck.Valid())
	assert.False(t, Action(2).Valid())
	assert.False(t, Action(-1).Valid())
	assert.Equal(t, "Duck", ActionDuck.String())
}

func mustParse(t *testing.T, name string) Key {
	t.Helper()
	k, err := ParseKey(name)
	require.NoError(t, err)
	return k
}
