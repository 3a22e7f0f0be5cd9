package keymap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultKeyMap(t *testing.T) {
	km := DefaultKeyMap()

	require.NotNil(t, km)
	assert.True(t, Matches("esc", km.Quit))
	assert.True(t, Matches("ctrl+c", km.Quit))
	assert.True(t, Matches("enter", km.Ask))
	assert.True(t, Matches("pgup", km.ScrollUp))
	assert.True(t, Matches("pgdown", km.ScrollDown))
	assert.True(t, Matches("tab", km.Suggest))
}

func TestMatches(t *testing.T) {
	km := DefaultKeyMap()

	tests := []struct {
		name   string
		key    string
		expect bool
	}{
		{"quit with esc", "esc", true},
		{"q is typed, not quit", "q", false},
		{"enter is not quit", "enter", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, Matches(tt.key, km.Quit))
		})
	}
}

func TestShortHelp(t *testing.T) {
	km := DefaultKeyMap()

	help := km.ShortHelp()

	require.Len(t, help, 4)
	assert.Equal(t, "enter", help[0].Help().Key)
	assert.Equal(t, "esc", help[3].Help().Key)
}
