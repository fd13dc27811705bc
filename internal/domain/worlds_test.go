package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFixTeamID(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"1234", "11234"},
		{"12101", "12015"},
		{"2101", "12015"},
		{"2008", "12008"},
		{"12008", "12008"},
		{" 1003 ", "11003"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, FixTeamID(tt.raw))
		})
	}
}

func TestFixWorldID(t *testing.T) {
	assert.Equal(t, "12015", FixWorldID(2101))
	assert.Equal(t, "11001", FixWorldID(1001))
}

func TestWorldName(t *testing.T) {
	name, ok := WorldName("12015")
	assert.True(t, ok)
	assert.Equal(t, "Bava Nisos", name)

	_, ok = WorldName("19999")
	assert.False(t, ok)
}

func TestPlaceholderName(t *testing.T) {
	assert.Equal(t, "Red T1", PlaceholderName(Red, 1))
	assert.Equal(t, "Green T5", PlaceholderName(Green, 5))
}

func TestMatchColorAccessors(t *testing.T) {
	m := Match{
		Worlds:        Worlds{Red: 2001, Green: 2002, Blue: 2003},
		VictoryPoints: VictoryPoints{Red: 10, Green: 20, Blue: 30},
	}

	assert.Equal(t, 2002, m.World(Green))
	assert.Equal(t, 30, m.Points(Blue))
	assert.Equal(t, 0, m.World(Color("purple")))
}
