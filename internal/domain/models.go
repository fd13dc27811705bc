package domain

import (
	"time"
)

type Guild struct {
	ID   string
	Name string
	Tag  string
}

// Membership links a guild to a WvW team. A nil TeamID means the guild is
// known but not currently on any team.
type Membership struct {
	GuildID string
	TeamID  *string
}

type Worlds struct {
	Red   int
	Green int
	Blue  int
}

type VictoryPoints struct {
	Red   int
	Green int
	Blue  int
}

type Match struct {
	ID            string
	StartTime     string
	EndTime       string
	Worlds        Worlds
	VictoryPoints VictoryPoints
}

type LastUpdated struct {
	GuildID   string
	Timestamp time.Time
}

type Color string

const (
	Red   Color = "red"
	Green Color = "green"
	Blue  Color = "blue"
)

// Colors lists the three sides of a matchup in display order.
var Colors = []Color{Red, Green, Blue}

// World returns the world id fighting as c.
func (m *Match) World(c Color) int {
	switch c {
	case Red:
		return m.Worlds.Red
	case Green:
		return m.Worlds.Green
	case Blue:
		return m.Worlds.Blue
	}
	return 0
}

func (m *Match) Points(c Color) int {
	switch c {
	case Red:
		return m.VictoryPoints.Red
	case Green:
		return m.VictoryPoints.Green
	case Blue:
		return m.VictoryPoints.Blue
	}
	return 0
}
