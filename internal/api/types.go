package api

import "wvw-dashboard/internal/domain"

type MatchResponse struct {
	ID            string      `json:"id"`
	StartTime     string      `json:"start_time"`
	EndTime       string      `json:"end_time"`
	Worlds        ColorValues `json:"worlds"`
	VictoryPoints ColorValues `json:"victory_points"`
}

type ColorValues struct {
	Red   int `json:"red"`
	Green int `json:"green"`
	Blue  int `json:"blue"`
}

func (m *MatchResponse) ToDomain() domain.Match {
	return domain.Match{
		ID:        m.ID,
		StartTime: m.StartTime,
		EndTime:   m.EndTime,
		Worlds: domain.Worlds{
			Red:   m.Worlds.Red,
			Green: m.Worlds.Green,
			Blue:  m.Worlds.Blue,
		},
		VictoryPoints: domain.VictoryPoints{
			Red:   m.VictoryPoints.Red,
			Green: m.VictoryPoints.Green,
			Blue:  m.VictoryPoints.Blue,
		},
	}
}

type GuildResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tag  string `json:"tag"`
}

func (g *GuildResponse) ToDomain() domain.Guild {
	return domain.Guild{ID: g.ID, Name: g.Name, Tag: g.Tag}
}

// GuildTeamListing maps guild id to team id.
type GuildTeamListing map[string]string

// GuildSearchResponse holds the ids matching a guild name search.
type GuildSearchResponse []string
