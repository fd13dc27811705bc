package snapshot

import "wvw-dashboard/internal/domain"

// Data is one complete dashboard view. It is never modified after Build
// returns it.
type Data struct {
	Tiers           map[int]Tier `json:"tiers"`
	ImportantGuilds []string     `json:"important_guilds"`
	OwnTeam         string       `json:"own_team,omitempty"`
}

type Tier struct {
	MatchID   string                `json:"match_id"`
	StartTime string                `json:"start_time"`
	EndTime   string                `json:"end_time"`
	Teams     map[domain.Color]Team `json:"teams"`
}

type Team struct {
	TeamID        string             `json:"team_id"`
	Name          string             `json:"name"`
	VictoryPoints int                `json:"victory_points"`
	Guilds        map[string][]Guild `json:"guilds"`
}

type Guild struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Tag  string `json:"tag"`
}
