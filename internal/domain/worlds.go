package domain

import (
	"fmt"
	"strconv"
	"strings"
)

var worldNames = map[string]string{
	"11001": "Moogooloo",
	"11002": "Rall's Rest",
	"11003": "Domain of Torment",
	"11004": "Yohlon Haven",
	"11005": "Tombs of Drascir",
	"11006": "Hall of Judgment",
	"11007": "Throne of Balthazar",
	"11008": "Dwayna's Temple",
	"11009": "Abaddon's Prison",
	"11010": "Cathedral of Blood",
	"11011": "Lutgardis Conservatory",
	"11012": "Mosswood",
	"12001": "Skrittsburgh",
	"12002": "Fortune's Vale",
	"12003": "Silent Woods",
	"12004": "Ettin's Back",
	"12005": "Domain of Anguish",
	"12006": "Palawadan",
	"12007": "Bloodstone Gulch",
	"12008": "Frost Citadel",
	"12009": "Dragrimmar",
	"12010": "Grenth's Door",
	"12011": "Mirror of Lyssa",
	"12012": "Melandru's Dome",
	"12013": "Kormir's Library",
	"12014": "Great House Aviary",
	"12015": "Bava Nisos",
}

// misreportedTeamID is served by the match endpoint for Bava Nisos.
const (
	misreportedTeamID = "12101"
	bavaNisosTeamID   = "12015"
)

// FixTeamID maps a raw world id from match data onto the team id used by the
// guild membership listing: 4-digit ids get a leading 1, and the one id the
// API misreports is remapped.
func FixTeamID(raw string) string {
	id := strings.TrimSpace(raw)
	if len(id) == 4 {
		id = "1" + id
	}
	if id == misreportedTeamID {
		return bavaNisosTeamID
	}
	return id
}

// FixWorldID is FixTeamID for numeric world ids.
func FixWorldID(world int) string {
	return FixTeamID(strconv.Itoa(world))
}

// WorldName resolves a team id to its display name.
func WorldName(teamID string) (string, bool) {
	name, ok := worldNames[teamID]
	return name, ok
}

// PlaceholderName is shown for team ids missing from the world table.
func PlaceholderName(c Color, tier int) string {
	s := string(c)
	return fmt.Sprintf("%s%s T%d", strings.ToUpper(s[:1]), s[1:], tier)
}
