package db

import (
	"database/sql"
)

type Guild struct {
	ID   string
	Name string
	Tag  string
}

type GuildLastUpdated struct {
	GuildID    string
	LastUpdate string
}

type GuildTeam struct {
	GuildID string
	TeamID  sql.NullString
}

type Match struct {
	ID         string
	StartTime  string
	EndTime    string
	RedWorld   int64
	GreenWorld int64
	BlueWorld  int64
	RedVp      int64
	GreenVp    int64
	BlueVp     int64
}
