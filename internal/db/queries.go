package db

import (
	"context"
	"database/sql"
)

const getGuild = `
SELECT id, name, tag FROM guilds WHERE id = ?
`

func (q *Queries) GetGuild(ctx context.Context, id string) (Guild, error) {
	row := q.db.QueryRowContext(ctx, getGuild, id)
	var i Guild
	err := row.Scan(&i.ID, &i.Name, &i.Tag)
	return i, err
}

const upsertGuild = `
INSERT INTO guilds (id, name, tag) VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    name = excluded.name,
    tag = excluded.tag
`

type UpsertGuildParams struct {
	ID   string
	Name string
	Tag  string
}

func (q *Queries) UpsertGuild(ctx context.Context, arg UpsertGuildParams) error {
	_, err := q.db.ExecContext(ctx, upsertGuild, arg.ID, arg.Name, arg.Tag)
	return err
}

const guildExists = `
SELECT EXISTS (SELECT 1 FROM guilds WHERE id = ?)
`

func (q *Queries) GuildExists(ctx context.Context, id string) (bool, error) {
	row := q.db.QueryRowContext(ctx, guildExists, id)
	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

const getLastUpdated = `
SELECT guild_id, last_update FROM guild_last_updated WHERE guild_id = ?
`

func (q *Queries) GetLastUpdated(ctx context.Context, guildID string) (GuildLastUpdated, error) {
	row := q.db.QueryRowContext(ctx, getLastUpdated, guildID)
	var i GuildLastUpdated
	err := row.Scan(&i.GuildID, &i.LastUpdate)
	return i, err
}

const upsertLastUpdated = `
INSERT INTO guild_last_updated (guild_id, last_update) VALUES (?, ?)
ON CONFLICT(guild_id) DO UPDATE SET last_update = excluded.last_update
`

type UpsertLastUpdatedParams struct {
	GuildID    string
	LastUpdate string
}

func (q *Queries) UpsertLastUpdated(ctx context.Context, arg UpsertLastUpdatedParams) error {
	_, err := q.db.ExecContext(ctx, upsertLastUpdated, arg.GuildID, arg.LastUpdate)
	return err
}

const guildsDueForRefresh = `
SELECT g.id
FROM guilds g
LEFT JOIN guild_last_updated l ON l.guild_id = g.id
WHERE l.last_update IS NULL OR l.last_update < ?
ORDER BY g.id
`

func (q *Queries) GuildsDueForRefresh(ctx context.Context, cutoff string) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, guildsDueForRefresh, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		items = append(items, id)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getMembership = `
SELECT guild_id, team_id FROM guild_team WHERE guild_id = ?
`

func (q *Queries) GetMembership(ctx context.Context, guildID string) (GuildTeam, error) {
	row := q.db.QueryRowContext(ctx, getMembership, guildID)
	var i GuildTeam
	err := row.Scan(&i.GuildID, &i.TeamID)
	return i, err
}

const upsertMembership = `
INSERT INTO guild_team (guild_id, team_id) VALUES (?, ?)
ON CONFLICT(guild_id) DO UPDATE SET team_id = excluded.team_id
`

type UpsertMembershipParams struct {
	GuildID string
	TeamID  sql.NullString
}

func (q *Queries) UpsertMembership(ctx context.Context, arg UpsertMembershipParams) error {
	_, err := q.db.ExecContext(ctx, upsertMembership, arg.GuildID, arg.TeamID)
	return err
}

// keepIDs is a JSON array of guild ids.
const nullMembershipsExcept = `
UPDATE guild_team SET team_id = NULL
WHERE team_id IS NOT NULL
  AND guild_id NOT IN (SELECT value FROM json_each(?))
`

func (q *Queries) NullMembershipsExcept(ctx context.Context, keepIDs string) (int64, error) {
	result, err := q.db.ExecContext(ctx, nullMembershipsExcept, keepIDs)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const guildsForTeam = `
SELECT g.id, g.name, g.tag
FROM guilds g
JOIN guild_team gt ON gt.guild_id = g.id
WHERE gt.team_id = ?
ORDER BY g.name
`

func (q *Queries) GuildsForTeam(ctx context.Context, teamID string) ([]Guild, error) {
	rows, err := q.db.QueryContext(ctx, guildsForTeam, teamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Guild
	for rows.Next() {
		var i Guild
		if err := rows.Scan(&i.ID, &i.Name, &i.Tag); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const teamIDForGuildName = `
SELECT gt.team_id
FROM guilds g
JOIN guild_team gt ON gt.guild_id = g.id
WHERE g.name = ?
LIMIT 1
`

func (q *Queries) TeamIDForGuildName(ctx context.Context, name string) (sql.NullString, error) {
	row := q.db.QueryRowContext(ctx, teamIDForGuildName, name)
	var teamID sql.NullString
	err := row.Scan(&teamID)
	return teamID, err
}

const getMatch = `
SELECT id, start_time, end_time, red_world, green_world, blue_world, red_vp, green_vp, blue_vp
FROM matches WHERE id = ?
`

func (q *Queries) GetMatch(ctx context.Context, id string) (Match, error) {
	row := q.db.QueryRowContext(ctx, getMatch, id)
	var i Match
	err := row.Scan(
		&i.ID,
		&i.StartTime,
		&i.EndTime,
		&i.RedWorld,
		&i.GreenWorld,
		&i.BlueWorld,
		&i.RedVp,
		&i.GreenVp,
		&i.BlueVp,
	)
	return i, err
}

const upsertMatch = `
INSERT INTO matches (id, start_time, end_time, red_world, green_world, blue_world, red_vp, green_vp, blue_vp)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
    start_time = excluded.start_time,
    end_time = excluded.end_time,
    red_world = excluded.red_world,
    green_world = excluded.green_world,
    blue_world = excluded.blue_world,
    red_vp = excluded.red_vp,
    green_vp = excluded.green_vp,
    blue_vp = excluded.blue_vp
`

type UpsertMatchParams struct {
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

func (q *Queries) UpsertMatch(ctx context.Context, arg UpsertMatchParams) error {
	_, err := q.db.ExecContext(ctx, upsertMatch,
		arg.ID,
		arg.StartTime,
		arg.EndTime,
		arg.RedWorld,
		arg.GreenWorld,
		arg.BlueWorld,
		arg.RedVp,
		arg.GreenVp,
		arg.BlueVp,
	)
	return err
}
