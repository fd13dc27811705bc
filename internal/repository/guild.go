package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"wvw-dashboard/internal/db"
	"wvw-dashboard/internal/domain"

	"github.com/rs/zerolog"
)

// lastUpdateLayout sorts lexicographically in time order for UTC values.
const lastUpdateLayout = "2006-01-02T15:04:05Z"

type GuildRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewGuildRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *GuildRepository {
	return &GuildRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// Get returns nil when the guild is unknown.
func (r *GuildRepository) Get(ctx context.Context, id string) (*domain.Guild, error) {
	g, err := r.queries.GetGuild(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get guild %s: %w", id, err)
	}
	return &domain.Guild{ID: g.ID, Name: g.Name, Tag: g.Tag}, nil
}

func (r *GuildRepository) Upsert(ctx context.Context, guild domain.Guild) error {
	err := r.queries.UpsertGuild(ctx, db.UpsertGuildParams{
		ID:   guild.ID,
		Name: guild.Name,
		Tag:  guild.Tag,
	})
	if err != nil {
		return fmt.Errorf("failed to upsert guild %s: %w", guild.ID, err)
	}
	return nil
}

func (r *GuildRepository) Exists(ctx context.Context, id string) (bool, error) {
	exists, err := r.queries.GuildExists(ctx, id)
	if err != nil {
		return false, fmt.Errorf("failed to check guild %s: %w", id, err)
	}
	return exists, nil
}

func (r *GuildRepository) GetLastUpdated(ctx context.Context, id string) (time.Time, bool, error) {
	row, err := r.queries.GetLastUpdated(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to get last update for %s: %w", id, err)
	}

	ts, err := time.Parse(lastUpdateLayout, row.LastUpdate)
	if err != nil {
		// an unreadable marker counts as missing so the guild gets refreshed
		r.logger.Warn().Err(err).Str("guild_id", id).Str("value", row.LastUpdate).Msg("unparsable last update")
		return time.Time{}, false, nil
	}
	return ts, true, nil
}

func (r *GuildRepository) UpsertLastUpdated(ctx context.Context, id string, ts time.Time) error {
	err := r.queries.UpsertLastUpdated(ctx, db.UpsertLastUpdatedParams{
		GuildID:    id,
		LastUpdate: ts.UTC().Format(lastUpdateLayout),
	})
	if err != nil {
		return fmt.Errorf("failed to set last update for %s: %w", id, err)
	}
	return nil
}

// DueForRefresh lists known guilds whose marker is missing or older than cutoff.
func (r *GuildRepository) DueForRefresh(ctx context.Context, cutoff time.Time) ([]string, error) {
	ids, err := r.queries.GuildsDueForRefresh(ctx, cutoff.UTC().Format(lastUpdateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds due for refresh: %w", err)
	}
	r.logger.Debug().Int("count", len(ids)).Time("cutoff", cutoff).Msg("guilds due for refresh")
	return ids, nil
}

func (r *GuildRepository) ForTeam(ctx context.Context, teamID string) ([]domain.Guild, error) {
	rows, err := r.queries.GuildsForTeam(ctx, teamID)
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds for team %s: %w", teamID, err)
	}

	guilds := make([]domain.Guild, len(rows))
	for i, g := range rows {
		guilds[i] = domain.Guild{ID: g.ID, Name: g.Name, Tag: g.Tag}
	}
	return guilds, nil
}
