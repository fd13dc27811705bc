package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"wvw-dashboard/internal/constants"
	"wvw-dashboard/internal/db"
	"wvw-dashboard/internal/domain"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

type MembershipRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewMembershipRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *MembershipRepository {
	return &MembershipRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// Get returns nil when no row exists for the guild.
func (r *MembershipRepository) Get(ctx context.Context, guildID string) (*domain.Membership, error) {
	row, err := r.queries.GetMembership(ctx, guildID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get membership for %s: %w", guildID, err)
	}
	return &domain.Membership{GuildID: row.GuildID, TeamID: fromNull(row.TeamID)}, nil
}

func (r *MembershipRepository) Upsert(ctx context.Context, guildID string, teamID *string) error {
	err := r.queries.UpsertMembership(ctx, db.UpsertMembershipParams{
		GuildID: guildID,
		TeamID:  toNull(teamID),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert membership for %s: %w", guildID, err)
	}
	return nil
}

func (r *MembershipRepository) UpsertBatch(ctx context.Context, memberships []domain.Membership) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	for i := 0; i < len(memberships); i += constants.DBBatchSize {
		end := min(i+constants.DBBatchSize, len(memberships))

		for _, m := range memberships[i:end] {
			err := qtx.UpsertMembership(ctx, db.UpsertMembershipParams{
				GuildID: m.GuildID,
				TeamID:  toNull(m.TeamID),
			})
			if err != nil {
				return fmt.Errorf("failed to upsert membership for %s: %w", m.GuildID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit memberships: %w", err)
	}

	r.logger.Debug().Int("count", len(memberships)).Msg("memberships upserted")
	return nil
}

// NullExcept clears the team of every guild not in keep. Rows are kept.
func (r *MembershipRepository) NullExcept(ctx context.Context, keep []string) (int64, error) {
	if keep == nil {
		keep = []string{}
	}
	ids, err := json.Marshal(keep)
	if err != nil {
		return 0, fmt.Errorf("failed to encode guild ids: %w", err)
	}

	n, err := r.queries.NullMembershipsExcept(ctx, string(ids))
	if err != nil {
		return 0, fmt.Errorf("failed to null stale memberships: %w", err)
	}

	r.logger.Debug().Int64("cleared", n).Int("kept", len(keep)).Msg("stale memberships cleared")
	return n, nil
}

func (r *MembershipRepository) TeamIDForGuildName(ctx context.Context, name string) (string, bool, error) {
	teamID, err := r.queries.TeamIDForGuildName(ctx, name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get team for guild %q: %w", name, err)
	}
	if !teamID.Valid {
		return "", false, nil
	}
	return teamID.String, true, nil
}

func toNull(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func fromNull(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
