package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"wvw-dashboard/internal/db"
	"wvw-dashboard/internal/domain"

	"github.com/rs/zerolog"
)

type MatchRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// Get returns nil when no match is stored under id.
func (r *MatchRepository) Get(ctx context.Context, id string) (*domain.Match, error) {
	row, err := r.queries.GetMatch(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}

	return &domain.Match{
		ID:        row.ID,
		StartTime: row.StartTime,
		EndTime:   row.EndTime,
		Worlds: domain.Worlds{
			Red:   int(row.RedWorld),
			Green: int(row.GreenWorld),
			Blue:  int(row.BlueWorld),
		},
		VictoryPoints: domain.VictoryPoints{
			Red:   int(row.RedVp),
			Green: int(row.GreenVp),
			Blue:  int(row.BlueVp),
		},
	}, nil
}

func (r *MatchRepository) Upsert(ctx context.Context, match *domain.Match) error {
	err := r.queries.UpsertMatch(ctx, db.UpsertMatchParams{
		ID:         match.ID,
		StartTime:  match.StartTime,
		EndTime:    match.EndTime,
		RedWorld:   int64(match.Worlds.Red),
		GreenWorld: int64(match.Worlds.Green),
		BlueWorld:  int64(match.Worlds.Blue),
		RedVp:      int64(match.VictoryPoints.Red),
		GreenVp:    int64(match.VictoryPoints.Green),
		BlueVp:     int64(match.VictoryPoints.Blue),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert match %s: %w", match.ID, err)
	}
	return nil
}
