package service

import (
	"context"
	"time"
	"wvw-dashboard/internal/domain"
)

type MatchStore interface {
	Upsert(ctx context.Context, match *domain.Match) error
}

type GuildStore interface {
	Exists(ctx context.Context, id string) (bool, error)
	Upsert(ctx context.Context, guild domain.Guild) error
	UpsertLastUpdated(ctx context.Context, id string, ts time.Time) error
	DueForRefresh(ctx context.Context, cutoff time.Time) ([]string, error)
}

type MembershipStore interface {
	UpsertBatch(ctx context.Context, memberships []domain.Membership) error
	NullExcept(ctx context.Context, keep []string) (int64, error)
}
