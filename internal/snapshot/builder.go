// Package snapshot assembles the dashboard view from storage and publishes
// it to concurrent readers.
package snapshot

import (
	"context"
	"fmt"
	"wvw-dashboard/internal/api"
	"wvw-dashboard/internal/config"
	"wvw-dashboard/internal/constants"
	"wvw-dashboard/internal/domain"
	"wvw-dashboard/internal/names"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type MatchReader interface {
	Get(ctx context.Context, id string) (*domain.Match, error)
}

type GuildReader interface {
	ForTeam(ctx context.Context, teamID string) ([]domain.Guild, error)
}

type TeamLookup interface {
	TeamIDForGuildName(ctx context.Context, name string) (string, bool, error)
}

type Builder struct {
	matches      MatchReader
	guilds       GuildReader
	teams        TeamLookup
	regionPrefix string
	ownGuildName string
	important    []string
	logger       zerolog.Logger
}

func NewBuilder(
	matches MatchReader,
	guilds GuildReader,
	teams TeamLookup,
	important ImportantGuilds,
	cfg *config.Config,
	logger zerolog.Logger,
) *Builder {
	return &Builder{
		matches:      matches,
		guilds:       guilds,
		teams:        teams,
		regionPrefix: cfg.MatchRegionPrefix,
		ownGuildName: cfg.OwnGuildName,
		important:    important,
		logger:       logger,
	}
}

// Build reads every tier concurrently. Tiers without a stored match are left
// out. Each query sees its own consistent rows; the tiers are not read in a
// single transaction.
func (b *Builder) Build(ctx context.Context) (*Data, error) {
	tiers := make([]*Tier, constants.TierCount)

	g, gCtx := errgroup.WithContext(ctx)
	for i := range tiers {
		tier := i + 1
		g.Go(func() error {
			t, err := b.buildTier(gCtx, tier)
			if err != nil {
				return err
			}
			tiers[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	data := &Data{
		Tiers:           make(map[int]Tier, len(tiers)),
		ImportantGuilds: b.important,
	}
	for i, t := range tiers {
		if t != nil {
			data.Tiers[i+1] = *t
		}
	}

	ownTeam, err := b.ownTeam(ctx)
	if err != nil {
		return nil, err
	}
	data.OwnTeam = ownTeam

	return data, nil
}

func (b *Builder) buildTier(ctx context.Context, tier int) (*Tier, error) {
	id := api.MatchByTier(b.regionPrefix, tier).Arg
	match, err := b.matches.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read tier %d: %w", tier, err)
	}
	if match == nil {
		return nil, nil
	}

	t := &Tier{
		MatchID:   match.ID,
		StartTime: match.StartTime,
		EndTime:   match.EndTime,
		Teams:     make(map[domain.Color]Team, len(domain.Colors)),
	}

	for _, color := range domain.Colors {
		teamID := domain.FixWorldID(match.World(color))
		name, ok := domain.WorldName(teamID)
		if !ok {
			name = domain.PlaceholderName(color, tier)
		}

		members, err := b.guilds.ForTeam(ctx, teamID)
		if err != nil {
			return nil, fmt.Errorf("failed to read guilds of %s in tier %d: %w", color, tier, err)
		}

		entries := make([]Guild, len(members))
		for i, m := range members {
			entries[i] = Guild{ID: m.ID, Name: m.Name, Tag: m.Tag}
		}

		t.Teams[color] = Team{
			TeamID:        teamID,
			Name:          name,
			VictoryPoints: match.Points(color),
			Guilds:        names.Group(entries, func(g Guild) string { return g.Name }),
		}
	}

	return t, nil
}

func (b *Builder) ownTeam(ctx context.Context) (string, error) {
	if b.ownGuildName == "" {
		return "", nil
	}

	teamID, ok, err := b.teams.TeamIDForGuildName(ctx, b.ownGuildName)
	if err != nil {
		return "", fmt.Errorf("failed to resolve own team: %w", err)
	}
	if !ok {
		return "", nil
	}

	teamID = domain.FixTeamID(teamID)
	if name, ok := domain.WorldName(teamID); ok {
		return name, nil
	}
	return teamID, nil
}
