package service

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"
	"wvw-dashboard/internal/api"
	"wvw-dashboard/internal/config"
	"wvw-dashboard/internal/domain"
	"wvw-dashboard/internal/errsink"
	"wvw-dashboard/internal/logger"
	"wvw-dashboard/internal/scheduler"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// TeamService reconciles guild team memberships with the region listing and
// fetches details for guilds seen for the first time.
type TeamService struct {
	calls        scheduler.Enqueuer
	guilds       GuildStore
	memberships  MembershipStore
	region       string
	ownGuildName string
	clock        clock.Clock
	sink         errsink.Sink
	logger       zerolog.Logger
}

func NewTeamService(
	calls scheduler.Enqueuer,
	guilds GuildStore,
	memberships MembershipStore,
	cfg *config.Config,
	clk clock.Clock,
	sink errsink.Sink,
	logger zerolog.Logger,
) *TeamService {
	return &TeamService{
		calls:        calls,
		guilds:       guilds,
		memberships:  memberships,
		region:       cfg.Region,
		ownGuildName: cfg.OwnGuildName,
		clock:        clk,
		sink:         sink,
		logger:       logger,
	}
}

func (s *TeamService) Name() string {
	return "team"
}

func (s *TeamService) Sync(ctx context.Context) error {
	listing, ok := scheduler.Fetch[api.GuildTeamListing](ctx, s.calls, api.AllGuildTeamMemberships(s.region), scheduler.High)
	if !ok {
		return fmt.Errorf("membership listing unavailable")
	}

	ids := make([]string, 0, len(listing))
	for id := range listing {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	cleared, err := s.memberships.NullExcept(ctx, ids)
	if err != nil {
		s.sink.Record(ctx, "team.null_memberships", err)
	}

	groups := s.partition(ctx, listing, ids)

	memberships := make([]domain.Membership, 0, len(ids))
	for _, id := range ids {
		team := listing[id]
		memberships = append(memberships, domain.Membership{GuildID: id, TeamID: &team})
	}
	if err := s.memberships.UpsertBatch(ctx, memberships); err != nil {
		s.sink.Record(ctx, "team.upsert_memberships", err)
	}

	fetched := s.fetchNewGuilds(ctx, groups)

	logger.FromContext(ctx, s.logger).Info().
		Int("listed", len(ids)).
		Int64("cleared", cleared).
		Int("new_guilds", fetched).
		Msg("teams synced")
	return nil
}

// partition orders ids as own guild, rest of own team, everyone else. When
// the own guild cannot be resolved all ids form a single group.
func (s *TeamService) partition(ctx context.Context, listing api.GuildTeamListing, ids []string) [][]string {
	found, ok := scheduler.Fetch[api.GuildSearchResponse](ctx, s.calls, api.GuildIDByName(s.ownGuildName), scheduler.High)
	if !ok || len(found) == 0 {
		logger.FromContext(ctx, s.logger).Warn().Str("guild", s.ownGuildName).Msg("own guild lookup failed, using unordered pass")
		return [][]string{ids}
	}

	ownID := found[0]
	ownTeam, onTeam := listing[ownID]

	var own, team, rest []string
	for _, id := range ids {
		switch {
		case id == ownID:
			own = append(own, id)
		case onTeam && listing[id] == ownTeam:
			team = append(team, id)
		default:
			rest = append(rest, id)
		}
	}

	logger.FromContext(ctx, s.logger).Debug().
		Str("own_guild_id", ownID).
		Str("own_team", ownTeam).
		Int("team", len(team)).
		Int("rest", len(rest)).
		Msg("listing partitioned")
	return [][]string{own, team, rest}
}

// fetchNewGuilds enqueues detail fetches for unknown guilds in group order
// and waits for all of them.
func (s *TeamService) fetchNewGuilds(ctx context.Context, groups [][]string) int {
	type pendingGuild struct {
		id      string
		pending scheduler.Pending[api.GuildResponse]
	}

	var queued []pendingGuild
	for _, group := range groups {
		for _, id := range group {
			exists, err := s.guilds.Exists(ctx, id)
			if err != nil {
				s.sink.Record(ctx, "team.guild_exists", err)
				continue
			}
			if exists {
				continue
			}
			queued = append(queued, pendingGuild{
				id:      id,
				pending: scheduler.Request[api.GuildResponse](s.calls, api.GuildByID(id), scheduler.Normal),
			})
		}
	}

	var g errgroup.Group
	var stored atomic.Int32
	for _, q := range queued {
		g.Go(func() error {
			resp, ok := q.pending.Await(ctx)
			if !ok {
				return nil
			}
			if storeGuild(ctx, s.guilds, q.id, resp, s.clock, s.sink, "team") {
				stored.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	return int(stored.Load())
}

// storeGuild upserts a fetched guild and stamps its refresh marker.
func storeGuild(ctx context.Context, guilds GuildStore, id string, resp api.GuildResponse, clk clock.Clock, sink errsink.Sink, op string) bool {
	guild := resp.ToDomain()
	if guild.ID == "" {
		guild.ID = id
	}
	if err := guilds.Upsert(ctx, guild); err != nil {
		sink.Record(ctx, op+".upsert_guild", err)
		return false
	}
	if err := guilds.UpsertLastUpdated(ctx, guild.ID, clk.Now()); err != nil {
		sink.Record(ctx, op+".upsert_last_updated", err)
	}
	return true
}
