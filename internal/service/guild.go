package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"
	"wvw-dashboard/internal/api"
	"wvw-dashboard/internal/config"
	"wvw-dashboard/internal/errsink"
	"wvw-dashboard/internal/logger"
	"wvw-dashboard/internal/scheduler"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// GuildService refreshes names and tags of known guilds whose details are
// older than the refresh TTL.
type GuildService struct {
	calls  scheduler.Enqueuer
	guilds GuildStore
	ttl    time.Duration
	clock  clock.Clock
	sink   errsink.Sink
	logger zerolog.Logger
}

func NewGuildService(calls scheduler.Enqueuer, guilds GuildStore, cfg *config.Config, clk clock.Clock, sink errsink.Sink, logger zerolog.Logger) *GuildService {
	return &GuildService{
		calls:  calls,
		guilds: guilds,
		ttl:    cfg.GuildRefreshTTL,
		clock:  clk,
		sink:   sink,
		logger: logger,
	}
}

func (s *GuildService) Name() string {
	return "guild"
}

func (s *GuildService) Sync(ctx context.Context) error {
	cutoff := s.clock.Now().Add(-s.ttl)
	ids, err := s.guilds.DueForRefresh(ctx, cutoff)
	if err != nil {
		s.sink.Record(ctx, "guild.due_for_refresh", err)
		return fmt.Errorf("failed to list stale guilds: %w", err)
	}
	if len(ids) == 0 {
		return nil
	}

	pending := make([]scheduler.Pending[api.GuildResponse], len(ids))
	for i, id := range ids {
		pending[i] = scheduler.Request[api.GuildResponse](s.calls, api.GuildByID(id), scheduler.Low)
	}

	var g errgroup.Group
	var refreshed atomic.Int32
	for i, id := range ids {
		g.Go(func() error {
			resp, ok := pending[i].Await(ctx)
			if !ok {
				return nil
			}
			if storeGuild(ctx, s.guilds, id, resp, s.clock, s.sink, "guild") {
				refreshed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	logger.FromContext(ctx, s.logger).Info().Int("due", len(ids)).Int32("refreshed", refreshed.Load()).Msg("guilds refreshed")
	return nil
}
