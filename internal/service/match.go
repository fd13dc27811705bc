package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"wvw-dashboard/internal/api"
	"wvw-dashboard/internal/config"
	"wvw-dashboard/internal/constants"
	"wvw-dashboard/internal/errsink"
	"wvw-dashboard/internal/logger"
	"wvw-dashboard/internal/scheduler"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// MatchService keeps one match row per tier in sync with the API.
type MatchService struct {
	calls        scheduler.Enqueuer
	matches      MatchStore
	regionPrefix string
	sink         errsink.Sink
	logger       zerolog.Logger
}

func NewMatchService(calls scheduler.Enqueuer, matches MatchStore, cfg *config.Config, sink errsink.Sink, logger zerolog.Logger) *MatchService {
	return &MatchService{
		calls:        calls,
		matches:      matches,
		regionPrefix: cfg.MatchRegionPrefix,
		sink:         sink,
		logger:       logger,
	}
}

func (s *MatchService) Name() string {
	return "match"
}

func (s *MatchService) Sync(ctx context.Context) error {
	var g errgroup.Group
	var updated atomic.Int32

	for tier := 1; tier <= constants.TierCount; tier++ {
		endpoint := api.MatchByTier(s.regionPrefix, tier)
		pending := scheduler.Request[api.MatchResponse](s.calls, endpoint, scheduler.High)

		g.Go(func() error {
			resp, ok := pending.Await(ctx)
			if !ok {
				logger.FromContext(ctx, s.logger).Warn().Str("endpoint", endpoint.String()).Msg("match unavailable")
				return nil
			}

			match := resp.ToDomain()
			if match.ID == "" {
				match.ID = endpoint.Arg
			}
			if err := s.matches.Upsert(ctx, &match); err != nil {
				s.sink.Record(ctx, "match.upsert", err)
				return nil
			}
			updated.Add(1)
			return nil
		})
	}
	_ = g.Wait()

	n := int(updated.Load())
	logger.FromContext(ctx, s.logger).Info().Int("updated", n).Int("tiers", constants.TierCount).Msg("matches synced")
	if n == 0 {
		return fmt.Errorf("no match updated")
	}
	return nil
}
