package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"sync"
	"wvw-dashboard/internal/config"
	"wvw-dashboard/internal/constants"
	"wvw-dashboard/internal/errsink"
	fxmodules "wvw-dashboard/internal/fx"
	"wvw-dashboard/internal/scheduler"
	"wvw-dashboard/internal/service"
	"wvw-dashboard/internal/snapshot"
	"wvw-dashboard/internal/telemetry"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runServer),
		fx.Invoke(runBackground),
	).Run()
}

func runServer(
	lc fx.Lifecycle,
	handler http.Handler,
	cfg *config.Config,
	db *sql.DB,
	logger zerolog.Logger,
) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           handler,
		ReadHeaderTimeout: constants.ExternalAPITimeout,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error().Err(err).Msg("server shutdown failed")
				return err
			}
			logger.Info().Msg("server stopped gracefully")
			return nil
		},
	})
}

type backgroundParams struct {
	fx.In

	Scheduler *scheduler.Scheduler
	Matches   *service.MatchService
	Teams     *service.TeamService
	Guilds    *service.GuildService
	Refresher *snapshot.Refresher
	Config    *config.Config
	Clock     clock.Clock
	Sink      errsink.Sink
	Metrics   *telemetry.LoopMetrics
	Logger    zerolog.Logger
}

// runBackground starts the scheduler, the reconciliation loops and the
// snapshot refresher, and stops them before the database is closed.
func runBackground(lc fx.Lifecycle, p backgroundParams) {
	loops := []*service.Loop{
		service.NewLoop(p.Matches, p.Config.MatchInterval, p.Clock, p.Sink, p.Metrics, p.Logger),
		service.NewLoop(p.Teams, p.Config.TeamInterval, p.Clock, p.Sink, p.Metrics, p.Logger),
		service.NewLoop(p.Guilds, p.Config.GuildInterval, p.Clock, p.Sink, p.Metrics, p.Logger),
		service.NewLoop(p.Refresher, p.Config.SnapshotInterval, p.Clock, p.Sink, p.Metrics, p.Logger),
	}

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			wg.Go(func() { p.Scheduler.Run(ctx) })
			for _, l := range loops {
				wg.Go(func() { l.Run(ctx) })
			}
			p.Logger.Info().Int("loops", len(loops)).Msg("background work started")
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()

			done := make(chan struct{})
			go func() {
				wg.Wait()
				close(done)
			}()

			select {
			case <-done:
				p.Logger.Info().Msg("background work stopped")
				return nil
			case <-stopCtx.Done():
				return fmt.Errorf("background work did not stop: %w", stopCtx.Err())
			}
		},
	})
}
