package fx

import (
	"database/sql"
	"wvw-dashboard/internal/api"
	"wvw-dashboard/internal/config"
	"wvw-dashboard/internal/database"
	"wvw-dashboard/internal/db"
	"wvw-dashboard/internal/errsink"
	"wvw-dashboard/internal/logger"
	"wvw-dashboard/internal/repository"
	"wvw-dashboard/internal/scheduler"
	"wvw-dashboard/internal/server"
	"wvw-dashboard/internal/service"
	"wvw-dashboard/internal/snapshot"
	"wvw-dashboard/internal/telemetry"

	"github.com/benbjohnson/clock"
	"go.uber.org/fx"
)

func ProvideQueries(sqlDB *sql.DB) *db.Queries {
	return db.New(sqlDB)
}

func ProvideClock() clock.Clock {
	return clock.New()
}

func ProvideTransport(c *api.Client) scheduler.Transport { return c }

func ProvideEnqueuer(s *scheduler.Scheduler) scheduler.Enqueuer { return s }

func ProvideMatchStore(r *repository.MatchRepository) service.MatchStore { return r }

func ProvideGuildStore(r *repository.GuildRepository) service.GuildStore { return r }

func ProvideMembershipStore(r *repository.MembershipRepository) service.MembershipStore { return r }

func ProvideMatchReader(r *repository.MatchRepository) snapshot.MatchReader { return r }

func ProvideGuildReader(r *repository.GuildRepository) snapshot.GuildReader { return r }

func ProvideTeamLookup(r *repository.MembershipRepository) snapshot.TeamLookup { return r }

var Module = fx.Options(
	logger.Module,
	config.Module,
	fx.Provide(ProvideClock),
	errsink.Module,
	telemetry.Module,
	fx.Provide(database.New),
	fx.Provide(ProvideQueries),
	// repos
	fx.Provide(repository.NewGuildRepository),
	fx.Provide(repository.NewMatchRepository),
	fx.Provide(repository.NewMembershipRepository),
	fx.Provide(
		ProvideMatchStore,
		ProvideGuildStore,
		ProvideMembershipStore,
		ProvideMatchReader,
		ProvideGuildReader,
		ProvideTeamLookup,
	),
	// api client + scheduler
	fx.Provide(api.NewClient),
	fx.Provide(ProvideTransport),
	fx.Provide(scheduler.New),
	fx.Provide(ProvideEnqueuer),
	// svc
	fx.Provide(service.NewMatchService),
	fx.Provide(service.NewTeamService),
	fx.Provide(service.NewGuildService),
	// snapshot
	fx.Provide(snapshot.LoadImportantGuilds),
	fx.Provide(snapshot.NewBuilder),
	fx.Provide(snapshot.NewCache),
	fx.Provide(snapshot.NewRefresher),
	// server
	fx.Provide(server.NewDashboardServer),
	fx.Provide(server.NewHandler),
)
