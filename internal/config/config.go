package config

import (
	"fmt"
	"os"
	"time"
	"wvw-dashboard/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

type Config struct {
	APIBaseURL          string
	Region              string
	MatchRegionPrefix   string
	DBPath              string
	ServerPort          string
	LogLevel            string
	SchedulerDelay      time.Duration
	MatchInterval       time.Duration
	TeamInterval        time.Duration
	GuildInterval       time.Duration
	SnapshotInterval    time.Duration
	GuildRefreshTTL     time.Duration
	OwnGuildName        string
	ImportantGuildsPath string
	ErrorLogPath        string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg := &Config{
		APIBaseURL:          getEnv("GW2_API_BASE", "https://api.guildwars2.com/v2"),
		Region:              getEnv("WVW_REGION", "eu"),
		MatchRegionPrefix:   getEnv("MATCH_REGION_PREFIX", "2"),
		DBPath:              getEnv("DB_PATH", "wvw.db"),
		ServerPort:          getEnv("SERVER_PORT", "8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		OwnGuildName:        getEnv("OWN_GUILD_NAME", "Quality Ôver Quantity"),
		ImportantGuildsPath: getEnv("IMPORTANT_GUILDS_PATH", "guilds.txt"),
		ErrorLogPath:        getEnv("ERROR_LOG_PATH", "error.log"),
	}

	durations := []struct {
		key      string
		fallback time.Duration
		dst      *time.Duration
	}{
		{"SCHEDULER_DELAY", constants.DefaultSchedulerDelay, &cfg.SchedulerDelay},
		{"MATCH_INTERVAL", constants.DefaultLoopInterval, &cfg.MatchInterval},
		{"TEAM_INTERVAL", constants.DefaultLoopInterval, &cfg.TeamInterval},
		{"GUILD_INTERVAL", constants.DefaultLoopInterval, &cfg.GuildInterval},
		{"SNAPSHOT_INTERVAL", constants.SnapshotInterval, &cfg.SnapshotInterval},
		{"GUILD_REFRESH_TTL", constants.GuildRefreshTTL, &cfg.GuildRefreshTTL},
	}
	for _, d := range durations {
		v, err := getDuration(d.key, d.fallback)
		if err != nil {
			return nil, err
		}
		*d.dst = v
	}

	if cfg.SchedulerDelay < constants.MinSchedulerDelay {
		return nil, fmt.Errorf("SCHEDULER_DELAY must be at least %s, got %s", constants.MinSchedulerDelay, cfg.SchedulerDelay)
	}
	if cfg.APIBaseURL == "" {
		return nil, fmt.Errorf("GW2_API_BASE is required")
	}

	logger.Info().
		Str("api_base", cfg.APIBaseURL).
		Str("region", cfg.Region).
		Str("db_path", cfg.DBPath).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel).
		Dur("scheduler_delay", cfg.SchedulerDelay).
		Dur("match_interval", cfg.MatchInterval).
		Dur("team_interval", cfg.TeamInterval).
		Dur("guild_interval", cfg.GuildInterval).
		Dur("snapshot_interval", cfg.SnapshotInterval).
		Str("own_guild", cfg.OwnGuildName).
		Msg("configuration loaded")

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return d, nil
}

var Module = fx.Provide(Load)
