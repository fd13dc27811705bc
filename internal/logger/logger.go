package logger

import (
	"context"
	"os"
	"wvw-dashboard/internal/config"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func New() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	logger := zerolog.New(os.Stdout).
		With().
		Timestamp().
		Caller().
		Logger()

	logger = logger.Level(zerolog.DebugLevel)

	return logger
}

// ParseLevel maps a configured level name to a zerolog level; unknown or
// empty names give info.
func ParseLevel(level string) (zerolog.Level, bool) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		return zerolog.InfoLevel, false
	}
	return lvl, true
}

// ApplyLevel sets the process wide minimum level from LOG_LEVEL.
func ApplyLevel(cfg *config.Config, logger zerolog.Logger) {
	lvl, ok := ParseLevel(cfg.LogLevel)
	if !ok {
		logger.Warn().Str("log_level", cfg.LogLevel).Msg("unknown log level, using info")
	}
	zerolog.SetGlobalLevel(lvl)
}

// FromContext returns the logger attached to ctx, or fallback when ctx
// carries none.
func FromContext(ctx context.Context, fallback zerolog.Logger) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &fallback
}

var Module = fx.Options(
	fx.Provide(New),
	fx.Invoke(ApplyLevel),
)
