package constants

import "time"

const (
	MinSchedulerDelay     = 200 * time.Millisecond
	DefaultSchedulerDelay = 200 * time.Millisecond
	DefaultLoopInterval   = 60 * time.Second
	SnapshotInterval      = 1 * time.Second
	GuildRefreshTTL       = 24 * time.Hour
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	SnapshotTimeout    = 5 * time.Second
)

const (
	DBMaxOpenConns    = 8
	DBMaxIdleConns    = 4
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)

// TierCount is the number of WvW tiers polled per region.
const TierCount = 5
