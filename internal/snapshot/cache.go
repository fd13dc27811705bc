package snapshot

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
	"wvw-dashboard/internal/constants"
	"wvw-dashboard/internal/errsink"
	"wvw-dashboard/internal/logger"

	"github.com/benbjohnson/clock"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"
)

// Published is an encoded snapshot ready to serve.
type Published struct {
	Data    *Data
	Body    []byte
	ETag    string
	BuiltAt time.Time
}

func Publish(data *Data, builtAt time.Time) (*Published, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	sum := sha256.Sum256(body)
	return &Published{
		Data:    data,
		Body:    body,
		ETag:    hex.EncodeToString(sum[:]),
		BuiltAt: builtAt,
	}, nil
}

// Cache holds the current snapshot. Readers get the whole previous or the
// whole next value, never a mix.
type Cache struct {
	mu      sync.RWMutex
	current *Published
}

func NewCache() *Cache {
	return &Cache{}
}

// Load returns nil until the first snapshot is stored.
func (c *Cache) Load() *Published {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}

func (c *Cache) Store(p *Published) {
	c.mu.Lock()
	c.current = p
	c.mu.Unlock()
}

type builder interface {
	Build(ctx context.Context) (*Data, error)
}

// Refresher rebuilds the snapshot and swaps it into the cache. It runs as a
// loop like the reconciliation services.
type Refresher struct {
	builder builder
	cache   *Cache
	clock   clock.Clock
	sink    errsink.Sink
	logger  zerolog.Logger
}

func NewRefresher(b *Builder, cache *Cache, clk clock.Clock, sink errsink.Sink, logger zerolog.Logger) *Refresher {
	return newRefresher(b, cache, clk, sink, logger)
}

func newRefresher(b builder, cache *Cache, clk clock.Clock, sink errsink.Sink, logger zerolog.Logger) *Refresher {
	return &Refresher{
		builder: b,
		cache:   cache,
		clock:   clk,
		sink:    sink,
		logger:  logger,
	}
}

func (r *Refresher) Name() string {
	return "snapshot"
}

// Sync builds and publishes one snapshot. On failure the previous snapshot
// stays in place.
func (r *Refresher) Sync(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, constants.SnapshotTimeout)
	defer cancel()

	data, err := r.builder.Build(ctx)
	if err != nil {
		r.sink.Record(ctx, "snapshot.build", err)
		return err
	}

	p, err := Publish(data, r.clock.Now())
	if err != nil {
		r.sink.Record(ctx, "snapshot.publish", err)
		return err
	}

	prev := r.cache.Load()
	r.cache.Store(p)
	if prev == nil || prev.ETag != p.ETag {
		logger.FromContext(ctx, r.logger).Debug().Str("etag", p.ETag).Int("tiers", len(data.Tiers)).Msg("snapshot changed")
	}
	return nil
}
