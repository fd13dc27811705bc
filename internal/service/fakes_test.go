package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"
	"wvw-dashboard/internal/api"
	"wvw-dashboard/internal/config"
	"wvw-dashboard/internal/database"
	"wvw-dashboard/internal/db"
	"wvw-dashboard/internal/domain"
	"wvw-dashboard/internal/repository"
	"wvw-dashboard/internal/scheduler"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type enqueued struct {
	endpoint api.Endpoint
	priority scheduler.Priority
}

// fakeCalls answers every call synchronously from canned bodies.
type fakeCalls struct {
	mu     sync.Mutex
	bodies map[api.Endpoint]string
	calls  []enqueued
}

func newFakeCalls() *fakeCalls {
	return &fakeCalls{bodies: map[api.Endpoint]string{}}
}

func (f *fakeCalls) Enqueue(endpoint api.Endpoint, priority scheduler.Priority, decode scheduler.DecodeFunc) *scheduler.Future {
	f.mu.Lock()
	f.calls = append(f.calls, enqueued{endpoint: endpoint, priority: priority})
	body, ok := f.bodies[endpoint]
	f.mu.Unlock()

	if !ok {
		return scheduler.Completed(nil, false)
	}
	value, err := decode([]byte(body))
	if err != nil {
		return scheduler.Completed(nil, false)
	}
	return scheduler.Completed(value, true)
}

func (f *fakeCalls) recorded() []enqueued {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]enqueued(nil), f.calls...)
}

func (f *fakeCalls) ofKind(kind api.EndpointKind) []enqueued {
	var out []enqueued
	for _, c := range f.recorded() {
		if c.endpoint.Kind == kind {
			out = append(out, c)
		}
	}
	return out
}

type mockMatchStore struct {
	mock.Mock
}

func (m *mockMatchStore) Upsert(ctx context.Context, match *domain.Match) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

type mockGuildStore struct {
	mock.Mock
}

func (m *mockGuildStore) Exists(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockGuildStore) Upsert(ctx context.Context, guild domain.Guild) error {
	args := m.Called(ctx, guild)
	return args.Error(0)
}

func (m *mockGuildStore) UpsertLastUpdated(ctx context.Context, id string, ts time.Time) error {
	args := m.Called(ctx, id, ts)
	return args.Error(0)
}

func (m *mockGuildStore) DueForRefresh(ctx context.Context, cutoff time.Time) ([]string, error) {
	args := m.Called(ctx, cutoff)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func testConfig() *config.Config {
	return &config.Config{
		Region:            "eu",
		MatchRegionPrefix: "2",
		OwnGuildName:      "Quality Ôver Quantity",
		GuildRefreshTTL:   24 * time.Hour,
	}
}

type testStores struct {
	guilds      *repository.GuildRepository
	memberships *repository.MembershipRepository
}

func newTestStores(t *testing.T) testStores {
	t.Helper()
	sqlDB, err := database.New(&config.Config{DBPath: filepath.Join(t.TempDir(), "test.db")}, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	q := db.New(sqlDB)
	return testStores{
		guilds:      repository.NewGuildRepository(sqlDB, q, zerolog.Nop()),
		memberships: repository.NewMembershipRepository(sqlDB, q, zerolog.Nop()),
	}
}
