package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
	"wvw-dashboard/internal/api"
	"wvw-dashboard/internal/config"
	"wvw-dashboard/internal/errsink"

	"github.com/benbjohnson/clock"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testBase  = "http://gw2.test/v2"
	testDelay = 20 * time.Millisecond
)

type fakeTransport struct {
	mu      sync.Mutex
	bodies  map[string]string
	errs    map[string]error
	hold    map[string]chan struct{}
	calls   []string
	starts  []time.Time
	ends    []time.Time
	latency time.Duration
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		bodies: map[string]string{},
		errs:   map[string]error{},
		hold:   map[string]chan struct{}{},
	}
}

func (f *fakeTransport) Get(ctx context.Context, url string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.starts = append(f.starts, time.Now())
	hold := f.hold[url]
	f.mu.Unlock()

	if hold != nil {
		<-hold
	}
	if f.latency > 0 {
		time.Sleep(f.latency)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.ends = append(f.ends, time.Now())
	if err := f.errs[url]; err != nil {
		return nil, err
	}
	body, ok := f.bodies[url]
	if !ok {
		return nil, errors.New("not found")
	}
	return []byte(body), nil
}

func (f *fakeTransport) callOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestScheduler(t *testing.T, transport Transport, sink errsink.Sink) *Scheduler {
	t.Helper()
	cfg := &config.Config{APIBaseURL: testBase, SchedulerDelay: testDelay}
	return New(transport, cfg, clock.New(), sink, nil, zerolog.Nop())
}

func runScheduler(t *testing.T, s *Scheduler) context.CancelFunc {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return cancel
}

func TestPopOrderPriorityThenFIFO(t *testing.T) {
	s := newTestScheduler(t, newFakeTransport(), errsink.Nop)

	s.Enqueue(api.GuildByID("low-1"), Low, nil)
	s.Enqueue(api.GuildByID("normal-1"), Normal, nil)
	s.Enqueue(api.GuildByID("high-1"), High, nil)
	s.Enqueue(api.GuildByID("low-2"), Low, nil)
	s.Enqueue(api.GuildByID("high-2"), High, nil)
	s.Enqueue(api.GuildByID("normal-2"), Normal, nil)

	var got []string
	for {
		call, ok := s.pop()
		if !ok {
			break
		}
		got = append(got, call.endpoint.Arg)
	}

	assert.Equal(t, []string{"high-1", "high-2", "normal-1", "normal-2", "low-1", "low-2"}, got)
}

func TestCallOrderingUsesEnqueueTime(t *testing.T) {
	t0 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	older := &scheduledCall{priority: Normal, enqueuedAt: t0, seq: 9}
	newer := &scheduledCall{priority: Normal, enqueuedAt: t0.Add(time.Millisecond), seq: 1}
	urgent := &scheduledCall{priority: High, enqueuedAt: t0.Add(time.Hour), seq: 10}

	assert.True(t, older.before(newer))
	assert.False(t, newer.before(older))
	assert.True(t, urgent.before(older))

	tieA := &scheduledCall{priority: Low, enqueuedAt: t0, seq: 1}
	tieB := &scheduledCall{priority: Low, enqueuedAt: t0, seq: 2}
	assert.True(t, tieA.before(tieB))
	assert.False(t, tieB.before(tieA))
}

func TestPriorityString(t *testing.T) {
	assert.Equal(t, "high", High.String())
	assert.Equal(t, "normal", Normal.String())
	assert.Equal(t, "low", Low.String())
	assert.True(t, High > Normal && Normal > Low)
}

func TestFetchDecodes(t *testing.T) {
	transport := newFakeTransport()
	transport.bodies[api.GuildByID("G1").URL(testBase)] = `{"id":"G1","name":"Alpha","tag":"AL"}`

	s := newTestScheduler(t, transport, errsink.Nop)
	runScheduler(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	g, ok := Fetch[api.GuildResponse](ctx, s, api.GuildByID("G1"), High)
	require.True(t, ok)
	assert.Equal(t, "Alpha", g.Name)
}

func TestFailuresResolveToNoValue(t *testing.T) {
	transport := newFakeTransport()
	transport.errs[api.GuildByID("down").URL(testBase)] = errors.New("connection refused")
	transport.bodies[api.GuildByID("garbled").URL(testBase)] = `{"id":`

	sink := &errsink.Memory{}
	s := newTestScheduler(t, transport, sink)
	runScheduler(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	down := Request[api.GuildResponse](s, api.GuildByID("down"), Normal)
	garbled := Request[api.GuildResponse](s, api.GuildByID("garbled"), Normal)

	_, ok := down.Await(ctx)
	assert.False(t, ok)
	_, ok = garbled.Await(ctx)
	assert.False(t, ok)

	entries := sink.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "scheduler.guild_by_id", entries[0].Op)
}

func TestPriorityOrderEndToEnd(t *testing.T) {
	transport := newFakeTransport()
	for _, id := range []string{"low", "normal", "high"} {
		transport.bodies[api.GuildByID(id).URL(testBase)] = `{}`
	}

	s := newTestScheduler(t, transport, errsink.Nop)
	low := s.Enqueue(api.GuildByID("low"), Low, nil)
	normal := s.Enqueue(api.GuildByID("normal"), Normal, nil)
	high := s.Enqueue(api.GuildByID("high"), High, nil)

	runScheduler(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, f := range []*Future{low, normal, high} {
		_, ok := f.Await(ctx)
		require.True(t, ok)
	}

	assert.Equal(t, []string{
		api.GuildByID("high").URL(testBase),
		api.GuildByID("normal").URL(testBase),
		api.GuildByID("low").URL(testBase),
	}, transport.callOrder())
}

func TestCallsAreSpacedByDelay(t *testing.T) {
	transport := newFakeTransport()
	transport.latency = 5 * time.Millisecond

	s := newTestScheduler(t, transport, errsink.Nop)

	var futures []*Future
	for _, id := range []string{"a", "b", "c", "d"} {
		transport.bodies[api.GuildByID(id).URL(testBase)] = `{}`
		futures = append(futures, s.Enqueue(api.GuildByID(id), Normal, nil))
	}

	runScheduler(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	for _, f := range futures {
		_, ok := f.Await(ctx)
		require.True(t, ok)
	}

	transport.mu.Lock()
	defer transport.mu.Unlock()
	require.Len(t, transport.starts, 4)
	for i := 1; i < len(transport.starts); i++ {
		gap := transport.starts[i].Sub(transport.ends[i-1])
		assert.GreaterOrEqual(t, gap, testDelay, "gap before call %d", i)
	}
}

func TestSlowCallKeepsQueueIntact(t *testing.T) {
	transport := newFakeTransport()
	slow := api.GuildByID("slow").URL(testBase)
	release := make(chan struct{})
	transport.hold[slow] = release
	transport.bodies[slow] = `{}`
	transport.bodies[api.GuildByID("next").URL(testBase)] = `{}`

	s := newTestScheduler(t, transport, errsink.Nop)
	first := s.Enqueue(api.GuildByID("slow"), High, nil)
	second := s.Enqueue(api.GuildByID("next"), High, nil)

	runScheduler(t, s)

	require.Eventually(t, func() bool { return len(transport.callOrder()) == 1 }, time.Second, 5*time.Millisecond)

	// several ticks pass while the first call is held
	time.Sleep(5 * testDelay)
	assert.Equal(t, 1, s.Len())
	assert.Len(t, transport.callOrder(), 1)

	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, ok := first.Await(ctx)
	assert.True(t, ok)
	_, ok = second.Await(ctx)
	assert.True(t, ok)
	assert.Equal(t, 0, s.Len())
}

func TestHighPriorityOvertakesBacklogWithLatency(t *testing.T) {
	transport := newFakeTransport()
	transport.latency = testDelay

	s := newTestScheduler(t, transport, errsink.Nop)

	var futures []*Future
	for i := 0; i < 12; i++ {
		endpoint := api.GuildByID(fmt.Sprintf("low-%02d", i))
		transport.bodies[endpoint.URL(testBase)] = `{}`
		futures = append(futures, s.Enqueue(endpoint, Low, nil))
	}
	urgent := api.GuildByID("urgent")
	transport.bodies[urgent.URL(testBase)] = `{}`

	runScheduler(t, s)

	require.Eventually(t, func() bool { return len(transport.callOrder()) >= 3 }, 2*time.Second, time.Millisecond)
	started := len(transport.callOrder())
	futures = append(futures, s.Enqueue(urgent, High, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, f := range futures {
		_, ok := f.Await(ctx)
		require.True(t, ok)
	}

	order := transport.callOrder()
	require.Len(t, order, 13)
	position := -1
	for i, url := range order {
		if url == urgent.URL(testBase) {
			position = i
		}
	}
	// at most the call in flight and one popped during the enqueue run first
	assert.LessOrEqual(t, position, started+1)
	assert.Less(t, position, len(order)-1)
}

func TestClearResolvesQueuedCalls(t *testing.T) {
	s := newTestScheduler(t, newFakeTransport(), errsink.Nop)

	a := s.Enqueue(api.MatchByTier("2", 1), High, nil)
	b := s.Enqueue(api.MatchByTier("2", 2), High, nil)

	assert.Equal(t, 2, s.Clear())
	assert.Equal(t, 0, s.Len())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	_, ok := a.Await(ctx)
	assert.False(t, ok)
	_, ok = b.Await(ctx)
	assert.False(t, ok)
}

func TestRunStopsOnCancel(t *testing.T) {
	s := newTestScheduler(t, newFakeTransport(), errsink.Nop)
	cancel := runScheduler(t, s)
	cancel()

	f := s.Enqueue(api.GuildByID("late"), Low, nil)
	require.Eventually(t, func() bool {
		select {
		case <-f.Done():
			return true
		default:
			return false
		}
	}, time.Second, 5*time.Millisecond)
}

func TestAwaitHonoursContext(t *testing.T) {
	s := newTestScheduler(t, newFakeTransport(), errsink.Nop)
	f := s.Enqueue(api.GuildByID("never"), Low, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, ok := f.Await(ctx)
	assert.False(t, ok)
}
