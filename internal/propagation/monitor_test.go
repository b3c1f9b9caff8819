package propagation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/faanross/m365dns/internal/dnsquery"
	"github.com/faanross/m365dns/internal/records"
	"github.com/stretchr/testify/require"
)

// scriptedResolver replays one value per call; the last value repeats.
// An empty string scripts a failed or empty query.
type scriptedResolver struct {
	mu     sync.Mutex
	values []string
	calls  int
}

func (r *scriptedResolver) Lookup(_ context.Context, name string, rtype records.RecordType) ([]dnsquery.Answer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx := r.calls
	r.calls++
	if idx >= len(r.values) {
		idx = len(r.values) - 1
	}
	value := r.values[idx]
	if value == "" {
		return nil, nil
	}

	return []dnsquery.Answer{{
		Name:  name,
		Type:  rtype,
		Value: records.CNAMEValue{Target: value},
	}}, nil
}

func testConfig(expected string, targets []Target) Config {
	return Config{
		Name:     "www.contoso.com",
		Type:     records.TypeCNAME,
		Expected: expected,
		Targets:  targets,
		Interval: time.Millisecond,
	}
}

func TestMonitorPartialPropagation(t *testing.T) {
	// Two of three resolvers already carry the expected value; the third
	// serves a stale one forever
	targets := []Target{
		{ID: "a", Resolver: &scriptedResolver{values: []string{"ns.example.com"}}},
		{ID: "b", Resolver: &scriptedResolver{values: []string{"ns.example.com"}}},
		{ID: "c", Resolver: &scriptedResolver{values: []string{"old.example.com"}}},
	}

	cfg := testConfig("ns.example.com", targets)
	cfg.MaxDuration = 20 * time.Millisecond

	var ticks []Snapshot
	cfg.OnTick = func(snap Snapshot) { ticks = append(ticks, snap) }

	monitor, err := New(cfg)
	require.NoError(t, err)

	final := monitor.Run(context.Background())

	require.NotEmpty(t, ticks)
	require.Equal(t, 67, ticks[0].Percent)
	require.Equal(t, StatePolling, ticks[0].State)
	require.Equal(t, StateTimedOut, final.State)
	require.Equal(t, 67, final.Percent)
}

func TestMonitorConvergesWhenLastResolverCatchesUp(t *testing.T) {
	targets := []Target{
		{ID: "a", Resolver: &scriptedResolver{values: []string{"ns.example.com"}}},
		{ID: "b", Resolver: &scriptedResolver{values: []string{"ns.example.com"}}},
		{ID: "c", Resolver: &scriptedResolver{values: []string{"old.example.com", "ns.example.com"}}},
	}

	monitor, err := New(testConfig("ns.example.com", targets))
	require.NoError(t, err)

	final := monitor.Run(context.Background())

	require.Equal(t, StateConverged, final.State)
	require.Equal(t, 100, final.Percent)
	require.Equal(t, 2, final.Tick)
	require.Equal(t, 2, final.CheckCount)

	// No further queries after convergence: each resolver saw exactly
	// two ticks' worth of lookups
	for _, target := range targets {
		require.Equal(t, 2, target.Resolver.(*scriptedResolver).calls)
	}
}

func TestMonitorEmitsChangeEvents(t *testing.T) {
	targets := []Target{
		{ID: "a", Resolver: &scriptedResolver{values: []string{"old.example.com", "ns.example.com"}}},
	}

	monitor, err := New(testConfig("ns.example.com", targets))
	require.NoError(t, err)

	final := monitor.Run(context.Background())

	require.Equal(t, StateConverged, final.State)
	require.Equal(t, 1, final.ChangeCount)
	require.Len(t, final.Changes, 1)
	require.Equal(t, "a", final.Changes[0].Resolver)
	require.Equal(t, "old.example.com", final.Changes[0].Previous)
	require.Equal(t, "ns.example.com", final.Changes[0].Current)
	require.Equal(t, 2, final.Changes[0].Tick)
}

func TestMonitorNoChangeEventUntilFirstObservation(t *testing.T) {
	// First tick fails; a change fires only between two observed values
	targets := []Target{
		{ID: "a", Resolver: &scriptedResolver{values: []string{"", "ns.example.com"}}},
	}

	monitor, err := New(testConfig("ns.example.com", targets))
	require.NoError(t, err)

	final := monitor.Run(context.Background())

	require.Equal(t, StateConverged, final.State)
	require.Equal(t, 0, final.ChangeCount)
}

func TestMonitorWithoutExpectedNeverConverges(t *testing.T) {
	targets := []Target{
		{ID: "a", Resolver: &scriptedResolver{values: []string{"ns.example.com"}}},
	}

	cfg := testConfig("", targets)
	cfg.MaxDuration = 15 * time.Millisecond

	monitor, err := New(cfg)
	require.NoError(t, err)

	final := monitor.Run(context.Background())
	require.Equal(t, StateTimedOut, final.State)
	require.Greater(t, final.CheckCount, 0)
}

func TestMonitorCancelledBeforeFirstTick(t *testing.T) {
	target := &scriptedResolver{values: []string{"ns.example.com"}}
	monitor, err := New(testConfig("ns.example.com", []Target{{ID: "a", Resolver: target}}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	final := monitor.Run(ctx)

	require.Equal(t, StateCancelled, final.State)
	require.Equal(t, 0, final.CheckCount)
	require.Equal(t, 0, target.calls)
}

func TestMonitorCancelledBetweenTicks(t *testing.T) {
	// Stale forever so the monitor keeps polling until cancelled
	target := &scriptedResolver{values: []string{"old.example.com"}}

	cfg := testConfig("ns.example.com", []Target{{ID: "a", Resolver: target}})
	cfg.Interval = 50 * time.Millisecond

	monitor, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	final := monitor.Run(ctx)

	require.Equal(t, StateCancelled, final.State)
	require.Equal(t, 1, final.CheckCount)
	require.Equal(t, "old.example.com", final.ResolverValues["a"])
}

// slowResolver answers after a delay, but only if its context is still
// alive when the delay elapses
type slowResolver struct {
	delay time.Duration
	value string
}

func (r *slowResolver) Lookup(ctx context.Context, name string, rtype records.RecordType) ([]dnsquery.Answer, error) {
	time.Sleep(r.delay)
	if ctx.Err() != nil {
		return nil, nil
	}
	return []dnsquery.Answer{{
		Name:  name,
		Type:  rtype,
		Value: records.CNAMEValue{Target: r.value},
	}}, nil
}

func TestMonitorCancelMidTickKeepsInFlightObservations(t *testing.T) {
	// Cancel fires while the only resolver's query is still in flight;
	// the query must finish and its observation must land in the snapshot
	target := &slowResolver{delay: 50 * time.Millisecond, value: "ns.example.com"}

	cfg := testConfig("", []Target{{ID: "a", Resolver: target}})
	cfg.Interval = time.Second

	monitor, err := New(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	final := monitor.Run(ctx)

	require.Equal(t, StateCancelled, final.State)
	require.Equal(t, 1, final.CheckCount)
	require.Equal(t, "ns.example.com", final.ResolverValues["a"])
}

func TestMonitorResolverFailureDoesNotAbortTick(t *testing.T) {
	targets := []Target{
		{ID: "a", Resolver: &scriptedResolver{values: []string{"ns.example.com"}}},
		{ID: "b", Resolver: &scriptedResolver{values: []string{""}}}, // always fails
	}

	cfg := testConfig("ns.example.com", targets)
	cfg.MaxDuration = 15 * time.Millisecond

	var first Snapshot
	var once sync.Once
	cfg.OnTick = func(snap Snapshot) { once.Do(func() { first = snap }) }

	monitor, err := New(cfg)
	require.NoError(t, err)

	final := monitor.Run(context.Background())

	require.Equal(t, StateTimedOut, final.State)
	require.Equal(t, 50, first.Percent)
	require.Equal(t, "ns.example.com", final.ResolverValues["a"])
	_, seen := final.ResolverValues["b"]
	require.False(t, seen)
}

func TestMonitorExpectedValueNormalized(t *testing.T) {
	targets := []Target{
		{ID: "a", Resolver: &scriptedResolver{values: []string{"ns.example.com"}}},
	}

	// Trailing dot and case differences must not block convergence
	monitor, err := New(testConfig("NS.Example.COM.", targets))
	require.NoError(t, err)

	final := monitor.Run(context.Background())
	require.Equal(t, StateConverged, final.State)
}

func TestMonitorConfigValidation(t *testing.T) {
	valid := testConfig("", []Target{{ID: "a", Resolver: &scriptedResolver{values: []string{""}}}})

	broken := valid
	broken.Name = ""
	_, err := New(broken)
	require.Error(t, err)

	broken = valid
	broken.Type = "NS"
	_, err = New(broken)
	require.Error(t, err)

	broken = valid
	broken.Targets = nil
	_, err = New(broken)
	require.Error(t, err)

	broken = valid
	broken.Interval = 0
	_, err = New(broken)
	require.Error(t, err)
}
