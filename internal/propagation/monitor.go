package propagation

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/faanross/m365dns/internal/dnsquery"
	"github.com/faanross/m365dns/internal/records"
)

// State is the monitor's lifecycle state. Converged, TimedOut and
// Cancelled are terminal: once entered, no further queries are issued.
type State string

const (
	StatePolling   State = "Polling"
	StateConverged State = "Converged"
	StateTimedOut  State = "TimedOut"
	StateCancelled State = "Cancelled"
)

// Target is one resolver the monitor polls, keyed by a caller-chosen ID
// (typically the server address)
type Target struct {
	ID       string
	Resolver dnsquery.Resolver
}

// ChangeEvent records one observed value flip at a single resolver.
// Events fire only when both the previous and the new value were
// successfully observed.
type ChangeEvent struct {
	Resolver string
	Previous string
	Current  string
	Tick     int
	At       time.Time
}

// Snapshot is the monitor's externally visible state, reported after each
// tick and returned unchanged once a terminal state is reached
type Snapshot struct {
	State          State
	Tick           int
	ResolverValues map[string]string // absent key = no successful query yet
	CheckCount     int
	ChangeCount    int
	Percent        int // resolvers matching the expected value, as a percentage
	StartedAt      time.Time
	Elapsed        time.Duration
	Changes        []ChangeEvent
}

// Config holds everything one monitoring run needs; the monitor reads no
// ambient state
type Config struct {
	Name     string
	Type     records.RecordType
	Expected string // optional; empty means the monitor never self-converges
	Targets  []Target
	Interval time.Duration

	// MaxDuration bounds the whole run; zero means unbounded (the run
	// then ends only on convergence or cancellation)
	MaxDuration time.Duration

	// OnTick, when set, receives a snapshot after every completed tick
	OnTick func(Snapshot)
}

// Monitor polls a (name, type) pair across a set of resolvers until the
// observed values converge on an expected value, the configured duration
// elapses, or the caller cancels
type Monitor struct {
	cfg Config
}

// New validates the configuration and creates a monitor
func New(cfg Config) (*Monitor, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("monitor: name cannot be empty")
	}
	if _, ok := records.QTypeMap[cfg.Type]; !ok {
		return nil, fmt.Errorf("monitor: unsupported record type: %s", cfg.Type)
	}
	if len(cfg.Targets) == 0 {
		return nil, fmt.Errorf("monitor: at least one resolver target is required")
	}
	if cfg.Interval <= 0 {
		return nil, fmt.Errorf("monitor: interval must be positive")
	}
	return &Monitor{cfg: cfg}, nil
}

// Run executes the tick loop until a terminal state is reached and
// returns the final snapshot. Cancellation is cooperative: a cancel
// observed between ticks stops before any further queries; a cancel
// arriving mid-tick lets the in-flight per-resolver queries finish.
func (m *Monitor) Run(ctx context.Context) Snapshot {
	snap := Snapshot{
		State:          StatePolling,
		ResolverValues: make(map[string]string, len(m.cfg.Targets)),
		StartedAt:      time.Now(),
	}
	expected := normalizeValue(m.cfg.Expected)

	for {
		// Check if context is cancelled before starting a new tick
		select {
		case <-ctx.Done():
			return m.finish(&snap, StateCancelled)
		default:
		}

		if m.expired(&snap) {
			return m.finish(&snap, StateTimedOut)
		}

		m.tick(ctx, &snap)

		if expected != "" && snap.Percent == 100 {
			return m.finish(&snap, StateConverged)
		}
		if m.expired(&snap) {
			return m.finish(&snap, StateTimedOut)
		}

		// Sleep with cancellation support
		select {
		case <-time.After(m.cfg.Interval):
			// Continue to next tick
		case <-ctx.Done():
			return m.finish(&snap, StateCancelled)
		}
	}
}

// tick queries every target concurrently, then folds the observations
// into the snapshot sequentially
func (m *Monitor) tick(ctx context.Context, snap *Snapshot) {
	snap.Tick++
	snap.CheckCount++

	type observation struct {
		id    string
		value string
		ok    bool
	}

	observations := make([]observation, len(m.cfg.Targets))

	// In-flight queries are bounded by the resolver timeouts, not the
	// run context; a cancel arriving mid-tick lets them finish and their
	// observations count
	lookupCtx := context.WithoutCancel(ctx)

	// Fan out so tick latency is bounded by the slowest resolver, not
	// the sum; a failure on one resolver does not abort the others
	var wg sync.WaitGroup
	for i, target := range m.cfg.Targets {
		wg.Add(1)
		go func(i int, target Target) {
			defer wg.Done()
			answers, err := target.Resolver.Lookup(lookupCtx, m.cfg.Name, m.cfg.Type)
			if err != nil || len(answers) == 0 {
				observations[i] = observation{id: target.ID}
				return
			}
			observations[i] = observation{id: target.ID, value: renderAnswers(answers), ok: true}
		}(i, target)
	}
	wg.Wait()

	now := time.Now()
	expected := normalizeValue(m.cfg.Expected)
	var matches int

	for _, obs := range observations {
		if !obs.ok {
			continue
		}
		previous, seen := snap.ResolverValues[obs.id]
		if seen && previous != obs.value {
			snap.ChangeCount++
			snap.Changes = append(snap.Changes, ChangeEvent{
				Resolver: obs.id,
				Previous: previous,
				Current:  obs.value,
				Tick:     snap.Tick,
				At:       now,
			})
		}
		snap.ResolverValues[obs.id] = obs.value
	}

	if expected != "" {
		for _, value := range snap.ResolverValues {
			if normalizeValue(value) == expected {
				matches++
			}
		}
		snap.Percent = int(math.Round(100 * float64(matches) / float64(len(m.cfg.Targets))))
	}

	snap.Elapsed = time.Since(snap.StartedAt)

	if m.cfg.OnTick != nil {
		m.cfg.OnTick(*snap)
	}
}

// expired reports whether the configured maximum duration has elapsed
func (m *Monitor) expired(snap *Snapshot) bool {
	return m.cfg.MaxDuration > 0 && time.Since(snap.StartedAt) >= m.cfg.MaxDuration
}

// finish seals the snapshot in a terminal state; the per-resolver value
// map is reported exactly as last observed
func (m *Monitor) finish(snap *Snapshot, state State) Snapshot {
	snap.State = state
	snap.Elapsed = time.Since(snap.StartedAt)
	return *snap
}

// renderAnswers folds a resolver's answer set into one stable string so
// values from different resolvers compare reliably
func renderAnswers(answers []dnsquery.Answer) string {
	rendered := make([]string, 0, len(answers))
	for _, ans := range answers {
		rendered = append(rendered, ans.Value.Render())
	}
	sort.Strings(rendered)
	return strings.Join(rendered, "; ")
}

// normalizeValue canonicalizes a value for convergence comparison
func normalizeValue(v string) string {
	return records.CanonicalHost(v)
}
