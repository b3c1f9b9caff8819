package cli

import (
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/faanross/m365dns/internal/dnsquery"
	"github.com/faanross/m365dns/internal/propagation"
	"github.com/faanross/m365dns/internal/records"
	"github.com/spf13/cobra"
)

var (
	watchType     string
	watchExpect   string
	watchInterval time.Duration
	watchTimeout  time.Duration
	watchServers  []string
)

var watchCmd = &cobra.Command{
	Use:   "watch <fqdn>",
	Short: "Watch a DNS record propagate across public resolvers",
	Long: `watch polls a (name, type) pair on every configured resolver until the
observed values converge on the expected value, the timeout elapses, or
the run is interrupted. Without --expect the watch runs until stopped.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVarP(&watchType, "type", "t", "A", "Record type to watch")
	watchCmd.Flags().StringVarP(&watchExpect, "expect", "e", "", "Value the record should converge to")
	watchCmd.Flags().DurationVarP(&watchInterval, "interval", "i", 0, "Time between polling ticks")
	watchCmd.Flags().DurationVar(&watchTimeout, "timeout", 0, "Give up after this long (0 = no limit)")
	watchCmd.Flags().StringSliceVarP(&watchServers, "resolver", "r", nil, "Resolver to poll (repeatable)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	name := args[0]

	rtype, err := records.ParseRecordType(watchType)
	if err != nil {
		return err
	}

	servers := watchServers
	if len(servers) == 0 {
		servers = cfg.Propagation.Resolvers
	}
	interval := watchInterval
	if interval == 0 {
		interval = cfg.Propagation.Interval
	}
	timeout := watchLimit(cmd)

	targets := make([]propagation.Target, 0, len(servers))
	for _, addr := range servers {
		resolver, err := dnsquery.NewStandardResolver(addr, cfg.QueryTimeout)
		if err != nil {
			return fmt.Errorf("creating resolver for %s: %w", addr, err)
		}
		targets = append(targets, propagation.Target{ID: addr, Resolver: resolver})
	}

	monitor, err := propagation.New(propagation.Config{
		Name:        name,
		Type:        rtype,
		Expected:    watchExpect,
		Targets:     targets,
		Interval:    interval,
		MaxDuration: timeout,
		OnTick:      printTick,
	})
	if err != nil {
		return err
	}

	// Ctrl-C cancels between ticks; in-flight queries finish first
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	log.Info().Str("name", name).Str("type", string(rtype)).
		Int("resolvers", len(targets)).Dur("interval", interval).
		Msg("starting propagation watch")

	final := monitor.Run(ctx)

	fmt.Printf("\nFinal state: %s after %d checks (%d changes, %s elapsed)\n",
		final.State, final.CheckCount, final.ChangeCount, final.Elapsed.Round(time.Second))
	for _, target := range targets {
		value, ok := final.ResolverValues[target.ID]
		if !ok {
			value = "(no answer)"
		}
		fmt.Printf("  %-20s %s\n", target.ID, value)
	}

	return nil
}

// watchLimit picks the run's maximum duration. Zero is a meaningful flag
// value here (no limit), so the flag wins whenever it was set explicitly,
// even to zero over a configured maximum.
func watchLimit(cmd *cobra.Command) time.Duration {
	if cmd.Flags().Changed("timeout") {
		return watchTimeout
	}
	return cfg.Propagation.MaxDuration
}

// printTick reports per-tick progress
func printTick(snap propagation.Snapshot) {
	if snap.Percent > 0 {
		fmt.Printf("tick %d: %d resolvers polled, %d%% propagated\n",
			snap.Tick, len(snap.ResolverValues), snap.Percent)
		return
	}
	fmt.Printf("tick %d: %d resolvers polled\n", snap.Tick, len(snap.ResolverValues))
}
