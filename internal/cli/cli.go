package cli

import (
	"fmt"
	"os"

	"github.com/faanross/m365dns/internal/config"
	"github.com/faanross/m365dns/internal/dnsquery"
	"github.com/faanross/m365dns/internal/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	configPath string
	backend    string
	server     string
	workers    int
	logLevel   string

	cfg *config.Config
	log zerolog.Logger
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "m365dns",
	Short: "Validate a domain's DNS against what Microsoft 365 expects",
	Long: `m365dns compares a domain's live DNS records against the records
Microsoft 365 services expect, scores the domain's readiness, and can
watch a DNS change propagate across public resolvers.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if configPath != "" {
			cfg, err = config.Load(configPath)
			if err != nil {
				return err
			}
		} else {
			cfg = config.Default()
		}

		// Flags override file configuration when set explicitly
		if cmd.Flags().Changed("backend") || cmd.InheritedFlags().Changed("backend") {
			cfg.Backend = backend
		}
		if cmd.Flags().Changed("server") || cmd.InheritedFlags().Changed("server") {
			cfg.Server = server
		}
		if cmd.Flags().Changed("workers") || cmd.InheritedFlags().Changed("workers") {
			cfg.Workers = workers
		}
		if cmd.Flags().Changed("log-level") || cmd.InheritedFlags().Changed("log-level") {
			cfg.Logging.Level = logLevel
		}

		if err := cfg.Validate(); err != nil {
			return err
		}

		log = logger.New(os.Stderr, cfg.Logging.Level)
		return nil
	},
}

// Execute adds all child commands to the root command and runs it
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(baselineCmd)

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "standard", "Query backend: standard or doh")
	rootCmd.PersistentFlags().StringVar(&server, "server", "", "DNS server to query (standard) or DoH endpoint override")
	rootCmd.PersistentFlags().IntVar(&workers, "workers", 4, "Maximum domains evaluated concurrently")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

// newResolver builds the configured query backend
func newResolver() (dnsquery.Resolver, error) {
	return dnsquery.NewResolver(dnsquery.Backend(cfg.Backend), cfg.Server, cfg.QueryTimeout)
}

// openOutput returns the report destination; an empty path means stdout
func openOutput(path string) (*os.File, func(), error) {
	if path == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}
