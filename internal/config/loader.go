package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default returns the configuration used when no config file is supplied
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// Load reads, parses and validates a YAML configuration file. Any fault
// here is fatal to the invocation; nothing is queried before the
// configuration is known good.
func Load(path string) (*Config, error) {
	// Step 1: Ensure that config file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s", path)
	}

	// Step 2: Read the file
	yamlData, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	// Step 3: Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(yamlData, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML configuration: %w", err)
	}

	// Step 4: Apply defaults for missing values
	applyDefaults(&cfg)

	// Step 5: Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets sensible default values for any missing configuration
func applyDefaults(cfg *Config) {
	if cfg.Backend == "" {
		cfg.Backend = "standard"
	}
	if cfg.QueryTimeout == 0 {
		cfg.QueryTimeout = 5 * time.Second
	}
	if cfg.Workers == 0 {
		cfg.Workers = 4
	}

	if len(cfg.Propagation.Resolvers) == 0 {
		cfg.Propagation.Resolvers = []string{"8.8.8.8", "1.1.1.1", "9.9.9.9"}
	}
	if cfg.Propagation.Interval == 0 {
		cfg.Propagation.Interval = 30 * time.Second
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Report.Format == "" {
		cfg.Report.Format = "table"
	}
}
