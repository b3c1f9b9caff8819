package config

import "time"

// Config is the tool's complete configuration. Everything here is passed
// explicitly into the component that needs it; no package reads ambient
// state.
type Config struct {
	Backend string `yaml:"backend"` // "standard" or "doh"

	// Server pins the standard backend to a specific DNS server, or
	// overrides the DoH endpoint. Empty selects the system resolver
	// (standard) or the default public endpoint (doh).
	Server string `yaml:"server"`

	QueryTimeout time.Duration `yaml:"query_timeout"`
	Workers      int           `yaml:"workers"`

	// Tenant is the *.onmicrosoft.com tenant name used to derive DKIM
	// targets in the built-in expected-record catalogue
	Tenant string `yaml:"tenant"`

	Checks      ChecksConfig      `yaml:"checks"`
	Propagation PropagationConfig `yaml:"propagation"`
	Logging     LoggingConfig     `yaml:"logging"`
	Report      ReportConfig      `yaml:"report"`
}

// ChecksConfig selects which auxiliary check categories to run. A
// category that is not requested is excluded from the score's point pool
// rather than counted as a failure.
type ChecksConfig struct {
	SPF        bool `yaml:"spf"`
	DMARC      bool `yaml:"dmarc"`
	DKIM       bool `yaml:"dkim"`
	Deprecated bool `yaml:"deprecated"`
}

// PropagationConfig controls the watch command's polling loop
type PropagationConfig struct {
	Resolvers   []string      `yaml:"resolvers"`
	Interval    time.Duration `yaml:"interval"`
	MaxDuration time.Duration `yaml:"max_duration"` // 0 = unbounded
}

// LoggingConfig controls log verbosity
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// ReportConfig controls how results are rendered
type ReportConfig struct {
	Format string `yaml:"format"` // table, csv, json, html
	Output string `yaml:"output"` // file path; empty = stdout
}
