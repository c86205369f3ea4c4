package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Backend names.
const (
	BackendGit     = "git"
	BackendLibgit2 = "libgit2"
)

// Output format names.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Sentinel validation errors.
var (
	ErrInvalidFrequency = errors.New("frequency must be a positive number of days")
	ErrInvalidBackend   = errors.New("invalid backend")
	ErrInvalidFormat    = errors.New("invalid output format")
	ErrInvalidLogLevel  = errors.New("invalid log level")
	ErrInvalidTimeout   = errors.New("timeout must not be negative")
	ErrInvalidRatio     = errors.New("sample ratio must be between 0 and 1")
)

var (
	validBackends  = []string{BackendGit, BackendLibgit2}
	validFormats   = []string{FormatTable, FormatJSON, FormatYAML}
	validLogLevels = []string{"debug", "info", "warn", "error"}
)

// Config holds all repogrowth settings.
type Config struct {
	Growth        GrowthConfig        `mapstructure:"growth"`
	Counter       CounterConfig       `mapstructure:"counter"`
	Pipeline      PipelineConfig      `mapstructure:"pipeline"`
	Output        OutputConfig        `mapstructure:"output"`
	Logging       LoggingConfig       `mapstructure:"logging"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// GrowthConfig selects what history is sampled.
type GrowthConfig struct {
	Branch  string `mapstructure:"branch"`
	Match   string `mapstructure:"match"`
	Backend string `mapstructure:"backend"`
	Freq    int    `mapstructure:"freq"`
}

// CounterConfig configures the line counting tool.
type CounterConfig struct {
	Binary string   `mapstructure:"binary"`
	Args   []string `mapstructure:"args"`
}

// PipelineConfig bounds a run.
type PipelineConfig struct {
	// Timeout cancels the run after this long. Zero means no limit.
	Timeout time.Duration `mapstructure:"timeout"`
}

// OutputConfig controls how results are presented.
type OutputConfig struct {
	Format       string `mapstructure:"format"`
	NoColor      bool   `mapstructure:"no_color"`
	ReverseDates bool   `mapstructure:"reverse_dates"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// ObservabilityConfig controls tracing and metrics export.
type ObservabilityConfig struct {
	OTLPEndpoint       string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders        string  `mapstructure:"otlp_headers"`
	Environment        string  `mapstructure:"environment"`
	MetricsFile        string  `mapstructure:"metrics_file"`
	SampleRatio        float64 `mapstructure:"sample_ratio"`
	ShutdownTimeoutSec int     `mapstructure:"shutdown_timeout_sec"`
	OTLPInsecure       bool    `mapstructure:"otlp_insecure"`
}

// Validate checks that the configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	var errs []error

	if c.Growth.Freq <= 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidFrequency, c.Growth.Freq))
	}

	if !slices.Contains(validBackends, c.Growth.Backend) {
		errs = append(errs, fmt.Errorf("%w: %q (want one of %s)",
			ErrInvalidBackend, c.Growth.Backend, strings.Join(validBackends, ", ")))
	}

	if !slices.Contains(validFormats, c.Output.Format) {
		errs = append(errs, fmt.Errorf("%w: %q (want one of %s)",
			ErrInvalidFormat, c.Output.Format, strings.Join(validFormats, ", ")))
	}

	if !slices.Contains(validLogLevels, strings.ToLower(c.Logging.Level)) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Logging.Level))
	}

	if c.Pipeline.Timeout < 0 {
		errs = append(errs, fmt.Errorf("%w: %s", ErrInvalidTimeout, c.Pipeline.Timeout))
	}

	if c.Observability.SampleRatio < 0 || c.Observability.SampleRatio > 1 {
		errs = append(errs, fmt.Errorf("%w: %g", ErrInvalidRatio, c.Observability.SampleRatio))
	}

	return errors.Join(errs...)
}
