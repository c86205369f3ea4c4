// Package config loads repogrowth settings from defaults, an optional YAML
// file and REPOGROWTH_* environment variables.
package config

import "time"

// Growth defaults.
const (
	DefaultBranch  = "master"
	DefaultFreq    = 30
	DefaultMatch   = "."
	DefaultBackend = BackendGit
)

// Counter defaults.
const (
	DefaultCounterBinary = "cloc"
)

// Pipeline defaults.
const (
	DefaultPipelineTimeout time.Duration = 0
)

// Output defaults.
const (
	DefaultOutputFormat       = FormatTable
	DefaultOutputNoColor      = false
	DefaultOutputReverseDates = false
)

// Logging defaults.
const (
	DefaultLoggingLevel = "info"
	DefaultLoggingJSON  = false
)

// Observability defaults.
const (
	DefaultOTLPEndpoint  = ""
	DefaultOTLPInsecure  = false
	DefaultOTLPHeaders   = ""
	DefaultEnvironment   = ""
	DefaultMetricsFile   = ""
	DefaultSampleRatio   = 0.0
	DefaultShutdownGrace = 5
)
