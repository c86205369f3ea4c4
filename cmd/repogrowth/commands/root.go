// Package commands implements the repogrowth command line.
package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/repogrowth/internal/command"
	"github.com/Sumatoshi-tech/repogrowth/pkg/cloc"
	"github.com/Sumatoshi-tech/repogrowth/pkg/config"
	"github.com/Sumatoshi-tech/repogrowth/pkg/gitcli"
	"github.com/Sumatoshi-tech/repogrowth/pkg/gitlib"
	"github.com/Sumatoshi-tech/repogrowth/pkg/growth"
	"github.com/Sumatoshi-tech/repogrowth/pkg/observability"
	"github.com/Sumatoshi-tech/repogrowth/pkg/report"
	"github.com/Sumatoshi-tech/repogrowth/pkg/timeline"
	"github.com/Sumatoshi-tech/repogrowth/pkg/version"
)

// ErrUnexpectedArgs is returned for positional arguments before "--".
var ErrUnexpectedArgs = errors.New("unexpected arguments (counter flags go after --)")

// deps are the side-effecting collaborators of the command.
type deps struct {
	runner  command.Runner
	initObs func(observability.Config) (observability.Providers, error)
	now     func() time.Time
}

func defaultDeps() deps {
	return deps{
		runner:  command.ExecRunner{},
		initObs: observability.Init,
		now:     time.Now,
	}
}

// GrowthCommand holds the flag values of the root command.
type GrowthCommand struct {
	configPath   string
	start        string
	end          string
	freq         int
	branch       string
	match        string
	path         string
	format       string
	jsonOut      bool
	backend      string
	timeout      time.Duration
	metricsFile  string
	noColor      bool
	reverseDates bool
	logJSON      bool
	verbose      bool
	quiet        bool

	deps deps
}

// NewRootCommand creates the repogrowth root command.
func NewRootCommand() *cobra.Command {
	return newRootCommandWithDeps(defaultDeps())
}

func newRootCommandWithDeps(d deps) *cobra.Command {
	gc := &GrowthCommand{deps: d}

	cmd := &cobra.Command{
		Use:   "repogrowth [flags] [-- <cloc flags>]",
		Short: "Measure how a repository grew over time",
		Long: `repogrowth samples commits at a fixed calendar interval, counts lines of
code at each with cloc, and tabulates the results with period-over-period
deltas.

Dates are formatted YYYY-MM.`,
		Example: `  repogrowth
  repogrowth -s 2017-01 -e 2018-01 -f 365
  repogrowth -m 'src/**/*.go' -- --exclude-dir=vendor`,
		Args:          noArgsBeforeDash,
		RunE:          gc.run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.StringVar(&gc.configPath, "config", "", "Config file (default: ./.repogrowth.yaml or ~/.repogrowth.yaml)")
	flags.StringVarP(&gc.start, "start", "s", "", "Start month, YYYY-MM (default: first commit)")
	flags.StringVarP(&gc.end, "end", "e", "", "End month, YYYY-MM (default: now)")
	flags.IntVarP(&gc.freq, "freq", "f", config.DefaultFreq, "Sampling frequency in days")
	flags.StringVarP(&gc.branch, "branch", "b", config.DefaultBranch, "Baseline branch")
	flags.StringVarP(&gc.match, "match", "m", config.DefaultMatch, "Path or glob to count")
	flags.StringVarP(&gc.path, "path", "p", ".", "Repository path")
	flags.StringVar(&gc.format, "format", config.DefaultOutputFormat, "Output format: table, json, yaml")
	flags.BoolVar(&gc.jsonOut, "json", false, "Output JSON (same as --format json)")
	flags.StringVar(&gc.backend, "backend", config.DefaultBackend, "Git backend: git, libgit2")
	flags.DurationVar(&gc.timeout, "timeout", 0, "Abort the run after this long (0 = no limit)")
	flags.StringVar(&gc.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics here at exit")
	flags.BoolVar(&gc.noColor, "no-color", false, "Disable colored output")
	flags.BoolVar(&gc.reverseDates, "reverse-dates", false, "Display dates as DD-MM-YYYY")
	flags.BoolVar(&gc.logJSON, "log-json", false, "Write JSON log records")
	flags.BoolVarP(&gc.verbose, "verbose", "v", false, "Debug logging")
	flags.BoolVarP(&gc.quiet, "quiet", "q", false, "Only log errors")

	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
	cmd.MarkFlagsMutuallyExclusive("json", "format")

	cmd.AddCommand(newVersionCommand())

	return cmd
}

func noArgsBeforeDash(cmd *cobra.Command, args []string) error {
	before := len(args)
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		before = dash
	}

	if before > 0 {
		return fmt.Errorf("%w: %q", ErrUnexpectedArgs, args[:before])
	}

	return nil
}

//nolint:nonamedreturns // shutdown errors join into err
func (gc *GrowthCommand) run(cmd *cobra.Command, args []string) (err error) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var counterArgs []string
	if dash := cmd.ArgsLenAtDash(); dash >= 0 {
		counterArgs = args[dash:]
	}

	start, end, err := gc.parseDates()
	if err != nil {
		return err
	}

	cfg, err := config.LoadConfig(gc.configPath)
	if err != nil {
		return err
	}

	err = gc.applyFlags(cmd, cfg)
	if err != nil {
		return err
	}

	providers, err := gc.initObservability(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	defer func() {
		shutdownErr := providers.Shutdown(context.WithoutCancel(ctx))
		if shutdownErr != nil {
			err = errors.Join(err, fmt.Errorf("shutdown observability: %w", shutdownErr))
		}
	}()

	dir, err := filepath.Abs(gc.path)
	if err != nil {
		return fmt.Errorf("resolve path: %w", err)
	}

	repo, closeRepo, err := gc.openRepository(cfg.Growth.Backend, dir)
	if err != nil {
		return err
	}
	defer closeRepo()

	metrics, err := observability.NewGrowthMetrics(providers.Meter)
	if err != nil {
		return err
	}

	if cfg.Pipeline.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, cfg.Pipeline.Timeout)
		defer cancel()
	}

	var renderer *report.Renderer

	pipelineOpts := []growth.Option{
		growth.WithLogger(providers.Logger),
		growth.WithTracer(providers.Tracer),
		growth.WithMetrics(metrics),
		growth.WithClock(gc.deps.now),
	}

	if cfg.Output.Format == config.FormatTable {
		renderer = report.NewRenderer(cmd.OutOrStdout(), report.Style{
			NoColor:      cfg.Output.NoColor,
			ReverseDates: cfg.Output.ReverseDates,
		})
		pipelineOpts = append(pipelineOpts, growth.WithObserver(renderer))
	}

	counter := cloc.NewCounter(gc.deps.runner, cfg.Counter.Binary, providers.Logger)

	results, err := growth.New(repo, counter, pipelineOpts...).Run(ctx, growth.Options{
		Dir:         dir,
		Match:       cfg.Growth.Match,
		Start:       start,
		End:         end,
		Freq:        cfg.Growth.Freq,
		Branch:      cfg.Growth.Branch,
		CounterArgs: slices.Concat(cfg.Counter.Args, counterArgs),
	})
	if err != nil {
		return err
	}

	if renderer != nil {
		return renderer.Err()
	}

	return report.Encode(cmd.OutOrStdout(), cfg.Output.Format, results)
}

// parseDates validates --start and --end before any repository work.
//
//nolint:nonamedreturns // names document the pair
func (gc *GrowthCommand) parseDates() (start, end time.Time, err error) {
	if gc.start != "" {
		start, err = timeline.ParseMonth(gc.start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--start: %w", err)
		}
	}

	if gc.end != "" {
		end, err = timeline.ParseMonth(gc.end)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("--end: %w", err)
		}
	}

	return start, end, nil
}

// applyFlags overrides config values with explicitly set flags.
func (gc *GrowthCommand) applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("freq") {
		cfg.Growth.Freq = gc.freq
	}

	if flags.Changed("branch") {
		cfg.Growth.Branch = gc.branch
	}

	if flags.Changed("match") {
		cfg.Growth.Match = gc.match
	}

	if flags.Changed("backend") {
		cfg.Growth.Backend = gc.backend
	}

	if flags.Changed("format") {
		cfg.Output.Format = gc.format
	}

	if gc.jsonOut {
		cfg.Output.Format = config.FormatJSON
	}

	if flags.Changed("timeout") {
		cfg.Pipeline.Timeout = gc.timeout
	}

	if flags.Changed("metrics-file") {
		cfg.Observability.MetricsFile = gc.metricsFile
	}

	if flags.Changed("no-color") {
		cfg.Output.NoColor = gc.noColor
	}

	if flags.Changed("reverse-dates") {
		cfg.Output.ReverseDates = gc.reverseDates
	}

	if flags.Changed("log-json") {
		cfg.Logging.JSON = gc.logJSON
	}

	switch {
	case gc.verbose:
		cfg.Logging.Level = "debug"
	case gc.quiet:
		cfg.Logging.Level = "error"
	}

	err := cfg.Validate()
	if err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	return nil
}

func (gc *GrowthCommand) initObservability(cfg *config.Config, logOut io.Writer) (observability.Providers, error) {
	level, err := observability.ParseLevel(cfg.Logging.Level)
	if err != nil {
		return observability.Providers{}, err
	}

	obsCfg := observability.DefaultConfig()
	obsCfg.ServiceVersion = version.Version
	obsCfg.Environment = cfg.Observability.Environment
	obsCfg.OTLPEndpoint = cfg.Observability.OTLPEndpoint
	obsCfg.OTLPHeaders = observability.ParseOTLPHeaders(cfg.Observability.OTLPHeaders)
	obsCfg.OTLPInsecure = cfg.Observability.OTLPInsecure
	obsCfg.SampleRatio = cfg.Observability.SampleRatio
	obsCfg.MetricsFile = cfg.Observability.MetricsFile
	obsCfg.ShutdownTimeoutSec = cfg.Observability.ShutdownTimeoutSec
	obsCfg.LogLevel = level
	obsCfg.LogJSON = cfg.Logging.JSON
	obsCfg.LogOutput = logOut

	providers, err := gc.deps.initObs(obsCfg)
	if err != nil {
		return observability.Providers{}, fmt.Errorf("init observability: %w", err)
	}

	return providers, nil
}

func (gc *GrowthCommand) openRepository(backend, dir string) (growth.Repository, func(), error) {
	switch backend {
	case config.BackendLibgit2:
		repo, err := gitlib.OpenRepository(dir)
		if err != nil {
			return nil, nil, err
		}

		return repo, repo.Free, nil
	default:
		return gitcli.New(dir, gc.deps.runner), func() {}, nil
	}
}
