package growth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/repogrowth/pkg/cloc"
	"github.com/Sumatoshi-tech/repogrowth/pkg/observability"
	"github.com/Sumatoshi-tech/repogrowth/pkg/timeline"
)

// DefaultBranch is the baseline branch when none is given.
const DefaultBranch = "master"

// Options select what a Run measures.
type Options struct {
	// Dir is the working tree the counter runs in. Empty means ".".
	Dir string
	// Match restricts counting to a path or glob. Empty means cloc.DefaultMatch.
	Match string
	// Start is the first sample date. Zero means the first commit's day.
	Start time.Time
	// End bounds sampling (exclusive). Zero means now.
	End time.Time
	// Freq is the sampling interval in days. Zero means timeline.DefaultFrequency.
	Freq int
	// Branch is the baseline branch. Empty means DefaultBranch.
	Branch string
	// CounterArgs are passed through to the line counter.
	CounterArgs []string
}

func (o Options) withDefaults() Options {
	if o.Dir == "" {
		o.Dir = "."
	}

	if o.Match == "" {
		o.Match = cloc.DefaultMatch
	}

	if o.Freq == 0 {
		o.Freq = timeline.DefaultFrequency
	}

	if o.Branch == "" {
		o.Branch = DefaultBranch
	}

	return o
}

// Pipeline runs sampling sweeps over one repository.
type Pipeline struct {
	repo     Repository
	counter  Counter
	observer Observer
	logger   *slog.Logger
	tracer   trace.Tracer
	metrics  *observability.GrowthMetrics
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithObserver sets the progress observer.
func WithObserver(o Observer) Option {
	return func(p *Pipeline) { p.observer = o }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithTracer sets the tracer used for run and period spans.
func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

// WithMetrics sets the metric instruments.
func WithMetrics(m *observability.GrowthMetrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithClock overrides time.Now, which supplies the default end date.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a Pipeline over repo and counter.
func New(repo Repository, counter Counter, opts ...Option) *Pipeline {
	p := &Pipeline{
		repo:     repo,
		counter:  counter,
		observer: NopObserver{},
		logger:   slog.Default(),
		tracer:   nooptrace.NewTracerProvider().Tracer("repogrowth"),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// Run samples the history of opts.Branch, counts each resolved period and
// returns the results newest first. The working tree is returned to the ref
// it had on entry, whether or not the run succeeds.
//
//nolint:nonamedreturns // the deferred restore joins into err
func (p *Pipeline) Run(ctx context.Context, opts Options) (results []PeriodResult, err error) {
	opts = opts.withDefaults()
	logger := p.logger.With("run_id", uuid.NewString())

	ctx, span := p.tracer.Start(ctx, "repogrowth.run", trace.WithAttributes(
		attribute.String("growth.branch", opts.Branch),
		attribute.String("growth.match", opts.Match),
		attribute.Int("growth.freq", opts.Freq),
	))
	defer span.End()

	defer func() {
		if err != nil {
			observability.RecordSpanError(span, err, errorType(err), observability.ErrSourceDependency)
		}
	}()

	dates, err := p.sampleDates(ctx, opts)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "sampling history",
		"branch", opts.Branch, "dates", len(dates), "freq_days", opts.Freq)

	co, err := Acquire(ctx, p.repo, opts.Branch, logger, p.metrics)
	if err != nil {
		return nil, err
	}

	defer func() {
		releaseErr := co.Release(context.WithoutCancel(ctx))
		if releaseErr != nil {
			err = errors.Join(err, releaseErr)
		}
	}()

	periods, err := ResolvePeriods(ctx, p.repo, opts.Branch, timeline.Reverse(dates))
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Int("growth.periods", len(periods)))
	logger.InfoContext(ctx, "resolved periods", "count", len(periods))

	for _, period := range periods {
		logger.DebugContext(ctx, "resolved period", "date", timeline.Format(period.Date), "commit", period.Commit)
	}

	p.observer.Periods(periods)

	results, err = p.measure(ctx, co, periods, opts, logger)
	if err != nil {
		return nil, err
	}

	err = co.Release(context.WithoutCancel(ctx))
	if err != nil {
		return nil, err
	}

	p.observer.Summary(results)

	return results, nil
}

func (p *Pipeline) sampleDates(ctx context.Context, opts Options) ([]time.Time, error) {
	start := opts.Start
	if start.IsZero() {
		first, err := p.repo.FirstCommitDate(ctx)
		if err != nil {
			return nil, fmt.Errorf("find first commit: %w", err)
		}

		start = timeline.Day(first.Local())
	}

	end := opts.End
	if end.IsZero() {
		end = p.now()
	}

	dates, err := timeline.Sample(start, end, opts.Freq)
	if err != nil {
		return nil, fmt.Errorf("sample dates: %w", err)
	}

	return dates, nil
}

// measure visits periods oldest first and returns the results newest first.
func (p *Pipeline) measure(
	ctx context.Context,
	co *Checkout,
	periods []Period,
	opts Options,
	logger *slog.Logger,
) ([]PeriodResult, error) {
	results := make([]PeriodResult, 0, len(periods))

	for _, period := range slices.Backward(periods) {
		result, ok, err := p.measureOne(ctx, co, period, opts, logger)
		if err != nil {
			return nil, err
		}

		if !ok {
			p.observer.Skipped(period)

			continue
		}

		p.observer.Breakdown(result)
		results = append(results, result)
	}

	slices.Reverse(results)

	return results, nil
}

func (p *Pipeline) measureOne(
	ctx context.Context,
	co *Checkout,
	period Period,
	opts Options,
	logger *slog.Logger,
) (PeriodResult, bool, error) {
	ctx, span := p.tracer.Start(ctx, "repogrowth.period", trace.WithAttributes(
		attribute.String("period.date", timeline.Format(period.Date)),
		attribute.String("period.commit", period.Commit),
	))
	defer span.End()

	logger.InfoContext(ctx, "checking out",
		"date", timeline.Format(period.Date), "commit", period.Commit, "age", humanize.Time(period.Date))

	err := co.Commit(ctx, period.Commit)
	if err != nil {
		observability.RecordSpanError(span, err, observability.ErrTypeDependencyUnavailable, observability.ErrSourceDependency)

		return PeriodResult{}, false, err
	}

	logger.InfoContext(ctx, "counting", "commit", period.Commit, "match", opts.Match)

	began := p.now()

	breakdown, ok, err := p.counter.Count(ctx, opts.Dir, cloc.Options{
		Match: opts.Match,
		Args:  opts.CounterArgs,
		Files: p.repo,
	})

	elapsed := p.now().Sub(began)

	if err != nil {
		observability.RecordSpanError(span, err, errorType(err), observability.ErrSourceDependency)

		return PeriodResult{}, false, fmt.Errorf("period %s (%s): %w", timeline.Format(period.Date), period.Commit, err)
	}

	if !ok {
		p.metrics.RecordPeriod(ctx, observability.PeriodEmpty, elapsed)
		logger.WarnContext(ctx, "no data for period, skipping", "commit", period.Commit, "match", opts.Match)

		return PeriodResult{}, false, nil
	}

	p.metrics.RecordPeriod(ctx, observability.PeriodRecorded, elapsed)
	span.SetAttributes(attribute.Int("period.code", breakdown.Sum.Code))
	logger.DebugContext(ctx, "counted",
		"commit", period.Commit,
		"files", humanize.Comma(int64(breakdown.Sum.NFiles)),
		"code", humanize.Comma(int64(breakdown.Sum.Code)),
		"elapsed", elapsed.Round(time.Millisecond))

	return PeriodResult{Date: period.Date, Commit: period.Commit, Results: breakdown}, true, nil
}

func errorType(err error) string {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return observability.ErrTypeCanceled
	case errors.Is(err, cloc.ErrMalformedOutput):
		return observability.ErrTypeMalformedData
	case errors.Is(err, timeline.ErrInvalidFrequency):
		return observability.ErrTypeValidation
	default:
		return observability.ErrTypeDependencyUnavailable
	}
}
