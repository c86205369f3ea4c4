package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCheckoutsTotal = "repogrowth.checkouts.total"
	metricPeriodsTotal   = "repogrowth.periods.total"
	metricCountDuration  = "repogrowth.count.duration.seconds"

	attrKind   = "kind"
	attrStatus = "status"
)

// Checkout kinds and period outcomes used as metric attributes.
const (
	CheckoutBranch = "branch"
	CheckoutCommit = "commit"

	PeriodRecorded = "recorded"
	PeriodEmpty    = "empty"
)

// durationBucketBoundaries covers 10ms to 10m; cloc on a large tree takes
// seconds to minutes.
var durationBucketBoundaries = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600}

// GrowthMetrics holds OTel instruments for a sampling run.
type GrowthMetrics struct {
	checkouts     metric.Int64Counter
	periods       metric.Int64Counter
	countDuration metric.Float64Histogram
}

// NewGrowthMetrics creates the instruments from the given meter.
func NewGrowthMetrics(mt metric.Meter) (*GrowthMetrics, error) {
	checkouts, err := mt.Int64Counter(metricCheckoutsTotal,
		metric.WithDescription("Working tree checkouts by ref kind"),
		metric.WithUnit("{checkout}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCheckoutsTotal, err)
	}

	periods, err := mt.Int64Counter(metricPeriodsTotal,
		metric.WithDescription("Sampled periods by outcome"),
		metric.WithUnit("{period}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricPeriodsTotal, err)
	}

	countDur, err := mt.Float64Histogram(metricCountDuration,
		metric.WithDescription("Line counter run duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricCountDuration, err)
	}

	return &GrowthMetrics{
		checkouts:     checkouts,
		periods:       periods,
		countDuration: countDur,
	}, nil
}

// RecordCheckout counts one checkout. Safe to call on a nil receiver.
func (gm *GrowthMetrics) RecordCheckout(ctx context.Context, kind string) {
	if gm == nil {
		return
	}

	gm.checkouts.Add(ctx, 1, metric.WithAttributes(attribute.String(attrKind, kind)))
}

// RecordPeriod counts one measured period. Safe to call on a nil receiver.
func (gm *GrowthMetrics) RecordPeriod(ctx context.Context, status string, counted time.Duration) {
	if gm == nil {
		return
	}

	gm.periods.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))
	gm.countDuration.Record(ctx, counted.Seconds())
}
