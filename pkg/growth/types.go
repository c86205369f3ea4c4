// Package growth measures how a repository's size evolves: it samples
// commits at a calendar interval, counts lines at each and hands the
// results to an Observer.
package growth

import (
	"context"
	"time"

	"github.com/Sumatoshi-tech/repogrowth/pkg/cloc"
)

// Period is a sampled point in history: a date and the commit active at or
// after it.
type Period struct {
	Date   time.Time
	Commit string
}

// PeriodResult is the line count breakdown measured for one Period.
type PeriodResult struct {
	Date    time.Time
	Commit  string
	Results cloc.Breakdown
}

// Period returns the period this result was measured for.
func (r PeriodResult) Period() Period {
	return Period{Date: r.Date, Commit: r.Commit}
}

// CommitResolver finds the commit in effect on a branch at a date.
type CommitResolver interface {
	// CommitAtOrAfter returns the earliest commit on branch whose committer
	// time is at or after date, or "" when there is none.
	CommitAtOrAfter(ctx context.Context, branch string, date time.Time) (string, error)
}

// Checkouter moves the shared working tree between refs.
type Checkouter interface {
	CheckoutBranch(ctx context.Context, branch string) error
	CheckoutCommit(ctx context.Context, hash string) error
	// CurrentRef reports the branch HEAD points at, or the commit hash with
	// detached set when HEAD is detached.
	CurrentRef(ctx context.Context) (ref string, detached bool, err error)
}

// Repository is the version-control backend a Pipeline runs against.
type Repository interface {
	CommitResolver
	Checkouter
	cloc.FileLister

	// FirstCommitDate returns the committer date of the oldest root commit
	// reachable from HEAD.
	FirstCommitDate(ctx context.Context) (time.Time, error)
}

// Counter measures the checked-out tree in dir. ok is false when there was
// nothing to count.
type Counter interface {
	Count(ctx context.Context, dir string, opts cloc.Options) (breakdown cloc.Breakdown, ok bool, err error)
}

// Observer receives pipeline progress, typically to render it.
type Observer interface {
	// Periods is called once with the resolved periods, newest first.
	Periods(periods []Period)
	// Breakdown is called after each successful count.
	Breakdown(result PeriodResult)
	// Skipped is called for a period whose count produced no data.
	Skipped(period Period)
	// Summary is called once with all results, newest first.
	Summary(results []PeriodResult)
}

// NopObserver discards all progress.
type NopObserver struct{}

// Periods implements Observer.
func (NopObserver) Periods([]Period) {}

// Breakdown implements Observer.
func (NopObserver) Breakdown(PeriodResult) {}

// Skipped implements Observer.
func (NopObserver) Skipped(Period) {}

// Summary implements Observer.
func (NopObserver) Summary([]PeriodResult) {}
