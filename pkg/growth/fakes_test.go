package growth_test

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/Sumatoshi-tech/repogrowth/pkg/cloc"
	"github.com/Sumatoshi-tech/repogrowth/pkg/growth"
)

var (
	errUnknownRef = errors.New("unknown ref")
	errLocked     = errors.New("index.lock exists")
)

type fakeCommit struct {
	hash string
	when time.Time
}

// fakeRepo is an in-memory single-branch history with a movable HEAD.
type fakeRepo struct {
	branch   string
	commits  []fakeCommit // oldest first
	head     string
	detached bool
	files    []string

	checkouts   []string
	failCommit  string
	failRestore bool
	failResolve error
}

func newFakeRepo(branch string, commits ...fakeCommit) *fakeRepo {
	return &fakeRepo{branch: branch, commits: commits, head: branch, files: []string{"main.go"}}
}

func (r *fakeRepo) FirstCommitDate(context.Context) (time.Time, error) {
	if len(r.commits) == 0 {
		return time.Time{}, errUnknownRef
	}

	return r.commits[0].when, nil
}

func (r *fakeRepo) CommitAtOrAfter(_ context.Context, branch string, date time.Time) (string, error) {
	if r.failResolve != nil {
		return "", r.failResolve
	}

	if branch != r.branch {
		return "", fmt.Errorf("%w: %s", errUnknownRef, branch)
	}

	for _, c := range r.commits {
		if !c.when.Before(date) {
			return c.hash, nil
		}
	}

	return "", nil
}

func (r *fakeRepo) CheckoutBranch(_ context.Context, branch string) error {
	if r.failRestore && len(r.checkouts) > 0 {
		return errLocked
	}

	if branch != r.branch && branch != "feature" {
		return fmt.Errorf("%w: %s", errUnknownRef, branch)
	}

	r.checkouts = append(r.checkouts, branch)
	r.head, r.detached = branch, false

	return nil
}

func (r *fakeRepo) CheckoutCommit(_ context.Context, hash string) error {
	if hash == r.failCommit {
		return errLocked
	}

	r.checkouts = append(r.checkouts, hash)
	r.head, r.detached = hash, true

	return nil
}

func (r *fakeRepo) CurrentRef(context.Context) (string, bool, error) {
	return r.head, r.detached, nil
}

func (r *fakeRepo) ListFiles(context.Context) ([]string, error) {
	return r.files, nil
}

type countResult struct {
	breakdown cloc.Breakdown
	ok        bool
	err       error
}

// fakeCounter answers by the commit currently checked out in repo.
type fakeCounter struct {
	repo    *fakeRepo
	byHash  map[string]countResult
	counted []string
	opts    []cloc.Options
}

func (c *fakeCounter) Count(_ context.Context, _ string, opts cloc.Options) (cloc.Breakdown, bool, error) {
	c.counted = append(c.counted, c.repo.head)
	c.opts = append(c.opts, opts)

	res := c.byHash[c.repo.head]

	return res.breakdown, res.ok, res.err
}

func lines(code int) countResult {
	sum := cloc.Counts{NFiles: 1, Code: code}

	return countResult{
		breakdown: cloc.Breakdown{
			Languages: []cloc.Language{{Name: "Go", Counts: sum}},
			Sum:       sum,
		},
		ok: true,
	}
}

// recorder is an Observer that keeps every callback.
type recorder struct {
	periods  []growth.Period
	measured []string
	skipped  []string
	summary  []growth.PeriodResult
	events   []string
}

func (o *recorder) Periods(periods []growth.Period) {
	o.periods = slices.Clone(periods)
	o.events = append(o.events, "periods")
}

func (o *recorder) Breakdown(result growth.PeriodResult) {
	o.measured = append(o.measured, result.Commit)
	o.events = append(o.events, "breakdown")
}

func (o *recorder) Skipped(period growth.Period) {
	o.skipped = append(o.skipped, period.Commit)
	o.events = append(o.events, "skipped")
}

func (o *recorder) Summary(results []growth.PeriodResult) {
	o.summary = slices.Clone(results)
	o.events = append(o.events, "summary")
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.Local)
}

func noon(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 12, 0, 0, 0, time.Local)
}

// threeCommits is the Jan/Feb/Mar 2020 history used across tests.
func threeCommits() *fakeRepo {
	return newFakeRepo("master",
		fakeCommit{hash: "aaaaaaaa11111111", when: noon(2020, time.January, 1)},
		fakeCommit{hash: "bbbbbbbb22222222", when: noon(2020, time.February, 1)},
		fakeCommit{hash: "cccccccc33333333", when: noon(2020, time.March, 1)},
	)
}
