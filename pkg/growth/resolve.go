package growth

import (
	"context"
	"fmt"
	"time"

	"github.com/Sumatoshi-tech/repogrowth/pkg/timeline"
)

// ResolvePeriods maps each date to the commit in effect on branch. Dates
// must be newest first; so is the result. Dates that resolve to no commit,
// or to the same commit as the previously kept period, are skipped.
func ResolvePeriods(ctx context.Context, repo CommitResolver, branch string, dates []time.Time) ([]Period, error) {
	periods := make([]Period, 0, len(dates))

	var previous string

	for _, date := range dates {
		hash, err := repo.CommitAtOrAfter(ctx, branch, date)
		if err != nil {
			return nil, fmt.Errorf("resolve commit for %s: %w", timeline.Format(date), err)
		}

		if hash == "" || hash == previous {
			continue
		}

		periods = append(periods, Period{Date: date, Commit: hash})
		previous = hash
	}

	return periods, nil
}
