package growth

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Sumatoshi-tech/repogrowth/pkg/observability"
)

// Checkout is a scoped hold on the shared working tree. Acquire records the
// ref in effect on entry; Release puts it back.
type Checkout struct {
	repo     Checkouter
	logger   *slog.Logger
	metrics  *observability.GrowthMetrics
	origin   string
	detached bool
	released bool
}

// Acquire records the current ref and checks out the baseline branch.
// The caller must Release the returned handle on every path.
func Acquire(
	ctx context.Context,
	repo Checkouter,
	baseline string,
	logger *slog.Logger,
	metrics *observability.GrowthMetrics,
) (*Checkout, error) {
	if logger == nil {
		logger = slog.Default()
	}

	origin, detached, err := repo.CurrentRef(ctx)
	if err != nil {
		return nil, fmt.Errorf("record current ref: %w", err)
	}

	co := &Checkout{
		repo:     repo,
		logger:   logger,
		metrics:  metrics,
		origin:   origin,
		detached: detached,
	}

	logger.DebugContext(ctx, "checking out baseline", "branch", baseline, "origin", origin, "detached", detached)

	err = repo.CheckoutBranch(ctx, baseline)
	if err != nil {
		return nil, fmt.Errorf("checkout baseline %s: %w", baseline, err)
	}

	metrics.RecordCheckout(ctx, observability.CheckoutBranch)

	return co, nil
}

// Origin returns the ref recorded on entry and whether it was detached.
func (c *Checkout) Origin() (ref string, detached bool) {
	return c.origin, c.detached
}

// Commit checks out hash detached.
func (c *Checkout) Commit(ctx context.Context, hash string) error {
	err := c.repo.CheckoutCommit(ctx, hash)
	if err != nil {
		return fmt.Errorf("checkout %s: %w", hash, err)
	}

	c.metrics.RecordCheckout(ctx, observability.CheckoutCommit)

	return nil
}

// Release restores the ref recorded by Acquire. Calls after the first are
// no-ops.
func (c *Checkout) Release(ctx context.Context) error {
	if c.released {
		return nil
	}

	c.released = true

	c.logger.DebugContext(ctx, "restoring original ref", "ref", c.origin, "detached", c.detached)

	kind, restore := observability.CheckoutBranch, c.repo.CheckoutBranch
	if c.detached {
		kind, restore = observability.CheckoutCommit, c.repo.CheckoutCommit
	}

	err := restore(ctx, c.origin)
	if err != nil {
		return fmt.Errorf("restore %s: %w", c.origin, err)
	}

	c.metrics.RecordCheckout(ctx, kind)

	return nil
}
