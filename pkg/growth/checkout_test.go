package growth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/repogrowth/pkg/growth"
)

func TestCheckout_ReleaseIsIdempotent(t *testing.T) {
	t.Parallel()

	repo := threeCommits()
	repo.head = "feature"

	co, err := growth.Acquire(context.Background(), repo, "master", discardLogger(), nil)
	require.NoError(t, err)

	ref, detached := co.Origin()
	assert.Equal(t, "feature", ref)
	assert.False(t, detached)
	assert.Equal(t, "master", repo.head)

	require.NoError(t, co.Commit(context.Background(), "bbbbbbbb22222222"))
	assert.True(t, repo.detached)

	require.NoError(t, co.Release(context.Background()))
	require.NoError(t, co.Release(context.Background()))

	assert.Equal(t, []string{"master", "bbbbbbbb22222222", "feature"}, repo.checkouts)
}

func TestCheckout_ReleaseAfterCancel(t *testing.T) {
	t.Parallel()

	repo := threeCommits()

	ctx, cancel := context.WithCancel(context.Background())

	co, err := growth.Acquire(ctx, repo, "master", nil, nil)
	require.NoError(t, err)

	cancel()

	require.NoError(t, co.Release(context.WithoutCancel(ctx)))
	assert.Equal(t, "master", repo.head)
}

func TestCheckout_CommitError(t *testing.T) {
	t.Parallel()

	repo := threeCommits()
	repo.failCommit = "aaaaaaaa11111111"

	co, err := growth.Acquire(context.Background(), repo, "master", nil, nil)
	require.NoError(t, err)

	err = co.Commit(context.Background(), "aaaaaaaa11111111")
	require.ErrorIs(t, err, errLocked)
	assert.Contains(t, err.Error(), "checkout aaaaaaaa11111111")
}
