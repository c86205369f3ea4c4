package gitlib

import (
	"context"
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// RevWalk wraps a libgit2 revision walker sorted newest-first by commit time.
type RevWalk struct {
	walk *git2go.RevWalk
	repo *Repository
}

func (r *Repository) newWalk() (*RevWalk, error) {
	walk, err := r.repo.Walk()
	if err != nil {
		return nil, fmt.Errorf("create revwalk: %w", err)
	}

	walk.Sorting(git2go.SortTime)

	return &RevWalk{walk: walk, repo: r}, nil
}

func (r *Repository) walkHead() (*RevWalk, error) {
	walk, err := r.newWalk()
	if err != nil {
		return nil, err
	}

	err = walk.walk.PushHead()
	if err != nil {
		walk.Free()

		return nil, fmt.Errorf("push HEAD to revwalk: %w", err)
	}

	return walk, nil
}

func (r *Repository) walkFrom(oid *git2go.Oid) (*RevWalk, error) {
	walk, err := r.newWalk()
	if err != nil {
		return nil, err
	}

	err = walk.walk.Push(oid)
	if err != nil {
		walk.Free()

		return nil, fmt.Errorf("push %s to revwalk: %w", oid, err)
	}

	return walk, nil
}

// Iterate calls cb for each commit until it returns false, the walk ends or
// ctx is done.
func (w *RevWalk) Iterate(ctx context.Context, cb func(*Commit) bool) error {
	err := w.walk.Iterate(func(commit *git2go.Commit) bool {
		defer commit.Free()

		if ctx.Err() != nil {
			return false
		}

		return cb(&Commit{commit: commit})
	})
	if err != nil {
		return fmt.Errorf("revwalk iterate: %w", err)
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("revwalk iterate: %w", ctxErr)
	}

	return nil
}

// Free releases the walker resources.
func (w *RevWalk) Free() {
	if w.walk != nil {
		w.walk.Free()
		w.walk = nil
	}
}
