// Package gitlib drives a working tree in-process through libgit2.
package gitlib

import (
	"context"
	"errors"
	"fmt"
	"time"

	git2go "github.com/libgit2/git2go/v34"
)

// ErrNoCommits is returned when no parentless commit is reachable from HEAD.
var ErrNoCommits = errors.New("repository has no commits")

// Repository wraps a libgit2 repository with a working tree.
type Repository struct {
	repo *git2go.Repository
	path string
}

// OpenRepository opens the git repository at path.
func OpenRepository(path string) (*Repository, error) {
	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return &Repository{repo: repo, path: path}, nil
}

// Path returns the repository path.
func (r *Repository) Path() string {
	return r.path
}

// Free releases the repository resources.
func (r *Repository) Free() {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// FirstCommitDate returns the committer date of the oldest parentless
// commit reachable from HEAD.
func (r *Repository) FirstCommitDate(ctx context.Context) (time.Time, error) {
	walk, err := r.walkHead()
	if err != nil {
		return time.Time{}, err
	}
	defer walk.Free()

	var first time.Time

	err = walk.Iterate(ctx, func(c *Commit) bool {
		if c.IsRoot() {
			when := c.CommitterTime()
			if first.IsZero() || when.Before(first) {
				first = when
			}
		}

		return true
	})
	if err != nil {
		return time.Time{}, err
	}

	if first.IsZero() {
		return time.Time{}, ErrNoCommits
	}

	return first, nil
}

// CommitAtOrAfter returns the hash of the oldest commit on branch committed
// on or after date, or "" when there is none. The walk runs newest-first and
// stops at the first older commit, like `git log --since`.
func (r *Repository) CommitAtOrAfter(ctx context.Context, branch string, date time.Time) (string, error) {
	target, err := r.branchTarget(branch)
	if err != nil {
		return "", err
	}

	walk, err := r.walkFrom(target)
	if err != nil {
		return "", err
	}
	defer walk.Free()

	var found string

	err = walk.Iterate(ctx, func(c *Commit) bool {
		if c.CommitterTime().Before(date) {
			return false
		}

		found = c.Hash()

		return true
	})
	if err != nil {
		return "", err
	}

	return found, nil
}

// CheckoutBranch makes the working tree match branch and attaches HEAD to it.
func (r *Repository) CheckoutBranch(_ context.Context, branch string) error {
	ref, err := r.repo.LookupBranch(branch, git2go.BranchLocal)
	if err != nil {
		return fmt.Errorf("lookup branch %s: %w", branch, err)
	}
	defer ref.Free()

	err = r.checkoutTree(ref.Target())
	if err != nil {
		return err
	}

	err = r.repo.SetHead(ref.Reference.Name())
	if err != nil {
		return fmt.Errorf("set HEAD to %s: %w", branch, err)
	}

	return nil
}

// CheckoutCommit makes the working tree match hash and detaches HEAD there.
func (r *Repository) CheckoutCommit(_ context.Context, hash string) error {
	oid, err := git2go.NewOid(hash)
	if err != nil {
		return fmt.Errorf("parse commit %s: %w", hash, err)
	}

	err = r.checkoutTree(oid)
	if err != nil {
		return err
	}

	err = r.repo.SetHeadDetached(oid)
	if err != nil {
		return fmt.Errorf("detach HEAD at %s: %w", hash, err)
	}

	return nil
}

// CurrentRef returns the checked-out branch name, or the commit hash with
// detached set when HEAD is detached.
//
//nolint:nonamedreturns // names document the pair
func (r *Repository) CurrentRef(_ context.Context) (ref string, detached bool, err error) {
	detached, err = r.repo.IsHeadDetached()
	if err != nil {
		return "", false, fmt.Errorf("inspect HEAD: %w", err)
	}

	head, err := r.repo.Head()
	if err != nil {
		return "", false, fmt.Errorf("get HEAD: %w", err)
	}
	defer head.Free()

	if detached {
		return head.Target().String(), true, nil
	}

	return head.Shorthand(), false, nil
}

// ListFiles returns the paths recorded in the index, which after a checkout
// are the tracked files of that commit.
func (r *Repository) ListFiles(_ context.Context) ([]string, error) {
	index, err := r.repo.Index()
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer index.Free()

	count := index.EntryCount()
	files := make([]string, 0, count)

	for i := range count {
		entry, entryErr := index.EntryByIndex(i)
		if entryErr != nil {
			return nil, fmt.Errorf("index entry %d: %w", i, entryErr)
		}

		files = append(files, entry.Path)
	}

	return files, nil
}

func (r *Repository) branchTarget(branch string) (*git2go.Oid, error) {
	ref, err := r.repo.LookupBranch(branch, git2go.BranchLocal)
	if err != nil {
		return nil, fmt.Errorf("lookup branch %s: %w", branch, err)
	}
	defer ref.Free()

	return ref.Target(), nil
}
