// Package gitcli drives a working tree through the git command-line tool.
package gitcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Sumatoshi-tech/repogrowth/internal/command"
)

// Binary is the git executable looked up on PATH.
const Binary = "git"

// sinceLayout anchors --since at local midnight of the sampled day. git reads
// the value in the local zone, so dates are converted before formatting.
const sinceLayout = "2006-01-02T00:00:00"

// ErrNoCommits is returned when the repository has no commit to date from.
var ErrNoCommits = errors.New("repository has no commits")

// Repository is a git working tree at dir.
type Repository struct {
	dir    string
	runner command.Runner
}

// New returns a Repository rooted at dir.
func New(dir string, runner command.Runner) *Repository {
	return &Repository{dir: dir, runner: runner}
}

// Dir returns the working tree directory.
func (r *Repository) Dir() string {
	return r.dir
}

// FirstCommitDate returns the committer date of the oldest parentless
// commit reachable from HEAD.
func (r *Repository) FirstCommitDate(ctx context.Context) (time.Time, error) {
	out, err := r.git(ctx, "log", "--max-parents=0", "HEAD", "--format=%cI")
	if err != nil {
		return time.Time{}, err
	}

	var first time.Time

	for _, line := range strings.Fields(out) {
		when, parseErr := time.Parse(time.RFC3339, line)
		if parseErr != nil {
			return time.Time{}, fmt.Errorf("parse commit date %q: %w", line, parseErr)
		}

		if first.IsZero() || when.Before(first) {
			first = when
		}
	}

	if first.IsZero() {
		return time.Time{}, ErrNoCommits
	}

	return first, nil
}

// CommitAtOrAfter returns the hash of the oldest commit on branch whose
// committer date is on or after date's calendar day, or "" when none.
func (r *Repository) CommitAtOrAfter(ctx context.Context, branch string, date time.Time) (string, error) {
	out, err := r.git(ctx, "log", branch,
		"--since="+date.Local().Format(sinceLayout),
		"--reverse",
		"--pretty=format:%H",
		"--",
	)
	if err != nil {
		return "", err
	}

	first, _, _ := strings.Cut(out, "\n")

	return strings.TrimSpace(first), nil
}

// CheckoutBranch switches the working tree to branch, attaching HEAD to it.
func (r *Repository) CheckoutBranch(ctx context.Context, branch string) error {
	_, err := r.git(ctx, "checkout", branch)

	return err
}

// CheckoutCommit switches the working tree to hash with a detached HEAD so
// that no branch pointer moves.
func (r *Repository) CheckoutCommit(ctx context.Context, hash string) error {
	_, err := r.git(ctx, "checkout", "--detach", hash)

	return err
}

// CurrentRef returns the checked-out branch name, or the commit hash with
// detached set when HEAD is detached.
//
//nolint:nonamedreturns // names document the pair
func (r *Repository) CurrentRef(ctx context.Context) (ref string, detached bool, err error) {
	branch, err := r.git(ctx, "symbolic-ref", "-q", "--short", "HEAD")
	if err == nil {
		return strings.TrimSpace(branch), false, nil
	}

	var exitErr *command.ExitError
	if !errors.As(err, &exitErr) || exitErr.Code != 1 {
		return "", false, err
	}

	hash, err := r.git(ctx, "rev-parse", "HEAD")
	if err != nil {
		return "", false, err
	}

	return strings.TrimSpace(hash), true, nil
}

// ListFiles returns the tracked files of the current checkout.
func (r *Repository) ListFiles(ctx context.Context) ([]string, error) {
	out, err := r.git(ctx, "ls-files", "-z")
	if err != nil {
		return nil, err
	}

	var files []string

	for _, name := range strings.Split(out, "\x00") {
		if name != "" {
			files = append(files, name)
		}
	}

	return files, nil
}

func (r *Repository) git(ctx context.Context, args ...string) (string, error) {
	res, err := r.runner.Run(ctx, r.dir, Binary, args...)
	if err != nil {
		return "", fmt.Errorf("git %s: %w", args[0], err)
	}

	return string(bytes.TrimRight(res.Stdout, "\n")), nil
}
