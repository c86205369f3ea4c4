package gitlib

import (
	"time"

	git2go "github.com/libgit2/git2go/v34"
)

// Commit is a commit visited by a RevWalk. It is only valid inside the
// walk callback.
type Commit struct {
	commit *git2go.Commit
}

// Hash returns the full hex commit hash.
func (c *Commit) Hash() string {
	return c.commit.Id().String()
}

// IsRoot reports whether the commit has no parents.
func (c *Commit) IsRoot() bool {
	return c.commit.ParentCount() == 0
}

// CommitterTime returns the committer timestamp.
func (c *Commit) CommitterTime() time.Time {
	return c.commit.Committer().When
}
