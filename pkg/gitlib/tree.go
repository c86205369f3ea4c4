package gitlib

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// checkoutTree updates the index and working tree to the tree of the commit
// at oid. Local modifications make it fail rather than be overwritten.
func (r *Repository) checkoutTree(oid *git2go.Oid) error {
	commit, err := r.repo.LookupCommit(oid)
	if err != nil {
		return fmt.Errorf("lookup commit %s: %w", oid, err)
	}
	defer commit.Free()

	tree, err := commit.Tree()
	if err != nil {
		return fmt.Errorf("get commit tree: %w", err)
	}
	defer tree.Free()

	err = r.repo.CheckoutTree(tree, &git2go.CheckoutOptions{Strategy: git2go.CheckoutSafe})
	if err != nil {
		return fmt.Errorf("checkout %s: %w", oid, err)
	}

	return nil
}
