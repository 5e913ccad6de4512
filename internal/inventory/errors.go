package inventory

import (
	"errors"
	"fmt"
)

// ErrRootChild is returned when the "all" group is added as a child.
var ErrRootChild = errors.New(`the "all" group cannot be a child of another group`)

// ErrForeignGroup is returned when groups from two inventories are linked.
var ErrForeignGroup = errors.New("group belongs to a different inventory")

// CycleError reports a parent/child edge that would make a group its own
// ancestor.
type CycleError struct {
	Parent string
	Child  string
}

func (e *CycleError) Error() string {
	if e.Parent == e.Child {
		return fmt.Sprintf("group %q cannot be a child of itself", e.Child)
	}
	return fmt.Sprintf("adding group %q as a child of %q would create a cycle", e.Child, e.Parent)
}
