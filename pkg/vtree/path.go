package vtree

import (
	"strconv"
	"strings"
)

// TreePath addresses one node as the sequence of child indices to follow
// from the root; the empty path is the root itself. A path is a pure
// coordinate into one specific tree snapshot: once patches mutate
// sibling counts above it, the path is stale.
type TreePath []int

// Traverse returns a new path descending into the child at index i.
// The receiver is not modified.
func (p TreePath) Traverse(i int) TreePath {
	out := make(TreePath, len(p)+1)
	copy(out, p)
	out[len(p)] = i
	return out
}

// Pluck removes and returns the first index, descending one level.
// It must not be called on the root path.
func (p TreePath) Pluck() (int, TreePath) {
	return p[0], p[1:]
}

// IsRoot reports whether the path addresses the root node.
func (p TreePath) IsRoot() bool {
	return len(p) == 0
}

// Parent returns the path of the addressed node's parent.
// It must not be called on the root path.
func (p TreePath) Parent() TreePath {
	return p[:len(p)-1]
}

// Last returns the addressed node's index within its parent.
// It must not be called on the root path.
func (p TreePath) Last() int {
	return p[len(p)-1]
}

// Equal reports whether two paths address the same coordinates.
func (p TreePath) Equal(o TreePath) bool {
	if len(p) != len(o) {
		return false
	}
	for i := range p {
		if p[i] != o[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the path.
func (p TreePath) Clone() TreePath {
	out := make(TreePath, len(p))
	copy(out, p)
	return out
}

// String renders the path as "[0,1,2]"; the root is "[]".
func (p TreePath) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, idx := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(idx))
	}
	b.WriteByte(']')
	return b.String()
}
