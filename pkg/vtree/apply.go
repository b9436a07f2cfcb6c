package vtree

import (
	"errors"
	"fmt"
	"sort"
)

// Application errors. Errors returned by Apply wrap one of these and
// carry the failing operation and path.
var (
	ErrPathNotFound = errors.New("vtree: path does not address a node")
	ErrNotAnElement = errors.New("vtree: target is not an element")
	ErrNotALeaf     = errors.New("vtree: target is not a leaf")
	ErrBadPatch     = errors.New("vtree: malformed patch")
)

// Apply interprets a patch sequence against root and returns the
// resulting tree. Apply takes ownership of root and mutates it; the
// result is a different node only when a patch replaces the root
// itself. Node payloads carried by the patches are cloned before they
// enter the tree.
//
// The tree is normalized first: node list children are spliced into
// their parents so that patch paths address the same flattened
// coordinates the differ computed. Patches must be applied in the order
// the differ emitted them.
func Apply[NS, TAG, ATT, VAL, LEAF comparable](
	root *Node[NS, TAG, ATT, VAL, LEAF],
	patches []Patch[NS, TAG, ATT, VAL, LEAF],
) (*Node[NS, TAG, ATT, VAL, LEAF], error) {
	if root == nil {
		return nil, fmt.Errorf("apply to nil tree: %w", ErrBadPatch)
	}
	normalize(root)
	var err error
	for _, p := range patches {
		root, err = applyOne(root, p)
		if err != nil {
			return nil, err
		}
	}
	return root, nil
}

func applyOne[NS, TAG, ATT, VAL, LEAF comparable](
	root *Node[NS, TAG, ATT, VAL, LEAF],
	p Patch[NS, TAG, ATT, VAL, LEAF],
) (*Node[NS, TAG, ATT, VAL, LEAF], error) {
	switch p.Op {
	case OpInsertBeforeNode:
		return root, insertAt(root, p, p.Path.Last())
	case OpInsertAfterNode:
		return root, insertAt(root, p, p.Path.Last()+1)
	case OpAppendChildren:
		target, err := resolve(root, p.Path)
		if err != nil {
			return nil, patchErr(p, err)
		}
		if target.Kind == KindLeaf {
			return nil, patchErr(p, ErrNotAnElement)
		}
		target.Children = append(target.Children, cloneNodes(p.Nodes)...)
		return root, nil

	case OpRemoveNode:
		if p.Path.IsRoot() {
			return nil, patchErr(p, ErrBadPatch)
		}
		parent, idx, err := resolveParent(root, p.Path)
		if err != nil {
			return nil, patchErr(p, err)
		}
		parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)
		return root, nil

	case OpReplaceNode:
		if len(p.Nodes) == 0 {
			return nil, patchErr(p, ErrBadPatch)
		}
		repl := cloneNodes(p.Nodes)
		if p.Path.IsRoot() {
			if len(repl) == 1 {
				return repl[0], nil
			}
			return NewList(repl...), nil
		}
		parent, idx, err := resolveParent(root, p.Path)
		if err != nil {
			return nil, patchErr(p, err)
		}
		kids := parent.Children
		out := make([]*Node[NS, TAG, ATT, VAL, LEAF], 0, len(kids)-1+len(repl))
		out = append(out, kids[:idx]...)
		out = append(out, repl...)
		out = append(out, kids[idx+1:]...)
		parent.Children = out
		return root, nil

	case OpMoveBeforeNode:
		return root, moveNodes(root, p, false)
	case OpMoveAfterNode:
		return root, moveNodes(root, p, true)

	case OpAddAttributes:
		target, err := resolve(root, p.Path)
		if err != nil {
			return nil, patchErr(p, err)
		}
		if !target.IsElement() {
			return nil, patchErr(p, ErrNotAnElement)
		}
		setAttributes(target, p.Attrs)
		return root, nil

	case OpRemoveAttributes:
		target, err := resolve(root, p.Path)
		if err != nil {
			return nil, patchErr(p, err)
		}
		if !target.IsElement() {
			return nil, patchErr(p, ErrNotAnElement)
		}
		for _, a := range p.Attrs {
			target.Attrs = dropAttribute(target.Attrs, a.Name)
		}
		return root, nil

	case OpChangeLeaf:
		target, err := resolve(root, p.Path)
		if err != nil {
			return nil, patchErr(p, err)
		}
		if !target.IsLeaf() {
			return nil, patchErr(p, ErrNotALeaf)
		}
		target.Leaf = p.Leaf
		return root, nil
	}
	return nil, patchErr(p, ErrBadPatch)
}

// insertAt splices the patch payload into the anchor's parent at the
// given child index. The index may equal the child count, which appends.
func insertAt[NS, TAG, ATT, VAL, LEAF comparable](
	root *Node[NS, TAG, ATT, VAL, LEAF],
	p Patch[NS, TAG, ATT, VAL, LEAF],
	at int,
) error {
	if p.Path.IsRoot() {
		return patchErr(p, ErrBadPatch)
	}
	parent, _, err := resolveParent(root, p.Path)
	if err != nil {
		return patchErr(p, err)
	}
	if at < 0 || at > len(parent.Children) {
		return patchErr(p, ErrPathNotFound)
	}
	ins := cloneNodes(p.Nodes)
	kids := parent.Children
	out := make([]*Node[NS, TAG, ATT, VAL, LEAF], 0, len(kids)+len(ins))
	out = append(out, kids[:at]...)
	out = append(out, ins...)
	out = append(out, kids[at:]...)
	parent.Children = out
	return nil
}

// moveNodes relocates existing siblings next to the anchor at p.Path.
// All MovePaths must address siblings of the anchor. The moved indices
// and the anchor index are read from the same tree state, then the
// anchor index is adjusted for the extractions to its left.
func moveNodes[NS, TAG, ATT, VAL, LEAF comparable](
	root *Node[NS, TAG, ATT, VAL, LEAF],
	p Patch[NS, TAG, ATT, VAL, LEAF],
	after bool,
) error {
	if p.Path.IsRoot() || len(p.MovePaths) == 0 {
		return patchErr(p, ErrBadPatch)
	}
	parent, anchor, err := resolveParent(root, p.Path)
	if err != nil {
		return patchErr(p, err)
	}
	moved := make([]int, 0, len(p.MovePaths))
	for _, mp := range p.MovePaths {
		if mp.IsRoot() || !mp.Parent().Equal(p.Path.Parent()) {
			return patchErr(p, ErrBadPatch)
		}
		idx := mp.Last()
		if idx < 0 || idx >= len(parent.Children) || idx == anchor {
			return patchErr(p, ErrBadPatch)
		}
		moved = append(moved, idx)
	}

	// Extract highest index first so lower indices stay valid.
	order := append([]int(nil), moved...)
	sort.Sort(sort.Reverse(sort.IntSlice(order)))
	extracted := make(map[int]*Node[NS, TAG, ATT, VAL, LEAF], len(order))
	for _, idx := range order {
		extracted[idx] = parent.Children[idx]
		parent.Children = append(parent.Children[:idx], parent.Children[idx+1:]...)
	}
	shifted := anchor
	for _, idx := range moved {
		if idx < anchor {
			shifted--
		}
	}
	at := shifted
	if after {
		at++
	}
	// Reinsert in MovePaths order.
	ins := make([]*Node[NS, TAG, ATT, VAL, LEAF], len(moved))
	for i, idx := range moved {
		ins[i] = extracted[idx]
	}
	kids := parent.Children
	out := make([]*Node[NS, TAG, ATT, VAL, LEAF], 0, len(kids)+len(ins))
	out = append(out, kids[:at]...)
	out = append(out, ins...)
	out = append(out, kids[at:]...)
	parent.Children = out
	return nil
}

// setAttributes replaces every attribute sharing a name with the patch
// payload for that name, preserving split declarations as carried.
func setAttributes[NS, TAG, ATT, VAL, LEAF comparable](
	target *Node[NS, TAG, ATT, VAL, LEAF],
	attrs []*Attribute[NS, ATT, VAL],
) {
	seen := make(map[ATT]bool, len(attrs))
	for _, a := range attrs {
		if !seen[a.Name] {
			target.Attrs = dropAttribute(target.Attrs, a.Name)
			seen[a.Name] = true
		}
		target.Attrs = append(target.Attrs, a.Clone())
	}
}

func dropAttribute[NS, ATT, VAL comparable](
	attrs []Attribute[NS, ATT, VAL],
	name ATT,
) []Attribute[NS, ATT, VAL] {
	out := attrs[:0]
	for _, a := range attrs {
		if a.Name != name {
			out = append(out, a)
		}
	}
	return out
}

// resolve walks the flattened child indices from root to the addressed
// node.
func resolve[NS, TAG, ATT, VAL, LEAF comparable](
	root *Node[NS, TAG, ATT, VAL, LEAF],
	path TreePath,
) (*Node[NS, TAG, ATT, VAL, LEAF], error) {
	node := root
	for _, idx := range path {
		if node.Kind == KindLeaf || idx < 0 || idx >= len(node.Children) {
			return nil, ErrPathNotFound
		}
		node = node.Children[idx]
	}
	return node, nil
}

// resolveParent resolves the addressed node's parent and returns it with
// the node's index. The index must address an existing child.
func resolveParent[NS, TAG, ATT, VAL, LEAF comparable](
	root *Node[NS, TAG, ATT, VAL, LEAF],
	path TreePath,
) (*Node[NS, TAG, ATT, VAL, LEAF], int, error) {
	parent, err := resolve(root, path.Parent())
	if err != nil {
		return nil, 0, err
	}
	idx := path.Last()
	if parent.Kind == KindLeaf || idx < 0 || idx >= len(parent.Children) {
		return nil, 0, ErrPathNotFound
	}
	return parent, idx, nil
}

// normalize splices node list children into their parents in place so
// that child indices match the flattened view the differ addresses.
func normalize[NS, TAG, ATT, VAL, LEAF comparable](n *Node[NS, TAG, ATT, VAL, LEAF]) {
	if n == nil || n.Kind == KindLeaf {
		return
	}
	n.Children = n.FlatChildren()
	for _, c := range n.Children {
		normalize(c)
	}
}

// cloneNodes deep-copies and normalizes patch payload nodes before they
// enter an owned tree.
func cloneNodes[NS, TAG, ATT, VAL, LEAF comparable](
	nodes []*Node[NS, TAG, ATT, VAL, LEAF],
) []*Node[NS, TAG, ATT, VAL, LEAF] {
	out := make([]*Node[NS, TAG, ATT, VAL, LEAF], len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
		normalize(out[i])
	}
	return out
}

func patchErr[NS, TAG, ATT, VAL, LEAF comparable](
	p Patch[NS, TAG, ATT, VAL, LEAF],
	err error,
) error {
	return fmt.Errorf("%s at %s: %w", p.Op, p.Path, err)
}
