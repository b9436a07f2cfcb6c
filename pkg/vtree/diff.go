package vtree

// Diff compares two trees and returns the ordered patch sequence that
// transforms old into new. Neither tree is modified; the returned
// patches borrow node and attribute payloads from new.
//
// Patches are emitted so that applying them in order never invalidates
// the path carried by a later patch: within one parent, matched
// subtrees are patched first, removals run from the highest index down,
// and insertions and moves are addressed against the tree state their
// predecessors produce.
//
// Both trees must be non-nil; passing a nil tree is a caller bug and
// panics. An absent document is represented as an empty List node, not
// as nil.
func Diff[NS, TAG, ATT, VAL, LEAF comparable](
	old, new *Node[NS, TAG, ATT, VAL, LEAF],
) []Patch[NS, TAG, ATT, VAL, LEAF] {
	if old == nil || new == nil {
		panic("vtree: Diff called with a nil tree")
	}
	var patches []Patch[NS, TAG, ATT, VAL, LEAF]
	diffNodes(old, new, TreePath{}, &patches)
	return patches
}

func diffNodes[NS, TAG, ATT, VAL, LEAF comparable](
	old, new *Node[NS, TAG, ATT, VAL, LEAF],
	path TreePath,
	patches *[]Patch[NS, TAG, ATT, VAL, LEAF],
) {
	if old.Skip {
		return
	}
	if old == new || old.Equals(new) {
		return
	}
	if shouldReplace(old, new) {
		*patches = append(*patches, Patch[NS, TAG, ATT, VAL, LEAF]{
			Op:    OpReplaceNode,
			Path:  path,
			Nodes: []*Node[NS, TAG, ATT, VAL, LEAF]{new},
		})
		return
	}
	switch old.Kind {
	case KindLeaf:
		// Equals already ruled out equal payloads.
		*patches = append(*patches, Patch[NS, TAG, ATT, VAL, LEAF]{
			Op:   OpChangeLeaf,
			Path: path,
			Leaf: new.Leaf,
		})
	case KindElement:
		diffAttributes(old, new, path, patches)
		diffChildren(old, new, path, patches)
	case KindList:
		diffChildren(old, new, path, patches)
	}
}

// shouldReplace reports whether the pair cannot be patched in place and
// the old subtree must be replaced wholesale.
func shouldReplace[NS, TAG, ATT, VAL, LEAF comparable](
	old, new *Node[NS, TAG, ATT, VAL, LEAF],
) bool {
	if old.Kind != new.Kind {
		return true
	}
	if old.Replace || new.Replace {
		return true
	}
	if old.Kind == KindElement {
		if old.Tag != new.Tag || old.Namespace != new.Namespace {
			return true
		}
		if old.HasKey && new.HasKey && old.Key != new.Key {
			return true
		}
	}
	return false
}

// diffAttributes emits at most one AddAttributes patch for names whose
// value sequence changed or appeared, then at most one RemoveAttributes
// patch for names that disappeared. Attributes are compared grouped by
// name, so split declarations of one name behave like a single merged
// declaration.
func diffAttributes[NS, TAG, ATT, VAL, LEAF comparable](
	old, new *Node[NS, TAG, ATT, VAL, LEAF],
	path TreePath,
	patches *[]Patch[NS, TAG, ATT, VAL, LEAF],
) {
	oldGroups := GroupAttributesByName(old.Attrs)
	newGroups := GroupAttributesByName(new.Attrs)

	var added []*Attribute[NS, ATT, VAL]
	for _, ng := range newGroups {
		og, ok := findGroup(oldGroups, ng.Name)
		if !ok || !valuesEqual(og.Values(), ng.Values()) {
			added = append(added, ng.Attrs...)
		}
	}
	var removed []*Attribute[NS, ATT, VAL]
	for _, og := range oldGroups {
		if _, ok := findGroup(newGroups, og.Name); !ok {
			removed = append(removed, og.Attrs...)
		}
	}

	if len(added) > 0 {
		*patches = append(*patches, Patch[NS, TAG, ATT, VAL, LEAF]{
			Op:    OpAddAttributes,
			Path:  path,
			Attrs: added,
		})
	}
	if len(removed) > 0 {
		*patches = append(*patches, Patch[NS, TAG, ATT, VAL, LEAF]{
			Op:    OpRemoveAttributes,
			Path:  path,
			Attrs: removed,
		})
	}
}

// diffChildren reconciles the flattened child sequences of a matched
// pair. Sibling lists containing any keyed child on either side go
// through the keyed reconciler; fully unkeyed lists are paired by
// position.
func diffChildren[NS, TAG, ATT, VAL, LEAF comparable](
	old, new *Node[NS, TAG, ATT, VAL, LEAF],
	path TreePath,
	patches *[]Patch[NS, TAG, ATT, VAL, LEAF],
) {
	oldKids := old.FlatChildren()
	newKids := new.FlatChildren()
	if anyKeyed(oldKids) || anyKeyed(newKids) {
		reconcileKeyed(oldKids, newKids, path, patches)
		return
	}

	n := len(oldKids)
	if len(newKids) < n {
		n = len(newKids)
	}
	for i := 0; i < n; i++ {
		diffNodes(oldKids[i], newKids[i], path.Traverse(i), patches)
	}
	if len(newKids) > len(oldKids) {
		*patches = append(*patches, Patch[NS, TAG, ATT, VAL, LEAF]{
			Op:    OpAppendChildren,
			Path:  path,
			Nodes: newKids[len(oldKids):],
		})
	}
	// Highest index first, so each removal leaves the remaining
	// removal paths valid.
	for i := len(oldKids) - 1; i >= len(newKids); i-- {
		*patches = append(*patches, Patch[NS, TAG, ATT, VAL, LEAF]{
			Op:   OpRemoveNode,
			Path: path.Traverse(i),
		})
	}
}

func anyKeyed[NS, TAG, ATT, VAL, LEAF comparable](kids []*Node[NS, TAG, ATT, VAL, LEAF]) bool {
	for _, k := range kids {
		if k.HasKey {
			return true
		}
	}
	return false
}
