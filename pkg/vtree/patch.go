package vtree

import (
	"fmt"
	"strings"
)

// PatchOp is the type of patch operation.
type PatchOp uint8

const (
	OpInsertBeforeNode PatchOp = 0x01 // Insert nodes before the node at Path
	OpInsertAfterNode  PatchOp = 0x02 // Insert nodes after the node at Path
	OpAppendChildren   PatchOp = 0x03 // Append nodes to the element at Path
	OpRemoveNode       PatchOp = 0x04 // Remove the node at Path
	OpReplaceNode      PatchOp = 0x05 // Replace the node at Path with Nodes
	OpMoveBeforeNode   PatchOp = 0x06 // Move nodes at MovePaths before Path
	OpMoveAfterNode    PatchOp = 0x07 // Move nodes at MovePaths after Path
	OpAddAttributes    PatchOp = 0x08 // Set attributes on the element at Path
	OpRemoveAttributes PatchOp = 0x09 // Remove attributes from the element at Path
	OpChangeLeaf       PatchOp = 0x0A // Replace the payload of the leaf at Path
)

// String returns the string representation of the PatchOp.
func (op PatchOp) String() string {
	switch op {
	case OpInsertBeforeNode:
		return "InsertBeforeNode"
	case OpInsertAfterNode:
		return "InsertAfterNode"
	case OpAppendChildren:
		return "AppendChildren"
	case OpRemoveNode:
		return "RemoveNode"
	case OpReplaceNode:
		return "ReplaceNode"
	case OpMoveBeforeNode:
		return "MoveBeforeNode"
	case OpMoveAfterNode:
		return "MoveAfterNode"
	case OpAddAttributes:
		return "AddAttributes"
	case OpRemoveAttributes:
		return "RemoveAttributes"
	case OpChangeLeaf:
		return "ChangeLeaf"
	default:
		return "Unknown"
	}
}

// Patch is one edit operation transforming part of the old tree toward
// the new tree. Node and attribute payloads are borrowed from the new
// tree, so a patch is valid only while both input trees are alive.
//
// Patches must be applied in emission order: each Path is valid against
// the tree state produced by the preceding patches.
type Patch[NS, TAG, ATT, VAL, LEAF comparable] struct {
	Op PatchOp

	// Path addresses the target node, or the anchor node for
	// insert/move operations.
	Path TreePath

	// Nodes carries the inserted/replacement nodes for
	// InsertBeforeNode, InsertAfterNode, AppendChildren and
	// ReplaceNode.
	Nodes []*Node[NS, TAG, ATT, VAL, LEAF]

	// MovePaths carries the current paths of the nodes relocated by
	// MoveBeforeNode and MoveAfterNode. They must address siblings of
	// the anchor at Path.
	MovePaths []TreePath

	// Attrs carries the attributes for AddAttributes and
	// RemoveAttributes.
	Attrs []*Attribute[NS, ATT, VAL]

	// Leaf carries the new payload for ChangeLeaf.
	Leaf LEAF
}

// String renders a compact, human-readable form of the patch.
func (p Patch[NS, TAG, ATT, VAL, LEAF]) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s", p.Op, p.Path)
	if len(p.Nodes) > 0 {
		fmt.Fprintf(&b, " nodes=%d", len(p.Nodes))
	}
	if len(p.MovePaths) > 0 {
		b.WriteString(" from=")
		for i, mp := range p.MovePaths {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(mp.String())
		}
	}
	if len(p.Attrs) > 0 {
		b.WriteString(" attrs=")
		for i, a := range p.Attrs {
			if i > 0 {
				b.WriteByte(',')
			}
			fmt.Fprintf(&b, "%v", a.Name)
		}
	}
	if p.Op == OpChangeLeaf {
		fmt.Fprintf(&b, " leaf=%v", p.Leaf)
	}
	return b.String()
}
