// Package vtree implements structural diffing and patching of generic,
// tree-shaped documents.
//
// A Node tree is generic over five caller-supplied comparable types: the
// element namespace, the element tag, the attribute name, the attribute
// value (which doubles as the key type for keyed reconciliation) and the
// leaf payload. A host system binds these to whatever it renders; the
// htmltree package binds all five to string for HTML documents.
//
// # Diffing
//
// Diff compares two immutable trees in lock-step and returns the ordered
// patch sequence that transforms the old tree into the new one. Sibling
// lists containing keyed children are reconciled with a longest
// increasing subsequence computation so that reordering produces the
// minimal number of move patches.
//
// # Patches
//
// Patch values address their targets with a TreePath, a sequence of
// child indices from the root. Node and attribute payloads are borrowed
// from the new tree; both input trees must outlive the patch slice.
// Patches must be applied in emission order: structural patches are
// ordered so that no earlier patch invalidates the path carried by a
// later one.
//
// # Applying
//
// Apply interprets a patch sequence against an owned tree and is the
// correctness oracle for Diff: applying Diff(old, new) to old yields a
// tree structurally equal to new.
package vtree
