// Package htmltree binds the generic vtree types to HTML documents:
// string namespaces, tags, attribute names and values, and a leaf
// payload covering text and comment nodes. It parses HTML fragments
// into trees, renders trees back to HTML and re-exports diffing and
// patching over the HTML instantiation.
package htmltree

import (
	"github.com/vtree-dev/vtree/pkg/vtree"
)

// Leaf is the payload of text and comment nodes.
type Leaf struct {
	Comment bool
	Text    string
}

// HTML instantiations of the generic tree types.
type (
	Node      = vtree.Node[string, string, string, string, Leaf]
	Attribute = vtree.Attribute[string, string, string]
	Patch     = vtree.Patch[string, string, string, string, Leaf]
)

// KeyAttribute is the attribute name parsed into the reconciliation key.
const KeyAttribute = "key"

// Element creates an HTML element node.
func Element(tag string, attrs []Attribute, children ...*Node) *Node {
	return vtree.NewElement(tag, attrs, children...)
}

// ElementNS creates a namespaced element node, for SVG and MathML
// subtrees.
func ElementNS(namespace, tag string, attrs []Attribute, children ...*Node) *Node {
	return vtree.NewElementNS(namespace, tag, attrs, children...)
}

// Text creates a text node.
func Text(text string) *Node {
	return vtree.NewLeaf[string, string, string, string](Leaf{Text: text})
}

// Comment creates a comment node.
func Comment(text string) *Node {
	return vtree.NewLeaf[string, string, string, string](Leaf{Comment: true, Text: text})
}

// Fragment groups sibling nodes without introducing an element.
func Fragment(children ...*Node) *Node {
	return vtree.NewList(children...)
}

// Attr creates an attribute.
func Attr(name string, values ...string) Attribute {
	return vtree.NewAttribute[string](name, values...)
}

// Diff compares two HTML trees and returns the patch sequence
// transforming old into new.
func Diff(old, new *Node) []Patch {
	return vtree.Diff(old, new)
}

// Apply interprets a patch sequence against root. See vtree.Apply.
func Apply(root *Node, patches []Patch) (*Node, error) {
	return vtree.Apply(root, patches)
}
