package vtree

// Kind is the node variant discriminator.
type Kind uint8

const (
	KindElement Kind = iota // Tagged element with attributes and children
	KindLeaf                // Opaque payload, compared by equality only
	KindList                // Transparent grouping of sibling nodes
)

// String returns the string representation of the Kind.
func (k Kind) String() string {
	switch k {
	case KindElement:
		return "Element"
	case KindLeaf:
		return "Leaf"
	case KindList:
		return "List"
	default:
		return "Unknown"
	}
}

// Node is a virtual tree node. Only the Element kind carries a tag,
// attributes and a key; the Leaf kind carries the opaque payload; the
// List kind carries sibling nodes that are flattened into the parent's
// child sequence during diffing and application.
type Node[NS, TAG, ATT, VAL, LEAF comparable] struct {
	Kind Kind

	// Element fields. Namespace's zero value means "no namespace".
	Namespace   NS
	Tag         TAG
	Attrs       []Attribute[NS, ATT, VAL]
	Children    []*Node[NS, TAG, ATT, VAL, LEAF]
	Key         VAL
	HasKey      bool
	Skip        bool // subtree asserted unchanged, diffing skips it
	Replace     bool // subtree must be replaced wholesale, never patched
	SelfClosing bool

	// Leaf payload, meaningful only for KindLeaf.
	Leaf LEAF
}

// NewElement creates an element node with the given tag, attributes and
// children.
func NewElement[NS, TAG, ATT, VAL, LEAF comparable](
	tag TAG,
	attrs []Attribute[NS, ATT, VAL],
	children ...*Node[NS, TAG, ATT, VAL, LEAF],
) *Node[NS, TAG, ATT, VAL, LEAF] {
	return &Node[NS, TAG, ATT, VAL, LEAF]{
		Kind:     KindElement,
		Tag:      tag,
		Attrs:    attrs,
		Children: children,
	}
}

// NewElementNS creates a namespaced element node.
func NewElementNS[NS, TAG, ATT, VAL, LEAF comparable](
	namespace NS,
	tag TAG,
	attrs []Attribute[NS, ATT, VAL],
	children ...*Node[NS, TAG, ATT, VAL, LEAF],
) *Node[NS, TAG, ATT, VAL, LEAF] {
	n := NewElement(tag, attrs, children...)
	n.Namespace = namespace
	return n
}

// NewLeaf creates a leaf node holding the given payload.
func NewLeaf[NS, TAG, ATT, VAL, LEAF comparable](payload LEAF) *Node[NS, TAG, ATT, VAL, LEAF] {
	return &Node[NS, TAG, ATT, VAL, LEAF]{
		Kind: KindLeaf,
		Leaf: payload,
	}
}

// NewList creates a transparent node list grouping the given siblings.
func NewList[NS, TAG, ATT, VAL, LEAF comparable](
	children ...*Node[NS, TAG, ATT, VAL, LEAF],
) *Node[NS, TAG, ATT, VAL, LEAF] {
	return &Node[NS, TAG, ATT, VAL, LEAF]{
		Kind:     KindList,
		Children: children,
	}
}

// WithKey sets the reconciliation key and returns the node.
// Keys are only meaningful on elements.
func (n *Node[NS, TAG, ATT, VAL, LEAF]) WithKey(key VAL) *Node[NS, TAG, ATT, VAL, LEAF] {
	n.Key = key
	n.HasKey = true
	return n
}

// WithSkip marks the subtree as unchanged and returns the node.
func (n *Node[NS, TAG, ATT, VAL, LEAF]) WithSkip() *Node[NS, TAG, ATT, VAL, LEAF] {
	n.Skip = true
	return n
}

// WithReplace forces whole-subtree replacement and returns the node.
func (n *Node[NS, TAG, ATT, VAL, LEAF]) WithReplace() *Node[NS, TAG, ATT, VAL, LEAF] {
	n.Replace = true
	return n
}

// WithSelfClosing marks the element as self-closing and returns the node.
func (n *Node[NS, TAG, ATT, VAL, LEAF]) WithSelfClosing() *Node[NS, TAG, ATT, VAL, LEAF] {
	n.SelfClosing = true
	return n
}

// IsElement reports whether this is an element node.
func (n *Node[NS, TAG, ATT, VAL, LEAF]) IsElement() bool {
	return n != nil && n.Kind == KindElement
}

// IsLeaf reports whether this is a leaf node.
func (n *Node[NS, TAG, ATT, VAL, LEAF]) IsLeaf() bool {
	return n != nil && n.Kind == KindLeaf
}

// IsList reports whether this is a node list.
func (n *Node[NS, TAG, ATT, VAL, LEAF]) IsList() bool {
	return n != nil && n.Kind == KindList
}

// Attributes returns the element's attributes, or nil for other kinds.
func (n *Node[NS, TAG, ATT, VAL, LEAF]) Attributes() []Attribute[NS, ATT, VAL] {
	if !n.IsElement() {
		return nil
	}
	return n.Attrs
}

// AttributeValues returns all values carried by attributes with the
// given name, flattened in declaration order, and whether any were
// found. Non-element nodes report nothing.
func (n *Node[NS, TAG, ATT, VAL, LEAF]) AttributeValues(name ATT) ([]VAL, bool) {
	if !n.IsElement() {
		return nil, false
	}
	var values []VAL
	for i := range n.Attrs {
		if n.Attrs[i].Name == name {
			values = append(values, n.Attrs[i].Values...)
		}
	}
	return values, len(values) > 0
}

// FlatChildren returns the node's children with any nested node lists
// spliced into the sequence. Leaves have no children.
func (n *Node[NS, TAG, ATT, VAL, LEAF]) FlatChildren() []*Node[NS, TAG, ATT, VAL, LEAF] {
	if n == nil || n.Kind == KindLeaf {
		return nil
	}
	flat := true
	for _, c := range n.Children {
		if c.Kind == KindList {
			flat = false
			break
		}
	}
	if flat {
		return n.Children
	}
	var out []*Node[NS, TAG, ATT, VAL, LEAF]
	for _, c := range n.Children {
		if c.Kind == KindList {
			out = append(out, c.FlatChildren()...)
		} else {
			out = append(out, c)
		}
	}
	return out
}

// DescendantCount returns the number of nodes below this one, node
// lists included.
func (n *Node[NS, TAG, ATT, VAL, LEAF]) DescendantCount() int {
	if n == nil {
		return 0
	}
	count := 0
	for _, c := range n.Children {
		count += 1 + c.DescendantCount()
	}
	return count
}

// Equals reports deep structural equality. Children are compared through
// the flattened view, so node list grouping is transparent. Attributes
// are compared grouped by name: the value sequence per name must match
// exactly, while the relative order of distinct names is insignificant.
func (n *Node[NS, TAG, ATT, VAL, LEAF]) Equals(o *Node[NS, TAG, ATT, VAL, LEAF]) bool {
	if n == o {
		return true
	}
	if n == nil || o == nil {
		return false
	}
	if n.Kind != o.Kind {
		return false
	}
	switch n.Kind {
	case KindLeaf:
		return n.Leaf == o.Leaf
	case KindElement:
		if n.Tag != o.Tag || n.Namespace != o.Namespace {
			return false
		}
		if n.HasKey != o.HasKey || (n.HasKey && n.Key != o.Key) {
			return false
		}
		if n.Skip != o.Skip || n.Replace != o.Replace || n.SelfClosing != o.SelfClosing {
			return false
		}
		if !attributesEqual(n.Attrs, o.Attrs) {
			return false
		}
	}
	a, b := n.FlatChildren(), o.FlatChildren()
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the node.
func (n *Node[NS, TAG, ATT, VAL, LEAF]) Clone() *Node[NS, TAG, ATT, VAL, LEAF] {
	if n == nil {
		return nil
	}
	out := *n
	if n.Attrs != nil {
		out.Attrs = make([]Attribute[NS, ATT, VAL], len(n.Attrs))
		for i := range n.Attrs {
			out.Attrs[i] = n.Attrs[i].Clone()
		}
	}
	if n.Children != nil {
		out.Children = make([]*Node[NS, TAG, ATT, VAL, LEAF], len(n.Children))
		for i, c := range n.Children {
			out.Children[i] = c.Clone()
		}
	}
	return &out
}
