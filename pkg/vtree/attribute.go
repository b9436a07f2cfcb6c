package vtree

// Attribute is a named attribute carrying one or more values. Setting
// the same name repeatedly accumulates values rather than overwriting,
// so attributes are grouped by name before they are compared.
type Attribute[NS, ATT, VAL comparable] struct {
	// Namespace of the attribute; the zero value means none.
	Namespace NS
	Name      ATT
	Values    []VAL
}

// NewAttribute creates an attribute with the given values.
func NewAttribute[NS, ATT, VAL comparable](name ATT, values ...VAL) Attribute[NS, ATT, VAL] {
	return Attribute[NS, ATT, VAL]{Name: name, Values: values}
}

// NewAttributeNS creates a namespaced attribute.
func NewAttributeNS[NS, ATT, VAL comparable](namespace NS, name ATT, values ...VAL) Attribute[NS, ATT, VAL] {
	return Attribute[NS, ATT, VAL]{Namespace: namespace, Name: name, Values: values}
}

// Clone returns a copy of the attribute with its own value slice.
func (a Attribute[NS, ATT, VAL]) Clone() Attribute[NS, ATT, VAL] {
	out := a
	if a.Values != nil {
		out.Values = make([]VAL, len(a.Values))
		copy(out.Values, a.Values)
	}
	return out
}

// AttributeGroup collects all attributes sharing one name, in
// declaration order. The attribute pointers borrow from the slice the
// group was built from.
type AttributeGroup[NS, ATT, VAL comparable] struct {
	Name  ATT
	Attrs []*Attribute[NS, ATT, VAL]
}

// Values returns the group's values flattened in declaration order.
func (g AttributeGroup[NS, ATT, VAL]) Values() []VAL {
	var out []VAL
	for _, a := range g.Attrs {
		out = append(out, a.Values...)
	}
	return out
}

// GroupAttributesByName groups attributes by name, preserving the order
// in which names first appear.
func GroupAttributesByName[NS, ATT, VAL comparable](
	attrs []Attribute[NS, ATT, VAL],
) []AttributeGroup[NS, ATT, VAL] {
	var groups []AttributeGroup[NS, ATT, VAL]
	for i := range attrs {
		attr := &attrs[i]
		found := false
		for gi := range groups {
			if groups[gi].Name == attr.Name {
				groups[gi].Attrs = append(groups[gi].Attrs, attr)
				found = true
				break
			}
		}
		if !found {
			groups = append(groups, AttributeGroup[NS, ATT, VAL]{
				Name:  attr.Name,
				Attrs: []*Attribute[NS, ATT, VAL]{attr},
			})
		}
	}
	return groups
}

// MergeSameNameAttributes merges attributes sharing a name into a single
// attribute whose value sequence concatenates the originals in order.
func MergeSameNameAttributes[NS, ATT, VAL comparable](
	attrs []*Attribute[NS, ATT, VAL],
) []Attribute[NS, ATT, VAL] {
	var merged []Attribute[NS, ATT, VAL]
	for _, attr := range attrs {
		found := false
		for i := range merged {
			if merged[i].Name == attr.Name {
				merged[i].Values = append(merged[i].Values, attr.Values...)
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, attr.Clone())
		}
	}
	return merged
}

// attributesEqual compares two attribute slices grouped by name. The
// value sequence under each name must match exactly; the relative order
// of distinct names does not matter.
func attributesEqual[NS, ATT, VAL comparable](a, b []Attribute[NS, ATT, VAL]) bool {
	ga, gb := GroupAttributesByName(a), GroupAttributesByName(b)
	if len(ga) != len(gb) {
		return false
	}
	for _, g := range ga {
		other, ok := findGroup(gb, g.Name)
		if !ok || !valuesEqual(g.Values(), other.Values()) {
			return false
		}
	}
	return true
}

func findGroup[NS, ATT, VAL comparable](
	groups []AttributeGroup[NS, ATT, VAL],
	name ATT,
) (AttributeGroup[NS, ATT, VAL], bool) {
	for _, g := range groups {
		if g.Name == name {
			return g, true
		}
	}
	var zero AttributeGroup[NS, ATT, VAL]
	return zero, false
}

func valuesEqual[VAL comparable](a, b []VAL) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
