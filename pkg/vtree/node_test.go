package vtree

import "testing"

// String-typed instantiations used across the package tests.
type (
	tnode  = Node[string, string, string, string, string]
	tattr  = Attribute[string, string, string]
	tpatch = Patch[string, string, string, string, string]
)

func el(tag string, attrs []tattr, kids ...*tnode) *tnode {
	return NewElement(tag, attrs, kids...)
}

func keyed(tag, key string, attrs []tattr, kids ...*tnode) *tnode {
	return NewElement(tag, attrs, kids...).WithKey(key)
}

func txt(s string) *tnode {
	return NewLeaf[string, string, string, string](s)
}

func frag(kids ...*tnode) *tnode {
	return NewList(kids...)
}

func att(name string, vals ...string) tattr {
	return NewAttribute[string](name, vals...)
}

func TestNodeKindPredicates(t *testing.T) {
	if n := el("div", nil); !n.IsElement() || n.IsLeaf() || n.IsList() {
		t.Errorf("element predicates wrong: %v", n.Kind)
	}
	if n := txt("hi"); !n.IsLeaf() || n.IsElement() {
		t.Errorf("leaf predicates wrong: %v", n.Kind)
	}
	if n := frag(); !n.IsList() || n.IsElement() {
		t.Errorf("list predicates wrong: %v", n.Kind)
	}
}

func TestFlatChildrenSplicesNestedLists(t *testing.T) {
	n := el("div", nil,
		txt("a"),
		frag(txt("b"), frag(txt("c"), txt("d"))),
		txt("e"),
	)
	flat := n.FlatChildren()
	want := []string{"a", "b", "c", "d", "e"}
	if len(flat) != len(want) {
		t.Fatalf("got %d flattened children, want %d", len(flat), len(want))
	}
	for i, w := range want {
		if flat[i].Leaf != w {
			t.Errorf("child %d = %q, want %q", i, flat[i].Leaf, w)
		}
	}
}

func TestFlatChildrenReturnsSliceUnchangedWhenFlat(t *testing.T) {
	n := el("div", nil, txt("a"), txt("b"))
	flat := n.FlatChildren()
	if &flat[0] != &n.Children[0] {
		t.Error("flat child sequence should reuse the child slice")
	}
}

func TestEqualsTreatsListsAsTransparent(t *testing.T) {
	a := el("div", nil, txt("a"), txt("b"), txt("c"))
	b := el("div", nil, frag(txt("a"), txt("b")), txt("c"))
	if !a.Equals(b) {
		t.Error("grouped children should compare equal to flat children")
	}
}

func TestEqualsAttributeNameOrderInsignificant(t *testing.T) {
	a := el("div", []tattr{att("class", "x"), att("id", "y")})
	b := el("div", []tattr{att("id", "y"), att("class", "x")})
	if !a.Equals(b) {
		t.Error("attribute declaration order should not matter across names")
	}
	c := el("div", []tattr{att("class", "x", "y")})
	d := el("div", []tattr{att("class", "x"), att("class", "y")})
	if !c.Equals(d) {
		t.Error("split declarations of one name should merge for comparison")
	}
	e := el("div", []tattr{att("class", "y", "x")})
	if c.Equals(e) {
		t.Error("value order within a name must match")
	}
}

func TestEqualsDistinguishesKeysAndFlags(t *testing.T) {
	if keyed("li", "a", nil).Equals(keyed("li", "b", nil)) {
		t.Error("different keys should not compare equal")
	}
	if keyed("li", "a", nil).Equals(el("li", nil)) {
		t.Error("keyed and unkeyed should not compare equal")
	}
	if el("br", nil).WithSelfClosing().Equals(el("br", nil)) {
		t.Error("self-closing flag should participate in equality")
	}
}

func TestAttributeValuesFlattensAcrossDeclarations(t *testing.T) {
	n := el("div", []tattr{att("class", "a"), att("id", "z"), att("class", "b", "c")})
	vals, ok := n.AttributeValues("class")
	if !ok || len(vals) != 3 || vals[0] != "a" || vals[1] != "b" || vals[2] != "c" {
		t.Fatalf("AttributeValues = %v, %v", vals, ok)
	}
	if _, ok := n.AttributeValues("missing"); ok {
		t.Error("missing attribute reported present")
	}
	if _, ok := txt("x").AttributeValues("class"); ok {
		t.Error("leaf reported attributes")
	}
}

func TestDescendantCountIncludesLists(t *testing.T) {
	n := el("div", nil, txt("a"), frag(txt("b"), txt("c")))
	// a, list, b, c
	if got := n.DescendantCount(); got != 4 {
		t.Errorf("DescendantCount = %d, want 4", got)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	orig := el("div", []tattr{att("class", "x")}, txt("a"), keyed("li", "k", nil))
	cp := orig.Clone()
	if !orig.Equals(cp) {
		t.Fatal("clone should compare equal to the original")
	}
	cp.Attrs[0].Values[0] = "changed"
	cp.Children[0].Leaf = "changed"
	if orig.Attrs[0].Values[0] != "x" || orig.Children[0].Leaf != "a" {
		t.Error("mutating the clone leaked into the original")
	}
}

func TestMergeSameNameAttributes(t *testing.T) {
	attrs := []tattr{att("class", "a"), att("id", "z"), att("class", "b")}
	var ptrs []*tattr
	for i := range attrs {
		ptrs = append(ptrs, &attrs[i])
	}
	merged := MergeSameNameAttributes(ptrs)
	if len(merged) != 2 {
		t.Fatalf("got %d merged attributes, want 2", len(merged))
	}
	if merged[0].Name != "class" || len(merged[0].Values) != 2 {
		t.Errorf("class merge = %+v", merged[0])
	}
}
