package vtree

import (
	"errors"
	"testing"
)

func TestApplyNormalizesListsFirst(t *testing.T) {
	root := el("div", nil, frag(txt("a"), txt("b")), txt("c"))
	got, err := Apply(root, []tpatch{{
		Op:   OpChangeLeaf,
		Path: TreePath{1},
		Leaf: "B",
	}})
	if err != nil {
		t.Fatal(err)
	}
	kids := got.FlatChildren()
	if len(kids) != 3 || kids[1].Leaf != "B" {
		t.Errorf("children = %v", kids)
	}
}

func TestApplyPathNotFound(t *testing.T) {
	root := el("div", nil, txt("a"))
	_, err := Apply(root, []tpatch{{
		Op:   OpChangeLeaf,
		Path: TreePath{5},
		Leaf: "x",
	}})
	if !errors.Is(err, ErrPathNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestApplyChangeLeafOnElementFails(t *testing.T) {
	root := el("div", nil, el("span", nil))
	_, err := Apply(root, []tpatch{{
		Op:   OpChangeLeaf,
		Path: TreePath{0},
		Leaf: "x",
	}})
	if !errors.Is(err, ErrNotALeaf) {
		t.Fatalf("err = %v", err)
	}
}

func TestApplyAttributePatchOnLeafFails(t *testing.T) {
	root := el("div", nil, txt("a"))
	attrs := []*tattr{{Name: "class", Values: []string{"x"}}}
	_, err := Apply(root, []tpatch{{
		Op:    OpAddAttributes,
		Path:  TreePath{0},
		Attrs: attrs,
	}})
	if !errors.Is(err, ErrNotAnElement) {
		t.Fatalf("err = %v", err)
	}
}

func TestApplyRemoveRootFails(t *testing.T) {
	root := el("div", nil)
	_, err := Apply(root, []tpatch{{Op: OpRemoveNode, Path: TreePath{}}})
	if !errors.Is(err, ErrBadPatch) {
		t.Fatalf("err = %v", err)
	}
}

func TestApplyMoveRequiresSiblings(t *testing.T) {
	root := el("div", nil, el("ul", nil, txt("a")), txt("b"))
	_, err := Apply(root, []tpatch{{
		Op:        OpMoveBeforeNode,
		Path:      TreePath{1},
		MovePaths: []TreePath{{0, 0}},
	}})
	if !errors.Is(err, ErrBadPatch) {
		t.Fatalf("err = %v", err)
	}
}

func TestApplyAddAttributesReplacesByName(t *testing.T) {
	root := el("div", []tattr{att("class", "old"), att("id", "keep")})
	attrs := []*tattr{{Name: "class", Values: []string{"new"}}}
	got, err := Apply(root, []tpatch{{
		Op:    OpAddAttributes,
		Path:  TreePath{},
		Attrs: attrs,
	}})
	if err != nil {
		t.Fatal(err)
	}
	vals, _ := got.AttributeValues("class")
	if len(vals) != 1 || vals[0] != "new" {
		t.Errorf("class = %v", vals)
	}
	if _, ok := got.AttributeValues("id"); !ok {
		t.Error("unrelated attribute dropped")
	}
}

func TestApplyRemoveAttributes(t *testing.T) {
	root := el("div", []tattr{att("class", "a"), att("class", "b"), att("id", "z")})
	attrs := []*tattr{{Name: "class"}}
	got, err := Apply(root, []tpatch{{
		Op:    OpRemoveAttributes,
		Path:  TreePath{},
		Attrs: attrs,
	}})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.AttributeValues("class"); ok {
		t.Error("class should be gone across all declarations")
	}
	if _, ok := got.AttributeValues("id"); !ok {
		t.Error("id should survive")
	}
}

func TestApplyClonesInsertedNodes(t *testing.T) {
	payload := el("span", nil, txt("x"))
	root := el("div", nil)
	got, err := Apply(root, []tpatch{{
		Op:    OpAppendChildren,
		Path:  TreePath{},
		Nodes: []*tnode{payload},
	}})
	if err != nil {
		t.Fatal(err)
	}
	payload.Children[0].Leaf = "mutated"
	if got.Children[0].Children[0].Leaf != "x" {
		t.Error("applied tree aliases the patch payload")
	}
}

func TestApplyReplaceRootWithMultipleNodes(t *testing.T) {
	root := el("div", nil)
	got, err := Apply(root, []tpatch{{
		Op:    OpReplaceNode,
		Path:  TreePath{},
		Nodes: []*tnode{txt("a"), txt("b")},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsList() || len(got.Children) != 2 {
		t.Errorf("root = %+v", got)
	}
}

func TestApplyInsertAfterLastChild(t *testing.T) {
	root := el("ul", nil, txt("a"))
	got, err := Apply(root, []tpatch{{
		Op:    OpInsertAfterNode,
		Path:  TreePath{0},
		Nodes: []*tnode{txt("b")},
	}})
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Children) != 2 || got.Children[1].Leaf != "b" {
		t.Errorf("children = %v", got.Children)
	}
}

func TestApplyMoveAfter(t *testing.T) {
	root := el("ul", nil, txt("a"), txt("b"), txt("c"))
	got, err := Apply(root, []tpatch{{
		Op:        OpMoveAfterNode,
		Path:      TreePath{2},
		MovePaths: []TreePath{{0}},
	}})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"b", "c", "a"}
	for i, w := range want {
		if got.Children[i].Leaf != w {
			t.Fatalf("children order wrong at %d: got %q, want %q", i, got.Children[i].Leaf, w)
		}
	}
}

func TestApplyNilTreeFails(t *testing.T) {
	if _, err := Apply[string, string, string, string, string](nil, nil); !errors.Is(err, ErrBadPatch) {
		t.Fatalf("err = %v", err)
	}
}
