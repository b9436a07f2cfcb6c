package wire

import (
	"testing"

	"github.com/vtree-dev/vtree/pkg/htmltree"
)

func sampleTree() *htmltree.Node {
	li := func(key, text string) *htmltree.Node {
		n := htmltree.Element("li", []htmltree.Attribute{
			htmltree.Attr("key", key),
			htmltree.Attr("class", "row", "odd"),
		}, htmltree.Text(text))
		return n.WithKey(key)
	}
	return htmltree.Element("ul", []htmltree.Attribute{htmltree.Attr("id", "menu")},
		li("a", "one"),
		li("b", "two"),
		htmltree.Comment(" end "),
	)
}

func TestNodeRoundTrip(t *testing.T) {
	orig := sampleTree()
	buf := EncodeTree(orig)
	got, err := DecodeTree(buf)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equals(orig) {
		t.Error("decoded tree differs from original")
	}
}

func TestNodeRoundTripPreservesFlags(t *testing.T) {
	orig := htmltree.Element("input", nil).WithSelfClosing().WithSkip()
	got, err := DecodeTree(EncodeTree(orig))
	if err != nil {
		t.Fatal(err)
	}
	if !got.SelfClosing || !got.Skip || got.Replace {
		t.Errorf("flags = self-closing %v, skip %v, replace %v",
			got.SelfClosing, got.Skip, got.Replace)
	}
}

func TestFrameRoundTripThroughDiff(t *testing.T) {
	old := sampleTree()
	new := htmltree.Element("ul", []htmltree.Attribute{htmltree.Attr("id", "menu")},
		htmltree.Element("li", []htmltree.Attribute{
			htmltree.Attr("key", "b"),
			htmltree.Attr("class", "row", "odd"),
		}, htmltree.Text("two")).WithKey("b"),
		htmltree.Element("li", []htmltree.Attribute{
			htmltree.Attr("key", "a"),
			htmltree.Attr("class", "row", "odd"),
		}, htmltree.Text("one!")).WithKey("a"),
		htmltree.Comment(" fin "),
	)
	frame := &Frame{Seq: 42, Patches: htmltree.Diff(old, new)}
	decoded, err := DecodeFrame(EncodeFrame(frame))
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Seq != 42 || len(decoded.Patches) != len(frame.Patches) {
		t.Fatalf("decoded = seq %d, %d patches", decoded.Seq, len(decoded.Patches))
	}
	// The decoded patches must still transform old into new.
	got, err := htmltree.Apply(old.Clone(), decoded.Patches)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equals(new) {
		t.Error("applying decoded patches missed the target tree")
	}
}

func TestFrameEmptyPatchList(t *testing.T) {
	decoded, err := DecodeFrame(EncodeFrame(&Frame{Seq: 7}))
	if err != nil {
		t.Fatal(err)
	}
	if decoded.Seq != 7 || len(decoded.Patches) != 0 {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestFrameRejectsUnknownVersion(t *testing.T) {
	buf := EncodeFrame(&Frame{Seq: 1})
	buf[0] = 0x7F
	if _, err := DecodeFrame(buf); err == nil {
		t.Error("unknown version accepted")
	}
}

func TestFrameRejectsTrailingData(t *testing.T) {
	buf := append(EncodeFrame(&Frame{Seq: 1}), 0xFF)
	if _, err := DecodeFrame(buf); err != ErrTrailingData {
		t.Errorf("err = %v", err)
	}
}

func TestNodeDepthWithinLimit(t *testing.T) {
	n := htmltree.Text("x")
	for i := 0; i < MaxNodeDepth; i++ {
		n = htmltree.Fragment(n)
	}
	if _, err := DecodeTree(EncodeTree(n)); err != nil {
		t.Fatalf("tree at depth limit rejected: %v", err)
	}
}

func TestNodeRejectsExcessiveDepth(t *testing.T) {
	// Hand-built buffer: single-child lists nested past the limit,
	// terminated by an empty text leaf. Two bytes per level would
	// otherwise inflate into an arbitrarily deep tree.
	buf := []byte{Version}
	for i := 0; i < MaxNodeDepth+10; i++ {
		buf = append(buf, 0x02, 0x01)
	}
	buf = append(buf, 0x01, 0x00, 0x00)
	if _, err := DecodeTree(buf); err != ErrMaxDepthExceeded {
		t.Errorf("err = %v, want ErrMaxDepthExceeded", err)
	}
}

func TestFrameRejectsTruncation(t *testing.T) {
	old, _ := htmltree.ParseString(`<div><p>a</p></div>`)
	new, _ := htmltree.ParseString(`<div><p>b</p><p>c</p></div>`)
	buf := EncodeFrame(&Frame{Seq: 9, Patches: htmltree.Diff(old, new)})
	for n := 1; n < len(buf); n++ {
		if _, err := DecodeFrame(buf[:n]); err == nil {
			t.Fatalf("truncation at %d accepted", n)
		}
	}
}
