package htmltree

import (
	"fmt"
	"io"
	"strings"

	"github.com/vtree-dev/vtree/pkg/vtree"
)

// voidElements never carry children and render without a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true,
	"embed": true, "hr": true, "img": true, "input": true,
	"link": true, "meta": true, "param": true, "source": true,
	"track": true, "wbr": true,
}

// Render writes the tree as HTML. Split declarations of one attribute
// name are merged into a single attribute whose values join with a
// space. Node lists render their children with no wrapper markup.
func Render(w io.Writer, n *Node) error {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case vtree.KindLeaf:
		if n.Leaf.Comment {
			_, err := fmt.Fprintf(w, "<!--%s-->", n.Leaf.Text)
			return err
		}
		_, err := io.WriteString(w, escapeText(n.Leaf.Text))
		return err
	case vtree.KindList:
		for _, c := range n.Children {
			if err := Render(w, c); err != nil {
				return err
			}
		}
		return nil
	}
	return renderElement(w, n)
}

// RenderString renders the tree to an HTML string.
func RenderString(n *Node) (string, error) {
	var b strings.Builder
	if err := Render(&b, n); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderElement(w io.Writer, n *Node) error {
	if _, err := io.WriteString(w, "<"+n.Tag); err != nil {
		return err
	}
	var ptrs []*Attribute
	for i := range n.Attrs {
		ptrs = append(ptrs, &n.Attrs[i])
	}
	for _, a := range vtree.MergeSameNameAttributes(ptrs) {
		if _, err := fmt.Fprintf(w, ` %s="%s"`,
			a.Name, escapeAttr(strings.Join(a.Values, " "))); err != nil {
			return err
		}
	}
	if voidElements[n.Tag] || (n.SelfClosing && len(n.Children) == 0) {
		_, err := io.WriteString(w, "/>")
		return err
	}
	if _, err := io.WriteString(w, ">"); err != nil {
		return err
	}
	for _, c := range n.Children {
		if err := Render(w, c); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "</"+n.Tag+">")
	return err
}

// escapeText escapes text content for inclusion in HTML.
func escapeText(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}

// escapeAttr escapes a double-quoted attribute value, including the
// whitespace characters that could break attribute parsing.
func escapeAttr(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for _, r := range s {
		switch r {
		case '&':
			buf.WriteString("&amp;")
		case '<':
			buf.WriteString("&lt;")
		case '>':
			buf.WriteString("&gt;")
		case '"':
			buf.WriteString("&quot;")
		case '\n':
			buf.WriteString("&#10;")
		case '\r':
			buf.WriteString("&#13;")
		case '\t':
			buf.WriteString("&#9;")
		default:
			buf.WriteRune(r)
		}
	}
	return buf.String()
}
