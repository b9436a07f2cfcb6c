package htmltree

import (
	"io"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Parse reads an HTML fragment and converts it into a tree. A fragment
// with a single top-level node parses to that node; multiple top-level
// nodes parse to a node list. Whitespace-only text between elements is
// dropped; text inside pre and textarea is kept verbatim.
//
// An element carrying a "key" attribute gets that value as its
// reconciliation key. The attribute itself stays on the element so a
// parse/render round trip preserves the markup.
func Parse(r io.Reader) (*Node, error) {
	ctx := &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	}
	parsed, err := html.ParseFragment(r, ctx)
	if err != nil {
		return nil, err
	}
	var kids []*Node
	for _, hn := range parsed {
		if n := convert(hn, false); n != nil {
			kids = append(kids, n)
		}
	}
	switch len(kids) {
	case 0:
		return Fragment(), nil
	case 1:
		return kids[0], nil
	default:
		return Fragment(kids...), nil
	}
}

// ParseString parses an HTML fragment held in a string.
func ParseString(s string) (*Node, error) {
	return Parse(strings.NewReader(s))
}

func convert(hn *html.Node, preformatted bool) *Node {
	switch hn.Type {
	case html.TextNode:
		if !preformatted && strings.TrimSpace(hn.Data) == "" {
			return nil
		}
		return Text(hn.Data)
	case html.CommentNode:
		return Comment(hn.Data)
	case html.ElementNode:
		var attrs []Attribute
		key := ""
		hasKey := false
		for _, a := range hn.Attr {
			attr := Attr(a.Key, a.Val)
			attr.Namespace = a.Namespace
			attrs = append(attrs, attr)
			if a.Namespace == "" && a.Key == KeyAttribute {
				key, hasKey = a.Val, true
			}
		}
		n := Element(hn.Data, attrs)
		n.Namespace = hn.Namespace
		if hasKey {
			n.WithKey(key)
		}
		pre := preformatted || hn.Data == "pre" || hn.Data == "textarea"
		for c := hn.FirstChild; c != nil; c = c.NextSibling {
			if kid := convert(c, pre); kid != nil {
				n.Children = append(n.Children, kid)
			}
		}
		return n
	default:
		// Doctype and document nodes have no place in a fragment tree.
		return nil
	}
}
