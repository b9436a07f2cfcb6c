package wire

import (
	"fmt"

	"github.com/vtree-dev/vtree/pkg/htmltree"
	"github.com/vtree-dev/vtree/pkg/vtree"
)

// Node kind tags on the wire.
const (
	nodeElement byte = 0x00
	nodeLeaf    byte = 0x01
	nodeList    byte = 0x02
)

// Element flag bits.
const (
	flagHasKey      byte = 1 << 0
	flagSkip        byte = 1 << 1
	flagReplace     byte = 1 << 2
	flagSelfClosing byte = 1 << 3
)

// EncodeNode appends the wire form of a tree to the encoder.
//
// Element: kind, namespace, tag, flags, [key], attr count + attrs,
// child count + children. Leaf: kind, comment bool, text. List: kind,
// child count + children.
func EncodeNode(e *Encoder, n *htmltree.Node) {
	switch n.Kind {
	case vtree.KindLeaf:
		e.WriteByte(nodeLeaf)
		e.WriteBool(n.Leaf.Comment)
		e.WriteString(n.Leaf.Text)
	case vtree.KindList:
		e.WriteByte(nodeList)
		e.WriteUvarint(uint64(len(n.Children)))
		for _, c := range n.Children {
			EncodeNode(e, c)
		}
	default:
		e.WriteByte(nodeElement)
		e.WriteString(n.Namespace)
		e.WriteString(n.Tag)
		var flags byte
		if n.HasKey {
			flags |= flagHasKey
		}
		if n.Skip {
			flags |= flagSkip
		}
		if n.Replace {
			flags |= flagReplace
		}
		if n.SelfClosing {
			flags |= flagSelfClosing
		}
		e.WriteByte(flags)
		if n.HasKey {
			e.WriteString(n.Key)
		}
		e.WriteUvarint(uint64(len(n.Attrs)))
		for i := range n.Attrs {
			encodeAttribute(e, &n.Attrs[i])
		}
		e.WriteUvarint(uint64(len(n.Children)))
		for _, c := range n.Children {
			EncodeNode(e, c)
		}
	}
}

// DecodeNode reads one tree from the decoder. Trees nested deeper than
// MaxNodeDepth are rejected with ErrMaxDepthExceeded.
func DecodeNode(d *Decoder) (*htmltree.Node, error) {
	return decodeNode(d, 0)
}

func decodeNode(d *Decoder, depth int) (*htmltree.Node, error) {
	if depth > MaxNodeDepth {
		return nil, ErrMaxDepthExceeded
	}
	kind, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	switch kind {
	case nodeLeaf:
		comment, err := d.ReadBool()
		if err != nil {
			return nil, err
		}
		text, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		if comment {
			return htmltree.Comment(text), nil
		}
		return htmltree.Text(text), nil

	case nodeList:
		count, err := d.ReadCount()
		if err != nil {
			return nil, err
		}
		kids := make([]*htmltree.Node, count)
		for i := range kids {
			if kids[i], err = decodeNode(d, depth+1); err != nil {
				return nil, err
			}
		}
		return htmltree.Fragment(kids...), nil

	case nodeElement:
		ns, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		tag, err := d.ReadString()
		if err != nil {
			return nil, err
		}
		flags, err := d.ReadByte()
		if err != nil {
			return nil, err
		}
		n := htmltree.Element(tag, nil)
		n.Namespace = ns
		if flags&flagHasKey != 0 {
			key, err := d.ReadString()
			if err != nil {
				return nil, err
			}
			n.WithKey(key)
		}
		n.Skip = flags&flagSkip != 0
		n.Replace = flags&flagReplace != 0
		n.SelfClosing = flags&flagSelfClosing != 0

		attrCount, err := d.ReadCount()
		if err != nil {
			return nil, err
		}
		if attrCount > 0 {
			n.Attrs = make([]htmltree.Attribute, attrCount)
			for i := range n.Attrs {
				if err := decodeAttribute(d, &n.Attrs[i]); err != nil {
					return nil, err
				}
			}
		}
		childCount, err := d.ReadCount()
		if err != nil {
			return nil, err
		}
		if childCount > 0 {
			n.Children = make([]*htmltree.Node, childCount)
			for i := range n.Children {
				if n.Children[i], err = decodeNode(d, depth+1); err != nil {
					return nil, err
				}
			}
		}
		return n, nil

	default:
		return nil, fmt.Errorf("wire: unknown node kind 0x%02x", kind)
	}
}

func encodeAttribute(e *Encoder, a *htmltree.Attribute) {
	e.WriteString(a.Namespace)
	e.WriteString(a.Name)
	e.WriteUvarint(uint64(len(a.Values)))
	for _, v := range a.Values {
		e.WriteString(v)
	}
}

func decodeAttribute(d *Decoder, a *htmltree.Attribute) error {
	var err error
	if a.Namespace, err = d.ReadString(); err != nil {
		return err
	}
	if a.Name, err = d.ReadString(); err != nil {
		return err
	}
	count, err := d.ReadCount()
	if err != nil {
		return err
	}
	if count > 0 {
		a.Values = make([]string, count)
		for i := range a.Values {
			if a.Values[i], err = d.ReadString(); err != nil {
				return err
			}
		}
	}
	return nil
}
