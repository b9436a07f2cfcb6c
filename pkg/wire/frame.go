package wire

import (
	"fmt"

	"github.com/vtree-dev/vtree/pkg/htmltree"
	"github.com/vtree-dev/vtree/pkg/vtree"
)

// Format version carried in the first byte of every frame and tree
// snapshot.
const Version byte = 0x01

// Frame is a batch of patches with a sequence number. Clients apply
// frames strictly in sequence order.
type Frame struct {
	Seq     uint64
	Patches []htmltree.Patch
}

// EncodeFrame encodes a frame to bytes.
func EncodeFrame(f *Frame) []byte {
	e := NewEncoder()
	e.WriteByte(Version)
	e.WriteUvarint(f.Seq)
	e.WriteUvarint(uint64(len(f.Patches)))
	for i := range f.Patches {
		encodePatch(e, &f.Patches[i])
	}
	return e.Bytes()
}

// DecodeFrame decodes a frame, rejecting unknown versions and trailing
// bytes.
func DecodeFrame(buf []byte) (*Frame, error) {
	d := NewDecoder(buf)
	version, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, fmt.Errorf("wire: unsupported frame version 0x%02x", version)
	}
	f := &Frame{}
	if f.Seq, err = d.ReadUvarint(); err != nil {
		return nil, err
	}
	count, err := d.ReadCount()
	if err != nil {
		return nil, err
	}
	if count > 0 {
		f.Patches = make([]htmltree.Patch, count)
		for i := range f.Patches {
			if err := decodePatch(d, &f.Patches[i]); err != nil {
				return nil, err
			}
		}
	}
	if !d.EOF() {
		return nil, ErrTrailingData
	}
	return f, nil
}

// EncodeTree encodes a whole tree snapshot to bytes.
func EncodeTree(n *htmltree.Node) []byte {
	e := NewEncoder()
	e.WriteByte(Version)
	EncodeNode(e, n)
	return e.Bytes()
}

// DecodeTree decodes a tree snapshot.
func DecodeTree(buf []byte) (*htmltree.Node, error) {
	d := NewDecoder(buf)
	version, err := d.ReadByte()
	if err != nil {
		return nil, err
	}
	if version != Version {
		return nil, fmt.Errorf("wire: unsupported snapshot version 0x%02x", version)
	}
	n, err := DecodeNode(d)
	if err != nil {
		return nil, err
	}
	if !d.EOF() {
		return nil, ErrTrailingData
	}
	return n, nil
}

func encodePatch(e *Encoder, p *htmltree.Patch) {
	e.WriteByte(byte(p.Op))
	encodePath(e, p.Path)
	switch p.Op {
	case vtree.OpInsertBeforeNode, vtree.OpInsertAfterNode,
		vtree.OpAppendChildren, vtree.OpReplaceNode:
		e.WriteUvarint(uint64(len(p.Nodes)))
		for _, n := range p.Nodes {
			EncodeNode(e, n)
		}
	case vtree.OpMoveBeforeNode, vtree.OpMoveAfterNode:
		e.WriteUvarint(uint64(len(p.MovePaths)))
		for _, mp := range p.MovePaths {
			encodePath(e, mp)
		}
	case vtree.OpAddAttributes, vtree.OpRemoveAttributes:
		e.WriteUvarint(uint64(len(p.Attrs)))
		for _, a := range p.Attrs {
			encodeAttribute(e, a)
		}
	case vtree.OpChangeLeaf:
		e.WriteBool(p.Leaf.Comment)
		e.WriteString(p.Leaf.Text)
	}
}

func decodePatch(d *Decoder, p *htmltree.Patch) error {
	op, err := d.ReadByte()
	if err != nil {
		return err
	}
	p.Op = vtree.PatchOp(op)
	if p.Path, err = decodePath(d); err != nil {
		return err
	}
	switch p.Op {
	case vtree.OpInsertBeforeNode, vtree.OpInsertAfterNode,
		vtree.OpAppendChildren, vtree.OpReplaceNode:
		count, err := d.ReadCount()
		if err != nil {
			return err
		}
		p.Nodes = make([]*htmltree.Node, count)
		for i := range p.Nodes {
			if p.Nodes[i], err = DecodeNode(d); err != nil {
				return err
			}
		}
	case vtree.OpMoveBeforeNode, vtree.OpMoveAfterNode:
		count, err := d.ReadCount()
		if err != nil {
			return err
		}
		p.MovePaths = make([]vtree.TreePath, count)
		for i := range p.MovePaths {
			if p.MovePaths[i], err = decodePath(d); err != nil {
				return err
			}
		}
	case vtree.OpAddAttributes, vtree.OpRemoveAttributes:
		count, err := d.ReadCount()
		if err != nil {
			return err
		}
		p.Attrs = make([]*htmltree.Attribute, count)
		for i := range p.Attrs {
			p.Attrs[i] = &htmltree.Attribute{}
			if err := decodeAttribute(d, p.Attrs[i]); err != nil {
				return err
			}
		}
	case vtree.OpRemoveNode:
		// Path only.
	case vtree.OpChangeLeaf:
		var leaf htmltree.Leaf
		if leaf.Comment, err = d.ReadBool(); err != nil {
			return err
		}
		if leaf.Text, err = d.ReadString(); err != nil {
			return err
		}
		p.Leaf = leaf
	default:
		return fmt.Errorf("wire: unknown patch op 0x%02x", op)
	}
	return nil
}

func encodePath(e *Encoder, p vtree.TreePath) {
	e.WriteUvarint(uint64(len(p)))
	for _, idx := range p {
		e.WriteUvarint(uint64(idx))
	}
}

func decodePath(d *Decoder) (vtree.TreePath, error) {
	count, err := d.ReadCount()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return vtree.TreePath{}, nil
	}
	p := make(vtree.TreePath, count)
	for i := range p {
		v, err := d.ReadUvarint()
		if err != nil {
			return nil, err
		}
		p[i] = int(v)
	}
	return p, nil
}
