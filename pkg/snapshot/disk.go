package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/vtree-dev/vtree/pkg/htmltree"
	"github.com/vtree-dev/vtree/pkg/wire"
)

const diskExt = ".tree"

// DiskStore keeps snapshots on the local filesystem, one file per
// snapshot named <name>-<seq><ext>. Sequence numbers are zero padded so
// lexical order matches numeric order.
type DiskStore struct {
	dir string

	mu sync.Mutex
}

// NewDiskStore creates the directory if needed and returns a store
// over it.
func NewDiskStore(dir string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskStore{dir: dir}, nil
}

func (s *DiskStore) path(name string, seq uint64) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s-%020d%s", name, seq, diskExt))
}

// Save writes the snapshot through a temp file and renames it into
// place so readers never observe a partial write.
func (s *DiskStore) Save(ctx context.Context, name string, seq uint64, tree *htmltree.Node) error {
	if !validName(name) {
		return ErrBadName
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	final := s.path(name, seq)
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, wire.EncodeTree(tree), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}

func (s *DiskStore) Load(ctx context.Context, name string, seq uint64) (*htmltree.Node, error) {
	if !validName(name) {
		return nil, ErrBadName
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf, err := os.ReadFile(s.path(name, seq))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return wire.DecodeTree(buf)
}

func (s *DiskStore) Latest(ctx context.Context, name string) (*htmltree.Node, uint64, error) {
	metas, err := s.List(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	if len(metas) == 0 {
		return nil, 0, ErrNotFound
	}
	last := metas[len(metas)-1]
	tree, err := s.Load(ctx, name, last.Seq)
	if err != nil {
		return nil, 0, err
	}
	return tree, last.Seq, nil
}

func (s *DiskStore) List(ctx context.Context, name string) ([]Meta, error) {
	if !validName(name) {
		return nil, ErrBadName
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	prefix := name + "-"
	var metas []Meta
	for _, entry := range entries {
		fn := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(fn, prefix) || !strings.HasSuffix(fn, diskExt) {
			continue
		}
		seqStr := strings.TrimSuffix(strings.TrimPrefix(fn, prefix), diskExt)
		seq, err := strconv.ParseUint(seqStr, 10, 64)
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		metas = append(metas, Meta{
			Name:      name,
			Seq:       seq,
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].Seq < metas[j].Seq })
	return metas, nil
}

func (s *DiskStore) Cleanup(ctx context.Context, name string, keep int) error {
	metas, err := s.List(ctx, name)
	if err != nil {
		return err
	}
	if keep < 0 {
		keep = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := 0; i < len(metas)-keep; i++ {
		if err := os.Remove(s.path(name, metas[i].Seq)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
