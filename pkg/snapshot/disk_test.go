package snapshot

import (
	"context"
	"errors"
	"testing"

	"github.com/vtree-dev/vtree/pkg/htmltree"
)

func newDiskStore(t *testing.T) *DiskStore {
	t.Helper()
	s, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func tree(text string) *htmltree.Node {
	return htmltree.Element("div", nil, htmltree.Text(text))
}

func TestDiskSaveLoad(t *testing.T) {
	ctx := context.Background()
	s := newDiskStore(t)
	want := tree("hello")
	if err := s.Save(ctx, "doc", 3, want); err != nil {
		t.Fatal(err)
	}
	got, err := s.Load(ctx, "doc", 3)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equals(want) {
		t.Error("loaded tree differs from saved")
	}
}

func TestDiskLoadMissing(t *testing.T) {
	s := newDiskStore(t)
	if _, err := s.Load(context.Background(), "doc", 9); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestDiskLatestAndList(t *testing.T) {
	ctx := context.Background()
	s := newDiskStore(t)
	for _, seq := range []uint64{5, 1, 12} {
		if err := s.Save(ctx, "doc", seq, tree("v")); err != nil {
			t.Fatal(err)
		}
	}
	metas, err := s.List(ctx, "doc")
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 3 || metas[0].Seq != 1 || metas[2].Seq != 12 {
		t.Fatalf("metas = %+v", metas)
	}
	_, seq, err := s.Latest(ctx, "doc")
	if err != nil {
		t.Fatal(err)
	}
	if seq != 12 {
		t.Errorf("latest seq = %d", seq)
	}
}

func TestDiskListIsolatesDocuments(t *testing.T) {
	ctx := context.Background()
	s := newDiskStore(t)
	if err := s.Save(ctx, "a", 1, tree("a")); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(ctx, "b", 2, tree("b")); err != nil {
		t.Fatal(err)
	}
	metas, err := s.List(ctx, "a")
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 1 || metas[0].Seq != 1 {
		t.Errorf("metas = %+v", metas)
	}
}

func TestDiskCleanupKeepsNewest(t *testing.T) {
	ctx := context.Background()
	s := newDiskStore(t)
	for seq := uint64(1); seq <= 5; seq++ {
		if err := s.Save(ctx, "doc", seq, tree("v")); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Cleanup(ctx, "doc", 2); err != nil {
		t.Fatal(err)
	}
	metas, err := s.List(ctx, "doc")
	if err != nil {
		t.Fatal(err)
	}
	if len(metas) != 2 || metas[0].Seq != 4 || metas[1].Seq != 5 {
		t.Errorf("metas = %+v", metas)
	}
	if _, err := s.Load(ctx, "doc", 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("old snapshot still loadable: %v", err)
	}
}

func TestDiskRejectsBadNames(t *testing.T) {
	ctx := context.Background()
	s := newDiskStore(t)
	for _, name := range []string{"", "../etc", "a/b", "a b"} {
		if err := s.Save(ctx, name, 1, tree("x")); !errors.Is(err, ErrBadName) {
			t.Errorf("Save(%q) err = %v", name, err)
		}
	}
}
