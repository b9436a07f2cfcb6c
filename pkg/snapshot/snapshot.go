// Package snapshot persists wire-encoded tree snapshots so a document's
// state survives restarts and late-joining clients can bootstrap from
// the latest full tree instead of replaying every patch frame.
package snapshot

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vtree-dev/vtree/pkg/htmltree"
)

// Store errors.
var (
	ErrNotFound = errors.New("snapshot: not found")
	ErrBadName  = errors.New("snapshot: invalid document name")
)

// Meta describes one stored snapshot.
type Meta struct {
	Name      string
	Seq       uint64
	Size      int64
	CreatedAt time.Time
}

// Store persists tree snapshots keyed by document name and frame
// sequence number.
type Store interface {
	// Save stores the tree as the snapshot at seq for the named
	// document.
	Save(ctx context.Context, name string, seq uint64, tree *htmltree.Node) error

	// Load returns the snapshot stored at seq, or ErrNotFound.
	Load(ctx context.Context, name string, seq uint64) (*htmltree.Node, error)

	// Latest returns the snapshot with the highest sequence number and
	// that number, or ErrNotFound when the document has none.
	Latest(ctx context.Context, name string) (*htmltree.Node, uint64, error)

	// List returns the document's snapshots ordered by ascending
	// sequence number.
	List(ctx context.Context, name string) ([]Meta, error)

	// Cleanup deletes all but the keep most recent snapshots.
	Cleanup(ctx context.Context, name string, keep int) error
}

// validName rejects document names that could escape a key prefix or a
// directory.
func validName(name string) bool {
	if name == "" || len(name) > 128 {
		return false
	}
	return !strings.ContainsAny(name, "/\\:*?\"<>| \t\n")
}
