package live

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vtree-dev/vtree/pkg/htmltree"
	"github.com/vtree-dev/vtree/pkg/wire"
)

const tracerName = "vtree/live"

// Document owns the current tree of one served document and produces
// the patch frames that carry each update to clients.
type Document struct {
	name    string
	history *FrameHistory
	metrics *metrics
	tracer  trace.Tracer
	logger  *slog.Logger

	mu   sync.RWMutex
	tree *htmltree.Node
	seq  uint64
}

// NewDocument creates a document starting from the given tree at
// sequence startSeq.
func NewDocument(name string, initial *htmltree.Node, startSeq uint64, historySize int, m *metrics) *Document {
	return &Document{
		name:    name,
		history: NewFrameHistory(historySize),
		metrics: m,
		tracer:  otel.Tracer(tracerName),
		logger:  slog.Default().With("component", "document", "document", name),
		tree:    initial,
		seq:     startSeq,
	}
}

// Tree returns a copy of the current tree.
func (d *Document) Tree() *htmltree.Node {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tree.Clone()
}

// Seq returns the current frame sequence number.
func (d *Document) Seq() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.seq
}

// Snapshot returns the wire-encoded current tree and its sequence
// number, for client bootstrap and the snapshot store.
func (d *Document) Snapshot() ([]byte, uint64) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return wire.EncodeTree(d.tree), d.seq
}

// Update diffs the current tree against next and, when the trees
// differ, advances the sequence number, records the encoded frame in
// history and returns it. A nil frame means the update was a no-op.
func (d *Document) Update(ctx context.Context, next *htmltree.Node) ([]byte, error) {
	_, span := d.tracer.Start(ctx, "document.update")
	defer span.End()

	d.mu.Lock()
	defer d.mu.Unlock()

	start := time.Now()
	patches := htmltree.Diff(d.tree, next)
	elapsed := time.Since(start)

	if d.metrics != nil {
		d.metrics.diffsTotal.Inc()
		d.metrics.diffDuration.Observe(elapsed.Seconds())
		d.metrics.patchesEmitted.Add(float64(len(patches)))
	}
	span.SetAttributes(
		attribute.Int("patch.count", len(patches)),
		attribute.String("document", d.name),
	)

	if len(patches) == 0 {
		return nil, nil
	}

	d.seq++
	frame := wire.EncodeFrame(&wire.Frame{Seq: d.seq, Patches: patches})
	// The frame borrows nodes from next; record it before next becomes
	// the current tree so the history copy is taken while both trees
	// are alive.
	d.history.Add(d.seq, frame)
	d.tree = next

	span.SetAttributes(
		attribute.Int64("frame.seq", int64(d.seq)),
		attribute.Int("frame.bytes", len(frame)),
	)
	d.logger.Debug("document updated",
		"seq", d.seq,
		"patches", len(patches),
		"bytes", len(frame),
		"diff", elapsed,
	)
	return frame, nil
}

// FramesSince returns the missed frames for a client that last applied
// afterSeq, or nil when history no longer covers the gap.
func (d *Document) FramesSince(afterSeq uint64) [][]byte {
	return d.history.FramesSince(afterSeq)
}
