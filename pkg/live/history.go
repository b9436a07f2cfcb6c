package live

import (
	"sync"
	"time"
)

// historyEntry stores one sent frame for potential replay.
type historyEntry struct {
	seq    uint64
	frame  []byte
	sentAt time.Time
}

// FrameHistory is a thread-safe ring buffer of recently sent patch
// frames. It keeps a sliding window so a client that missed frames can
// resync by replaying the gap instead of reloading the whole document.
// When full, the oldest entry is overwritten.
type FrameHistory struct {
	mu       sync.RWMutex
	entries  []*historyEntry
	head     int // next write position
	count    int
	capacity int
	minSeq   uint64
	maxSeq   uint64
}

// NewFrameHistory creates a ring buffer holding up to capacity frames.
func NewFrameHistory(capacity int) *FrameHistory {
	if capacity <= 0 {
		capacity = 100
	}
	return &FrameHistory{
		entries:  make([]*historyEntry, capacity),
		capacity: capacity,
	}
}

// Add stores a frame. Frames must be added in ascending sequence order.
// The bytes are copied, so the caller may reuse its buffer.
func (h *FrameHistory) Add(seq uint64, frame []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cp := make([]byte, len(frame))
	copy(cp, frame)

	h.entries[h.head] = &historyEntry{seq: seq, frame: cp, sentAt: time.Now()}
	h.head = (h.head + 1) % h.capacity
	if h.count < h.capacity {
		h.count++
	}

	h.maxSeq = seq
	if h.count == 1 {
		h.minSeq = seq
	} else if h.count == h.capacity {
		// Full buffer: the oldest entry now sits at head.
		if oldest := h.entries[h.head]; oldest != nil {
			h.minSeq = oldest.seq
		}
	}
}

// FramesSince returns the frames with sequence numbers in (afterSeq,
// maxSeq], in order. It returns nil when any frame in that range has
// already been evicted, in which case the client needs a full snapshot.
func (h *FrameHistory) FramesSince(afterSeq uint64) [][]byte {
	h.mu.RLock()
	defer h.mu.RUnlock()

	if h.count == 0 || afterSeq >= h.maxSeq {
		return [][]byte{}
	}
	if afterSeq+1 < h.minSeq {
		return nil
	}

	bySeq := make(map[uint64][]byte, h.count)
	for i := 0; i < h.count; i++ {
		idx := (h.head - h.count + i + h.capacity) % h.capacity
		if e := h.entries[idx]; e != nil {
			bySeq[e.seq] = e.frame
		}
	}

	var frames [][]byte
	for seq := afterSeq + 1; seq <= h.maxSeq; seq++ {
		frame, ok := bySeq[seq]
		if !ok {
			return nil
		}
		frames = append(frames, frame)
	}
	return frames
}

// CanRecover reports whether a client at afterSeq can catch up from
// history alone.
func (h *FrameHistory) CanRecover(afterSeq uint64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.count == 0 {
		return false
	}
	return afterSeq+1 >= h.minSeq
}

// MaxSeq returns the highest stored sequence number, or zero when
// empty.
func (h *FrameHistory) MaxSeq() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.maxSeq
}

// Len returns the number of stored frames.
func (h *FrameHistory) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.count
}
