// Package live serves a watched HTML document over HTTP and streams
// binary patch frames to connected WebSocket clients whenever the
// document changes on disk. Clients bootstrap from a full tree snapshot
// and then apply frames in sequence order; a frame history ring buffer
// lets a briefly disconnected client resync without a full reload.
package live

import (
	"net/http"
	"time"
)

// Config configures the live server.
type Config struct {
	// Address is the listen address.
	Address string

	// Source is the HTML file served and watched for changes.
	Source string

	// DocumentName identifies the document in the snapshot store.
	DocumentName string

	// PollInterval is the file watcher polling period.
	PollInterval time.Duration

	// HistorySize is the number of patch frames kept for client
	// resync.
	HistorySize int

	// SnapshotEvery persists a full tree snapshot every N frames.
	// Zero disables periodic snapshots.
	SnapshotEvery int

	// SnapshotKeep is how many snapshots Cleanup retains.
	SnapshotKeep int

	// CheckOrigin validates the Origin header of WebSocket upgrades.
	CheckOrigin func(r *http.Request) bool

	// ReadBufferSize and WriteBufferSize size the WebSocket buffers.
	ReadBufferSize  int
	WriteBufferSize int

	// WriteTimeout bounds a single WebSocket write.
	WriteTimeout time.Duration

	// PingInterval is the keepalive ping period. Must be shorter than
	// PongTimeout.
	PingInterval time.Duration

	// PongTimeout is how long to wait for a pong before dropping the
	// client.
	PongTimeout time.Duration

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default server configuration.
func DefaultConfig() Config {
	return Config{
		Address:         ":8080",
		DocumentName:    "default",
		PollInterval:    200 * time.Millisecond,
		HistorySize:     100,
		SnapshotEvery:   0,
		SnapshotKeep:    5,
		CheckOrigin:     nil, // same-origin only
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		WriteTimeout:    10 * time.Second,
		PingInterval:    30 * time.Second,
		PongTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// withDefaults fills in defaults for unset fields.
func withDefaults(c Config) Config {
	d := DefaultConfig()
	if c.Address == "" {
		c.Address = d.Address
	}
	if c.DocumentName == "" {
		c.DocumentName = d.DocumentName
	}
	if c.PollInterval == 0 {
		c.PollInterval = d.PollInterval
	}
	if c.HistorySize == 0 {
		c.HistorySize = d.HistorySize
	}
	if c.SnapshotKeep == 0 {
		c.SnapshotKeep = d.SnapshotKeep
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = d.WriteBufferSize
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.PingInterval == 0 {
		c.PingInterval = d.PingInterval
	}
	if c.PongTimeout == 0 {
		c.PongTimeout = d.PongTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = d.ShutdownTimeout
	}
	return c
}
