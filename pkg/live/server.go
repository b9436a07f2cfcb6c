package live

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vtree-dev/vtree/internal/watch"
	"github.com/vtree-dev/vtree/pkg/htmltree"
	"github.com/vtree-dev/vtree/pkg/snapshot"
	"github.com/vtree-dev/vtree/pkg/wire"
)

// WebSocket message envelope. Every binary message starts with one of
// these bytes; the rest is the wire-encoded payload.
const (
	// MsgSnapshot carries a full tree snapshot plus the sequence
	// number it corresponds to (uvarint seq, then the encoded tree).
	MsgSnapshot byte = 0x01

	// MsgFrame carries one patch frame.
	MsgFrame byte = 0x02

	// MsgResync is sent by a client: uvarint of the last sequence it
	// applied. The server replies with the missed frames or a fresh
	// snapshot.
	MsgResync byte = 0x03
)

// Server watches an HTML file and streams patch frames for every change
// to the connected WebSocket clients.
type Server struct {
	config  Config
	doc     *Document
	store   snapshot.Store
	watcher *watch.Watcher
	metrics *metrics
	logger  *slog.Logger

	upgrader   websocket.Upgrader
	httpServer *http.Server

	mu          sync.Mutex
	clients     map[*client]struct{}
	framesSaved int
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// NewServer loads the source document and prepares the HTTP stack. The
// store may be nil to disable snapshot persistence.
func NewServer(config Config, store snapshot.Store) (*Server, error) {
	config = withDefaults(config)
	if config.Source == "" {
		return nil, errors.New("live: config.Source is required")
	}
	tree, err := loadSource(config.Source)
	if err != nil {
		return nil, err
	}

	m := newMetrics(prometheus.DefaultRegisterer)
	s := &Server{
		config:  config,
		doc:     NewDocument(config.DocumentName, tree, 0, config.HistorySize, m),
		store:   store,
		metrics: m,
		logger:  slog.Default().With("component", "live"),
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
	}

	s.watcher = watch.New(watch.Config{
		Paths:    []string{config.Source},
		Interval: config.PollInterval,
	})
	s.watcher.OnChange(s.onSourceChange)

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Get("/", s.handleIndex)
	r.Get("/ws", s.handleWS)
	r.Get("/healthz", s.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	s.httpServer = &http.Server{
		Addr:              config.Address,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Run serves until the context is cancelled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	go s.watcher.Start(watchCtx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.config.Address, "source", s.config.Source)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	s.closeClients()
	return s.httpServer.Shutdown(shutdownCtx)
}

// onSourceChange re-parses the source and broadcasts the resulting
// frame.
func (s *Server) onSourceChange(c watch.Change) {
	if c.Deleted {
		s.logger.Warn("source deleted, keeping last tree", "path", c.Path)
		return
	}
	tree, err := loadSource(s.config.Source)
	if err != nil {
		s.logger.Error("reload failed", "path", s.config.Source, "error", err)
		return
	}
	frame, err := s.doc.Update(context.Background(), tree)
	if err != nil {
		s.logger.Error("update failed", "error", err)
		return
	}
	if frame == nil {
		return
	}
	s.broadcast(frame)
	s.maybeSnapshot()
}

func (s *Server) broadcast(frame []byte) {
	msg := make([]byte, 0, len(frame)+1)
	msg = append(msg, MsgFrame)
	msg = append(msg, frame...)

	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		select {
		case c.send <- msg:
		default:
			// Slow client: drop it rather than stall the broadcast.
			s.dropClientLocked(c)
		}
	}
	s.metrics.framesSent.Inc()
	s.metrics.frameBytes.Observe(float64(len(frame)))
}

// maybeSnapshot persists the current tree every SnapshotEvery frames.
func (s *Server) maybeSnapshot() {
	if s.store == nil || s.config.SnapshotEvery <= 0 {
		return
	}
	s.mu.Lock()
	s.framesSaved++
	due := s.framesSaved%s.config.SnapshotEvery == 0
	s.mu.Unlock()
	if !due {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	tree := s.doc.Tree()
	seq := s.doc.Seq()
	if err := s.store.Save(ctx, s.config.DocumentName, seq, tree); err != nil {
		s.logger.Error("snapshot save failed", "seq", seq, "error", err)
		return
	}
	if err := s.store.Cleanup(ctx, s.config.DocumentName, s.config.SnapshotKeep); err != nil {
		s.logger.Warn("snapshot cleanup failed", "error", err)
	}
	s.logger.Info("snapshot saved", "seq", seq)
}

// viewerScript is the minimal in-page client: it reloads the page on
// every patch frame. Interpreting frames in the browser is left to real
// clients of the WebSocket endpoint.
const viewerScript = `<script>
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws = new WebSocket(proto + location.host + "/ws");
  ws.binaryType = "arraybuffer";
  var booted = false;
  ws.onmessage = function (ev) {
    var kind = new Uint8Array(ev.data)[0];
    if (kind === 0x01 && !booted) { booted = true; return; }
    location.reload();
  };
})();
</script>`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := htmltree.Render(w, s.doc.Tree()); err != nil {
		s.logger.Error("render failed", "error", err)
		return
	}
	fmt.Fprint(w, "\n", viewerScript)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok","seq":%d}`, s.doc.Seq())
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	c := &client{conn: conn, send: make(chan []byte, 32)}

	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	s.metrics.connectedClients.Inc()
	s.logger.Info("client connected", "remote", r.RemoteAddr)

	s.trySend(c, s.snapshotMessage())

	go s.writePump(c)
	s.readPump(c)
}

// snapshotMessage builds the bootstrap message: type byte, uvarint
// sequence, encoded tree.
func (s *Server) snapshotMessage() []byte {
	treeBytes, seq := s.doc.Snapshot()
	e := wire.NewEncoder()
	e.WriteByte(MsgSnapshot)
	e.WriteUvarint(seq)
	msg := append(e.Bytes(), treeBytes...)
	return msg
}

func (s *Server) readPump(c *client) {
	defer s.dropClient(c)
	c.conn.SetReadLimit(int64(wire.MaxAllocation))
	c.conn.SetReadDeadline(time.Now().Add(s.config.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(s.config.PongTimeout))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		if len(data) == 0 || data[0] != MsgResync {
			continue
		}
		d := wire.NewDecoder(data[1:])
		afterSeq, err := d.ReadUvarint()
		if err != nil {
			continue
		}
		s.resync(c, afterSeq)
	}
}

// resync replays the frames a client missed, or sends a fresh snapshot
// when history no longer covers the gap.
func (s *Server) resync(c *client, afterSeq uint64) {
	frames := s.doc.FramesSince(afterSeq)
	if frames == nil {
		s.logger.Info("resync gap too old, sending snapshot", "after", afterSeq)
		s.trySend(c, s.snapshotMessage())
		return
	}
	s.metrics.resyncsTotal.Inc()
	for _, frame := range frames {
		msg := make([]byte, 0, len(frame)+1)
		msg = append(msg, MsgFrame)
		msg = append(msg, frame...)
		if !s.trySend(c, msg) {
			return
		}
	}
}

// trySend queues a message for one client. The membership check under
// the lock keeps the send from racing a concurrent drop, which closes
// the channel.
func (s *Server) trySend(c *client, msg []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.clients[c]; !ok {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		s.dropClientLocked(c)
		return false
	}
}

func (s *Server) writePump(c *client) {
	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				return
			}
			c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.BinaryMessage, msg); err != nil {
				s.dropClient(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.dropClient(c)
				return
			}
		}
	}
}

func (s *Server) dropClient(c *client) {
	s.mu.Lock()
	s.dropClientLocked(c)
	s.mu.Unlock()
}

func (s *Server) dropClientLocked(c *client) {
	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	close(c.send)
	c.conn.Close()
	s.metrics.connectedClients.Dec()
}

func (s *Server) closeClients() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		s.dropClientLocked(c)
	}
}

// loadSource parses the watched HTML file into a tree.
func loadSource(path string) (*htmltree.Node, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("live: open source: %w", err)
	}
	defer f.Close()
	tree, err := htmltree.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("live: parse source: %w", err)
	}
	return tree, nil
}
