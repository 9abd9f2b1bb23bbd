package api

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"campuseats/pkg/logger"
	"campuseats/pkg/metrics"
	"campuseats/pkg/order"
)

const (
	writeWait     = 5 * time.Second
	clientBuffer  = 16
	maxHubClients = 64
)

// --- Command types ---

type hubCmd interface{ hubCmd() }

type cmdRegister struct {
	conn  *websocket.Conn
	errCh chan bool
}

func (cmdRegister) hubCmd() {}

type cmdUnregister struct {
	conn *websocket.Conn
}

func (cmdUnregister) hubCmd() {}

type cmdBroadcast struct {
	data []byte
}

func (cmdBroadcast) hubCmd() {}

type cmdClientCount struct {
	replyCh chan int
}

func (cmdClientCount) hubCmd() {}

type cmdStop struct{}

func (cmdStop) hubCmd() {}

// --- Per-connection writer ---

type clientWriter struct {
	conn   *websocket.Conn
	sendCh chan []byte
	done   chan struct{}
}

func newClientWriter(conn *websocket.Conn) *clientWriter {
	cw := &clientWriter{
		conn:   conn,
		sendCh: make(chan []byte, clientBuffer),
		done:   make(chan struct{}),
	}
	go cw.run()
	return cw
}

func (cw *clientWriter) run() {
	for {
		select {
		case msg := <-cw.sendCh:
			_ = cw.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := cw.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-cw.done:
			return
		}
	}
}

func (cw *clientWriter) stop() {
	close(cw.done)
	_ = cw.conn.Close()
}

// --- Hub ---

// Hub pushes session snapshots to websocket clients. A single goroutine
// owns the client set; OnChange may be called from any goroutine.
type Hub struct {
	cmdCh    chan hubCmd
	done     chan struct{}
	clients  map[*websocket.Conn]*clientWriter
	latest   []byte
	log      *logger.Logger
	upgrader websocket.Upgrader

	mu          sync.Mutex
	lastVersion uint64
	lastScreen  order.Screen
}

// NewHub starts a hub. initial is sent to every client on connect until the
// first change arrives.
func NewHub(log *logger.Logger, initial order.Snapshot) *Hub {
	h := &Hub{
		cmdCh:      make(chan hubCmd, 256),
		done:       make(chan struct{}),
		clients:    make(map[*websocket.Conn]*clientWriter),
		log:        log,
		lastScreen: initial.Screen,
	}
	h.latest, _ = json.Marshal(initial)
	metrics.CreditsAvailable.Set(float64(initial.Credits))
	go h.run()
	return h
}

func (h *Hub) run() {
	defer close(h.done)
	for cmd := range h.cmdCh {
		switch c := cmd.(type) {
		case cmdRegister:
			if len(h.clients) >= maxHubClients {
				c.errCh <- false
				continue
			}
			cw := newClientWriter(c.conn)
			h.clients[c.conn] = cw
			cw.sendCh <- h.latest
			metrics.WebSocketClients.Set(float64(len(h.clients)))
			c.errCh <- true
		case cmdUnregister:
			if cw, ok := h.clients[c.conn]; ok {
				cw.stop()
				delete(h.clients, c.conn)
				metrics.WebSocketClients.Set(float64(len(h.clients)))
			}
		case cmdBroadcast:
			h.latest = c.data
			for conn, cw := range h.clients {
				select {
				case cw.sendCh <- c.data:
				default:
					// slow client; drop it rather than block the hub
					cw.stop()
					delete(h.clients, conn)
				}
			}
			metrics.WebSocketClients.Set(float64(len(h.clients)))
		case cmdClientCount:
			c.replyCh <- len(h.clients)
		case cmdStop:
			for conn, cw := range h.clients {
				cw.stop()
				delete(h.clients, conn)
			}
			metrics.WebSocketClients.Set(0)
			return
		}
	}
}

func (h *Hub) send(cmd hubCmd) bool {
	select {
	case h.cmdCh <- cmd:
		return true
	case <-h.done:
		return false
	}
}

// OnChange is the session change hook. Out-of-order snapshots (older
// version than one already seen) are dropped.
func (h *Hub) OnChange(snap order.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		h.log.Error(context.Background(), "marshal snapshot", "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if snap.Version <= h.lastVersion {
		return
	}
	h.lastVersion = snap.Version
	if snap.Screen != h.lastScreen {
		metrics.ScreenTransitions.WithLabelValues(snap.Screen.String()).Inc()
		h.lastScreen = snap.Screen
	}
	metrics.CreditsAvailable.Set(float64(snap.Credits))
	h.send(cmdBroadcast{data: data})
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	reply := make(chan int, 1)
	if !h.send(cmdClientCount{replyCh: reply}) {
		return 0
	}
	select {
	case n := <-reply:
		return n
	case <-h.done:
		return 0
	}
}

// Stop disconnects all clients and ends the hub goroutine.
func (h *Hub) Stop() {
	h.send(cmdStop{})
	<-h.done
}

// ServeWS upgrades the request and streams snapshots until the client goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn(r.Context(), "websocket upgrade failed", "error", err)
		return
	}

	accepted := make(chan bool, 1)
	ok := h.send(cmdRegister{conn: conn, errCh: accepted})
	if ok {
		select {
		case ok = <-accepted:
		case <-h.done:
			ok = false
		}
	}
	if !ok {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseTryAgainLater, "too many clients"),
			time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}

	// Clients never send anything meaningful; reading detects disconnects.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
	h.send(cmdUnregister{conn: conn})
}
