package httpapi

import (
	"sync"

	"github.com/gorilla/websocket"
)

// liveConn serializes writes to one subscribed websocket connection;
// gorilla/websocket forbids concurrent writers on the same conn.
type liveConn struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (c *liveConn) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// streamRegistry maps a client-chosen stream ID to the websocket
// connection currently subscribed to it via GET /v1/run/{id}/stream,
// so a POST /v1/run started with a matching streamID can route its
// per-tick and event frames there as the run progresses.
type streamRegistry struct {
	mu    sync.Mutex
	conns map[string]*liveConn
}

func newStreamRegistry() *streamRegistry {
	return &streamRegistry{conns: map[string]*liveConn{}}
}

func (r *streamRegistry) register(id string, conn *websocket.Conn) *liveConn {
	lc := &liveConn{conn: conn}
	r.mu.Lock()
	r.conns[id] = lc
	r.mu.Unlock()
	return lc
}

func (r *streamRegistry) unregister(id string) {
	r.mu.Lock()
	delete(r.conns, id)
	r.mu.Unlock()
}

func (r *streamRegistry) get(id string) *liveConn {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.conns[id]
}
