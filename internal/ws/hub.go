package ws

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait = 200 * time.Millisecond
	sendQueue = 8
)

// client is one socket with its own writer goroutine so a slow reader never
// stalls the broadcaster.
type client struct {
	conn *websocket.Conn
	send chan []byte
}

// hub is a set of clients sharing one broadcast stream.
type hub struct {
	name    string
	mu      sync.RWMutex
	clients map[*client]bool
}

func newHub(name string) *hub {
	return &hub{name: name, clients: map[*client]bool{}}
}

func (h *hub) add(conn *websocket.Conn) *client {
	c := &client{conn: conn, send: make(chan []byte, sendQueue)}
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
	go h.writer(c)
	return c
}

func (h *hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[c] {
		delete(h.clients, c)
		close(c.send)
	}
}

func (h *hub) len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// broadcast queues msg for every client, dropping it for clients that are behind.
func (h *hub) broadcast(msg []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			log.Debug().Str("hub", h.name).Msg("client behind; message dropped")
		}
	}
}

func (h *hub) writer(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			log.Debug().Err(err).Str("hub", h.name).Msg("write")
			go h.remove(c)
			for range c.send {
			}
			return
		}
	}
}

// readUntilClosed discards input and unregisters c once the peer goes away.
func (h *hub) readUntilClosed(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
