package admin

import (
	"context"
	"net/http"

	"github.com/gorilla/websocket"

	"chainwatch-sim/internal/logging"
)

// registration hands a new connection and its first message to the hub, so
// the client sees the current view before any broadcast.
type registration struct {
	conn    *websocket.Conn
	initial []byte
}

// hub fans view updates out to every connected browser. Only run writes to
// connections.
type hub struct {
	upgrader  websocket.Upgrader
	clients   map[*websocket.Conn]bool
	register  chan registration
	remove    chan *websocket.Conn
	broadcast chan []byte
}

func newHub() *hub {
	return &hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		clients:   make(map[*websocket.Conn]bool),
		register:  make(chan registration),
		remove:    make(chan *websocket.Conn),
		broadcast: make(chan []byte, 16),
	}
}

func (h *hub) run(ctx context.Context) {
	log := logging.FromContext(ctx)
	for {
		select {
		case <-ctx.Done():
			for conn := range h.clients {
				conn.Close()
			}
			return
		case reg := <-h.register:
			if err := reg.conn.WriteMessage(websocket.TextMessage, reg.initial); err != nil {
				reg.conn.Close()
				continue
			}
			h.clients[reg.conn] = true
		case conn := <-h.remove:
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
		case msg := <-h.broadcast:
			for conn := range h.clients {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					log.Warn("websocket send failed", "remote", conn.RemoteAddr().String(), "err", err)
					delete(h.clients, conn)
					conn.Close()
				}
			}
		}
	}
}

// publish queues msg for every client. A full queue drops the message; the
// next state carries everything anyway.
func (h *hub) publish(msg []byte) {
	select {
	case h.broadcast <- msg:
	default:
	}
}

// serve upgrades the request and registers the connection.
func (h *hub) serve(ctx context.Context, w http.ResponseWriter, r *http.Request, initial []byte) {
	log := logging.FromContext(ctx)
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("websocket upgrade failed", "err", err)
		return
	}
	select {
	case h.register <- registration{conn: conn, initial: initial}:
	case <-ctx.Done():
		conn.Close()
		return
	}

	go func() {
		defer func() {
			select {
			case h.remove <- conn:
			case <-ctx.Done():
			}
		}()
		for {
			// browsers only listen; reads detect the close
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					log.Warn("websocket error", "err", err)
				}
				return
			}
		}
	}()
}
