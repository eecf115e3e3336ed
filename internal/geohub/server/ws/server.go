package ws

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/logiflow-io/logiflow/pkg/log"
	"github.com/logiflow-io/logiflow/pkg/options"
)

// Server upgrades HTTP requests into realtime channel connections.
// It mounts onto the main HTTP router rather than owning its own listener.
type Server struct {
	hub  *Hub
	opts *options.WsOptions

	upgrader websocket.Upgrader
}

// NewServer creates the websocket endpoint over the given hub.
func NewServer(hub *Hub, opts *options.WsOptions) *Server {
	return &Server{
		hub:  hub,
		opts: opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			// Authorization happens at the upstream gateway.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Hub exposes the underlying hub, which also serves as the fan-out port.
func (s *Server) Hub() *Hub { return s.hub }

// ServeHTTP upgrades the connection, registers the client and starts its
// read/write pumps.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "error", err.Error())
		return
	}

	c := newClient(uuid.NewString(), s.hub, conn, s.opts)

	go c.writePump()

	// Register after the write pump is draining so the snapshot cannot
	// fill the send buffer unread.
	s.hub.Register(r.Context(), c)

	go c.readPump()
}
