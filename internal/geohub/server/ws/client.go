package ws

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/logiflow-io/logiflow/pkg/log"
	"github.com/logiflow-io/logiflow/pkg/options"
)

// clientCommand is an inbound frame from a realtime client.
type clientCommand struct {
	Action    string `json:"action"`
	VehicleID string `json:"vehicleId"`
}

// client is one websocket connection. The write pump is the only goroutine
// writing to the connection; the hub hands it messages through a buffered
// channel and drops when the buffer is full.
type client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	opts *options.WsOptions

	send chan *Message
}

func newClient(id string, hub *Hub, conn *websocket.Conn, opts *options.WsOptions) *client {
	return &client{
		id:   id,
		hub:  hub,
		conn: conn,
		opts: opts,
		send: make(chan *Message, opts.SendBuffer),
	}
}

func (c *client) ID() string { return c.id }

// Send queues a message for the write pump without blocking.
func (c *client) Send(m *Message) bool {
	select {
	case c.send <- m:
		return true
	default:
		return false
	}
}

// readPump consumes subscribe/unsubscribe commands until the connection
// drops, then unregisters the client.
func (c *client) readPump() {
	defer func() {
		c.hub.Unregister(c.id)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.opts.ReadLimit)
	pongWait := c.opts.PingInterval * 4 / 3
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("realtime client read error", "client", c.id, "error", err.Error())
			}
			return
		}

		var cmd clientCommand
		if err := json.Unmarshal(payload, &cmd); err != nil {
			log.Debug("malformed client command", "client", c.id)
			continue
		}

		switch cmd.Action {
		case ActionSubscribe:
			if cmd.VehicleID != "" {
				c.hub.Subscribe(c.id, cmd.VehicleID)
			}
		case ActionUnsubscribe:
			if cmd.VehicleID != "" {
				c.hub.Unsubscribe(c.id, cmd.VehicleID)
			}
		default:
			log.Debug("unknown client action", "client", c.id, "action", cmd.Action)
		}
	}
}

// writePump drains the send channel to the connection and keeps the
// connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(c.opts.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
