package realtime

import (
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"

	"teamhub/utils"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096
	sendBuffer     = 64
)

// Client is one authenticated socket connection.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uint
	send   chan []byte
	done   chan struct{}
	once   sync.Once
}

// ServeWS runs the connection lifecycle: authenticate the handshake, join
// the per-user room, then pump messages until the socket drops. A missing
// or invalid token closes the connection immediately; there are no
// anonymous sockets.
func (h *Hub) ServeWS(conn *websocket.Conn) {
	token := conn.Query("token")
	if token == "" {
		if auth := conn.Headers("Authorization"); strings.HasPrefix(auth, "Bearer ") {
			token = strings.TrimPrefix(auth, "Bearer ")
		}
	}
	claims, err := utils.ParseJWTToken(token)
	if token == "" || err != nil {
		_ = conn.WriteJSON(Envelope{Event: "error", Payload: map[string]string{
			"error": "authentication required",
		}})
		_ = conn.Close()
		return
	}

	c := &Client{
		hub:    h,
		conn:   conn,
		userID: claims.UserID,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
	h.register(c)
	// Direct notifications are addressed to this room.
	h.join(c, UserRoom(c.userID))

	h.log.WithField("user_id", c.userID).Debug("socket connected")

	go c.writePump()
	c.readLoop()
}

// trySend queues a frame without blocking. A client whose buffer is full
// is disconnected; it can reconnect and resync, which is cheaper than
// stalling fan-out for everyone else.
func (c *Client) trySend(data []byte) {
	select {
	case <-c.done:
	case c.send <- data:
	default:
		c.close()
	}
}

func (c *Client) close() {
	c.once.Do(func() {
		c.hub.unregister(c)
		close(c.done)
		if c.conn != nil {
			_ = c.conn.Close()
		}
		c.hub.log.WithField("user_id", c.userID).Debug("socket disconnected")
	})
}

func (c *Client) readLoop() {
	defer c.close()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		c.handleMessage(data)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()
	for {
		select {
		case data := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.done:
			return
		}
	}
}

// clientMessage is the inbound frame. Clients only ever send room
// management and ephemeral typing signals; durable writes go through HTTP.
type clientMessage struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type roomRef struct {
	Type string `json:"type"`
	ID   uint   `json:"id"`
}

type typingSignal struct {
	ChannelID uint   `json:"channelId"`
	UserID    uint   `json:"userId"`
	UserName  string `json:"userName"`
}

func (c *Client) handleMessage(data []byte) {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	switch msg.Event {
	case "joinRoom":
		if ref, ok := decodeRoomRef(msg.Data); ok {
			c.hub.join(c, RoomKey(ref.Type, ref.ID))
		}
	case "leaveRoom":
		if ref, ok := decodeRoomRef(msg.Data); ok {
			c.hub.leave(c, RoomKey(ref.Type, ref.ID))
		}
	case "join-channel":
		// Legacy alias: the payload is a bare channel id.
		if id, ok := decodeID(msg.Data); ok {
			c.hub.join(c, ChannelRoom(id))
		}
	case "leave-channel":
		if id, ok := decodeID(msg.Data); ok {
			c.hub.leave(c, ChannelRoom(id))
		}
	case "typing":
		// Fire-and-forget: relayed to the channel room, never persisted.
		var t typingSignal
		if err := json.Unmarshal(msg.Data, &t); err == nil && t.ChannelID > 0 {
			c.hub.Broadcast(ChannelRoom(t.ChannelID), "user-typing", t)
		}
	}
}

func decodeRoomRef(data []byte) (roomRef, bool) {
	var ref roomRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return ref, false
	}
	return ref, ValidRoomType(ref.Type) && ref.ID > 0
}

func decodeID(data []byte) (uint, bool) {
	var id uint
	if err := json.Unmarshal(data, &id); err != nil || id == 0 {
		return 0, false
	}
	return id, true
}
