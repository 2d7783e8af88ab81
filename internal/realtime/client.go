package realtime

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBufferSize = 64
)

// Client is one live websocket connection. The (user, tenant) pair is bound
// at handshake time and never changes; switching tenants requires a fresh
// connection.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	UserID   uuid.UUID
	TenantID uuid.UUID
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, tenantID uuid.UUID) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, sendBufferSize),
		UserID:   userID,
		TenantID: tenantID,
	}
}

type clientMessage struct {
	Type    string `json:"type"`
	BoardID string `json:"board_id"`
}

// ReadPump consumes join_board/leave_board messages until the transport
// drops. Subscription management is advisory: malformed or empty board ids
// are ignored without a reply, authorization happened at the handshake.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(raw, &msg); err != nil {
			continue
		}

		boardID, err := uuid.Parse(strings.TrimSpace(msg.BoardID))
		if err != nil {
			continue
		}

		switch msg.Type {
		case "join_board":
			c.hub.JoinBoard(c, boardID)
		case "leave_board":
			c.hub.LeaveBoard(c, boardID)
		}
	}
}

// WritePump forwards broadcast events to the socket and keeps the
// connection alive with pings. It exits when the hub closes the send
// channel or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
