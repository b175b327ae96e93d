package collab

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
	sendBuffer = 256
)

var (
	errInvalidMessage = errors.New("invalid message")
	errWrongDiagram   = errors.New("message addressed to another diagram")
)

// Client is one websocket connection to a diagram room. Frames read from it
// are stamped with the connection's user, client and diagram.
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	send        chan []byte
	UserID      string
	DisplayName string
	DiagramID   string
	ClientID    string

	mu      sync.Mutex
	closed  bool
	lagging bool
}

func NewClient(hub *Hub, conn *websocket.Conn, userID, displayName, diagramID, clientID string) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		send:        make(chan []byte, sendBuffer),
		UserID:      userID,
		DisplayName: displayName,
		DiagramID:   diagramID,
		ClientID:    clientID,
	}
}

// ReadPump hands decoded frames to the hub until the connection closes,
// then leaves the room.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	c.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
			default:
				slog.Debug("read error", "error", err, "user", c.UserID, "diagram", c.DiagramID)
			}
			return
		}

		msg, err := c.decode(data)
		if err != nil {
			slog.Warn("rejected message", "error", err, "user", c.UserID, "diagram", c.DiagramID)
			c.SendError(err.Error())
			continue
		}
		c.hub.handleMessage(c, msg)
	}
}

// decode parses a frame and stamps it with the sender. A frame may omit the
// diagram id but must not name another room.
func (c *Client) decode(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, errInvalidMessage
	}
	if msg.DiagramID != "" && msg.DiagramID != c.DiagramID {
		return nil, errWrongDiagram
	}

	msg.UserID = c.UserID
	msg.ClientID = c.ClientID
	msg.DiagramID = c.DiagramID
	return &msg, nil
}

// WritePump writes queued frames and pings the peer. It returns when the
// send queue is closed. A lagging client is closed with a status that asks
// it to reconnect.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		if c.isLagging() {
			c.conn.Close(websocket.StatusTryAgainLater, "too slow, reconnect to resync")
			return
		}
		c.conn.Close(websocket.StatusNormalClosure, "")
	}()

	for {
		select {
		case frame, ok := <-c.send:
			if !ok {
				return
			}

			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Write(writeCtx, websocket.MessageText, frame)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "user", c.UserID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := c.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// Send queues msg for writing.
func (c *Client) Send(msg *Message) {
	frame, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err, "type", msg.Type)
		return
	}
	c.enqueue(frame, msg.Type)
}

func (c *Client) SendError(reason string) {
	c.Send(newMessage(TypeError, ErrorPayload{Reason: reason}))
}

// enqueue queues an encoded frame. A client whose queue is full has missed
// room traffic and its copy of the diagram is stale, so the queue is closed
// and the client disconnected instead of dropping the frame.
func (c *Client) enqueue(frame []byte, msgType string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	select {
	case c.send <- frame:
	default:
		slog.Warn("client lagging, disconnecting", "user", c.UserID, "diagram", c.DiagramID, "type", msgType)
		c.lagging = true
		c.closed = true
		close(c.send)
	}
}

func (c *Client) isLagging() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lagging
}

// close ends the send queue, which stops WritePump.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}
