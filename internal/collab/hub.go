package collab

import (
	"encoding/json"
	"log/slog"
	"sync"
)

// Room is the set of clients connected to one diagram.
type Room struct {
	diagramID string
	clients   map[string]*Client // clientID -> client
	presence  *PresenceManager
}

func NewRoom(diagramID string) *Room {
	return &Room{
		diagramID: diagramID,
		clients:   make(map[string]*Client),
		presence:  NewPresenceManager(),
	}
}

// Hub routes messages between the clients of each diagram room and applies
// their operations to diagrams.
type Hub struct {
	mu         sync.RWMutex
	rooms      map[string]*Room // diagramID -> room
	diagrams   Diagrams
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	stopOnce   sync.Once
}

func NewHub(diagrams Diagrams) *Hub {
	return &Hub{
		rooms:      make(map[string]*Room),
		diagrams:   diagrams,
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run serves registrations until Stop is called.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.addClient(client)
		case client := <-h.unregister:
			h.removeClient(client)
		case <-h.done:
			h.closeAll()
			return
		}
	}
}

// Stop ends Run and closes every client.
func (h *Hub) Stop() {
	h.stopOnce.Do(func() { close(h.done) })
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		client.close()
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.DiagramID]
	if !ok {
		room = NewRoom(client.DiagramID)
		h.rooms[client.DiagramID] = room
	}
	room.clients[client.ClientID] = client
	h.mu.Unlock()

	client.Send(newMessage(TypeWelcome, WelcomePayload{
		ClientID: client.ClientID,
		UserID:   client.UserID,
	}))
	h.sendDocument(client)

	// Send current presence state to new client
	client.Send(room.presence.StateMessage())

	// Broadcast join to other clients
	joinMsg := newMessage(TypePresenceJoin, PresenceJoinPayload{
		UserID:      client.UserID,
		DisplayName: client.DisplayName,
	})
	joinMsg.UserID = client.UserID
	h.broadcastToRoom(client.DiagramID, joinMsg, client.ClientID)

	slog.Info("client joined", "user", client.UserID, "diagram", client.DiagramID)
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	room, ok := h.rooms[client.DiagramID]
	if !ok {
		h.mu.Unlock()
		return
	}
	if _, ok := room.clients[client.ClientID]; !ok {
		h.mu.Unlock()
		return
	}

	delete(room.clients, client.ClientID)
	client.close()
	if !room.hasUser(client.UserID) {
		room.presence.Remove(client.UserID)
	}

	if len(room.clients) == 0 {
		delete(h.rooms, client.DiagramID)
	}
	h.mu.Unlock()

	// Broadcast leave to remaining clients
	leaveMsg := newMessage(TypePresenceLeave, PresenceLeavePayload{
		UserID: client.UserID,
	})
	leaveMsg.UserID = client.UserID
	h.broadcastToRoom(client.DiagramID, leaveMsg, "")

	slog.Info("client left", "user", client.UserID, "diagram", client.DiagramID)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, room := range h.rooms {
		for _, c := range room.clients {
			c.close()
		}
		delete(h.rooms, id)
	}
}

func (h *Hub) handleMessage(sender *Client, msg *Message) {
	switch msg.Type {
	case TypePresenceUpdate:
		h.handlePresenceUpdate(sender, msg)
	case TypeOpSubmit:
		h.handleOpSubmit(sender, msg)
	case TypeHitQuery:
		h.handleHitQuery(sender, msg)
	case TypeDocSync:
		h.sendDocument(sender)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "user", sender.UserID)
		sender.SendError("unknown message type " + msg.Type)
	}
}

func (h *Hub) handlePresenceUpdate(sender *Client, msg *Message) {
	var presence PresencePayload
	if err := json.Unmarshal(msg.Payload, &presence); err != nil {
		slog.Warn("invalid presence payload", "error", err)
		return
	}

	presence.DisplayName = sender.DisplayName
	presence.Hover = h.hover(sender.DiagramID, presence.Cursor)

	h.mu.RLock()
	room, ok := h.rooms[sender.DiagramID]
	h.mu.RUnlock()
	if !ok {
		return
	}

	room.presence.Update(sender.UserID, &presence)

	// Broadcast to every client in the room; the sender learns its hover
	outMsg := newMessage(TypePresenceUpdate, presence)
	outMsg.UserID = sender.UserID
	h.broadcastToRoom(sender.DiagramID, outMsg, "")
}

func (h *Hub) broadcastToRoom(diagramID string, msg *Message, excludeClientID string) {
	h.mu.RLock()
	room, ok := h.rooms[diagramID]
	if !ok {
		h.mu.RUnlock()
		return
	}

	clients := make([]*Client, 0, len(room.clients))
	for _, c := range room.clients {
		if c.ClientID != excludeClientID {
			clients = append(clients, c)
		}
	}
	h.mu.RUnlock()

	frame, err := json.Marshal(msg)
	if err != nil {
		slog.Error("marshal message", "error", err, "type", msg.Type)
		return
	}
	for _, c := range clients {
		c.enqueue(frame, msg.Type)
	}
}

// hasUser reports whether another connection of userID is still in the
// room. Caller must hold the hub lock.
func (r *Room) hasUser(userID string) bool {
	for _, c := range r.clients {
		if c.UserID == userID {
			return true
		}
	}
	return false
}
