package collab

import (
	"encoding/json"

	"github.com/inamate/timegraph/internal/diagram"
)

type Message struct {
	Type      string          `json:"type"`
	DiagramID string          `json:"diagramId,omitempty"`
	ClientID  string          `json:"clientId,omitempty"`
	UserID    string          `json:"userId,omitempty"`
	Seq       int64           `json:"seq,omitempty"`
	Payload   json.RawMessage `json:"payload"`
}

// PresencePayload is what a client shares about itself. Cursor is in view
// units; Hover is set by the server to the element under the cursor.
type PresencePayload struct {
	Cursor      *CursorPos `json:"cursor,omitempty"`
	Selection   []string   `json:"selection,omitempty"`
	Hover       string     `json:"hover,omitempty"`
	DisplayName string     `json:"displayName,omitempty"`
}

type CursorPos struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type PresenceStatePayload struct {
	Presences map[string]*PresencePayload `json:"presences"`
}

type PresenceJoinPayload struct {
	UserID      string `json:"userId"`
	DisplayName string `json:"displayName"`
}

type PresenceLeavePayload struct {
	UserID string `json:"userId"`
}

type WelcomePayload struct {
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
}

type DocSyncPayload struct {
	Document json.RawMessage `json:"document"`
}

type ErrorPayload struct {
	Reason string `json:"reason"`
}

const (
	TypePresenceUpdate = "presence.update"
	TypePresenceState  = "presence.state"
	TypePresenceJoin   = "presence.join"
	TypePresenceLeave  = "presence.leave"
	TypeError          = "error"

	// Connection
	TypeWelcome = "welcome"

	// Document sync, sent on join and on request
	TypeDocSync = "doc.sync"

	// Hit testing against the shared view
	TypeHitQuery  = "hit.query"
	TypeHitResult = "hit.result"

	// Operation message types
	TypeOpSubmit    = "op.submit"
	TypeOpAck       = "op.ack"
	TypeOpNack      = "op.nack"
	TypeOpBroadcast = "op.broadcast"
)

// --- Hit testing ---

type HitQueryPayload struct {
	RequestID string  `json:"requestId,omitempty"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	All       bool    `json:"all,omitempty"`
}

type HitResultPayload struct {
	RequestID string   `json:"requestId,omitempty"`
	IDs       []string `json:"ids"`
}

// --- Operation Types ---

// Operation is an element transform submitted by a client.
type Operation struct {
	ID        string     `json:"id"`
	Timestamp int64      `json:"timestamp"`
	ClientSeq int64      `json:"clientSeq"`
	Op        diagram.Op `json:"op"`
}

// OperationSubmitPayload is the payload for op.submit messages
type OperationSubmitPayload struct {
	Operation Operation `json:"operation"`
}

// OperationAckPayload is the payload for op.ack messages
type OperationAckPayload struct {
	OperationID     string `json:"operationId"`
	Version         int    `json:"version"`
	ServerTimestamp int64  `json:"serverTimestamp"`
}

// OperationNackPayload is the payload for op.nack messages
type OperationNackPayload struct {
	OperationID string `json:"operationId"`
	Reason      string `json:"reason"`
}

// OperationBroadcastPayload is the payload for op.broadcast messages
type OperationBroadcastPayload struct {
	Operation Operation `json:"operation"`
	UserID    string    `json:"userId"`
	Version   int       `json:"version"`
}
