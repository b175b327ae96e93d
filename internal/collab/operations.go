package collab

import (
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/inamate/timegraph/internal/diagram"
	"github.com/inamate/timegraph/internal/typeid"
)

var ErrEmptyOperation = errors.New("operation has no element")

// Diagrams is the authoritative diagram state a hub works against.
type Diagrams interface {
	Exists(diagramID string) bool
	Document(diagramID string) (json.RawMessage, error)
	Transform(diagramID string, op diagram.Op) (int, error)
	HitTest(diagramID string, x, y float64, all bool) ([]string, error)
}

// handleOpSubmit applies an operation, acks the sender and broadcasts the
// operation to the rest of the room. A rejected operation is nacked and
// goes nowhere else.
func (h *Hub) handleOpSubmit(sender *Client, msg *Message) {
	var submit OperationSubmitPayload
	if err := json.Unmarshal(msg.Payload, &submit); err != nil {
		sender.SendError("invalid operation payload")
		return
	}

	op := submit.Operation
	if op.ID == "" {
		op.ID = typeid.NewOpID()
	}

	version, err := h.applyOperation(sender.DiagramID, op)
	if err != nil {
		slog.Debug("operation rejected", "op", op.ID, "user", sender.UserID, "error", err)
		sender.Send(newMessage(TypeOpNack, OperationNackPayload{
			OperationID: op.ID,
			Reason:      err.Error(),
		}))
		return
	}

	sender.Send(newMessage(TypeOpAck, OperationAckPayload{
		OperationID:     op.ID,
		Version:         version,
		ServerTimestamp: GetServerTimestamp(),
	}))

	out := newMessage(TypeOpBroadcast, OperationBroadcastPayload{
		Operation: op,
		UserID:    sender.UserID,
		Version:   version,
	})
	out.UserID = sender.UserID
	out.Seq = int64(version)
	h.broadcastToRoom(sender.DiagramID, out, sender.ClientID)
}

func (h *Hub) applyOperation(diagramID string, op Operation) (int, error) {
	if op.Op.Element == "" {
		return 0, ErrEmptyOperation
	}
	return h.diagrams.Transform(diagramID, op.Op)
}

// handleHitQuery answers a hit test to the sender only.
func (h *Hub) handleHitQuery(sender *Client, msg *Message) {
	var query HitQueryPayload
	if err := json.Unmarshal(msg.Payload, &query); err != nil {
		sender.SendError("invalid hit query payload")
		return
	}

	ids, err := h.diagrams.HitTest(sender.DiagramID, query.X, query.Y, query.All)
	if err != nil {
		sender.SendError(err.Error())
		return
	}

	sender.Send(newMessage(TypeHitResult, HitResultPayload{
		RequestID: query.RequestID,
		IDs:       ids,
	}))
}

// sendDocument sends the current diagram document to c.
func (h *Hub) sendDocument(c *Client) {
	doc, err := h.diagrams.Document(c.DiagramID)
	if err != nil {
		slog.Warn("load document for sync", "error", err, "diagram", c.DiagramID)
		c.SendError(err.Error())
		return
	}
	c.Send(newMessage(TypeDocSync, DocSyncPayload{Document: doc}))
}

// hover returns the topmost element under cursor, if any.
func (h *Hub) hover(diagramID string, cursor *CursorPos) string {
	if cursor == nil {
		return ""
	}
	ids, err := h.diagrams.HitTest(diagramID, cursor.X, cursor.Y, false)
	if err != nil || len(ids) == 0 {
		return ""
	}
	return ids[0]
}

func newMessage(msgType string, payload any) *Message {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal payload", "type", msgType, "error", err)
	}
	return &Message{Type: msgType, Payload: data}
}

// GetServerTimestamp returns the current server timestamp
func GetServerTimestamp() int64 {
	return time.Now().UnixMilli()
}
