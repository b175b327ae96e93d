package collab

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/go-cmp/cmp"

	"github.com/inamate/timegraph/internal/diagram"
	"github.com/inamate/timegraph/internal/workspace"
)

const testDocument = `{
	"name": "test",
	"width": 1200,
	"height": 400,
	"start": 360,
	"end": 600,
	"layers": [{"id": "freight"}, {"id": "passenger"}],
	"stations": [
		{"id": "s1", "name": "North", "y": 60},
		{"id": "s2", "name": "Middle", "y": 200},
		{"id": "s3", "name": "South", "y": 340}
	],
	"trains": [
		{"id": "ice", "number": "ICE 571", "layer": "passenger", "stops": [
			{"station": "s1", "arrival": 380},
			{"station": "s2", "arrival": 412, "departure": 414},
			{"station": "s3", "arrival": 450}
		]},
		{"id": "gm", "number": "GM 47", "layer": "freight", "stops": [
			{"station": "s1", "arrival": 400},
			{"station": "s2", "arrival": 500, "departure": 520},
			{"station": "s3", "arrival": 590}
		]}
	],
	"labels": [{"id": "l1", "train": "ice", "x": 130, "y": 100}]
}`

func newTestHub(t *testing.T) (*Hub, string) {
	t.Helper()
	svc := workspace.NewService(1200, 400)
	d, err := svc.Import([]byte(testDocument), "user_a")
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}
	return NewHub(svc), d.ID
}

func newTestClient(h *Hub, userID, diagramID, clientID string) *Client {
	return NewClient(h, nil, userID, strings.ToUpper(userID), diagramID, clientID)
}

// joined adds clients to the room and drops their join traffic.
func joined(h *Hub, clients ...*Client) {
	for _, c := range clients {
		h.addClient(c)
	}
	for _, c := range clients {
		drain(c)
	}
}

func drain(c *Client) {
	for {
		select {
		case _, ok := <-c.send:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func next(t *testing.T, c *Client) Message {
	t.Helper()
	select {
	case data, ok := <-c.send:
		if !ok {
			t.Fatalf("client %s send queue closed", c.ClientID)
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("queued message is not JSON: %v", err)
		}
		return msg
	default:
		t.Fatalf("client %s has no queued message", c.ClientID)
	}
	return Message{}
}

func expectNone(t *testing.T, c *Client) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Errorf("client %s got unexpected message %s", c.ClientID, data)
	default:
	}
}

func payload[T any](t *testing.T, msg Message) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		t.Fatalf("decode %s payload: %v", msg.Type, err)
	}
	return v
}

func submit(t *testing.T, op Operation) *Message {
	t.Helper()
	data, err := json.Marshal(OperationSubmitPayload{Operation: op})
	if err != nil {
		t.Fatalf("marshal operation: %v", err)
	}
	return &Message{Type: TypeOpSubmit, Payload: data}
}

func TestHub_Join(t *testing.T) {
	h, diagramID := newTestHub(t)
	first := newTestClient(h, "user_a", diagramID, "c1")
	second := newTestClient(h, "user_b", diagramID, "c2")

	h.addClient(first)

	var types []string
	for range 3 {
		types = append(types, next(t, first).Type)
	}
	if diff := cmp.Diff([]string{TypeWelcome, TypeDocSync, TypePresenceState}, types); diff != "" {
		t.Errorf("join messages mismatch (-want +got):\n%s", diff)
	}

	h.addClient(second)
	welcome := payload[WelcomePayload](t, next(t, second))
	if welcome.ClientID != "c2" || welcome.UserID != "user_b" {
		t.Errorf("welcome = %+v, want c2 of user_b", welcome)
	}
	docSync := payload[DocSyncPayload](t, next(t, second))
	var doc diagram.Document
	if err := json.Unmarshal(docSync.Document, &doc); err != nil || doc.ID != diagramID {
		t.Errorf("doc.sync document id = %q (%v), want %q", doc.ID, err, diagramID)
	}

	join := next(t, first)
	if join.Type != TypePresenceJoin {
		t.Fatalf("first client got %s, want %s", join.Type, TypePresenceJoin)
	}
	if got := payload[PresenceJoinPayload](t, join); got.UserID != "user_b" || got.DisplayName != "USER_B" {
		t.Errorf("presence.join = %+v, want user_b", got)
	}
}

func TestHub_OpSubmit(t *testing.T) {
	type tc struct {
		msg        func(t *testing.T) *Message
		wantType   string
		wantReason string
		broadcast  bool
	}

	tests := map[string]tc{
		"applied": {
			msg: func(t *testing.T) *Message {
				return submit(t, Operation{ID: "op_1", Op: diagram.Op{Element: "l1", Kind: diagram.OpMove, X: 500, Y: 300}})
			},
			wantType:  TypeOpAck,
			broadcast: true,
		},
		"unknown element": {
			msg: func(t *testing.T) *Message {
				return submit(t, Operation{ID: "op_1", Op: diagram.Op{Element: "nope", Kind: diagram.OpMove}})
			},
			wantType:   TypeOpNack,
			wantReason: "unknown element",
		},
		"invalid scale": {
			msg: func(t *testing.T) *Message {
				return submit(t, Operation{ID: "op_1", Op: diagram.Op{Element: "l1", Kind: diagram.OpScale}})
			},
			wantType:   TypeOpNack,
			wantReason: "scale must be positive",
		},
		"no element": {
			msg: func(t *testing.T) *Message {
				return submit(t, Operation{ID: "op_1", Op: diagram.Op{Kind: diagram.OpMove}})
			},
			wantType:   TypeOpNack,
			wantReason: ErrEmptyOperation.Error(),
		},
		"malformed payload": {
			msg: func(t *testing.T) *Message {
				return &Message{Type: TypeOpSubmit, Payload: json.RawMessage(`"op"`)}
			},
			wantType:   TypeError,
			wantReason: "invalid operation payload",
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			h, diagramID := newTestHub(t)
			sender := newTestClient(h, "user_a", diagramID, "c1")
			other := newTestClient(h, "user_b", diagramID, "c2")
			joined(h, sender, other)

			h.handleMessage(sender, tt.msg(t))

			reply := next(t, sender)
			if reply.Type != tt.wantType {
				t.Fatalf("reply type = %s, want %s", reply.Type, tt.wantType)
			}
			switch reply.Type {
			case TypeOpAck:
				if ack := payload[OperationAckPayload](t, reply); ack.OperationID != "op_1" || ack.Version != 1 {
					t.Errorf("op.ack = %+v, want op_1 at version 1", ack)
				}
			case TypeOpNack:
				nack := payload[OperationNackPayload](t, reply)
				if nack.OperationID != "op_1" || !strings.Contains(nack.Reason, tt.wantReason) {
					t.Errorf("op.nack = %+v, want op_1 with reason %q", nack, tt.wantReason)
				}
			case TypeError:
				if got := payload[ErrorPayload](t, reply); got.Reason != tt.wantReason {
					t.Errorf("error reason = %q, want %q", got.Reason, tt.wantReason)
				}
			}
			expectNone(t, sender)

			if !tt.broadcast {
				expectNone(t, other)
				return
			}
			out := next(t, other)
			if out.Type != TypeOpBroadcast || out.Seq != 1 {
				t.Fatalf("other client got %s seq %d, want %s seq 1", out.Type, out.Seq, TypeOpBroadcast)
			}
			b := payload[OperationBroadcastPayload](t, out)
			if b.UserID != "user_a" || b.Operation.Op.Element != "l1" {
				t.Errorf("op.broadcast = %+v", b)
			}
		})
	}
}

func TestHub_OpSubmitAssignsID(t *testing.T) {
	h, diagramID := newTestHub(t)
	sender := newTestClient(h, "user_a", diagramID, "c1")
	joined(h, sender)

	h.handleMessage(sender, submit(t, Operation{Op: diagram.Op{Element: "l1", Kind: diagram.OpRotate, Value: 1}}))

	ack := payload[OperationAckPayload](t, next(t, sender))
	if !strings.HasPrefix(ack.OperationID, "op_") {
		t.Errorf("op.ack operation id = %q, want an op_ id", ack.OperationID)
	}
}

func TestHub_HitQuery(t *testing.T) {
	h, diagramID := newTestHub(t)
	sender := newTestClient(h, "user_a", diagramID, "c1")
	other := newTestClient(h, "user_b", diagramID, "c2")
	joined(h, sender, other)

	tests := map[string]struct {
		query HitQueryPayload
		want  []string
	}{
		"topmost": {query: HitQueryPayload{RequestID: "r1", X: 100, Y: 60}, want: []string{"ice"}},
		"all":     {query: HitQueryPayload{RequestID: "r1", X: 100, Y: 60, All: true}, want: []string{"s1", "ice"}},
		"nothing": {query: HitQueryPayload{RequestID: "r1", X: 300, Y: 100}, want: []string{}},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			data, _ := json.Marshal(tt.query)
			h.handleMessage(sender, &Message{Type: TypeHitQuery, Payload: data})

			reply := next(t, sender)
			if reply.Type != TypeHitResult {
				t.Fatalf("reply type = %s, want %s", reply.Type, TypeHitResult)
			}
			got := payload[HitResultPayload](t, reply)
			if got.RequestID != "r1" {
				t.Errorf("requestId = %q, want r1", got.RequestID)
			}
			if diff := cmp.Diff(tt.want, got.IDs); diff != "" {
				t.Errorf("hit ids mismatch (-want +got):\n%s", diff)
			}
			expectNone(t, other)
		})
	}
}

func TestHub_PresenceUpdate(t *testing.T) {
	h, diagramID := newTestHub(t)
	sender := newTestClient(h, "user_a", diagramID, "c1")
	other := newTestClient(h, "user_b", diagramID, "c2")
	joined(h, sender, other)

	data, _ := json.Marshal(PresencePayload{
		Cursor:    &CursorPos{X: 100, Y: 60},
		Selection: []string{"l1", "ice", "l1", ""},
	})
	h.handleMessage(sender, &Message{Type: TypePresenceUpdate, Payload: data})

	want := PresencePayload{
		Cursor:      &CursorPos{X: 100, Y: 60},
		Selection:   []string{"ice", "l1"},
		Hover:       "ice",
		DisplayName: "USER_A",
	}
	for _, c := range []*Client{sender, other} {
		msg := next(t, c)
		if msg.Type != TypePresenceUpdate || msg.UserID != "user_a" {
			t.Fatalf("client %s got %s from %q", c.ClientID, msg.Type, msg.UserID)
		}
		if diff := cmp.Diff(want, payload[PresencePayload](t, msg)); diff != "" {
			t.Errorf("presence.update mismatch (-want +got):\n%s", diff)
		}
	}

	room := h.rooms[diagramID]
	if diff := cmp.Diff([]string{"user_a"}, room.presence.SelectedBy("l1")); diff != "" {
		t.Errorf("SelectedBy(l1) mismatch (-want +got):\n%s", diff)
	}
}

func TestHub_RemoveClient(t *testing.T) {
	h, diagramID := newTestHub(t)
	first := newTestClient(h, "user_a", diagramID, "c1")
	second := newTestClient(h, "user_b", diagramID, "c2")
	joined(h, first, second)
	h.rooms[diagramID].presence.Update("user_b", &PresencePayload{})

	h.removeClient(second)

	leave := next(t, first)
	if leave.Type != TypePresenceLeave {
		t.Fatalf("first client got %s, want %s", leave.Type, TypePresenceLeave)
	}
	if _, ok := h.rooms[diagramID].presence.Get("user_b"); ok {
		t.Error("presence of user_b kept after leaving")
	}
	if _, ok := <-second.send; ok {
		t.Error("send queue of removed client still open")
	}

	// removing twice is a no-op
	h.removeClient(second)
	expectNone(t, first)

	h.removeClient(first)
	if _, ok := h.rooms[diagramID]; ok {
		t.Error("empty room kept")
	}
	// a closed client drops messages instead of panicking
	first.Send(&Message{Type: TypeError})
}

func TestHub_UnknownType(t *testing.T) {
	h, diagramID := newTestHub(t)
	c := newTestClient(h, "user_a", diagramID, "c1")
	joined(h, c)

	h.handleMessage(c, &Message{Type: "nope"})

	msg := next(t, c)
	if msg.Type != TypeError {
		t.Errorf("reply type = %s, want %s", msg.Type, TypeError)
	}
}

func TestHub_Websocket(t *testing.T) {
	h, diagramID := newTestHub(t)
	go h.Run()
	defer h.Stop()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient(h, conn, "user_a", "Ada", diagramID, "c1")
		h.Register(c)
		go c.WritePump(r.Context())
		c.ReadPump(r.Context())
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "")

	read := func() Message {
		t.Helper()
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("Read() error = %v", err)
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			t.Fatalf("message is not JSON: %v", err)
		}
		return msg
	}

	for _, want := range []string{TypeWelcome, TypeDocSync, TypePresenceState} {
		if got := read(); got.Type != want {
			t.Fatalf("got %s, want %s", got.Type, want)
		}
	}

	op, _ := json.Marshal(Message{
		Type:    TypeOpSubmit,
		Payload: mustJSON(t, OperationSubmitPayload{Operation: Operation{ID: "op_1", Op: diagram.Op{Element: "l1", Kind: diagram.OpScale, Value: 2}}}),
	})
	if err := conn.Write(ctx, websocket.MessageText, op); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	ack := read()
	if ack.Type != TypeOpAck {
		t.Fatalf("got %s, want %s", ack.Type, TypeOpAck)
	}
	if got := payload[OperationAckPayload](t, ack); got.Version != 1 {
		t.Errorf("op.ack version = %d, want 1", got.Version)
	}
}

func mustJSON(t *testing.T, v any) json.RawMessage {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return data
}
