package websocket

import (
	"encoding/json"
	"log/slog"
	"testing"
)

func TestNewMessage(t *testing.T) {
	msg := NewMessage("expense", "created", 7, nil)
	if msg.Type != "expense_created" {
		t.Errorf("Type = %q, want expense_created", msg.Type)
	}
	if msg.Entity != "expense" || msg.Action != "created" || msg.ID != 7 {
		t.Errorf("unexpected message: %+v", msg)
	}
}

func TestHubRegisterUnregister(t *testing.T) {
	hub := NewHub(slog.Default())

	c := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register(c)
	if got := hub.ClientCount(); got != 1 {
		t.Errorf("ClientCount = %d, want 1", got)
	}

	hub.Unregister(c)
	if got := hub.ClientCount(); got != 0 {
		t.Errorf("ClientCount = %d, want 0", got)
	}

	// Unregistering twice must not panic or double-close the channel.
	hub.Unregister(c)
}

func TestHubBroadcast(t *testing.T) {
	hub := NewHub(slog.Default())

	a := &Client{hub: hub, send: make(chan []byte, 1)}
	b := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register(a)
	hub.Register(b)

	hub.Broadcast(NewMessage("debt", "updated", 3, map[string]any{"status": "approved"}))

	for _, c := range []*Client{a, b} {
		select {
		case data := <-c.send:
			var msg Message
			if err := json.Unmarshal(data, &msg); err != nil {
				t.Fatalf("unmarshal broadcast: %v", err)
			}
			if msg.Type != "debt_updated" || msg.ID != 3 {
				t.Errorf("unexpected message: %+v", msg)
			}
		default:
			t.Fatal("client did not receive broadcast")
		}
	}
}

func TestHubBroadcastSkipsFullClient(t *testing.T) {
	hub := NewHub(slog.Default())

	full := &Client{hub: hub, send: make(chan []byte)}
	ok := &Client{hub: hub, send: make(chan []byte, 1)}
	hub.Register(full)
	hub.Register(ok)

	// Must not block on the unbuffered client with no reader.
	hub.Broadcast(NewMessage("expense", "created", 1, nil))

	select {
	case <-ok.send:
	default:
		t.Error("healthy client should still receive the broadcast")
	}
}
