package core

import (
	"testing"
	"time"
)

func mustEvent(t *testing.T, ch <-chan *Event, kind EventKind) *Event {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		select {
		case ev := <-ch:
			if ev == nil {
				continue
			}
			if ev.Kind == kind {
				return ev
			}
		default:
			time.Sleep(5 * time.Millisecond)
		}
	}
	t.Fatalf("expected event kind %v not received", kind)
	return nil
}

func mustNoEvent(t *testing.T, ch <-chan *Event, kind EventKind) {
	t.Helper()

	timeout := time.After(100 * time.Millisecond)
	for {
		select {
		case ev := <-ch:
			if ev != nil && ev.Kind == kind {
				t.Fatalf("unexpected event kind %v received: %+v", kind, ev)
			}
		case <-timeout:
			return
		}
	}
}

func newTestHub() *Hub {
	return NewHub(NewRegistry(), nil, false)
}

func joinedSession(t *testing.T, hub *Hub, id, room, name string) *Session {
	t.Helper()

	s := NewSession(id)
	hub.Register(s)
	if _, cerr := hub.JoinRoom(s, room, name); cerr != nil {
		t.Fatalf("join %s as %s: %v", room, name, cerr)
	}
	return s
}
