package core

import "sync"

// Session is the room-side state of one connected client. It decouples
// transport identity (the connection id) from room membership, which only
// the hub mutates.
type Session struct {
	ID            string
	Authenticated bool
	Events        chan *Event

	mu          sync.Mutex
	displayName string
	roomCode    string
}

// NewSession constructs a session with an initialized event channel.
func NewSession(id string) *Session {
	return &Session{
		ID:          id,
		Events:      make(chan *Event, 32),
		displayName: "Guest",
	}
}

// Authenticate marks the session as carrying a verified identity. Must be
// called before the session is registered with a hub.
func (s *Session) Authenticate(username string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Authenticated = true
	if username != "" {
		s.displayName = username
	}
}

// DisplayName returns the session's current display name.
func (s *Session) DisplayName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayName
}

// RoomCode returns the code of the room the session is in, or "".
func (s *Session) RoomCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomCode
}

func (s *Session) setRoom(code, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomCode = code
	if name != "" {
		s.displayName = name
	}
}

// clearRoom drops the room association only if it still points at code.
// A session evicted from an ended room may already have joined another.
func (s *Session) clearRoom(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.roomCode == code {
		s.roomCode = ""
	}
}

// send delivers an event without blocking. Slow consumers drop.
func (s *Session) send(ev *Event) {
	select {
	case s.Events <- ev:
	default:
	}
}
