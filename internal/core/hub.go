package core

import (
	"runtime"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// RoomInfo is the public descriptor returned from room creation.
type RoomInfo struct {
	Code      string
	Title     string
	Owner     string
	CreatedAt time.Time
}

// JoinResult is returned to a session that joined a room.
type JoinResult struct {
	RoomCode     string
	RoomTitle    string
	Participants []Participant
	History      []ChatMessage
}

// Hub is the session lifecycle controller. It owns the live-session table,
// orchestrates the registry and room presence on join/leave/end/disconnect,
// and dispatches relay and broadcast deliveries after state mutations commit.
type Hub struct {
	registry    *Registry
	requireAuth bool
	log         zerolog.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewHub constructs a hub around an injected registry. When requireAuth is
// set, create and join are refused for sessions without a verified identity.
func NewHub(reg *Registry, logger *zerolog.Logger, requireAuth bool) *Hub {
	lg := zerolog.Nop()
	if logger != nil {
		lg = *logger
	}
	return &Hub{
		registry:    reg,
		requireAuth: requireAuth,
		log:         lg,
		sessions:    make(map[string]*Session),
	}
}

// Register adds a session to the live-session table.
func (h *Hub) Register(s *Session) {
	h.mu.Lock()
	h.sessions[s.ID] = s
	h.mu.Unlock()
	h.log.Debug().Str("client_id", s.ID).Msg("session registered")
}

// Unregister runs the unconditional disconnect cleanup: the session leaves
// its room (deleting it if emptied, notifying remaining peers) and stops
// being addressable as a relay target. Safe to call exactly once per
// connection teardown; it never fails.
func (h *Hub) Unregister(s *Session) {
	h.leaveCurrentRoom(s)

	h.mu.Lock()
	delete(h.sessions, s.ID)
	h.mu.Unlock()
	h.log.Debug().Str("client_id", s.ID).Msg("session unregistered")
}

// CreateRoom registers a new room owned by the calling session. Creating
// does not join: the caller's room association is untouched.
func (h *Hub) CreateRoom(s *Session, code, title string) (*RoomInfo, *CoreError) {
	if h.requireAuth && !s.Authenticated {
		return nil, coreError(ErrCodeUnauthorized, "authentication required")
	}

	room, err := h.registry.Create(code, title, s.ID)
	if err != nil {
		switch err {
		case ErrInvalidRoomCode:
			return nil, coreError(ErrCodeInvalidRoomCode, "room code is required")
		default:
			return nil, coreError(ErrCodeRoomExists, "room already exists")
		}
	}

	h.log.Info().Str("room", code).Str("owner", s.ID).Msg("room created")
	return &RoomInfo{
		Code:      room.Code,
		Title:     room.Title,
		Owner:     room.Owner,
		CreatedAt: room.CreatedAt,
	}, nil
}

// JoinRoom moves the session into the target room, leaving any prior room
// first with full leave semantics. On success the caller gets the roster of
// other participants and the chat backlog; everyone else gets peer_joined.
func (h *Hub) JoinRoom(s *Session, code, displayName string) (*JoinResult, *CoreError) {
	if h.requireAuth && !s.Authenticated {
		return nil, coreError(ErrCodeUnauthorized, "authentication required")
	}
	if code == "" {
		return nil, coreError(ErrCodeInvalidRoomCode, "room code is required")
	}
	if displayName == "" {
		displayName = "Guest"
	}

	if _, err := h.registry.Get(code); err != nil {
		return nil, coreError(ErrCodeRoomNotFound, "room not found")
	}

	// Switching rooms leaves the old one first, with full leave semantics.
	if prev := s.RoomCode(); prev != "" && prev != code {
		h.leaveRoom(s, prev)
	}

	var room *Room
	for {
		found, err := h.registry.Get(code)
		if err != nil {
			return nil, coreError(ErrCodeRoomNotFound, "room not found")
		}
		if found.add(s, displayName) {
			room = found
			break
		}
		// Lost a race with delete-on-empty; the registry entry is about
		// to disappear. Yield and look the code up again.
		runtime.Gosched()
	}
	s.setRoom(code, displayName)

	room.broadcast(&Event{
		Kind:     EventPeerJoined,
		Room:     code,
		PeerID:   s.ID,
		PeerName: displayName,
	}, s.ID)

	h.log.Info().Str("room", code).Str("client_id", s.ID).Str("name", displayName).Msg("session joined room")
	return &JoinResult{
		RoomCode:     code,
		RoomTitle:    room.Title,
		Participants: room.others(s.ID),
		History:      room.historySnapshot(),
	}, nil
}

// Chat broadcasts a message to the full current participant set of the
// session's room, sender included.
func (h *Hub) Chat(s *Session, text, displayName string) *CoreError {
	if displayName == "" {
		displayName = s.DisplayName()
	}

	room, cerr := h.currentRoom(s)
	if cerr != nil {
		return cerr
	}

	msg := ChatMessage{
		From:     s.ID,
		FromName: displayName,
		Text:     text,
		SentAt:   time.Now().Unix(),
	}
	room.appendHistory(msg)
	room.broadcast(&Event{Kind: EventChat, Room: room.Code, Chat: &msg}, "")
	return nil
}

// Relay forwards a negotiation payload to the target session, fire and
// forget. The target id is trusted as-is: it came from a roster response
// and is not re-checked against room membership. Dead targets drop.
func (h *Hub) Relay(s *Session, kind SignalKind, targetID string, payload []byte) *CoreError {
	if s.RoomCode() == "" {
		return coreError(ErrCodeNotInRoom, "join a room before signaling")
	}

	h.mu.RLock()
	target, ok := h.sessions[targetID]
	h.mu.RUnlock()
	if !ok {
		h.log.Debug().Str("target", targetID).Str("client_id", s.ID).Msg("relay target gone, dropping")
		return nil
	}

	sig := &SignalEvent{Signal: kind, From: s.ID, Payload: payload}
	if kind == SignalOffer {
		sig.FromName = s.DisplayName()
	}
	target.send(&Event{Kind: EventSignal, Signal: sig})
	return nil
}

// EndRoom terminates the calling session's room. Owner only: every
// participant gets a termination notice, then the room is deleted and all
// member room associations are cleared.
func (h *Hub) EndRoom(s *Session) *CoreError {
	code := s.RoomCode()
	if code == "" {
		return coreError(ErrCodeNotInRoom, "not in a room")
	}
	room, err := h.registry.Get(code)
	if err != nil {
		s.clearRoom(code)
		return coreError(ErrCodeRoomNotFound, "room not found")
	}
	if room.Owner != s.ID {
		return coreError(ErrCodeNotAuthorized, "only the room owner can end it")
	}

	evicted := room.close()
	h.registry.Delete(code, room)

	ev := &Event{Kind: EventRoomEnded, Room: code}
	for _, member := range evicted {
		member.clearRoom(code)
		member.send(ev)
	}
	h.log.Info().Str("room", code).Str("owner", s.ID).Int("evicted", len(evicted)).Msg("room ended by owner")
	return nil
}

// currentRoom resolves the session's room, clearing a stale association
// left behind by an ended room.
func (h *Hub) currentRoom(s *Session) (*Room, *CoreError) {
	code := s.RoomCode()
	if code == "" {
		return nil, coreError(ErrCodeNotInRoom, "not in a room")
	}
	room, err := h.registry.Get(code)
	if err != nil {
		s.clearRoom(code)
		return nil, coreError(ErrCodeNotInRoom, "not in a room")
	}
	return room, nil
}

// leaveCurrentRoom removes the session from whatever room it is in.
func (h *Hub) leaveCurrentRoom(s *Session) {
	if code := s.RoomCode(); code != "" {
		h.leaveRoom(s, code)
	}
}

// leaveRoom removes the session from the room registered under code,
// deletes the room if the removal emptied it, and otherwise notifies the
// remaining participants.
func (h *Hub) leaveRoom(s *Session, code string) {
	s.clearRoom(code)

	room, err := h.registry.Get(code)
	if err != nil {
		return
	}
	removed, closedNow := room.remove(s.ID)
	if closedNow {
		h.registry.Delete(code, room)
		h.log.Info().Str("room", code).Msg("room deleted, last participant left")
		return
	}
	if removed {
		room.broadcast(&Event{
			Kind:     EventPeerLeft,
			Room:     code,
			PeerID:   s.ID,
			PeerName: s.DisplayName(),
		}, s.ID)
	}
}
