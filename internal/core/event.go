package core

import "encoding/json"

// EventKind is a notification the core emits to sessions.
type EventKind int

const (
	// EventPeerJoined notifies room members that a peer joined.
	EventPeerJoined EventKind = iota
	// EventPeerLeft notifies room members that a peer left or disconnected.
	EventPeerLeft
	// EventChat delivers a chat message to room members.
	EventChat
	// EventRoomEnded notifies room members that the owner terminated the room.
	EventRoomEnded
	// EventSignal delivers a relayed WebRTC negotiation message to one session.
	EventSignal
	// EventError notifies a session about a domain error.
	EventError
)

// SignalKind discriminates relayed negotiation messages.
type SignalKind string

const (
	SignalOffer     SignalKind = "offer"
	SignalAnswer    SignalKind = "answer"
	SignalCandidate SignalKind = "ice_candidate"
)

// Event is sent to sessions to describe what happened in the system.
type Event struct {
	Kind     EventKind
	Room     string
	PeerID   string
	PeerName string
	Chat     *ChatMessage
	Signal   *SignalEvent
	Error    *CoreError
}

// SignalEvent carries a relayed offer/answer/candidate payload.
type SignalEvent struct {
	Signal   SignalKind
	From     string
	FromName string
	Payload  json.RawMessage
}

// ChatMessage is the domain model for a room chat message.
type ChatMessage struct {
	From     string
	FromName string
	Text     string
	SentAt   int64
}
