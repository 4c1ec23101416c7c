package proto

import "encoding/json"

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

const (
	ProtocolVersion = 1

	InboundTypeCreateRoom = "create_room"
	InboundTypeJoinRoom   = "join_room"
	InboundTypeOffer      = "offer"
	InboundTypeAnswer     = "answer"
	InboundTypeCandidate  = "ice_candidate"
	InboundTypeChat       = "chat"
	InboundTypeEndRoom    = "end_room"

	OutboundTypeAck   = "ack"
	OutboundTypeEvent = "event"
	OutboundTypeError = "error"
)

// CreateRoomData requests creation of a named room.
type CreateRoomData struct {
	Code  string `json:"code"`
	Title string `json:"title,omitempty"`
}

// JoinRoomData requests to join a specific room.
type JoinRoomData struct {
	Code        string `json:"code"`
	DisplayName string `json:"display_name,omitempty"`
}

// SignalData targets one peer with a WebRTC negotiation payload.
type SignalData struct {
	TargetID string          `json:"target_id"`
	Payload  json.RawMessage `json:"payload"`
}

// ChatData is a chat message addressed to the sender's current room.
type ChatData struct {
	Text        string `json:"text"`
	DisplayName string `json:"display_name,omitempty"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Type  string `json:"type"`
	Event string `json:"event,omitempty"`
	Data  any    `json:"data,omitempty"`
	Error *Error `json:"error,omitempty"`
}

// AckRoomCreated acknowledges create_room with the room's public descriptor.
type AckRoomCreated struct {
	Code      string `json:"code"`
	Title     string `json:"title"`
	Owner     string `json:"owner"`
	CreatedAt int64  `json:"created_at"`
}

// AckRoomJoined acknowledges join_room with the current roster and backlog.
type AckRoomJoined struct {
	SelfID       string            `json:"self_id"`
	RoomCode     string            `json:"room_code"`
	RoomTitle    string            `json:"room_title"`
	Participants []ParticipantInfo `json:"participants"`
	History      []EventChat       `json:"history,omitempty"`
}

// ParticipantInfo is one roster entry.
type ParticipantInfo struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// EventWelcome tells a freshly connected client its connection id.
type EventWelcome struct {
	SelfID   string `json:"self_id"`
	Protocol int    `json:"protocol"`
}

// EventPeerJoined notifies room members about a new participant.
type EventPeerJoined struct {
	Room        string `json:"room"`
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// EventPeerLeft notifies room members that a participant left.
type EventPeerLeft struct {
	Room        string `json:"room"`
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// EventChat carries a room chat message.
type EventChat struct {
	Room     string `json:"room,omitempty"`
	From     string `json:"from"`
	FromName string `json:"from_name"`
	Text     string `json:"text"`
	TS       int64  `json:"ts"`
}

// EventRoomEnded notifies members that the owner terminated the room.
type EventRoomEnded struct {
	Room string `json:"room"`
}

// EventSignal delivers a relayed offer/answer/candidate to its target.
type EventSignal struct {
	From     string          `json:"from"`
	FromName string          `json:"from_name,omitempty"`
	Payload  json.RawMessage `json:"payload"`
}

// Error describes a protocol-level error response.
type Error struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}
