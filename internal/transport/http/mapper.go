package http

import (
	"encoding/json"

	"github.com/andrewwbaranoff-ship-it/akbserver/internal/core"
	"github.com/andrewwbaranoff-ship-it/akbserver/internal/proto"
)

// handleInbound dispatches one client message to the hub and returns the
// reply to write, or nil when the message warrants none. Operations with an
// acknowledgment channel (create_room, join_room) report their errors; chat
// and signaling are fire-and-forget, so their domain errors drop silently.
func handleInbound(hub *core.Hub, sess *core.Session, inbound proto.Inbound) *proto.Outbound {
	switch inbound.Type {
	case proto.InboundTypeCreateRoom:
		var req proto.CreateRoomData
		if err := json.Unmarshal(inbound.Data, &req); err != nil {
			return badRequest("malformed create_room data")
		}
		info, cerr := hub.CreateRoom(sess, req.Code, req.Title)
		if cerr != nil {
			return errorOutbound(cerr)
		}
		return &proto.Outbound{
			Type:  proto.OutboundTypeAck,
			Event: proto.InboundTypeCreateRoom,
			Data: proto.AckRoomCreated{
				Code:      info.Code,
				Title:     info.Title,
				Owner:     info.Owner,
				CreatedAt: info.CreatedAt.Unix(),
			},
		}

	case proto.InboundTypeJoinRoom:
		var req proto.JoinRoomData
		if err := json.Unmarshal(inbound.Data, &req); err != nil {
			return badRequest("malformed join_room data")
		}
		res, cerr := hub.JoinRoom(sess, req.Code, req.DisplayName)
		if cerr != nil {
			return errorOutbound(cerr)
		}
		participants := make([]proto.ParticipantInfo, 0, len(res.Participants))
		for _, p := range res.Participants {
			participants = append(participants, proto.ParticipantInfo{
				ID:          p.ID,
				DisplayName: p.DisplayName,
			})
		}
		history := make([]proto.EventChat, 0, len(res.History))
		for _, m := range res.History {
			history = append(history, chatPayload(res.RoomCode, m))
		}
		return &proto.Outbound{
			Type:  proto.OutboundTypeAck,
			Event: proto.InboundTypeJoinRoom,
			Data: proto.AckRoomJoined{
				SelfID:       sess.ID,
				RoomCode:     res.RoomCode,
				RoomTitle:    res.RoomTitle,
				Participants: participants,
				History:      history,
			},
		}

	case proto.InboundTypeOffer, proto.InboundTypeAnswer, proto.InboundTypeCandidate:
		var req proto.SignalData
		if err := json.Unmarshal(inbound.Data, &req); err != nil {
			return badRequest("malformed signal data")
		}
		if req.TargetID == "" {
			return badRequest("target_id is required")
		}
		hub.Relay(sess, signalKind(inbound.Type), req.TargetID, req.Payload)
		return nil

	case proto.InboundTypeChat:
		var req proto.ChatData
		if err := json.Unmarshal(inbound.Data, &req); err != nil {
			return badRequest("malformed chat data")
		}
		hub.Chat(sess, req.Text, req.DisplayName)
		return nil

	case proto.InboundTypeEndRoom:
		if cerr := hub.EndRoom(sess); cerr != nil {
			return errorOutbound(cerr)
		}
		return nil

	default:
		return &proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: "invalid_message", Msg: "unknown message type"},
		}
	}
}

func signalKind(inboundType string) core.SignalKind {
	switch inboundType {
	case proto.InboundTypeOffer:
		return core.SignalOffer
	case proto.InboundTypeAnswer:
		return core.SignalAnswer
	default:
		return core.SignalCandidate
	}
}

func badRequest(msg string) *proto.Outbound {
	return &proto.Outbound{
		Type:  proto.OutboundTypeError,
		Error: &proto.Error{Code: core.ErrCodeBadRequest, Msg: msg},
	}
}

func errorOutbound(cerr *core.CoreError) *proto.Outbound {
	return &proto.Outbound{
		Type:  proto.OutboundTypeError,
		Error: &proto.Error{Code: cerr.Code, Msg: cerr.Message},
	}
}

func chatPayload(room string, m core.ChatMessage) proto.EventChat {
	return proto.EventChat{
		Room:     room,
		From:     m.From,
		FromName: m.FromName,
		Text:     m.Text,
		TS:       m.SentAt,
	}
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventPeerJoined:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "peer_joined",
			Data: proto.EventPeerJoined{
				Room:        event.Room,
				ID:          event.PeerID,
				DisplayName: event.PeerName,
			},
		}
	case core.EventPeerLeft:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "peer_left",
			Data: proto.EventPeerLeft{
				Room:        event.Room,
				ID:          event.PeerID,
				DisplayName: event.PeerName,
			},
		}
	case core.EventChat:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "chat",
			Data:  chatPayload(event.Room, *event.Chat),
		}
	case core.EventRoomEnded:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: "room_ended",
			Data:  proto.EventRoomEnded{Room: event.Room},
		}
	case core.EventSignal:
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: string(event.Signal.Signal),
			Data: proto.EventSignal{
				From:     event.Signal.From,
				FromName: event.Signal.FromName,
				Payload:  event.Signal.Payload,
			},
		}
	case core.EventError:
		if event.Error == nil {
			return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: "unknown", Msg: "unknown error"}}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeError,
			Error: &proto.Error{Code: event.Error.Code, Msg: event.Error.Message},
		}
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}
