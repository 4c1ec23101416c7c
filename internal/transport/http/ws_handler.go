package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"
	"strings"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/andrewwbaranoff-ship-it/akbserver/internal/auth"
	"github.com/andrewwbaranoff-ship-it/akbserver/internal/core"
	"github.com/andrewwbaranoff-ship-it/akbserver/internal/proto"
	"github.com/andrewwbaranoff-ship-it/akbserver/internal/utils"
)

// messageRateLimit caps inbound messages per connection per minute.
// ICE candidate bursts during negotiation stay well under this.
const messageRateLimit = 600

// WSHandler upgrades HTTP connections and bridges them to core sessions.
type WSHandler struct {
	hub  *core.Hub
	auth *auth.Service
	log  *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler. authService may be nil when
// the server runs without an auth gateway.
func NewWSHandler(hub *core.Hub, authService *auth.Service, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, auth: authService, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	// Resolve the optional credential before the session exists; the core
	// only ever sees the verified identity, never the token.
	identity, authenticated := h.resolveIdentity(r)

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	sess := core.NewSession(utils.NewConnectionID())
	if authenticated {
		sess.Authenticate(identity)
	}
	h.hub.Register(sess)
	defer h.hub.Unregister(sess)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// The client needs its connection id: roster entries and signaling
	// targets are keyed by it.
	welcome := proto.Outbound{
		Type:  proto.OutboundTypeEvent,
		Event: "welcome",
		Data:  proto.EventWelcome{SelfID: sess.ID, Protocol: proto.ProtocolVersion},
	}
	if err := wsjson.Write(ctx, conn, welcome); err != nil {
		h.log.Warn().Err(err).Str("client_id", sess.ID).Msg("write welcome")
		return
	}

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, sess)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, sess)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != 0 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("client_id", sess.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// resolveIdentity validates a bearer token from the query string or the
// Authorization header. Absent or invalid tokens leave the session
// anonymous; they never refuse the connection.
func (h *WSHandler) resolveIdentity(r *stdhttp.Request) (string, bool) {
	if h.auth == nil {
		return "", false
	}

	token := r.URL.Query().Get("token")
	if token == "" {
		header := r.Header.Get("Authorization")
		if parts := strings.SplitN(header, " ", 2); len(parts) == 2 && parts[0] == "Bearer" {
			token = parts[1]
		}
	}
	if token == "" {
		return "", false
	}

	claims, err := h.auth.ValidateToken(token)
	if err != nil {
		h.log.Debug().Err(err).Msg("invalid ws token, treating as anonymous")
		return "", false
	}
	return claims.Username, true
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, sess *core.Session) error {
	limiter := newRateLimiter(messageRateLimit)

	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			return err
		}

		if !limiter.allow() {
			if err := wsjson.Write(ctx, conn, proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: &proto.Error{Code: "rate_limited", Msg: "too many messages"},
			}); err != nil {
				return err
			}
			continue
		}

		reply := handleInbound(h.hub, sess, inbound)
		if reply != nil {
			if err := wsjson.Write(ctx, conn, *reply); err != nil {
				h.log.Error().Err(err).Str("client_id", sess.ID).Msg("write ws reply")
				return err
			}
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, sess *core.Session) error {
	for {
		select {
		case event, ok := <-sess.Events:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromEvent(event)); err != nil {
				h.log.Error().Err(err).Str("client_id", sess.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
