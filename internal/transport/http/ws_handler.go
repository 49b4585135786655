package http

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/pinlive-server/internal/config"
	"github.com/vovakirdan/pinlive-server/internal/core"
)

// WSHandler upgrades authenticated requests and bridges them to the hub.
type WSHandler struct {
	hub *core.Hub
	cfg *config.Config
	log *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, cfg *config.Config, logger *zerolog.Logger) *WSHandler {
	return &WSHandler{hub: hub, cfg: cfg, log: logger}
}

// Handle runs one connection. It expects AuthMiddleware to have stored the
// identity on the gin context.
func (h *WSHandler) Handle(c *gin.Context) {
	identity := identityFromContext(c)

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns:     h.cfg.AllowedOrigins,
		InsecureSkipVerify: len(h.cfg.AllowedOrigins) == 0,
	})
	if err != nil {
		h.log.Error().Err(err).Str("user_id", identity.ID).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")
	if h.cfg.MaxMessageBytes > 0 {
		conn.SetReadLimit(h.cfg.MaxMessageBytes)
	}

	session, err := h.hub.Connect(identity, core.NewConn(uuid.NewString(), h.cfg.SendBuffer))
	if err != nil {
		h.log.Error().Err(err).Str("user_id", identity.ID).Msg("hub connect")
		conn.Close(websocket.StatusPolicyViolation, "invalid identity")
		return
	}
	defer h.hub.Disconnect(session)

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	errCh := make(chan error, 3)
	go func() {
		errCh <- h.readLoop(ctx, conn, session)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, session)
	}()
	go func() {
		errCh <- h.pingLoop(ctx, conn)
	}()

	err = <-errCh
	cancel() // stop the other goroutines
	<-errCh
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
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
			h.log.Warn().Err(err).Str("conn_id", session.Conn.ID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

// readLoop decodes frames and dispatches them in arrival order. Frames that
// cannot be decoded are dropped without closing the connection.
func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, session *core.Session) error {
	limiter := newRateLimiter(h.cfg.MaxMessagesPerMinute, time.Minute)
	for {
		typ, frame, err := conn.Read(ctx)
		if err != nil {
			h.log.Debug().Err(err).Str("conn_id", session.Conn.ID).Msg("read ws inbound")
			return err
		}
		if !limiter.allow(time.Now()) {
			h.hub.Drop(core.DropRateLimited)
			continue
		}
		if typ != websocket.MessageText {
			h.hub.Drop(core.DropMalformed)
			continue
		}

		cmd, err := decodeInbound(frame)
		if err != nil {
			reason := core.DropMalformed
			if errors.Is(err, errUnknownEvent) {
				reason = core.DropUnknown
			}
			h.log.Debug().Err(err).Str("conn_id", session.Conn.ID).Msg("drop inbound frame")
			h.hub.Drop(reason)
			continue
		}
		h.hub.Dispatch(session, cmd)
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, session *core.Session) error {
	for {
		select {
		case event := <-session.Conn.Events:
			if err := h.write(ctx, conn, event); err != nil {
				h.log.Error().Err(err).Str("conn_id", session.Conn.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (h *WSHandler) write(ctx context.Context, conn *websocket.Conn, event *core.Event) error {
	if h.cfg.WriteTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.cfg.WriteTimeout)
		defer cancel()
	}
	return wsjson.Write(ctx, conn, outboundFromEvent(event))
}

func (h *WSHandler) pingLoop(ctx context.Context, conn *websocket.Conn) error {
	if h.cfg.PingInterval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	ticker := time.NewTicker(h.cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, h.cfg.PingInterval)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
