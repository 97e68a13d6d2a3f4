package ws

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/gorilla/websocket"

	"roomcast/domain"
	"roomcast/services"
	"roomcast/sink"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	writeWait  = 10 * time.Second
)

// client owns one websocket connection: a read pump translating frames
// into service calls and a write pump draining the session sink.
type client struct {
	log     *slog.Logger
	conn    *websocket.Conn
	session domain.SessionID
	sink    *sink.SessionSink
	service services.IPresenceService
	done    chan struct{}
}

func newClient(log *slog.Logger, conn *websocket.Conn, session domain.SessionID,
	s *sink.SessionSink, service services.IPresenceService) *client {
	return &client{
		log:     log,
		conn:    conn,
		session: session,
		sink:    s,
		service: service,
		done:    make(chan struct{}),
	}
}

// readPump blocks until the connection dies, then reports the disconnect
// so the core can run its cleanup.
func (c *client) readPump() {
	defer func() {
		close(c.done)
		c.service.Disconnect(c.session)
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				c.log.Warn("Unexpected websocket close", "session", c.session, "error", err)
			}
			return
		}
		c.handleFrame(raw)
	}
}

func (c *client) handleFrame(raw []byte) {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		c.log.Debug("Dropping malformed frame", "session", c.session, "error", err)
		return
	}

	switch frame.Type {
	case "joinRoom":
		c.service.JoinRoom(c.session, frame.DisplayName, frame.Room)
	case "sendMessage":
		c.service.PostMessage(c.session, frame.Body)
	case "typing":
		c.service.SetTyping(c.session, frame.IsTyping)
	case "leaveRoom":
		c.service.LeaveRoom(c.session)
	default:
		c.log.Debug(fmt.Sprintf("Unknown frame type %q", frame.Type), "session", c.session)
	}
}

// writePump frames every event queued on the session sink and keeps the
// connection alive with pings.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case evt := <-c.sink.Events:
			data, err := encodeEvent(evt)
			if err != nil {
				c.log.Error("Failed to encode event", "session", c.session, "error", err)
				continue
			}
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				c.log.Debug("Write failed, closing", "session", c.session, "error", err)
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
