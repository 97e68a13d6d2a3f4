package ws

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"roomcast/domain"
	"roomcast/services"
	"roomcast/sink"
)

// Handler upgrades HTTP requests to websocket sessions. Each connection
// gets a fresh session id and a buffered sink; identities only exist
// once the client joins a room.
type Handler struct {
	log        *slog.Logger
	service    services.IPresenceService
	bufferSize int
	upgrader   websocket.Upgrader
}

func NewHandler(log *slog.Logger, service services.IPresenceService, bufferSize int) *Handler {
	return &Handler{
		log:        log,
		service:    service,
		bufferSize: bufferSize,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Origin policy is enforced by the gateway in front.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("Upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	session := domain.SessionID(uuid.NewString())
	sessionSink := sink.NewSessionSink(h.bufferSize)
	c := newClient(h.log, conn, session, sessionSink, h.service)

	h.service.Connect(session, sessionSink)
	h.log.Info("Connection opened", "session", session, "remote", r.RemoteAddr)

	go c.writePump()
	c.readPump()
}
