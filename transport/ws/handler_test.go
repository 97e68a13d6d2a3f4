package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"roomcast/domain"
	"roomcast/observability"
	"roomcast/runtime"
	"roomcast/services"
)

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := slog.New(slog.DiscardHandler)
	validator := domain.NewValidator(domain.Limits{
		MaxDisplayNameLength: 24,
		MaxRoomNameLength:    32,
		MaxMessageLength:     500,
	})
	registry := runtime.NewRegistry(validator)
	rooms := runtime.NewRoomStore(registry, 100)
	presence := runtime.NewPresenceTracker(2 * time.Second)
	dispatcher := runtime.NewDispatcher(log, registry, rooms, presence, validator,
		observability.NewStats(), 256)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = dispatcher.Run(ctx) }()

	service := services.NewPresenceService(dispatcher)
	server := httptest.NewServer(NewHandler(log, service, 64))
	t.Cleanup(server.Close)
	return server
}

func dial(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func send(t *testing.T, conn *websocket.Conn, frame inboundFrame) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(frame))
}

func readFrame(t *testing.T, conn *websocket.Conn) outboundFrame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var frame outboundFrame
	require.NoError(t, conn.ReadJSON(&frame))
	return frame
}

func TestHandler_JoinRoundTrip(t *testing.T) {
	req := require.New(t)
	server := startTestServer(t)
	conn := dial(t, server)

	// When the client joins a room
	send(t, conn, inboundFrame{Type: "joinRoom", DisplayName: "alice", Room: "general"})

	// Then it receives the welcome notice
	frame := readFrame(t, conn)
	req.Equal("message", frame.Type)
	var welcome messagePayload
	req.NoError(json.Unmarshal(frame.Payload, &welcome))
	req.Equal("system", welcome.Kind)
	req.Contains(welcome.Body, "alice")

	// Followed by the empty history
	frame = readFrame(t, conn)
	req.Equal("roomHistory", frame.Type)
	var history historyPayload
	req.NoError(json.Unmarshal(frame.Payload, &history))
	req.Empty(history.Messages)

	// And the current user list
	frame = readFrame(t, conn)
	req.Equal("onlineUsers", frame.Type)
	var users onlineUsersPayload
	req.NoError(json.Unmarshal(frame.Payload, &users))
	req.Len(users.Users, 1)
	req.Equal("alice", users.Users[0].DisplayName)
}

func TestHandler_MessagesFlowBetweenClients(t *testing.T) {
	req := require.New(t)
	server := startTestServer(t)

	alice := dial(t, server)
	send(t, alice, inboundFrame{Type: "joinRoom", DisplayName: "alice", Room: "general"})
	for i := 0; i < 3; i++ {
		readFrame(t, alice)
	}

	bob := dial(t, server)
	send(t, bob, inboundFrame{Type: "joinRoom", DisplayName: "bob", Room: "general"})
	for i := 0; i < 3; i++ {
		readFrame(t, bob)
	}
	// alice sees bob arrive
	for i := 0; i < 2; i++ {
		readFrame(t, alice)
	}

	// When alice posts a message
	send(t, alice, inboundFrame{Type: "sendMessage", Body: "hello bob"})

	// Then both ends receive it as a user message
	for _, conn := range []*websocket.Conn{alice, bob} {
		frame := readFrame(t, conn)
		req.Equal("message", frame.Type)
		var msg messagePayload
		req.NoError(json.Unmarshal(frame.Payload, &msg))
		req.Equal("user", msg.Kind)
		req.Equal("alice", msg.Sender)
		req.Equal("hello bob", msg.Body)
	}
}

func TestHandler_TypingReachesTheOtherClient(t *testing.T) {
	req := require.New(t)
	server := startTestServer(t)

	alice := dial(t, server)
	send(t, alice, inboundFrame{Type: "joinRoom", DisplayName: "alice", Room: "general"})
	for i := 0; i < 3; i++ {
		readFrame(t, alice)
	}

	bob := dial(t, server)
	send(t, bob, inboundFrame{Type: "joinRoom", DisplayName: "bob", Room: "general"})
	for i := 0; i < 3; i++ {
		readFrame(t, bob)
	}

	send(t, bob, inboundFrame{Type: "typing", IsTyping: true})

	// alice first drains bob's join notices, then sees the typing set
	for i := 0; i < 2; i++ {
		readFrame(t, alice)
	}
	frame := readFrame(t, alice)
	req.Equal("typing", frame.Type)
	var typing typingPayload
	req.NoError(json.Unmarshal(frame.Payload, &typing))
	req.Len(typing.Users, 1)
	req.Equal("bob", typing.Users[0].DisplayName)
	req.NotEmpty(typing.Users[0].ID)
}

func TestHandler_LeaveRoomConfirmation(t *testing.T) {
	req := require.New(t)
	server := startTestServer(t)
	conn := dial(t, server)

	send(t, conn, inboundFrame{Type: "joinRoom", DisplayName: "alice", Room: "general"})
	for i := 0; i < 3; i++ {
		readFrame(t, conn)
	}

	send(t, conn, inboundFrame{Type: "leaveRoom"})

	frame := readFrame(t, conn)
	req.Equal("leftRoom", frame.Type)
}

func TestHandler_SendBeforeJoinYieldsErrorFrame(t *testing.T) {
	req := require.New(t)
	server := startTestServer(t)
	conn := dial(t, server)

	send(t, conn, inboundFrame{Type: "sendMessage", Body: "hello"})

	frame := readFrame(t, conn)
	req.Equal("error", frame.Type)
	var payload errorPayload
	req.NoError(json.Unmarshal(frame.Payload, &payload))
	req.Contains(payload.Message, "join a room")
}

func TestEncodeEvent_RejectsUnknownEvents(t *testing.T) {
	req := require.New(t)
	_, err := encodeEvent(nil)
	req.Error(err)
}
