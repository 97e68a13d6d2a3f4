package services

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"roomcast/domain"
	"roomcast/mocks"
)

func TestPresenceService_TranslatesCallsToCommands(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dispatcher := mocks.NewMockIDispatcher(ctrl)
	service := NewPresenceService(dispatcher)
	session := domain.SessionID("session-1")

	// Connect binds the sink, everything else becomes a queued command
	sinkMock := mocks.NewMockEventSink(ctrl)
	dispatcher.EXPECT().Attach(session, sinkMock)
	service.Connect(session, sinkMock)

	var joined domain.JoinRoomCommand
	dispatcher.EXPECT().Dispatch(gomock.Any()).Do(func(cmd domain.Command) {
		var ok bool
		joined, ok = cmd.(domain.JoinRoomCommand)
		req.True(ok)
	})
	service.JoinRoom(session, "alice", "general")
	req.Equal(session, joined.Session)
	req.Equal("alice", joined.DisplayName)
	req.Equal("general", joined.Room)
	req.False(joined.At.IsZero())

	dispatcher.EXPECT().Dispatch(domain.SetTypingCommand{Session: session, IsTyping: true})
	service.SetTyping(session, true)

	dispatcher.EXPECT().Dispatch(domain.LeaveRoomCommand{Session: session})
	service.LeaveRoom(session)

	dispatcher.EXPECT().Dispatch(domain.DisconnectCommand{Session: session})
	service.Disconnect(session)
}

func TestPresenceService_PostMessageCarriesTheBody(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	dispatcher := mocks.NewMockIDispatcher(ctrl)
	service := NewPresenceService(dispatcher)

	var sent domain.SendMessageCommand
	dispatcher.EXPECT().Dispatch(gomock.Any()).Do(func(cmd domain.Command) {
		var ok bool
		sent, ok = cmd.(domain.SendMessageCommand)
		req.True(ok)
	})
	service.PostMessage("session-1", "hello")

	req.Equal(domain.SessionID("session-1"), sent.Session)
	req.Equal("hello", sent.Body)
	req.False(sent.At.IsZero())
}
