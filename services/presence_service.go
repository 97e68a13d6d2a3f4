package services

import (
	"time"

	"roomcast/contract"
	"roomcast/domain"
)

// IPresenceService is the surface transports talk to. Every call is
// translated to a command and queued; results come back asynchronously
// through the connection's sink.
type IPresenceService interface {
	Connect(session domain.SessionID, sink contract.EventSink)
	Disconnect(session domain.SessionID)
	JoinRoom(session domain.SessionID, displayName, room string)
	PostMessage(session domain.SessionID, body string)
	SetTyping(session domain.SessionID, isTyping bool)
	LeaveRoom(session domain.SessionID)
}

type PresenceService struct {
	dispatcher contract.IDispatcher
}

func NewPresenceService(dispatcher contract.IDispatcher) *PresenceService {
	return &PresenceService{dispatcher: dispatcher}
}

func (s *PresenceService) Connect(session domain.SessionID, sink contract.EventSink) {
	s.dispatcher.Attach(session, sink)
}

func (s *PresenceService) Disconnect(session domain.SessionID) {
	s.dispatcher.Dispatch(domain.DisconnectCommand{Session: session})
}

func (s *PresenceService) JoinRoom(session domain.SessionID, displayName, room string) {
	s.dispatcher.Dispatch(domain.JoinRoomCommand{
		Session:     session,
		DisplayName: displayName,
		Room:        room,
		At:          time.Now().UTC(),
	})
}

func (s *PresenceService) PostMessage(session domain.SessionID, body string) {
	s.dispatcher.Dispatch(domain.SendMessageCommand{
		Session: session,
		Body:    body,
		At:      time.Now().UTC(),
	})
}

func (s *PresenceService) SetTyping(session domain.SessionID, isTyping bool) {
	s.dispatcher.Dispatch(domain.SetTypingCommand{Session: session, IsTyping: isTyping})
}

func (s *PresenceService) LeaveRoom(session domain.SessionID) {
	s.dispatcher.Dispatch(domain.LeaveRoomCommand{Session: session})
}
