// Package event defines the outbound events emitted by the dispatcher
// and consumed by sinks. The transport decides how they are framed.
package event

import (
	"roomcast/domain"
)

// OutboundEvent is anything deliverable to a connected client.
type OutboundEvent interface {
	Type() string
}

// UserInfo is the projection of an Identity carried on the wire.
type UserInfo struct {
	ID          domain.IdentityID
	DisplayName string
}

// MessageEvent carries a single user or system message.
type MessageEvent struct {
	Message domain.Message
}

func (MessageEvent) Type() string { return "message" }

// RoomHistoryEvent carries the retained log sent to a joining client.
type RoomHistoryEvent struct {
	Messages []domain.Message
}

func (RoomHistoryEvent) Type() string { return "roomHistory" }

// OnlineUsersEvent carries the full membership snapshot of a room.
type OnlineUsersEvent struct {
	Users []UserInfo
}

func (OnlineUsersEvent) Type() string { return "onlineUsers" }

// TypingEvent carries the participants currently composing a message,
// keyed the same way as OnlineUsersEvent.
type TypingEvent struct {
	Users []UserInfo
}

func (TypingEvent) Type() string { return "typing" }

// LeftRoomEvent confirms an explicit leave to the leaving client.
type LeftRoomEvent struct{}

func (LeftRoomEvent) Type() string { return "leftRoom" }

// ErrorEvent reports a rejected command to the offending connection only.
type ErrorEvent struct {
	Message string
}

func (ErrorEvent) Type() string { return "error" }
