package domain

import "time"

// Command is an inbound intent processed by the dispatcher.
// Origin returns the session that issued it; internal commands
// (typing expiry) return an empty SessionID.
type Command interface {
	Origin() SessionID
}

type JoinRoomCommand struct {
	Session     SessionID
	DisplayName string
	Room        string
	At          time.Time
}

func (c JoinRoomCommand) Origin() SessionID { return c.Session }

type SendMessageCommand struct {
	Session SessionID
	Body    string
	At      time.Time
}

func (c SendMessageCommand) Origin() SessionID { return c.Session }

type SetTypingCommand struct {
	Session  SessionID
	IsTyping bool
}

func (c SetTypingCommand) Origin() SessionID { return c.Session }

type LeaveRoomCommand struct {
	Session SessionID
}

func (c LeaveRoomCommand) Origin() SessionID { return c.Session }

type DisconnectCommand struct {
	Session SessionID
}

func (c DisconnectCommand) Origin() SessionID { return c.Session }

// TypingExpiredCommand is synthesized by the presence tracker when a
// typing deadline elapses without a refresh or explicit stop. It travels
// through the same dispatch queue as user-issued commands so expiry
// observes the same ordering as everything else. Generation guards
// against a stale timer firing after a refresh.
type TypingExpiredCommand struct {
	Identity   IdentityID
	Room       string
	Generation uint64
}

func (c TypingExpiredCommand) Origin() SessionID { return "" }
