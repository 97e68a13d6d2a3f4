// Package domain contains core concepts of the presence system.
// This file defines Message events and related rules.
// Messages are immutable and validated by the domain.
package domain

import (
	"time"

	"github.com/google/uuid"
)

type MessageKind string

const (
	// KindUser marks a participant-authored message. Only these are
	// retained in a room's log.
	KindUser MessageKind = "user"
	// KindSystem marks ephemeral notices (welcome, join, leave).
	// They are broadcast and never retained.
	KindSystem MessageKind = "system"
)

// Message represents an immutable chat event.
type Message struct {
	ID        uuid.UUID // unique identifier
	Sender    string    // display name of the author, empty for system notices
	Body      string
	Kind      MessageKind
	CreatedAt time.Time
}

func NewUserMessage(sender, body string, at time.Time) Message {
	return Message{
		ID:        uuid.New(),
		Sender:    sender,
		Body:      body,
		Kind:      KindUser,
		CreatedAt: at,
	}
}

func NewSystemMessage(body string, at time.Time) Message {
	return Message{
		ID:        uuid.New(),
		Body:      body,
		Kind:      KindSystem,
		CreatedAt: at,
	}
}
