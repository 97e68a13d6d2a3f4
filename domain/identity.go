// Package domain contains core concepts of the presence system.
// This file defines Identity records and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// SessionID identifies one transport connection. It is assigned by the
// transport layer and is opaque to the core.
type SessionID string

// IdentityID identifies one joined participant. A fresh one is allocated
// at every join, never reused across reconnects.
type IdentityID string

func NewIdentityID() IdentityID {
	return IdentityID(uuid.NewString())
}

// Identity represents one connected, joined participant.
// Exactly one active Identity exists per session, and one session per Identity.
type Identity struct {
	ID          IdentityID
	DisplayName string
	Room        string
	Session     SessionID
	JoinedAt    time.Time
}
