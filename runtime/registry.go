// Package runtime wires commands, state mutation, and event fanout.
// It orchestrates the system without containing business logic or domain rules.
package runtime

import (
	"time"

	"roomcast/contract"
	"roomcast/domain"
)

// Registry maps transport sessions to participant identities and back,
// and keeps the event sink of every open connection.
//
// It is confined to the dispatcher goroutine: every mutation happens on
// the single-writer path, so no locking is required. Counts consumed by
// the stats reporter are mirrored into observability counters by the
// dispatcher instead of being read from these maps.
type Registry struct {
	validator  *domain.Validator
	sinks      map[domain.SessionID]contract.EventSink
	identities map[domain.SessionID]domain.Identity
	sessions   map[domain.IdentityID]domain.SessionID
}

func NewRegistry(validator *domain.Validator) *Registry {
	return &Registry{
		validator:  validator,
		sinks:      make(map[domain.SessionID]contract.EventSink),
		identities: make(map[domain.SessionID]domain.Identity),
		sessions:   make(map[domain.IdentityID]domain.SessionID),
	}
}

// Register records the sink of a newly opened connection.
func (r *Registry) Register(session domain.SessionID, sink contract.EventSink) {
	r.sinks[session] = sink
}

// Unregister forgets a closed connection. Idempotent.
func (r *Registry) Unregister(session domain.SessionID) {
	delete(r.sinks, session)
}

func (r *Registry) Sink(session domain.SessionID) (contract.EventSink, bool) {
	sink, ok := r.sinks[session]
	return sink, ok
}

// RegisterIdentity validates the supplied names, allocates a fresh
// identity id, and records the session and identity mappings in both
// directions. A reconnecting client always receives a brand-new id.
func (r *Registry) RegisterIdentity(session domain.SessionID, displayName, room string, at time.Time) (domain.Identity, error) {
	if err := r.validator.DisplayName(displayName); err != nil {
		return domain.Identity{}, err
	}
	if err := r.validator.RoomName(room); err != nil {
		return domain.Identity{}, err
	}

	// Replacing a still-bound session drops the old reverse entry too,
	// so no identity id ever dangles in the sessions map.
	if previous, bound := r.identities[session]; bound {
		delete(r.sessions, previous.ID)
	}

	identity := domain.Identity{
		ID:          domain.NewIdentityID(),
		DisplayName: displayName,
		Room:        room,
		Session:     session,
		JoinedAt:    at,
	}
	r.identities[session] = identity
	r.sessions[identity.ID] = session
	return identity, nil
}

func (r *Registry) Lookup(session domain.SessionID) (domain.Identity, bool) {
	identity, ok := r.identities[session]
	return identity, ok
}

func (r *Registry) LookupID(id domain.IdentityID) (domain.Identity, bool) {
	session, ok := r.sessions[id]
	if !ok {
		return domain.Identity{}, false
	}
	return r.Lookup(session)
}

// Remove destroys the identity bound to a session. Idempotent: a second
// call for the same session reports absence and mutates nothing.
func (r *Registry) Remove(session domain.SessionID) (domain.Identity, bool) {
	identity, ok := r.identities[session]
	if !ok {
		return domain.Identity{}, false
	}
	delete(r.identities, session)
	delete(r.sessions, identity.ID)
	return identity, true
}

func (r *Registry) SessionCount() int {
	return len(r.sinks)
}

func (r *Registry) IdentityCount() int {
	return len(r.identities)
}
