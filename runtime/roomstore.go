package runtime

import (
	"time"

	"roomcast/contract"
	"roomcast/domain"
)

// RoomStore owns every room's membership set and bounded message log.
// Rooms are created lazily on first join and retained even when empty.
// Like the registry, it is mutated only from the dispatcher goroutine.
type RoomStore struct {
	registry contract.IRegistry
	rooms    map[string]*domain.Room
	capacity int
}

func NewRoomStore(registry contract.IRegistry, capacity int) *RoomStore {
	return &RoomStore{
		registry: registry,
		rooms:    make(map[string]*domain.Room),
		capacity: capacity,
	}
}

// Join adds the identity to its room, creating the room on first use.
func (s *RoomStore) Join(identity domain.Identity) {
	room, ok := s.rooms[identity.Room]
	if !ok {
		room = domain.NewRoom(identity.Room, s.capacity, time.Now().UTC())
		s.rooms[identity.Room] = room
	}
	room.AddMember(identity.ID)
}

// Leave removes the identity from its room's membership set. The room
// itself is retained even when the set becomes empty.
func (s *RoomStore) Leave(identity domain.Identity) {
	if room, ok := s.rooms[identity.Room]; ok {
		room.RemoveMember(identity.ID)
	}
}

// AppendMessage appends to a room's log, evicting oldest-first beyond
// capacity. A missing room is a no-op; the protocol never appends before
// a join created the room.
func (s *RoomStore) AppendMessage(roomName string, message domain.Message) {
	room, ok := s.rooms[roomName]
	if !ok {
		return
	}
	room.PostMessage(message)
}

// History returns the retained log in chronological order, empty if the
// room does not exist.
func (s *RoomStore) History(roomName string) []domain.Message {
	room, ok := s.rooms[roomName]
	if !ok {
		return nil
	}
	return room.History()
}

// MembersResolved resolves every member id through the registry. An id
// that no longer resolves is silently excluded; under the single-writer
// discipline this filter should never actually drop anything.
func (s *RoomStore) MembersResolved(roomName string) []domain.Identity {
	room, ok := s.rooms[roomName]
	if !ok {
		return nil
	}
	var identities []domain.Identity
	for _, id := range room.Members() {
		if identity, found := s.registry.LookupID(id); found {
			identities = append(identities, identity)
		}
	}
	return identities
}

func (s *RoomStore) RoomCount() int {
	return len(s.rooms)
}
