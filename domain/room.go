package domain

import "time"

// Room is a named broadcast scope: a membership set plus a bounded,
// chronologically ordered message log.
type Room struct {
	Name      string
	CreatedAt time.Time
	members   map[IdentityID]struct{}
	log       []Message
	capacity  int
}

func NewRoom(name string, capacity int, now time.Time) *Room {
	return &Room{
		Name:      name,
		CreatedAt: now,
		members:   make(map[IdentityID]struct{}),
		capacity:  capacity,
	}
}

func (r *Room) AddMember(id IdentityID) {
	r.members[id] = struct{}{}
}

func (r *Room) RemoveMember(id IdentityID) {
	delete(r.members, id)
}

func (r *Room) HasMember(id IdentityID) bool {
	_, ok := r.members[id]
	return ok
}

func (r *Room) Members() []IdentityID {
	ids := make([]IdentityID, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}
	return ids
}

func (r *Room) MemberCount() int {
	return len(r.members)
}

// PostMessage appends a message to the log. When the log exceeds the
// room's capacity the oldest entries are dropped first (FIFO retention).
func (r *Room) PostMessage(message Message) {
	r.log = append(r.log, message)
	if r.capacity > 0 && len(r.log) > r.capacity {
		r.log = r.log[len(r.log)-r.capacity:]
	}
}

// History returns the retained log in chronological order.
func (r *Room) History() []Message {
	out := make([]Message, len(r.log))
	copy(out, r.log)
	return out
}
