package runtime

import (
	"time"

	"roomcast/domain"
)

type typingEntry struct {
	timer      *time.Timer
	generation uint64
	deadline   time.Time
}

// PresenceTracker owns per-room typing state with timed auto-expiry.
//
// State is mutated only from the dispatcher goroutine. Each positive
// signal arms a timer whose callback does nothing but enqueue a
// TypingExpiredCommand back into the dispatch queue, so expiry takes the
// same single-writer path as user-issued commands. The generation counter
// makes a stale timer firing after a refresh or cleanup a guarded no-op.
type PresenceTracker struct {
	ttl     time.Duration
	entries map[string]map[domain.IdentityID]*typingEntry
	gen     uint64
	expire  func(cmd domain.TypingExpiredCommand)
}

func NewPresenceTracker(ttl time.Duration) *PresenceTracker {
	return &PresenceTracker{
		ttl:     ttl,
		entries: make(map[string]map[domain.IdentityID]*typingEntry),
	}
}

// OnExpiry installs the callback used to re-enter the dispatch queue.
// Must be set before the first SetTyping.
func (t *PresenceTracker) OnExpiry(fn func(cmd domain.TypingExpiredCommand)) {
	t.expire = fn
}

// SetTyping inserts or refreshes the entry when isTyping is true, resetting
// the deadline to now+ttl (debounce). When false it removes the entry and
// cancels the pending timer immediately.
func (t *PresenceTracker) SetTyping(id domain.IdentityID, room string, isTyping bool) {
	if !isTyping {
		t.Clear(id, room)
		return
	}

	byID, ok := t.entries[room]
	if !ok {
		byID = make(map[domain.IdentityID]*typingEntry)
		t.entries[room] = byID
	}

	if entry, exists := byID[id]; exists {
		entry.timer.Stop()
	}

	t.gen++
	gen := t.gen
	byID[id] = &typingEntry{
		generation: gen,
		deadline:   time.Now().Add(t.ttl),
		timer: time.AfterFunc(t.ttl, func() {
			t.expire(domain.TypingExpiredCommand{Identity: id, Room: room, Generation: gen})
		}),
	}
}

// Expire removes the entry if it still belongs to the firing timer's
// generation. Returns whether anything was removed, i.e. whether the
// dispatcher needs to re-broadcast the typing set.
func (t *PresenceTracker) Expire(id domain.IdentityID, room string, generation uint64) bool {
	byID, ok := t.entries[room]
	if !ok {
		return false
	}
	entry, ok := byID[id]
	if !ok || entry.generation != generation {
		return false
	}
	delete(byID, id)
	return true
}

// CurrentTyping returns the identity ids currently typing in a room.
func (t *PresenceTracker) CurrentTyping(room string) []domain.IdentityID {
	byID, ok := t.entries[room]
	if !ok {
		return nil
	}
	ids := make([]domain.IdentityID, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	return ids
}

// Clear drops the entry and cancels its timer. Used by leave and
// disconnect cleanup; idempotent. Reports whether an entry existed so
// the dispatcher knows the room's typing set changed.
func (t *PresenceTracker) Clear(id domain.IdentityID, room string) bool {
	byID, ok := t.entries[room]
	if !ok {
		return false
	}
	entry, exists := byID[id]
	if !exists {
		return false
	}
	entry.timer.Stop()
	delete(byID, id)
	return true
}
