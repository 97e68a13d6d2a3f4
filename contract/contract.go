//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"

	"roomcast/domain"
	"roomcast/domain/event"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// EventSink receives outbound events for one consumer. Consume must not
// block the caller; slow consumers drop rather than stall the dispatcher.
type EventSink interface {
	Consume(ctx context.Context, e event.OutboundEvent) error
}

// IRegistry owns the session/identity/sink mappings. All mutating methods
// are called from the dispatcher goroutine only.
type IRegistry interface {
	Register(session domain.SessionID, sink EventSink)
	Unregister(session domain.SessionID)
	Sink(session domain.SessionID) (EventSink, bool)
	RegisterIdentity(session domain.SessionID, displayName, room string, at time.Time) (domain.Identity, error)
	Lookup(session domain.SessionID) (domain.Identity, bool)
	LookupID(id domain.IdentityID) (domain.Identity, bool)
	Remove(session domain.SessionID) (domain.Identity, bool)
	SessionCount() int
	IdentityCount() int
}

// IRoomStore owns room membership and each room's bounded message log.
type IRoomStore interface {
	Join(identity domain.Identity)
	Leave(identity domain.Identity)
	AppendMessage(room string, message domain.Message)
	History(room string) []domain.Message
	MembersResolved(room string) []domain.Identity
	RoomCount() int
}

// IPresenceTracker owns per-room typing state with timed auto-expiry.
// OnExpiry installs the callback through which elapsed deadlines re-enter
// the dispatch queue.
type IPresenceTracker interface {
	OnExpiry(fn func(cmd domain.TypingExpiredCommand))
	SetTyping(id domain.IdentityID, room string, isTyping bool)
	Expire(id domain.IdentityID, room string, generation uint64) bool
	CurrentTyping(room string) []domain.IdentityID
	Clear(id domain.IdentityID, room string) bool
}

// IDispatcher accepts inbound work from transports.
type IDispatcher interface {
	Attach(session domain.SessionID, sink EventSink)
	Dispatch(cmd domain.Command)
}
