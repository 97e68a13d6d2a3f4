package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/samber/lo"

	"roomcast/contract"
	"roomcast/domain"
	"roomcast/domain/event"
	"roomcast/errors"
	"roomcast/observability"
)

// Ensure *Dispatcher satisfies its contracts at compile time.
var (
	_ contract.Worker      = (*Dispatcher)(nil)
	_ contract.IDispatcher = (*Dispatcher)(nil)
)

// task is one unit of inbound work. attach and sink are set only for
// attach tasks, which bind a freshly opened connection to its event sink.
type task struct {
	cmd    domain.Command
	attach domain.SessionID
	sink   contract.EventSink
}

// Dispatcher is the single writer over the three stores. It consumes
// inbound commands one at a time: all store mutations and all resulting
// outbound sends for one command are issued before the next command is
// taken, which is what makes membership snapshots and typing sets
// consistent across concurrently connected clients without any locking.
//
// Outbound delivery is fire-and-forget; a slow client only ever loses
// its own events.
type Dispatcher struct {
	log       *slog.Logger
	registry  contract.IRegistry
	rooms     contract.IRoomStore
	presence  contract.IPresenceTracker
	validator *domain.Validator
	stats     *observability.Stats
	tasks     chan task
}

func NewDispatcher(
	log *slog.Logger,
	registry contract.IRegistry,
	rooms contract.IRoomStore,
	presence contract.IPresenceTracker,
	validator *domain.Validator,
	stats *observability.Stats,
	bufferSize int,
) *Dispatcher {
	d := &Dispatcher{
		log:       log,
		registry:  registry,
		rooms:     rooms,
		presence:  presence,
		validator: validator,
		stats:     stats,
		tasks:     make(chan task, bufferSize),
	}
	presence.OnExpiry(func(cmd domain.TypingExpiredCommand) {
		d.Dispatch(cmd)
	})
	return d
}

// Attach binds a newly opened connection to its sink. Processed through
// the queue so registry mutation stays on the single-writer path.
func (d *Dispatcher) Attach(session domain.SessionID, sink contract.EventSink) {
	d.enqueue(task{attach: session, sink: sink})
}

// Dispatch queues an inbound command. Delivery is best effort: when the
// queue is full the command is dropped with a warning, matching the
// overall no-guarantees contract.
func (d *Dispatcher) Dispatch(cmd domain.Command) {
	d.enqueue(task{cmd: cmd})
}

func (d *Dispatcher) enqueue(t task) {
	select {
	case d.tasks <- t:
	default:
		session := t.attach
		if t.cmd != nil {
			session = t.cmd.Origin()
		}
		d.log.Warn("Dropping command", "session", session, "error", errors.ErrQueueFull)
	}
}

// Run consumes the queue until the context is canceled. Implements
// contract.Worker so the supervisor owns its lifecycle.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			d.log.Debug("Stopping dispatcher")
			return ctx.Err()
		case t, ok := <-d.tasks:
			if !ok {
				return nil
			}
			d.handle(ctx, t)
			d.stats.IncrCommands()
			d.stats.SetGauges(
				d.registry.SessionCount(),
				d.registry.IdentityCount(),
				d.rooms.RoomCount(),
			)
		}
	}
}

// handle processes one task to completion. A panic inside a handler is
// converted to a generic error event for the offending connection; the
// dispatcher itself must never die with a half-applied room untouched
// for everyone else.
func (d *Dispatcher) handle(ctx context.Context, t task) {
	defer func() {
		if r := recover(); r != nil {
			var session domain.SessionID
			if t.cmd != nil {
				session = t.cmd.Origin()
			}
			err := errors.InternalError{Cause: fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)}
			d.log.Error("Command handler panicked", "session", session, "error", err)
			d.replyError(ctx, session, err)
		}
	}()

	if t.attach != "" {
		d.registry.Register(t.attach, t.sink)
		return
	}

	switch cmd := t.cmd.(type) {
	case domain.JoinRoomCommand:
		d.handleJoin(ctx, cmd)
	case domain.SendMessageCommand:
		d.handleSendMessage(ctx, cmd)
	case domain.SetTypingCommand:
		d.handleSetTyping(ctx, cmd)
	case domain.TypingExpiredCommand:
		d.handleTypingExpired(ctx, cmd)
	case domain.LeaveRoomCommand:
		d.handleLeave(ctx, cmd)
	case domain.DisconnectCommand:
		d.handleDisconnect(ctx, cmd)
	default:
		d.log.Warn(fmt.Sprintf("Unhandled command type %T", t.cmd))
	}
}

func (d *Dispatcher) handleJoin(ctx context.Context, cmd domain.JoinRoomCommand) {
	// Malformed input is rejected before any state is touched: a failed
	// join must leave a previously joined identity exactly where it was.
	if err := d.validator.DisplayName(cmd.DisplayName); err != nil {
		d.replyError(ctx, cmd.Session, err)
		return
	}
	if err := d.validator.RoomName(cmd.Room); err != nil {
		d.replyError(ctx, cmd.Session, err)
		return
	}

	// A second join on the same session yields a brand-new identity;
	// the previous one is cleaned up exactly like an explicit leave.
	if previous, ok := d.registry.Remove(cmd.Session); ok {
		d.cleanup(ctx, previous)
		d.announceDeparture(ctx, previous)
	}

	identity, err := d.registry.RegisterIdentity(cmd.Session, cmd.DisplayName, cmd.Room, cmd.At)
	if err != nil {
		d.replyError(ctx, cmd.Session, err)
		return
	}
	d.rooms.Join(identity)

	welcome := domain.NewSystemMessage(
		fmt.Sprintf("Welcome to %s, %s", identity.Room, identity.DisplayName), cmd.At)
	d.sendTo(ctx, cmd.Session, event.MessageEvent{Message: welcome})

	joined := domain.NewSystemMessage(
		fmt.Sprintf("%s joined the room", identity.DisplayName), cmd.At)
	d.broadcast(ctx, identity.Room, event.MessageEvent{Message: joined}, identity.ID)

	d.sendTo(ctx, cmd.Session, event.RoomHistoryEvent{Messages: d.rooms.History(identity.Room)})
	d.broadcast(ctx, identity.Room, d.onlineUsers(identity.Room), "")

	d.log.Info("Participant joined",
		"identity", identity.ID, "room", identity.Room, "name", identity.DisplayName)
}

func (d *Dispatcher) handleSendMessage(ctx context.Context, cmd domain.SendMessageCommand) {
	identity, ok := d.registry.Lookup(cmd.Session)
	if !ok {
		d.replyError(ctx, cmd.Session, errors.NewNotFound("join a room before sending messages"))
		return
	}
	if err := d.validator.MessageBody(cmd.Body); err != nil {
		d.replyError(ctx, cmd.Session, err)
		return
	}

	message := domain.NewUserMessage(identity.DisplayName, cmd.Body, cmd.At)
	d.rooms.AppendMessage(identity.Room, message)
	d.broadcast(ctx, identity.Room, event.MessageEvent{Message: message}, "")
}

func (d *Dispatcher) handleSetTyping(ctx context.Context, cmd domain.SetTypingCommand) {
	identity, ok := d.registry.Lookup(cmd.Session)
	if !ok {
		d.replyError(ctx, cmd.Session, errors.NewNotFound("join a room before typing"))
		return
	}
	d.presence.SetTyping(identity.ID, identity.Room, cmd.IsTyping)
	d.broadcast(ctx, identity.Room, d.typingSet(identity.Room), identity.ID)
}

func (d *Dispatcher) handleTypingExpired(ctx context.Context, cmd domain.TypingExpiredCommand) {
	// An uncancelled timer firing after cleanup is tolerated as a no-op.
	if !d.presence.Expire(cmd.Identity, cmd.Room, cmd.Generation) {
		return
	}
	d.broadcast(ctx, cmd.Room, d.typingSet(cmd.Room), cmd.Identity)
}

func (d *Dispatcher) handleLeave(ctx context.Context, cmd domain.LeaveRoomCommand) {
	identity, ok := d.registry.Remove(cmd.Session)
	if !ok {
		d.replyError(ctx, cmd.Session, errors.NewNotFound("no room to leave"))
		return
	}
	d.cleanup(ctx, identity)
	d.announceDeparture(ctx, identity)
	d.sendTo(ctx, cmd.Session, event.LeftRoomEvent{})
}

// handleDisconnect runs the same cleanup as an explicit leave without the
// confirmation, then forgets the connection. A disconnect racing with or
// following a leave finds nothing to remove and stays silent: cleanup is
// best effort and never produces a user-visible error.
func (d *Dispatcher) handleDisconnect(ctx context.Context, cmd domain.DisconnectCommand) {
	if identity, ok := d.registry.Remove(cmd.Session); ok {
		d.cleanup(ctx, identity)
		d.announceDeparture(ctx, identity)
	}
	d.registry.Unregister(cmd.Session)
}

// cleanup tears down an identity's presence and membership. When the
// identity was still marked as typing, the remaining members get the
// corrected typing set right away instead of waiting out the deadline.
func (d *Dispatcher) cleanup(ctx context.Context, identity domain.Identity) {
	wasTyping := d.presence.Clear(identity.ID, identity.Room)
	d.rooms.Leave(identity)
	if wasTyping {
		d.broadcast(ctx, identity.Room, d.typingSet(identity.Room), identity.ID)
	}
}

func (d *Dispatcher) announceDeparture(ctx context.Context, identity domain.Identity) {
	left := domain.NewSystemMessage(
		fmt.Sprintf("%s left the room", identity.DisplayName), time.Now().UTC())
	d.broadcast(ctx, identity.Room, event.MessageEvent{Message: left}, identity.ID)
	d.broadcast(ctx, identity.Room, d.onlineUsers(identity.Room), "")
}

func (d *Dispatcher) onlineUsers(room string) event.OnlineUsersEvent {
	members := d.rooms.MembersResolved(room)
	sort.Slice(members, func(i, j int) bool {
		return members[i].JoinedAt.Before(members[j].JoinedAt)
	})
	return event.OnlineUsersEvent{
		Users: lo.Map(members, func(identity domain.Identity, _ int) event.UserInfo {
			return event.UserInfo{ID: identity.ID, DisplayName: identity.DisplayName}
		}),
	}
}

func (d *Dispatcher) typingSet(room string) event.TypingEvent {
	users := lo.FilterMap(d.presence.CurrentTyping(room),
		func(id domain.IdentityID, _ int) (event.UserInfo, bool) {
			identity, ok := d.registry.LookupID(id)
			return event.UserInfo{ID: identity.ID, DisplayName: identity.DisplayName}, ok
		})
	sort.Slice(users, func(i, j int) bool {
		return users[i].DisplayName < users[j].DisplayName
	})
	return event.TypingEvent{Users: users}
}

// broadcast delivers an event to every resolved member of a room,
// excluding at most one identity (the sender or the expired one).
func (d *Dispatcher) broadcast(ctx context.Context, room string, e event.OutboundEvent, exclude domain.IdentityID) {
	var delivered uint64
	for _, member := range d.rooms.MembersResolved(room) {
		if member.ID == exclude {
			continue
		}
		if sink, ok := d.registry.Sink(member.Session); ok {
			if err := sink.Consume(ctx, e); err != nil {
				d.log.Debug("Sink rejected event",
					"session", member.Session, "type", e.Type(), "error", err)
				continue
			}
			delivered++
		}
	}
	d.stats.AddDelivered(delivered)
}

// sendTo delivers an event to a single connection.
func (d *Dispatcher) sendTo(ctx context.Context, session domain.SessionID, e event.OutboundEvent) {
	sink, ok := d.registry.Sink(session)
	if !ok {
		d.log.Debug("No sink for session", "session", session, "type", e.Type())
		return
	}
	if err := sink.Consume(ctx, e); err != nil {
		d.log.Debug("Sink rejected event", "session", session, "type", e.Type(), "error", err)
		return
	}
	d.stats.AddDelivered(1)
}

func (d *Dispatcher) replyError(ctx context.Context, session domain.SessionID, err error) {
	if session == "" {
		return
	}
	d.sendTo(ctx, session, event.ErrorEvent{Message: errors.UserMessage(err)})
}
