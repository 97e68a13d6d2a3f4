package runtime

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"roomcast/domain"
	"roomcast/domain/event"
	"roomcast/errors"
)

type nopSink struct{}

func (nopSink) Consume(_ context.Context, _ event.OutboundEvent) error { return nil }

func testRegistry() *Registry {
	return NewRegistry(domain.NewValidator(domain.Limits{
		MaxDisplayNameLength: 24,
		MaxRoomNameLength:    32,
		MaxMessageLength:     500,
	}))
}

func TestRegistry_RegisterIdentity(t *testing.T) {
	req := require.New(t)
	registry := testRegistry()
	session := domain.SessionID(uuid.NewString())

	// Given no identity exists
	req.Zero(registry.IdentityCount())

	// When a session registers
	identity, err := registry.RegisterIdentity(session, "Alice", "general", time.Now())

	// Then the mapping exists in both directions
	req.NoError(err)
	req.NotEmpty(identity.ID)
	req.Equal(1, registry.IdentityCount())

	found, ok := registry.Lookup(session)
	req.True(ok)
	req.Equal(identity, found)

	byID, ok := registry.LookupID(identity.ID)
	req.True(ok)
	req.Equal(identity, byID)
}

func TestRegistry_RegisterIdentity_RejectsBadNames(t *testing.T) {
	req := require.New(t)
	registry := testRegistry()
	session := domain.SessionID(uuid.NewString())

	_, err := registry.RegisterIdentity(session, "", "general", time.Now())
	req.True(errors.IsValidation(err))

	_, err = registry.RegisterIdentity(session, "Alice", "bad/room", time.Now())
	req.True(errors.IsValidation(err))

	// Nothing was recorded
	req.Zero(registry.IdentityCount())
}

func TestRegistry_SecondJoinYieldsFreshIdentity(t *testing.T) {
	req := require.New(t)
	registry := testRegistry()
	session := domain.SessionID(uuid.NewString())

	first, err := registry.RegisterIdentity(session, "Alice", "general", time.Now())
	req.NoError(err)
	second, err := registry.RegisterIdentity(session, "Alice", "general", time.Now())
	req.NoError(err)

	// A new join never reuses an identity id
	req.NotEqual(first.ID, second.ID)

	// The old reverse mapping is gone, only the new one resolves
	_, ok := registry.LookupID(first.ID)
	req.False(ok)
	byID, ok := registry.LookupID(second.ID)
	req.True(ok)
	req.Equal(second, byID)
	req.Equal(1, registry.IdentityCount())
}

func TestRegistry_Remove_IsIdempotent(t *testing.T) {
	req := require.New(t)
	registry := testRegistry()
	session := domain.SessionID(uuid.NewString())

	identity, err := registry.RegisterIdentity(session, "Alice", "general", time.Now())
	req.NoError(err)

	// First removal returns the identity
	removed, ok := registry.Remove(session)
	req.True(ok)
	req.Equal(identity, removed)
	req.Zero(registry.IdentityCount())

	// Second removal reports absence and mutates nothing
	_, ok = registry.Remove(session)
	req.False(ok)

	_, ok = registry.LookupID(identity.ID)
	req.False(ok)
}

func TestRegistry_SinkLifecycle(t *testing.T) {
	req := require.New(t)
	registry := testRegistry()
	session := domain.SessionID(uuid.NewString())
	sink := nopSink{}

	registry.Register(session, sink)
	req.Equal(1, registry.SessionCount())

	found, ok := registry.Sink(session)
	req.True(ok)
	req.Equal(sink, found)

	registry.Unregister(session)
	req.Zero(registry.SessionCount())

	// Unregister twice is a no-op
	registry.Unregister(session)
	req.Zero(registry.SessionCount())
}
