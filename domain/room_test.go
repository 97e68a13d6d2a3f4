package domain

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRoom_PostMessage_AppendsInOrder(t *testing.T) {
	req := require.New(t)
	room := NewRoom("general", 10, time.Now())

	first := NewUserMessage("Alice", "Hello Bob", time.Now())
	second := NewUserMessage("Bob", "Hello Alice", time.Now())

	room.PostMessage(first)
	room.PostMessage(second)

	history := room.History()
	req.Len(history, 2)
	req.Equal(first, history[0])
	req.Equal(second, history[1])
}

func TestRoom_PostMessage_EvictsOldestBeyondCapacity(t *testing.T) {
	req := require.New(t)
	room := NewRoom("general", 2, time.Now())

	// Given three messages in a room with capacity 2
	room.PostMessage(NewUserMessage("Alice", "a", time.Now()))
	room.PostMessage(NewUserMessage("Alice", "b", time.Now()))
	room.PostMessage(NewUserMessage("Alice", "c", time.Now()))

	// Then only the two most recent remain, still in order
	history := room.History()
	req.Len(history, 2)
	req.Equal("b", history[0].Body)
	req.Equal("c", history[1].Body)
}

func TestRoom_PostMessage_NeverExceedsCapacity(t *testing.T) {
	req := require.New(t)
	room := NewRoom("general", 5, time.Now())

	for i := 0; i < 50; i++ {
		room.PostMessage(NewUserMessage("Alice", fmt.Sprintf("msg-%d", i), time.Now()))
		req.LessOrEqual(len(room.History()), 5)
	}

	history := room.History()
	req.Equal("msg-45", history[0].Body)
	req.Equal("msg-49", history[4].Body)
}

func TestRoom_History_ReturnsCopy(t *testing.T) {
	req := require.New(t)
	room := NewRoom("general", 10, time.Now())
	room.PostMessage(NewUserMessage("Alice", "original", time.Now()))

	history := room.History()
	history[0].Body = "mutated"

	req.Equal("original", room.History()[0].Body)
}

func TestRoom_Membership(t *testing.T) {
	req := require.New(t)
	room := NewRoom("general", 10, time.Now())
	alice := NewIdentityID()
	bob := NewIdentityID()

	room.AddMember(alice)
	room.AddMember(bob)
	req.Equal(2, room.MemberCount())
	req.True(room.HasMember(alice))

	room.RemoveMember(alice)
	req.Equal(1, room.MemberCount())
	req.False(room.HasMember(alice))

	// Removing twice is a no-op
	room.RemoveMember(alice)
	req.Equal(1, room.MemberCount())
}
