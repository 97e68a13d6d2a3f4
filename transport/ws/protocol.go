// Package ws is the websocket glue between clients and the presence
// core. It only frames events: validation, routing, and state live
// behind the service facade.
package ws

import (
	"encoding/json"
	"time"

	"github.com/samber/lo"

	"roomcast/domain"
	"roomcast/domain/event"
	"roomcast/errors"
)

// inboundFrame is the envelope of every client-to-server frame.
type inboundFrame struct {
	Type        string `json:"type"`
	DisplayName string `json:"displayName,omitempty"`
	Room        string `json:"room,omitempty"`
	Body        string `json:"body,omitempty"`
	IsTyping    bool   `json:"isTyping,omitempty"`
}

// outboundFrame is the envelope of every server-to-client frame.
type outboundFrame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type messagePayload struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender,omitempty"`
	Body      string    `json:"body"`
	Kind      string    `json:"kind"`
	CreatedAt time.Time `json:"createdAt"`
}

type historyPayload struct {
	Messages []messagePayload `json:"messages"`
}

type userPayload struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type onlineUsersPayload struct {
	Users []userPayload `json:"users"`
}

type typingPayload struct {
	Users []userPayload `json:"users"`
}

type errorPayload struct {
	Message string `json:"message"`
}

func toMessagePayload(m domain.Message) messagePayload {
	return messagePayload{
		ID:        m.ID.String(),
		Sender:    m.Sender,
		Body:      m.Body,
		Kind:      string(m.Kind),
		CreatedAt: m.CreatedAt,
	}
}

// encodeEvent frames an outbound event for the wire.
func encodeEvent(e event.OutboundEvent) ([]byte, error) {
	var payload any
	switch evt := e.(type) {
	case event.MessageEvent:
		payload = toMessagePayload(evt.Message)
	case event.RoomHistoryEvent:
		payload = historyPayload{
			Messages: lo.Map(evt.Messages, func(m domain.Message, _ int) messagePayload {
				return toMessagePayload(m)
			}),
		}
	case event.OnlineUsersEvent:
		payload = onlineUsersPayload{
			Users: lo.Map(evt.Users, func(u event.UserInfo, _ int) userPayload {
				return userPayload{ID: string(u.ID), DisplayName: u.DisplayName}
			}),
		}
	case event.TypingEvent:
		payload = typingPayload{
			Users: lo.Map(evt.Users, func(u event.UserInfo, _ int) userPayload {
				return userPayload{ID: string(u.ID), DisplayName: u.DisplayName}
			}),
		}
	case event.LeftRoomEvent:
		payload = struct{}{}
	case event.ErrorEvent:
		payload = errorPayload{Message: evt.Message}
	default:
		return nil, errors.ErrUnknownEvent
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(outboundFrame{Type: e.Type(), Payload: raw})
}
