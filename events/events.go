package events

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeRoleGranted        EventType = "role_granted"
	EventTypeRoleRevoked        EventType = "role_revoked"
	EventTypeReactionSuppressed EventType = "reaction_suppressed"
	EventTypeMemberWelcomed     EventType = "member_welcomed"
	EventTypeInvitesRefreshed   EventType = "invites_refreshed"
)

// AllEventTypes lists every event type the bus carries
var AllEventTypes = []EventType{
	EventTypeRoleGranted,
	EventTypeRoleRevoked,
	EventTypeReactionSuppressed,
	EventTypeMemberWelcomed,
	EventTypeInvitesRefreshed,
}

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// RoleGrantedEvent is emitted after a reaction granted a role
type RoleGrantedEvent struct {
	GuildID   string `json:"guildId"`
	MessageID string `json:"messageId"`
	UserID    string `json:"userId"`
	RoleID    string `json:"roleId"`
	Emoji     string `json:"emoji"`
}

func (e RoleGrantedEvent) Type() EventType {
	return EventTypeRoleGranted
}

// RoleRevokedEvent is emitted after a user removed their reaction and lost the role
type RoleRevokedEvent struct {
	GuildID   string `json:"guildId"`
	MessageID string `json:"messageId"`
	UserID    string `json:"userId"`
	RoleID    string `json:"roleId"`
	Emoji     string `json:"emoji"`
}

func (e RoleRevokedEvent) Type() EventType {
	return EventTypeRoleRevoked
}

// ReactionSuppressedEvent is emitted when the echo of a bot-initiated
// reaction removal was recognised and ignored
type ReactionSuppressedEvent struct {
	GuildID   string `json:"guildId"`
	MessageID string `json:"messageId"`
	UserID    string `json:"userId"`
	Emoji     string `json:"emoji"`
}

func (e ReactionSuppressedEvent) Type() EventType {
	return EventTypeReactionSuppressed
}

// MemberWelcomedEvent is emitted for every processed member join that
// produced a notice
type MemberWelcomedEvent struct {
	GuildID     string `json:"guildId"`
	UserID      string `json:"userId"`
	Attribution string `json:"attribution"`
	InviteCode  string `json:"inviteCode,omitempty"`
	InviterID   string `json:"inviterId,omitempty"`
	Delivered   bool   `json:"delivered"`
}

func (e MemberWelcomedEvent) Type() EventType {
	return EventTypeMemberWelcomed
}

// InvitesRefreshedEvent is emitted after a guild's invite snapshot was replaced
type InvitesRefreshedEvent struct {
	GuildID     string `json:"guildId"`
	InviteCount int    `json:"inviteCount"`
	Reason      string `json:"reason"`
}

func (e InvitesRefreshedEvent) Type() EventType {
	return EventTypeInvitesRefreshed
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	inflight sync.WaitGroup
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// SubscribeAll adds a handler for every event type
func (b *Bus) SubscribeAll(handler Handler) {
	for _, eventType := range AllEventTypes {
		b.Subscribe(eventType, handler)
	}
}

// Emit publishes an event to all registered handlers. Handlers run in their
// own goroutines and a panicking handler is logged, not propagated.
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := append([]Handler(nil), b.handlers[event.Type()]...)
	b.mu.RUnlock()

	log.WithFields(log.Fields{
		"eventType":    event.Type(),
		"handlerCount": len(handlers),
	}).Debug("Emitting event")

	for i, handler := range handlers {
		b.inflight.Add(1)
		go func(h Handler, handlerIndex int) {
			defer b.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// Wait blocks until every handler started by Emit has returned. Used on
// shutdown so forwarded events are not lost.
func (b *Bus) Wait() {
	b.inflight.Wait()
}
