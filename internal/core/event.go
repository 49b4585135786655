package core

import (
	"fmt"
	"time"
)

// EventKind is a notification the core emits to clients.
type EventKind int

const (
	// EventNotification is a user-targeted notification (like, comment, save, follow).
	EventNotification EventKind = iota
	// EventPinLiked tells a pin's viewers that someone liked it.
	EventPinLiked
	// EventPinCommented tells a pin's viewers that someone commented on it.
	EventPinCommented
	// EventChatMessage delivers a direct message to its recipient.
	EventChatMessage
)

var eventNames = [...]string{
	EventNotification: "notification:new",
	EventPinLiked:     "pin:liked",
	EventPinCommented: "pin:commented",
	EventChatMessage:  "chat:message",
}

func (k EventKind) String() string {
	if k >= 0 && int(k) < len(eventNames) {
		return eventNames[k]
	}
	return fmt.Sprintf("event(%d)", int(k))
}

// NotificationType mirrors the notification kinds of the persisted store.
type NotificationType string

const (
	NotificationLike    NotificationType = "like"
	NotificationComment NotificationType = "comment"
	NotificationSave    NotificationType = "save"
	NotificationFollow  NotificationType = "follow"
)

// Event is sent to clients to describe what happened in the system.
// Exactly one of the payload pointers is set, matching Kind.
type Event struct {
	Kind         EventKind
	Notification *Notification
	Pin          *PinActivity
	Chat         *ChatMessage
}

// Notification is the payload of EventNotification.
type Notification struct {
	Type    NotificationType
	PinID   string // empty for follow
	Sender  Identity
	Message string
}

// PinActivity is the payload of EventPinLiked and EventPinCommented.
type PinActivity struct {
	PinID   string
	Comment string // only for EventPinCommented
	User    Identity
}

// ChatMessage is the payload of EventChatMessage.
type ChatMessage struct {
	Sender Identity
	Text   string
	SentAt time.Time
}
