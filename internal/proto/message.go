package proto

import (
	"bytes"
	"encoding/json"
	"time"
)

// Inbound is the envelope for messages coming from the client.
type Inbound struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

const (
	InboundPinView     = "pin:view"
	InboundPinLeave    = "pin:leave"
	InboundPinLike     = "pin:like"
	InboundPinComment  = "pin:comment"
	InboundPinSave     = "pin:save"
	InboundUserFollow  = "user:follow"
	InboundChatMessage = "chat:message"

	OutboundNotification = "notification:new"
	OutboundPinLiked     = "pin:liked"
	OutboundPinCommented = "pin:commented"
	OutboundChatMessage  = "chat:message"
)

// Handshake rejection reasons.
const (
	ReasonTokenMissing = "Authentication error: Token not provided"
	ReasonInvalidToken = "Authentication error: Invalid token"
	ReasonUserNotFound = "Authentication error: User not found"
)

// PinRef identifies a pin for pin:view and pin:leave. Clients send either the
// bare id as a JSON string or an object with pinId.
type PinRef struct {
	PinID string `json:"pinId"`
}

// UnmarshalJSON accepts both "abc" and {"pinId":"abc"}.
func (p *PinRef) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		return json.Unmarshal(trimmed, &p.PinID)
	}
	type plain PinRef
	var v plain
	if err := json.Unmarshal(trimmed, &v); err != nil {
		return err
	}
	*p = PinRef(v)
	return nil
}

// PinLikeData is sent when a user likes a pin.
type PinLikeData struct {
	PinID        string `json:"pinId"`
	PinCreatorID string `json:"pinCreatorId"`
}

// PinCommentData is sent when a user comments on a pin. Comment is nil when
// the field is absent; an empty string is a valid comment.
type PinCommentData struct {
	PinID        string  `json:"pinId"`
	PinCreatorID string  `json:"pinCreatorId"`
	Comment      *string `json:"comment"`
}

// PinSaveData is sent when a user saves a pin, optionally into a collection.
type PinSaveData struct {
	PinID          string `json:"pinId"`
	PinCreatorID   string `json:"pinCreatorId"`
	CollectionID   string `json:"collectionId,omitempty"`
	CollectionName string `json:"collectionName,omitempty"`
}

// UserFollowData is sent when a user follows another user.
type UserFollowData struct {
	FollowedUserID string `json:"followedUserId"`
}

// ChatMessageData is a direct message from the client. Message is nil when
// the field is absent.
type ChatMessageData struct {
	RecipientID string  `json:"recipientId"`
	Message     *string `json:"message"`
}

// Outbound is the envelope for messages sent to the client.
type Outbound struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Sender identifies who caused a notification.
type Sender struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// EventNotification is emitted on notification:new.
type EventNotification struct {
	Type    string `json:"type"`
	PinID   string `json:"pinId,omitempty"`
	Sender  Sender `json:"sender"`
	Message string `json:"message"`
}

// EventPinLiked is broadcast to a pin's viewers.
type EventPinLiked struct {
	PinID    string `json:"pinId"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// EventPinCommented is broadcast to a pin's viewers.
type EventPinCommented struct {
	PinID    string `json:"pinId"`
	Comment  string `json:"comment"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
}

// EventChatMessage delivers a direct message.
type EventChatMessage struct {
	SenderID       string    `json:"senderId"`
	SenderUsername string    `json:"senderUsername"`
	Message        string    `json:"message"`
	Timestamp      time.Time `json:"timestamp"`
}

// ErrorResponse is the JSON body of rejected HTTP requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PresenceResponse answers a presence query.
type PresenceResponse struct {
	UserID      string `json:"userId"`
	Online      bool   `json:"online"`
	Connections int    `json:"connections"`
}

// UpsertUserRequest is the body of PUT /api/users/:id.
type UpsertUserRequest struct {
	Username string `json:"username" binding:"required"`
}

// UserResponse describes a user known to the server.
type UserResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
