package core

import "fmt"

// CommandKind describes what the client wants to do.
type CommandKind int

const (
	// CommandPinView subscribes the sender to a pin's viewers room.
	CommandPinView CommandKind = iota
	// CommandPinLeave unsubscribes the sender from a pin's viewers room.
	CommandPinLeave
	// CommandPinLike reports that the sender liked a pin.
	CommandPinLike
	// CommandPinComment reports that the sender commented on a pin.
	CommandPinComment
	// CommandPinSave reports that the sender saved a pin, optionally into a collection.
	CommandPinSave
	// CommandUserFollow reports that the sender followed another user.
	CommandUserFollow
	// CommandChatMessage relays a direct message to an online recipient.
	CommandChatMessage
)

var commandNames = [...]string{
	CommandPinView:     "pin:view",
	CommandPinLeave:    "pin:leave",
	CommandPinLike:     "pin:like",
	CommandPinComment:  "pin:comment",
	CommandPinSave:     "pin:save",
	CommandUserFollow:  "user:follow",
	CommandChatMessage: "chat:message",
}

func (k CommandKind) String() string {
	if k >= 0 && int(k) < len(commandNames) {
		return commandNames[k]
	}
	return fmt.Sprintf("command(%d)", int(k))
}

// Command represents an inbound event requested by a client. Only the fields
// relevant to Kind are populated.
type Command struct {
	Kind CommandKind

	PinID          string
	PinCreatorID   string
	Comment        string
	CollectionID   string
	CollectionName string
	FollowedUserID string
	RecipientID    string
	Text           string
}

// Validate checks that the fields required by the command kind are present.
// PinCreatorID is optional: without it no notification is sent. An empty
// comment or message text is relayed as is.
func (c *Command) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: empty command", ErrMalformedCommand)
	}
	switch c.Kind {
	case CommandPinView, CommandPinLeave, CommandPinLike, CommandPinComment, CommandPinSave:
		if c.PinID == "" {
			return fmt.Errorf("%w: %s requires pinId", ErrMalformedCommand, c.Kind)
		}
	case CommandUserFollow:
		if c.FollowedUserID == "" {
			return fmt.Errorf("%w: %s requires followedUserId", ErrMalformedCommand, c.Kind)
		}
	case CommandChatMessage:
		if c.RecipientID == "" {
			return fmt.Errorf("%w: %s requires recipientId", ErrMalformedCommand, c.Kind)
		}
	default:
		return fmt.Errorf("%w: unknown kind %d", ErrMalformedCommand, int(c.Kind))
	}
	return nil
}
