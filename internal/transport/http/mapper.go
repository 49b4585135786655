package http

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/vovakirdan/pinlive-server/internal/core"
	"github.com/vovakirdan/pinlive-server/internal/proto"
)

var errUnknownEvent = errors.New("unknown event")

// decodeInbound parses one text frame into a command. Frames that are not
// valid JSON or whose data does not fit the event wrap core.ErrMalformedCommand.
// Required fields are checked later by the router.
func decodeInbound(frame []byte) (*core.Command, error) {
	var inbound proto.Inbound
	if err := json.Unmarshal(frame, &inbound); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrMalformedCommand, err)
	}
	return inboundToCommand(inbound)
}

func inboundToCommand(inbound proto.Inbound) (*core.Command, error) {
	switch inbound.Event {
	case proto.InboundPinView, proto.InboundPinLeave:
		var ref proto.PinRef
		if err := decodeData(inbound.Data, &ref); err != nil {
			return nil, err
		}
		kind := core.CommandPinView
		if inbound.Event == proto.InboundPinLeave {
			kind = core.CommandPinLeave
		}
		return &core.Command{Kind: kind, PinID: ref.PinID}, nil
	case proto.InboundPinLike:
		var like proto.PinLikeData
		if err := decodeData(inbound.Data, &like); err != nil {
			return nil, err
		}
		return &core.Command{
			Kind:         core.CommandPinLike,
			PinID:        like.PinID,
			PinCreatorID: like.PinCreatorID,
		}, nil
	case proto.InboundPinComment:
		var comment proto.PinCommentData
		if err := decodeData(inbound.Data, &comment); err != nil {
			return nil, err
		}
		if comment.Comment == nil {
			return nil, fmt.Errorf("%w: %s requires comment", core.ErrMalformedCommand, inbound.Event)
		}
		return &core.Command{
			Kind:         core.CommandPinComment,
			PinID:        comment.PinID,
			PinCreatorID: comment.PinCreatorID,
			Comment:      *comment.Comment,
		}, nil
	case proto.InboundPinSave:
		var save proto.PinSaveData
		if err := decodeData(inbound.Data, &save); err != nil {
			return nil, err
		}
		return &core.Command{
			Kind:           core.CommandPinSave,
			PinID:          save.PinID,
			PinCreatorID:   save.PinCreatorID,
			CollectionID:   save.CollectionID,
			CollectionName: save.CollectionName,
		}, nil
	case proto.InboundUserFollow:
		var follow proto.UserFollowData
		if err := decodeData(inbound.Data, &follow); err != nil {
			return nil, err
		}
		return &core.Command{
			Kind:           core.CommandUserFollow,
			FollowedUserID: follow.FollowedUserID,
		}, nil
	case proto.InboundChatMessage:
		var chat proto.ChatMessageData
		if err := decodeData(inbound.Data, &chat); err != nil {
			return nil, err
		}
		if chat.Message == nil {
			return nil, fmt.Errorf("%w: %s requires message", core.ErrMalformedCommand, inbound.Event)
		}
		return &core.Command{
			Kind:        core.CommandChatMessage,
			RecipientID: chat.RecipientID,
			Text:        *chat.Message,
		}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownEvent, inbound.Event)
	}
}

func decodeData(data json.RawMessage, v any) error {
	if len(data) == 0 {
		return fmt.Errorf("%w: missing data", core.ErrMalformedCommand)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %w", core.ErrMalformedCommand, err)
	}
	return nil
}

func outboundFromEvent(event *core.Event) proto.Outbound {
	out := proto.Outbound{Event: event.Kind.String()}
	switch event.Kind {
	case core.EventNotification:
		if n := event.Notification; n != nil {
			out.Data = proto.EventNotification{
				Type:    string(n.Type),
				PinID:   n.PinID,
				Sender:  proto.Sender{ID: n.Sender.ID, Username: n.Sender.Username},
				Message: n.Message,
			}
		}
	case core.EventPinLiked:
		if p := event.Pin; p != nil {
			out.Data = proto.EventPinLiked{
				PinID:    p.PinID,
				UserID:   p.User.ID,
				Username: p.User.Username,
			}
		}
	case core.EventPinCommented:
		if p := event.Pin; p != nil {
			out.Data = proto.EventPinCommented{
				PinID:    p.PinID,
				Comment:  p.Comment,
				UserID:   p.User.ID,
				Username: p.User.Username,
			}
		}
	case core.EventChatMessage:
		if c := event.Chat; c != nil {
			out.Data = proto.EventChatMessage{
				SenderID:       c.Sender.ID,
				SenderUsername: c.Sender.Username,
				Message:        c.Text,
				Timestamp:      c.SentAt,
			}
		}
	}
	return out
}
