package core

import (
	"time"

	"github.com/rs/zerolog"
)

// Router turns one inbound command plus the sender's session into zero or
// more outbound deliveries.
type Router struct {
	presence *Presence
	rooms    *Rooms
	now      func() time.Time
	obs      Observer
	log      *zerolog.Logger
}

// NewRouter builds a router over the given registry and rooms.
func NewRouter(presence *Presence, rooms *Rooms, obs Observer, logger *zerolog.Logger, now func() time.Time) *Router {
	if obs == nil {
		obs = NopObserver{}
	}
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if now == nil {
		now = time.Now
	}
	return &Router{
		presence: presence,
		rooms:    rooms,
		now:      now,
		obs:      obs,
		log:      logger,
	}
}

// Dispatch runs the handler for cmd to completion. Malformed commands and
// commands on closed sessions are dropped.
func (r *Router) Dispatch(s *Session, cmd *Command) {
	if s == nil || s.Closed() {
		r.obs.CommandDropped(DropClosed)
		return
	}
	if err := cmd.Validate(); err != nil {
		r.log.Debug().Err(err).Str("user_id", s.Identity.ID).Str("conn_id", s.Conn.ID).Msg("drop malformed command")
		r.obs.CommandDropped(DropMalformed)
		return
	}

	switch cmd.Kind {
	case CommandPinView:
		r.rooms.Join(s, PinRoom(cmd.PinID))
	case CommandPinLeave:
		r.rooms.Leave(s, PinRoom(cmd.PinID))
	case CommandPinLike:
		r.handlePinLike(s, cmd)
	case CommandPinComment:
		r.handlePinComment(s, cmd)
	case CommandPinSave:
		r.handlePinSave(s, cmd)
	case CommandUserFollow:
		r.handleUserFollow(s, cmd)
	case CommandChatMessage:
		r.handleChatMessage(s, cmd)
	}
	r.obs.CommandHandled(cmd.Kind)
}

func (r *Router) handlePinLike(s *Session, cmd *Command) {
	r.notifyCreator(s, cmd.PinCreatorID, &Notification{
		Type:    NotificationLike,
		PinID:   cmd.PinID,
		Sender:  s.Identity,
		Message: likeMessage(s.Identity.Username),
	})

	r.rooms.BroadcastToRoom(PinRoom(cmd.PinID), s.Conn, &Event{
		Kind: EventPinLiked,
		Pin: &PinActivity{
			PinID: cmd.PinID,
			User:  s.Identity,
		},
	})
}

func (r *Router) handlePinComment(s *Session, cmd *Command) {
	r.notifyCreator(s, cmd.PinCreatorID, &Notification{
		Type:    NotificationComment,
		PinID:   cmd.PinID,
		Sender:  s.Identity,
		Message: commentMessage(s.Identity.Username, cmd.Comment),
	})

	r.rooms.BroadcastToRoom(PinRoom(cmd.PinID), s.Conn, &Event{
		Kind: EventPinCommented,
		Pin: &PinActivity{
			PinID:   cmd.PinID,
			Comment: cmd.Comment,
			User:    s.Identity,
		},
	})
}

// Saving is not a spectator event, so viewers are not told.
func (r *Router) handlePinSave(s *Session, cmd *Command) {
	r.notifyCreator(s, cmd.PinCreatorID, &Notification{
		Type:    NotificationSave,
		PinID:   cmd.PinID,
		Sender:  s.Identity,
		Message: saveMessage(s.Identity.Username, cmd.CollectionName),
	})
}

func (r *Router) handleUserFollow(s *Session, cmd *Command) {
	if !r.presence.IsOnline(cmd.FollowedUserID) {
		return
	}
	r.rooms.SendToUser(cmd.FollowedUserID, &Event{
		Kind: EventNotification,
		Notification: &Notification{
			Type:    NotificationFollow,
			Sender:  s.Identity,
			Message: followMessage(s.Identity.Username),
		},
	})
}

func (r *Router) handleChatMessage(s *Session, cmd *Command) {
	if !r.presence.IsOnline(cmd.RecipientID) {
		r.log.Debug().Str("user_id", s.Identity.ID).Str("recipient_id", cmd.RecipientID).Msg("chat recipient offline")
		return
	}
	r.rooms.SendToUser(cmd.RecipientID, &Event{
		Kind: EventChatMessage,
		Chat: &ChatMessage{
			Sender: s.Identity,
			Text:   cmd.Text,
			SentAt: r.now(),
		},
	})
}

// notifyCreator sends n to the pin creator unless the creator is unknown,
// offline, or the sender.
func (r *Router) notifyCreator(s *Session, creatorID string, n *Notification) {
	if creatorID == "" || creatorID == s.Identity.ID {
		return
	}
	if !r.presence.IsOnline(creatorID) {
		return
	}
	r.rooms.SendToUser(creatorID, &Event{Kind: EventNotification, Notification: n})
}
