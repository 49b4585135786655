package core

import (
	"strings"
	"testing"
)

func TestPinViewAndLeave(t *testing.T) {
	hub := newTestHub()
	s := connect(t, hub, "a", "alice")

	hub.Dispatch(s, &Command{Kind: CommandPinView, PinID: "p1"})
	if !s.InRoom("pin:p1") || hub.Rooms().Size("pin:p1") != 1 {
		t.Fatalf("expected membership in pin:p1, rooms=%v", s.Rooms())
	}

	hub.Dispatch(s, &Command{Kind: CommandPinLeave, PinID: "p1"})
	if s.InRoom("pin:p1") || hub.Rooms().Size("pin:p1") != 0 {
		t.Fatalf("expected pin:p1 left, rooms=%v", s.Rooms())
	}

	// Leaving again without a view changes nothing.
	hub.Dispatch(s, &Command{Kind: CommandPinLeave, PinID: "p1"})
	if got := s.Rooms(); len(got) != 1 || got[0] != "user:a" {
		t.Fatalf("unexpected rooms: %v", got)
	}
	assertNoEvents(t, s.Conn)
}

func TestPinLikeNotifiesCreatorAndViewers(t *testing.T) {
	hub := newTestHub()
	creator := connect(t, hub, "a", "alice")
	liker := connect(t, hub, "b", "bob")
	viewer := connect(t, hub, "c", "carol")

	hub.Dispatch(liker, &Command{Kind: CommandPinView, PinID: "p1"})
	hub.Dispatch(viewer, &Command{Kind: CommandPinView, PinID: "p1"})

	hub.Dispatch(liker, &Command{Kind: CommandPinLike, PinID: "p1", PinCreatorID: "a"})

	note := mustEvent(t, creator.Conn.Events, EventNotification).Notification
	if note.Type != NotificationLike || note.PinID != "p1" || note.Sender.ID != "b" || note.Sender.Username != "bob" {
		t.Fatalf("unexpected notification: %+v", note)
	}
	if note.Message != "bob liked your pin" {
		t.Fatalf("unexpected message: %q", note.Message)
	}

	liked := mustEvent(t, viewer.Conn.Events, EventPinLiked).Pin
	if liked.PinID != "p1" || liked.User.ID != "b" || liked.User.Username != "bob" {
		t.Fatalf("unexpected pin:liked payload: %+v", liked)
	}

	assertNoEvents(t, liker.Conn)
	// The creator is not viewing the pin, so only the notification arrives.
	assertNoEvents(t, creator.Conn)
}

func TestSelfActionsDoNotNotify(t *testing.T) {
	tests := []struct {
		name      string
		cmd       *Command
		broadcast EventKind
		hasRoom   bool
	}{
		{name: "like", cmd: &Command{Kind: CommandPinLike, PinID: "p1", PinCreatorID: "a"}, broadcast: EventPinLiked, hasRoom: true},
		{name: "comment", cmd: &Command{Kind: CommandPinComment, PinID: "p1", PinCreatorID: "a", Comment: "mine"}, broadcast: EventPinCommented, hasRoom: true},
		{name: "save", cmd: &Command{Kind: CommandPinSave, PinID: "p1", PinCreatorID: "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hub := newTestHub()
			owner := connect(t, hub, "a", "alice")
			viewer := connect(t, hub, "c", "carol")
			hub.Dispatch(owner, &Command{Kind: CommandPinView, PinID: "p1"})
			hub.Dispatch(viewer, &Command{Kind: CommandPinView, PinID: "p1"})

			hub.Dispatch(owner, tt.cmd)

			assertNoEvents(t, owner.Conn)
			if tt.hasRoom {
				mustEvent(t, viewer.Conn.Events, tt.broadcast)
			}
			assertNoEvents(t, viewer.Conn)
		})
	}
}

func TestPinCommentTruncatesPreview(t *testing.T) {
	hub := newTestHub()
	creator := connect(t, hub, "a", "alice")
	commenter := connect(t, hub, "b", "bob")
	viewer := connect(t, hub, "c", "carol")
	hub.Dispatch(viewer, &Command{Kind: CommandPinView, PinID: "p1"})

	long := strings.Repeat("abcde", 9) // 45 characters
	hub.Dispatch(commenter, &Command{Kind: CommandPinComment, PinID: "p1", PinCreatorID: "a", Comment: long})

	note := mustEvent(t, creator.Conn.Events, EventNotification).Notification
	want := `bob commented on your pin: "` + long[:30] + `..."`
	if note.Type != NotificationComment || note.Message != want {
		t.Fatalf("unexpected notification: %+v", note)
	}

	commented := mustEvent(t, viewer.Conn.Events, EventPinCommented).Pin
	if commented.Comment != long {
		t.Fatalf("viewers should receive the full comment, got %q", commented.Comment)
	}

	short := strings.Repeat("z", 20)
	hub.Dispatch(commenter, &Command{Kind: CommandPinComment, PinID: "p1", PinCreatorID: "a", Comment: short})
	note = mustEvent(t, creator.Conn.Events, EventNotification).Notification
	if note.Message != `bob commented on your pin: "`+short+`"` {
		t.Fatalf("short comment should not be truncated: %q", note.Message)
	}
}

func TestEmptyTextIsRelayed(t *testing.T) {
	obs := newRecordingObserver()
	hub := newTestHub(WithObserver(obs))
	creator := connect(t, hub, "a", "alice")
	commenter := connect(t, hub, "b", "bob")
	viewer := connect(t, hub, "c", "carol")
	hub.Dispatch(viewer, &Command{Kind: CommandPinView, PinID: "p1"})

	hub.Dispatch(commenter, &Command{Kind: CommandPinComment, PinID: "p1", PinCreatorID: "a", Comment: ""})

	note := mustEvent(t, creator.Conn.Events, EventNotification).Notification
	if note.Message != `bob commented on your pin: ""` {
		t.Fatalf("unexpected notification: %q", note.Message)
	}
	if commented := mustEvent(t, viewer.Conn.Events, EventPinCommented).Pin; commented.Comment != "" {
		t.Fatalf("expected empty comment, got %q", commented.Comment)
	}

	hub.Dispatch(commenter, &Command{Kind: CommandChatMessage, RecipientID: "a", Text: ""})
	if chat := mustEvent(t, creator.Conn.Events, EventChatMessage).Chat; chat.Text != "" {
		t.Fatalf("expected empty chat text, got %q", chat.Text)
	}
	if len(obs.dropped) != 0 {
		t.Fatalf("empty text must not be dropped, got %v", obs.dropped)
	}
}

func TestPinSaveNotifiesWithoutBroadcast(t *testing.T) {
	hub := newTestHub()
	creator := connect(t, hub, "a", "alice")
	saver := connect(t, hub, "b", "bob")
	viewer := connect(t, hub, "c", "carol")
	hub.Dispatch(viewer, &Command{Kind: CommandPinView, PinID: "p1"})

	hub.Dispatch(saver, &Command{Kind: CommandPinSave, PinID: "p1", PinCreatorID: "a", CollectionID: "col1", CollectionName: "Kitchen"})
	note := mustEvent(t, creator.Conn.Events, EventNotification).Notification
	if note.Type != NotificationSave || note.Message != `bob saved your pin to "Kitchen"` {
		t.Fatalf("unexpected notification: %+v", note)
	}

	hub.Dispatch(saver, &Command{Kind: CommandPinSave, PinID: "p1", PinCreatorID: "a"})
	note = mustEvent(t, creator.Conn.Events, EventNotification).Notification
	if note.Message != "bob saved your pin" {
		t.Fatalf("unexpected message: %q", note.Message)
	}

	assertNoEvents(t, viewer.Conn)
}

func TestMissingCreatorStillBroadcasts(t *testing.T) {
	hub := newTestHub()
	liker := connect(t, hub, "b", "bob")
	viewer := connect(t, hub, "c", "carol")
	hub.Dispatch(viewer, &Command{Kind: CommandPinView, PinID: "p1"})

	hub.Dispatch(liker, &Command{Kind: CommandPinLike, PinID: "p1"})
	mustEvent(t, viewer.Conn.Events, EventPinLiked)
}

func TestOfflineCreatorGetsNothing(t *testing.T) {
	obs := newRecordingObserver()
	hub := newTestHub(WithObserver(obs))
	liker := connect(t, hub, "b", "bob")

	hub.Dispatch(liker, &Command{Kind: CommandPinLike, PinID: "p1", PinCreatorID: "offline"})

	assertNoEvents(t, liker.Conn)
	if obs.delivered[EventNotification] != 0 {
		t.Fatalf("no notification should be delivered, got %d", obs.delivered[EventNotification])
	}
}

func TestUserFollow(t *testing.T) {
	hub := newTestHub()
	followed := connect(t, hub, "a", "alice")
	follower := connect(t, hub, "b", "bob")

	hub.Dispatch(follower, &Command{Kind: CommandUserFollow, FollowedUserID: "a"})

	note := mustEvent(t, followed.Conn.Events, EventNotification).Notification
	if note.Type != NotificationFollow || note.PinID != "" || note.Message != "bob started following you" {
		t.Fatalf("unexpected follow notification: %+v", note)
	}
	assertNoEvents(t, follower.Conn)
}

func TestChatMessage(t *testing.T) {
	hub := newTestHub()
	recipient := connect(t, hub, "a", "alice")
	sender := connect(t, hub, "b", "bob")

	hub.Dispatch(sender, &Command{Kind: CommandChatMessage, RecipientID: "a", Text: "hey"})

	chat := mustEvent(t, recipient.Conn.Events, EventChatMessage).Chat
	if chat.Sender.ID != "b" || chat.Sender.Username != "bob" || chat.Text != "hey" {
		t.Fatalf("unexpected chat payload: %+v", chat)
	}
	if !chat.SentAt.Equal(testNow) {
		t.Fatalf("expected server timestamp %v, got %v", testNow, chat.SentAt)
	}
}

func TestChatMessageToOfflineRecipientIsDropped(t *testing.T) {
	obs := newRecordingObserver()
	hub := newTestHub(WithObserver(obs))
	sender := connect(t, hub, "b", "bob")

	hub.Dispatch(sender, &Command{Kind: CommandChatMessage, RecipientID: "nobody", Text: "hello?"})

	assertNoEvents(t, sender.Conn)
	if obs.delivered[EventChatMessage] != 0 {
		t.Fatalf("expected zero deliveries, got %d", obs.delivered[EventChatMessage])
	}
	if len(obs.dropped) != 0 {
		t.Fatalf("offline recipient is not an error, got drops %v", obs.dropped)
	}
}

func TestMalformedCommandsAreDropped(t *testing.T) {
	obs := newRecordingObserver()
	hub := newTestHub(WithObserver(obs))
	s := connect(t, hub, "a", "alice")

	bad := []*Command{
		{Kind: CommandPinView},
		{Kind: CommandPinLike, PinCreatorID: "b"},
		{Kind: CommandPinComment, Comment: "no pin"},
		{Kind: CommandUserFollow},
		{Kind: CommandChatMessage, Text: "no recipient"},
		{Kind: CommandKind(99)},
		nil,
	}
	for _, cmd := range bad {
		hub.Dispatch(s, cmd)
	}

	if len(obs.dropped) != len(bad) {
		t.Fatalf("expected %d drops, got %v", len(bad), obs.dropped)
	}
	for _, reason := range obs.dropped {
		if reason != DropMalformed {
			t.Fatalf("unexpected drop reason %q", reason)
		}
	}
	if len(obs.handled) != 0 {
		t.Fatalf("no command should be handled, got %v", obs.handled)
	}
	if hub.Rooms().Count() != 1 {
		t.Fatalf("only the personal room should exist, got %d rooms", hub.Rooms().Count())
	}
}

func TestCommandKindString(t *testing.T) {
	if CommandPinComment.String() != "pin:comment" || CommandChatMessage.String() != "chat:message" {
		t.Fatalf("unexpected names: %s %s", CommandPinComment, CommandChatMessage)
	}
	if EventNotification.String() != "notification:new" {
		t.Fatalf("unexpected event name: %s", EventNotification)
	}
}
