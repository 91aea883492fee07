package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"teamhub/apperr"
	"teamhub/models"
	"teamhub/realtime"
)

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

type msgEnv struct {
	svc      *MessageService
	channels *memChannels
	messages *memMessages
	pub      *recordingPublisher
	notif    *recordingNotifier
}

func newMsgEnv() *msgEnv {
	channels := newMemChannels()
	messages := newMemMessages()
	pub := &recordingPublisher{}
	notif := &recordingNotifier{}
	return &msgEnv{
		svc:      NewMessageService(messages, channels, pub, notif, testLogger()),
		channels: channels,
		messages: messages,
		pub:      pub,
		notif:    notif,
	}
}

func (e *msgEnv) addChannel(chType string, memberIDs ...uint) *models.Channel {
	ch := &models.Channel{Type: chType, Name: "general", CreatedBy: memberIDs[0], IsActive: true}
	for i, id := range memberIDs {
		role := models.ChannelRoleMember
		if i == 0 {
			role = models.ChannelRoleAdmin
		}
		ch.Members = append(ch.Members, models.ChannelMember{UserID: id, Role: role, JoinedAt: time.Now()})
	}
	_ = e.channels.Create(context.Background(), ch)
	return ch
}

func TestPostMessageAccessGating(t *testing.T) {
	env := newMsgEnv()
	private := env.addChannel(models.ChannelPrivate, 1, 2)
	public := env.addChannel(models.ChannelPublic, 1)

	// Non-member on a private channel is rejected.
	if _, err := env.svc.Post(context.Background(), private.ID, 99, "hello", nil, nil); !errors.Is(err, apperr.ErrAccessDenied) {
		t.Fatalf("private channel: got %v, want ErrAccessDenied", err)
	}

	// Any authenticated user may post to a public channel.
	msg, err := env.svc.Post(context.Background(), public.ID, 99, "hello", nil, nil)
	if err != nil {
		t.Fatalf("public channel: %v", err)
	}
	if msg.ID == 0 {
		t.Fatal("message was not persisted")
	}

	// lastMessageAt advances to the message's timestamp.
	fresh, err := env.channels.FindByID(context.Background(), public.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fresh.LastMessageAt == nil || !fresh.LastMessageAt.Equal(msg.CreatedAt) {
		t.Errorf("lastMessageAt = %v, want %v", fresh.LastMessageAt, msg.CreatedAt)
	}

	events := env.pub.byEvent(EventMessageCreated)
	if len(events) != 1 || events[0].Room != realtime.ChannelRoom(public.ID) {
		t.Errorf("expected one message:created broadcast to the channel room, got %+v", events)
	}
}

func TestPostMessageChannelNotFound(t *testing.T) {
	env := newMsgEnv()
	if _, err := env.svc.Post(context.Background(), 404, 1, "hello", nil, nil); !errors.Is(err, apperr.ErrNotFound) {
		t.Fatalf("got %v, want ErrNotFound", err)
	}
}

func TestPostMessageContentBounds(t *testing.T) {
	env := newMsgEnv()
	ch := env.addChannel(models.ChannelPublic, 1)

	if _, err := env.svc.Post(context.Background(), ch.ID, 1, "   ", nil, nil); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("blank content: got %v, want ErrValidation", err)
	}
	long := strings.Repeat("x", models.MaxMessageLength+1)
	if _, err := env.svc.Post(context.Background(), ch.ID, 1, long, nil, nil); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("oversized content: got %v, want ErrValidation", err)
	}
	exact := strings.Repeat("x", models.MaxMessageLength)
	if _, err := env.svc.Post(context.Background(), ch.ID, 1, exact, nil, nil); err != nil {
		t.Errorf("content at the limit should be accepted: %v", err)
	}
}

func TestPostReplyRules(t *testing.T) {
	env := newMsgEnv()
	ch := env.addChannel(models.ChannelPublic, 1)
	other := env.addChannel(models.ChannelPublic, 1)

	parent, err := env.svc.Post(context.Background(), ch.ID, 1, "top", nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	reply, err := env.svc.Post(context.Background(), ch.ID, 2, "reply", &parent.ID, nil)
	if err != nil {
		t.Fatalf("reply: %v", err)
	}

	// One level of threading only.
	if _, err := env.svc.Post(context.Background(), ch.ID, 1, "nested", &reply.ID, nil); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("reply to reply: got %v, want ErrValidation", err)
	}
	// The parent must live in the same channel.
	if _, err := env.svc.Post(context.Background(), other.ID, 1, "cross", &parent.ID, nil); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("cross-channel reply: got %v, want ErrValidation", err)
	}
}

func TestEditMessage(t *testing.T) {
	env := newMsgEnv()
	ch := env.addChannel(models.ChannelPublic, 1)
	msg, _ := env.svc.Post(context.Background(), ch.ID, 1, "original", nil, nil)

	// Only the author may edit.
	if _, err := env.svc.Edit(context.Background(), msg.ID, 2, "hijack"); !errors.Is(err, apperr.ErrAccessDenied) {
		t.Fatalf("non-author edit: got %v, want ErrAccessDenied", err)
	}

	edited, err := env.svc.Edit(context.Background(), msg.ID, 1, "fixed")
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if edited.Content != "fixed" || !edited.IsEdited || edited.EditedAt == nil {
		t.Errorf("edit flags not set: %+v", edited)
	}
	if got := env.pub.byEvent(EventMessageUpdated); len(got) != 1 {
		t.Errorf("expected one message:updated broadcast, got %d", len(got))
	}
}

func TestDeleteMessageSoftDelete(t *testing.T) {
	env := newMsgEnv()
	ch := env.addChannel(models.ChannelPublic, 1)
	msg, _ := env.svc.Post(context.Background(), ch.ID, 1, "secret", nil, nil)
	if _, err := env.svc.AddReaction(context.Background(), msg.ID, 2, "👍"); err != nil {
		t.Fatal(err)
	}

	// Only the author may delete.
	if _, err := env.svc.Delete(context.Background(), msg.ID, 2); !errors.Is(err, apperr.ErrAccessDenied) {
		t.Fatalf("non-author delete: got %v, want ErrAccessDenied", err)
	}

	deleted, err := env.svc.Delete(context.Background(), msg.ID, 1)
	if err != nil {
		t.Fatal(err)
	}
	if !deleted.IsDeleted || deleted.Content != models.DeletedMessagePlaceholder {
		t.Errorf("soft delete: got %+v", deleted)
	}
	// The record and its reactions survive.
	stored, err := env.messages.FindByID(context.Background(), msg.ID)
	if err != nil {
		t.Fatalf("deleted message id should still resolve: %v", err)
	}
	if len(stored.Reactions) != 1 {
		t.Errorf("reactions dropped on delete: %+v", stored.Reactions)
	}

	// No further edits.
	if _, err := env.svc.Edit(context.Background(), msg.ID, 1, "resurrect"); !errors.Is(err, apperr.ErrAccessDenied) {
		t.Errorf("edit after delete: got %v, want ErrAccessDenied", err)
	}

	// Deleting again is a no-op, not an error.
	if _, err := env.svc.Delete(context.Background(), msg.ID, 1); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestReactionUniqueness(t *testing.T) {
	env := newMsgEnv()
	ch := env.addChannel(models.ChannelPublic, 1)
	msg, _ := env.svc.Post(context.Background(), ch.ID, 1, "react to me", nil, nil)

	if _, err := env.svc.AddReaction(context.Background(), msg.ID, 2, "🎉"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.svc.AddReaction(context.Background(), msg.ID, 2, "🎉"); !errors.Is(err, apperr.ErrDuplicateReaction) {
		t.Fatalf("duplicate reaction: got %v, want ErrDuplicateReaction", err)
	}

	stored, _ := env.messages.FindByID(context.Background(), msg.ID)
	if len(stored.Reactions) != 1 {
		t.Errorf("reaction list has %d entries, want 1", len(stored.Reactions))
	}

	// Same emoji from a different user is a distinct pair.
	if _, err := env.svc.AddReaction(context.Background(), msg.ID, 3, "🎉"); err != nil {
		t.Fatalf("distinct user reaction: %v", err)
	}
}

func TestRemoveReactionIdempotent(t *testing.T) {
	env := newMsgEnv()
	ch := env.addChannel(models.ChannelPublic, 1)
	msg, _ := env.svc.Post(context.Background(), ch.ID, 1, "hi", nil, nil)
	if _, err := env.svc.AddReaction(context.Background(), msg.ID, 2, "👀"); err != nil {
		t.Fatal(err)
	}

	if _, err := env.svc.RemoveReaction(context.Background(), msg.ID, 2, "👀"); err != nil {
		t.Fatal(err)
	}
	// Removing a pair that is not there is a no-op that still emits.
	if _, err := env.svc.RemoveReaction(context.Background(), msg.ID, 2, "👀"); err != nil {
		t.Fatalf("repeat removal: %v", err)
	}
	stored, _ := env.messages.FindByID(context.Background(), msg.ID)
	if len(stored.Reactions) != 0 {
		t.Errorf("reaction list not empty: %+v", stored.Reactions)
	}
	if got := env.pub.byEvent(EventReactionRemoved); len(got) != 2 {
		t.Errorf("expected reaction:removed on every removal call, got %d", len(got))
	}
}

func TestThreadOrderingAndVisibility(t *testing.T) {
	env := newMsgEnv()
	ch := env.addChannel(models.ChannelPublic, 1)
	parent, _ := env.svc.Post(context.Background(), ch.ID, 1, "parent", nil, nil)
	r1, _ := env.svc.Post(context.Background(), ch.ID, 2, "first", &parent.ID, nil)
	r2, _ := env.svc.Post(context.Background(), ch.ID, 3, "second", &parent.ID, nil)
	r3, _ := env.svc.Post(context.Background(), ch.ID, 2, "third", &parent.ID, nil)

	if _, err := env.svc.Delete(context.Background(), r2.ID, 3); err != nil {
		t.Fatal(err)
	}

	got, replies, err := env.svc.Thread(context.Background(), parent.ID, 9)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != parent.ID {
		t.Errorf("parent id = %d, want %d", got.ID, parent.ID)
	}
	if len(replies) != 2 || replies[0].ID != r1.ID || replies[1].ID != r3.ID {
		t.Errorf("replies = %+v, want [%d %d] ascending", replies, r1.ID, r3.ID)
	}

	// A deleted parent still anchors its thread.
	if _, err := env.svc.Delete(context.Background(), parent.ID, 1); err != nil {
		t.Fatal(err)
	}
	gone, _, err := env.svc.Thread(context.Background(), parent.ID, 9)
	if err != nil {
		t.Fatalf("thread after parent delete: %v", err)
	}
	if !gone.IsDeleted || gone.Content != models.DeletedMessagePlaceholder {
		t.Errorf("deleted parent = %+v", gone)
	}
}

func TestListMessagesPagination(t *testing.T) {
	env := newMsgEnv()
	ch := env.addChannel(models.ChannelPublic, 1)

	var ids []uint
	for i := 0; i < 5; i++ {
		msg, err := env.svc.Post(context.Background(), ch.ID, 1, "msg", nil, nil)
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, msg.ID)
	}

	// First page: the two newest, returned ascending.
	page, err := env.svc.List(context.Background(), ch.ID, 9, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 || page[0].ID != ids[3] || page[1].ID != ids[4] {
		t.Fatalf("first page = %v", messageIDs(page))
	}

	// Next page via the before cursor.
	page, err = env.svc.List(context.Background(), ch.ID, 9, 2, page[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 || page[0].ID != ids[1] || page[1].ID != ids[2] {
		t.Fatalf("second page = %v", messageIDs(page))
	}

	// Access is still gated for private channels.
	private := env.addChannel(models.ChannelPrivate, 1)
	if _, err := env.svc.List(context.Background(), private.ID, 9, 10, 0); !errors.Is(err, apperr.ErrAccessDenied) {
		t.Fatalf("private listing: got %v, want ErrAccessDenied", err)
	}
}

func messageIDs(msgs []models.Message) []uint {
	out := make([]uint, len(msgs))
	for i, m := range msgs {
		out[i] = m.ID
	}
	return out
}
