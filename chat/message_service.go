package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"teamhub/apperr"
	"teamhub/authz"
	"teamhub/models"
	"teamhub/realtime"
	"teamhub/store"
)

const (
	defaultPageSize = 50
	maxPageSize     = 100
)

// MessageService owns the message state machine:
// absent -> created -> edited* -> deleted (terminal).
// Only the original author may edit or delete; deletion keeps the row and
// its reactions but replaces the content with a fixed placeholder.
type MessageService struct {
	messages store.MessageStore
	channels store.ChannelStore
	pub      Publisher
	notif    Notifier
	log      *logrus.Logger
}

func NewMessageService(messages store.MessageStore, channels store.ChannelStore, pub Publisher, notif Notifier, log *logrus.Logger) *MessageService {
	return &MessageService{messages: messages, channels: channels, pub: pub, notif: notif, log: log}
}

// Post validates channel access, persists the message, and advances the
// channel's lastMessageAt before fanning out message:created.
func (s *MessageService) Post(ctx context.Context, channelID, authorID uint, content string, parentID *uint, attachments []models.Attachment) (*models.Message, error) {
	ch, err := s.channels.FindByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessChannel(ch, authorID) {
		return nil, apperr.ErrAccessDenied
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}
	if parentID != nil {
		parent, err := s.messages.FindByID(ctx, *parentID)
		if err != nil {
			return nil, fmt.Errorf("%w: parent message", apperr.ErrNotFound)
		}
		if parent.ChannelID != channelID {
			return nil, fmt.Errorf("%w: parent message belongs to another channel", apperr.ErrValidation)
		}
		// Threads are one level deep: replying to a reply is rejected
		// rather than silently re-parented.
		if parent.ParentID != nil {
			return nil, fmt.Errorf("%w: cannot reply to a thread reply", apperr.ErrValidation)
		}
	}

	msg := &models.Message{
		ChannelID:   channelID,
		UserID:      authorID,
		Content:     content,
		ParentID:    parentID,
		Attachments: attachments,
	}
	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}

	s.touchLastMessageAt(ctx, ch, msg.CreatedAt)

	s.pub.Broadcast(realtime.ChannelRoom(channelID), EventMessageCreated, msg)
	s.notif.MessagePosted(ch, msg)
	return msg, nil
}

// touchLastMessageAt advances the channel watermark. A lost save race just
// means another message landed concurrently; retry once against the fresh
// document and give up quietly after that, the next message will catch up.
func (s *MessageService) touchLastMessageAt(ctx context.Context, ch *models.Channel, at time.Time) {
	for attempt := 0; attempt < 2; attempt++ {
		if ch.LastMessageAt == nil || at.After(*ch.LastMessageAt) {
			ch.LastMessageAt = &at
			err := s.channels.Save(ctx, ch)
			if err == nil {
				return
			}
			if !errors.Is(err, apperr.ErrConflict) {
				s.log.WithError(err).WithField("channel_id", ch.ID).Warn("failed to update last_message_at")
				return
			}
		} else {
			return
		}
		fresh, err := s.channels.FindByID(ctx, ch.ID)
		if err != nil {
			return
		}
		*ch = *fresh
	}
}

// Edit replaces the content; author only, and never after deletion.
func (s *MessageService) Edit(ctx context.Context, messageID, editorID uint, content string) (*models.Message, error) {
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.UserID != editorID || msg.IsDeleted {
		return nil, apperr.ErrAccessDenied
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	msg.Content = content
	msg.IsEdited = true
	msg.EditedAt = &now
	if err := s.messages.Save(ctx, msg); err != nil {
		return nil, err
	}

	s.pub.Broadcast(realtime.ChannelRoom(msg.ChannelID), EventMessageUpdated, msg)
	return msg, nil
}

// Delete soft-deletes: the row and its reactions are retained for audit
// and thread integrity, only the content is blanked.
func (s *MessageService) Delete(ctx context.Context, messageID, editorID uint) (*models.Message, error) {
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.UserID != editorID {
		return nil, apperr.ErrAccessDenied
	}
	if msg.IsDeleted {
		return msg, nil
	}
	msg.IsDeleted = true
	msg.Content = models.DeletedMessagePlaceholder
	if err := s.messages.Save(ctx, msg); err != nil {
		return nil, err
	}

	s.pub.Broadcast(realtime.ChannelRoom(msg.ChannelID), EventMessageDeleted, eventPayload{
		"id":         msg.ID,
		"channel_id": msg.ChannelID,
	})
	return msg, nil
}

// AddReaction appends a (emoji, user) pair; the pair is unique per message.
func (s *MessageService) AddReaction(ctx context.Context, messageID, userID uint, emoji string) (*models.Message, error) {
	msg, ch, err := s.findAccessible(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}
	if emoji == "" {
		return nil, fmt.Errorf("%w: emoji is required", apperr.ErrValidation)
	}
	if msg.Reactions.Has(emoji, userID) {
		return nil, apperr.ErrDuplicateReaction
	}
	reaction := models.Reaction{Emoji: emoji, UserID: userID, CreatedAt: time.Now().UTC()}
	msg.Reactions = append(msg.Reactions, reaction)
	if err := s.messages.Save(ctx, msg); err != nil {
		return nil, err
	}

	s.pub.Broadcast(realtime.ChannelRoom(ch.ID), EventReactionAdded, eventPayload{
		"message_id": msg.ID,
		"reaction":   reaction,
	})
	return msg, nil
}

// RemoveReaction is idempotent: removing a pair that is not there is a
// no-op that still emits reaction:removed, so clients converge either way.
func (s *MessageService) RemoveReaction(ctx context.Context, messageID, userID uint, emoji string) (*models.Message, error) {
	msg, ch, err := s.findAccessible(ctx, messageID, userID)
	if err != nil {
		return nil, err
	}
	kept, removed := msg.Reactions.Remove(emoji, userID)
	if removed {
		msg.Reactions = kept
		if err := s.messages.Save(ctx, msg); err != nil {
			return nil, err
		}
	}

	s.pub.Broadcast(realtime.ChannelRoom(ch.ID), EventReactionRemoved, eventPayload{
		"message_id": msg.ID,
		"emoji":      emoji,
		"user_id":    userID,
	})
	return msg, nil
}

// Thread returns a parent's replies oldest-first. Soft-deleted replies are
// filtered out; a soft-deleted parent still anchors its thread.
func (s *MessageService) Thread(ctx context.Context, parentID, requesterID uint) (*models.Message, []models.Message, error) {
	parent, _, err := s.findAccessible(ctx, parentID, requesterID)
	if err != nil {
		return nil, nil, err
	}
	replies, err := s.messages.ListThread(ctx, parentID)
	if err != nil {
		return nil, nil, err
	}
	return parent, replies, nil
}

// List pages the channel feed. The store fetches newest-first by id with
// an opaque before-id cursor; the page is flipped to ascending before it
// is returned.
func (s *MessageService) List(ctx context.Context, channelID, requesterID uint, limit int, beforeID uint) ([]models.Message, error) {
	ch, err := s.channels.FindByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessChannel(ch, requesterID) {
		return nil, apperr.ErrAccessDenied
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	msgs, err := s.messages.ListByChannel(ctx, channelID, limit, beforeID)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

func (s *MessageService) findAccessible(ctx context.Context, messageID, userID uint) (*models.Message, *models.Channel, error) {
	msg, err := s.messages.FindByID(ctx, messageID)
	if err != nil {
		return nil, nil, err
	}
	ch, err := s.channels.FindByID(ctx, msg.ChannelID)
	if err != nil {
		return nil, nil, err
	}
	if !authz.CanAccessChannel(ch, userID) {
		return nil, nil, apperr.ErrAccessDenied
	}
	return msg, ch, nil
}

func validateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: message content is required", apperr.ErrValidation)
	}
	if len(content) > models.MaxMessageLength {
		return fmt.Errorf("%w: message content exceeds %d characters", apperr.ErrValidation, models.MaxMessageLength)
	}
	return nil
}
