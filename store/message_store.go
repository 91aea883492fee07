package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"teamhub/apperr"
	"teamhub/models"
)

type messageStore struct {
	db *gorm.DB
}

func (s *messageStore) FindByID(ctx context.Context, id uint) (*models.Message, error) {
	var msg models.Message
	err := s.db.WithContext(ctx).First(&msg, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &msg, nil
}

func (s *messageStore) Create(ctx context.Context, msg *models.Message) error {
	return s.db.WithContext(ctx).Create(msg).Error
}

func (s *messageStore) Save(ctx context.Context, msg *models.Message) error {
	res := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ? AND version = ?", msg.ID, msg.Version).
		Updates(map[string]interface{}{
			"content":    msg.Content,
			"reactions":  msg.Reactions,
			"is_edited":  msg.IsEdited,
			"edited_at":  msg.EditedAt,
			"is_deleted": msg.IsDeleted,
			"version":    msg.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrConflict
	}
	msg.Version++
	return nil
}

// ListByChannel pages the channel feed newest-first by id. Soft-deleted
// messages stay in the feed as placeholder stubs so thread anchors and
// reply counts keep rendering.
func (s *messageStore) ListByChannel(ctx context.Context, channelID uint, limit int, beforeID uint) ([]models.Message, error) {
	q := s.db.WithContext(ctx).
		Where("channel_id = ? AND parent_id IS NULL", channelID).
		Order("id DESC").
		Limit(limit)
	if beforeID > 0 {
		q = q.Where("id < ?", beforeID)
	}
	var msgs []models.Message
	err := q.Find(&msgs).Error
	return msgs, err
}

func (s *messageStore) ListThread(ctx context.Context, parentID uint) ([]models.Message, error) {
	var msgs []models.Message
	err := s.db.WithContext(ctx).
		Where("parent_id = ? AND is_deleted = ?", parentID, false).
		Order("created_at ASC").
		Find(&msgs).Error
	return msgs, err
}
