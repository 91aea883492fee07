package store

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"teamhub/apperr"
	"teamhub/models"
)

type channelStore struct {
	db *gorm.DB
}

func (s *channelStore) FindByID(ctx context.Context, id uint) (*models.Channel, error) {
	var ch models.Channel
	err := s.db.WithContext(ctx).Where("is_active = ?", true).First(&ch, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &ch, nil
}

// FindForUser lists channels visible to the user: public channels plus any
// the user created or belongs to.
func (s *channelStore) FindForUser(ctx context.Context, userID uint) ([]models.Channel, error) {
	var channels []models.Channel
	err := s.db.WithContext(ctx).
		Where("is_active = ?", true).
		Where("type = ? OR created_by = ? OR members @> ?",
			models.ChannelPublic, userID, memberFilter(userID)).
		Order("last_message_at DESC NULLS LAST").
		Find(&channels).Error
	return channels, err
}

func (s *channelStore) FindByTeam(ctx context.Context, teamID uint) ([]models.Channel, error) {
	var channels []models.Channel
	err := s.db.WithContext(ctx).
		Where("is_active = ? AND team_id = ?", true, teamID).
		Order("created_at ASC").
		Find(&channels).Error
	return channels, err
}

func (s *channelStore) Create(ctx context.Context, ch *models.Channel) error {
	return s.db.WithContext(ctx).Create(ch).Error
}

func (s *channelStore) Save(ctx context.Context, ch *models.Channel) error {
	res := s.db.WithContext(ctx).Model(&models.Channel{}).
		Where("id = ? AND version = ?", ch.ID, ch.Version).
		Updates(map[string]interface{}{
			"name":            ch.Name,
			"description":     ch.Description,
			"type":            ch.Type,
			"is_active":       ch.IsActive,
			"last_message_at": ch.LastMessageAt,
			"members":         ch.Members,
			"version":         ch.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrConflict
	}
	ch.Version++
	return nil
}

func (s *channelStore) SoftDelete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.Channel{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrNotFound
	}
	return nil
}
