package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"teamhub/apperr"
	"teamhub/models"
)

type teamStore struct {
	db *gorm.DB
}

func (s *teamStore) FindByID(ctx context.Context, id uint) (*models.Team, error) {
	var team models.Team
	err := s.db.WithContext(ctx).Where("is_active = ?", true).First(&team, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &team, nil
}

func (s *teamStore) FindByUser(ctx context.Context, userID uint) ([]models.Team, error) {
	var teams []models.Team
	err := s.db.WithContext(ctx).
		Where("is_active = ? AND members @> ?", true, memberFilter(userID)).
		Order("created_at DESC").
		Find(&teams).Error
	return teams, err
}

func (s *teamStore) Create(ctx context.Context, team *models.Team) error {
	return s.db.WithContext(ctx).Create(team).Error
}

// Save writes the whole document back, including the embedded member list,
// but only if nobody else saved since it was loaded.
func (s *teamStore) Save(ctx context.Context, team *models.Team) error {
	res := s.db.WithContext(ctx).Model(&models.Team{}).
		Where("id = ? AND version = ?", team.ID, team.Version).
		Updates(map[string]interface{}{
			"name":        team.Name,
			"description": team.Description,
			"owner_id":    team.OwnerID,
			"is_active":   team.IsActive,
			"members":     team.Members,
			"version":     team.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperr.ErrConflict
	}
	team.Version++
	return nil
}

func (s *teamStore) SoftDelete(ctx context.Context, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.Team{}).
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

// memberFilter builds the JSONB containment argument matching a member entry
// by user id.
func memberFilter(userID uint) string {
	return fmt.Sprintf(`[{"user_id":%d}]`, userID)
}
