// Package store is the persistence gateway. Every store exposes the same
// narrow contract: find by id, indexed finds, create, whole-document save,
// and soft delete. Saves are guarded by a per-row version counter; a save
// that loses a race returns apperr.ErrConflict and the caller reloads.
package store

import (
	"context"

	"gorm.io/gorm"

	"teamhub/models"
)

type TeamStore interface {
	FindByID(ctx context.Context, id uint) (*models.Team, error)
	FindByUser(ctx context.Context, userID uint) ([]models.Team, error)
	Create(ctx context.Context, team *models.Team) error
	Save(ctx context.Context, team *models.Team) error
	SoftDelete(ctx context.Context, id uint) error
}

type ChannelStore interface {
	FindByID(ctx context.Context, id uint) (*models.Channel, error)
	FindForUser(ctx context.Context, userID uint) ([]models.Channel, error)
	FindByTeam(ctx context.Context, teamID uint) ([]models.Channel, error)
	Create(ctx context.Context, ch *models.Channel) error
	Save(ctx context.Context, ch *models.Channel) error
	SoftDelete(ctx context.Context, id uint) error
}

type MessageStore interface {
	FindByID(ctx context.Context, id uint) (*models.Message, error)
	Create(ctx context.Context, msg *models.Message) error
	Save(ctx context.Context, msg *models.Message) error
	// ListByChannel returns top-level messages newest-first, at most limit,
	// strictly older than beforeID when beforeID > 0.
	ListByChannel(ctx context.Context, channelID uint, limit int, beforeID uint) ([]models.Message, error)
	// ListThread returns a parent's replies oldest-first, excluding
	// soft-deleted replies.
	ListThread(ctx context.Context, parentID uint) ([]models.Message, error)
}

// Store bundles the per-entity stores over one database handle.
type Store struct {
	Teams    TeamStore
	Channels ChannelStore
	Messages MessageStore
}

func New(db *gorm.DB) *Store {
	return &Store{
		Teams:    &teamStore{db: db},
		Channels: &channelStore{db: db},
		Messages: &messageStore{db: db},
	}
}
