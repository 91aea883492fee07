package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"teamhub/apperr"
	"teamhub/authz"
	"teamhub/models"
	"teamhub/realtime"
	"teamhub/store"
)

// ChannelService owns channel creation, membership, and archival.
type ChannelService struct {
	channels store.ChannelStore
	teams    store.TeamStore
	pub      Publisher
	log      *logrus.Logger
}

func NewChannelService(channels store.ChannelStore, teams store.TeamStore, pub Publisher, log *logrus.Logger) *ChannelService {
	return &ChannelService{channels: channels, teams: teams, pub: pub, log: log}
}

// Create makes a new channel with the creator as its first admin. When the
// channel is scoped to a team, the creator must belong to that team.
func (s *ChannelService) Create(ctx context.Context, creatorID uint, name, description, chType string, teamID, projectID *uint) (*models.Channel, error) {
	if len(name) < 3 || len(name) > 100 {
		return nil, fmt.Errorf("%w: channel name must be 3-100 characters", apperr.ErrValidation)
	}
	switch chType {
	case models.ChannelPublic, models.ChannelPrivate, models.ChannelDirect:
	default:
		return nil, fmt.Errorf("%w: channel type must be public, private or direct", apperr.ErrValidation)
	}
	if teamID != nil {
		team, err := s.teams.FindByID(ctx, *teamID)
		if err != nil {
			return nil, err
		}
		if !team.Members.Has(creatorID) {
			return nil, apperr.ErrAccessDenied
		}
	}

	ch := &models.Channel{
		Name:        name,
		Description: description,
		Type:        chType,
		TeamID:      teamID,
		ProjectID:   projectID,
		CreatedBy:   creatorID,
		IsActive:    true,
		Members: models.ChannelMemberList{
			{UserID: creatorID, Role: models.ChannelRoleAdmin, JoinedAt: time.Now().UTC()},
		},
	}
	if err := s.channels.Create(ctx, ch); err != nil {
		return nil, err
	}

	if teamID != nil {
		s.pub.Broadcast(realtime.TeamRoom(*teamID), EventChannelCreated, ch)
	}
	return ch, nil
}

func (s *ChannelService) Get(ctx context.Context, channelID, requesterID uint) (*models.Channel, error) {
	ch, err := s.channels.FindByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if !authz.CanAccessChannel(ch, requesterID) {
		return nil, apperr.ErrAccessDenied
	}
	return ch, nil
}

func (s *ChannelService) ListForUser(ctx context.Context, userID uint) ([]models.Channel, error) {
	return s.channels.FindForUser(ctx, userID)
}

// Join adds the user as a member. Public channels are open to anyone;
// private and direct channels only take members through an existing
// channel admin.
func (s *ChannelService) Join(ctx context.Context, channelID, userID uint) (*models.Channel, error) {
	ch, err := s.channels.FindByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if ch.Type != models.ChannelPublic {
		return nil, apperr.ErrAccessDenied
	}
	if ch.Members.Has(userID) {
		return ch, nil
	}
	ch.Members = append(ch.Members, models.ChannelMember{
		UserID:   userID,
		Role:     models.ChannelRoleMember,
		JoinedAt: time.Now().UTC(),
	})
	if err := s.channels.Save(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// AddMember lets a channel admin pull another user into the channel.
func (s *ChannelService) AddMember(ctx context.Context, channelID, requesterID, targetID uint) (*models.Channel, error) {
	ch, err := s.channels.FindByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if !authz.CanModerateChannel(ch, requesterID) {
		return nil, apperr.ErrAccessDenied
	}
	if ch.Members.Has(targetID) {
		return nil, fmt.Errorf("%w: user is already a member", apperr.ErrValidation)
	}
	ch.Members = append(ch.Members, models.ChannelMember{
		UserID:   targetID,
		Role:     models.ChannelRoleMember,
		JoinedAt: time.Now().UTC(),
	})
	if err := s.channels.Save(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// Leave removes the user from the member list. Leaving a channel you are
// not in is a no-op.
func (s *ChannelService) Leave(ctx context.Context, channelID, userID uint) (*models.Channel, error) {
	ch, err := s.channels.FindByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if !ch.Members.Has(userID) {
		return ch, nil
	}
	kept := make(models.ChannelMemberList, 0, len(ch.Members)-1)
	for _, m := range ch.Members {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	ch.Members = kept
	if err := s.channels.Save(ctx, ch); err != nil {
		return nil, err
	}
	return ch, nil
}

// Archive soft-deletes the channel; messages stay put.
func (s *ChannelService) Archive(ctx context.Context, channelID, requesterID uint) error {
	ch, err := s.channels.FindByID(ctx, channelID)
	if err != nil {
		return err
	}
	if !authz.CanModerateChannel(ch, requesterID) {
		return apperr.ErrAccessDenied
	}
	return s.channels.SoftDelete(ctx, channelID)
}
