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

// TeamService owns the team membership lifecycle: create, invite, role
// changes, removal, ownership transfer, soft delete. All permission
// decisions defer to the authz package; every membership mutation is
// persisted as one guarded save.
type TeamService struct {
	teams store.TeamStore
	pub   Publisher
	notif Notifier
	log   *logrus.Logger
}

func NewTeamService(teams store.TeamStore, pub Publisher, notif Notifier, log *logrus.Logger) *TeamService {
	return &TeamService{teams: teams, pub: pub, notif: notif, log: log}
}

func (s *TeamService) Create(ctx context.Context, creatorID uint, name, description string) (*models.Team, error) {
	if len(name) < 3 || len(name) > 100 {
		return nil, fmt.Errorf("%w: team name must be 3-100 characters", apperr.ErrValidation)
	}
	team := &models.Team{
		Name:        name,
		Description: description,
		CreatedBy:   creatorID,
		OwnerID:     creatorID,
		IsActive:    true,
		Members: models.TeamMemberList{
			{UserID: creatorID, Role: models.RoleOwner, JoinedAt: time.Now().UTC()},
		},
	}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, err
	}
	return team, nil
}

func (s *TeamService) Get(ctx context.Context, teamID, requesterID uint) (*models.Team, error) {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !team.Members.Has(requesterID) {
		return nil, apperr.ErrAccessDenied
	}
	return team, nil
}

func (s *TeamService) ListForUser(ctx context.Context, userID uint) ([]models.Team, error) {
	return s.teams.FindByUser(ctx, userID)
}

// InviteMember adds the target as a regular member.
func (s *TeamService) InviteMember(ctx context.Context, teamID, requesterID, targetID uint) (*models.Team, error) {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !authz.CanInvite(team, requesterID) {
		return nil, apperr.ErrAccessDenied
	}
	if team.Members.Has(targetID) {
		return nil, fmt.Errorf("%w: user is already a member", apperr.ErrValidation)
	}
	member := models.TeamMember{UserID: targetID, Role: models.RoleMember, JoinedAt: time.Now().UTC()}
	team.Members = append(team.Members, member)
	if err := s.teams.Save(ctx, team); err != nil {
		return nil, err
	}

	s.pub.Broadcast(realtime.TeamRoom(team.ID), EventTeamMemberAdded, eventPayload{
		"team_id": team.ID,
		"member":  member,
	})
	s.notif.MemberAdded(team, member)
	return team, nil
}

// ChangeRole sets the target's role to admin or member. The owner role
// moves only through TransferOwnership, and the current owner cannot be
// demoted here.
func (s *TeamService) ChangeRole(ctx context.Context, teamID, requesterID, targetID uint, role string) (*models.Team, error) {
	if role != models.RoleAdmin && role != models.RoleMember {
		return nil, fmt.Errorf("%w: role must be admin or member", apperr.ErrValidation)
	}
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !authz.CanChangeRole(team, requesterID) {
		return nil, apperr.ErrAccessDenied
	}
	target := team.Members.Find(targetID)
	if target == nil {
		return nil, apperr.ErrTargetNotMember
	}
	if target.Role == models.RoleOwner {
		return nil, fmt.Errorf("%w: transfer ownership instead of demoting the owner", apperr.ErrValidation)
	}
	target.Role = role
	if err := s.teams.Save(ctx, team); err != nil {
		return nil, err
	}

	s.pub.Broadcast(realtime.TeamRoom(team.ID), EventTeamRoleChanged, eventPayload{
		"team_id": team.ID,
		"user_id": targetID,
		"role":    role,
	})
	s.notif.RoleChanged(team, targetID, role)
	return team, nil
}

func (s *TeamService) RemoveMember(ctx context.Context, teamID, requesterID, targetID uint) (*models.Team, error) {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	if !team.Members.Has(targetID) {
		return nil, apperr.ErrTargetNotMember
	}
	if !authz.CanRemoveMember(team, requesterID, targetID) {
		return nil, apperr.ErrAccessDenied
	}
	kept := make(models.TeamMemberList, 0, len(team.Members)-1)
	for _, m := range team.Members {
		if m.UserID != targetID {
			kept = append(kept, m)
		}
	}
	team.Members = kept
	if err := s.teams.Save(ctx, team); err != nil {
		return nil, err
	}

	s.pub.Broadcast(realtime.TeamRoom(team.ID), EventTeamMemberRemoved, eventPayload{
		"team_id": team.ID,
		"user_id": targetID,
	})
	s.notif.MemberRemoved(team, targetID)
	return team, nil
}

// TransferOwnership applies the atomic role swap and persists it with a
// single guarded save; a lost race surfaces as a conflict, never as a
// half-applied transfer.
func (s *TeamService) TransferOwnership(ctx context.Context, teamID, requesterID, newOwnerID uint) (*models.Team, error) {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return nil, err
	}
	oldOwnerID := team.OwnerID
	if err := authz.TransferOwnership(team, requesterID, newOwnerID); err != nil {
		return nil, err
	}
	if err := s.teams.Save(ctx, team); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"team_id":      team.ID,
		"old_owner_id": oldOwnerID,
		"new_owner_id": newOwnerID,
	}).Info("team ownership transferred")

	s.pub.Broadcast(realtime.TeamRoom(team.ID), EventOwnerTransferred, eventPayload{
		"team_id":      team.ID,
		"old_owner_id": oldOwnerID,
		"new_owner_id": newOwnerID,
	})
	s.notif.OwnerTransferred(team, oldOwnerID, newOwnerID)
	return team, nil
}

// Delete soft-deletes the team; owner only.
func (s *TeamService) Delete(ctx context.Context, teamID, requesterID uint) error {
	team, err := s.teams.FindByID(ctx, teamID)
	if err != nil {
		return err
	}
	if team.Members.RoleOf(requesterID) != models.RoleOwner {
		return apperr.ErrAccessDenied
	}
	return s.teams.SoftDelete(ctx, teamID)
}

type eventPayload = map[string]interface{}
