// Package authz holds the pure permission rules for teams and channels.
// Nothing here touches storage; callers load the entity, ask, then act.
package authz

import (
	"teamhub/apperr"
	"teamhub/models"
)

// CanInvite reports whether the requester may add members to the team.
func CanInvite(team *models.Team, requesterID uint) bool {
	switch team.Members.RoleOf(requesterID) {
	case models.RoleOwner, models.RoleAdmin:
		return true
	}
	return false
}

// CanChangeRole reports whether the requester may change member roles.
// Only the owner can: letting admins promote each other opens
// privilege-escalation chains.
func CanChangeRole(team *models.Team, requesterID uint) bool {
	return team.Members.RoleOf(requesterID) == models.RoleOwner
}

// CanRemoveMember reports whether the requester may remove the target.
// The owner can never be removed; ownership must be transferred first.
func CanRemoveMember(team *models.Team, requesterID, targetID uint) bool {
	switch team.Members.RoleOf(requesterID) {
	case models.RoleOwner, models.RoleAdmin:
	default:
		return false
	}
	return team.Members.RoleOf(targetID) != models.RoleOwner
}

// CanTransferOwnership reports whether the requester may hand the team over.
func CanTransferOwnership(team *models.Team, requesterID uint) bool {
	return team.Members.RoleOf(requesterID) == models.RoleOwner
}

// TransferOwnership swaps the owner role from requester to newOwner on the
// in-memory team: requester becomes admin, newOwner becomes owner, and the
// team's OwnerID is updated. The caller must persist the result with a
// single save so the swap is atomic; a half-applied transfer would leave
// the team with zero or two owners.
func TransferOwnership(team *models.Team, requesterID, newOwnerID uint) error {
	requester := team.Members.Find(requesterID)
	if requester == nil || requester.Role != models.RoleOwner {
		return apperr.ErrNotOwner
	}
	target := team.Members.Find(newOwnerID)
	if target == nil {
		return apperr.ErrTargetNotMember
	}
	requester.Role = models.RoleAdmin
	target.Role = models.RoleOwner
	team.OwnerID = newOwnerID
	return nil
}

// CanAccessChannel reports whether the user may read and post. Public
// channels grant implicit access to any authenticated user.
func CanAccessChannel(ch *models.Channel, userID uint) bool {
	if ch.Type == models.ChannelPublic {
		return true
	}
	return ch.CreatedBy == userID || ch.Members.Has(userID)
}

// CanModerateChannel reports whether the user may manage the channel
// itself (rename, archive, manage members).
func CanModerateChannel(ch *models.Channel, userID uint) bool {
	if ch.CreatedBy == userID {
		return true
	}
	m := ch.Members.Find(userID)
	return m != nil && m.Role == models.ChannelRoleAdmin
}
