package chat

import "teamhub/models"

// Notifier delivers targeted per-user notifications for lifecycle events,
// independent of which rooms the user has joined. The realtime dispatcher
// implements this; services call it after the durable write succeeds.
type Notifier interface {
	MessagePosted(ch *models.Channel, msg *models.Message)
	MemberAdded(team *models.Team, member models.TeamMember)
	MemberRemoved(team *models.Team, userID uint)
	RoleChanged(team *models.Team, userID uint, role string)
	OwnerTransferred(team *models.Team, oldOwnerID, newOwnerID uint)
}

// NopNotifier ignores all notifications.
type NopNotifier struct{}

func (NopNotifier) MessagePosted(*models.Channel, *models.Message)        {}
func (NopNotifier) MemberAdded(*models.Team, models.TeamMember)           {}
func (NopNotifier) MemberRemoved(*models.Team, uint)                      {}
func (NopNotifier) RoleChanged(*models.Team, uint, string)                {}
func (NopNotifier) OwnerTransferred(*models.Team, uint, uint)             {}
