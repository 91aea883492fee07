// Package notify routes lifecycle events to individually-addressed user
// rooms, so "you were invited" style notifications reach users that have
// not joined any team or channel room.
package notify

import (
	"teamhub/chat"
	"teamhub/models"
	"teamhub/realtime"
)

// Targeted per-user event names.
const (
	EventInvited     = "team:invited"
	EventRemoved     = "team:removed"
	EventRoleChanged = "team:roleChanged"
)

// Dispatcher implements chat.Notifier on top of the same publisher the
// room fan-out uses.
type Dispatcher struct {
	pub chat.Publisher
}

func NewDispatcher(pub chat.Publisher) *Dispatcher {
	return &Dispatcher{pub: pub}
}

// MessagePosted pings every channel member except the author.
func (d *Dispatcher) MessagePosted(ch *models.Channel, msg *models.Message) {
	for _, m := range ch.Members {
		if m.UserID == msg.UserID {
			continue
		}
		d.pub.Broadcast(realtime.UserRoom(m.UserID), chat.EventMessageCreated, msg)
	}
}

func (d *Dispatcher) MemberAdded(team *models.Team, member models.TeamMember) {
	d.pub.Broadcast(realtime.UserRoom(member.UserID), EventInvited, map[string]interface{}{
		"team_id":   team.ID,
		"team_name": team.Name,
		"role":      member.Role,
	})
}

func (d *Dispatcher) MemberRemoved(team *models.Team, userID uint) {
	d.pub.Broadcast(realtime.UserRoom(userID), EventRemoved, map[string]interface{}{
		"team_id":   team.ID,
		"team_name": team.Name,
	})
}

func (d *Dispatcher) RoleChanged(team *models.Team, userID uint, role string) {
	d.pub.Broadcast(realtime.UserRoom(userID), EventRoleChanged, map[string]interface{}{
		"team_id":   team.ID,
		"team_name": team.Name,
		"role":      role,
	})
}

// OwnerTransferred notifies both sides of the swap directly; the team room
// broadcast covers everyone else.
func (d *Dispatcher) OwnerTransferred(team *models.Team, oldOwnerID, newOwnerID uint) {
	payload := map[string]interface{}{
		"team_id":      team.ID,
		"old_owner_id": oldOwnerID,
		"new_owner_id": newOwnerID,
	}
	d.pub.Broadcast(realtime.UserRoom(oldOwnerID), chat.EventOwnerTransferred, payload)
	d.pub.Broadcast(realtime.UserRoom(newOwnerID), chat.EventOwnerTransferred, payload)
}
