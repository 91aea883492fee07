package models

import (
	"time"

	"gorm.io/gorm"
)

// Team roles, in descending order of privilege.
const (
	RoleOwner  = "owner"
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// Team represents a collaboration group with a single owner.
type Team struct {
	gorm.Model
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`

	// CreatedBy is the original creator and is informational only after
	// an ownership transfer; OwnerID tracks the current owner.
	CreatedBy uint `gorm:"not null;index" json:"created_by"`
	OwnerID   uint `gorm:"not null;index" json:"owner_id"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	// Version guards whole-document saves against concurrent writers.
	Version int `gorm:"not null;default:0" json:"-"`

	// Members is stored as a single JSON document so role changes and
	// ownership transfer land in one write.
	Members TeamMemberList `gorm:"type:jsonb;serializer:json" json:"members"`
}

// TeamMember is embedded in Team; unique per UserID within a team.
type TeamMember struct {
	UserID   uint      `json:"user_id"`
	Role     string    `json:"role"` // owner, admin, member
	JoinedAt time.Time `json:"joined_at"`
}

type TeamMemberList []TeamMember

// Find returns a pointer into the list so callers can mutate the entry
// in place before saving the team.
func (l TeamMemberList) Find(userID uint) *TeamMember {
	for i := range l {
		if l[i].UserID == userID {
			return &l[i]
		}
	}
	return nil
}

func (l TeamMemberList) Has(userID uint) bool {
	return l.Find(userID) != nil
}

// RoleOf returns the member's role, or "" for non-members.
func (l TeamMemberList) RoleOf(userID uint) string {
	if m := l.Find(userID); m != nil {
		return m.Role
	}
	return ""
}

// Owner returns the member holding the owner role.
func (l TeamMemberList) Owner() *TeamMember {
	for i := range l {
		if l[i].Role == RoleOwner {
			return &l[i]
		}
	}
	return nil
}
