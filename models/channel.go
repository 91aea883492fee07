package models

import (
	"time"

	"gorm.io/gorm"
)

// Channel types.
const (
	ChannelPublic  = "public"
	ChannelPrivate = "private"
	ChannelDirect  = "direct"
)

// Channel-level roles.
const (
	ChannelRoleAdmin  = "admin"
	ChannelRoleMember = "member"
)

// Channel is a message venue, optionally scoped to a team or project.
type Channel struct {
	gorm.Model
	Name        string `gorm:"not null" json:"name"`
	Description string `json:"description"`
	Type        string `gorm:"not null;default:'public'" json:"type"` // public, private, direct

	TeamID    *uint `gorm:"index" json:"team_id,omitempty"`
	ProjectID *uint `gorm:"index" json:"project_id,omitempty"`

	CreatedBy uint `gorm:"not null;index" json:"created_by"`

	// LastMessageAt advances monotonically on every accepted message.
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`

	IsActive bool `gorm:"default:true" json:"is_active"`
	Version  int  `gorm:"not null;default:0" json:"-"`

	Members ChannelMemberList `gorm:"type:jsonb;serializer:json" json:"members"`
}

// ChannelMember is embedded in Channel.
type ChannelMember struct {
	UserID   uint      `json:"user_id"`
	Role     string    `json:"role"` // admin, member
	JoinedAt time.Time `json:"joined_at"`
}

type ChannelMemberList []ChannelMember

func (l ChannelMemberList) Find(userID uint) *ChannelMember {
	for i := range l {
		if l[i].UserID == userID {
			return &l[i]
		}
	}
	return nil
}

func (l ChannelMemberList) Has(userID uint) bool {
	return l.Find(userID) != nil
}
