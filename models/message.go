package models

import (
	"time"

	"gorm.io/gorm"
)

// MaxMessageLength bounds message content.
const MaxMessageLength = 5000

// DeletedMessagePlaceholder replaces the content of soft-deleted messages.
const DeletedMessagePlaceholder = "This message has been deleted"

// Message belongs to a channel; a non-nil ParentID makes it a thread reply
// (one level deep, replies cannot themselves be parents).
type Message struct {
	gorm.Model
	ChannelID uint   `gorm:"not null;index" json:"channel_id"`
	UserID    uint   `gorm:"not null;index" json:"user_id"`
	Content   string `gorm:"type:text;not null" json:"content"`
	ParentID  *uint  `gorm:"index" json:"parent_id,omitempty"`

	Reactions   ReactionList   `gorm:"type:jsonb;serializer:json" json:"reactions"`
	Attachments AttachmentList `gorm:"type:jsonb;serializer:json" json:"attachments"`

	IsEdited bool       `gorm:"default:false" json:"is_edited"`
	EditedAt *time.Time `json:"edited_at,omitempty"`

	// Soft delete: id and reactions are retained for thread integrity,
	// content is replaced by DeletedMessagePlaceholder and edits locked.
	IsDeleted bool `gorm:"default:false" json:"is_deleted"`

	Version int `gorm:"not null;default:0" json:"-"`
}

// Reaction is embedded in Message; unique per (emoji, user) pair.
type Reaction struct {
	Emoji     string    `json:"emoji"`
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

type ReactionList []Reaction

func (l ReactionList) Has(emoji string, userID uint) bool {
	for i := range l {
		if l[i].Emoji == emoji && l[i].UserID == userID {
			return true
		}
	}
	return false
}

// Remove returns the list without the given (emoji, user) pair and whether
// anything was removed.
func (l ReactionList) Remove(emoji string, userID uint) (ReactionList, bool) {
	out := make(ReactionList, 0, len(l))
	removed := false
	for _, r := range l {
		if r.Emoji == emoji && r.UserID == userID {
			removed = true
			continue
		}
		out = append(out, r)
	}
	return out, removed
}

// Attachment metadata; the upload itself is handled by external storage.
type Attachment struct {
	FileName string `json:"file_name"`
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

type AttachmentList []Attachment
