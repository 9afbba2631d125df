package model

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one message in a project's chat thread
type ChatMessage struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID   uuid.UUID        `gorm:"type:uuid;not null;index" json:"project_id"`
	Project     *Project         `gorm:"foreignKey:ProjectID" json:"-"`
	SenderID    uuid.UUID        `gorm:"type:uuid;not null" json:"sender_id"`
	Sender      *User            `gorm:"foreignKey:SenderID" json:"sender,omitempty"`
	Message     string           `gorm:"type:text" json:"message"`
	Attachments []ChatAttachment `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE;" json:"attachments"`
	Reactions   []ChatReaction   `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE;" json:"reactions"`
	CreatedAt   time.Time        `gorm:"autoCreateTime;index" json:"created_at"`
}

// ChatAttachment stores the served URL of a file uploaded with a message
type ChatAttachment struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MessageID uuid.UUID `gorm:"type:uuid;not null;index" json:"message_id"`
	URL       string    `gorm:"type:varchar(500);not null" json:"url"`
}

// ChatReaction is one user's emoji reaction on a message. The composite
// unique index makes reacting idempotent per (message, user, emoji).
type ChatReaction struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	MessageID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_once" json:"message_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reaction_once" json:"user_id"`
	Emoji     string    `gorm:"type:varchar(16);not null;uniqueIndex:idx_reaction_once" json:"emoji"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
