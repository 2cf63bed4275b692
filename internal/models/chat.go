package models

import (
	"time"

	"github.com/google/uuid"
)

// Chat message types.
const (
	MessageTypeText     = "text"
	MessageTypeImage    = "image"
	MessageTypeLocation = "location"
	MessageTypeSystem   = "system"
)

// Chat is a conversation about one phone report between the user who opened
// it and the user who filed the report.
type Chat struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PhoneID      uuid.UUID `gorm:"type:uuid;not null;index" json:"phone_id"`
	StarterID    uuid.UUID `gorm:"type:uuid;not null;index" json:"starter_id"`
	ReporterID   uuid.UUID `gorm:"type:uuid;not null;index" json:"reporter_id"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	LastActivity time.Time `gorm:"not null;index" json:"last_activity"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Phone        Phone     `gorm:"foreignKey:PhoneID" json:"-"`
	Starter      User      `gorm:"foreignKey:StarterID" json:"-"`
	Reporter     User      `gorm:"foreignKey:ReporterID" json:"-"`
}

type ChatMessage struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ChatID    uuid.UUID `gorm:"type:uuid;not null;index" json:"chat_id"`
	SenderID  uuid.UUID `gorm:"type:uuid;not null" json:"sender_id"`
	Body      string    `gorm:"size:500;not null" json:"message"`
	Type      string    `gorm:"size:20;not null;default:'text'" json:"message_type"`
	Read      bool      `gorm:"default:false" json:"read"`
	CreatedAt time.Time `json:"timestamp"`
	Chat      Chat      `gorm:"foreignKey:ChatID" json:"-"`
	Sender    User      `gorm:"foreignKey:SenderID" json:"-"`
}
