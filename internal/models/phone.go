package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Phone report kinds.
const (
	PhoneKindLost  = "lost"
	PhoneKindFound = "found"
)

// Phone report statuses.
const (
	PhoneStatusActive   = "active"
	PhoneStatusMatched  = "matched"
	PhoneStatusResolved = "resolved"
)

var PhoneConditions = []string{"excellent", "good", "fair", "damaged"}

// Location is the self-reported geocoded position of a report.
type Location struct {
	Lat     float64 `gorm:"column:lat" json:"lat"`
	Lng     float64 `gorm:"column:lng" json:"lng"`
	Address string  `gorm:"column:address;size:500" json:"address"`
}

// Phone is a lost or found phone report. Status and MatchedWithID are only
// mutated by match verification; owner edits go through the CRUD layer.
type Phone struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Kind          string         `gorm:"size:10;not null;index;uniqueIndex:idx_phones_kind_imei" json:"kind"`
	Brand         string         `gorm:"size:100;not null;index" json:"brand"`
	Model         string         `gorm:"size:100;not null;index" json:"model"`
	Color         string         `gorm:"size:50;not null" json:"color"`
	IMEI          *string        `gorm:"column:imei;size:20;uniqueIndex:idx_phones_kind_imei" json:"imei,omitempty"`
	Description   string         `gorm:"type:text;not null" json:"description"`
	Location      Location       `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Images        datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"images"`
	Status        string         `gorm:"size:20;not null;default:'active';index" json:"status"`
	ReportedByID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"reported_by"`
	ContactInfo   string         `gorm:"size:255" json:"contact_info,omitempty"`
	Reward        float64        `gorm:"default:0" json:"reward"`
	Condition     string         `gorm:"size:20;default:'good'" json:"condition"`
	LastSeen      *time.Time     `json:"last_seen,omitempty"`
	Tags          datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"tags"`
	MatchedWithID *uuid.UUID     `gorm:"type:uuid" json:"matched_with,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
	ReportedBy    User           `gorm:"foreignKey:ReportedByID" json:"-"`
}
