package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Match statuses. Verified and rejected are terminal.
const (
	MatchStatusPending  = "pending"
	MatchStatusVerified = "verified"
	MatchStatusRejected = "rejected"
)

// Matching factor names. Image and description are reserved; the scorer
// never emits them.
const (
	FactorBrand       = "brand"
	FactorModel       = "model"
	FactorColor       = "color"
	FactorIMEI        = "imei"
	FactorLocation    = "location"
	FactorImage       = "image"
	FactorDescription = "description"
)

// MatchingFactor is one named signal with its 0-100 sub-score.
type MatchingFactor struct {
	Factor string  `json:"factor"`
	Score  float64 `json:"score"`
}

// Match is a scored candidate pairing of one lost and one found report.
// PairKey is the canonical unordered (lost, found) key; its unique index
// makes duplicate creation a no-op instead of a check-then-act race.
type Match struct {
	ID               uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	LostPhoneID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"lost_phone_id"`
	FoundPhoneID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"found_phone_id"`
	PairKey          string         `gorm:"size:80;not null;uniqueIndex" json:"-"`
	Confidence       float64        `gorm:"not null" json:"confidence"`
	Status           string         `gorm:"size:20;not null;default:'pending';index" json:"status"`
	MatchingFactors  datatypes.JSON `gorm:"type:jsonb;default:'[]'" json:"matching_factors"`
	VerificationCode *string        `gorm:"size:10" json:"-"`
	VerifiedAt       *time.Time     `json:"verified_at,omitempty"`
	RejectedReason   *string        `gorm:"size:500" json:"rejected_reason,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	LostPhone        Phone          `gorm:"foreignKey:LostPhoneID" json:"-"`
	FoundPhone       Phone          `gorm:"foreignKey:FoundPhoneID" json:"-"`
}

// PairKeyFor returns the canonical key for an unordered report pair.
func PairKeyFor(a, b uuid.UUID) string {
	lo, hi := a.String(), b.String()
	if strings.Compare(lo, hi) > 0 {
		lo, hi = hi, lo
	}
	return lo + ":" + hi
}

// Factors decodes the stored matching factor list.
func (m *Match) Factors() ([]MatchingFactor, error) {
	var factors []MatchingFactor
	if len(m.MatchingFactors) == 0 {
		return factors, nil
	}
	err := json.Unmarshal(m.MatchingFactors, &factors)
	return factors, err
}
