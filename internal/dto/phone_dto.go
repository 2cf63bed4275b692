package dto

import (
	"time"

	"github.com/findmyphone/backend/internal/models"
)

type LocationPayload struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

type CreatePhoneRequest struct {
	Kind        string          `json:"kind"`
	Brand       string          `json:"brand"`
	Model       string          `json:"model"`
	Color       string          `json:"color"`
	IMEI        string          `json:"imei,omitempty"`
	Description string          `json:"description"`
	Location    LocationPayload `json:"location"`
	Images      []string        `json:"images"`
	ContactInfo string          `json:"contact_info,omitempty"`
	Reward      float64         `json:"reward,omitempty"`
	Condition   string          `json:"condition,omitempty"`
	LastSeen    *time.Time      `json:"last_seen,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
}

// UpdatePhoneRequest carries owner-editable fields; nil means unchanged.
type UpdatePhoneRequest struct {
	Color       *string          `json:"color,omitempty"`
	Description *string          `json:"description,omitempty"`
	Location    *LocationPayload `json:"location,omitempty"`
	Images      []string         `json:"images,omitempty"`
	ContactInfo *string          `json:"contact_info,omitempty"`
	Reward      *float64         `json:"reward,omitempty"`
	Condition   *string          `json:"condition,omitempty"`
	LastSeen    *time.Time       `json:"last_seen,omitempty"`
	Tags        []string         `json:"tags,omitempty"`
}

type PhoneFilter struct {
	Kind   string
	Brand  string
	Status string
	Search string
	Lat    *float64
	Lng    *float64
	Radius float64
	Page   int
	Limit  int
}

type PhoneListResponse struct {
	Phones      []models.Phone `json:"phones"`
	Total       int64          `json:"total"`
	TotalPages  int            `json:"total_pages"`
	CurrentPage int            `json:"current_page"`
}
