package dto

import "github.com/findmyphone/backend/internal/models"

type VerifyMatchRequest struct {
	VerificationCode string `json:"verification_code,omitempty"`
}

type RejectMatchRequest struct {
	Reason string `json:"reason,omitempty"`
}

// VerifyMatchResponse reports either a completed verification or the code
// the owner must confirm. Returning the code in-band mirrors the reference
// flow; see the delivery note in DESIGN.md.
type VerifyMatchResponse struct {
	Message          string        `json:"message"`
	Status           string        `json:"status"`
	VerificationCode string        `json:"verification_code,omitempty"`
	Match            *models.Match `json:"match,omitempty"`
}
