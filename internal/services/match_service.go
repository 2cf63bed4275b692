package services

import (
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/findmyphone/backend/internal/dto"
	"github.com/findmyphone/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrMatchNotFound  = errors.New("match not found")
	ErrPhoneNotFound  = errors.New("phone not found")
	ErrNotLostOwner   = errors.New("only the lost phone owner can do this")
	ErrNotParticipant = errors.New("you are not involved in this match")
	ErrMatchClosed    = errors.New("match is already verified or rejected")
)

const defaultRejectReason = "Not my phone"

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
const codeLength = 6

// MatchService owns the pending -> verified/rejected lifecycle of a match.
// Both outcomes are terminal.
type MatchService struct {
	db *gorm.DB
}

func NewMatchService(db *gorm.DB) *MatchService {
	return &MatchService{db: db}
}

// ListForUser returns every match touching one of the user's reports,
// newest first.
func (s *MatchService) ListForUser(userID uuid.UUID) ([]models.Match, error) {
	phoneIDs := s.db.Model(&models.Phone{}).
		Select("id").
		Where("reported_by_id = ?", userID)

	var matches []models.Match
	err := s.db.
		Preload("LostPhone").
		Preload("FoundPhone").
		Where("lost_phone_id IN (?) OR found_phone_id IN (?)", phoneIDs, phoneIDs).
		Order("created_at DESC").
		Find(&matches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	return matches, nil
}

// Get returns a match when the caller reported either linked phone.
func (s *MatchService) Get(matchID, userID uuid.UUID) (*models.Match, error) {
	var match models.Match
	if err := s.db.Preload("LostPhone").Preload("FoundPhone").First(&match, "id = ?", matchID).Error; err != nil {
		return nil, ErrMatchNotFound
	}

	if match.LostPhone.ReportedByID != userID && match.FoundPhone.ReportedByID != userID {
		return nil, ErrNotParticipant
	}
	return &match, nil
}

// Verify drives the pending -> verified transition. The first call with no
// stored code generates one and hands it back in the response; a later call
// supplying the matching code (case-insensitive) finalizes the match and
// resolves both phone reports in one transaction. A wrong or missing code
// on a coded match re-sends the code without changing state.
func (s *MatchService) Verify(matchID, actorID uuid.UUID, suppliedCode string) (*dto.VerifyMatchResponse, error) {
	var match models.Match
	if err := s.db.First(&match, "id = ?", matchID).Error; err != nil {
		return nil, ErrMatchNotFound
	}
	if match.Status != models.MatchStatusPending {
		return nil, ErrMatchClosed
	}

	var lostPhone models.Phone
	if err := s.db.First(&lostPhone, "id = ?", match.LostPhoneID).Error; err != nil {
		return nil, ErrPhoneNotFound
	}
	if lostPhone.ReportedByID != actorID {
		return nil, ErrNotLostOwner
	}

	if match.VerificationCode == nil {
		code, err := generateVerificationCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate verification code: %w", err)
		}
		if err := s.db.Model(&match).Update("verification_code", code).Error; err != nil {
			return nil, fmt.Errorf("failed to store verification code: %w", err)
		}
		match.VerificationCode = &code
		return &dto.VerifyMatchResponse{
			Message:          "Verification code sent",
			Status:           match.Status,
			VerificationCode: code,
		}, nil
	}

	if suppliedCode == "" || !codesMatch(suppliedCode, *match.VerificationCode) {
		return &dto.VerifyMatchResponse{
			Message:          "Verification code sent",
			Status:           match.Status,
			VerificationCode: *match.VerificationCode,
		}, nil
	}

	now := time.Now()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&match).Updates(map[string]interface{}{
			"status":      models.MatchStatusVerified,
			"verified_at": now,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Phone{}).Where("id = ?", match.LostPhoneID).Updates(map[string]interface{}{
			"status":          models.PhoneStatusResolved,
			"matched_with_id": match.FoundPhoneID,
		}).Error; err != nil {
			return err
		}
		return tx.Model(&models.Phone{}).Where("id = ?", match.FoundPhoneID).Updates(map[string]interface{}{
			"status":          models.PhoneStatusResolved,
			"matched_with_id": match.LostPhoneID,
		}).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to finalize match: %w", err)
	}

	match.Status = models.MatchStatusVerified
	match.VerifiedAt = &now
	return &dto.VerifyMatchResponse{
		Message: "Match verified successfully",
		Status:  match.Status,
		Match:   &match,
	}, nil
}

// Reject drives pending -> rejected. Phone reports are left untouched so
// both stay eligible for future matching.
func (s *MatchService) Reject(matchID, actorID uuid.UUID, reason string) (*models.Match, error) {
	var match models.Match
	if err := s.db.First(&match, "id = ?", matchID).Error; err != nil {
		return nil, ErrMatchNotFound
	}
	if match.Status != models.MatchStatusPending {
		return nil, ErrMatchClosed
	}

	var lostPhone models.Phone
	if err := s.db.First(&lostPhone, "id = ?", match.LostPhoneID).Error; err != nil {
		return nil, ErrPhoneNotFound
	}
	if lostPhone.ReportedByID != actorID {
		return nil, ErrNotLostOwner
	}

	if strings.TrimSpace(reason) == "" {
		reason = defaultRejectReason
	}

	if err := s.db.Model(&match).Updates(map[string]interface{}{
		"status":          models.MatchStatusRejected,
		"rejected_reason": reason,
	}).Error; err != nil {
		return nil, fmt.Errorf("failed to reject match: %w", err)
	}

	match.Status = models.MatchStatusRejected
	match.RejectedReason = &reason
	return &match, nil
}

// generateVerificationCode returns a short opaque token the owner confirms
// out loud or over chat. Comparison is case-insensitive.
func generateVerificationCode() (string, error) {
	buf := make([]byte, codeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	for i := range buf {
		buf[i] = codeAlphabet[int(buf[i])%len(codeAlphabet)]
	}
	return string(buf), nil
}

func codesMatch(supplied, stored string) bool {
	return strings.EqualFold(strings.TrimSpace(supplied), stored)
}
