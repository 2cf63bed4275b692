package services

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/findmyphone/backend/internal/geo"
	"github.com/findmyphone/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Fixed scoring policy. Brand+model is a floor for every candidate because
// the query already filters on both; IMEI dominates because it identifies
// the physical handset; location caps low because self-reported coordinates
// are noisy.
const (
	confidenceThreshold = 60.0

	brandModelConfidence = 30.0
	colorConfidence      = 25.0
	imeiConfidence       = 40.0

	locationMaxKm           = 5.0
	locationScoreDecayPerKm = 20.0
	locationConfidenceScale = 0.05
)

// MatchingService compares newly filed lost reports against stored found
// reports and records candidate matches above the confidence threshold.
type MatchingService struct {
	db *gorm.DB
}

func NewMatchingService(db *gorm.DB) *MatchingService {
	return &MatchingService{db: db}
}

// Score rates how likely lost and found describe the same handset. It
// assumes the pair already passed the brand+model filter, so both factors
// are recorded up front. Returns the 0-100 confidence and the ordered
// factor list. Pure; identical inputs always produce identical output.
func Score(lost, found *models.Phone) (float64, []models.MatchingFactor) {
	confidence := 0.0
	factors := make([]models.MatchingFactor, 0, 5)

	confidence += brandModelConfidence
	factors = append(factors,
		models.MatchingFactor{Factor: models.FactorBrand, Score: 100},
		models.MatchingFactor{Factor: models.FactorModel, Score: 100},
	)

	if strings.EqualFold(lost.Color, found.Color) {
		confidence += colorConfidence
		factors = append(factors, models.MatchingFactor{Factor: models.FactorColor, Score: 100})
	}

	if lost.IMEI != nil && found.IMEI != nil && *lost.IMEI != "" && *lost.IMEI == *found.IMEI {
		confidence += imeiConfidence
		factors = append(factors, models.MatchingFactor{Factor: models.FactorIMEI, Score: 100})
	}

	distance := geo.DistanceKm(
		lost.Location.Lat, lost.Location.Lng,
		found.Location.Lat, found.Location.Lng,
	)
	if distance <= locationMaxKm {
		locationScore := 100 - distance*locationScoreDecayPerKm
		if locationScore < 0 {
			locationScore = 0
		}
		confidence += locationScore * locationConfidenceScale
		factors = append(factors, models.MatchingFactor{Factor: models.FactorLocation, Score: locationScore})
	}

	return confidence, factors
}

// FindPotentialMatches scans active found reports sharing the lost report's
// brand and model and persists every candidate clearing the threshold as a
// pending match. It is dispatched as a detached task after report creation;
// all failures are logged and swallowed so they can never reach the caller
// that filed the report.
func (s *MatchingService) FindPotentialMatches(lost models.Phone) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("match scan panicked", "lost_phone_id", lost.ID, "panic", r)
		}
	}()

	if lost.Kind != models.PhoneKindLost {
		return
	}

	var candidates []models.Phone
	err := s.db.
		Where("kind = ? AND status = ? AND brand = ? AND model = ?",
			models.PhoneKindFound, models.PhoneStatusActive, lost.Brand, lost.Model).
		Find(&candidates).Error
	if err != nil {
		slog.Error("match scan query failed", "lost_phone_id", lost.ID, "error", err)
		return
	}

	created := 0
	for i := range candidates {
		confidence, factors := Score(&lost, &candidates[i])
		if confidence < confidenceThreshold {
			continue
		}
		if err := s.createPending(lost.ID, candidates[i].ID, confidence, factors); err != nil {
			slog.Error("match record creation failed",
				"lost_phone_id", lost.ID,
				"found_phone_id", candidates[i].ID,
				"error", err)
			continue
		}
		created++
	}

	if created > 0 {
		slog.Info("match scan completed",
			"lost_phone_id", lost.ID,
			"candidates", len(candidates),
			"created", created)
	}
}

// createPending inserts a pending match keyed by the canonical unordered
// pair. The unique index on pair_key turns concurrent duplicate creation
// into a silent no-op, so no existence check is needed before the insert.
func (s *MatchingService) createPending(lostID, foundID uuid.UUID, confidence float64, factors []models.MatchingFactor) error {
	encoded, err := json.Marshal(factors)
	if err != nil {
		return err
	}

	match := models.Match{
		ID:              uuid.New(),
		LostPhoneID:     lostID,
		FoundPhoneID:    foundID,
		PairKey:         models.PairKeyFor(lostID, foundID),
		Confidence:      confidence,
		Status:          models.MatchStatusPending,
		MatchingFactors: datatypes.JSON(encoded),
	}

	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pair_key"}},
		DoNothing: true,
	}).Create(&match).Error
}
