package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/findmyphone/backend/internal/cache"
	"github.com/findmyphone/backend/internal/dto"
	"github.com/findmyphone/backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var (
	ErrNotReportOwner      = errors.New("you can only modify your own reports")
	ErrPhoneInPendingMatch = errors.New("report has a pending match and cannot be deleted")
	ErrIMEITaken           = errors.New("a report with this IMEI already exists")
)

const (
	phoneCachePrefix = "phones:"
	phoneCacheTTL    = time.Minute

	// Rough km per degree of latitude, used for the bounding-box prefilter.
	kmPerDegree = 111.0
)

// PhoneService owns phone report CRUD. Creating a lost report dispatches
// the match scanner as a detached task once the row is committed.
type PhoneService struct {
	db         *gorm.DB
	cache      *cache.Cache
	moderation *ModerationService
	matching   *MatchingService
}

func NewPhoneService(db *gorm.DB, c *cache.Cache, moderation *ModerationService, matching *MatchingService) *PhoneService {
	return &PhoneService{db: db, cache: c, moderation: moderation, matching: matching}
}

func (s *PhoneService) Create(userID uuid.UUID, req *dto.CreatePhoneRequest) (*models.Phone, error) {
	if req.Kind != models.PhoneKindLost && req.Kind != models.PhoneKindFound {
		return nil, errors.New("kind must be lost or found")
	}
	if strings.TrimSpace(req.Brand) == "" || strings.TrimSpace(req.Model) == "" {
		return nil, errors.New("brand and model are required")
	}
	if strings.TrimSpace(req.Color) == "" {
		return nil, errors.New("color is required")
	}
	if strings.TrimSpace(req.Description) == "" {
		return nil, errors.New("description is required")
	}
	if strings.TrimSpace(req.Location.Address) == "" {
		return nil, errors.New("location address is required")
	}

	if ok, reason := s.moderation.FilterContent(req.Description); !ok {
		return nil, errors.New(s.moderation.GetRejectionMessage(reason))
	}

	condition := req.Condition
	if condition == "" {
		condition = "good"
	}
	valid := false
	for _, c := range models.PhoneConditions {
		if c == condition {
			valid = true
			break
		}
	}
	if !valid {
		return nil, errors.New("invalid condition")
	}

	phone := models.Phone{
		ID:          uuid.New(),
		Kind:        req.Kind,
		Brand:       req.Brand,
		Model:       req.Model,
		Color:       req.Color,
		Description: req.Description,
		Location: models.Location{
			Lat:     req.Location.Lat,
			Lng:     req.Location.Lng,
			Address: req.Location.Address,
		},
		Images:       mustJSONArray(req.Images),
		Status:       models.PhoneStatusActive,
		ReportedByID: userID,
		ContactInfo:  req.ContactInfo,
		Reward:       req.Reward,
		Condition:    condition,
		LastSeen:     req.LastSeen,
		Tags:         mustJSONArray(req.Tags),
	}
	if imei := strings.TrimSpace(req.IMEI); imei != "" {
		phone.IMEI = &imei
	}

	if err := s.db.Create(&phone).Error; err != nil {
		if phone.IMEI != nil && isUniqueViolation(err) {
			return nil, ErrIMEITaken
		}
		return nil, fmt.Errorf("failed to create phone report: %w", err)
	}

	s.cache.FlushPrefix(context.Background(), phoneCachePrefix)

	// The insert above has committed; scan failures must never reach the
	// caller that filed the report.
	if phone.Kind == models.PhoneKindLost {
		go s.matching.FindPotentialMatches(phone)
	}

	return &phone, nil
}

func (s *PhoneService) List(filter *dto.PhoneFilter) (*dto.PhoneListResponse, error) {
	if filter.Limit <= 0 || filter.Limit > 100 {
		filter.Limit = 20
	}
	if filter.Page <= 0 {
		filter.Page = 1
	}

	lat, lng := "", ""
	if filter.Lat != nil {
		lat = strconv.FormatFloat(*filter.Lat, 'f', -1, 64)
	}
	if filter.Lng != nil {
		lng = strconv.FormatFloat(*filter.Lng, 'f', -1, 64)
	}
	fingerprint := fmt.Sprintf("%s|%s|%s|%s|%s|%s|%g|%d|%d",
		filter.Kind, filter.Brand, filter.Status, filter.Search,
		lat, lng, filter.Radius, filter.Page, filter.Limit)

	ctx := context.Background()
	key := cache.Key(phoneCachePrefix, fingerprint)
	if b, ok := s.cache.Get(ctx, key); ok {
		var cached dto.PhoneListResponse
		if err := json.Unmarshal(b, &cached); err == nil {
			return &cached, nil
		}
	}

	query := s.db.Model(&models.Phone{})

	if filter.Kind != "" && filter.Kind != "all" {
		query = query.Where("kind = ?", filter.Kind)
	}
	if filter.Brand != "" && filter.Brand != "All Brands" {
		query = query.Where("brand = ?", filter.Brand)
	}
	if filter.Status != "" && filter.Status != "All Status" {
		query = query.Where("status = ?", filter.Status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where(
			"brand ILIKE ? OR model ILIKE ? OR description ILIKE ? OR location_address ILIKE ?",
			like, like, like, like,
		)
	}
	if filter.Lat != nil && filter.Lng != nil {
		radius := filter.Radius
		if radius <= 0 {
			radius = 10
		}
		delta := radius / kmPerDegree
		query = query.
			Where("location_lat BETWEEN ? AND ?", *filter.Lat-delta, *filter.Lat+delta).
			Where("location_lng BETWEEN ? AND ?", *filter.Lng-delta, *filter.Lng+delta)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("failed to count phone reports: %w", err)
	}

	var phones []models.Phone
	err := query.
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit).
		Find(&phones).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list phone reports: %w", err)
	}

	resp := &dto.PhoneListResponse{
		Phones:      phones,
		Total:       total,
		TotalPages:  int((total + int64(filter.Limit) - 1) / int64(filter.Limit)),
		CurrentPage: filter.Page,
	}

	if b, err := json.Marshal(resp); err == nil {
		s.cache.Set(ctx, key, b, phoneCacheTTL)
	}
	return resp, nil
}

func (s *PhoneService) Get(id uuid.UUID) (*models.Phone, error) {
	var phone models.Phone
	if err := s.db.Preload("ReportedBy").First(&phone, "id = ?", id).Error; err != nil {
		return nil, ErrPhoneNotFound
	}
	return &phone, nil
}

func (s *PhoneService) Update(id, userID uuid.UUID, req *dto.UpdatePhoneRequest) (*models.Phone, error) {
	var phone models.Phone
	if err := s.db.First(&phone, "id = ?", id).Error; err != nil {
		return nil, ErrPhoneNotFound
	}
	if phone.ReportedByID != userID {
		return nil, ErrNotReportOwner
	}

	if req.Description != nil {
		if ok, reason := s.moderation.FilterContent(*req.Description); !ok {
			return nil, errors.New(s.moderation.GetRejectionMessage(reason))
		}
		phone.Description = *req.Description
	}
	if req.Color != nil {
		phone.Color = *req.Color
	}
	if req.Location != nil {
		phone.Location = models.Location{
			Lat:     req.Location.Lat,
			Lng:     req.Location.Lng,
			Address: req.Location.Address,
		}
	}
	if req.Images != nil {
		phone.Images = mustJSONArray(req.Images)
	}
	if req.ContactInfo != nil {
		phone.ContactInfo = *req.ContactInfo
	}
	if req.Reward != nil {
		phone.Reward = *req.Reward
	}
	if req.Condition != nil {
		phone.Condition = *req.Condition
	}
	if req.LastSeen != nil {
		phone.LastSeen = req.LastSeen
	}
	if req.Tags != nil {
		phone.Tags = mustJSONArray(req.Tags)
	}

	if err := s.db.Save(&phone).Error; err != nil {
		return nil, fmt.Errorf("failed to update phone report: %w", err)
	}

	s.cache.FlushPrefix(context.Background(), phoneCachePrefix)
	return &phone, nil
}

// Delete soft-deletes an owned report. Reports wired into a pending match
// stay put until the match is verified or rejected, so a match never points
// at a vanished report.
func (s *PhoneService) Delete(id, userID uuid.UUID) error {
	var phone models.Phone
	if err := s.db.First(&phone, "id = ?", id).Error; err != nil {
		return ErrPhoneNotFound
	}
	if phone.ReportedByID != userID {
		return ErrNotReportOwner
	}

	var pending int64
	err := s.db.Model(&models.Match{}).
		Where("status = ? AND (lost_phone_id = ? OR found_phone_id = ?)",
			models.MatchStatusPending, id, id).
		Count(&pending).Error
	if err != nil {
		return fmt.Errorf("failed to check pending matches: %w", err)
	}
	if pending > 0 {
		return ErrPhoneInPendingMatch
	}

	if err := s.db.Delete(&phone).Error; err != nil {
		return fmt.Errorf("failed to delete phone report: %w", err)
	}

	s.cache.FlushPrefix(context.Background(), phoneCachePrefix)
	return nil
}

func mustJSONArray(items []string) datatypes.JSON {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(b)
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "duplicate key")
}
