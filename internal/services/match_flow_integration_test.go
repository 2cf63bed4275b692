//go:build integration

package services

import (
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/findmyphone/backend/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Requires a reachable PostgreSQL, e.g.
// TEST_DATABASE_DSN="host=localhost user=postgres password=postgres dbname=findmyphone_test sslmode=disable"
func getTestDB(t *testing.T) *gorm.DB {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set, skipping integration test")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Phone{},
		&models.Match{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	user := models.User{
		ID:       uuid.New(),
		Name:     name,
		Email:    fmt.Sprintf("%s-%s@test.local", name, uuid.NewString()[:8]),
		Password: "x",
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestPhone(t *testing.T, db *gorm.DB, ownerID uuid.UUID, kind, color string, withIMEI bool, imei string) *models.Phone {
	phone := models.Phone{
		ID:          uuid.New(),
		Kind:        kind,
		Brand:       "Apple",
		Model:       "iPhone 14",
		Color:       color,
		Description: "test report",
		Location: models.Location{
			Lat:     41.0082,
			Lng:     28.9784,
			Address: "Taksim Square, Istanbul",
		},
		Status:       models.PhoneStatusActive,
		ReportedByID: ownerID,
		Condition:    "good",
	}
	if withIMEI {
		phone.IMEI = &imei
	}
	require.NoError(t, db.Create(&phone).Error)
	return &phone
}

func uniqueIMEI() string {
	return fmt.Sprintf("35%013d", time.Now().UnixNano()%1e13)
}

func TestMatchScanCreatesPendingMatch(t *testing.T) {
	db := getTestDB(t)
	matching := NewMatchingService(db)

	owner := createTestUser(t, db, "owner")
	finder := createTestUser(t, db, "finder")
	imei := uniqueIMEI()

	found := createTestPhone(t, db, finder.ID, models.PhoneKindFound, "Purple", true, imei)
	lost := createTestPhone(t, db, owner.ID, models.PhoneKindLost, "Purple", true, imei)

	matching.FindPotentialMatches(*lost)
	// A second scan must not create a duplicate for the same pair.
	matching.FindPotentialMatches(*lost)

	var matches []models.Match
	require.NoError(t, db.Where("pair_key = ?", models.PairKeyFor(lost.ID, found.ID)).Find(&matches).Error)
	require.Len(t, matches, 1)

	match := matches[0]
	assert.Equal(t, models.MatchStatusPending, match.Status)
	assert.InDelta(t, 100, match.Confidence, 1e-9)
	assert.Equal(t, lost.ID, match.LostPhoneID)
	assert.Equal(t, found.ID, match.FoundPhoneID)

	factors, err := match.Factors()
	require.NoError(t, err)
	assert.Len(t, factors, 5)
}

func TestVerifyMatchLifecycle(t *testing.T) {
	db := getTestDB(t)
	matching := NewMatchingService(db)
	matchSvc := NewMatchService(db)

	owner := createTestUser(t, db, "owner")
	finder := createTestUser(t, db, "finder")
	imei := uniqueIMEI()

	found := createTestPhone(t, db, finder.ID, models.PhoneKindFound, "Purple", true, imei)
	lost := createTestPhone(t, db, owner.ID, models.PhoneKindLost, "Purple", true, imei)
	matching.FindPotentialMatches(*lost)

	var match models.Match
	require.NoError(t, db.Where("pair_key = ?", models.PairKeyFor(lost.ID, found.ID)).First(&match).Error)

	// Only the lost-phone owner may verify.
	_, err := matchSvc.Verify(match.ID, finder.ID, "")
	assert.ErrorIs(t, err, ErrNotLostOwner)

	// First owner call issues the code; match stays pending.
	resp, err := matchSvc.Verify(match.ID, owner.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusPending, resp.Status)
	require.Len(t, resp.VerificationCode, codeLength)
	code := resp.VerificationCode

	// Wrong code re-sends, no state change.
	resp, err = matchSvc.Verify(match.ID, owner.ID, "WRONG1")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusPending, resp.Status)
	assert.Equal(t, code, resp.VerificationCode)

	var lostCheck models.Phone
	require.NoError(t, db.First(&lostCheck, "id = ?", lost.ID).Error)
	assert.Equal(t, models.PhoneStatusActive, lostCheck.Status)

	// Correct code (lowercased to exercise case-insensitive compare).
	resp, err = matchSvc.Verify(match.ID, owner.ID, strings.ToLower(code))
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusVerified, resp.Status)
	require.NotNil(t, resp.Match)
	assert.NotNil(t, resp.Match.VerifiedAt)

	var lostAfter, foundAfter models.Phone
	require.NoError(t, db.First(&lostAfter, "id = ?", lost.ID).Error)
	require.NoError(t, db.First(&foundAfter, "id = ?", found.ID).Error)
	assert.Equal(t, models.PhoneStatusResolved, lostAfter.Status)
	assert.Equal(t, models.PhoneStatusResolved, foundAfter.Status)
	require.NotNil(t, lostAfter.MatchedWithID)
	require.NotNil(t, foundAfter.MatchedWithID)
	assert.Equal(t, found.ID, *lostAfter.MatchedWithID)
	assert.Equal(t, lost.ID, *foundAfter.MatchedWithID)

	// Terminal state absorbs further transitions.
	_, err = matchSvc.Verify(match.ID, owner.ID, code)
	assert.ErrorIs(t, err, ErrMatchClosed)
	_, err = matchSvc.Reject(match.ID, owner.ID, "")
	assert.ErrorIs(t, err, ErrMatchClosed)
}

func TestRejectMatchLeavesPhonesUntouched(t *testing.T) {
	db := getTestDB(t)
	matching := NewMatchingService(db)
	matchSvc := NewMatchService(db)

	owner := createTestUser(t, db, "owner")
	finder := createTestUser(t, db, "finder")
	imei := uniqueIMEI()

	found := createTestPhone(t, db, finder.ID, models.PhoneKindFound, "Purple", true, imei)
	lost := createTestPhone(t, db, owner.ID, models.PhoneKindLost, "Purple", true, imei)
	matching.FindPotentialMatches(*lost)

	var match models.Match
	require.NoError(t, db.Where("pair_key = ?", models.PairKeyFor(lost.ID, found.ID)).First(&match).Error)

	_, err := matchSvc.Reject(match.ID, finder.ID, "")
	assert.ErrorIs(t, err, ErrNotLostOwner)

	rejected, err := matchSvc.Reject(match.ID, owner.ID, "")
	require.NoError(t, err)
	assert.Equal(t, models.MatchStatusRejected, rejected.Status)
	require.NotNil(t, rejected.RejectedReason)
	assert.Equal(t, defaultRejectReason, *rejected.RejectedReason)

	var lostAfter, foundAfter models.Phone
	require.NoError(t, db.First(&lostAfter, "id = ?", lost.ID).Error)
	require.NoError(t, db.First(&foundAfter, "id = ?", found.ID).Error)
	assert.Equal(t, models.PhoneStatusActive, lostAfter.Status)
	assert.Equal(t, models.PhoneStatusActive, foundAfter.Status)
	assert.Nil(t, lostAfter.MatchedWithID)
	assert.Nil(t, foundAfter.MatchedWithID)
}

func TestMatchScanSkipsLowConfidence(t *testing.T) {
	db := getTestDB(t)
	matching := NewMatchingService(db)

	owner := createTestUser(t, db, "owner")
	finder := createTestUser(t, db, "finder")

	// Different color, ~10 km away: 30 points, under the threshold.
	found := createTestPhone(t, db, finder.ID, models.PhoneKindFound, "Black", false, "")
	require.NoError(t, db.Model(found).Update("location_lat", 41.0982).Error)
	lost := createTestPhone(t, db, owner.ID, models.PhoneKindLost, "Purple", false, "")

	matching.FindPotentialMatches(*lost)

	var count int64
	require.NoError(t, db.Model(&models.Match{}).
		Where("pair_key = ?", models.PairKeyFor(lost.ID, found.ID)).
		Count(&count).Error)
	assert.Zero(t, count)
}
