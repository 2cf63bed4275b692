package services

import (
	"testing"

	"github.com/findmyphone/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPhone(kind, color string, imei string, lat, lng float64) models.Phone {
	p := models.Phone{
		Kind:  kind,
		Brand: "Apple",
		Model: "iPhone 14",
		Color: color,
		Location: models.Location{
			Lat:     lat,
			Lng:     lng,
			Address: "Taksim Square, Istanbul",
		},
	}
	if imei != "" {
		p.IMEI = &imei
	}
	return p
}

func factorNames(factors []models.MatchingFactor) []string {
	names := make([]string, len(factors))
	for i, f := range factors {
		names[i] = f.Factor
	}
	return names
}

func TestScorePerfectMatch(t *testing.T) {
	lost := testPhone(models.PhoneKindLost, "Purple", "359836077000001", 41.0082, 28.9784)
	found := testPhone(models.PhoneKindFound, "Purple", "359836077000001", 41.0082, 28.9784)

	confidence, factors := Score(&lost, &found)

	assert.InDelta(t, 100, confidence, 1e-9)
	assert.Equal(t,
		[]string{
			models.FactorBrand, models.FactorModel, models.FactorColor,
			models.FactorIMEI, models.FactorLocation,
		},
		factorNames(factors))
	// Zero distance yields a full location sub-score.
	assert.InDelta(t, 100, factors[4].Score, 1e-9)
}

func TestScoreColorMismatchFarApart(t *testing.T) {
	// ~10 km of latitude separation, well past the 5 km cutoff.
	lost := testPhone(models.PhoneKindLost, "Purple", "", 41.0, 29.0)
	found := testPhone(models.PhoneKindFound, "Black", "", 41.09, 29.0)

	confidence, factors := Score(&lost, &found)

	assert.InDelta(t, 30, confidence, 1e-9)
	assert.Equal(t, []string{models.FactorBrand, models.FactorModel}, factorNames(factors))
}

func TestScoreIMEIAddsExactlyForty(t *testing.T) {
	lost := testPhone(models.PhoneKindLost, "Purple", "", 41.0, 29.0)
	found := testPhone(models.PhoneKindFound, "Black", "", 41.2, 29.0)

	base, _ := Score(&lost, &found)

	imei := "359836077000001"
	lost.IMEI = &imei
	found.IMEI = &imei
	withIMEI, factors := Score(&lost, &found)

	assert.InDelta(t, 40, withIMEI-base, 1e-9)
	assert.Contains(t, factorNames(factors), models.FactorIMEI)
}

func TestScoreIMEIRequiresBothSides(t *testing.T) {
	imei := "359836077000001"
	lost := testPhone(models.PhoneKindLost, "Black", "", 41.0, 29.0)
	lost.IMEI = &imei
	found := testPhone(models.PhoneKindFound, "Black", "", 41.2, 29.0)

	_, factors := Score(&lost, &found)
	assert.NotContains(t, factorNames(factors), models.FactorIMEI)

	empty := ""
	found.IMEI = &empty
	_, factors = Score(&lost, &found)
	assert.NotContains(t, factorNames(factors), models.FactorIMEI)
}

func TestScoreColorCaseInsensitive(t *testing.T) {
	lost := testPhone(models.PhoneKindLost, "PURPLE", "", 41.0, 29.0)
	found := testPhone(models.PhoneKindFound, "purple", "", 41.2, 29.0)

	_, factors := Score(&lost, &found)
	assert.Contains(t, factorNames(factors), models.FactorColor)
}

func TestScoreLocationDecay(t *testing.T) {
	// ~2 km apart: location sub-score ~60, scaled contribution ~3.
	lost := testPhone(models.PhoneKindLost, "Purple", "", 41.0, 29.0)
	found := testPhone(models.PhoneKindFound, "Black", "", 41.0+2.0/111.195, 29.0)

	confidence, factors := Score(&lost, &found)

	require.Len(t, factors, 3)
	assert.Equal(t, models.FactorLocation, factors[2].Factor)
	assert.InDelta(t, 60, factors[2].Score, 0.5)
	assert.InDelta(t, 33, confidence, 0.05)
}

func TestScoreDeterministic(t *testing.T) {
	lost := testPhone(models.PhoneKindLost, "Purple", "359836077000001", 41.0082, 28.9784)
	found := testPhone(models.PhoneKindFound, "Purple", "359836077000001", 41.0086, 28.979)

	c1, f1 := Score(&lost, &found)
	c2, f2 := Score(&lost, &found)

	assert.Equal(t, c1, c2)
	assert.Equal(t, f1, f2)
}

func TestScoreBelowThresholdScenario(t *testing.T) {
	// Same brand/model, different color, 10 km apart: 30 points, under 60.
	lost := testPhone(models.PhoneKindLost, "Purple", "", 41.0, 29.0)
	found := testPhone(models.PhoneKindFound, "Black", "", 41.09, 29.0)

	confidence, _ := Score(&lost, &found)
	assert.Less(t, confidence, confidenceThreshold)
}
