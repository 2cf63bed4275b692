package models

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestPairKeyForIsOrderIndependent(t *testing.T) {
	a := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	b := uuid.MustParse("22222222-2222-2222-2222-222222222222")

	assert.Equal(t, PairKeyFor(a, b), PairKeyFor(b, a))
	assert.Equal(t, a.String()+":"+b.String(), PairKeyFor(b, a))
}

func TestMatchFactorsRoundTrip(t *testing.T) {
	factors := []MatchingFactor{
		{Factor: FactorBrand, Score: 100},
		{Factor: FactorLocation, Score: 60},
	}
	encoded, err := json.Marshal(factors)
	require.NoError(t, err)

	m := Match{MatchingFactors: datatypes.JSON(encoded)}
	decoded, err := m.Factors()
	require.NoError(t, err)
	assert.Equal(t, factors, decoded)
}

func TestMatchFactorsEmpty(t *testing.T) {
	var m Match
	decoded, err := m.Factors()
	require.NoError(t, err)
	assert.Empty(t, decoded)
}
