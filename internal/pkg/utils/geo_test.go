package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHaversineDistance(t *testing.T) {
	// Trafalgar Square -> Piccadilly Circus, ~0.5 km
	d := HaversineDistance(51.5080, -0.1281, 51.5100, -0.1347)
	assert.InDelta(t, 0.51, d, 0.05)
	assert.Equal(t, 0.0, HaversineDistance(10, 10, 10, 10))
}

func TestValidateCoordinates(t *testing.T) {
	assert.True(t, ValidateCoordinates(51.5, -0.12))
	assert.True(t, ValidateCoordinates(-90, 180))
	assert.False(t, ValidateCoordinates(91, 0))
	assert.False(t, ValidateCoordinates(0, -181))
	assert.False(t, ValidateCoordinates(math.NaN(), 0))
}

func TestValidateProjectable(t *testing.T) {
	assert.True(t, ValidateProjectable(85, 0))
	assert.False(t, ValidateProjectable(89, 0))
}

func TestValidateRadius(t *testing.T) {
	assert.True(t, ValidateRadius(75))
	assert.False(t, ValidateRadius(0))
	assert.False(t, ValidateRadius(10000))
}
