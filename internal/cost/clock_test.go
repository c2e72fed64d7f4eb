package cost

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/pkg/errors"
)

func TestIsNight(t *testing.T) {
	tests := []struct {
		hour  int
		night bool
	}{
		{0, true},
		{5, true},
		{6, false},
		{12, false},
		{18, false},
		{19, true},
		{23, true},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.night, IsNight(tt.hour), "hour %d", tt.hour)
	}
}

func TestModeAt(t *testing.T) {
	assert.Equal(t, domain.ModeDay, ModeAt(time.Date(2024, 3, 1, 18, 59, 0, 0, time.UTC)))
	assert.Equal(t, domain.ModeNight, ModeAt(time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC)))
	assert.Equal(t, domain.ModeNight, ModeAt(time.Date(2024, 3, 1, 5, 59, 0, 0, time.UTC)))
}

func TestResolveMode(t *testing.T) {
	noon := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	midnight := time.Date(2024, 3, 1, 0, 30, 0, 0, time.UTC)

	m, err := ResolveMode("", midnight)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeNight, m)

	m, err = ResolveMode("auto", noon)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeDay, m)

	m, err = ResolveMode(" Night ", noon)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeNight, m)

	m, err = ResolveMode("day", midnight)
	require.NoError(t, err)
	assert.Equal(t, domain.ModeDay, m)

	_, err = ResolveMode("dusk", noon)
	require.Error(t, err)
	assert.ErrorIs(t, err, errors.ErrValidation)
}
