package cost

import (
	"fmt"
	"strings"
	"time"

	"github.com/saferoute-service/internal/domain"
	"github.com/saferoute-service/internal/pkg/errors"
)

const ModeAuto = "auto"

// IsNight: ночь - час < 6 или час > 18. 18:xx еще день, 6:xx уже день.
func IsNight(hour int) bool {
	return hour < 6 || hour > 18
}

// ModeAt определяет режим по местному времени t
func ModeAt(t time.Time) domain.TimeMode {
	if IsNight(t.Hour()) {
		return domain.ModeNight
	}
	return domain.ModeDay
}

// ResolveMode разбирает явный режим ("day", "night") или "auto"/"" по часам
func ResolveMode(override string, now time.Time) (domain.TimeMode, error) {
	switch strings.ToLower(strings.TrimSpace(override)) {
	case "", ModeAuto:
		return ModeAt(now), nil
	case string(domain.ModeDay):
		return domain.ModeDay, nil
	case string(domain.ModeNight):
		return domain.ModeNight, nil
	default:
		return "", errors.Wrap(errors.ErrValidation, nil,
			fmt.Sprintf("unknown time mode %q: expected day, night or auto", override))
	}
}
