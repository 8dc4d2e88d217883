package recurring

import (
	"fmt"
	"time"

	apperrors "sumitpay/internal/errors"
	"sumitpay/internal/models"
)

// Advance moves date forward by one billing period. Months and years are
// calendar periods, so a date on the 31st normalizes the way time.AddDate
// does.
func Advance(date time.Time, freq models.Frequency) (time.Time, error) {
	switch freq {
	case models.FrequencyDaily:
		return date.AddDate(0, 0, 1), nil
	case models.FrequencyWeekly:
		return date.AddDate(0, 0, 7), nil
	case models.FrequencyMonthly:
		return date.AddDate(0, 1, 0), nil
	case models.FrequencyYearly:
		return date.AddDate(1, 0, 0), nil
	}
	return time.Time{}, apperrors.ErrUnknownFrequency.WithMessage(fmt.Sprintf("unknown billing frequency %q", freq))
}
