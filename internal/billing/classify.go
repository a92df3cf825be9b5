package billing

import (
	"time"

	"github.com/gymtech/backoffice-api/internal/models"
)

// DefaultExpiringWindowDays is the rolling window used for expiring-soon
// selection when the caller does not override it.
const DefaultExpiringWindowDays = 30

// Classification is the derived lifecycle view of a single student.
type Classification struct {
	// DaysToExpire counts whole calendar days from now until the stored
	// expiration date. Negative when the plan has already lapsed.
	DaysToExpire int
	// ExpiringSoon is true for active students whose expiration falls within
	// the next DefaultExpiringWindowDays days, inclusive on both ends.
	ExpiringSoon bool
}

// Classify derives the expiration view for one student. The boolean is false
// when the student carries no usable expiration date (zero time); such
// records are excluded from date-window filters rather than failing the
// batch. Status is trusted as stored: a stale "active" label on a lapsed
// student yields DaysToExpire < 0, never a corrected status.
func Classify(student models.Student, now time.Time) (Classification, bool) {
	if student.ExpirationDate.IsZero() {
		return Classification{}, false
	}
	days := daysBetween(now, student.ExpirationDate)
	return Classification{
		DaysToExpire: days,
		ExpiringSoon: student.Status == models.StudentStatusActive && days >= 0 && days <= DefaultExpiringWindowDays,
	}, true
}

// truncateToDay normalises an instant to UTC midnight. All calendar-day
// arithmetic in this package goes through this single rule so that displayed
// day counts never drift near midnight in any zone.
func truncateToDay(t time.Time) time.Time {
	year, month, day := t.UTC().Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole calendar days from one instant to another.
// Both sides are truncated first, so the difference is always an exact
// multiple of 24 hours.
func daysBetween(from, to time.Time) int {
	return int(truncateToDay(to).Sub(truncateToDay(from)) / (24 * time.Hour))
}
