package billing

import (
	"time"

	"github.com/gymtech/backoffice-api/internal/models"
)

// SelectExpiringSoon filters active students whose expiration date falls in
// the rolling window [now, now+windowDays], inclusive on both ends. Output
// preserves the snapshot's insertion order; callers wanting soonest-first
// must sort explicitly. The second return counts records skipped because
// their expiration date is unset.
func SelectExpiringSoon(students []models.Student, now time.Time, windowDays int) ([]models.Student, int) {
	if windowDays <= 0 {
		windowDays = DefaultExpiringWindowDays
	}
	var selected []models.Student
	skipped := 0
	for _, student := range students {
		if student.ExpirationDate.IsZero() {
			skipped++
			continue
		}
		if student.Status != models.StudentStatusActive {
			continue
		}
		days := daysBetween(now, student.ExpirationDate)
		if days >= 0 && days <= windowDays {
			selected = append(selected, student)
		}
	}
	return selected, skipped
}
