package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymtech/backoffice-api/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestClassifyActiveStudentInWindow(t *testing.T) {
	student := models.Student{
		ID:             "s1",
		Status:         models.StudentStatusActive,
		EnrollmentDate: date(2024, time.January, 1),
		ExpirationDate: date(2024, time.February, 1),
	}
	now := date(2024, time.January, 20)

	classification, ok := Classify(student, now)
	require.True(t, ok)
	assert.Equal(t, 12, classification.DaysToExpire)
	assert.True(t, classification.ExpiringSoon)
}

func TestClassifyStatusGateExcludesNonActive(t *testing.T) {
	// Stale record: the date sits inside the window but the label says
	// expired. The classifier trusts the label for the window flag.
	student := models.Student{
		ID:             "s2",
		Status:         models.StudentStatusExpired,
		EnrollmentDate: date(2024, time.January, 1),
		ExpirationDate: date(2024, time.February, 1),
	}
	now := date(2024, time.January, 20)

	classification, ok := Classify(student, now)
	require.True(t, ok)
	assert.Equal(t, 12, classification.DaysToExpire)
	assert.False(t, classification.ExpiringSoon)
}

func TestClassifyLapsedActiveStudent(t *testing.T) {
	student := models.Student{
		Status:         models.StudentStatusActive,
		ExpirationDate: date(2024, time.February, 1),
	}
	now := date(2024, time.February, 10)

	classification, ok := Classify(student, now)
	require.True(t, ok)
	assert.Equal(t, -9, classification.DaysToExpire)
	assert.False(t, classification.ExpiringSoon)
}

func TestClassifyUnsetExpirationDate(t *testing.T) {
	student := models.Student{Status: models.StudentStatusActive}
	_, ok := Classify(student, date(2024, time.January, 20))
	assert.False(t, ok)
}

func TestClassifyTruncatesToCalendarDays(t *testing.T) {
	student := models.Student{
		Status:         models.StudentStatusActive,
		ExpirationDate: date(2024, time.February, 1),
	}
	lateEvening := time.Date(2024, time.January, 20, 23, 59, 59, 0, time.UTC)
	earlyMorning := time.Date(2024, time.January, 20, 0, 0, 1, 0, time.UTC)

	lateClassification, ok := Classify(student, lateEvening)
	require.True(t, ok)
	earlyClassification, ok := Classify(student, earlyMorning)
	require.True(t, ok)
	assert.Equal(t, lateClassification, earlyClassification)
	assert.Equal(t, 12, lateClassification.DaysToExpire)
}

func TestClassifyIdempotent(t *testing.T) {
	student := models.Student{
		Status:         models.StudentStatusActive,
		ExpirationDate: date(2024, time.February, 1),
	}
	now := date(2024, time.January, 20)

	first, ok1 := Classify(student, now)
	second, ok2 := Classify(student, now)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, first, second)
}
