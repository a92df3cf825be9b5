package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymtech/backoffice-api/internal/models"
)

func activeStudent(id string, expiration time.Time) models.Student {
	return models.Student{ID: id, Name: id, Status: models.StudentStatusActive, ExpirationDate: expiration}
}

func TestSelectExpiringSoonWindowBoundaries(t *testing.T) {
	now := date(2024, time.March, 1)
	tests := []struct {
		name       string
		expiration time.Time
		included   bool
	}{
		{"expires today", now, true},
		{"expired yesterday", now.AddDate(0, 0, -1), false},
		{"expires at window edge", now.AddDate(0, 0, 30), true},
		{"expires just past window", now.AddDate(0, 0, 31), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			selected, skipped := SelectExpiringSoon([]models.Student{activeStudent("s1", tc.expiration)}, now, 30)
			assert.Zero(t, skipped)
			if tc.included {
				assert.Len(t, selected, 1)
			} else {
				assert.Empty(t, selected)
			}
		})
	}
}

func TestSelectExpiringSoonStatusGate(t *testing.T) {
	now := date(2024, time.March, 1)
	students := []models.Student{
		activeStudent("s1", now.AddDate(0, 0, 10)),
		{ID: "s2", Status: models.StudentStatusExpired, ExpirationDate: now.AddDate(0, 0, 10)},
		{ID: "s3", Status: models.StudentStatusInactive, ExpirationDate: now.AddDate(0, 0, 10)},
	}

	selected, skipped := SelectExpiringSoon(students, now, 30)
	require.Len(t, selected, 1)
	assert.Equal(t, "s1", selected[0].ID)
	assert.Zero(t, skipped)
}

func TestSelectExpiringSoonPreservesSnapshotOrder(t *testing.T) {
	now := date(2024, time.March, 1)
	// s2 expires sooner than s1 but the snapshot order must win.
	students := []models.Student{
		activeStudent("s1", now.AddDate(0, 0, 25)),
		activeStudent("s2", now.AddDate(0, 0, 3)),
		activeStudent("s3", now.AddDate(0, 0, 14)),
	}

	selected, _ := SelectExpiringSoon(students, now, 30)
	require.Len(t, selected, 3)
	assert.Equal(t, "s1", selected[0].ID)
	assert.Equal(t, "s2", selected[1].ID)
	assert.Equal(t, "s3", selected[2].ID)
}

func TestSelectExpiringSoonCountsUnsetDates(t *testing.T) {
	now := date(2024, time.March, 1)
	students := []models.Student{
		activeStudent("s1", now.AddDate(0, 0, 5)),
		{ID: "s2", Status: models.StudentStatusActive},
		{ID: "s3", Status: models.StudentStatusActive},
	}

	selected, skipped := SelectExpiringSoon(students, now, 30)
	assert.Len(t, selected, 1)
	assert.Equal(t, 2, skipped)
}

func TestSelectExpiringSoonDefaultWindow(t *testing.T) {
	now := date(2024, time.March, 1)
	students := []models.Student{activeStudent("s1", now.AddDate(0, 0, 30))}

	selected, _ := SelectExpiringSoon(students, now, 0)
	assert.Len(t, selected, 1)
}
