package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gymtech/backoffice-api/internal/dto"
	"github.com/gymtech/backoffice-api/internal/models"
	appErrors "github.com/gymtech/backoffice-api/pkg/errors"
)

const (
	testClassTeacherID = "5b0d1f8c-7c53-4f6d-8e23-9d1a6b4c2e10"
	testClassStudentID = "8e4f5a2d-bb97-4d0e-a167-3c5e0d4a8f21"
)

type mockClassRepo struct {
	classes map[string]*models.Class
	updated *models.Class
}

func newMockClassRepo(classes ...*models.Class) *mockClassRepo {
	repo := &mockClassRepo{classes: make(map[string]*models.Class)}
	for _, c := range classes {
		repo.classes[c.ID] = c
	}
	return repo
}

func (m *mockClassRepo) List(_ context.Context, _ models.ClassFilter) ([]models.Class, int, error) {
	var out []models.Class
	for _, c := range m.classes {
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *mockClassRepo) FindByID(_ context.Context, id string) (*models.Class, error) {
	if c, ok := m.classes[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassRepo) Create(_ context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = "c1"
	}
	stored := *class
	m.classes[class.ID] = &stored
	return nil
}

func (m *mockClassRepo) Update(_ context.Context, class *models.Class) error {
	if _, ok := m.classes[class.ID]; !ok {
		return sql.ErrNoRows
	}
	stored := *class
	m.classes[class.ID] = &stored
	m.updated = &stored
	return nil
}

func (m *mockClassRepo) Delete(_ context.Context, id string) error {
	delete(m.classes, id)
	return nil
}

type stubTeacherLookup struct {
	teacher *models.Teacher
}

func (s *stubTeacherLookup) FindByID(_ context.Context, id string) (*models.Teacher, error) {
	if s.teacher == nil || s.teacher.ID != id {
		return nil, sql.ErrNoRows
	}
	copied := *s.teacher
	return &copied, nil
}

type stubStudentLookup struct {
	student *models.Student
}

func (s *stubStudentLookup) FindByID(_ context.Context, id string) (*models.Student, error) {
	if s.student == nil || s.student.ID != id {
		return nil, sql.ErrNoRows
	}
	copied := *s.student
	return &copied, nil
}

func newClassFixture(classes ...*models.Class) (*ClassService, *mockClassRepo) {
	repo := newMockClassRepo(classes...)
	teachers := &stubTeacherLookup{teacher: &models.Teacher{
		ID:     testClassTeacherID,
		Name:   "Diego",
		Status: models.TeacherStatusActive,
	}}
	students := &stubStudentLookup{student: &models.Student{
		ID:     testClassStudentID,
		Name:   "Ana",
		Status: models.StudentStatusActive,
	}}
	return NewClassService(repo, teachers, students, nil, zap.NewNop()), repo
}

func scheduledClass(roster ...string) *models.Class {
	return &models.Class{
		ID:               "c1",
		Name:             "Spinning",
		TeacherID:        testClassTeacherID,
		Date:             time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC),
		StartTime:        "08:00",
		EndTime:          "09:00",
		MaxStudents:      2,
		EnrolledStudents: pq.StringArray(roster),
		Status:           models.ClassStatusScheduled,
		Type:             "spinning",
		Location:         "Studio A",
		DayOfWeek:        "monday",
	}
}

func TestClassServiceCreateDerivesDayOfWeek(t *testing.T) {
	svc, _ := newClassFixture()

	// 2024-03-04 is a Monday.
	class, err := svc.Create(context.Background(), dto.CreateClassRequest{
		Name:        "Spinning",
		TeacherID:   testClassTeacherID,
		Date:        "2024-03-04",
		StartTime:   "08:00",
		EndTime:     "09:00",
		MaxStudents: 10,
		Type:        "spinning",
		Location:    "Studio A",
	})
	require.NoError(t, err)
	assert.Equal(t, "monday", class.DayOfWeek)
	assert.Equal(t, models.ClassStatusScheduled, class.Status)
}

func TestClassServiceCreateRejectsInvertedTimes(t *testing.T) {
	svc, _ := newClassFixture()

	_, err := svc.Create(context.Background(), dto.CreateClassRequest{
		Name:        "Spinning",
		TeacherID:   testClassTeacherID,
		Date:        "2024-03-04",
		StartTime:   "09:00",
		EndTime:     "08:00",
		MaxStudents: 10,
		Type:        "spinning",
		Location:    "Studio A",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestClassServiceEnrollAddsStudent(t *testing.T) {
	svc, repo := newClassFixture(scheduledClass())

	class, err := svc.Enroll(context.Background(), "c1", dto.EnrollRequest{StudentID: testClassStudentID})
	require.NoError(t, err)
	assert.Contains(t, []string(class.EnrolledStudents), testClassStudentID)
	require.NotNil(t, repo.updated)
}

func TestClassServiceEnrollRejectsFullClass(t *testing.T) {
	svc, _ := newClassFixture(scheduledClass("other-1", "other-2"))

	_, err := svc.Enroll(context.Background(), "c1", dto.EnrollRequest{StudentID: testClassStudentID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrClassFull.Code, appErrors.FromError(err).Code)
}

func TestClassServiceEnrollRejectsDuplicate(t *testing.T) {
	svc, _ := newClassFixture(scheduledClass(testClassStudentID))

	_, err := svc.Enroll(context.Background(), "c1", dto.EnrollRequest{StudentID: testClassStudentID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestClassServiceEnrollRejectsCancelledClass(t *testing.T) {
	cancelled := scheduledClass()
	cancelled.Status = models.ClassStatusCancelled
	svc, _ := newClassFixture(cancelled)

	_, err := svc.Enroll(context.Background(), "c1", dto.EnrollRequest{StudentID: testClassStudentID})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestClassServiceUnenrollRemovesStudent(t *testing.T) {
	svc, _ := newClassFixture(scheduledClass(testClassStudentID, "other-1"))

	class, err := svc.Unenroll(context.Background(), "c1", testClassStudentID)
	require.NoError(t, err)
	assert.NotContains(t, []string(class.EnrolledStudents), testClassStudentID)
	assert.Contains(t, []string(class.EnrolledStudents), "other-1")
}

func TestClassServiceUpdateRecomputesDayOfWeek(t *testing.T) {
	svc, repo := newClassFixture(scheduledClass())

	// 2024-03-06 is a Wednesday; the stored label must follow the new date.
	updated, err := svc.Update(context.Background(), "c1", dto.UpdateClassRequest{
		Name:        "Spinning",
		TeacherID:   testClassTeacherID,
		Date:        "2024-03-06",
		StartTime:   "08:00",
		EndTime:     "09:00",
		MaxStudents: 2,
		Status:      models.ClassStatusScheduled,
		Type:        "spinning",
		Location:    "Studio A",
	})
	require.NoError(t, err)
	assert.Equal(t, "wednesday", updated.DayOfWeek)
	require.NotNil(t, repo.updated)
	assert.Equal(t, "wednesday", repo.updated.DayOfWeek)
}

func TestClassServiceUpdateRejectsCapacityBelowEnrollment(t *testing.T) {
	svc, _ := newClassFixture(scheduledClass(testClassStudentID, "other-1"))

	_, err := svc.Update(context.Background(), "c1", dto.UpdateClassRequest{
		Name:        "Spinning",
		TeacherID:   testClassTeacherID,
		Date:        "2024-03-04",
		StartTime:   "08:00",
		EndTime:     "09:00",
		MaxStudents: 1,
		Status:      models.ClassStatusScheduled,
		Type:        "spinning",
		Location:    "Studio A",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
