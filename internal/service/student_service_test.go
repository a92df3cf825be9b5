package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gymtech/backoffice-api/internal/dto"
	"github.com/gymtech/backoffice-api/internal/models"
	appErrors "github.com/gymtech/backoffice-api/pkg/errors"
)

type mockStudentRepo struct {
	students map[string]*models.Student
	cpfTaken bool
	created  *models.Student
	updated  *models.Student
}

func (m *mockStudentRepo) List(_ context.Context, _ models.StudentFilter) ([]models.Student, int, error) {
	out := make([]models.Student, 0, len(m.students))
	for _, s := range m.students {
		out = append(out, *s)
	}
	return out, len(out), nil
}

func (m *mockStudentRepo) FindByID(_ context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockStudentRepo) ExistsByCPF(_ context.Context, _, _ string) (bool, error) {
	return m.cpfTaken, nil
}

func (m *mockStudentRepo) Create(_ context.Context, student *models.Student) error {
	student.ID = "s-new"
	m.created = student
	return nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *models.Student) error {
	m.updated = student
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, _ string) error { return nil }

type mockPlanLookup struct {
	plans map[string]*models.Plan
}

func (m *mockPlanLookup) FindByID(_ context.Context, id string) (*models.Plan, error) {
	if p, ok := m.plans[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

const testPlanID = "6f1e1c9a-8a64-4a7e-9f34-0f2b7a1d5c01"

func monthlyPlan() *models.Plan {
	return &models.Plan{ID: testPlanID, Name: "Monthly", DurationMonths: 1, PriceCents: 10000}
}

func newStudentService(repo *mockStudentRepo, plans *mockPlanLookup) *StudentService {
	return NewStudentService(repo, plans, nil, nil, zap.NewNop())
}

func TestStudentServiceCreateDerivesExpiration(t *testing.T) {
	repo := &mockStudentRepo{}
	plans := &mockPlanLookup{plans: map[string]*models.Plan{testPlanID: monthlyPlan()}}
	svc := newStudentService(repo, plans)

	resp, err := svc.Create(context.Background(), dto.CreateStudentRequest{
		Name:           "Ana Souza",
		CPF:            "12345678901",
		Email:          "ana@example.com",
		PlanID:         testPlanID,
		EnrollmentDate: "2024-01-15",
	})
	require.NoError(t, err)
	require.NotNil(t, repo.created)

	expected := time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC)
	assert.True(t, repo.created.ExpirationDate.Equal(expected))
	assert.Equal(t, models.StudentStatusActive, repo.created.Status)
	assert.Equal(t, "Monthly", resp.PlanName)
}

func TestStudentServiceCreateRejectsDuplicateCPF(t *testing.T) {
	repo := &mockStudentRepo{cpfTaken: true}
	plans := &mockPlanLookup{plans: map[string]*models.Plan{testPlanID: monthlyPlan()}}
	svc := newStudentService(repo, plans)

	_, err := svc.Create(context.Background(), dto.CreateStudentRequest{
		Name:           "Ana Souza",
		CPF:            "12345678901",
		Email:          "ana@example.com",
		PlanID:         testPlanID,
		EnrollmentDate: "2024-01-15",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Nil(t, repo.created)
}

func TestStudentServiceCreateRejectsUnknownPlan(t *testing.T) {
	repo := &mockStudentRepo{}
	plans := &mockPlanLookup{plans: map[string]*models.Plan{}}
	svc := newStudentService(repo, plans)

	_, err := svc.Create(context.Background(), dto.CreateStudentRequest{
		Name:           "Ana Souza",
		CPF:            "12345678901",
		Email:          "ana@example.com",
		PlanID:         testPlanID,
		EnrollmentDate: "2024-01-15",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestStudentServiceUpdateRecomputesExpirationOnPlanChange(t *testing.T) {
	const quarterlyID = "7a2f2d0b-9b75-4b8f-8a45-1a3c8b2e6d12"
	enrollment := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	existing := &models.Student{
		ID:             "s1",
		Name:           "Ana Souza",
		CPF:            "12345678901",
		Email:          "ana@example.com",
		PlanID:         testPlanID,
		EnrollmentDate: enrollment,
		ExpirationDate: enrollment.AddDate(0, 1, 0),
		Status:         models.StudentStatusActive,
	}
	repo := &mockStudentRepo{students: map[string]*models.Student{"s1": existing}}
	plans := &mockPlanLookup{plans: map[string]*models.Plan{
		testPlanID:  monthlyPlan(),
		quarterlyID: {ID: quarterlyID, Name: "Quarterly", DurationMonths: 3, PriceCents: 24000},
	}}
	svc := newStudentService(repo, plans)

	_, err := svc.Update(context.Background(), "s1", dto.UpdateStudentRequest{
		Name:           "Ana Souza",
		CPF:            "12345678901",
		Email:          "ana@example.com",
		PlanID:         quarterlyID,
		EnrollmentDate: "2024-01-15",
		Status:         models.StudentStatusActive,
	})
	require.NoError(t, err)
	require.NotNil(t, repo.updated)
	assert.True(t, repo.updated.ExpirationDate.Equal(enrollment.AddDate(0, 3, 0)))
}

func TestStudentServiceUpdateKeepsExpirationWhenPlanUnchanged(t *testing.T) {
	enrollment := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	stored := enrollment.AddDate(0, 1, 0)
	existing := &models.Student{
		ID:             "s1",
		Name:           "Ana Souza",
		CPF:            "12345678901",
		Email:          "ana@example.com",
		PlanID:         testPlanID,
		EnrollmentDate: enrollment,
		ExpirationDate: stored,
		Status:         models.StudentStatusActive,
	}
	repo := &mockStudentRepo{students: map[string]*models.Student{"s1": existing}}
	plans := &mockPlanLookup{plans: map[string]*models.Plan{testPlanID: monthlyPlan()}}
	svc := newStudentService(repo, plans)

	_, err := svc.Update(context.Background(), "s1", dto.UpdateStudentRequest{
		Name:           "Ana Lima",
		CPF:            "12345678901",
		Email:          "ana@example.com",
		PlanID:         testPlanID,
		EnrollmentDate: "2024-01-15",
		Status:         models.StudentStatusInactive,
	})
	require.NoError(t, err)
	require.NotNil(t, repo.updated)
	assert.True(t, repo.updated.ExpirationDate.Equal(stored))
	assert.Equal(t, models.StudentStatusInactive, repo.updated.Status)
}

func TestStudentServiceGetAttachesClassification(t *testing.T) {
	now := time.Now().UTC()
	existing := &models.Student{
		ID:             "s1",
		Name:           "Ana Souza",
		CPF:            "12345678901",
		Email:          "ana@example.com",
		PlanID:         testPlanID,
		EnrollmentDate: now.AddDate(0, -1, 0),
		ExpirationDate: now.AddDate(0, 0, 10),
		Status:         models.StudentStatusActive,
	}
	repo := &mockStudentRepo{students: map[string]*models.Student{"s1": existing}}
	plans := &mockPlanLookup{plans: map[string]*models.Plan{testPlanID: monthlyPlan()}}
	svc := newStudentService(repo, plans)

	resp, err := svc.Get(context.Background(), "s1")
	require.NoError(t, err)
	require.NotNil(t, resp.DaysToExpire)
	assert.Equal(t, 10, *resp.DaysToExpire)
	assert.True(t, resp.ExpiringSoon)
}

func TestStudentServiceGetNotFound(t *testing.T) {
	repo := &mockStudentRepo{}
	plans := &mockPlanLookup{}
	svc := newStudentService(repo, plans)

	_, err := svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
