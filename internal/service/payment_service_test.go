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

type mockPaymentRepo struct {
	payments map[string]*models.Payment
	created  *models.Payment
	updated  *models.Payment
	overdue  int64
}

func (m *mockPaymentRepo) List(_ context.Context, _ models.PaymentFilter) ([]models.Payment, int, error) {
	out := make([]models.Payment, 0, len(m.payments))
	for _, p := range m.payments {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (m *mockPaymentRepo) FindByID(_ context.Context, id string) (*models.Payment, error) {
	if p, ok := m.payments[id]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockPaymentRepo) Create(_ context.Context, payment *models.Payment) error {
	payment.ID = "pay-new"
	m.created = payment
	return nil
}

func (m *mockPaymentRepo) Update(_ context.Context, payment *models.Payment) error {
	m.updated = payment
	return nil
}

func (m *mockPaymentRepo) MarkOverdue(_ context.Context, _ time.Time) (int64, error) {
	return m.overdue, nil
}

func (m *mockPaymentRepo) Delete(_ context.Context, _ string) error { return nil }

type mockStudentLookup struct {
	students map[string]*models.Student
}

func (m *mockStudentLookup) FindByID(_ context.Context, id string) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, sql.ErrNoRows
}

const testStudentID = "9c3e3f1c-aa86-4c9f-b056-2b4d9c3f7e23"

func newPaymentService(repo *mockPaymentRepo, students *mockStudentLookup) *PaymentService {
	return NewPaymentService(repo, students, nil, nil, zap.NewNop())
}

func TestPaymentServiceCreatePending(t *testing.T) {
	repo := &mockPaymentRepo{}
	students := &mockStudentLookup{students: map[string]*models.Student{testStudentID: {ID: testStudentID}}}
	svc := newPaymentService(repo, students)

	payment, err := svc.Create(context.Background(), dto.CreatePaymentRequest{
		StudentID:   testStudentID,
		AmountCents: 8000,
		DueDate:     "2024-02-01",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)
	assert.Nil(t, payment.PaymentDate)
	assert.Equal(t, int64(8000), payment.AmountCents)
}

const testPaymentPlanID = "5f0a9a6e-41d2-47a4-8a76-6f1b2c3d4e5f"

func TestPaymentServiceCreateDefaultsPlanFromStudent(t *testing.T) {
	repo := &mockPaymentRepo{}
	students := &mockStudentLookup{students: map[string]*models.Student{
		testStudentID: {ID: testStudentID, PlanID: testPaymentPlanID},
	}}
	svc := newPaymentService(repo, students)

	payment, err := svc.Create(context.Background(), dto.CreatePaymentRequest{
		StudentID:   testStudentID,
		AmountCents: 8000,
		DueDate:     "2024-02-01",
	})
	require.NoError(t, err)
	assert.Equal(t, testPaymentPlanID, payment.PlanID)
	require.NotNil(t, repo.created)
	assert.Equal(t, testPaymentPlanID, repo.created.PlanID)
}

func TestPaymentServiceCreateKeepsExplicitPlan(t *testing.T) {
	const explicitPlan = "0b1c2d3e-4f50-4172-8394-a5b6c7d8e9f0"
	repo := &mockPaymentRepo{}
	students := &mockStudentLookup{students: map[string]*models.Student{
		testStudentID: {ID: testStudentID, PlanID: testPaymentPlanID},
	}}
	svc := newPaymentService(repo, students)

	payment, err := svc.Create(context.Background(), dto.CreatePaymentRequest{
		StudentID:   testStudentID,
		PlanID:      explicitPlan,
		AmountCents: 8000,
		DueDate:     "2024-02-01",
	})
	require.NoError(t, err)
	assert.Equal(t, explicitPlan, payment.PlanID)
}

func TestPaymentServiceCreateRejectsUnknownStudent(t *testing.T) {
	repo := &mockPaymentRepo{}
	students := &mockStudentLookup{}
	svc := newPaymentService(repo, students)

	_, err := svc.Create(context.Background(), dto.CreatePaymentRequest{
		StudentID:   testStudentID,
		AmountCents: 8000,
		DueDate:     "2024-02-01",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPaymentServiceSettleSetsDateWithStatus(t *testing.T) {
	repo := &mockPaymentRepo{payments: map[string]*models.Payment{
		"pay1": {ID: "pay1", StudentID: testStudentID, AmountCents: 8000, Status: models.PaymentStatusPending},
	}}
	svc := newPaymentService(repo, &mockStudentLookup{})
	svc.now = func() time.Time { return time.Date(2024, 1, 20, 14, 30, 0, 0, time.UTC) }

	payment, err := svc.Settle(context.Background(), "pay1", dto.SettlePaymentRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, payment.Status)
	require.NotNil(t, payment.PaymentDate)
	assert.Equal(t, 2024, payment.PaymentDate.Year())
}

func TestPaymentServiceSettleTwiceConflicts(t *testing.T) {
	paidAt := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	repo := &mockPaymentRepo{payments: map[string]*models.Payment{
		"pay1": {ID: "pay1", StudentID: testStudentID, AmountCents: 8000, Status: models.PaymentStatusPaid, PaymentDate: &paidAt},
	}}
	svc := newPaymentService(repo, &mockStudentLookup{})

	_, err := svc.Settle(context.Background(), "pay1", dto.SettlePaymentRequest{})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestPaymentServiceSettleOverduePayment(t *testing.T) {
	repo := &mockPaymentRepo{payments: map[string]*models.Payment{
		"pay1": {ID: "pay1", StudentID: testStudentID, AmountCents: 8000, Status: models.PaymentStatusOverdue},
	}}
	svc := newPaymentService(repo, &mockStudentLookup{})

	payment, err := svc.Settle(context.Background(), "pay1", dto.SettlePaymentRequest{PaymentDate: "2024-03-05"})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusPaid, payment.Status)
	require.NotNil(t, payment.PaymentDate)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), payment.PaymentDate.UTC())
}

func TestPaymentServiceSweepOverdue(t *testing.T) {
	repo := &mockPaymentRepo{overdue: 4}
	svc := newPaymentService(repo, &mockStudentLookup{})

	affected, err := svc.SweepOverdue(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), affected)
}
