package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gymtech/backoffice-api/internal/models"
	appErrors "github.com/gymtech/backoffice-api/pkg/errors"
)

type stubStudentListAll struct {
	students []models.Student
	calls    int
}

func (s *stubStudentListAll) ListAll(_ context.Context) ([]models.Student, error) {
	s.calls++
	return s.students, nil
}

type stubPlanListAll struct{ plans []models.Plan }

func (s *stubPlanListAll) ListAll(_ context.Context) ([]models.Plan, error) { return s.plans, nil }

type stubPaymentListAll struct{ payments []models.Payment }

func (s *stubPaymentListAll) ListAll(_ context.Context) ([]models.Payment, error) {
	return s.payments, nil
}

type stubTeacherListAll struct{ teachers []models.Teacher }

func (s *stubTeacherListAll) ListAll(_ context.Context) ([]models.Teacher, error) {
	return s.teachers, nil
}

type stubCacheRepo struct {
	store map[string][]byte
}

func (s *stubCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	payload, ok := s.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(payload, dest)
}

func (s *stubCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if s.store == nil {
		s.store = make(map[string][]byte)
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	s.store[key] = payload
	return nil
}

func (s *stubCacheRepo) DeleteByPattern(_ context.Context, _ string) error {
	s.store = nil
	return nil
}

func dashboardFixture() (*stubStudentListAll, *SnapshotService) {
	now := time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
	students := &stubStudentListAll{students: []models.Student{
		{ID: "s1", Name: "Ana", PlanID: "p1", Status: models.StudentStatusActive, ExpirationDate: now.AddDate(0, 0, 12)},
		{ID: "s2", Name: "Bruno", PlanID: "p1", Status: models.StudentStatusExpired, ExpirationDate: now.AddDate(0, 0, -9)},
		{ID: "s3", Name: "Carla", PlanID: "p2", Status: models.StudentStatusActive, ExpirationDate: now.AddDate(0, 2, 0)},
	}}
	plans := &stubPlanListAll{plans: []models.Plan{
		{ID: "p1", Name: "Monthly", DurationMonths: 1, PriceCents: 10000},
		{ID: "p2", Name: "Quarterly", DurationMonths: 3, PriceCents: 24000},
	}}
	payments := &stubPaymentListAll{payments: []models.Payment{
		{ID: "pay1", StudentID: "s1", PlanID: "p1", AmountCents: 10000, Status: models.PaymentStatusPaid},
		{ID: "pay2", StudentID: "s2", PlanID: "p1", AmountCents: 10000, Status: models.PaymentStatusOverdue},
	}}
	snapshots := NewSnapshotService(students, plans, payments, &stubTeacherListAll{}, nil, zap.NewNop())
	return students, snapshots
}

func fixedDashboardNow() time.Time {
	return time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC)
}

func TestDashboardServiceSummary(t *testing.T) {
	_, snapshots := dashboardFixture()
	svc := NewDashboardService(snapshots, nil, zap.NewNop(), DashboardConfig{})
	svc.now = fixedDashboardNow

	resp, cached, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)

	assert.Equal(t, 3, resp.Overview.TotalStudents)
	assert.Equal(t, 2, resp.Overview.ActiveStudents)
	assert.Equal(t, 1, resp.Overview.ExpiredStudents)
	assert.Equal(t, 1, resp.Overview.ExpiringSoon)
	assert.Equal(t, int64(10000), resp.Overview.RealizedRevenueCents)

	require.Len(t, resp.Plans, 2)
	assert.Equal(t, "Monthly", resp.Plans[0].Name)
	assert.Equal(t, 2, resp.Plans[0].TotalStudents)
	assert.Equal(t, 1, resp.Plans[0].ActiveStudents)
	assert.Equal(t, int64(10000), resp.Plans[0].RevenueCents)
	assert.Equal(t, int64(10000), resp.Plans[0].RealizedCents)
	assert.Equal(t, int64(24000), resp.Plans[1].RevenueCents)
	assert.Zero(t, resp.Plans[1].RealizedCents)

	require.Len(t, resp.Expiring, 1)
	assert.Equal(t, "s1", resp.Expiring[0].StudentID)
	assert.Equal(t, "Monthly", resp.Expiring[0].PlanName)
	assert.Equal(t, 12, resp.Expiring[0].DaysToExpire)
}

func TestDashboardServiceSummaryServedFromCache(t *testing.T) {
	students, snapshots := dashboardFixture()
	cacheSvc := NewCacheService(&stubCacheRepo{}, nil, time.Minute, zap.NewNop(), true)
	svc := NewDashboardService(snapshots, cacheSvc, zap.NewNop(), DashboardConfig{CacheTTL: time.Minute})
	svc.now = fixedDashboardNow

	_, cached, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.False(t, cached)
	assert.Equal(t, 1, students.calls)

	resp, cached, err := svc.Summary(context.Background())
	require.NoError(t, err)
	assert.True(t, cached)
	assert.Equal(t, 1, students.calls)
	assert.Equal(t, 3, resp.Overview.TotalStudents)
}

func TestDashboardServiceTopPayers(t *testing.T) {
	_, snapshots := dashboardFixture()
	svc := NewDashboardService(snapshots, nil, zap.NewNop(), DashboardConfig{})
	svc.now = fixedDashboardNow

	entries, err := svc.TopPayers(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Ana", entries[0].Name)
	assert.Equal(t, int64(10000), entries[0].PaidCents)
	assert.Equal(t, "Bruno", entries[1].Name)
	assert.Equal(t, int64(10000), entries[1].OverdueCents)
}
