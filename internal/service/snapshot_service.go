package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/gymtech/backoffice-api/internal/billing"
	"github.com/gymtech/backoffice-api/internal/models"
	appErrors "github.com/gymtech/backoffice-api/pkg/errors"
)

type snapshotStudentRepository interface {
	ListAll(ctx context.Context) ([]models.Student, error)
}

type snapshotPlanRepository interface {
	ListAll(ctx context.Context) ([]models.Plan, error)
}

type snapshotPaymentRepository interface {
	ListAll(ctx context.Context) ([]models.Payment, error)
}

type snapshotTeacherRepository interface {
	ListAll(ctx context.Context) ([]models.Teacher, error)
}

// SnapshotService loads a consistent read model for the derived billing
// computations. All downstream aggregation is pure, so a single load per
// request is the only database cost.
type SnapshotService struct {
	students snapshotStudentRepository
	plans    snapshotPlanRepository
	payments snapshotPaymentRepository
	teachers snapshotTeacherRepository
	metrics  *MetricsService
	logger   *zap.Logger
}

// NewSnapshotService constructs a SnapshotService.
func NewSnapshotService(students snapshotStudentRepository, plans snapshotPlanRepository, payments snapshotPaymentRepository, teachers snapshotTeacherRepository, metrics *MetricsService, logger *zap.Logger) *SnapshotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotService{students: students, plans: plans, payments: payments, teachers: teachers, metrics: metrics, logger: logger}
}

// Load fetches all entity collections for derived computations.
func (s *SnapshotService) Load(ctx context.Context) (billing.Snapshot, error) {
	start := time.Now()
	var snap billing.Snapshot

	students, err := s.students.ListAll(ctx)
	if err != nil {
		return snap, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	plans, err := s.plans.ListAll(ctx)
	if err != nil {
		return snap, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plans")
	}
	payments, err := s.payments.ListAll(ctx)
	if err != nil {
		return snap, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payments")
	}
	var teachers []models.Teacher
	if s.teachers != nil {
		teachers, err = s.teachers.ListAll(ctx)
		if err != nil {
			return snap, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teachers")
		}
	}

	snap = billing.Snapshot{Students: students, Plans: plans, Payments: payments, Teachers: teachers}
	if s.metrics != nil {
		s.metrics.ObserveDBQuery("snapshot_load", time.Since(start))
	}
	return snap, nil
}
