package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gymtech/backoffice-api/internal/dto"
	"github.com/gymtech/backoffice-api/internal/models"
	appErrors "github.com/gymtech/backoffice-api/pkg/errors"
)

type paymentRepository interface {
	List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, int, error)
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	Create(ctx context.Context, payment *models.Payment) error
	Update(ctx context.Context, payment *models.Payment) error
	MarkOverdue(ctx context.Context, cutoff time.Time) (int64, error)
	Delete(ctx context.Context, id string) error
}

type paymentStudentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
}

// PaymentService implements payment lifecycle use cases. A payment moves
// pending -> paid through Settle, which sets the payment date atomically with
// the status, or pending -> overdue through the scheduled sweep.
type PaymentService struct {
	repo      paymentRepository
	students  paymentStudentRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewPaymentService constructs a PaymentService.
func NewPaymentService(repo paymentRepository, students paymentStudentRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *PaymentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{repo: repo, students: students, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// List returns payments matching the filter.
func (s *PaymentService) List(ctx context.Context, filter models.PaymentFilter) ([]models.Payment, *models.Pagination, error) {
	payments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list payments")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return payments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single payment.
func (s *PaymentService) Get(ctx context.Context, id string) (*models.Payment, error) {
	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	return payment, nil
}

// Create registers a pending charge against a student.
func (s *PaymentService) Create(ctx context.Context, req dto.CreatePaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payment payload")
	}

	student, err := s.students.FindByID(ctx, req.StudentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	due, err := time.ParseInLocation(dateLayout, req.DueDate, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid due date")
	}

	// The plan reference keeps per-plan realized revenue correct even if the
	// student later switches plans.
	planID := req.PlanID
	if planID == "" {
		planID = student.PlanID
	}

	payment := models.Payment{
		StudentID:   req.StudentID,
		PlanID:      planID,
		AmountCents: req.AmountCents,
		DueDate:     due,
		Status:      models.PaymentStatusPending,
		Method:      req.Method,
	}
	if err := s.repo.Create(ctx, &payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create payment")
	}
	s.invalidateDerived(ctx)
	return &payment, nil
}

// Settle marks a payment as paid. The payment date and status change
// together; a paid payment cannot be settled twice.
func (s *PaymentService) Settle(ctx context.Context, id string, req dto.SettlePaymentRequest) (*models.Payment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settle payload")
	}

	payment, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	if payment.Status == models.PaymentStatusPaid {
		return nil, appErrors.Clone(appErrors.ErrConflict, "payment already settled")
	}

	paidAt := s.now().UTC()
	if req.PaymentDate != "" {
		paidAt, err = time.ParseInLocation(dateLayout, req.PaymentDate, time.UTC)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid payment date")
		}
	}

	payment.Status = models.PaymentStatusPaid
	payment.PaymentDate = &paidAt
	if req.Method != nil {
		payment.Method = req.Method
	}

	if err := s.repo.Update(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to settle payment")
	}
	s.invalidateDerived(ctx)
	return payment, nil
}

// SweepOverdue flips pending payments past their due date to overdue.
func (s *PaymentService) SweepOverdue(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Truncate(24 * time.Hour)
	affected, err := s.repo.MarkOverdue(ctx, cutoff)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sweep overdue payments")
	}
	if affected > 0 {
		s.logger.Info("marked overdue payments", zap.Int64("count", affected))
		s.invalidateDerived(ctx)
	}
	return affected, nil
}

// Delete removes a payment record.
func (s *PaymentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete payment")
	}
	s.invalidateDerived(ctx)
	return nil
}

func (s *PaymentService) invalidateDerived(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
