package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gymtech/backoffice-api/internal/billing"
	"github.com/gymtech/backoffice-api/internal/dto"
	"github.com/gymtech/backoffice-api/internal/models"
	appErrors "github.com/gymtech/backoffice-api/pkg/errors"
)

const dateLayout = "2006-01-02"

type studentRepository interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	ExistsByCPF(ctx context.Context, cpf, excludeID string) (bool, error)
	Create(ctx context.Context, student *models.Student) error
	Update(ctx context.Context, student *models.Student) error
	Delete(ctx context.Context, id string) error
}

type studentPlanRepository interface {
	FindByID(ctx context.Context, id string) (*models.Plan, error)
}

// StudentService implements student management use cases. The stored
// expiration date is recomputed here, and only here, whenever the enrollment
// date or plan changes.
type StudentService struct {
	repo      studentRepository
	plans     studentPlanRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewStudentService constructs a StudentService.
func NewStudentService(repo studentRepository, plans studentPlanRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{repo: repo, plans: plans, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// List returns students with derived expiry classification attached.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]dto.StudentResponse, *models.Pagination, error) {
	students, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list students")
	}

	responses := make([]dto.StudentResponse, 0, len(students))
	now := s.now()
	for _, student := range students {
		responses = append(responses, s.decorate(ctx, student, now))
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	return responses, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a single student with derived state.
func (s *StudentService) Get(ctx context.Context, id string) (*dto.StudentResponse, error) {
	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	resp := s.decorate(ctx, *student, s.now())
	return &resp, nil
}

// Create registers a new student. The expiration date is derived from the
// enrollment date plus the plan duration in calendar months.
func (s *StudentService) Create(ctx context.Context, req dto.CreateStudentRequest) (*dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	exists, err := s.repo.ExistsByCPF(ctx, req.CPF, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check cpf")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "cpf already registered")
	}

	plan, err := s.loadPlan(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	enrollment, err := time.ParseInLocation(dateLayout, req.EnrollmentDate, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid enrollment date")
	}

	student := models.Student{
		Name:           req.Name,
		CPF:            req.CPF,
		Phone:          req.Phone,
		Email:          req.Email,
		Address:        req.Address,
		PlanID:         plan.ID,
		EnrollmentDate: enrollment,
		ExpirationDate: enrollment.AddDate(0, plan.DurationMonths, 0),
		Status:         models.StudentStatusActive,
	}
	if req.BirthDate != "" {
		birth, err := time.ParseInLocation(dateLayout, req.BirthDate, time.UTC)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid birth date")
		}
		student.BirthDate = birth
	}

	if err := s.repo.Create(ctx, &student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create student")
	}
	s.invalidateDerived(ctx)

	resp := s.decorate(ctx, student, s.now())
	return &resp, nil
}

// Update replaces the student record. When the plan or enrollment date
// changes, the stored expiration date is re-derived. Other edits leave it
// untouched.
func (s *StudentService) Update(ctx context.Context, id string, req dto.UpdateStudentRequest) (*dto.StudentResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid student payload")
	}

	student, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	exists, err := s.repo.ExistsByCPF(ctx, req.CPF, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check cpf")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "cpf already registered")
	}

	enrollment, err := time.ParseInLocation(dateLayout, req.EnrollmentDate, time.UTC)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid enrollment date")
	}

	planChanged := req.PlanID != student.PlanID
	enrollmentChanged := !enrollment.Equal(student.EnrollmentDate)

	student.Name = req.Name
	student.CPF = req.CPF
	student.Phone = req.Phone
	student.Email = req.Email
	student.Address = req.Address
	student.Status = req.Status
	student.EnrollmentDate = enrollment
	if req.BirthDate != "" {
		birth, err := time.ParseInLocation(dateLayout, req.BirthDate, time.UTC)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, "invalid birth date")
		}
		student.BirthDate = birth
	}

	if planChanged || enrollmentChanged {
		plan, err := s.loadPlan(ctx, req.PlanID)
		if err != nil {
			return nil, err
		}
		student.PlanID = plan.ID
		student.ExpirationDate = enrollment.AddDate(0, plan.DurationMonths, 0)
	}

	if err := s.repo.Update(ctx, student); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update student")
	}
	s.invalidateDerived(ctx)

	resp := s.decorate(ctx, *student, s.now())
	return &resp, nil
}

// Delete removes the student record.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "student not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete student")
	}
	s.invalidateDerived(ctx)
	return nil
}

func (s *StudentService) loadPlan(ctx context.Context, planID string) (*models.Plan, error) {
	plan, err := s.plans.FindByID(ctx, planID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "plan not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load plan")
	}
	return plan, nil
}

func (s *StudentService) decorate(ctx context.Context, student models.Student, now time.Time) dto.StudentResponse {
	resp := dto.StudentResponse{Student: student}
	if plan, err := s.plans.FindByID(ctx, student.PlanID); err == nil {
		resp.PlanName = plan.Name
	} else {
		resp.PlanName = billing.UnknownPlanName
	}
	if c, ok := billing.Classify(student, now); ok {
		days := c.DaysToExpire
		resp.DaysToExpire = &days
		resp.ExpiringSoon = c.ExpiringSoon
	}
	return resp
}

func (s *StudentService) invalidateDerived(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, "dashboard:*"); err != nil {
		s.logger.Warn("failed to invalidate dashboard cache", zap.Error(err))
	}
}
