package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/gymtech/backoffice-api/internal/models"
)

const planColumns = "id, name, duration_months, price_cents, description, created_at, updated_at"

// PlanRepository manages persistence for membership plans.
type PlanRepository struct {
	db *sqlx.DB
}

func NewPlanRepository(db *sqlx.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// List returns plans matching the provided filters.
func (r *PlanRepository) List(ctx context.Context, filter models.PlanFilter) ([]models.Plan, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	where := strings.Join(conditions, " AND ")

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s FROM plans WHERE %s ORDER BY name ASC LIMIT %d OFFSET %d",
		planColumns, where, size, offset)

	var plans []models.Plan
	if err := r.db.SelectContext(ctx, &plans, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list plans: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM plans WHERE %s", where)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count plans: %w", err)
	}
	return plans, total, nil
}

// ListAll returns every plan row, for snapshot assembly.
func (r *PlanRepository) ListAll(ctx context.Context) ([]models.Plan, error) {
	query := fmt.Sprintf("SELECT %s FROM plans ORDER BY created_at ASC", planColumns)
	var plans []models.Plan
	if err := r.db.SelectContext(ctx, &plans, query); err != nil {
		return nil, fmt.Errorf("list all plans: %w", err)
	}
	return plans, nil
}

func (r *PlanRepository) FindByID(ctx context.Context, id string) (*models.Plan, error) {
	query := fmt.Sprintf("SELECT %s FROM plans WHERE id = $1", planColumns)
	var plan models.Plan
	if err := r.db.GetContext(ctx, &plan, query, id); err != nil {
		return nil, fmt.Errorf("find plan: %w", err)
	}
	return &plan, nil
}

func (r *PlanRepository) Create(ctx context.Context, plan *models.Plan) error {
	if plan.ID == "" {
		plan.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	plan.CreatedAt = now
	plan.UpdatedAt = now

	const query = `INSERT INTO plans (id, name, duration_months, price_cents, description, created_at, updated_at)
VALUES (:id, :name, :duration_months, :price_cents, :description, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("create plan: %w", err)
	}
	return nil
}

func (r *PlanRepository) Update(ctx context.Context, plan *models.Plan) error {
	plan.UpdatedAt = time.Now().UTC()
	const query = `UPDATE plans SET name = :name, duration_months = :duration_months, price_cents = :price_cents,
description = :description, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, plan); err != nil {
		return fmt.Errorf("update plan: %w", err)
	}
	return nil
}

// CountStudents reports how many students currently reference the plan.
func (r *PlanRepository) CountStudents(ctx context.Context, planID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM students WHERE plan_id = $1", planID); err != nil {
		return 0, fmt.Errorf("count plan students: %w", err)
	}
	return count, nil
}

func (r *PlanRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM plans WHERE id = $1", id); err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	return nil
}
