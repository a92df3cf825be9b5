package dto

import (
	"time"

	"github.com/gymtech/backoffice-api/internal/billing"
)

// DashboardResponse is the aggregated back-office dashboard payload.
type DashboardResponse struct {
	GeneratedAt time.Time          `json:"generated_at"`
	Overview    billing.Overview   `json:"overview"`
	Plans       []PlanSummaryEntry `json:"plans"`
	Expiring    []ExpiringEntry    `json:"expiring"`
}

// PlanSummaryEntry is the per-plan occupancy and revenue row.
type PlanSummaryEntry struct {
	PlanID         string   `json:"plan_id"`
	Name           string   `json:"name"`
	PriceCents     int64    `json:"price_cents"`
	DurationMonths int      `json:"duration_months"`
	PerMonthPrice  *float64 `json:"per_month_price,omitempty"`
	TotalStudents  int      `json:"total_students"`
	ActiveStudents int      `json:"active_students"`
	RevenueCents   int64    `json:"revenue_cents"`
	RealizedCents  int64    `json:"realized_cents"`
}

// ExpiringEntry is a student whose membership lapses inside the alert window.
type ExpiringEntry struct {
	StudentID      string    `json:"student_id"`
	Name           string    `json:"name"`
	PlanName       string    `json:"plan_name"`
	ExpirationDate time.Time `json:"expiration_date"`
	DaysToExpire   int       `json:"days_to_expire"`
}

// TopPayerEntry ranks a student by settled amount.
type TopPayerEntry struct {
	StudentID    string `json:"student_id"`
	Name         string `json:"name"`
	PaidCents    int64  `json:"paid_cents"`
	PendingCents int64  `json:"pending_cents"`
	OverdueCents int64  `json:"overdue_cents"`
	TotalCents   int64  `json:"total_cents"`
}
