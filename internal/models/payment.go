package models

import "time"

// PaymentStatus enumerates the billing states of a payment.
type PaymentStatus string

const (
	PaymentStatusPending PaymentStatus = "pending"
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusOverdue PaymentStatus = "overdue"
)

// PaymentMethod enumerates accepted settlement methods.
type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodPix      PaymentMethod = "pix"
	PaymentMethodTransfer PaymentMethod = "transfer"
)

// Payment is a single charge against a student. AmountCents snapshots the
// plan price at creation time and is independent of later plan edits.
// PaymentDate is set together with the paid status, never on its own.
type Payment struct {
	ID          string         `db:"id" json:"id"`
	StudentID   string         `db:"student_id" json:"student_id"`
	PlanID      string         `db:"plan_id" json:"plan_id"`
	AmountCents int64          `db:"amount_cents" json:"amount_cents"`
	DueDate     time.Time      `db:"due_date" json:"due_date"`
	PaymentDate *time.Time     `db:"payment_date" json:"payment_date,omitempty"`
	Status      PaymentStatus  `db:"status" json:"status"`
	Method      *PaymentMethod `db:"method" json:"method,omitempty"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// PaymentFilter captures filtering options for listing payments.
type PaymentFilter struct {
	StudentID string
	PlanID    string
	Status    *PaymentStatus
	DueFrom   *time.Time
	DueTo     *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
