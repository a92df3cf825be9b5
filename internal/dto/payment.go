package dto

import "github.com/gymtech/backoffice-api/internal/models"

// CreatePaymentRequest captures POST /payments payload. PlanID defaults to
// the student's current plan when omitted.
type CreatePaymentRequest struct {
	StudentID   string                `json:"student_id" validate:"required,uuid4"`
	PlanID      string                `json:"plan_id" validate:"omitempty,uuid4"`
	AmountCents int64                 `json:"amount_cents" validate:"required,min=1"`
	DueDate     string                `json:"due_date" validate:"required,datetime=2006-01-02"`
	Method      *models.PaymentMethod `json:"method,omitempty" validate:"omitempty,oneof=cash card pix transfer"`
}

// SettlePaymentRequest captures POST /payments/:id/settle payload. The
// payment date defaults to today when omitted.
type SettlePaymentRequest struct {
	PaymentDate string                `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	Method      *models.PaymentMethod `json:"method,omitempty" validate:"omitempty,oneof=cash card pix transfer"`
}
