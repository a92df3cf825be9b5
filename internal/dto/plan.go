package dto

// CreatePlanRequest captures POST /plans payload. Price is integer cents.
type CreatePlanRequest struct {
	Name           string  `json:"name" validate:"required,min=2"`
	DurationMonths int     `json:"duration_months" validate:"required,min=1,max=36"`
	PriceCents     int64   `json:"price_cents" validate:"required,min=0"`
	Description    *string `json:"description,omitempty"`
}

// UpdatePlanRequest captures PUT /plans/:id payload.
type UpdatePlanRequest struct {
	Name           string  `json:"name" validate:"required,min=2"`
	DurationMonths int     `json:"duration_months" validate:"required,min=1,max=36"`
	PriceCents     int64   `json:"price_cents" validate:"required,min=0"`
	Description    *string `json:"description,omitempty"`
}
