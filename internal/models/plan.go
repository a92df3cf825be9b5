package models

import "time"

// Plan is a membership plan sold by the gym. Prices are stored as integer
// cents so that billing aggregates stay exact.
type Plan struct {
	ID             string    `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	DurationMonths int       `db:"duration_months" json:"duration_months"`
	PriceCents     int64     `db:"price_cents" json:"price_cents"`
	Description    *string   `db:"description" json:"description,omitempty"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// PlanFilter captures filtering options for listing plans.
type PlanFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
