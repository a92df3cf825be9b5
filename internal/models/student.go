package models

import "time"

// StudentStatus is the lifecycle label attached to a student record.
type StudentStatus string

const (
	StudentStatusActive   StudentStatus = "active"
	StudentStatusInactive StudentStatus = "inactive"
	StudentStatusExpired  StudentStatus = "expired"
)

// Student represents a gym member enrolled on a plan.
//
// ExpirationDate is a stored column derived from EnrollmentDate plus the plan
// duration. It is recomputed by StudentService whenever the enrollment date or
// plan changes and is treated as the authoritative date for days-remaining
// arithmetic. Status is an independently settable label and is never corrected
// by derived computations.
type Student struct {
	ID             string        `db:"id" json:"id"`
	Name           string        `db:"name" json:"name"`
	CPF            string        `db:"cpf" json:"cpf"`
	BirthDate      time.Time     `db:"birth_date" json:"birth_date"`
	Phone          string        `db:"phone" json:"phone"`
	Email          string        `db:"email" json:"email"`
	Address        string        `db:"address" json:"address"`
	PlanID         string        `db:"plan_id" json:"plan_id"`
	EnrollmentDate time.Time     `db:"enrollment_date" json:"enrollment_date"`
	ExpirationDate time.Time     `db:"expiration_date" json:"expiration_date"`
	Status         StudentStatus `db:"status" json:"status"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time     `db:"updated_at" json:"updated_at"`
}

// StudentFilter captures allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	Status    *StudentStatus
	PlanID    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
