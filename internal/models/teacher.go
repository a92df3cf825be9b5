package models

import (
	"time"

	"github.com/lib/pq"
)

// TeacherStatus marks whether an instructor is currently on staff.
type TeacherStatus string

const (
	TeacherStatusActive   TeacherStatus = "active"
	TeacherStatusInactive TeacherStatus = "inactive"
)

// Teacher represents an instructor record. A valid teacher carries at least
// one specialty.
type Teacher struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	CPF         string         `db:"cpf" json:"cpf"`
	Phone       string         `db:"phone" json:"phone"`
	Email       string         `db:"email" json:"email"`
	Specialties pq.StringArray `db:"specialties" json:"specialties"`
	Status      TeacherStatus  `db:"status" json:"status"`
	HireDate    time.Time      `db:"hire_date" json:"hire_date"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// TeacherFilter captures filtering options for listing teachers.
type TeacherFilter struct {
	Search    string
	Status    *TeacherStatus
	Specialty string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
