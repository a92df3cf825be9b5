package dto

import "github.com/gymtech/backoffice-api/internal/models"

// CreateStudentRequest captures POST /students payload. Dates use the
// YYYY-MM-DD form and are parsed at the handler boundary.
type CreateStudentRequest struct {
	Name           string `json:"name" validate:"required,min=2"`
	CPF            string `json:"cpf" validate:"required,len=11,numeric"`
	BirthDate      string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Phone          string `json:"phone" validate:"omitempty"`
	Email          string `json:"email" validate:"required,email"`
	Address        string `json:"address" validate:"omitempty"`
	PlanID         string `json:"plan_id" validate:"required,uuid4"`
	EnrollmentDate string `json:"enrollment_date" validate:"required,datetime=2006-01-02"`
}

// UpdateStudentRequest captures PUT /students/:id payload. Status is settable
// here and nowhere else.
type UpdateStudentRequest struct {
	Name           string               `json:"name" validate:"required,min=2"`
	CPF            string               `json:"cpf" validate:"required,len=11,numeric"`
	BirthDate      string               `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Phone          string               `json:"phone" validate:"omitempty"`
	Email          string               `json:"email" validate:"required,email"`
	Address        string               `json:"address" validate:"omitempty"`
	PlanID         string               `json:"plan_id" validate:"required,uuid4"`
	EnrollmentDate string               `json:"enrollment_date" validate:"required,datetime=2006-01-02"`
	Status         models.StudentStatus `json:"status" validate:"required,oneof=active inactive expired"`
}

// StudentResponse decorates a student with its derived billing state.
type StudentResponse struct {
	models.Student
	PlanName     string `json:"plan_name"`
	DaysToExpire *int   `json:"days_to_expire,omitempty"`
	ExpiringSoon bool   `json:"expiring_soon"`
}
