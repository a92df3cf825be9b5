package dto

import "github.com/gymtech/backoffice-api/internal/models"

// CreateTeacherRequest captures POST /teachers payload.
type CreateTeacherRequest struct {
	Name        string   `json:"name" validate:"required,min=2"`
	CPF         string   `json:"cpf" validate:"required,len=11,numeric"`
	Phone       string   `json:"phone" validate:"omitempty"`
	Email       string   `json:"email" validate:"required,email"`
	Specialties []string `json:"specialties" validate:"required,min=1,dive,min=2"`
	HireDate    string   `json:"hire_date" validate:"required,datetime=2006-01-02"`
}

// UpdateTeacherRequest captures PUT /teachers/:id payload.
type UpdateTeacherRequest struct {
	Name        string               `json:"name" validate:"required,min=2"`
	CPF         string               `json:"cpf" validate:"required,len=11,numeric"`
	Phone       string               `json:"phone" validate:"omitempty"`
	Email       string               `json:"email" validate:"required,email"`
	Specialties []string             `json:"specialties" validate:"required,min=1,dive,min=2"`
	Status      models.TeacherStatus `json:"status" validate:"required,oneof=active inactive"`
	HireDate    string               `json:"hire_date" validate:"required,datetime=2006-01-02"`
}
