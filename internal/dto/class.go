package dto

import "github.com/gymtech/backoffice-api/internal/models"

// CreateClassRequest captures POST /classes payload. The weekday label is
// derived from Date server side.
type CreateClassRequest struct {
	Name        string  `json:"name" validate:"required,min=2"`
	Description *string `json:"description,omitempty"`
	TeacherID   string  `json:"teacher_id" validate:"required,uuid4"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime   string  `json:"start_time" validate:"required,datetime=15:04"`
	EndTime     string  `json:"end_time" validate:"required,datetime=15:04"`
	MaxStudents int     `json:"max_students" validate:"required,min=1"`
	Type        string  `json:"type" validate:"required"`
	Location    string  `json:"location" validate:"required"`
}

// UpdateClassRequest captures PUT /classes/:id payload.
type UpdateClassRequest struct {
	Name        string             `json:"name" validate:"required,min=2"`
	Description *string            `json:"description,omitempty"`
	TeacherID   string             `json:"teacher_id" validate:"required,uuid4"`
	Date        string             `json:"date" validate:"required,datetime=2006-01-02"`
	StartTime   string             `json:"start_time" validate:"required,datetime=15:04"`
	EndTime     string             `json:"end_time" validate:"required,datetime=15:04"`
	MaxStudents int                `json:"max_students" validate:"required,min=1"`
	Status      models.ClassStatus `json:"status" validate:"required,oneof=scheduled completed cancelled"`
	Type        string             `json:"type" validate:"required"`
	Location    string             `json:"location" validate:"required"`
}

// EnrollRequest captures POST /classes/:id/enroll payload.
type EnrollRequest struct {
	StudentID string `json:"student_id" validate:"required,uuid4"`
}
