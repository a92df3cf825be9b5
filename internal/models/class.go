package models

import (
	"time"

	"github.com/lib/pq"
)

// ClassStatus tracks the lifecycle of a scheduled class.
type ClassStatus string

const (
	ClassStatusScheduled ClassStatus = "scheduled"
	ClassStatusCompleted ClassStatus = "completed"
	ClassStatusCancelled ClassStatus = "cancelled"
)

// Class is a scheduled group session led by a teacher.
//
// DayOfWeek is a stored column, not a computed getter. ClassService derives
// it from Date on create and recomputes it on every update, so the stored
// label never drifts from the stored date.
type Class struct {
	ID               string         `db:"id" json:"id"`
	Name             string         `db:"name" json:"name"`
	Description      *string        `db:"description" json:"description,omitempty"`
	TeacherID        string         `db:"teacher_id" json:"teacher_id"`
	Date             time.Time      `db:"date" json:"date"`
	StartTime        string         `db:"start_time" json:"start_time"`
	EndTime          string         `db:"end_time" json:"end_time"`
	MaxStudents      int            `db:"max_students" json:"max_students"`
	EnrolledStudents pq.StringArray `db:"enrolled_students" json:"enrolled_students"`
	Status           ClassStatus    `db:"status" json:"status"`
	Type             string         `db:"type" json:"type"`
	Location         string         `db:"location" json:"location"`
	DayOfWeek        string         `db:"day_of_week" json:"day_of_week"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}

// ClassFilter captures filtering options for listing classes.
type ClassFilter struct {
	Search    string
	TeacherID string
	Status    *ClassStatus
	DateFrom  *time.Time
	DateTo    *time.Time
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
