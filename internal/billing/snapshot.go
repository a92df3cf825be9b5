// Package billing derives membership status, payment aggregates, plan revenue
// summaries, and report datasets from a point-in-time snapshot of the member
// records. Every function is pure: the caller supplies the snapshot and the
// current instant, and each call recomputes its result from scratch. Nothing
// here reads the clock, touches storage, or mutates its inputs.
package billing

import (
	"github.com/gymtech/backoffice-api/internal/models"
)

// Snapshot is a read-only copy of the entity collections the derivation layer
// computes over. The surrounding application owns loading; the slices are not
// retained across calls.
type Snapshot struct {
	Students []models.Student
	Plans    []models.Plan
	Payments []models.Payment
	Teachers []models.Teacher
}

// PlanIndex returns a plan lookup keyed by id.
func (s Snapshot) PlanIndex() map[string]models.Plan {
	index := make(map[string]models.Plan, len(s.Plans))
	for _, plan := range s.Plans {
		index[plan.ID] = plan
	}
	return index
}

// StudentIndex returns a student lookup keyed by id.
func (s Snapshot) StudentIndex() map[string]models.Student {
	index := make(map[string]models.Student, len(s.Students))
	for _, student := range s.Students {
		index[student.ID] = student
	}
	return index
}
