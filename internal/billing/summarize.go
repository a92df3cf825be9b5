package billing

import (
	"math"

	"github.com/gymtech/backoffice-api/internal/models"
)

// PlanSummary combines a plan definition with its member counts and the
// expected recurring revenue derived from them.
type PlanSummary struct {
	Plan models.Plan
	// TotalStudents counts students referencing this plan regardless of status.
	TotalStudents int
	// ActiveStudents counts only status == active.
	ActiveStudents int
	// RevenueCents is ActiveStudents × plan price: expected recurring
	// revenue, not cash collected.
	RevenueCents int64
}

// SummarizePlans derives per-plan occupancy and expected revenue. Output
// order follows the plans slice.
func SummarizePlans(plans []models.Plan, students []models.Student) []PlanSummary {
	summaries := make([]PlanSummary, 0, len(plans))
	for _, plan := range plans {
		summary := PlanSummary{Plan: plan}
		for _, student := range students {
			if student.PlanID != plan.ID {
				continue
			}
			summary.TotalStudents++
			if student.Status == models.StudentStatusActive {
				summary.ActiveStudents++
			}
		}
		summary.RevenueCents = int64(summary.ActiveStudents) * plan.PriceCents
		summaries = append(summaries, summary)
	}
	return summaries
}

// PerMonthPrice returns the display price per month in currency units. The
// data model guarantees duration >= 1; a zero duration yields NaN rather
// than a panic so one malformed plan cannot take down a whole render.
func PerMonthPrice(plan models.Plan) float64 {
	if plan.DurationMonths == 0 {
		return math.NaN()
	}
	return float64(plan.PriceCents) / 100 / float64(plan.DurationMonths)
}
