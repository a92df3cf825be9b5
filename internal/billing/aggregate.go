package billing

import (
	"sort"

	"github.com/gymtech/backoffice-api/internal/models"
)

// StudentPaymentSummary accumulates a student's payments bucketed by status.
// TotalCents is the sum of all three buckets regardless of status: it reads
// as "total owed or paid", not "total paid".
type StudentPaymentSummary struct {
	StudentID    string
	PaidCents    int64
	PendingCents int64
	OverdueCents int64
	TotalCents   int64
	Count        int
}

// AggregateByStudent groups payments by student and sums amounts per status
// bucket. Only students present in the snapshot with at least one payment
// appear in the result; payment-less students are excluded, not zero-filled.
// Payments referencing a student id absent from the snapshot are dropped
// silently, matching the missing-reference policy.
func AggregateByStudent(payments []models.Payment, students []models.Student) map[string]StudentPaymentSummary {
	known := make(map[string]struct{}, len(students))
	for _, student := range students {
		known[student.ID] = struct{}{}
	}

	result := make(map[string]StudentPaymentSummary)
	for _, payment := range payments {
		if _, ok := known[payment.StudentID]; !ok {
			continue
		}
		summary := result[payment.StudentID]
		summary.StudentID = payment.StudentID
		switch payment.Status {
		case models.PaymentStatusPaid:
			summary.PaidCents += payment.AmountCents
		case models.PaymentStatusPending:
			summary.PendingCents += payment.AmountCents
		case models.PaymentStatusOverdue:
			summary.OverdueCents += payment.AmountCents
		}
		summary.TotalCents = summary.PaidCents + summary.PendingCents + summary.OverdueCents
		summary.Count++
		result[payment.StudentID] = summary
	}
	return result
}

// RankByPaidAmount orders the aggregated summaries by paid amount descending
// and keeps the first n. The students slice fixes the base order: ties keep
// the snapshot's insertion order, with no secondary key. n <= 0 keeps all.
func RankByPaidAmount(summaries map[string]StudentPaymentSummary, students []models.Student, n int) []StudentPaymentSummary {
	ranked := make([]StudentPaymentSummary, 0, len(summaries))
	for _, student := range students {
		if summary, ok := summaries[student.ID]; ok {
			ranked = append(ranked, summary)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PaidCents > ranked[j].PaidCents
	})
	if n > 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// RealizedRevenueCents sums payments actually marked paid. This is cash
// collected, distinct from the expected recurring revenue in PlanRevenue.
func RealizedRevenueCents(payments []models.Payment) int64 {
	var total int64
	for _, payment := range payments {
		if payment.Status == models.PaymentStatusPaid {
			total += payment.AmountCents
		}
	}
	return total
}

// PaymentStatusCounts tallies payments per status.
type PaymentStatusCounts struct {
	Paid    int
	Pending int
	Overdue int
}

// CountByStatus counts payments in each status bucket.
func CountByStatus(payments []models.Payment) PaymentStatusCounts {
	var counts PaymentStatusCounts
	for _, payment := range payments {
		switch payment.Status {
		case models.PaymentStatusPaid:
			counts.Paid++
		case models.PaymentStatusPending:
			counts.Pending++
		case models.PaymentStatusOverdue:
			counts.Overdue++
		}
	}
	return counts
}

// PlanRevenue separates the two revenue quantities shown for each plan.
type PlanRevenue struct {
	PlanID string
	// ExpectedCents is active-student-count × plan price: recurring revenue
	// if every active member paid, independent of actual payment records.
	ExpectedCents int64
	// RealizedCents sums paid payments referencing the plan.
	RealizedCents int64
}

// AggregateByPlan computes expected and realized revenue per plan. Both
// quantities are exposed separately because the dashboard and the report
// show both. Payments referencing an unknown plan id are dropped.
func AggregateByPlan(payments []models.Payment, plans []models.Plan, students []models.Student) map[string]PlanRevenue {
	activeByPlan := make(map[string]int64, len(plans))
	for _, student := range students {
		if student.Status == models.StudentStatusActive {
			activeByPlan[student.PlanID]++
		}
	}

	result := make(map[string]PlanRevenue, len(plans))
	for _, plan := range plans {
		result[plan.ID] = PlanRevenue{
			PlanID:        plan.ID,
			ExpectedCents: activeByPlan[plan.ID] * plan.PriceCents,
		}
	}
	for _, payment := range payments {
		if payment.Status != models.PaymentStatusPaid {
			continue
		}
		revenue, ok := result[payment.PlanID]
		if !ok {
			continue
		}
		revenue.RealizedCents += payment.AmountCents
		result[payment.PlanID] = revenue
	}
	return result
}
