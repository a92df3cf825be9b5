package billing

import (
	"time"

	"github.com/gymtech/backoffice-api/internal/models"
)

// UnknownPlanName is rendered when a student or payment references a plan id
// absent from the snapshot. Missing references degrade a single row, never
// the whole aggregation.
const UnknownPlanName = "unknown"

// DefaultTopPayers caps the ranked payment table in the management report.
const DefaultTopPayers = 10

// Overview carries the headline counts shown on the dashboard and the report
// cover.
type Overview struct {
	TotalStudents        int   `json:"total_students"`
	ActiveStudents       int   `json:"active_students"`
	ExpiredStudents      int   `json:"expired_students"`
	InactiveStudents     int   `json:"inactive_students"`
	PlanCount            int   `json:"plan_count"`
	ExpiringSoon         int   `json:"expiring_soon"`
	RealizedRevenueCents int64 `json:"realized_revenue_cents"`
	PaidPayments         int   `json:"paid_payments"`
	PendingPayments      int   `json:"pending_payments"`
	OverduePayments      int   `json:"overdue_payments"`
	// SkippedStudents counts records excluded from date-window filters
	// because their expiration date was unset, surfaced for diagnostics.
	SkippedStudents int `json:"skipped_students"`
}

// PlanRow is one line of the plan revenue table. RevenueCents is the
// expected recurring figure; RealizedCents sums paid payments referencing
// the plan. The two are shown side by side.
type PlanRow struct {
	Name           string `json:"name"`
	PriceCents     int64  `json:"price_cents"`
	ActiveStudents int    `json:"active_students"`
	RevenueCents   int64  `json:"revenue_cents"`
	RealizedCents  int64  `json:"realized_cents"`
}

// StudentPaymentRow is one line of the ranked per-student payment table.
type StudentPaymentRow struct {
	StudentName  string `json:"student_name"`
	PaidCents    int64  `json:"paid_cents"`
	PendingCents int64  `json:"pending_cents"`
	OverdueCents int64  `json:"overdue_cents"`
	TotalCents   int64  `json:"total_cents"`
}

// ExpiringRow is one line of the expiring-soon alert table.
type ExpiringRow struct {
	StudentName    string    `json:"student_name"`
	PlanName       string    `json:"plan_name"`
	ExpirationDate time.Time `json:"expiration_date"`
	DaysToExpire   int       `json:"days_to_expire"`
}

// ReportData is the full data contract consumed by the report composer: the
// exact tables and numbers the document needs, with layout left to the
// renderer.
type ReportData struct {
	GeneratedAt time.Time           `json:"generated_at"`
	Overview    Overview            `json:"overview"`
	Plans       []PlanRow           `json:"plans"`
	TopPayers   []StudentPaymentRow `json:"top_payers"`
	Expiring    []ExpiringRow       `json:"expiring"`
}

// BuildOverview derives the headline counts from a snapshot.
func BuildOverview(snap Snapshot, now time.Time) Overview {
	overview := Overview{
		TotalStudents:        len(snap.Students),
		PlanCount:            len(snap.Plans),
		RealizedRevenueCents: RealizedRevenueCents(snap.Payments),
	}
	for _, student := range snap.Students {
		switch student.Status {
		case models.StudentStatusActive:
			overview.ActiveStudents++
		case models.StudentStatusExpired:
			overview.ExpiredStudents++
		case models.StudentStatusInactive:
			overview.InactiveStudents++
		}
	}
	expiring, skipped := SelectExpiringSoon(snap.Students, now, DefaultExpiringWindowDays)
	overview.ExpiringSoon = len(expiring)
	overview.SkippedStudents = skipped

	counts := CountByStatus(snap.Payments)
	overview.PaidPayments = counts.Paid
	overview.PendingPayments = counts.Pending
	overview.OverduePayments = counts.Overdue
	return overview
}

// BuildReportData assembles the complete report dataset from a snapshot.
// topN <= 0 falls back to DefaultTopPayers.
func BuildReportData(snap Snapshot, now time.Time, topN int) ReportData {
	if topN <= 0 {
		topN = DefaultTopPayers
	}
	planIndex := snap.PlanIndex()
	studentIndex := snap.StudentIndex()

	data := ReportData{
		GeneratedAt: now,
		Overview:    BuildOverview(snap, now),
	}

	planRevenue := AggregateByPlan(snap.Payments, snap.Plans, snap.Students)
	for _, summary := range SummarizePlans(snap.Plans, snap.Students) {
		data.Plans = append(data.Plans, PlanRow{
			Name:           summary.Plan.Name,
			PriceCents:     summary.Plan.PriceCents,
			ActiveStudents: summary.ActiveStudents,
			RevenueCents:   summary.RevenueCents,
			RealizedCents:  planRevenue[summary.Plan.ID].RealizedCents,
		})
	}

	summaries := AggregateByStudent(snap.Payments, snap.Students)
	for _, summary := range RankByPaidAmount(summaries, snap.Students, topN) {
		data.TopPayers = append(data.TopPayers, StudentPaymentRow{
			StudentName:  studentIndex[summary.StudentID].Name,
			PaidCents:    summary.PaidCents,
			PendingCents: summary.PendingCents,
			OverdueCents: summary.OverdueCents,
			TotalCents:   summary.TotalCents,
		})
	}

	expiring, _ := SelectExpiringSoon(snap.Students, now, DefaultExpiringWindowDays)
	for _, student := range expiring {
		classification, _ := Classify(student, now)
		planName := UnknownPlanName
		if plan, ok := planIndex[student.PlanID]; ok {
			planName = plan.Name
		}
		data.Expiring = append(data.Expiring, ExpiringRow{
			StudentName:    student.Name,
			PlanName:       planName,
			ExpirationDate: student.ExpirationDate,
			DaysToExpire:   classification.DaysToExpire,
		})
	}
	return data
}
