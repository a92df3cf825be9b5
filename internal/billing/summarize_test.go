package billing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymtech/backoffice-api/internal/models"
)

func TestSummarizePlansCountsAndRevenue(t *testing.T) {
	plans := []models.Plan{{ID: "p1", Name: "Monthly", PriceCents: 10000, DurationMonths: 1}}
	students := []models.Student{
		{ID: "s1", PlanID: "p1", Status: models.StudentStatusActive},
		{ID: "s2", PlanID: "p1", Status: models.StudentStatusActive},
		{ID: "s3", PlanID: "p1", Status: models.StudentStatusActive},
		{ID: "s4", PlanID: "p1", Status: models.StudentStatusExpired},
		{ID: "s5", PlanID: "other", Status: models.StudentStatusActive},
	}

	summaries := SummarizePlans(plans, students)
	require.Len(t, summaries, 1)
	assert.Equal(t, 4, summaries[0].TotalStudents)
	assert.Equal(t, 3, summaries[0].ActiveStudents)
	assert.Equal(t, int64(30000), summaries[0].RevenueCents)
}

func TestSummarizePlansRevenueIgnoresPayments(t *testing.T) {
	// Expected recurring revenue is derived purely from active membership;
	// payment records, overdue or otherwise, never enter the computation.
	plans := []models.Plan{{ID: "p1", PriceCents: 10000, DurationMonths: 1}}
	students := []models.Student{
		{ID: "s1", PlanID: "p1", Status: models.StudentStatusActive},
		{ID: "s2", PlanID: "p1", Status: models.StudentStatusActive},
		{ID: "s3", PlanID: "p1", Status: models.StudentStatusActive},
	}

	summaries := SummarizePlans(plans, students)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(30000), summaries[0].RevenueCents)
}

func TestSummarizePlansPreservesPlanOrder(t *testing.T) {
	plans := []models.Plan{{ID: "p2", Name: "B"}, {ID: "p1", Name: "A"}}

	summaries := SummarizePlans(plans, nil)
	require.Len(t, summaries, 2)
	assert.Equal(t, "B", summaries[0].Plan.Name)
	assert.Equal(t, "A", summaries[1].Plan.Name)
}

func TestPerMonthPrice(t *testing.T) {
	assert.InDelta(t, 40.0, PerMonthPrice(models.Plan{PriceCents: 12000, DurationMonths: 3}), 0.001)
	assert.InDelta(t, 80.0, PerMonthPrice(models.Plan{PriceCents: 8000, DurationMonths: 1}), 0.001)
}

func TestPerMonthPriceZeroDurationSentinel(t *testing.T) {
	assert.True(t, math.IsNaN(PerMonthPrice(models.Plan{PriceCents: 8000})))
}
