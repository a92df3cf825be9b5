package service

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymtech/backoffice-api/internal/billing"
	"github.com/gymtech/backoffice-api/internal/models"
)

func sampleReportData() billing.ReportData {
	return billing.ReportData{
		GeneratedAt: time.Date(2024, 1, 20, 12, 0, 0, 0, time.UTC),
		Overview: billing.Overview{
			TotalStudents:        3,
			ActiveStudents:       2,
			ExpiringSoon:         1,
			RealizedRevenueCents: 10000,
			PaidPayments:         1,
			OverduePayments:      1,
		},
		Plans: []billing.PlanRow{
			{Name: "Monthly", PriceCents: 10000, ActiveStudents: 1, RevenueCents: 10000, RealizedCents: 7500},
		},
		TopPayers: []billing.StudentPaymentRow{
			{StudentName: "Ana", PaidCents: 10000, TotalCents: 10000},
		},
		Expiring: []billing.ExpiringRow{
			{StudentName: "Ana", PlanName: "Monthly", ExpirationDate: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), DaysToExpire: 12},
		},
	}
}

func TestExportServiceRenderManagementCSV(t *testing.T) {
	svc := NewExportService()

	payload, contentType, err := svc.Render(models.ReportTypeManagement, models.ReportFormatCSV, sampleReportData())
	require.NoError(t, err)
	assert.Equal(t, "text/csv", contentType)

	body := string(payload)
	assert.Contains(t, body, "Revenue by Plan")
	assert.Contains(t, body, "Expected Revenue")
	assert.Contains(t, body, "Realized Revenue")
	assert.Contains(t, body, "R$ 75,00")
	assert.Contains(t, body, "Payments by Student")
	assert.Contains(t, body, "Expiring Memberships")
	assert.Contains(t, body, "Monthly")
	assert.Contains(t, body, "Ana")
	assert.Contains(t, body, "2024-02-01")
}

func TestExportServiceRenderPaymentsPDF(t *testing.T) {
	svc := NewExportService()

	payload, contentType, err := svc.Render(models.ReportTypePayments, models.ReportFormatPDF, sampleReportData())
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", contentType)
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService()

	_, _, err := svc.Render(models.ReportTypeManagement, models.ReportFormat("xlsx"), sampleReportData())
	require.Error(t, err)
}

func TestFormatBRL(t *testing.T) {
	assert.Equal(t, "R$ 0,00", FormatBRL(0))
	assert.Equal(t, "R$ 80,00", FormatBRL(8000))
	assert.Equal(t, "R$ 1.234,56", FormatBRL(123456))
	assert.Equal(t, "R$ 1.000.000,00", FormatBRL(100000000))
	assert.Equal(t, "-R$ 12,34", FormatBRL(-1234))
}

func TestFileName(t *testing.T) {
	at := time.Date(2024, 1, 20, 12, 30, 45, 0, time.UTC)
	name := FileName(models.ReportTypeManagement, models.ReportFormatPDF, at)
	assert.Equal(t, "management-20240120-123045.pdf", name)
}
