package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/gymtech/backoffice-api/internal/billing"
	"github.com/gymtech/backoffice-api/internal/models"
	"github.com/gymtech/backoffice-api/pkg/export"
	appErrors "github.com/gymtech/backoffice-api/pkg/errors"
)

// ExportService composes report documents from derived billing data and
// renders them to CSV or PDF bytes.
type ExportService struct {
	csv *export.CSVExporter
	pdf *export.PDFExporter
}

// NewExportService constructs an ExportService.
func NewExportService() *ExportService {
	return &ExportService{csv: export.NewCSVExporter(), pdf: export.NewPDFExporter()}
}

// Render produces the report file for the given type and format.
func (s *ExportService) Render(reportType models.ReportType, format models.ReportFormat, data billing.ReportData) ([]byte, string, error) {
	sections, stats, title := s.compose(reportType, data)

	switch format {
	case models.ReportFormatCSV:
		payload, err := s.csv.RenderSections(sections)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return payload, "text/csv", nil
	case models.ReportFormatPDF:
		doc := export.Document{
			Title:    title,
			Subtitle: fmt.Sprintf("Generated %s", data.GeneratedAt.UTC().Format("2006-01-02 15:04 MST")),
			Footer:   "GymTech Back Office",
			Stats:    stats,
			Sections: sections,
		}
		payload, err := s.pdf.RenderDocument(doc)
		if err != nil {
			return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return payload, "application/pdf", nil
	default:
		return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}
}

func (s *ExportService) compose(reportType models.ReportType, data billing.ReportData) ([]export.Section, []export.Stat, string) {
	switch reportType {
	case models.ReportTypePayments:
		return []export.Section{s.paymentsSection(data)}, s.paymentStats(data), "Payments Report"
	case models.ReportTypeExpirations:
		return []export.Section{s.expiringSection(data)}, s.expirationStats(data), "Expiring Memberships Report"
	default:
		sections := []export.Section{
			s.plansSection(data),
			s.paymentsSection(data),
			s.expiringSection(data),
		}
		return sections, s.overviewStats(data), "Management Report"
	}
}

func (s *ExportService) overviewStats(data billing.ReportData) []export.Stat {
	o := data.Overview
	return []export.Stat{
		{Label: "Total Students", Value: fmt.Sprintf("%d", o.TotalStudents)},
		{Label: "Active Students", Value: fmt.Sprintf("%d", o.ActiveStudents)},
		{Label: "Expiring Soon", Value: fmt.Sprintf("%d", o.ExpiringSoon)},
		{Label: "Realized Revenue", Value: FormatBRL(o.RealizedRevenueCents)},
	}
}

func (s *ExportService) paymentStats(data billing.ReportData) []export.Stat {
	o := data.Overview
	return []export.Stat{
		{Label: "Paid", Value: fmt.Sprintf("%d", o.PaidPayments)},
		{Label: "Pending", Value: fmt.Sprintf("%d", o.PendingPayments)},
		{Label: "Overdue", Value: fmt.Sprintf("%d", o.OverduePayments)},
		{Label: "Realized Revenue", Value: FormatBRL(o.RealizedRevenueCents)},
	}
}

func (s *ExportService) expirationStats(data billing.ReportData) []export.Stat {
	o := data.Overview
	return []export.Stat{
		{Label: "Active Students", Value: fmt.Sprintf("%d", o.ActiveStudents)},
		{Label: "Expiring Soon", Value: fmt.Sprintf("%d", o.ExpiringSoon)},
		{Label: "Skipped Records", Value: fmt.Sprintf("%d", o.SkippedStudents)},
	}
}

func (s *ExportService) plansSection(data billing.ReportData) export.Section {
	rows := make([]map[string]string, 0, len(data.Plans))
	for _, plan := range data.Plans {
		rows = append(rows, map[string]string{
			"Plan":             plan.Name,
			"Price":            FormatBRL(plan.PriceCents),
			"Active Students":  fmt.Sprintf("%d", plan.ActiveStudents),
			"Expected Revenue": FormatBRL(plan.RevenueCents),
			"Realized Revenue": FormatBRL(plan.RealizedCents),
		})
	}
	return export.Section{
		Title:     "Revenue by Plan",
		Data:      export.Dataset{Headers: []string{"Plan", "Price", "Active Students", "Expected Revenue", "Realized Revenue"}, Rows: rows},
		EmptyNote: "No plans registered.",
	}
}

func (s *ExportService) paymentsSection(data billing.ReportData) export.Section {
	rows := make([]map[string]string, 0, len(data.TopPayers))
	for _, payer := range data.TopPayers {
		rows = append(rows, map[string]string{
			"Student": payer.StudentName,
			"Paid":    FormatBRL(payer.PaidCents),
			"Pending": FormatBRL(payer.PendingCents),
			"Overdue": FormatBRL(payer.OverdueCents),
			"Total":   FormatBRL(payer.TotalCents),
		})
	}
	return export.Section{
		Title:     "Payments by Student",
		Data:      export.Dataset{Headers: []string{"Student", "Paid", "Pending", "Overdue", "Total"}, Rows: rows},
		EmptyNote: "No payments recorded.",
	}
}

func (s *ExportService) expiringSection(data billing.ReportData) export.Section {
	rows := make([]map[string]string, 0, len(data.Expiring))
	for _, row := range data.Expiring {
		rows = append(rows, map[string]string{
			"Student":    row.StudentName,
			"Plan":       row.PlanName,
			"Expires On": row.ExpirationDate.Format("2006-01-02"),
			"Days Left":  fmt.Sprintf("%d", row.DaysToExpire),
		})
	}
	return export.Section{
		Title:     "Expiring Memberships",
		Data:      export.Dataset{Headers: []string{"Student", "Plan", "Expires On", "Days Left"}, Rows: rows},
		EmptyNote: "No memberships expiring in the alert window.",
	}
}

// FormatBRL renders integer cents as a Brazilian currency string with a
// comma decimal separator and dot thousand grouping.
func FormatBRL(cents int64) string {
	negative := cents < 0
	if negative {
		cents = -cents
	}
	whole := cents / 100
	frac := cents % 100

	digits := fmt.Sprintf("%d", whole)
	var grouped strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(d)
	}

	sign := ""
	if negative {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%02d", sign, grouped.String(), frac)
}

// FileName builds the canonical report file name.
func FileName(reportType models.ReportType, format models.ReportFormat, at time.Time) string {
	return fmt.Sprintf("%s-%s.%s", reportType, at.UTC().Format("20060102-150405"), format)
}
