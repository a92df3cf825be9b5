package dto

import "github.com/gymtech/backoffice-api/internal/models"

// ReportRequest captures POST /reports/generate payload.
type ReportRequest struct {
	Type       models.ReportType   `json:"type" validate:"required,oneof=management payments expirations"`
	Format     models.ReportFormat `json:"format" validate:"required,oneof=csv pdf"`
	WindowDays int                 `json:"window_days,omitempty" validate:"omitempty,min=1,max=365"`
	TopN       int                 `json:"top_n,omitempty" validate:"omitempty,min=1,max=100"`
}

// ReportJobResponse is returned after enqueueing a report.
type ReportJobResponse struct {
	ID       string              `json:"id"`
	Status   models.ReportStatus `json:"status"`
	Progress int                 `json:"progress"`
}

// ReportStatusResponse exposes job progress metadata.
type ReportStatusResponse struct {
	ID        string              `json:"id"`
	Status    models.ReportStatus `json:"status"`
	Progress  int                 `json:"progress"`
	ResultURL *string             `json:"result_url,omitempty"`
	Error     *string             `json:"error,omitempty"`
}
