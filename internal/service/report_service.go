package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/gymtech/backoffice-api/internal/billing"
	"github.com/gymtech/backoffice-api/internal/dto"
	"github.com/gymtech/backoffice-api/internal/models"
	appErrors "github.com/gymtech/backoffice-api/pkg/errors"
	"github.com/gymtech/backoffice-api/pkg/jobs"
	"github.com/gymtech/backoffice-api/pkg/storage"
)

type reportJobRepository interface {
	Create(ctx context.Context, job *models.ReportJob) error
	GetByID(ctx context.Context, id string) (*models.ReportJob, error)
	Update(ctx context.Context, id string, upd models.ReportJobUpdate) error
	ListQueued(ctx context.Context) ([]models.ReportJob, error)
	ListFinishedBefore(ctx context.Context, cutoff time.Time) ([]models.ReportJob, error)
	Delete(ctx context.Context, id string) error
}

type jobDispatcher interface {
	Enqueue(job jobs.Job) error
}

// ReportService manages the asynchronous report job lifecycle: it persists
// job records, dispatches work to the queue, and resolves signed downloads.
// Rendering itself happens in ReportWorker.
type ReportService struct {
	repo      reportJobRepository
	queue     jobDispatcher
	files     *storage.LocalStorage
	signer    *storage.SignedURLSigner
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportService constructs a ReportService.
func NewReportService(repo reportJobRepository, queue jobDispatcher, files *storage.LocalStorage, signer *storage.SignedURLSigner, validate *validator.Validate, logger *zap.Logger) *ReportService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		repo:      repo,
		queue:     queue,
		files:     files,
		signer:    signer,
		validator: validate,
		logger:    logger,
		now:       time.Now,
	}
}

// Generate validates the request, persists a QUEUED job and dispatches it.
func (s *ReportService) Generate(ctx context.Context, userID string, req dto.ReportRequest) (*dto.ReportJobResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report request")
	}

	job := models.ReportJob{
		Type:   req.Type,
		Status: models.ReportStatusQueued,
		Params: models.ReportJobParams{
			Format:     req.Format,
			WindowDays: req.WindowDays,
			TopN:       req.TopN,
		},
		CreatedBy: userID,
	}
	if err := s.repo.Create(ctx, &job); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to persist report job")
	}

	if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type), Payload: job.ID}); err != nil {
		failed := models.ReportStatusFailed
		message := "failed to enqueue job"
		finishedAt := s.now().UTC()
		if updateErr := s.repo.Update(ctx, job.ID, models.ReportJobUpdate{
			Status:       &failed,
			FinishedAt:   &finishedAt,
			ErrorMessage: &message,
		}); updateErr != nil {
			s.logger.Warn("failed to mark report job failed", zap.String("job_id", job.ID), zap.Error(updateErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to enqueue report job")
	}

	return &dto.ReportJobResponse{ID: job.ID, Status: job.Status, Progress: job.Progress}, nil
}

// Status reports the lifecycle state of a job.
func (s *ReportService) Status(ctx context.Context, id string) (*dto.ReportStatusResponse, error) {
	job, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	return &dto.ReportStatusResponse{
		ID:        job.ID,
		Status:    job.Status,
		Progress:  job.Progress,
		ResultURL: job.ResultURL,
		Error:     job.ErrorMessage,
	}, nil
}

// Download resolves a signed token into the stored report file.
func (s *ReportService) Download(ctx context.Context, token string) (*os.File, string, error) {
	jobID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Clone(appErrors.ErrUnauthorized, "download link is invalid or expired")
	}
	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, "", appErrors.Clone(appErrors.ErrNotFound, "report job not found")
		}
		return nil, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load report job")
	}
	if job.Status != models.ReportStatusFinished {
		return nil, "", appErrors.Clone(appErrors.ErrConflict, "report is not ready")
	}

	file, err := s.files.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "report file no longer available")
	}
	contentType := "text/csv"
	if job.Params.Format == models.ReportFormatPDF {
		contentType = "application/pdf"
	}
	return file, contentType, nil
}

// RecoverPendingJobs replays queued jobs after a process restart.
func (s *ReportService) RecoverPendingJobs(ctx context.Context) {
	pending, err := s.repo.ListQueued(ctx)
	if err != nil {
		s.logger.Warn("failed to recover queued report jobs", zap.Error(err))
		return
	}
	for _, job := range pending {
		if err := s.queue.Enqueue(jobs.Job{ID: job.ID, Type: string(job.Type), Payload: job.ID}); err != nil {
			s.logger.Warn("failed to requeue report job", zap.String("job_id", job.ID), zap.Error(err))
		}
	}
	if len(pending) > 0 {
		s.logger.Info("recovered queued report jobs", zap.Int("count", len(pending)))
	}
}

// Cleanup deletes finished report files and rows older than the retention
// cutoff. Returns the number of jobs removed.
func (s *ReportService) Cleanup(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := s.now().UTC().Add(-retention)
	stale, err := s.repo.ListFinishedBefore(ctx, cutoff)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list stale report jobs")
	}

	removed := 0
	for _, job := range stale {
		if job.ResultURL != nil {
			if _, relPath, _, err := s.signer.Parse(*job.ResultURL, true); err == nil {
				if err := s.files.Delete(relPath); err != nil {
					s.logger.Warn("failed to delete report file", zap.String("job_id", job.ID), zap.Error(err))
				}
			}
		}
		if err := s.repo.Delete(ctx, job.ID); err != nil {
			s.logger.Warn("failed to delete report job", zap.String("job_id", job.ID), zap.Error(err))
			continue
		}
		removed++
	}
	return removed, nil
}

// ReportWorker bridges queue jobs to snapshot loading and rendering.
type ReportWorker struct {
	repo      reportJobRepository
	snapshots *SnapshotService
	exporter  *ExportService
	files     *storage.LocalStorage
	signer    *storage.SignedURLSigner
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time
}

// NewReportWorker constructs a ReportWorker.
func NewReportWorker(repo reportJobRepository, snapshots *SnapshotService, exporter *ExportService, files *storage.LocalStorage, signer *storage.SignedURLSigner, metrics *MetricsService, logger *zap.Logger) *ReportWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportWorker{
		repo:      repo,
		snapshots: snapshots,
		exporter:  exporter,
		files:     files,
		signer:    signer,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Handle processes one queued report job.
func (w *ReportWorker) Handle(ctx context.Context, queued jobs.Job) error {
	jobID, ok := queued.Payload.(string)
	if !ok {
		jobID = queued.ID
	}
	if jobID == "" {
		return fmt.Errorf("report job without id")
	}

	job, err := w.repo.GetByID(ctx, jobID)
	if err != nil {
		return fmt.Errorf("load report job %s: %w", jobID, err)
	}
	if job.Status == models.ReportStatusFinished {
		return nil
	}

	w.update(ctx, job.ID, models.ReportJobUpdate{
		Status:   statusPtr(models.ReportStatusProcessing),
		Progress: intPtr(10),
	})

	snap, err := w.snapshots.Load(ctx)
	if err != nil {
		w.fail(ctx, job, "failed to load data")
		return err
	}
	w.update(ctx, job.ID, models.ReportJobUpdate{Progress: intPtr(40)})

	now := w.now()
	data := w.buildData(snap, now, job.Params)

	payload, _, err := w.exporter.Render(job.Type, job.Params.Format, data)
	if err != nil {
		w.fail(ctx, job, "failed to render report")
		return err
	}
	w.update(ctx, job.ID, models.ReportJobUpdate{Progress: intPtr(80)})

	relPath, err := w.files.Save(FileName(job.Type, job.Params.Format, now), payload)
	if err != nil {
		w.fail(ctx, job, "failed to store report file")
		return err
	}

	token, _, err := w.signer.Generate(job.ID, relPath)
	if err != nil {
		w.fail(ctx, job, "failed to sign download url")
		return err
	}

	finishedAt := w.now().UTC()
	w.update(ctx, job.ID, models.ReportJobUpdate{
		Status:     statusPtr(models.ReportStatusFinished),
		Progress:   intPtr(100),
		ResultURL:  &token,
		FinishedAt: &finishedAt,
	})
	if w.metrics != nil {
		w.metrics.RecordReportJob(job.Type, models.ReportStatusFinished)
	}
	w.logger.Info("report job finished",
		zap.String("job_id", job.ID),
		zap.String("type", string(job.Type)),
		zap.String("format", string(job.Params.Format)))
	return nil
}

// buildData assembles the report data contract, honouring a non-default
// expiring window override.
func (w *ReportWorker) buildData(snap billing.Snapshot, now time.Time, params models.ReportJobParams) billing.ReportData {
	topN := params.TopN
	if topN <= 0 {
		topN = billing.DefaultTopPayers
	}
	data := billing.BuildReportData(snap, now, topN)
	if params.WindowDays <= 0 || params.WindowDays == billing.DefaultExpiringWindowDays {
		return data
	}

	expiring, skipped := billing.SelectExpiringSoon(snap.Students, now, params.WindowDays)
	plans := snap.PlanIndex()
	data.Expiring = data.Expiring[:0]
	for _, student := range expiring {
		row := billing.ExpiringRow{
			StudentName:    student.Name,
			PlanName:       billing.UnknownPlanName,
			ExpirationDate: student.ExpirationDate,
		}
		if plan, found := plans[student.PlanID]; found {
			row.PlanName = plan.Name
		}
		if c, found := billing.Classify(student, now); found {
			row.DaysToExpire = c.DaysToExpire
		}
		data.Expiring = append(data.Expiring, row)
	}
	data.Overview.ExpiringSoon = len(expiring)
	data.Overview.SkippedStudents = skipped
	return data
}

func (w *ReportWorker) fail(ctx context.Context, job *models.ReportJob, message string) {
	finishedAt := w.now().UTC()
	w.update(ctx, job.ID, models.ReportJobUpdate{
		Status:       statusPtr(models.ReportStatusFailed),
		FinishedAt:   &finishedAt,
		ErrorMessage: &message,
	})
	if w.metrics != nil {
		w.metrics.RecordReportJob(job.Type, models.ReportStatusFailed)
	}
}

func (w *ReportWorker) update(ctx context.Context, jobID string, upd models.ReportJobUpdate) {
	if err := w.repo.Update(ctx, jobID, upd); err != nil {
		w.logger.Warn("failed to update report job", zap.String("job_id", jobID), zap.Error(err))
	}
}

func statusPtr(s models.ReportStatus) *models.ReportStatus { return &s }

func intPtr(n int) *int { return &n }
