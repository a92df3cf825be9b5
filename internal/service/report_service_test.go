package service

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/gymtech/backoffice-api/internal/dto"
	"github.com/gymtech/backoffice-api/internal/models"
	appErrors "github.com/gymtech/backoffice-api/pkg/errors"
	"github.com/gymtech/backoffice-api/pkg/jobs"
	"github.com/gymtech/backoffice-api/pkg/storage"
)

type mockReportJobRepo struct {
	jobs map[string]*models.ReportJob
}

func newMockReportJobRepo() *mockReportJobRepo {
	return &mockReportJobRepo{jobs: make(map[string]*models.ReportJob)}
}

func (m *mockReportJobRepo) Create(_ context.Context, job *models.ReportJob) error {
	if job.ID == "" {
		job.ID = "job-1"
	}
	stored := *job
	m.jobs[job.ID] = &stored
	return nil
}

func (m *mockReportJobRepo) GetByID(_ context.Context, id string) (*models.ReportJob, error) {
	if job, ok := m.jobs[id]; ok {
		copied := *job
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockReportJobRepo) Update(_ context.Context, id string, upd models.ReportJobUpdate) error {
	job, ok := m.jobs[id]
	if !ok {
		return sql.ErrNoRows
	}
	if upd.Status != nil {
		job.Status = *upd.Status
	}
	if upd.Progress != nil {
		job.Progress = *upd.Progress
	}
	if upd.ResultURL != nil {
		job.ResultURL = upd.ResultURL
	}
	if upd.FinishedAt != nil {
		job.FinishedAt = upd.FinishedAt
	}
	if upd.ErrorMessage != nil {
		job.ErrorMessage = upd.ErrorMessage
	}
	return nil
}

func (m *mockReportJobRepo) ListQueued(_ context.Context) ([]models.ReportJob, error) {
	var out []models.ReportJob
	for _, job := range m.jobs {
		if job.Status == models.ReportStatusQueued {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (m *mockReportJobRepo) ListFinishedBefore(_ context.Context, cutoff time.Time) ([]models.ReportJob, error) {
	var out []models.ReportJob
	for _, job := range m.jobs {
		if job.Status == models.ReportStatusFinished && job.FinishedAt != nil && job.FinishedAt.Before(cutoff) {
			out = append(out, *job)
		}
	}
	return out, nil
}

func (m *mockReportJobRepo) Delete(_ context.Context, id string) error {
	delete(m.jobs, id)
	return nil
}

type queueStub struct {
	jobs []jobs.Job
	err  error
}

func (q *queueStub) Enqueue(job jobs.Job) error {
	if q.err != nil {
		return q.err
	}
	q.jobs = append(q.jobs, job)
	return nil
}

type reportFixture struct {
	svc    *ReportService
	worker *ReportWorker
	repo   *mockReportJobRepo
	queue  *queueStub
}

func newReportFixture(t *testing.T) reportFixture {
	t.Helper()
	files, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("report-test-secret", time.Hour)
	_, snapshots := dashboardFixture()
	repo := newMockReportJobRepo()
	queue := &queueStub{}

	svc := NewReportService(repo, queue, files, signer, nil, zap.NewNop())
	svc.now = fixedDashboardNow

	worker := NewReportWorker(repo, snapshots, NewExportService(), files, signer, nil, zap.NewNop())
	worker.now = fixedDashboardNow

	return reportFixture{svc: svc, worker: worker, repo: repo, queue: queue}
}

func TestReportServiceGenerateEnqueues(t *testing.T) {
	fx := newReportFixture(t)

	resp, err := fx.svc.Generate(context.Background(), "u1", dto.ReportRequest{
		Type:   models.ReportTypeManagement,
		Format: models.ReportFormatCSV,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusQueued, resp.Status)
	require.Len(t, fx.queue.jobs, 1)
	assert.Equal(t, resp.ID, fx.queue.jobs[0].ID)

	stored, err := fx.repo.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, "u1", stored.CreatedBy)
	assert.Equal(t, models.ReportFormatCSV, stored.Params.Format)
}

func TestReportServiceGenerateRejectsUnknownType(t *testing.T) {
	fx := newReportFixture(t)

	_, err := fx.svc.Generate(context.Background(), "u1", dto.ReportRequest{
		Type:   models.ReportType("bogus"),
		Format: models.ReportFormatCSV,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, fx.queue.jobs)
}

func TestReportServiceGenerateMarksJobFailedWhenQueueRejects(t *testing.T) {
	fx := newReportFixture(t)
	fx.queue.err = errors.New("queue full")

	_, err := fx.svc.Generate(context.Background(), "u1", dto.ReportRequest{
		Type:   models.ReportTypeManagement,
		Format: models.ReportFormatCSV,
	})
	require.Error(t, err)

	stored, err := fx.repo.GetByID(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFailed, stored.Status)
	require.NotNil(t, stored.ErrorMessage)
}

func TestReportWorkerFinishesJobAndServesDownload(t *testing.T) {
	fx := newReportFixture(t)

	resp, err := fx.svc.Generate(context.Background(), "u1", dto.ReportRequest{
		Type:   models.ReportTypeManagement,
		Format: models.ReportFormatCSV,
	})
	require.NoError(t, err)

	require.NoError(t, fx.worker.Handle(context.Background(), fx.queue.jobs[0]))

	status, err := fx.svc.Status(context.Background(), resp.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ReportStatusFinished, status.Status)
	assert.Equal(t, 100, status.Progress)
	require.NotNil(t, status.ResultURL)

	file, contentType, err := fx.svc.Download(context.Background(), *status.ResultURL)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, "text/csv", contentType)

	body, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Contains(t, string(body), "Revenue by Plan")
}

func TestReportWorkerRendersPDF(t *testing.T) {
	fx := newReportFixture(t)

	resp, err := fx.svc.Generate(context.Background(), "u1", dto.ReportRequest{
		Type:   models.ReportTypeExpirations,
		Format: models.ReportFormatPDF,
	})
	require.NoError(t, err)
	require.NoError(t, fx.worker.Handle(context.Background(), fx.queue.jobs[0]))

	status, err := fx.svc.Status(context.Background(), resp.ID)
	require.NoError(t, err)
	require.NotNil(t, status.ResultURL)

	file, contentType, err := fx.svc.Download(context.Background(), *status.ResultURL)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, "application/pdf", contentType)

	header := make([]byte, 4)
	_, err = file.Read(header)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(header), "%PDF"))
}

func TestReportServiceDownloadRejectsTamperedToken(t *testing.T) {
	fx := newReportFixture(t)

	_, _, err := fx.svc.Download(context.Background(), "not-a-valid-token")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestReportServiceRecoverPendingJobsRequeues(t *testing.T) {
	fx := newReportFixture(t)

	job := models.ReportJob{
		Type:   models.ReportTypePayments,
		Status: models.ReportStatusQueued,
		Params: models.ReportJobParams{Format: models.ReportFormatCSV},
	}
	require.NoError(t, fx.repo.Create(context.Background(), &job))

	fx.svc.RecoverPendingJobs(context.Background())
	require.Len(t, fx.queue.jobs, 1)
	assert.Equal(t, job.ID, fx.queue.jobs[0].ID)
}

func TestReportServiceCleanupRemovesStaleJobs(t *testing.T) {
	fx := newReportFixture(t)

	resp, err := fx.svc.Generate(context.Background(), "u1", dto.ReportRequest{
		Type:   models.ReportTypeManagement,
		Format: models.ReportFormatCSV,
	})
	require.NoError(t, err)
	require.NoError(t, fx.worker.Handle(context.Background(), fx.queue.jobs[0]))

	// Advance the clock so the job finished more than a minute ago.
	fx.svc.now = func() time.Time { return fixedDashboardNow().Add(time.Hour) }
	removed, err := fx.svc.Cleanup(context.Background(), time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = fx.repo.GetByID(context.Background(), resp.ID)
	require.Error(t, err)
}
