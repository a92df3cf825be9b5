package service

import (
	"context"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/gymtech/backoffice-api/internal/billing"
	"github.com/gymtech/backoffice-api/internal/dto"
)

const dashboardCacheKey = "dashboard:summary"

// DashboardConfig tunes the derived dashboard computation.
type DashboardConfig struct {
	CacheTTL          time.Duration
	ExpiringWindowDay int
	TopPayers         int
}

// DashboardService assembles the aggregated back-office dashboard from a
// snapshot load plus pure billing computations.
type DashboardService struct {
	snapshots *SnapshotService
	cache     *CacheService
	logger    *zap.Logger
	config    DashboardConfig
	now       func() time.Time
}

// NewDashboardService constructs a DashboardService.
func NewDashboardService(snapshots *SnapshotService, cache *CacheService, logger *zap.Logger, config DashboardConfig) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.ExpiringWindowDay <= 0 {
		config.ExpiringWindowDay = billing.DefaultExpiringWindowDays
	}
	if config.TopPayers <= 0 {
		config.TopPayers = billing.DefaultTopPayers
	}
	return &DashboardService{snapshots: snapshots, cache: cache, logger: logger, config: config, now: time.Now}
}

// Summary returns the dashboard payload. The second return value reports
// whether the response was served from cache.
func (s *DashboardService) Summary(ctx context.Context) (*dto.DashboardResponse, bool, error) {
	if s.cache != nil {
		var cached dto.DashboardResponse
		if hit, err := s.cache.Get(ctx, dashboardCacheKey, &cached); err == nil && hit {
			return &cached, true, nil
		}
	}

	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, false, err
	}

	now := s.now()
	resp := s.build(snap, now)

	if s.cache != nil {
		if err := s.cache.Set(ctx, dashboardCacheKey, resp, s.config.CacheTTL); err != nil {
			s.logger.Warn("failed to cache dashboard summary", zap.Error(err))
		}
	}
	return resp, false, nil
}

// TopPayers returns the top settled payers outside the full dashboard.
func (s *DashboardService) TopPayers(ctx context.Context, n int) ([]dto.TopPayerEntry, error) {
	if n <= 0 {
		n = s.config.TopPayers
	}
	snap, err := s.snapshots.Load(ctx)
	if err != nil {
		return nil, err
	}

	summaries := billing.AggregateByStudent(snap.Payments, snap.Students)
	ranked := billing.RankByPaidAmount(summaries, snap.Students, n)
	students := snap.StudentIndex()

	entries := make([]dto.TopPayerEntry, 0, len(ranked))
	for _, summary := range ranked {
		entry := dto.TopPayerEntry{
			StudentID:    summary.StudentID,
			PaidCents:    summary.PaidCents,
			PendingCents: summary.PendingCents,
			OverdueCents: summary.OverdueCents,
			TotalCents:   summary.TotalCents,
		}
		if student, ok := students[summary.StudentID]; ok {
			entry.Name = student.Name
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *DashboardService) build(snap billing.Snapshot, now time.Time) *dto.DashboardResponse {
	overview := billing.BuildOverview(snap, now)
	planSummaries := billing.SummarizePlans(snap.Plans, snap.Students)
	planRevenue := billing.AggregateByPlan(snap.Payments, snap.Plans, snap.Students)
	expiring, _ := billing.SelectExpiringSoon(snap.Students, now, s.config.ExpiringWindowDay)
	plans := snap.PlanIndex()

	planEntries := make([]dto.PlanSummaryEntry, 0, len(planSummaries))
	for _, summary := range planSummaries {
		entry := dto.PlanSummaryEntry{
			PlanID:         summary.Plan.ID,
			Name:           summary.Plan.Name,
			PriceCents:     summary.Plan.PriceCents,
			DurationMonths: summary.Plan.DurationMonths,
			TotalStudents:  summary.TotalStudents,
			ActiveStudents: summary.ActiveStudents,
			RevenueCents:   summary.RevenueCents,
			RealizedCents:  planRevenue[summary.Plan.ID].RealizedCents,
		}
		// Omit the per-month price when the duration is zero; NaN does
		// not survive JSON encoding.
		if perMonth := billing.PerMonthPrice(summary.Plan); !math.IsNaN(perMonth) {
			entry.PerMonthPrice = &perMonth
		}
		planEntries = append(planEntries, entry)
	}

	expiringEntries := make([]dto.ExpiringEntry, 0, len(expiring))
	for _, student := range expiring {
		entry := dto.ExpiringEntry{
			StudentID:      student.ID,
			Name:           student.Name,
			PlanName:       billing.UnknownPlanName,
			ExpirationDate: student.ExpirationDate,
		}
		if plan, ok := plans[student.PlanID]; ok {
			entry.PlanName = plan.Name
		}
		if c, ok := billing.Classify(student, now); ok {
			entry.DaysToExpire = c.DaysToExpire
		}
		expiringEntries = append(expiringEntries, entry)
	}

	return &dto.DashboardResponse{
		GeneratedAt: now.UTC(),
		Overview:    overview,
		Plans:       planEntries,
		Expiring:    expiringEntries,
	}
}
