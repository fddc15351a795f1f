package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/vendorkyc-backend/pkg/logger"
)

const defaultReviewSLA = 72 * time.Hour

type pendingCounter interface {
	CountPendingSubmittedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type backlogGauge interface {
	SetReviewBacklog(count int64)
}

type ReviewBacklogJobParams struct {
	Logger     *logger.Logger
	Repository pendingCounter
	Gauge      backlogGauge
	SLA        time.Duration
	Clock      func() time.Time
}

// reviewBacklogJob publishes how many Pending applications have waited longer
// than the review SLA and warns when any have.
type reviewBacklogJob struct {
	logg  *logger.Logger
	repo  pendingCounter
	gauge backlogGauge
	sla   time.Duration
	now   func() time.Time
}

func NewReviewBacklogJob(params ReviewBacklogJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Repository == nil {
		return nil, fmt.Errorf("vendor repository required")
	}
	sla := params.SLA
	if sla <= 0 {
		sla = defaultReviewSLA
	}
	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}
	return &reviewBacklogJob{
		logg:  params.Logger,
		repo:  params.Repository,
		gauge: params.Gauge,
		sla:   sla,
		now:   clock,
	}, nil
}

func (j *reviewBacklogJob) Name() string { return "review-backlog" }

func (j *reviewBacklogJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.sla)
	overdue, err := j.repo.CountPendingSubmittedBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("count overdue applications: %w", err)
	}
	if j.gauge != nil {
		j.gauge.SetReviewBacklog(overdue)
	}

	logCtx := j.logg.WithFields(ctx, map[string]any{
		"sla_hours": j.sla.Hours(),
		"overdue":   overdue,
	})
	if overdue > 0 {
		j.logg.Warn(logCtx, "cron.review_backlog_overdue")
		return nil
	}
	j.logg.Info(logCtx, "cron.review_backlog_clear")
	return nil
}
