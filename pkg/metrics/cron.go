package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CronJobMetrics records outcomes of the housekeeping jobs.
type CronJobMetrics struct {
	duration      *prometheus.HistogramVec
	runs          *prometheus.CounterVec
	reviewBacklog prometheus.Gauge
}

func NewCronJobMetrics(reg prometheus.Registerer) *CronJobMetrics {
	if reg == nil {
		return &CronJobMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "cron_job_duration_seconds",
		Help:      "Duration of cron jobs in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"job"})
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cron_job_runs_total",
		Help:      "Cron job executions by outcome.",
	}, []string{"job", "outcome"})
	backlog := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "vendor_review_overdue",
		Help:      "Pending applications older than the review SLA.",
	})
	reg.MustRegister(duration, runs, backlog)
	return &CronJobMetrics{duration: duration, runs: runs, reviewBacklog: backlog}
}

func (c *CronJobMetrics) ObserveRun(job string, duration time.Duration, err error) {
	if c == nil || c.duration == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	c.duration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
	c.runs.WithLabelValues(normalizeLabel(job), outcome).Inc()
}

func (c *CronJobMetrics) SetReviewBacklog(count int64) {
	if c == nil || c.reviewBacklog == nil {
		return
	}
	c.reviewBacklog.Set(float64(count))
}
