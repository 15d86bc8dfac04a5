// Copyright 2025 Arcade Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// JobsSubmittedTotal counts accepted job submissions.
	JobsSubmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artclub_jobs_submitted_total",
			Help: "Total number of batch jobs submitted",
		},
		[]string{"job_type"},
	)

	// JobsFinishedTotal counts jobs reaching a terminal status.
	JobsFinishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artclub_jobs_finished_total",
			Help: "Total number of batch jobs finished by terminal status",
		},
		[]string{"job_type", "status"},
	)

	// JobRetriesTotal counts retry scheduling.
	JobRetriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artclub_job_retries_total",
			Help: "Total number of batch job retries scheduled",
		},
		[]string{"job_type"},
	)

	// JobRunDurationSeconds measures one handler execution.
	JobRunDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "artclub_job_run_duration_seconds",
			Help:    "Duration of batch job handler executions in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~32s
		},
		[]string{"job_type"},
	)

	jobMetricsOnce sync.Once
)

func RegisterJobMetrics(registry prometheus.Registerer) {
	jobMetricsOnce.Do(func() {
		registry.MustRegister(
			JobsSubmittedTotal,
			JobsFinishedTotal,
			JobRetriesTotal,
			JobRunDurationSeconds,
		)
	})
}

func RecordJobSubmitted(jobType string) {
	JobsSubmittedTotal.WithLabelValues(jobType).Inc()
}

func RecordJobFinished(jobType, status string) {
	JobsFinishedTotal.WithLabelValues(jobType, status).Inc()
}

func RecordJobRetry(jobType string) {
	JobRetriesTotal.WithLabelValues(jobType).Inc()
}

func RecordJobRun(jobType string, duration time.Duration) {
	JobRunDurationSeconds.WithLabelValues(jobType).Observe(duration.Seconds())
}

// QueueStats is a point-in-time view of the job queue stores.
type QueueStats struct {
	Pending   int
	Running   int
	RetryWait int
	History   int
}

// QueueStatsSource is implemented by the job queue.
type QueueStatsSource interface {
	Stats() QueueStats
}

// QueueCollector exports queue store sizes on every scrape.
type QueueCollector struct {
	source QueueStatsSource
	desc   *prometheus.Desc
}

func NewQueueCollector(source QueueStatsSource) *QueueCollector {
	return &QueueCollector{
		source: source,
		desc: prometheus.NewDesc(
			"artclub_job_queue_jobs",
			"Number of batch jobs held in each queue store",
			[]string{"store"}, nil,
		),
	}
}

func (c *QueueCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

func (c *QueueCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.source.Stats()
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(s.Pending), "pending")
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(s.Running), "running")
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(s.RetryWait), "retry_wait")
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(s.History), "history")
}
