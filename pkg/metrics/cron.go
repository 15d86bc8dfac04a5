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

// Scheduled task metrics, labelled by task name.
var (
	CronJobRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artclub_scheduled_task_runs_total",
			Help: "Number of scheduled task runs",
		},
		[]string{"task"},
	)

	CronJobRunDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "artclub_scheduled_task_duration_seconds",
			Help:    "Duration of scheduled task runs in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		},
		[]string{"task"},
	)

	CronJobItemsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artclub_scheduled_task_items_total",
			Help: "Items removed or processed by scheduled tasks",
		},
		[]string{"task"},
	)

	CronJobLastRunTime = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "artclub_scheduled_task_last_run_timestamp_seconds",
			Help: "Unix time of the last run of each scheduled task",
		},
		[]string{"task"},
	)

	cronMetricsOnce sync.Once
)

func RegisterCronMetrics(registry prometheus.Registerer) {
	cronMetricsOnce.Do(func() {
		registry.MustRegister(
			CronJobRunsTotal,
			CronJobRunDurationSeconds,
			CronJobItemsTotal,
			CronJobLastRunTime,
		)
	})
}

// RecordCronJobRun records one run of task that handled items entries.
func RecordCronJobRun(task string, duration time.Duration, items int) {
	CronJobRunsTotal.WithLabelValues(task).Inc()
	CronJobRunDurationSeconds.WithLabelValues(task).Observe(duration.Seconds())
	if items > 0 {
		CronJobItemsTotal.WithLabelValues(task).Add(float64(items))
	}
	CronJobLastRunTime.WithLabelValues(task).SetToCurrentTime()
}
