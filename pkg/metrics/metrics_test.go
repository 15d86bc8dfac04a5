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
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedStats QueueStats

func (f fixedStats) Stats() QueueStats { return QueueStats(f) }

func TestQueueCollector(t *testing.T) {
	c := NewQueueCollector(fixedStats{Pending: 2, Running: 1, RetryWait: 0, History: 7})
	expected := `
# HELP artclub_job_queue_jobs Number of batch jobs held in each queue store
# TYPE artclub_job_queue_jobs gauge
artclub_job_queue_jobs{store="history"} 7
artclub_job_queue_jobs{store="pending"} 2
artclub_job_queue_jobs{store="retry_wait"} 0
artclub_job_queue_jobs{store="running"} 1
`
	require.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected)))
}

func TestRecorders(t *testing.T) {
	before := testutil.ToFloat64(AuthzDecisionsTotal.WithLabelValues("permission", "denied"))
	RecordAuthzDecision("permission", "denied")
	assert.Equal(t, before+1, testutil.ToFloat64(AuthzDecisionsTotal.WithLabelValues("permission", "denied")))

	before = testutil.ToFloat64(JobsFinishedTotal.WithLabelValues("X", "FAILED"))
	RecordJobFinished("X", "FAILED")
	assert.Equal(t, before+1, testutil.ToFloat64(JobsFinishedTotal.WithLabelValues("X", "FAILED")))

	before = testutil.ToFloat64(CronJobItemsTotal.WithLabelValues("cleanup"))
	RecordCronJobRun("cleanup", 10*time.Millisecond, 3)
	assert.Positive(t, testutil.ToFloat64(CronJobLastRunTime.WithLabelValues("cleanup")))
	assert.Equal(t, before+3, testutil.ToFloat64(CronJobItemsTotal.WithLabelValues("cleanup")))
}

func TestServerHandler(t *testing.T) {
	s := NewMetricsServer(MetricsConfig{})
	RecordAuditEvent("USER_LOGIN", "MEDIUM")
	require.NoError(t, s.RegisterCollector(prometheus.NewCounter(prometheus.CounterOpts{Name: "extra_total", Help: "x"})))

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 200, rec.Code)
	assert.Contains(t, rec.Body.String(), "artclub_audit_events_total")
	assert.Contains(t, rec.Body.String(), "extra_total")
}
