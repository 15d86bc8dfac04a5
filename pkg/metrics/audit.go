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

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AuditEventsTotal counts emitted audit events.
	AuditEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artclub_audit_events_total",
			Help: "Total number of audit events emitted",
		},
		[]string{"event_type", "severity"},
	)

	// AuditSuspiciousActivityTotal counts abuse detections by reason.
	AuditSuspiciousActivityTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artclub_audit_suspicious_activity_total",
			Help: "Total number of suspicious activity detections",
		},
		[]string{"reason"},
	)

	// AuditFailuresTotal counts internal audit failures by stage.
	AuditFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artclub_audit_failures_total",
			Help: "Total number of swallowed audit failures",
		},
		[]string{"stage"},
	)

	// AuditTrackedSessions is the number of session windows held in memory.
	AuditTrackedSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "artclub_audit_tracked_sessions",
			Help: "Number of session activity windows tracked for abuse detection",
		},
	)

	auditMetricsOnce sync.Once
)

func RegisterAuditMetrics(registry prometheus.Registerer) {
	auditMetricsOnce.Do(func() {
		registry.MustRegister(
			AuditEventsTotal,
			AuditSuspiciousActivityTotal,
			AuditFailuresTotal,
			AuditTrackedSessions,
		)
	})
}

func RecordAuditEvent(eventType, severity string) {
	AuditEventsTotal.WithLabelValues(eventType, severity).Inc()
}

func RecordSuspiciousActivity(reason string) {
	AuditSuspiciousActivityTotal.WithLabelValues(reason).Inc()
}

func RecordAuditFailure(stage string) {
	AuditFailuresTotal.WithLabelValues(stage).Inc()
}

func UpdateTrackedSessions(n int) {
	AuditTrackedSessions.Set(float64(n))
}
