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
	// AuthzDecisionsTotal counts guard outcomes by guard kind and decision.
	AuthzDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "artclub_authz_decisions_total",
			Help: "Total number of authorization guard decisions",
		},
		[]string{"guard", "decision"},
	)

	authzMetricsOnce sync.Once
)

func RegisterAuthzMetrics(registry prometheus.Registerer) {
	authzMetricsOnce.Do(func() {
		registry.MustRegister(AuthzDecisionsTotal)
	})
}

// RecordAuthzDecision records one guard outcome (granted, denied,
// unauthenticated, not_found, error).
func RecordAuthzDecision(guard, decision string) {
	AuthzDecisionsTotal.WithLabelValues(guard, decision).Inc()
}
