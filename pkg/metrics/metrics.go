// Copyright 2025 Conduit Team
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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TriggersTotal counts admitted triggers by method (manual, webhook).
	TriggersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "conduit",
		Name:      "triggers_total",
		Help:      "Number of admitted pipeline triggers by method.",
	}, []string{"method"})

	// TriggersRejectedTotal counts rejected triggers by reason.
	TriggersRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "conduit",
		Name:      "triggers_rejected_total",
		Help:      "Number of rejected pipeline triggers by reason.",
	}, []string{"reason"})

	// ExecutionsTotal counts finished executions by terminal status.
	ExecutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "conduit",
		Name:      "executions_total",
		Help:      "Number of finished executions by terminal status.",
	}, []string{"status"})

	// ExecutionsRunning tracks currently running executions.
	ExecutionsRunning = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "conduit",
		Name:      "executions_running",
		Help:      "Number of currently running executions.",
	})

	// ExecutionDuration observes wall time of finished executions.
	ExecutionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "conduit",
		Name:      "execution_duration_seconds",
		Help:      "Wall time of finished executions.",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
	}, []string{"status"})
)
