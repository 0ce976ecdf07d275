// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PairingsInitiated tracks pairing sessions started.
	PairingsInitiated = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pairing",
			Name:      "initiated_total",
			Help:      "Total number of pairing sessions initiated",
		},
	)

	// PairingsCompleted tracks pairing sessions by terminal status.
	PairingsCompleted = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pairing",
			Name:      "completed_total",
			Help:      "Total number of pairing sessions reaching a terminal state",
		},
		[]string{"status"}, // completed, expired, declined, failed
	)

	// PairingStageDuration tracks time spent in each pairing state.
	PairingStageDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pairing",
			Name:      "stage_duration_seconds",
			Help:      "Time spent in each pairing session state, in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 12), // 100ms to ~409s
		},
		[]string{"stage"}, // initializing, waiting, scanned, authenticating
	)

	// PairingSessionsActive tracks sessions currently in flight.
	PairingSessionsActive = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pairing",
			Name:      "active",
			Help:      "Number of pairing sessions currently in flight",
		},
	)
)
