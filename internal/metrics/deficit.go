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
	// DeficitAdjustments tracks ledger mutations by kind.
	DeficitAdjustments = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deficit",
			Name:      "adjustments_total",
			Help:      "Total number of deficit ledger adjustments",
		},
		[]string{"kind"}, // add, clear, apply
	)

	// DeficitCeilingHits tracks requests rejected for exceeding the ceiling.
	DeficitCeilingHits = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "deficit",
			Name:      "ceiling_hits_total",
			Help:      "Total number of deficit additions rejected for exceeding the ceiling",
		},
	)

	// DeficitSecondsOwed tracks the current per-child deficit at the
	// moment of the last adjustment.
	DeficitSecondsOwed = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "deficit",
			Name:      "seconds_owed",
			Help:      "Distribution of seconds_owed values observed across adjustments",
			Buckets:   prometheus.LinearBuckets(0, 180, 10), // 0 to 1800s in 180s steps
		},
	)
)
