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
	// VoiceCodesRequested tracks request codes read aloud by the child.
	VoiceCodesRequested = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "voicecode",
			Name:      "requested_total",
			Help:      "Total number of voice request codes generated",
		},
	)

	// VoiceApprovalsValidated tracks approval code validation outcomes.
	VoiceApprovalsValidated = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "voicecode",
			Name:      "validated_total",
			Help:      "Total number of voice approval code validations",
		},
		[]string{"status"}, // accepted, mismatch, expired_bucket, malformed
	)

	// VoiceApprovalDuration tracks validation latency.
	VoiceApprovalDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "voicecode",
			Name:      "validation_duration_seconds",
			Help:      "Voice approval code validation duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		},
	)
)
