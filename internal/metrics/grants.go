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
	// GrantsIssued tracks QR grant tokens minted by the parent side.
	GrantsIssued = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "grants",
			Name:      "issued_total",
			Help:      "Total number of QR grant tokens issued",
		},
	)

	// GrantsVerified tracks QR grant verification outcomes by error kind.
	GrantsVerified = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "grants",
			Name:      "verified_total",
			Help:      "Total number of QR grant verification attempts",
		},
		[]string{"status"}, // accepted, bad_signature, expired, replay, wrong_device, wrong_child, malformed
	)

	// GrantTokenSize tracks encoded grant token sizes.
	GrantTokenSize = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "grants",
			Name:      "token_size_bytes",
			Help:      "Size of an encoded QR grant token in bytes",
			Buckets:   prometheus.LinearBuckets(64, 32, 10),
		},
	)

	// GrantVerificationDuration tracks verification latency.
	GrantVerificationDuration = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "grants",
			Name:      "verification_duration_seconds",
			Help:      "QR grant verification duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		},
	)
)
