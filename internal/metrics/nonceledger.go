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
	// NonceChecks tracks nonce ledger lookups by outcome.
	NonceChecks = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "nonce_ledger",
			Name:      "checks_total",
			Help:      "Total number of nonce ledger lookups",
		},
		[]string{"status"}, // fresh, replay
	)

	// ReplayAttacksDetected tracks nonces seen a second time.
	ReplayAttacksDetected = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "nonce_ledger",
			Name:      "replay_attacks_detected_total",
			Help:      "Total number of replayed nonces rejected",
		},
	)

	// NonceLedgerSize tracks the current number of tracked nonces.
	NonceLedgerSize = promauto.With(Registry).NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "nonce_ledger",
			Name:      "entries",
			Help:      "Number of nonces currently tracked",
		},
	)

	// NonceLedgerGCRuns tracks garbage-collection sweeps.
	NonceLedgerGCRuns = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "nonce_ledger",
			Name:      "gc_runs_total",
			Help:      "Total number of nonce ledger garbage-collection sweeps",
		},
	)
)
