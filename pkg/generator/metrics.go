/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

package generator

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generateTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetgen_generate_total",
		Help: "Artifact generation runs by outcome.",
	}, []string{"outcome"})

	generateDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "fleetgen_generate_duration_seconds",
		Help:    "Time spent rendering and writing artifacts.",
		Buckets: prometheus.DefBuckets,
	})
)
