/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

package catalog

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache tier labels for the hit counter.
const (
	tierMemory   = "memory"
	tierRemote   = "remote"
	tierStale    = "stale"
	tierFallback = "fallback"
)

var (
	cacheTierHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetgen_catalog_cache_hits_total",
			Help: "Catalog lookups served, by cache tier",
		},
		[]string{"tier"},
	)

	remoteFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleetgen_catalog_remote_fetch_total",
			Help: "Remote catalog fetch attempts",
		},
		[]string{"status"}, // success or error
	)
)
