/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

package release

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	decodeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetgen_release_decode_total",
		Help: "Release record decode attempts by outcome.",
	}, []string{"outcome"})

	listTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fleetgen_release_list_total",
		Help: "Release listing operations by outcome.",
	}, []string{"outcome"})
)
