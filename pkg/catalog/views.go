/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

package catalog

import (
	"strings"

	"github.com/agnivade/levenshtein"
)

// Category classifies a chart by its role in a deployment.
type Category string

// Chart categories.
const (
	CategoryFrontend       Category = "Frontend"
	CategoryBackend        Category = "Backend"
	CategoryInfrastructure Category = "Infrastructure"
	CategoryOther          Category = "Other"
)

// Category membership lists. A chart appears in at most one list.
var (
	frontendCharts = map[string]struct{}{
		"advisory-board-frontend": {}, "eea-website-frontend": {}, "fise-frontend": {},
		"lcp-frontend": {}, "mars-frontend": {}, "wise-frontend": {}, "volto": {},
	}
	backendCharts = map[string]struct{}{
		"advisory-board-backend": {}, "eea-website-backend": {}, "fise-backend": {},
		"mars-backend": {}, "wise-backend": {}, "datadict": {}, "contreg": {},
	}
	infrastructureCharts = map[string]struct{}{
		"postgres": {}, "redis": {}, "memcached": {}, "elastic6": {}, "elastic7": {},
		"opensearch": {}, "opensearch-dashboards": {}, "haproxy": {}, "varnish": {},
	}
)

// Categorize maps a chart name to its category. Pure function of the name.
func Categorize(chart string) Category {
	if _, ok := frontendCharts[chart]; ok {
		return CategoryFrontend
	}
	if _, ok := backendCharts[chart]; ok {
		return CategoryBackend
	}
	if _, ok := infrastructureCharts[chart]; ok {
		return CategoryInfrastructure
	}
	return CategoryOther
}

// Filter returns charts whose name contains the term, case-insensitively.
// An empty term returns the input unchanged.
func Filter(charts []string, term string) []string {
	if term == "" {
		return charts
	}
	lower := strings.ToLower(term)
	out := make([]string, 0, len(charts))
	for _, chart := range charts {
		if strings.Contains(strings.ToLower(chart), lower) {
			out = append(out, chart)
		}
	}
	return out
}

// maxSuggestions bounds the suggestion list size.
const maxSuggestions = 10

// Suggest returns up to ten chart names for a partial input: prefix matches
// first, then substring matches, then near misses ranked by edit distance.
// An empty partial returns the head of the catalog.
func Suggest(charts []string, partial string) []string {
	if partial == "" {
		if len(charts) > maxSuggestions {
			return charts[:maxSuggestions]
		}
		return charts
	}

	lower := strings.ToLower(partial)
	seen := make(map[string]struct{}, maxSuggestions)
	suggestions := make([]string, 0, maxSuggestions)

	add := func(chart string) {
		if _, dup := seen[chart]; dup {
			return
		}
		seen[chart] = struct{}{}
		suggestions = append(suggestions, chart)
	}

	for _, chart := range charts {
		if strings.HasPrefix(strings.ToLower(chart), lower) {
			add(chart)
		}
	}
	for _, chart := range charts {
		if strings.Contains(strings.ToLower(chart), lower) {
			add(chart)
		}
	}

	// Close typos: small edit distance to the partial against name prefixes.
	if len(suggestions) < maxSuggestions {
		for _, chart := range charts {
			if len(suggestions) >= maxSuggestions {
				break
			}
			head := strings.ToLower(chart)
			if len(head) > len(lower) {
				head = head[:len(lower)]
			}
			if levenshtein.ComputeDistance(head, lower) <= 2 {
				add(chart)
			}
		}
	}

	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}
	return suggestions
}
