/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

package release

// Release describes one deployed release as reported by the package manager.
type Release struct {
	// Name is the release name.
	Name string `json:"name"`
	// Namespace the release is deployed into.
	Namespace string `json:"namespace"`
	// Chart is the chart coordinate string, e.g. "postgres-1.2.0".
	Chart string `json:"chart"`
	// Revision is the release revision counter.
	Revision string `json:"revision"`
	// Status is the release status string.
	Status string `json:"status"`
	// ChartVersion is the chart version, backfilled from the release record
	// when the listing does not carry it.
	ChartVersion string `json:"chart_version,omitempty"`
	// AppVersion is the packaged application version.
	AppVersion string `json:"app_version,omitempty"`
}

// ChartMetadata is the chart metadata recovered from a persisted release
// record. All fields default to empty; a decode failure at any layer yields
// the zero value, never a partial record.
type ChartMetadata struct {
	Name        string `json:"name,omitempty"`
	Version     string `json:"version,omitempty"`
	AppVersion  string `json:"appVersion,omitempty"`
	Description string `json:"description,omitempty"`
}

// Empty reports whether no metadata was recovered.
func (m ChartMetadata) Empty() bool {
	return m == ChartMetadata{}
}
