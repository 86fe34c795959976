/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

package resolver

import (
	"strings"

	"github.com/eea/fleetgen/pkg/release"
)

// DefaultVersion is the sentinel recorded when no concrete chart
// version is known yet. Rendering may later substitute a real version
// discovered from release metadata.
const DefaultVersion = "latest"

// RolloutStrategy controls how the deployment controller staggers an
// update across clusters.
type RolloutStrategy struct {
	MaxUnavailable           string `yaml:"maxUnavailable"`
	MaxUnavailablePartitions string `yaml:"maxUnavailablePartitions"`
	AutoPartitionSize        string `yaml:"autoPartitionSize"`
}

// DefaultRolloutStrategy returns the house-standard rollout policy.
func DefaultRolloutStrategy() RolloutStrategy {
	return RolloutStrategy{
		MaxUnavailable:           "25%",
		MaxUnavailablePartitions: "0",
		AutoPartitionSize:        "10%",
	}
}

// FleetConfig is the canonical record driving artifact generation. It
// is assembled during resolution, finalized exactly once, and then
// treated as read-only by the renderer.
type FleetConfig struct {
	AppName       string
	Namespace     string
	ChartName     string
	ChartVersion  string
	RepositoryURL string
	Values        map[string]any
	TargetCluster string
	Dependencies  []string

	IsExistingRelease bool
	ReleaseName       string
	ChartMetadata     release.ChartMetadata

	Rollout RolloutStrategy

	finalized bool
}

// Sanitize rewrites a name into an RFC 1123 safe label by replacing
// path separators and underscores with dashes.
func Sanitize(name string) string {
	return strings.NewReplacer("/", "-", "_", "-").Replace(name)
}

// finalize derives the canonical app name. The namespace falls back to
// the app name when unset; the app name then becomes the sanitized
// "<namespace>-<chart>" form so every downstream reference (the values
// binding, the storage path) is computed from the same label. Runs at
// most once per config.
func (c *FleetConfig) finalize() {
	if c.finalized {
		return
	}
	if c.Namespace == "" {
		c.Namespace = c.AppName
	}
	c.AppName = Sanitize(c.Namespace + "-" + c.ChartName)
	c.finalized = true
}
