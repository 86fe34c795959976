/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

package resolver

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/eea/fleetgen/pkg/catalog"
	"github.com/eea/fleetgen/pkg/errors"
	"github.com/eea/fleetgen/pkg/release"
)

// Selection names the source of the chart being deployed: either a
// catalog entry or an already-deployed release.
type Selection interface {
	apply(ctx context.Context, r *Resolver, cfg *FleetConfig)
}

// CatalogSelection deploys a chart straight from the chart repository.
type CatalogSelection struct {
	Chart string
}

func (s CatalogSelection) apply(_ context.Context, _ *Resolver, cfg *FleetConfig) {
	cfg.AppName = s.Chart
	cfg.ChartName = s.Chart
	cfg.ChartVersion = DefaultVersion
	cfg.IsExistingRelease = false
}

// ReleaseSelection rebuilds the configuration of a release already
// running in a cluster namespace.
type ReleaseSelection struct {
	Release   release.Release
	Namespace string
}

func (s ReleaseSelection) apply(ctx context.Context, r *Resolver, cfg *FleetConfig) {
	cfg.AppName = s.Release.Name
	cfg.Namespace = s.Namespace
	cfg.ChartName = s.Release.Chart
	cfg.ChartVersion = s.Release.ChartVersion
	if cfg.ChartVersion == "" {
		cfg.ChartVersion = DefaultVersion
	}
	cfg.IsExistingRelease = true
	cfg.ReleaseName = s.Release.Name

	cfg.ChartMetadata = release.ChartMetadata{
		Name:       s.Release.Chart,
		Version:    s.Release.ChartVersion,
		AppVersion: s.Release.AppVersion,
	}

	if r.metadata != nil && (s.Release.ChartVersion == "" || s.Release.AppVersion == "") {
		decoded := r.metadata.GetMetadata(ctx, s.Release.Name, s.Namespace)
		mergeMetadata(&cfg.ChartMetadata, decoded)
	}
}

// mergeMetadata fills empty fields from decoded; known values are
// never overwritten.
func mergeMetadata(dst *release.ChartMetadata, decoded release.ChartMetadata) {
	if dst.Name == "" {
		dst.Name = decoded.Name
	}
	if dst.Version == "" {
		dst.Version = decoded.Version
	}
	if dst.AppVersion == "" {
		dst.AppVersion = decoded.AppVersion
	}
	if dst.Description == "" {
		dst.Description = decoded.Description
	}
}

// Overrides carries caller-supplied adjustments applied on top of the
// selection before finalization.
type Overrides struct {
	Namespace     string
	TargetCluster string
	// ValuesYAML is a YAML document of chart values. A parse failure
	// aborts resolution: silently substituting empty values would
	// produce an artifact that looks correct and is not.
	ValuesYAML   string
	Dependencies []string
}

// MetadataSource backfills chart metadata for a deployed release.
type MetadataSource interface {
	GetMetadata(ctx context.Context, name, namespace string) release.ChartMetadata
}

// Resolver turns a selection plus overrides into a finalized
// FleetConfig ready for rendering.
type Resolver struct {
	metadata MetadataSource
}

// New creates a resolver. metadata may be nil when no cluster
// connection is available; release-mode backfill is then skipped.
func New(metadata MetadataSource) *Resolver {
	return &Resolver{metadata: metadata}
}

// Resolve builds the canonical configuration for a selection. The
// returned config is finalized: its app name is the sanitized
// "<namespace>-<chart>" label and must not be recomputed downstream.
func (r *Resolver) Resolve(ctx context.Context, sel Selection, overrides Overrides) (*FleetConfig, error) {
	if sel == nil {
		return nil, errors.New(errors.ErrCodeInvalidRequest, "no chart or release selected")
	}

	cfg := &FleetConfig{
		RepositoryURL: catalog.RepoURL,
		Values:        map[string]any{},
		Rollout:       DefaultRolloutStrategy(),
	}

	sel.apply(ctx, r, cfg)

	if overrides.Namespace != "" {
		cfg.Namespace = overrides.Namespace
	}
	cfg.TargetCluster = overrides.TargetCluster
	if len(overrides.Dependencies) > 0 {
		cfg.Dependencies = append([]string(nil), overrides.Dependencies...)
	}

	if overrides.ValuesYAML != "" {
		values := map[string]any{}
		if err := yaml.Unmarshal([]byte(overrides.ValuesYAML), &values); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidRequest,
				fmt.Sprintf("failed to parse chart values for %q", cfg.ChartName), err)
		}
		cfg.Values = values
	}

	cfg.finalize()
	return cfg, nil
}
