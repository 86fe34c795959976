/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

package generator

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/eea/fleetgen/pkg/release"
	"github.com/eea/fleetgen/pkg/resolver"
)

func resolveCatalog(t *testing.T, chart, namespace string) *resolver.FleetConfig {
	t.Helper()
	cfg, err := resolver.New(nil).Resolve(context.Background(),
		resolver.CatalogSelection{Chart: chart},
		resolver.Overrides{Namespace: namespace})
	require.NoError(t, err)
	return cfg
}

func TestRenderCatalogMode(t *testing.T) {
	cfg := resolveCatalog(t, "postgres", "data")

	artifacts, err := Render(cfg)
	require.NoError(t, err)

	var manifest map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(artifacts.FleetYAML), &manifest))

	assert.Equal(t, "data", manifest["defaultNamespace"])

	helm := manifest["helm"].(map[string]any)
	assert.Equal(t, "postgres", helm["chart"])
	assert.Equal(t, "latest", helm["version"])
	assert.NotEmpty(t, helm["repo"])

	valuesFrom := helm["valuesFrom"].([]any)
	require.Len(t, valuesFrom, 1)
	ref := valuesFrom[0].(map[string]any)["configMapKeyRef"].(map[string]any)
	assert.Equal(t, "data-postgres-config", ref["name"])
	assert.Equal(t, "values.yaml", ref["key"])

	rollout := manifest["rolloutStrategy"].(map[string]any)
	assert.Equal(t, "25%", rollout["maxUnavailable"])
	assert.Equal(t, "0", rollout["maxUnavailablePartitions"])
	assert.Equal(t, "10%", rollout["autoPartitionSize"])

	// no target cluster, no targets block
	assert.NotContains(t, artifacts.FleetYAML, "targets:")

	// default values template kicks in when no custom values are set
	assert.Contains(t, artifacts.ValuesYAML, "replicaCount: 1")
	assert.Contains(t, artifacts.ValuesYAML, "eeacms/postgres")
}

func TestRenderConfigObject(t *testing.T) {
	cfg := resolveCatalog(t, "postgres", "data")

	artifacts, err := Render(cfg)
	require.NoError(t, err)

	var cm struct {
		APIVersion string `yaml:"apiVersion"`
		Kind       string `yaml:"kind"`
		Metadata   struct {
			Name      string `yaml:"name"`
			Namespace string `yaml:"namespace"`
		} `yaml:"metadata"`
		Data map[string]string `yaml:"data"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(artifacts.ConfigMapYAML), &cm))

	assert.Equal(t, "v1", cm.APIVersion)
	assert.Equal(t, "ConfigMap", cm.Kind)
	assert.Equal(t, "data-postgres-config", cm.Metadata.Name)
	assert.Equal(t, "data", cm.Metadata.Namespace)
	require.Len(t, cm.Data, 1, "the config object carries exactly one data key")
	assert.Equal(t, artifacts.ValuesYAML, cm.Data["values.yaml"])
}

func TestRenderTargetCluster(t *testing.T) {
	cfg, err := resolver.New(nil).Resolve(context.Background(),
		resolver.CatalogSelection{Chart: "postgres"},
		resolver.Overrides{Namespace: "data", TargetCluster: "prod-cluster"})
	require.NoError(t, err)

	artifacts, err := Render(cfg)
	require.NoError(t, err)

	var manifest map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(artifacts.FleetYAML), &manifest))

	targets := manifest["targets"].([]any)
	require.Len(t, targets, 1)
	target := targets[0].(map[string]any)
	assert.Equal(t, "prod-cluster", target["name"])
	labels := target["clusterSelector"].(map[string]any)["matchLabels"].(map[string]any)
	assert.Equal(t, "prod-cluster", labels["management.cattle.io/cluster-name"])
}

func TestRenderCustomValues(t *testing.T) {
	cfg, err := resolver.New(nil).Resolve(context.Background(),
		resolver.CatalogSelection{Chart: "postgres"},
		resolver.Overrides{Namespace: "data", ValuesYAML: "replicaCount: 3\n"})
	require.NoError(t, err)

	artifacts, err := Render(cfg)
	require.NoError(t, err)

	assert.Contains(t, artifacts.ValuesYAML, "replicaCount: 3")
	assert.NotContains(t, artifacts.ValuesYAML, "eeacms/postgres")
}

func TestRenderMetadataComments(t *testing.T) {
	cfg := resolveCatalog(t, "postgres", "data")
	cfg.ChartMetadata = release.ChartMetadata{
		Name:        "postgres",
		Version:     "1.2.0",
		AppVersion:  "15.3",
		Description: "PostgreSQL database",
	}

	artifacts, err := Render(cfg)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(artifacts.FleetYAML, "# Chart Name: postgres\n"))
	assert.Contains(t, artifacts.FleetYAML, "# Chart Version: 1.2.0")
	assert.Contains(t, artifacts.FleetYAML, "# App Version: 15.3")
	assert.Contains(t, artifacts.FleetYAML, "# Description: PostgreSQL database")

	// the metadata version replaces the "latest" sentinel at render time
	assert.Contains(t, artifacts.FleetYAML, "version: 1.2.0")
	assert.NotContains(t, artifacts.FleetYAML, "version: latest")
	// the config record itself stays untouched
	assert.Equal(t, "latest", cfg.ChartVersion)
}

func TestRenderPinnedVersionBeatsMetadata(t *testing.T) {
	cfg := resolveCatalog(t, "postgres", "data")
	cfg.ChartVersion = "1.2.0"
	cfg.ChartMetadata = release.ChartMetadata{Version: "9.9.9"}

	artifacts, err := Render(cfg)
	require.NoError(t, err)

	assert.Contains(t, artifacts.FleetYAML, "version: 1.2.0")
	assert.NotContains(t, artifacts.FleetYAML, "version: 9.9.9")
}

func TestRenderIdempotent(t *testing.T) {
	cfg, err := resolver.New(nil).Resolve(context.Background(),
		resolver.CatalogSelection{Chart: "postgres"},
		resolver.Overrides{
			Namespace:  "data",
			ValuesYAML: "replicaCount: 2\nimage:\n  tag: \"15\"\n",
		})
	require.NoError(t, err)
	cfg.ChartMetadata = release.ChartMetadata{Name: "postgres", Version: "1.2.0"}

	first, err := Render(cfg)
	require.NoError(t, err)
	second, err := Render(cfg)
	require.NoError(t, err)

	assert.Equal(t, first.FleetYAML, second.FleetYAML)
	assert.Equal(t, first.ValuesYAML, second.ValuesYAML)
	assert.Equal(t, first.ConfigMapYAML, second.ConfigMapYAML)
}
