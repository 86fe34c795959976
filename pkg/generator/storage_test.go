/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

package generator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/eea/fleetgen/pkg/config"
	"github.com/eea/fleetgen/pkg/resolver"
)

func TestNewStorageAddress(t *testing.T) {
	tests := []struct {
		name        string
		clusterName string
		clusterID   string
		appName     string
		want        StorageAddress
	}{
		{"cluster name preferred", "prod_cluster", "c-1234", "data-postgres",
			StorageAddress{"prod-cluster", "data-postgres"}},
		{"id fallback", "", "c-1234", "data-postgres",
			StorageAddress{"c-1234", "data-postgres"}},
		{"default fallback", "", "", "data-postgres",
			StorageAddress{"default", "data-postgres"}},
		{"app name sanitized", "prod", "", "data-my_chart/x",
			StorageAddress{"prod", "data-my-chart-x"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, NewStorageAddress(tc.clusterName, tc.clusterID, tc.appName))
		})
	}
}

func TestWriterEndToEnd(t *testing.T) {
	base := t.TempDir()
	roots := config.StorageRoots{
		BundleRoot: filepath.Join(base, "apps"),
		ConfigRoot: filepath.Join(base, "int"),
	}

	cfg, err := resolver.New(nil).Resolve(context.Background(),
		resolver.CatalogSelection{Chart: "postgres"},
		resolver.Overrides{Namespace: "data"})
	require.NoError(t, err)

	address := NewStorageAddress("staging", "", cfg.AppName)
	require.NoError(t, NewWriter(roots).Write(cfg, address))

	bundle, err := os.ReadFile(filepath.Join(roots.BundleRoot, "staging", "data-postgres", "fleet.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(bundle), "chart: postgres")
	assert.Contains(t, string(bundle), "version: latest")
	assert.Contains(t, string(bundle), "name: data-postgres-config")

	object, err := os.ReadFile(filepath.Join(roots.ConfigRoot, "staging", "data-postgres", "data-postgres-configmap.yaml"))
	require.NoError(t, err)

	var cm struct {
		Data map[string]string `yaml:"data"`
	}
	require.NoError(t, yaml.Unmarshal(object, &cm))
	assert.NotEmpty(t, cm.Data["values.yaml"])
}

func TestWriterOverwrites(t *testing.T) {
	base := t.TempDir()
	roots := config.StorageRoots{
		BundleRoot: filepath.Join(base, "apps"),
		ConfigRoot: filepath.Join(base, "int"),
	}

	cfg, err := resolver.New(nil).Resolve(context.Background(),
		resolver.CatalogSelection{Chart: "postgres"},
		resolver.Overrides{Namespace: "data"})
	require.NoError(t, err)

	address := NewStorageAddress("staging", "", cfg.AppName)
	w := NewWriter(roots)
	require.NoError(t, w.Write(cfg, address))

	bundlePath := filepath.Join(roots.BundleRoot, "staging", "data-postgres", "fleet.yaml")
	first, err := os.ReadFile(bundlePath)
	require.NoError(t, err)

	// scribble over the artifact, then re-run
	require.NoError(t, os.WriteFile(bundlePath, []byte("manually edited\n"), 0644))
	require.NoError(t, w.Write(cfg, address))

	second, err := os.ReadFile(bundlePath)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second), "rewrite replaces artifacts wholesale")
}
