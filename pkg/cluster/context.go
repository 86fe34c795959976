/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

// Package cluster resolves the identity of the currently selected cluster
// through the cluster-management CLI. The identity feeds artifact addressing:
// every generated manifest lands under a folder derived from it.
package cluster

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/eea/fleetgen/pkg/config"
	"github.com/eea/fleetgen/pkg/runner"
)

// rancherTool is the cluster-management CLI binary.
const rancherTool = "rancher"

// Info identifies the currently selected cluster.
type Info struct {
	// Context is the "<cluster>:<project>" context string.
	Context string
	// ID is the management-service cluster identifier.
	ID string
	// Name is the cluster display name.
	Name string
}

// Manager detects and caches the current cluster identity.
type Manager struct {
	runner runner.Runner
	store  *config.Store

	current *Info
}

// NewManager creates a cluster manager backed by the given runner and
// settings store.
func NewManager(r runner.Runner, store *config.Store) *Manager {
	return &Manager{runner: r, store: store}
}

// Current returns the cached cluster identity, loading it from settings if
// needed. Returns nil when no identity is known.
func (m *Manager) Current() *Info {
	if m.current != nil {
		return m.current
	}
	settings := m.store.Load()
	if settings.ClusterContext == "" {
		return nil
	}
	m.current = &Info{
		Context: settings.ClusterContext,
		ID:      settings.ClusterID,
		Name:    settings.ClusterName,
	}
	return m.current
}

// Detect queries the CLI for the active context, resolves the cluster ID, and
// persists the result. Returns nil when the context cannot be determined.
func (m *Manager) Detect(ctx context.Context) *Info {
	ok, out := m.runner.Run(ctx, rancherTool, []string{"context", "current"}, nil)
	if !ok {
		slog.Debug("failed to query current context", "output", out)
		return nil
	}

	clusterName, projectName := parseContextOutput(out)
	if clusterName == "" || projectName == "" {
		slog.Debug("could not parse cluster context", "output", out)
		return nil
	}

	clusterID := m.lookupClusterID(ctx, clusterName)
	if clusterID == "" {
		// Fall back to the project name so addressing still has something.
		clusterID = projectName
	}

	info := &Info{
		Context: clusterName + ":" + projectName,
		ID:      clusterID,
		Name:    clusterName,
	}
	m.current = info

	settings := m.store.Load()
	settings.ClusterContext = info.Context
	settings.ClusterID = info.ID
	settings.ClusterName = info.Name
	if err := m.store.Save(settings); err != nil {
		slog.Warn("failed to persist cluster context", "error", err)
	}

	slog.Debug("detected cluster context",
		"context", info.Context,
		"cluster", info.Name,
		"cluster_id", info.ID,
	)
	return info
}

// parseContextOutput extracts cluster and project names from output shaped
// like "Cluster:02pre Project:Plone websites".
func parseContextOutput(out string) (clusterName, projectName string) {
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if !strings.HasPrefix(line, "Cluster:") {
			continue
		}
		parts := strings.SplitN(line, " Project:", 2)
		if len(parts) != 2 {
			continue
		}
		clusterName = strings.TrimSpace(strings.TrimPrefix(parts[0], "Cluster:"))
		projectName = strings.TrimSpace(parts[1])
		return clusterName, projectName
	}
	return "", ""
}

// clusterListEntry is one line of `cluster ls --format json` output.
type clusterListEntry struct {
	ID      string `json:"ID"`
	Current string `json:"Current"`
	Cluster struct {
		Name string `json:"name"`
	} `json:"Cluster"`
}

// lookupClusterID resolves a cluster name to its management-service ID. The
// CLI emits one JSON document per line; malformed lines are skipped.
func (m *Manager) lookupClusterID(ctx context.Context, clusterName string) string {
	ok, out := m.runner.Run(ctx, rancherTool, []string{"cluster", "ls", "--format", "json"}, nil)
	if !ok {
		slog.Debug("failed to list clusters", "output", out)
		return ""
	}

	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var entry clusterListEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry.Current == "*" || entry.Cluster.Name == clusterName {
			if entry.ID != "" {
				return entry.ID
			}
		}
	}
	return ""
}

// ListNamespaces returns namespaces visible in the current context. The CLI
// emits line-delimited JSON with several historical shapes for the name field.
func (m *Manager) ListNamespaces(ctx context.Context) []string {
	ok, out := m.runner.Run(ctx, rancherTool, []string{"namespaces", "ls", "--format", "json"}, nil)
	if !ok || strings.TrimSpace(out) == "" {
		return nil
	}

	var namespaces []string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var doc map[string]any
		if err := json.Unmarshal([]byte(line), &doc); err != nil {
			continue
		}
		if name := namespaceFromDoc(doc); name != "" {
			namespaces = append(namespaces, name)
		}
	}
	slog.Debug("listed namespaces", "count", len(namespaces))
	return namespaces
}

func namespaceFromDoc(doc map[string]any) string {
	if name, ok := doc["name"].(string); ok && name != "" {
		return name
	}
	if id, ok := doc["ID"].(string); ok && id != "" {
		return id
	}
	if nested, ok := doc["Namespace"].(map[string]any); ok {
		if id, ok := nested["id"].(string); ok {
			return id
		}
	}
	return ""
}

// HasNamespace reports whether the named namespace exists in the current
// context.
func (m *Manager) HasNamespace(ctx context.Context, namespace string) bool {
	for _, ns := range m.ListNamespaces(ctx) {
		if ns == namespace {
			return true
		}
	}
	return false
}
