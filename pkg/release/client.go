/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

package release

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/eea/fleetgen/pkg/errors"
	"github.com/eea/fleetgen/pkg/runner"
)

const helmTool = "helm"

// Client lists deployed releases and reads their metadata and values
// through the package manager CLI. When kubeconfigPath is set, it is
// passed to every invocation so queries hit the intended cluster.
type Client struct {
	runner         runner.Runner
	kubeconfigPath string
}

// NewClient creates a release client. kubeconfigPath may be empty, in
// which case the tool's ambient configuration applies.
func NewClient(r runner.Runner, kubeconfigPath string) *Client {
	return &Client{runner: r, kubeconfigPath: kubeconfigPath}
}

func (c *Client) env() map[string]string {
	if c.kubeconfigPath == "" {
		return nil
	}
	return map[string]string{"KUBECONFIG": c.kubeconfigPath}
}

// List returns the deployed releases in the given namespace, sorted by
// name. An empty namespace lists releases across all namespaces.
func (c *Client) List(ctx context.Context, namespace string) ([]Release, error) {
	args := []string{"list", "--output", "json"}
	if namespace == "" {
		args = append(args, "--all-namespaces")
	} else {
		args = append(args, "-n", namespace)
	}

	ok, out := c.runner.Run(ctx, helmTool, args, c.env())
	if !ok {
		listTotal.WithLabelValues("error").Inc()
		return nil, errors.New(errors.ErrCodeUnavailable,
			fmt.Sprintf("failed to list releases: %s", out))
	}

	var rows []struct {
		Name       string `json:"name"`
		Namespace  string `json:"namespace"`
		Revision   string `json:"revision"`
		Status     string `json:"status"`
		Chart      string `json:"chart"`
		AppVersion string `json:"app_version"`
	}
	if err := json.Unmarshal([]byte(out), &rows); err != nil {
		listTotal.WithLabelValues("error").Inc()
		return nil, errors.Wrap(errors.ErrCodeInternal, "failed to parse release listing", err)
	}

	releases := make([]Release, 0, len(rows))
	for _, row := range rows {
		name, version := splitChartRef(row.Chart)
		releases = append(releases, Release{
			Name:         row.Name,
			Namespace:    row.Namespace,
			Chart:        name,
			Revision:     row.Revision,
			Status:       row.Status,
			ChartVersion: version,
			AppVersion:   row.AppVersion,
		})
	}
	sort.Slice(releases, func(i, j int) bool { return releases[i].Name < releases[j].Name })

	listTotal.WithLabelValues("success").Inc()
	return releases, nil
}

// splitChartRef separates "name-1.2.3" into chart name and version. The
// version is the suffix after the last dash that starts with a digit;
// chart names themselves may contain dashes.
func splitChartRef(ref string) (name, version string) {
	idx := strings.LastIndex(ref, "-")
	if idx <= 0 || idx == len(ref)-1 {
		return ref, ""
	}
	suffix := ref[idx+1:]
	if suffix[0] < '0' || suffix[0] > '9' {
		return ref, ""
	}
	return ref[:idx], suffix
}

// GetMetadata reads chart metadata for a deployed release. Missing
// fields are backfilled from the persisted release record; known values
// are never overwritten by later sources.
func (c *Client) GetMetadata(ctx context.Context, name, namespace string) ChartMetadata {
	var meta ChartMetadata

	ok, out := c.runner.Run(ctx, helmTool,
		[]string{"get", "metadata", name, "-n", namespace, "--output", "json"}, c.env())
	if ok {
		var doc struct {
			Name       string `json:"name"`
			Version    string `json:"version"`
			AppVersion string `json:"appVersion"`
		}
		if err := json.Unmarshal([]byte(out), &doc); err == nil {
			meta = ChartMetadata{Name: doc.Name, Version: doc.Version, AppVersion: doc.AppVersion}
		}
	}

	if meta.Version == "" || meta.AppVersion == "" {
		decoded := DecodeReleaseMetadata(ctx, c.runner, name, namespace)
		if meta.Name == "" {
			meta.Name = decoded.Name
		}
		if meta.Version == "" {
			meta.Version = decoded.Version
		}
		if meta.AppVersion == "" {
			meta.AppVersion = decoded.AppVersion
		}
		if meta.Description == "" {
			meta.Description = decoded.Description
		}
	}

	return meta
}

// GetValues returns the user-supplied values of a deployed release. The
// CLI is asked for JSON output but some versions emit YAML regardless,
// so parsing falls back accordingly. A release with no custom values
// yields an empty map.
func (c *Client) GetValues(ctx context.Context, name, namespace string) (map[string]any, error) {
	ok, out := c.runner.Run(ctx, helmTool,
		[]string{"get", "values", name, "-n", namespace, "--output", "json"}, c.env())
	if !ok {
		return nil, errors.New(errors.ErrCodeUnavailable,
			fmt.Sprintf("failed to get values for release %q: %s", name, out))
	}

	trimmed := strings.TrimSpace(out)
	if trimmed == "" || trimmed == "null" {
		return map[string]any{}, nil
	}

	values := map[string]any{}
	if err := json.Unmarshal([]byte(trimmed), &values); err == nil {
		return values, nil
	}
	if err := yaml.Unmarshal([]byte(trimmed), &values); err != nil {
		slog.Debug("release values not parseable", "release", name, "namespace", namespace, "error", err)
		return nil, errors.Wrap(errors.ErrCodeInternal,
			fmt.Sprintf("failed to parse values for release %q", name), err)
	}
	return values, nil
}
