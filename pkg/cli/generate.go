/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	"github.com/eea/fleetgen/pkg/catalog"
	"github.com/eea/fleetgen/pkg/generator"
	"github.com/eea/fleetgen/pkg/release"
	"github.com/eea/fleetgen/pkg/resolver"
)

// generateResult is what the generate command reports back.
type generateResult struct {
	AppName   string `json:"app_name" yaml:"app_name"`
	Namespace string `json:"namespace" yaml:"namespace"`
	Chart     string `json:"chart" yaml:"chart"`
	Version   string `json:"version" yaml:"version"`
	BundleDir string `json:"bundle_dir" yaml:"bundle_dir"`
	ConfigDir string `json:"config_dir" yaml:"config_dir"`
}

// marshalValues renders a values mapping back to YAML text.
func marshalValues(values map[string]any) (string, error) {
	out, err := yaml.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func generateCmd() *cli.Command {
	return &cli.Command{
		Name:                  "generate",
		EnableShellCompletion: true,
		Usage:                 "Generate deployment descriptors for a chart or deployed release",
		Description: `Generate the GitOps artifacts for an application: a Fleet bundle
manifest (fleet.yaml) and a ConfigMap carrying the chart values.

Two source modes are supported:

  Repository chart:
    fleetctl generate --chart postgres --namespace data

  Deployed release:
    fleetctl generate --release db --namespace data

Artifacts are written under the configured bundle and config trees,
grouped by cluster and application:

  <bundle-root>/<cluster>/<namespace>-<chart>/fleet.yaml
  <config-root>/<cluster>/<namespace>-<chart>/<namespace>-<chart>-configmap.yaml`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "chart",
				Usage: "Chart name from the EEA repository",
			},
			&cli.StringFlag{
				Name:  "release",
				Usage: "Name of a deployed release to rebuild the configuration from",
			},
			&cli.StringFlag{
				Name:    "namespace",
				Aliases: []string{"n"},
				Usage:   "Target namespace (required with --release)",
			},
			&cli.StringFlag{
				Name:  "target-cluster",
				Usage: "Restrict deployment to this cluster via a cluster selector",
			},
			&cli.StringFlag{
				Name:    "values",
				Aliases: []string{"f"},
				Usage:   "Path to a YAML file with chart values",
			},
			&cli.StringSliceFlag{
				Name:  "depends-on",
				Usage: "Chart this application depends on (repeatable)",
			},
			outputFlag,
			formatFlag,
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			chart := cmd.String("chart")
			releaseName := cmd.String("release")
			namespace := cmd.String("namespace")

			if (chart == "") == (releaseName == "") {
				return fmt.Errorf("exactly one of --chart or --release is required")
			}
			if releaseName != "" && namespace == "" {
				return fmt.Errorf("--namespace is required with --release")
			}

			tools, err := newToolset()
			if err != nil {
				return err
			}

			overrides := resolver.Overrides{
				Namespace:     namespace,
				TargetCluster: cmd.String("target-cluster"),
				Dependencies:  cmd.StringSlice("depends-on"),
			}
			if path := cmd.String("values"); path != "" {
				content, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read values file %q: %w", path, err)
				}
				overrides.ValuesYAML = string(content)
			}

			var (
				sel    resolver.Selection
				client *release.Client
			)
			if chart != "" {
				if !knownChart(ctx, tools, chart) {
					return suggestChart(ctx, tools, chart)
				}
				sel = resolver.CatalogSelection{Chart: chart}
			} else {
				path, cleanup := kubeconfigPath(ctx, tools)
				defer cleanup()
				client = release.NewClient(tools.runner, path)

				rel, err := findRelease(ctx, client, releaseName, namespace)
				if err != nil {
					return err
				}
				sel = resolver.ReleaseSelection{Release: rel, Namespace: namespace}

				if values, err := client.GetValues(ctx, releaseName, namespace); err == nil &&
					len(values) > 0 && overrides.ValuesYAML == "" {
					// carry over the deployed values unless the caller
					// supplied their own
					cfgValues, marshalErr := marshalValues(values)
					if marshalErr == nil {
						overrides.ValuesYAML = cfgValues
					}
				}
			}

			var metadata resolver.MetadataSource
			if client != nil {
				metadata = client
			}

			cfg, err := resolver.New(metadata).Resolve(ctx, sel, overrides)
			if err != nil {
				return err
			}

			settings := tools.store.Load()
			roots, err := tools.store.ResolveStorageRoots(settings)
			if err != nil {
				return err
			}

			identity := tools.cluster.Current()
			if identity == nil {
				identity = tools.cluster.Detect(ctx)
			}
			var clusterName, clusterID string
			if identity != nil {
				clusterName = identity.Name
				clusterID = identity.ID
			}

			address := generator.NewStorageAddress(clusterName, clusterID, cfg.AppName)
			if err := generator.NewWriter(*roots).Write(cfg, address); err != nil {
				return err
			}

			return writeOutput(cmd, generateResult{
				AppName:   cfg.AppName,
				Namespace: cfg.Namespace,
				Chart:     cfg.ChartName,
				Version:   cfg.ChartVersion,
				BundleDir: fmt.Sprintf("%s/%s/%s", roots.BundleRoot, address.ClusterFolder, address.AppDirName),
				ConfigDir: fmt.Sprintf("%s/%s/%s", roots.ConfigRoot, address.ClusterFolder, address.AppDirName),
			})
		},
	}
}

// knownChart reports whether the chart appears in the cached catalog.
// Never contacts the chart repository.
func knownChart(ctx context.Context, tools *toolset, chart string) bool {
	for _, known := range tools.catalog.Get(ctx, false, false) {
		if known == chart {
			return true
		}
	}
	return false
}

// suggestChart builds a not-found error naming close matches.
func suggestChart(ctx context.Context, tools *toolset, chart string) error {
	suggestions := catalog.Suggest(tools.catalog.Get(ctx, false, false), chart)
	if len(suggestions) == 0 {
		return fmt.Errorf("unknown chart %q", chart)
	}
	return fmt.Errorf("unknown chart %q, did you mean one of: %v", chart, suggestions)
}

func findRelease(ctx context.Context, client *release.Client, name, namespace string) (release.Release, error) {
	releases, err := client.List(ctx, namespace)
	if err != nil {
		return release.Release{}, err
	}
	for _, rel := range releases {
		if rel.Name == name {
			return rel, nil
		}
	}
	return release.Release{}, fmt.Errorf("release %q not found in namespace %q", name, namespace)
}
