/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

package generator

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
	corev1 "k8s.io/api/core/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	sigsyaml "sigs.k8s.io/yaml"

	"github.com/eea/fleetgen/pkg/errors"
	"github.com/eea/fleetgen/pkg/resolver"
)

// Artifacts holds the rendered deployment descriptors for one
// configuration.
type Artifacts struct {
	// FleetYAML is the bundle manifest consumed by the GitOps agent.
	FleetYAML string
	// ValuesYAML is the chart values document.
	ValuesYAML string
	// ConfigMapYAML is the config object embedding ValuesYAML under a
	// single "values.yaml" key.
	ConfigMapYAML string
}

// valuesKey is the sole data key of the config object. The bundle
// manifest references values by this key instead of embedding them, so
// a values change never touches the manifest itself.
const valuesKey = "values.yaml"

// clusterNameLabel selects target clusters in the bundle manifest.
const clusterNameLabel = "management.cattle.io/cluster-name"

type bundleManifest struct {
	DefaultNamespace string            `yaml:"defaultNamespace"`
	Helm             helmSource        `yaml:"helm"`
	Targets          []bundleTarget    `yaml:"targets,omitempty"`
	RolloutStrategy  rolloutStrategyML `yaml:"rolloutStrategy"`
}

type helmSource struct {
	Chart      string       `yaml:"chart"`
	Repo       string       `yaml:"repo"`
	Version    string       `yaml:"version"`
	ValuesFrom []valuesFrom `yaml:"valuesFrom"`
}

type valuesFrom struct {
	ConfigMapKeyRef configMapKeyRef `yaml:"configMapKeyRef"`
}

type configMapKeyRef struct {
	Name string `yaml:"name"`
	Key  string `yaml:"key"`
}

type bundleTarget struct {
	Name            string          `yaml:"name"`
	ClusterSelector clusterSelector `yaml:"clusterSelector"`
}

type clusterSelector struct {
	MatchLabels map[string]string `yaml:"matchLabels"`
}

type rolloutStrategyML struct {
	MaxUnavailable           string `yaml:"maxUnavailable"`
	MaxUnavailablePartitions string `yaml:"maxUnavailablePartitions"`
	AutoPartitionSize        string `yaml:"autoPartitionSize"`
}

// Render produces all three artifacts for a finalized configuration.
// Rendering is pure: given the same config it always produces the same
// bytes.
func Render(cfg *resolver.FleetConfig) (Artifacts, error) {
	values, err := renderValues(cfg)
	if err != nil {
		return Artifacts{}, err
	}

	manifest, err := renderBundleManifest(cfg)
	if err != nil {
		return Artifacts{}, err
	}

	configMap, err := renderConfigObject(cfg, values)
	if err != nil {
		return Artifacts{}, err
	}

	return Artifacts{
		FleetYAML:     manifest,
		ValuesYAML:    values,
		ConfigMapYAML: configMap,
	}, nil
}

func renderValues(cfg *resolver.FleetConfig) (string, error) {
	if len(cfg.Values) == 0 {
		return defaultValues(cfg.ChartName), nil
	}
	out, err := yaml.Marshal(cfg.Values)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal,
			fmt.Sprintf("failed to render values for %q", cfg.AppName), err)
	}
	return string(out), nil
}

func renderBundleManifest(cfg *resolver.FleetConfig) (string, error) {
	version := cfg.ChartVersion
	if version == "" {
		version = resolver.DefaultVersion
	}

	meta := cfg.ChartMetadata
	var comments []string
	if meta.Name != "" {
		comments = append(comments, "# Chart Name: "+meta.Name)
	}
	if meta.Version != "" {
		comments = append(comments, "# Chart Version: "+meta.Version)
		// a concrete discovered version beats the unset sentinel, but
		// never an explicitly pinned one
		if version == resolver.DefaultVersion {
			version = meta.Version
		}
	}
	if meta.AppVersion != "" {
		comments = append(comments, "# App Version: "+meta.AppVersion)
	}
	if meta.Description != "" {
		comments = append(comments, "# Description: "+meta.Description)
	}

	manifest := bundleManifest{
		DefaultNamespace: cfg.Namespace,
		Helm: helmSource{
			Chart:   cfg.ChartName,
			Repo:    cfg.RepositoryURL,
			Version: version,
			ValuesFrom: []valuesFrom{{
				ConfigMapKeyRef: configMapKeyRef{
					Name: cfg.AppName + "-config",
					Key:  valuesKey,
				},
			}},
		},
		RolloutStrategy: rolloutStrategyML{
			MaxUnavailable:           cfg.Rollout.MaxUnavailable,
			MaxUnavailablePartitions: cfg.Rollout.MaxUnavailablePartitions,
			AutoPartitionSize:        cfg.Rollout.AutoPartitionSize,
		},
	}

	if cfg.TargetCluster != "" {
		manifest.Targets = []bundleTarget{{
			Name: cfg.TargetCluster,
			ClusterSelector: clusterSelector{
				MatchLabels: map[string]string{clusterNameLabel: cfg.TargetCluster},
			},
		}}
	}

	body, err := yaml.Marshal(manifest)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal,
			fmt.Sprintf("failed to render bundle manifest for %q", cfg.AppName), err)
	}

	if len(comments) == 0 {
		return string(body), nil
	}
	return strings.Join(comments, "\n") + "\n---\n" + string(body), nil
}

func renderConfigObject(cfg *resolver.FleetConfig, values string) (string, error) {
	cm := corev1.ConfigMap{
		TypeMeta: metav1.TypeMeta{
			APIVersion: "v1",
			Kind:       "ConfigMap",
		},
		ObjectMeta: metav1.ObjectMeta{
			Name:      cfg.AppName + "-config",
			Namespace: cfg.Namespace,
		},
		Data: map[string]string{valuesKey: values},
	}

	out, err := sigsyaml.Marshal(cm)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal,
			fmt.Sprintf("failed to render config object for %q", cfg.AppName), err)
	}
	return string(out), nil
}

func defaultValues(chartName string) string {
	return fmt.Sprintf(`# Helm Values for %s
replicaCount: 1

image:
  repository: eeacms/%s
  pullPolicy: IfNotPresent
  tag: "latest"

service:
  type: ClusterIP
  port: 80

ingress:
  enabled: false

resources:
  limits:
    cpu: 500m
    memory: 512Mi
  requests:
    cpu: 250m
    memory: 128Mi
`, chartName, chartName)
}
