/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

package release

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/eea/fleetgen/pkg/runner"
)

// rancherTool proxies kubectl through the cluster-management CLI so the
// secret read happens in the currently selected context.
const rancherTool = "rancher"

// DecodeReleaseMetadata recovers chart metadata from the persisted release
// record backing a deployed release. The record payload is nested through
// multiple transport encodings; a failure at any stage yields an empty
// ChartMetadata, never a partial one and never an error.
//
// This path is only worth taking when the package manager's own metadata
// query could not fill in version information.
func DecodeReleaseMetadata(ctx context.Context, r runner.Runner, releaseName, namespace string) ChartMetadata {
	secretName := fmt.Sprintf("sh.helm.release.v1.%s.v1", releaseName)

	ok, out := r.Run(ctx, rancherTool,
		[]string{"kubectl", "get", "secret", secretName, "-n", namespace, "-o", "json"}, nil)
	if !ok || strings.TrimSpace(out) == "" {
		slog.Debug("release record not readable", "secret", secretName, "namespace", namespace)
		decodeTotal.WithLabelValues("fetch_error").Inc()
		return ChartMetadata{}
	}

	var secret struct {
		Data struct {
			Release string `json:"release"`
		} `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &secret); err != nil {
		slog.Debug("release record is not valid JSON", "secret", secretName, "error", err)
		decodeTotal.WithLabelValues("decode_error").Inc()
		return ChartMetadata{}
	}
	if secret.Data.Release == "" {
		slog.Debug("release record has no payload", "secret", secretName)
		decodeTotal.WithLabelValues("decode_error").Inc()
		return ChartMetadata{}
	}

	meta, err := decodePayload(secret.Data.Release)
	if err != nil {
		slog.Debug("failed to decode release payload",
			"release", releaseName, "namespace", namespace, "error", err)
		decodeTotal.WithLabelValues("decode_error").Inc()
		return ChartMetadata{}
	}

	decodeTotal.WithLabelValues("success").Inc()
	return meta
}

// decodePayload runs the fixed four-stage pipeline:
//
//  1. base64-decode the payload to text
//  2. strip one pair of surrounding quotes (double-JSON-encoding artifact)
//  3. base64-decode again to compressed bytes
//  4. gzip-decompress and parse the chart.metadata sub-object
//
// Each stage only runs on the previous stage's valid output.
func decodePayload(payload string) (ChartMetadata, error) {
	once, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return ChartMetadata{}, fmt.Errorf("outer base64: %w", err)
	}

	text := string(once)
	if len(text) >= 2 && strings.HasPrefix(text, `"`) && strings.HasSuffix(text, `"`) {
		text = text[1 : len(text)-1]
	}

	compressed, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return ChartMetadata{}, fmt.Errorf("inner base64: %w", err)
	}

	zr, err := gzip.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return ChartMetadata{}, fmt.Errorf("gzip: %w", err)
	}
	defer zr.Close()

	raw, err := io.ReadAll(zr)
	if err != nil {
		return ChartMetadata{}, fmt.Errorf("gzip: %w", err)
	}

	var doc struct {
		Chart struct {
			Metadata *ChartMetadata `json:"metadata"`
		} `json:"chart"`
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return ChartMetadata{}, fmt.Errorf("release JSON: %w", err)
	}
	if doc.Chart.Metadata == nil {
		return ChartMetadata{}, fmt.Errorf("release JSON: missing chart metadata")
	}

	return *doc.Chart.Metadata, nil
}
