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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// encodePayload builds a payload the way the deployment tooling stores
// it: JSON, gzipped, base64, quoted, base64 again.
func encodePayload(t *testing.T, doc any) string {
	t.Helper()

	raw, err := json.Marshal(doc)
	require.NoError(t, err)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err = zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	inner := base64.StdEncoding.EncodeToString(buf.Bytes())
	return base64.StdEncoding.EncodeToString([]byte(`"` + inner + `"`))
}

func releaseDoc(name, version, appVersion string) map[string]any {
	return map[string]any{
		"chart": map[string]any{
			"metadata": map[string]any{
				"name":       name,
				"version":    version,
				"appVersion": appVersion,
			},
		},
	}
}

func TestDecodePayload(t *testing.T) {
	meta, err := decodePayload(encodePayload(t, releaseDoc("postgres", "1.2.0", "15.3")))
	require.NoError(t, err)

	assert.Equal(t, "postgres", meta.Name)
	assert.Equal(t, "1.2.0", meta.Version)
	assert.Equal(t, "15.3", meta.AppVersion)
	assert.False(t, meta.Empty())
}

func TestDecodePayloadWithoutQuoteWrapping(t *testing.T) {
	raw, err := json.Marshal(releaseDoc("redis", "2.0.0", "7.2"))
	require.NoError(t, err)

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err = zw.Write(raw)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	inner := base64.StdEncoding.EncodeToString(buf.Bytes())
	payload := base64.StdEncoding.EncodeToString([]byte(inner))

	meta, err := decodePayload(payload)
	require.NoError(t, err)
	assert.Equal(t, "redis", meta.Name)
}

func TestDecodePayloadErrors(t *testing.T) {
	valid := encodePayload(t, releaseDoc("postgres", "1.2.0", "15.3"))

	gzipless := base64.StdEncoding.EncodeToString(
		[]byte(`"` + base64.StdEncoding.EncodeToString([]byte("not gzip")) + `"`))

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("not json"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	badJSON := base64.StdEncoding.EncodeToString(
		[]byte(`"` + base64.StdEncoding.EncodeToString(buf.Bytes()) + `"`))

	tests := []struct {
		name    string
		payload string
	}{
		{"not base64", "!!! definitely not base64 !!!"},
		{"inner not base64", base64.StdEncoding.EncodeToString([]byte(`"### nope ###"`))},
		{"not gzip", gzipless},
		{"not json", badJSON},
		{"no chart metadata", encodePayload(t, map[string]any{"chart": map[string]any{}})},
		{"truncated", valid[:len(valid)/2]},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			meta, err := decodePayload(tc.payload)
			assert.Error(t, err)
			assert.True(t, meta.Empty(), "failed decode must yield an empty record")
		})
	}
}

func TestDecodeReleaseMetadata(t *testing.T) {
	payload := encodePayload(t, releaseDoc("postgres", "1.2.0", "15.3"))
	secret := fmt.Sprintf(`{"data":{"release":%q}}`, payload)

	r := &scriptedRunner{responses: map[string]scriptedResponse{
		"rancher kubectl get secret sh.helm.release.v1.db.v1 -n data -o json": {ok: true, out: secret},
	}}

	meta := DecodeReleaseMetadata(context.Background(), r, "db", "data")
	assert.Equal(t, "postgres", meta.Name)
	assert.Equal(t, "1.2.0", meta.Version)
	assert.Equal(t, "15.3", meta.AppVersion)
}

func TestDecodeReleaseMetadataFailuresYieldEmpty(t *testing.T) {
	tests := []struct {
		name     string
		response scriptedResponse
	}{
		{"command fails", scriptedResponse{ok: false, out: "secret not found"}},
		{"empty output", scriptedResponse{ok: true, out: ""}},
		{"not json", scriptedResponse{ok: true, out: "garbage"}},
		{"no payload", scriptedResponse{ok: true, out: `{"data":{}}`}},
		{"corrupt payload", scriptedResponse{ok: true, out: `{"data":{"release":"%%%"}}`}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			r := &scriptedRunner{responses: map[string]scriptedResponse{
				"rancher kubectl get secret sh.helm.release.v1.db.v1 -n data -o json": tc.response,
			}}
			meta := DecodeReleaseMetadata(context.Background(), r, "db", "data")
			assert.True(t, meta.Empty())
		})
	}
}

// scriptedRunner replays canned command output keyed by the full
// command line.
type scriptedRunner struct {
	responses map[string]scriptedResponse
	calls     []string
	envs      []map[string]string
}

type scriptedResponse struct {
	ok  bool
	out string
}

func (r *scriptedRunner) Run(_ context.Context, tool string, args []string, env map[string]string) (bool, string) {
	key := tool + " " + strings.Join(args, " ")
	r.calls = append(r.calls, key)
	r.envs = append(r.envs, env)
	resp, found := r.responses[key]
	if !found {
		return false, "unexpected command: " + key
	}
	return resp.ok, resp.out
}
