/*
Copyright © 2025 European Environment Agency
SPDX-License-Identifier: Apache-2.0
*/

// Package runner executes external CLI tools with a bounded timeout.
//
// The rest of the pipeline treats tool invocations as fallible synchronous
// calls returning (ok, combined output). Exit codes, signals, and timeouts all
// collapse into the boolean; callers decide how to degrade.
package runner

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single tool invocation.
const DefaultTimeout = 30 * time.Second

// Runner executes an external tool and returns whether it succeeded along
// with its captured output. On success the output is stdout; on failure it is
// whatever diagnostic text the tool produced.
type Runner interface {
	Run(ctx context.Context, tool string, args []string, env map[string]string) (bool, string)
}

// ExecRunner runs tools through os/exec with a per-invocation timeout.
type ExecRunner struct {
	Timeout time.Duration
}

// NewExecRunner creates an ExecRunner with the default timeout.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{Timeout: DefaultTimeout}
}

// Run executes the tool and captures stdout and stderr separately. A non-zero
// exit, a missing binary, or a timeout all report ok=false with the best
// available diagnostic text.
func (r *ExecRunner) Run(ctx context.Context, tool string, args []string, env map[string]string) (bool, string) {
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	path, err := exec.LookPath(tool)
	if err != nil {
		slog.Debug("tool not found in PATH", "tool", tool, "error", err)
		return false, err.Error()
	}

	cmd := exec.CommandContext(ctx, path, args...)
	if len(env) > 0 {
		cmd.Env = os.Environ()
		for k, v := range env {
			cmd.Env = append(cmd.Env, k+"="+v)
		}
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if ctx.Err() == context.DeadlineExceeded {
		slog.Debug("tool invocation timed out", "tool", tool, "timeout", timeout)
		return false, "command timed out"
	}

	if runErr != nil {
		out := strings.TrimSpace(stderr.String())
		if out == "" {
			out = runErr.Error()
		}
		slog.Debug("tool invocation failed",
			"tool", tool,
			"args", strings.Join(args, " "),
			"error", runErr,
		)
		return false, out
	}

	return true, stdout.String()
}
