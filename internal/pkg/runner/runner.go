// Copyright 2025 Conduit Team
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package runner executes pipeline tasks. The TaskRunner contract is the
// seam for swapping execution backends without touching lifecycle logic.
package runner

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// TaskSpec is one task to execute, with its environment.
type TaskSpec struct {
	Name      string
	Command   string
	EnvImage  string
	Variables map[string]string
	// WorkspaceDir is mounted (or used as working dir) when set.
	WorkspaceDir string
}

// Result is the outcome of a task that actually ran.
type Result struct {
	ExitCode int
	Output   string
	Duration time.Duration
}

// TaskRunner runs a single task to completion. A non-zero exit code is a
// normal Result, not an error; err is reserved for tasks that could not
// run or were interrupted (ctx cancel, timeout). On interruption the
// partial output is still returned when available.
type TaskRunner interface {
	Run(ctx context.Context, spec TaskSpec) (*Result, error)
}

// ShellRunner runs tasks through `docker run` when UseDocker is set,
// otherwise directly on the host shell.
type ShellRunner struct {
	// Shell is the host shell (default: /bin/sh). Inside containers the
	// command always runs under /bin/sh.
	Shell string
	// UseDocker wraps the command in a container of the task's env image.
	UseDocker bool
	// Timeout bounds a single task. Zero means no timeout.
	Timeout time.Duration
}

func NewShellRunner(shell string, useDocker bool, timeout time.Duration) *ShellRunner {
	if shell == "" {
		shell = "/bin/sh"
	}
	return &ShellRunner{Shell: shell, UseDocker: useDocker, Timeout: timeout}
}

func (r *ShellRunner) Run(ctx context.Context, spec TaskSpec) (*Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	var cmd *exec.Cmd
	if r.UseDocker {
		cmd = exec.CommandContext(ctx, "docker", r.dockerArgs(spec)...)
	} else {
		cmd = exec.CommandContext(ctx, r.Shell, "-c", spec.Command)
		cmd.Dir = spec.WorkspaceDir
		cmd.Env = os.Environ()
		for k, v := range spec.Variables {
			cmd.Env = append(cmd.Env, fmt.Sprintf("%s=%s", k, v))
		}
	}

	start := time.Now()
	out, err := cmd.CombinedOutput()
	duration := time.Since(start)

	if ctx.Err() != nil {
		return &Result{ExitCode: -1, Output: string(out), Duration: duration}, ctx.Err()
	}
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return &Result{ExitCode: exitErr.ExitCode(), Output: string(out), Duration: duration}, nil
		}
		return nil, err
	}
	return &Result{ExitCode: 0, Output: string(out), Duration: duration}, nil
}

// dockerArgs builds the `docker run` invocation: throwaway container of
// the env image, variables as -e flags, workspace mounted at /workspace.
func (r *ShellRunner) dockerArgs(spec TaskSpec) []string {
	args := []string{"run", "--rm"}
	for k, v := range spec.Variables {
		args = append(args, "-e", fmt.Sprintf("%s=%s", k, v))
	}
	if spec.WorkspaceDir != "" {
		args = append(args, "-v", fmt.Sprintf("%s:/workspace", spec.WorkspaceDir), "-w", "/workspace")
	}
	args = append(args, spec.EnvImage, "/bin/sh", "-c", spec.Command)
	return args
}
