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

package runner

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSuccess(t *testing.T) {
	r := NewShellRunner("", false, 0)
	res, err := r.Run(context.Background(), TaskSpec{
		Name:    "hello",
		Command: "echo hello",
	})
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, res.Output, "hello")
}

func TestRunNonZeroExit(t *testing.T) {
	r := NewShellRunner("", false, 0)
	res, err := r.Run(context.Background(), TaskSpec{
		Name:    "fail",
		Command: "echo boom; exit 3",
	})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
	assert.Contains(t, res.Output, "boom")
}

func TestRunInjectsVariables(t *testing.T) {
	r := NewShellRunner("", false, 0)
	res, err := r.Run(context.Background(), TaskSpec{
		Name:      "env",
		Command:   "echo $GREETING",
		Variables: map[string]string{"GREETING": "bonjour"},
	})
	require.NoError(t, err)
	assert.Contains(t, res.Output, "bonjour")
}

func TestRunUsesWorkspaceDir(t *testing.T) {
	dir := t.TempDir()
	r := NewShellRunner("", false, 0)
	res, err := r.Run(context.Background(), TaskSpec{
		Name:         "pwd",
		Command:      "pwd",
		WorkspaceDir: dir,
	})
	require.NoError(t, err)
	assert.Contains(t, res.Output, dir)
}

func TestRunTimeout(t *testing.T) {
	r := NewShellRunner("", false, 100*time.Millisecond)
	res, err := r.Run(context.Background(), TaskSpec{
		Name:    "sleep",
		Command: "sleep 5",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotNil(t, res)
	assert.Equal(t, -1, res.ExitCode)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	r := NewShellRunner("", false, 0)
	_, err := r.Run(ctx, TaskSpec{
		Name:    "sleep",
		Command: "sleep 5",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDockerArgs(t *testing.T) {
	r := NewShellRunner("", true, 0)
	args := r.dockerArgs(TaskSpec{
		Command:      "make build",
		EnvImage:     "golang:1.25",
		WorkspaceDir: "/tmp/ws",
	})
	assert.Equal(t, "run", args[0])
	assert.Contains(t, args, "--rm")
	assert.Contains(t, args, "/tmp/ws:/workspace")
	assert.Contains(t, args, "golang:1.25")
	assert.Equal(t, "make build", args[len(args)-1])
}
