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

package gitfs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-conduit/conduit/internal/pkg/resolver"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git binary not available")
	}
}

// initRepo builds a local repository with one commit on branch main.
func initRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()

	run := func(args ...string) {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, "git %v: %s", args, out)
	}

	run("init", "--quiet", "--initial-branch=main")
	run("config", "user.email", "ci@example.com")
	run("config", "user.name", "ci")

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	run("add", ".")
	run("commit", "--quiet", "-m", "init")

	return dir
}

func TestFetchFile(t *testing.T) {
	requireGit(t)
	repo := initRepo(t, map[string]string{
		"pipeline.yml": "tasks:\n  - command: make\n",
	})

	c := NewClient("", 30*time.Second, "")
	data, err := c.FetchFile(context.Background(), repo, "main", "pipeline.yml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "make")
}

func TestFetchFileNested(t *testing.T) {
	requireGit(t)
	repo := initRepo(t, map[string]string{
		"ci/build.yml": "tasks:\n  - command: go build\n",
	})

	c := NewClient("", 30*time.Second, "")
	data, err := c.FetchFile(context.Background(), repo, "main", "ci/build.yml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "go build")
}

func TestFetchFileMissing(t *testing.T) {
	requireGit(t)
	repo := initRepo(t, map[string]string{
		"README.md": "hello",
	})

	c := NewClient("", 30*time.Second, "")
	_, err := c.FetchFile(context.Background(), repo, "main", "pipeline.yml")
	require.Error(t, err)
	assert.True(t, errors.Is(err, resolver.ErrMissingFile))
}

func TestFetchFileUnknownBranch(t *testing.T) {
	requireGit(t)
	repo := initRepo(t, map[string]string{
		"pipeline.yml": "tasks: []",
	})

	c := NewClient("", 30*time.Second, "")
	_, err := c.FetchFile(context.Background(), repo, "does-not-exist", "pipeline.yml")
	require.Error(t, err)
	assert.False(t, errors.Is(err, resolver.ErrMissingFile))
}

func TestSanitizePath(t *testing.T) {
	for _, bad := range []string{"", "/etc/passwd", "../outside", "a/../../outside"} {
		_, err := sanitizePath(bad)
		assert.Error(t, err, "path %q", bad)
	}
	for _, good := range []string{"pipeline.yml", "ci/pipeline.yml", "./pipeline.yml"} {
		rel, err := sanitizePath(good)
		require.NoError(t, err, "path %q", good)
		assert.NotEmpty(t, rel)
	}
}

func TestCloneWorkspaceCleanup(t *testing.T) {
	requireGit(t)
	repo := initRepo(t, map[string]string{"Makefile": "all:\n"})

	c := NewClient("", 30*time.Second, "")
	dir, cleanup, err := c.CloneWorkspace(context.Background(), repo, "main")
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "Makefile"))
	require.NoError(t, err)

	cleanup()
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}
