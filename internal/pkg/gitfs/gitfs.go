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

// Package gitfs fetches files out of git repositories via the git CLI.
// Every fetch is a fresh shallow clone into a throwaway directory.
package gitfs

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-conduit/conduit/internal/pkg/resolver"
	"github.com/go-conduit/conduit/pkg/log"
	"github.com/pkg/errors"
)

const defaultCloneTimeout = 2 * time.Minute

// Client shallow-clones repositories with the git binary.
type Client struct {
	// GitPath is the git executable (default: git).
	GitPath string
	// Timeout bounds a single clone. Zero means defaultCloneTimeout.
	Timeout time.Duration
	// WorkDir is the parent for throwaway clone dirs. Empty means the
	// system temp dir.
	WorkDir string
}

func NewClient(gitPath string, timeout time.Duration, workDir string) *Client {
	return &Client{GitPath: gitPath, Timeout: timeout, WorkDir: workDir}
}

func (c *Client) git() string {
	if c.GitPath != "" {
		return c.GitPath
	}
	return "git"
}

// FetchFile clones the branch and returns the file's bytes. A missing
// file wraps resolver.ErrMissingFile; everything else (unreachable
// remote, unknown branch, timeout) is a plain fetch error.
func (c *Client) FetchFile(ctx context.Context, repoURL, branch, path string) ([]byte, error) {
	rel, err := sanitizePath(path)
	if err != nil {
		return nil, err
	}

	dir, cleanup, err := c.CloneWorkspace(ctx, repoURL, branch)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	data, err := os.ReadFile(filepath.Join(dir, rel))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(resolver.ErrMissingFile, "%s on branch %s", path, branch)
		}
		return nil, errors.Wrapf(err, "read %s", path)
	}
	return data, nil
}

// CloneWorkspace shallow-clones the branch and returns the checkout
// directory with a cleanup func. Callers always run cleanup, also on
// error paths of their own.
func (c *Client) CloneWorkspace(ctx context.Context, repoURL, branch string) (string, func(), error) {
	if branch == "" {
		branch = "main"
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultCloneTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	dir, err := os.MkdirTemp(c.WorkDir, "conduit-clone-*")
	if err != nil {
		return "", nil, errors.Wrap(err, "create clone dir")
	}
	cleanup := func() {
		if err := os.RemoveAll(dir); err != nil {
			log.Warnw("failed to remove clone dir", "dir", dir, "error", err)
		}
	}

	args := []string{"clone", "--quiet", "--depth", "1", "--single-branch", "--branch", branch, repoURL, dir}
	cmd := exec.CommandContext(ctx, c.git(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		cleanup()
		if ctx.Err() != nil {
			return "", nil, errors.Wrapf(ctx.Err(), "clone %s (%s)", repoURL, branch)
		}
		return "", nil, errors.Wrapf(err, "clone %s (%s): %s", repoURL, branch, strings.TrimSpace(stderr.String()))
	}
	return dir, cleanup, nil
}

// sanitizePath rejects absolute paths and parent traversal so that a
// configured file path can never read outside the checkout.
func sanitizePath(path string) (string, error) {
	if path == "" {
		return "", errors.New("empty file path")
	}
	if filepath.IsAbs(path) {
		return "", errors.Errorf("absolute file path not allowed: %s", path)
	}
	rel := filepath.Clean(path)
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Errorf("file path escapes repository: %s", path)
	}
	return rel, nil
}
