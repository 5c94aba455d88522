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

package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-conduit/conduit/internal/engine/model"
	"github.com/pkg/errors"
	"sigs.k8s.io/yaml"
)

// DefaultEnvImage is the environment image used when the definition does
// not declare one.
const DefaultEnvImage = "ubuntu:24.10"

// Definition is the normalized pipeline definition: environment image,
// variables, and an ordered task list.
type Definition struct {
	EnvImage  string            `json:"env_image"`
	Variables map[string]string `json:"variables,omitempty"`
	Tasks     []Task            `json:"tasks"`
}

// Task is a single named command, executed in declared order.
type Task struct {
	Name    string `json:"name"`
	Command string `json:"command"`
}

// FileFetcher yields a file's bytes given a repository URL, branch and
// path. Implementations wrap ErrMissingFile when the file is absent.
type FileFetcher interface {
	FetchFile(ctx context.Context, repoURL, branch, path string) ([]byte, error)
}

// Resolver turns a pipeline configuration into a normalized Definition.
// Resolve is a pure function over its inputs; callers cache if repeated
// resolution is costly.
type Resolver struct {
	fetcher FileFetcher
}

// New creates a Resolver. The fetcher is only consulted for repo-sourced
// configurations.
func New(fetcher FileFetcher) *Resolver {
	return &Resolver{fetcher: fetcher}
}

// Resolve produces the Definition for a configuration, or a
// *ResolutionError distinguishing IO failure from malformed content.
func (r *Resolver) Resolve(ctx context.Context, config *model.PipelineConfig) (*Definition, error) {
	var raw []byte

	switch config.YamlSource {
	case model.SourceEditor:
		raw = []byte(config.YamlContent)
	case model.SourceRepo:
		if r.fetcher == nil {
			return nil, newError(KindFetchFailure, errors.New("no file fetcher configured"))
		}
		data, err := r.fetcher.FetchFile(ctx, config.RepoUrl, config.RepoBranch, config.YamlFilePath)
		if err != nil {
			if errors.Is(err, ErrMissingFile) {
				return nil, newError(KindMissingFile, err)
			}
			return nil, newError(KindFetchFailure, err)
		}
		raw = data
	default:
		return nil, newError(KindSchemaError, errors.Errorf("unknown yaml source: %q", config.YamlSource))
	}

	return Parse(raw)
}

// Parse parses and validates raw YAML into a Definition. Unknown
// top-level keys are ignored; tasks must be a non-empty ordered list and
// every task requires a non-empty command. A missing task name defaults
// to an index-based placeholder.
func Parse(raw []byte) (*Definition, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, newError(KindParseError, errors.New("definition is empty"))
	}

	jsonBytes, err := yaml.YAMLToJSON(raw)
	if err != nil {
		return nil, newError(KindParseError, fmt.Errorf("invalid yaml: %w", err))
	}

	var def Definition
	if err := json.Unmarshal(jsonBytes, &def); err != nil {
		return nil, newError(KindSchemaError, fmt.Errorf("definition does not match schema: %w", err))
	}

	if err := def.validate(); err != nil {
		return nil, newError(KindSchemaError, err)
	}

	def.applyDefaults()
	return &def, nil
}

func (d *Definition) validate() error {
	if len(d.Tasks) == 0 {
		return errors.New("'tasks' must be a non-empty list")
	}
	for i, task := range d.Tasks {
		if strings.TrimSpace(task.Command) == "" {
			return errors.Errorf("task %d has no command", i+1)
		}
	}
	return nil
}

func (d *Definition) applyDefaults() {
	if d.EnvImage == "" {
		d.EnvImage = DefaultEnvImage
	}
	if d.Variables == nil {
		d.Variables = map[string]string{}
	}
	for i := range d.Tasks {
		if strings.TrimSpace(d.Tasks[i].Name) == "" {
			d.Tasks[i].Name = fmt.Sprintf("task-%d", i+1)
		}
	}
}
