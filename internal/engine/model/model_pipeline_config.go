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

package model

import "github.com/pkg/errors"

// YamlSource selects where a pipeline definition comes from.
type YamlSource string

const (
	// SourceEditor holds the YAML inline, authored in the web editor.
	SourceEditor YamlSource = "editor"
	// SourceRepo references a YAML file in a git repository.
	SourceRepo YamlSource = "repo"
)

// PipelineConfig is the 1:1 configuration record of a pipeline,
// latest-wins on update. Exactly one field group is active depending on
// YamlSource: YamlContent for editor, RepoUrl/RepoBranch/YamlFilePath for
// repo.
type PipelineConfig struct {
	BaseModel
	ConfigId     string     `gorm:"column:config_id;uniqueIndex" json:"configId"`
	PipelineId   string     `gorm:"column:pipeline_id;uniqueIndex" json:"pipelineId"`
	YamlSource   YamlSource `gorm:"column:yaml_source" json:"yamlSource"`
	YamlContent  string     `gorm:"column:yaml_content;type:text" json:"yamlContent,omitempty"`
	RepoUrl      string     `gorm:"column:repo_url" json:"repoUrl,omitempty"`
	RepoBranch   string     `gorm:"column:repo_branch" json:"repoBranch,omitempty"`
	YamlFilePath string     `gorm:"column:yaml_file_path" json:"yamlFilePath,omitempty"`
}

func (PipelineConfig) TableName() string {
	return "t_pipeline_config"
}

// Validate enforces the tagged-union invariant on the source field groups.
func (c *PipelineConfig) Validate() error {
	switch c.YamlSource {
	case SourceEditor:
		if c.YamlContent == "" {
			return errors.New("editor config requires yaml content")
		}
	case SourceRepo:
		if c.RepoUrl == "" {
			return errors.New("repo config requires a repository url")
		}
		if c.RepoBranch == "" {
			c.RepoBranch = "main"
		}
		if c.YamlFilePath == "" {
			c.YamlFilePath = "pipeline.yml"
		}
	default:
		return errors.Errorf("unknown yaml source: %q", c.YamlSource)
	}
	return nil
}

// UpdatePipelineConfigReq replaces the pipeline configuration.
type UpdatePipelineConfigReq struct {
	YamlSource   YamlSource `json:"yamlSource" binding:"required"`
	YamlContent  string     `json:"yamlContent"`
	RepoUrl      string     `json:"repoUrl"`
	RepoBranch   string     `json:"repoBranch"`
	YamlFilePath string     `json:"yamlFilePath"`
}
