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

// Pipeline is a named, owned unit of CI/CD configuration with a unique
// webhook trigger token. The trigger token is issued once at creation and
// never regenerated implicitly.
type Pipeline struct {
	BaseModel
	PipelineId   string `gorm:"column:pipeline_id;uniqueIndex" json:"pipelineId"`
	OwnerId      string `gorm:"column:owner_id;index" json:"ownerId"`
	Name         string `gorm:"column:name" json:"name"`
	Description  string `gorm:"column:description" json:"description"`
	TriggerToken string `gorm:"column:trigger_token;uniqueIndex" json:"-"`
	IsActive     bool   `gorm:"column:is_active;default:true" json:"isActive"`
}

func (Pipeline) TableName() string {
	return "t_pipeline"
}

// CreatePipelineReq creates a pipeline together with its initial
// configuration.
type CreatePipelineReq struct {
	Name        string                   `json:"name" binding:"required"`
	Description string                   `json:"description"`
	Config      UpdatePipelineConfigReq  `json:"config" binding:"required"`
}

// UpdatePipelineReq updates mutable pipeline attributes.
type UpdatePipelineReq struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsActive    *bool   `json:"isActive"`
}

// TransferOwnershipReq moves the pipeline to a new owner. Owner-only.
type TransferOwnershipReq struct {
	NewOwnerId string `json:"newOwnerId" binding:"required"`
}

// PipelineDetail is the pipeline read model. TriggerToken and YamlContent
// are only populated for maintainer+ callers.
type PipelineDetail struct {
	Pipeline
	TriggerToken string          `json:"triggerToken,omitempty"`
	Config       *PipelineConfig `json:"config,omitempty"`
}
