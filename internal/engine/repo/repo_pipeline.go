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

package repo

import (
	"github.com/go-conduit/conduit/internal/engine/model"
	"github.com/go-conduit/conduit/pkg/database"
	"gorm.io/gorm"
)

// IPipelineRepository persists pipelines and their 1:1 configuration.
type IPipelineRepository interface {
	CreateWithConfig(pipeline *model.Pipeline, config *model.PipelineConfig) error
	GetByPipelineId(pipelineId string) (*model.Pipeline, error)
	GetByTriggerToken(token string) (*model.Pipeline, error)
	ListByOwner(ownerId string) ([]model.Pipeline, error)
	ListAccessible(userId string) ([]model.Pipeline, error)
	Update(pipeline *model.Pipeline) error
	UpdateOwner(pipelineId, newOwnerId string) error
	Delete(pipelineId string) error
	TriggerTokenExists(token string) (bool, error)
	GetConfig(pipelineId string) (*model.PipelineConfig, error)
	ReplaceConfig(config *model.PipelineConfig) error
}

type PipelineRepo struct {
	db database.IDatabase
}

func NewPipelineRepo(db database.IDatabase) IPipelineRepository {
	return &PipelineRepo{db: db}
}

// CreateWithConfig inserts the pipeline and its initial configuration in
// one transaction.
func (r *PipelineRepo) CreateWithConfig(pipeline *model.Pipeline, config *model.PipelineConfig) error {
	return r.db.Database().Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(pipeline).Error; err != nil {
			return err
		}
		config.PipelineId = pipeline.PipelineId
		return tx.Create(config).Error
	})
}

func (r *PipelineRepo) GetByPipelineId(pipelineId string) (*model.Pipeline, error) {
	var pipeline model.Pipeline
	err := r.db.Database().Where("pipeline_id = ?", pipelineId).First(&pipeline).Error
	if err != nil {
		return nil, err
	}
	return &pipeline, nil
}

func (r *PipelineRepo) GetByTriggerToken(token string) (*model.Pipeline, error) {
	var pipeline model.Pipeline
	err := r.db.Database().Where("trigger_token = ?", token).First(&pipeline).Error
	if err != nil {
		return nil, err
	}
	return &pipeline, nil
}

func (r *PipelineRepo) ListByOwner(ownerId string) ([]model.Pipeline, error) {
	var pipelines []model.Pipeline
	err := r.db.Database().Where("owner_id = ?", ownerId).
		Order("created_at DESC").
		Find(&pipelines).Error
	return pipelines, err
}

// ListAccessible returns pipelines the user owns plus pipelines the user
// holds any grant on.
func (r *PipelineRepo) ListAccessible(userId string) ([]model.Pipeline, error) {
	var pipelines []model.Pipeline
	err := r.db.Database().
		Distinct("t_pipeline.*").
		Joins("LEFT JOIN t_pipeline_permission pp ON pp.pipeline_id = t_pipeline.pipeline_id").
		Where("t_pipeline.owner_id = ? OR pp.user_id = ?", userId, userId).
		Order("t_pipeline.created_at DESC").
		Find(&pipelines).Error
	return pipelines, err
}

func (r *PipelineRepo) Update(pipeline *model.Pipeline) error {
	return r.db.Database().Model(&model.Pipeline{}).
		Where("pipeline_id = ?", pipeline.PipelineId).
		Updates(map[string]any{
			"name":        pipeline.Name,
			"description": pipeline.Description,
			"is_active":   pipeline.IsActive,
		}).Error
}

func (r *PipelineRepo) UpdateOwner(pipelineId, newOwnerId string) error {
	return r.db.Database().Model(&model.Pipeline{}).
		Where("pipeline_id = ?", pipelineId).
		Update("owner_id", newOwnerId).Error
}

// Delete removes the pipeline and everything it exclusively owns:
// configuration, permission grants, and executions.
func (r *PipelineRepo) Delete(pipelineId string) error {
	return r.db.Database().Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("pipeline_id = ?", pipelineId).
			Delete(&model.Execution{}).Error; err != nil {
			return err
		}
		if err := tx.Where("pipeline_id = ?", pipelineId).
			Delete(&model.PipelinePermission{}).Error; err != nil {
			return err
		}
		if err := tx.Where("pipeline_id = ?", pipelineId).
			Delete(&model.PipelineConfig{}).Error; err != nil {
			return err
		}
		return tx.Where("pipeline_id = ?", pipelineId).
			Delete(&model.Pipeline{}).Error
	})
}

func (r *PipelineRepo) TriggerTokenExists(token string) (bool, error) {
	var count int64
	err := r.db.Database().Model(&model.Pipeline{}).
		Where("trigger_token = ?", token).
		Count(&count).Error
	return count > 0, err
}

func (r *PipelineRepo) GetConfig(pipelineId string) (*model.PipelineConfig, error) {
	var config model.PipelineConfig
	err := r.db.Database().Where("pipeline_id = ?", pipelineId).First(&config).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// ReplaceConfig overwrites the pipeline's configuration, latest-wins.
func (r *PipelineRepo) ReplaceConfig(config *model.PipelineConfig) error {
	return r.db.Database().Model(&model.PipelineConfig{}).
		Where("pipeline_id = ?", config.PipelineId).
		Updates(map[string]any{
			"yaml_source":    config.YamlSource,
			"yaml_content":   config.YamlContent,
			"repo_url":       config.RepoUrl,
			"repo_branch":    config.RepoBranch,
			"yaml_file_path": config.YamlFilePath,
		}).Error
}
