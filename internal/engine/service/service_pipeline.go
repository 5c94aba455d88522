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

package service

import (
	"github.com/go-conduit/conduit/internal/engine/model"
	"github.com/go-conduit/conduit/internal/engine/repo"
	"github.com/go-conduit/conduit/pkg/id"
	"github.com/go-conduit/conduit/pkg/log"
	"github.com/go-conduit/conduit/pkg/token"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// PipelineService manages pipeline CRUD, configuration, and ownership.
type PipelineService struct {
	pipelineRepo repo.IPipelineRepository
	userRepo     repo.IUserRepository
	permission   *PermissionService
}

func NewPipelineService(pipelineRepo repo.IPipelineRepository, userRepo repo.IUserRepository, permission *PermissionService) *PipelineService {
	return &PipelineService{
		pipelineRepo: pipelineRepo,
		userRepo:     userRepo,
		permission:   permission,
	}
}

// Create registers a pipeline with its configuration and a freshly
// issued trigger token. The creator becomes the owner.
func (s *PipelineService) Create(ownerId string, req *model.CreatePipelineReq) (*model.PipelineDetail, error) {
	config := configFromReq(&req.Config)
	if err := config.Validate(); err != nil {
		return nil, err
	}

	triggerToken, err := token.Issue(s.pipelineRepo.TriggerTokenExists)
	if err != nil {
		return nil, errors.Wrap(err, "issue trigger token")
	}

	pipeline := &model.Pipeline{
		PipelineId:   id.ShortId(),
		OwnerId:      ownerId,
		Name:         req.Name,
		Description:  req.Description,
		TriggerToken: triggerToken,
		IsActive:     true,
	}
	if err := s.pipelineRepo.CreateWithConfig(pipeline, config); err != nil {
		return nil, errors.Wrap(err, "create pipeline")
	}

	log.Infow("pipeline created",
		"pipeline_id", pipeline.PipelineId,
		"owner_id", ownerId,
		"yaml_source", config.YamlSource,
	)
	return &model.PipelineDetail{
		Pipeline:     *pipeline,
		TriggerToken: triggerToken,
		Config:       config,
	}, nil
}

// Get loads a pipeline the caller can read. The trigger token and the
// raw YAML content are redacted below maintainer.
func (s *PipelineService) Get(pipelineId, userId string) (*model.PipelineDetail, error) {
	pipeline, err := s.load(pipelineId)
	if err != nil {
		return nil, err
	}

	level, err := s.permission.EffectiveLevel(pipeline, userId)
	if err != nil {
		return nil, err
	}
	if !level.AtLeast(model.LevelReader) {
		return nil, errors.Wrap(ErrAuthorizationDenied, "requires reader")
	}

	config, err := s.pipelineRepo.GetConfig(pipelineId)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "load config")
	}

	detail := &model.PipelineDetail{Pipeline: *pipeline, Config: config}
	if level.AtLeast(model.LevelMaintainer) {
		detail.TriggerToken = pipeline.TriggerToken
	} else if config != nil {
		// Readers see where the configuration comes from, not its body.
		redacted := *config
		redacted.YamlContent = ""
		detail.Config = &redacted
	}
	return detail, nil
}

// List returns every pipeline the user owns or holds a grant on.
func (s *PipelineService) List(userId string) ([]model.Pipeline, error) {
	return s.pipelineRepo.ListAccessible(userId)
}

// Update applies partial metadata changes. Maintainer and up.
func (s *PipelineService) Update(pipelineId, userId string, req *model.UpdatePipelineReq) (*model.Pipeline, error) {
	pipeline, err := s.load(pipelineId)
	if err != nil {
		return nil, err
	}
	if err := s.permission.Authorize(pipeline, userId, model.LevelMaintainer); err != nil {
		return nil, err
	}

	if req.Name != nil {
		pipeline.Name = *req.Name
	}
	if req.Description != nil {
		pipeline.Description = *req.Description
	}
	if req.IsActive != nil {
		pipeline.IsActive = *req.IsActive
	}
	if err := s.pipelineRepo.Update(pipeline); err != nil {
		return nil, errors.Wrap(err, "update pipeline")
	}
	return pipeline, nil
}

// UpdateConfig replaces the pipeline configuration, latest-wins. The new
// config takes effect on the next trigger; in-flight executions keep the
// definition they resolved at trigger time.
func (s *PipelineService) UpdateConfig(pipelineId, userId string, req *model.UpdatePipelineConfigReq) (*model.PipelineConfig, error) {
	pipeline, err := s.load(pipelineId)
	if err != nil {
		return nil, err
	}
	if err := s.permission.Authorize(pipeline, userId, model.LevelMaintainer); err != nil {
		return nil, err
	}

	config := configFromReq(req)
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.PipelineId = pipelineId

	if err := s.pipelineRepo.ReplaceConfig(config); err != nil {
		return nil, errors.Wrap(err, "replace config")
	}
	log.Infow("pipeline config replaced",
		"pipeline_id", pipelineId,
		"yaml_source", config.YamlSource,
	)
	return config, nil
}

// Delete removes the pipeline and its dependents. Owner only.
func (s *PipelineService) Delete(pipelineId, userId string) error {
	pipeline, err := s.load(pipelineId)
	if err != nil {
		return err
	}
	if err := s.permission.Authorize(pipeline, userId, model.LevelOwner); err != nil {
		return err
	}
	if err := s.pipelineRepo.Delete(pipelineId); err != nil {
		return errors.Wrap(err, "delete pipeline")
	}
	log.Infow("pipeline deleted", "pipeline_id", pipelineId)
	return nil
}

// Transfer moves ownership. The new owner's stored grant, if any, is
// dropped since ownership subsumes it.
func (s *PipelineService) Transfer(pipelineId, actorId string, req *model.TransferOwnershipReq) error {
	pipeline, err := s.load(pipelineId)
	if err != nil {
		return err
	}
	if err := s.permission.Authorize(pipeline, actorId, model.LevelOwner); err != nil {
		return err
	}

	exists, err := s.userRepo.Exists(req.NewOwnerId)
	if err != nil {
		return errors.Wrap(err, "check new owner")
	}
	if !exists {
		return errors.Wrapf(ErrUserNotFound, "user %q", req.NewOwnerId)
	}

	if grant, err := s.permission.permissionRepo.Get(pipelineId, req.NewOwnerId); err == nil {
		if err := s.permission.permissionRepo.Delete(grant.PermissionId); err != nil {
			return errors.Wrap(err, "drop new owner grant")
		}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(err, "check new owner grant")
	}

	if err := s.pipelineRepo.UpdateOwner(pipelineId, req.NewOwnerId); err != nil {
		return errors.Wrap(err, "transfer ownership")
	}
	log.Infow("pipeline ownership transferred",
		"pipeline_id", pipelineId,
		"from", pipeline.OwnerId,
		"to", req.NewOwnerId,
	)
	return nil
}

func (s *PipelineService) load(pipelineId string) (*model.Pipeline, error) {
	pipeline, err := s.pipelineRepo.GetByPipelineId(pipelineId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "load pipeline")
	}
	return pipeline, nil
}

func configFromReq(req *model.UpdatePipelineConfigReq) *model.PipelineConfig {
	return &model.PipelineConfig{
		ConfigId:     id.ShortId(),
		YamlSource:   req.YamlSource,
		YamlContent:  req.YamlContent,
		RepoUrl:      req.RepoUrl,
		RepoBranch:   req.RepoBranch,
		YamlFilePath: req.YamlFilePath,
	}
}
