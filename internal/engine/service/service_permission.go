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
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// PermissionService evaluates effective access and manages grants.
// Ownership is implicit: the owner always evaluates to LevelOwner and
// never appears in the grants table.
type PermissionService struct {
	permissionRepo repo.IPermissionRepository
	userRepo       repo.IUserRepository
}

func NewPermissionService(permissionRepo repo.IPermissionRepository, userRepo repo.IUserRepository) *PermissionService {
	return &PermissionService{
		permissionRepo: permissionRepo,
		userRepo:       userRepo,
	}
}

// EffectiveLevel computes the user's access to the pipeline: owner if
// the user owns it, otherwise the stored grant, otherwise none.
func (s *PermissionService) EffectiveLevel(pipeline *model.Pipeline, userId string) (model.PermissionLevel, error) {
	if pipeline.OwnerId == userId {
		return model.LevelOwner, nil
	}
	grant, err := s.permissionRepo.Get(pipeline.PipelineId, userId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.LevelNone, nil
		}
		return model.LevelNone, errors.Wrap(err, "load permission grant")
	}
	return grant.Level, nil
}

// Authorize returns ErrAuthorizationDenied unless the user's effective
// level is at least the required one.
func (s *PermissionService) Authorize(pipeline *model.Pipeline, userId string, atLeast model.PermissionLevel) error {
	level, err := s.EffectiveLevel(pipeline, userId)
	if err != nil {
		return err
	}
	if !level.AtLeast(atLeast) {
		return errors.Wrapf(ErrAuthorizationDenied, "requires %s", atLeast)
	}
	return nil
}

// ListGrants returns the pipeline's stored grants. Requires maintainer
// access: the grant table names users, which readers have no business
// enumerating.
func (s *PermissionService) ListGrants(pipeline *model.Pipeline, actorId string) ([]model.PipelinePermission, error) {
	if err := s.Authorize(pipeline, actorId, model.LevelMaintainer); err != nil {
		return nil, err
	}
	return s.permissionRepo.List(pipeline.PipelineId)
}

// Grant gives a user a permission level on the pipeline. Only the owner
// grants; the owner itself cannot be a grantee.
func (s *PermissionService) Grant(pipeline *model.Pipeline, actorId string, req *model.AddPermissionReq) (*model.PipelinePermission, error) {
	if err := s.Authorize(pipeline, actorId, model.LevelOwner); err != nil {
		return nil, err
	}

	level := model.PermissionLevel(req.Level)
	if !level.Grantable() {
		return nil, errors.Wrapf(ErrInvalidLevel, "level %q", req.Level)
	}
	if req.UserId == pipeline.OwnerId {
		return nil, ErrOwnerPermission
	}

	exists, err := s.userRepo.Exists(req.UserId)
	if err != nil {
		return nil, errors.Wrap(err, "check user")
	}
	if !exists {
		return nil, errors.Wrapf(ErrUserNotFound, "user %q", req.UserId)
	}

	if _, err := s.permissionRepo.Get(pipeline.PipelineId, req.UserId); err == nil {
		return nil, ErrDuplicatePermission
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.Wrap(err, "check existing grant")
	}

	permission := &model.PipelinePermission{
		PermissionId: id.ShortId(),
		PipelineId:   pipeline.PipelineId,
		UserId:       req.UserId,
		Level:        level,
		GrantedBy:    actorId,
	}
	if err := s.permissionRepo.Create(permission); err != nil {
		return nil, errors.Wrap(err, "create grant")
	}

	log.Infow("permission granted",
		"pipeline_id", pipeline.PipelineId,
		"user_id", req.UserId,
		"level", level,
		"granted_by", actorId,
	)
	return permission, nil
}

// UpdateGrant changes an existing grant's level. Owner only.
func (s *PermissionService) UpdateGrant(pipeline *model.Pipeline, actorId, permissionId string, req *model.UpdatePermissionReq) (*model.PipelinePermission, error) {
	if err := s.Authorize(pipeline, actorId, model.LevelOwner); err != nil {
		return nil, err
	}

	level := model.PermissionLevel(req.Level)
	if !level.Grantable() {
		return nil, errors.Wrapf(ErrInvalidLevel, "level %q", req.Level)
	}

	permission, err := s.permissionRepo.GetByPermissionId(permissionId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "load grant")
	}
	if permission.PipelineId != pipeline.PipelineId {
		return nil, ErrNotFound
	}

	if err := s.permissionRepo.UpdateLevel(permissionId, level); err != nil {
		return nil, errors.Wrap(err, "update grant")
	}
	permission.Level = level
	return permission, nil
}

// RevokeGrant removes a grant. Owner only.
func (s *PermissionService) RevokeGrant(pipeline *model.Pipeline, actorId, permissionId string) error {
	if err := s.Authorize(pipeline, actorId, model.LevelOwner); err != nil {
		return err
	}

	permission, err := s.permissionRepo.GetByPermissionId(permissionId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return errors.Wrap(err, "load grant")
	}
	if permission.PipelineId != pipeline.PipelineId {
		return ErrNotFound
	}
	return s.permissionRepo.Delete(permissionId)
}
