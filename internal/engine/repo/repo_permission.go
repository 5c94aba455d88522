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
)

// IPermissionRepository persists per-pipeline permission grants.
type IPermissionRepository interface {
	Get(pipelineId, userId string) (*model.PipelinePermission, error)
	GetByPermissionId(permissionId string) (*model.PipelinePermission, error)
	List(pipelineId string) ([]model.PipelinePermission, error)
	Create(permission *model.PipelinePermission) error
	UpdateLevel(permissionId string, level model.PermissionLevel) error
	Delete(permissionId string) error
}

type PermissionRepo struct {
	db database.IDatabase
}

func NewPermissionRepo(db database.IDatabase) IPermissionRepository {
	return &PermissionRepo{db: db}
}

func (r *PermissionRepo) Get(pipelineId, userId string) (*model.PipelinePermission, error) {
	var permission model.PipelinePermission
	err := r.db.Database().
		Where("pipeline_id = ? AND user_id = ?", pipelineId, userId).
		First(&permission).Error
	if err != nil {
		return nil, err
	}
	return &permission, nil
}

func (r *PermissionRepo) GetByPermissionId(permissionId string) (*model.PipelinePermission, error) {
	var permission model.PipelinePermission
	err := r.db.Database().
		Where("permission_id = ?", permissionId).
		First(&permission).Error
	if err != nil {
		return nil, err
	}
	return &permission, nil
}

func (r *PermissionRepo) List(pipelineId string) ([]model.PipelinePermission, error) {
	var permissions []model.PipelinePermission
	err := r.db.Database().
		Where("pipeline_id = ?", pipelineId).
		Order("created_at ASC").
		Find(&permissions).Error
	return permissions, err
}

func (r *PermissionRepo) Create(permission *model.PipelinePermission) error {
	return r.db.Database().Create(permission).Error
}

func (r *PermissionRepo) UpdateLevel(permissionId string, level model.PermissionLevel) error {
	return r.db.Database().Model(&model.PipelinePermission{}).
		Where("permission_id = ?", permissionId).
		Update("permission_level", level).Error
}

func (r *PermissionRepo) Delete(permissionId string) error {
	return r.db.Database().
		Where("permission_id = ?", permissionId).
		Delete(&model.PipelinePermission{}).Error
}
