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

// PermissionLevel is the access tier of a user on a pipeline. The order is
// total: owner > maintainer > developer > reader > none. Comparison is
// defined here once; call sites never re-derive it.
type PermissionLevel string

const (
	LevelNone       PermissionLevel = "none"
	LevelReader     PermissionLevel = "reader"
	LevelDeveloper  PermissionLevel = "developer"
	LevelMaintainer PermissionLevel = "maintainer"
	LevelOwner      PermissionLevel = "owner"
)

var levelRank = map[PermissionLevel]int{
	LevelNone:       0,
	LevelReader:     1,
	LevelDeveloper:  2,
	LevelMaintainer: 3,
	LevelOwner:      4,
}

// Rank returns the position of the level in the total order. Unknown
// levels rank as none.
func (l PermissionLevel) Rank() int {
	return levelRank[l]
}

// AtLeast reports whether l is senior to or equal to required.
func (l PermissionLevel) AtLeast(required PermissionLevel) bool {
	return l.Rank() >= required.Rank()
}

// Grantable reports whether the level may be stored as a grant row. Owner
// is implicit from Pipeline.OwnerId and is never stored; none is the
// absence of a row.
func (l PermissionLevel) Grantable() bool {
	switch l {
	case LevelReader, LevelDeveloper, LevelMaintainer:
		return true
	}
	return false
}

// ParsePermissionLevel validates a grant level from user input.
func ParsePermissionLevel(s string) (PermissionLevel, error) {
	l := PermissionLevel(s)
	if !l.Grantable() {
		return "", errors.Errorf("invalid permission level: %q", s)
	}
	return l, nil
}

// PipelinePermission is a stored grant: (pipeline, user) → level. At most
// one row exists per pair.
type PipelinePermission struct {
	BaseModel
	PermissionId string          `gorm:"column:permission_id;uniqueIndex" json:"permissionId"`
	PipelineId   string          `gorm:"column:pipeline_id;uniqueIndex:uk_pipeline_user" json:"pipelineId"`
	UserId       string          `gorm:"column:user_id;uniqueIndex:uk_pipeline_user" json:"userId"`
	Level        PermissionLevel `gorm:"column:permission_level" json:"level"`
	GrantedBy    string          `gorm:"column:granted_by" json:"grantedBy"`
}

func (PipelinePermission) TableName() string {
	return "t_pipeline_permission"
}

// AddPermissionReq grants a user a level on a pipeline.
type AddPermissionReq struct {
	UserId string `json:"userId" binding:"required"`
	Level  string `json:"level" binding:"required"`
}

// UpdatePermissionReq changes an existing grant's level.
type UpdatePermissionReq struct {
	Level string `json:"level" binding:"required"`
}
