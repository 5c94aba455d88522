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

// IUserRepository reads account records.
type IUserRepository interface {
	GetByUserId(userId string) (*model.User, error)
	Exists(userId string) (bool, error)
}

type UserRepo struct {
	db database.IDatabase
}

func NewUserRepo(db database.IDatabase) IUserRepository {
	return &UserRepo{db: db}
}

func (r *UserRepo) GetByUserId(userId string) (*model.User, error) {
	var user model.User
	err := r.db.Database().Where("user_id = ?", userId).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepo) Exists(userId string) (bool, error) {
	var count int64
	err := r.db.Database().Model(&model.User{}).
		Where("user_id = ?", userId).
		Count(&count).Error
	return count > 0, err
}
