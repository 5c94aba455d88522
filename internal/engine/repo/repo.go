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
	"github.com/go-conduit/conduit/pkg/database"
	"github.com/google/wire"
)

// ProviderSet is the Wire provider set for the repo package.
var ProviderSet = wire.NewSet(NewRepositories)

// Repositories aggregates all repositories.
type Repositories struct {
	User       IUserRepository
	Pipeline   IPipelineRepository
	Permission IPermissionRepository
	Execution  IExecutionRepository
}

// NewRepositories initializes all repositories over one database handle.
func NewRepositories(db database.IDatabase) *Repositories {
	return &Repositories{
		User:       NewUserRepo(db),
		Pipeline:   NewPipelineRepo(db),
		Permission: NewPermissionRepo(db),
		Execution:  NewExecutionRepo(db),
	}
}
