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
	"github.com/go-conduit/conduit/internal/engine/repo"
	"github.com/go-conduit/conduit/internal/pkg/resolver"
	"github.com/google/wire"
)

// Services aggregates the engine's services.
type Services struct {
	Permission *PermissionService
	Pipeline   *PipelineService
	Execution  *ExecutionService
}

// ProviderSet wires the service layer.
var ProviderSet = wire.NewSet(NewServices)

func NewServices(
	repos *repo.Repositories,
	configResolver *resolver.Resolver,
	enqueuer Enqueuer,
	canceller Canceller,
) *Services {
	permission := NewPermissionService(repos.Permission, repos.User)
	return &Services{
		Permission: permission,
		Pipeline:   NewPipelineService(repos.Pipeline, repos.User, permission),
		Execution:  NewExecutionService(repos.Pipeline, repos.Execution, permission, configResolver, enqueuer, canceller),
	}
}
