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
	"context"

	"github.com/go-conduit/conduit/internal/engine/model"
	"github.com/go-conduit/conduit/internal/engine/repo"
	"github.com/go-conduit/conduit/internal/pkg/queue"
	"github.com/go-conduit/conduit/internal/pkg/resolver"
	"github.com/go-conduit/conduit/pkg/id"
	"github.com/go-conduit/conduit/pkg/log"
	"github.com/go-conduit/conduit/pkg/metrics"
	"github.com/go-conduit/conduit/pkg/statemachine"
	"github.com/go-conduit/conduit/pkg/token"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// Enqueuer puts run requests on the execution queue.
type Enqueuer interface {
	EnqueueRun(payload *queue.RunPayload) error
}

// Canceller requests cancellation of an in-flight execution.
type Canceller interface {
	Cancel(executionId string) error
}

// ExecutionService owns triggering, inspection and cancellation of
// executions.
type ExecutionService struct {
	pipelineRepo  repo.IPipelineRepository
	executionRepo repo.IExecutionRepository
	permission    *PermissionService
	resolver      *resolver.Resolver
	enqueuer      Enqueuer
	canceller     Canceller
}

func NewExecutionService(
	pipelineRepo repo.IPipelineRepository,
	executionRepo repo.IExecutionRepository,
	permission *PermissionService,
	configResolver *resolver.Resolver,
	enqueuer Enqueuer,
	canceller Canceller,
) *ExecutionService {
	return &ExecutionService{
		pipelineRepo:  pipelineRepo,
		executionRepo: executionRepo,
		permission:    permission,
		resolver:      configResolver,
		enqueuer:      enqueuer,
		canceller:     canceller,
	}
}

// TriggerManual starts an execution on behalf of an authenticated user.
// Developer and up.
func (s *ExecutionService) TriggerManual(ctx context.Context, pipelineId, userId string) (*model.Execution, error) {
	pipeline, err := s.pipelineRepo.GetByPipelineId(pipelineId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "load pipeline")
	}
	if err := s.permission.Authorize(pipeline, userId, model.LevelDeveloper); err != nil {
		metrics.TriggersRejectedTotal.WithLabelValues("authorization").Inc()
		return nil, err
	}
	return s.trigger(ctx, pipeline, model.TriggerManual, &userId)
}

// TriggerWebhook starts an execution for a trigger token. The caller is
// anonymous: an unknown token yields ErrNotFound and nothing else, and a
// known token of an inactive pipeline answers the same, so the response
// cannot be used to discover which pipelines exist.
func (s *ExecutionService) TriggerWebhook(ctx context.Context, rawToken string) (*model.Execution, error) {
	if len(rawToken) != token.Length {
		metrics.TriggersRejectedTotal.WithLabelValues("unknown_token").Inc()
		return nil, ErrNotFound
	}

	pipeline, err := s.pipelineRepo.GetByTriggerToken(rawToken)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.TriggersRejectedTotal.WithLabelValues("unknown_token").Inc()
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "look up trigger token")
	}
	if !token.Equal(pipeline.TriggerToken, rawToken) {
		metrics.TriggersRejectedTotal.WithLabelValues("unknown_token").Inc()
		return nil, ErrNotFound
	}

	execution, err := s.trigger(ctx, pipeline, model.TriggerWebhook, nil)
	if err != nil && errors.Is(err, ErrPipelineInactive) {
		// An inactive pipeline's token must be indistinguishable from an
		// unknown one on this anonymous path.
		return nil, errors.Wrap(ErrNotFound, "pipeline not found")
	}
	return execution, err
}

// trigger resolves the configuration, creates the pending record and
// enqueues the run. Resolution happens before the record exists: a
// pipeline with a broken config produces an error, not a failed
// execution.
func (s *ExecutionService) trigger(ctx context.Context, pipeline *model.Pipeline, method model.TriggerMethod, triggeredBy *string) (*model.Execution, error) {
	if !pipeline.IsActive {
		metrics.TriggersRejectedTotal.WithLabelValues("inactive").Inc()
		return nil, errors.Wrapf(ErrPipelineInactive, "pipeline %s", pipeline.PipelineId)
	}

	config, err := s.pipelineRepo.GetConfig(pipeline.PipelineId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			metrics.TriggersRejectedTotal.WithLabelValues("invalid_config").Inc()
			return nil, errors.Wrap(ErrNotFound, "pipeline has no configuration")
		}
		return nil, errors.Wrap(err, "load config")
	}

	definition, err := s.resolver.Resolve(ctx, config)
	if err != nil {
		metrics.TriggersRejectedTotal.WithLabelValues("invalid_config").Inc()
		return nil, err
	}

	execution := &model.Execution{
		ExecutionId:   id.ShortId(),
		PipelineId:    pipeline.PipelineId,
		Status:        statemachine.ExecutionPending,
		TriggerMethod: method,
		TriggeredBy:   triggeredBy,
	}
	if err := s.executionRepo.Create(execution); err != nil {
		return nil, errors.Wrap(err, "create execution")
	}

	payload := &queue.RunPayload{
		ExecutionId: execution.ExecutionId,
		PipelineId:  pipeline.PipelineId,
		Definition:  *definition,
	}
	if config.YamlSource == model.SourceRepo {
		payload.RepoUrl = config.RepoUrl
		payload.RepoBranch = config.RepoBranch
	}

	if err := s.enqueuer.EnqueueRun(payload); err != nil {
		// The record exists but no worker will pick it up. Fail it so it
		// does not sit pending forever.
		msg := "failed to enqueue execution"
		if _, ferr := s.executionRepo.Finalize(execution.ExecutionId, statemachine.ExecutionFailed, &msg); ferr != nil {
			log.Errorw("failed to finalize unenqueued execution",
				"execution_id", execution.ExecutionId, "error", ferr)
		}
		return nil, errors.Wrap(err, "enqueue execution")
	}

	metrics.TriggersTotal.WithLabelValues(string(method)).Inc()
	log.Infow("execution triggered",
		"execution_id", execution.ExecutionId,
		"pipeline_id", pipeline.PipelineId,
		"method", method,
	)
	return execution, nil
}

// Get returns the full execution record including logs. Reader and up.
func (s *ExecutionService) Get(executionId, userId string) (*model.Execution, error) {
	execution, pipeline, err := s.loadWithPipeline(executionId)
	if err != nil {
		return nil, err
	}
	if err := s.permission.Authorize(pipeline, userId, model.LevelReader); err != nil {
		return nil, err
	}
	return execution, nil
}

// List returns recent executions of a pipeline, newest first, without
// log bodies. Reader and up.
func (s *ExecutionService) List(pipelineId, userId string, limit int) ([]model.ExecutionSummary, error) {
	pipeline, err := s.pipelineRepo.GetByPipelineId(pipelineId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "load pipeline")
	}
	if err := s.permission.Authorize(pipeline, userId, model.LevelReader); err != nil {
		return nil, err
	}

	executions, err := s.executionRepo.ListByPipeline(pipelineId, limit)
	if err != nil {
		return nil, errors.Wrap(err, "list executions")
	}
	summaries := make([]model.ExecutionSummary, 0, len(executions))
	for i := range executions {
		summaries = append(summaries, executions[i].Summary())
	}
	return summaries, nil
}

// Cancel requests cancellation. Developer and up. Cancelling a terminal
// execution is an error; cancelling one already being cancelled is not.
func (s *ExecutionService) Cancel(executionId, userId string) error {
	execution, pipeline, err := s.loadWithPipeline(executionId)
	if err != nil {
		return err
	}
	if err := s.permission.Authorize(pipeline, userId, model.LevelDeveloper); err != nil {
		return err
	}
	if execution.Status.IsTerminal() {
		return errors.Wrapf(ErrExecutionTerminal, "status %s", execution.Status)
	}
	return s.canceller.Cancel(executionId)
}

func (s *ExecutionService) loadWithPipeline(executionId string) (*model.Execution, *model.Pipeline, error) {
	execution, err := s.executionRepo.GetByExecutionId(executionId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, errors.Wrap(err, "load execution")
	}
	pipeline, err := s.pipelineRepo.GetByPipelineId(execution.PipelineId)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, errors.Wrap(err, "load pipeline")
	}
	return execution, pipeline, nil
}
