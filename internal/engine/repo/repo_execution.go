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
	"time"

	"github.com/go-conduit/conduit/internal/engine/model"
	"github.com/go-conduit/conduit/pkg/database"
	"github.com/go-conduit/conduit/pkg/statemachine"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// executionLifecycle declares the legal status transitions. Its edge set
// drives the status preconditions on every write below, so a transition
// outside the declared edges either errors out or matches zero rows.
var executionLifecycle = statemachine.NewExecutionStateMachine()

// IExecutionRepository persists execution records. All state-changing
// writes carry a status precondition so that a terminal execution can
// never be mutated and transitions can never run backward, regardless of
// interleaving.
type IExecutionRepository interface {
	Create(execution *model.Execution) error
	GetByExecutionId(executionId string) (*model.Execution, error)
	ListByPipeline(pipelineId string, limit int) ([]model.Execution, error)
	// MarkRunning transitions pending → running and sets started_at.
	// Returns false if the execution was not pending.
	MarkRunning(executionId string) (bool, error)
	// AppendLogs appends a chunk to the execution log while the execution
	// is non-terminal. Returns false if the execution was terminal.
	AppendLogs(executionId, chunk string) (bool, error)
	// Finalize writes the terminal status, completed_at and error message.
	// Returns false if the execution was already terminal; a non-terminal
	// target status is refused with statemachine.ErrInvalidTransition.
	Finalize(executionId string, status statemachine.ExecutionStatus, errorMessage *string) (bool, error)
	// HasRunning reports whether the pipeline currently has a running
	// execution.
	HasRunning(pipelineId string) (bool, error)
}

type ExecutionRepo struct {
	db database.IDatabase
}

func NewExecutionRepo(db database.IDatabase) IExecutionRepository {
	return &ExecutionRepo{db: db}
}

func (r *ExecutionRepo) Create(execution *model.Execution) error {
	return r.db.Database().Create(execution).Error
}

func (r *ExecutionRepo) GetByExecutionId(executionId string) (*model.Execution, error) {
	var execution model.Execution
	err := r.db.Database().Where("execution_id = ?", executionId).First(&execution).Error
	if err != nil {
		return nil, err
	}
	return &execution, nil
}

func (r *ExecutionRepo) ListByPipeline(pipelineId string, limit int) ([]model.Execution, error) {
	var executions []model.Execution
	tx := r.db.Database().
		Where("pipeline_id = ?", pipelineId).
		Order("created_at DESC")
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	err := tx.Find(&executions).Error
	return executions, err
}

func (r *ExecutionRepo) MarkRunning(executionId string) (bool, error) {
	now := time.Now()
	res := r.db.Database().Model(&model.Execution{}).
		Where("execution_id = ? AND status IN ?", executionId,
			executionLifecycle.Sources(statemachine.ExecutionRunning)).
		Updates(map[string]any{
			"status":     statemachine.ExecutionRunning,
			"started_at": now,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *ExecutionRepo) AppendLogs(executionId, chunk string) (bool, error) {
	res := r.db.Database().Model(&model.Execution{}).
		Where("execution_id = ? AND status IN ?", executionId,
			[]statemachine.ExecutionStatus{statemachine.ExecutionPending, statemachine.ExecutionRunning}).
		Update("logs", gorm.Expr("CONCAT(IFNULL(logs, ''), ?)", chunk))
	return res.RowsAffected > 0, res.Error
}

func (r *ExecutionRepo) Finalize(executionId string, status statemachine.ExecutionStatus, errorMessage *string) (bool, error) {
	if !status.IsTerminal() {
		return false, errors.Wrapf(statemachine.ErrInvalidTransition, "%s is not terminal", status)
	}
	sources := executionLifecycle.Sources(status)
	if len(sources) == 0 {
		return false, errors.Wrapf(statemachine.ErrInvalidTransition, "no transition into %s", status)
	}

	now := time.Now()
	res := r.db.Database().Model(&model.Execution{}).
		Where("execution_id = ? AND status IN ?", executionId, sources).
		Updates(map[string]any{
			"status":        status,
			"completed_at":  now,
			"error_message": errorMessage,
		})
	return res.RowsAffected > 0, res.Error
}

func (r *ExecutionRepo) HasRunning(pipelineId string) (bool, error) {
	var count int64
	err := r.db.Database().Model(&model.Execution{}).
		Where("pipeline_id = ? AND status = ?", pipelineId, statemachine.ExecutionRunning).
		Count(&count).Error
	return count > 0, err
}
