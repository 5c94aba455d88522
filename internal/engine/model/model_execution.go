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

import (
	"time"

	"github.com/go-conduit/conduit/pkg/statemachine"
)

// TriggerMethod records how an execution was started.
type TriggerMethod string

const (
	TriggerManual  TriggerMethod = "manual"
	TriggerWebhook TriggerMethod = "webhook"
)

// Execution is one run instance of a pipeline's task list.
//
// Invariants: CompletedAt is set iff the status is terminal; StartedAt is
// set iff the status is not pending; Logs only grow while the execution is
// non-terminal. TriggeredBy is null for webhook triggers, which carry no
// authenticated actor.
type Execution struct {
	BaseModel
	ExecutionId   string                       `gorm:"column:execution_id;uniqueIndex" json:"executionId"`
	PipelineId    string                       `gorm:"column:pipeline_id;index" json:"pipelineId"`
	Status        statemachine.ExecutionStatus `gorm:"column:status" json:"status"`
	TriggerMethod TriggerMethod                `gorm:"column:trigger_method" json:"triggerMethod"`
	TriggeredBy   *string                      `gorm:"column:triggered_by" json:"triggeredBy,omitempty"`
	StartedAt     *time.Time                   `gorm:"column:started_at" json:"startedAt,omitempty"`
	CompletedAt   *time.Time                   `gorm:"column:completed_at" json:"completedAt,omitempty"`
	Logs          string                       `gorm:"column:logs;type:longtext" json:"logs,omitempty"`
	ErrorMessage  *string                      `gorm:"column:error_message;type:text" json:"errorMessage,omitempty"`
}

func (Execution) TableName() string {
	return "t_execution"
}

// ExecutionSummary is the polling read model: current status plus minimal
// metadata, without the log body.
type ExecutionSummary struct {
	ExecutionId   string                       `json:"executionId"`
	PipelineId    string                       `json:"pipelineId"`
	Status        statemachine.ExecutionStatus `json:"status"`
	TriggerMethod TriggerMethod                `json:"triggerMethod"`
	TriggeredBy   *string                      `json:"triggeredBy,omitempty"`
	CreatedAt     time.Time                    `json:"createdAt"`
	StartedAt     *time.Time                   `json:"startedAt,omitempty"`
	CompletedAt   *time.Time                   `json:"completedAt,omitempty"`
	ErrorMessage  *string                      `json:"errorMessage,omitempty"`
}

// Summary strips the execution down to its polling shape.
func (e *Execution) Summary() ExecutionSummary {
	return ExecutionSummary{
		ExecutionId:   e.ExecutionId,
		PipelineId:    e.PipelineId,
		Status:        e.Status,
		TriggerMethod: e.TriggerMethod,
		TriggeredBy:   e.TriggeredBy,
		CreatedAt:     e.CreatedAt,
		StartedAt:     e.StartedAt,
		CompletedAt:   e.CompletedAt,
		ErrorMessage:  e.ErrorMessage,
	}
}
