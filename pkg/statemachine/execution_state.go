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

package statemachine

// ExecutionStatus is the lifecycle state of a pipeline execution.
type ExecutionStatus string

const (
	ExecutionPending   ExecutionStatus = "pending"
	ExecutionRunning   ExecutionStatus = "running"
	ExecutionSuccess   ExecutionStatus = "success"
	ExecutionFailed    ExecutionStatus = "failed"
	ExecutionCancelled ExecutionStatus = "cancelled"
)

// IsTerminal reports whether the status is terminal. Terminal executions
// are immutable.
func (s ExecutionStatus) IsTerminal() bool {
	return s == ExecutionSuccess || s == ExecutionFailed || s == ExecutionCancelled
}

// Valid reports whether s is a known status value.
func (s ExecutionStatus) Valid() bool {
	switch s {
	case ExecutionPending, ExecutionRunning, ExecutionSuccess, ExecutionFailed, ExecutionCancelled:
		return true
	}
	return false
}

// NewExecutionStateMachine builds the execution lifecycle FSM:
//
//	pending → running → {success, failed, cancelled}
//	pending → {failed, cancelled}
//
// pending → failed covers executions that never get to run because
// admission or enqueueing broke. There are no backward edges and no
// retry edge; a failed execution is retried by triggering a whole new
// execution. Success is only reachable from running.
func NewExecutionStateMachine() *StateMachine[ExecutionStatus] {
	sm := NewWithState(ExecutionPending)
	sm.Allow(ExecutionPending, ExecutionRunning, ExecutionFailed, ExecutionCancelled).
		Allow(ExecutionRunning, ExecutionSuccess, ExecutionFailed, ExecutionCancelled)
	return sm
}
