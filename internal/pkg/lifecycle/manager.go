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

// Package lifecycle drives executions from pending to a terminal state:
// admission, sequential task dispatch, incremental log persistence, and
// cooperative cancellation.
package lifecycle

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-conduit/conduit/internal/pkg/queue"
	"github.com/go-conduit/conduit/internal/pkg/resolver"
	"github.com/go-conduit/conduit/internal/pkg/runner"
	"github.com/go-conduit/conduit/pkg/log"
	"github.com/go-conduit/conduit/pkg/metrics"
	"github.com/go-conduit/conduit/pkg/statemachine"
	"github.com/pkg/errors"
)

// ExecutionStore is the slice of execution persistence the manager
// needs. Every write carries a status precondition, so a lost race shows
// up as a false return instead of a corrupted row.
type ExecutionStore interface {
	MarkRunning(executionId string) (bool, error)
	AppendLogs(executionId, chunk string) (bool, error)
	Finalize(executionId string, status statemachine.ExecutionStatus, errorMessage *string) (bool, error)
	HasRunning(pipelineId string) (bool, error)
}

// WorkspaceCloner provides task workspaces for repo-sourced pipelines.
type WorkspaceCloner interface {
	CloneWorkspace(ctx context.Context, repoURL, branch string) (string, func(), error)
}

// RunRequeuer puts an execution back on the queue after a delay.
type RunRequeuer interface {
	EnqueueRunIn(delay time.Duration, payload *queue.RunPayload) error
}

// busyRequeueDelay is how long a run waits before retrying admission
// when another worker process holds the pipeline.
const busyRequeueDelay = 5 * time.Second

// Manager owns the running-execution registry. One Manager per worker
// process.
type Manager struct {
	store   ExecutionStore
	runner  runner.TaskRunner
	cloner  WorkspaceCloner
	requeue RunRequeuer

	// cancelGrace is how long a cancelled execution gets to wind down
	// before it is finalized without waiting for the task to exit.
	cancelGrace time.Duration

	mu            sync.Mutex
	pipelineLocks map[string]*sync.Mutex
	running       map[string]*execHandle
}

// execHandle tracks one in-flight execution for cancellation.
type execHandle struct {
	cancel context.CancelFunc
	done   chan struct{}
}

func NewManager(store ExecutionStore, taskRunner runner.TaskRunner, cloner WorkspaceCloner, requeue RunRequeuer, cancelGrace time.Duration) *Manager {
	if cancelGrace <= 0 {
		cancelGrace = 10 * time.Second
	}
	return &Manager{
		store:         store,
		runner:        taskRunner,
		cloner:        cloner,
		requeue:       requeue,
		cancelGrace:   cancelGrace,
		pipelineLocks: make(map[string]*sync.Mutex),
		running:       make(map[string]*execHandle),
	}
}

// pipelineLock serializes executions of the same pipeline within this
// process. Queue order is FIFO, so a later execution waits here until
// the earlier one reaches a terminal state.
func (m *Manager) pipelineLock(pipelineId string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	lock, ok := m.pipelineLocks[pipelineId]
	if !ok {
		lock = &sync.Mutex{}
		m.pipelineLocks[pipelineId] = lock
	}
	return lock
}

// HandleRun implements queue.RunHandler. It drives one execution to a
// terminal state; the returned error is only for infrastructure
// failures, task failures are absorbed into the execution record.
func (m *Manager) HandleRun(ctx context.Context, payload *queue.RunPayload) error {
	lock := m.pipelineLock(payload.PipelineId)
	lock.Lock()
	defer lock.Unlock()

	// The per-pipeline lock covers this process; the DB check covers a
	// second worker process pointed at the same database.
	busy, err := m.store.HasRunning(payload.PipelineId)
	if err != nil {
		return errors.Wrap(err, "check running executions")
	}
	if busy {
		// Another worker process owns the running execution. Put this one
		// back with a delay so it stays pending until the pipeline frees
		// up instead of burning a valid queued run.
		log.Infow("pipeline busy, execution re-enqueued",
			"execution_id", payload.ExecutionId,
			"pipeline_id", payload.PipelineId,
		)
		if m.requeue == nil {
			return errors.Errorf("pipeline %s busy and no requeuer configured", payload.PipelineId)
		}
		if err := m.requeue.EnqueueRunIn(busyRequeueDelay, payload); err != nil {
			return errors.Wrap(err, "re-enqueue execution")
		}
		return nil
	}

	// Register the cancel handle before flipping to running so a cancel
	// arriving mid-admission still reaches the context.
	runCtx, cancel := context.WithCancel(ctx)
	handle := &execHandle{cancel: cancel, done: make(chan struct{})}
	m.mu.Lock()
	m.running[payload.ExecutionId] = handle
	m.mu.Unlock()

	defer func() {
		cancel()
		m.mu.Lock()
		delete(m.running, payload.ExecutionId)
		m.mu.Unlock()
		close(handle.done)
	}()

	ok, err := m.store.MarkRunning(payload.ExecutionId)
	if err != nil {
		return errors.Wrap(err, "mark running")
	}
	if !ok {
		// Cancelled while queued. Nothing to run.
		log.Infow("execution no longer pending, skipping",
			"execution_id", payload.ExecutionId)
		return nil
	}

	metrics.ExecutionsRunning.Inc()
	defer metrics.ExecutionsRunning.Dec()

	started := time.Now()
	log.Infow("execution started",
		"execution_id", payload.ExecutionId,
		"pipeline_id", payload.PipelineId,
		"tasks", len(payload.Definition.Tasks),
	)

	m.appendLogs(payload.ExecutionId, fmt.Sprintf("Environment image: %s\n", payload.Definition.EnvImage))

	workspace, cleanup, err := m.prepareWorkspace(runCtx, payload)
	if err != nil {
		if runCtx.Err() != nil {
			m.finalize(payload.ExecutionId, statemachine.ExecutionCancelled, nil, started)
			return nil
		}
		msg := fmt.Sprintf("failed to prepare workspace: %v", err)
		m.appendLogs(payload.ExecutionId, msg+"\n")
		m.finalize(payload.ExecutionId, statemachine.ExecutionFailed, &msg, started)
		return nil
	}
	if cleanup != nil {
		defer cleanup()
	}

	for _, task := range payload.Definition.Tasks {
		status, errorMessage := m.runTask(runCtx, payload, task, workspace)
		if status == statemachine.ExecutionRunning {
			continue
		}
		m.finalize(payload.ExecutionId, status, errorMessage, started)
		return nil
	}

	m.finalize(payload.ExecutionId, statemachine.ExecutionSuccess, nil, started)
	return nil
}

// runTask runs one task and flushes its output. It returns
// ExecutionRunning when the pipeline should continue with the next task,
// otherwise the terminal status to record.
func (m *Manager) runTask(ctx context.Context, payload *queue.RunPayload, task resolver.Task, workspace string) (statemachine.ExecutionStatus, *string) {
	m.appendLogs(payload.ExecutionId, fmt.Sprintf("== %s ==\n$ %s\n", task.Name, task.Command))

	res, err := m.runner.Run(ctx, runner.TaskSpec{
		Name:         task.Name,
		Command:      task.Command,
		EnvImage:     payload.Definition.EnvImage,
		Variables:    payload.Definition.Variables,
		WorkspaceDir: workspace,
	})
	if res != nil && res.Output != "" {
		m.appendLogs(payload.ExecutionId, ensureNewline(res.Output))
	}

	if err != nil {
		if ctx.Err() != nil && errors.Is(err, context.Canceled) {
			m.appendLogs(payload.ExecutionId, fmt.Sprintf("Task %q cancelled\n", task.Name))
			return statemachine.ExecutionCancelled, nil
		}
		msg := fmt.Sprintf("task %q did not complete: %v", task.Name, err)
		m.appendLogs(payload.ExecutionId, msg+"\n")
		return statemachine.ExecutionFailed, &msg
	}
	if res.ExitCode != 0 {
		msg := fmt.Sprintf("task %q failed with exit code %d", task.Name, res.ExitCode)
		m.appendLogs(payload.ExecutionId, msg+"\n")
		return statemachine.ExecutionFailed, &msg
	}
	return statemachine.ExecutionRunning, nil
}

// prepareWorkspace clones the pipeline sources for repo-sourced
// configurations. Editor-sourced pipelines run without a workspace.
func (m *Manager) prepareWorkspace(ctx context.Context, payload *queue.RunPayload) (string, func(), error) {
	if payload.RepoUrl == "" {
		return "", nil, nil
	}
	if m.cloner == nil {
		return "", nil, errors.New("no workspace cloner configured")
	}
	m.appendLogs(payload.ExecutionId, fmt.Sprintf("Cloning %s (%s)\n", payload.RepoUrl, payload.RepoBranch))
	return m.cloner.CloneWorkspace(ctx, payload.RepoUrl, payload.RepoBranch)
}

// Cancel requests cancellation of an execution. A pending execution is
// finalized immediately; a running one gets its context cancelled and up
// to cancelGrace to wind down. Cancelling an execution this process does
// not run only flips the row; the guarded writes make the remote
// worker's subsequent updates no-ops.
func (m *Manager) Cancel(executionId string) error {
	m.mu.Lock()
	handle, isRunningHere := m.running[executionId]
	m.mu.Unlock()

	if !isRunningHere {
		// Pending, or running elsewhere.
		ok, err := m.store.Finalize(executionId, statemachine.ExecutionCancelled, nil)
		if err != nil {
			return errors.Wrap(err, "cancel execution")
		}
		if ok {
			metrics.ExecutionsTotal.WithLabelValues(string(statemachine.ExecutionCancelled)).Inc()
			log.Infow("execution cancelled before start", "execution_id", executionId)
		}
		return nil
	}

	handle.cancel()

	select {
	case <-handle.done:
	case <-time.After(m.cancelGrace):
		// The task did not exit within the grace period. Finalize anyway;
		// the leaked process is logged and the guarded writes keep any
		// late updates from touching the terminal row.
		log.Warnw("cancel grace period elapsed, finalizing anyway",
			"execution_id", executionId, "grace", m.cancelGrace)
		m.finalize(executionId, statemachine.ExecutionCancelled, nil, time.Time{})
	}
	return nil
}

func (m *Manager) appendLogs(executionId, chunk string) {
	ok, err := m.store.AppendLogs(executionId, chunk)
	if err != nil {
		log.Errorw("failed to append logs", "execution_id", executionId, "error", err)
		return
	}
	if !ok {
		log.Debugw("log append skipped, execution already terminal", "execution_id", executionId)
	}
}

func (m *Manager) finalize(executionId string, status statemachine.ExecutionStatus, errorMessage *string, started time.Time) {
	ok, err := m.store.Finalize(executionId, status, errorMessage)
	if err != nil {
		log.Errorw("failed to finalize execution",
			"execution_id", executionId, "status", status, "error", err)
		return
	}
	if !ok {
		// Lost the race against Cancel. The row keeps its first terminal
		// status.
		log.Infow("execution already terminal, finalize skipped",
			"execution_id", executionId, "status", status)
		return
	}

	metrics.ExecutionsTotal.WithLabelValues(string(status)).Inc()
	if !started.IsZero() {
		metrics.ExecutionDuration.WithLabelValues(string(status)).Observe(time.Since(started).Seconds())
	}
	log.Infow("execution finished", "execution_id", executionId, "status", status)
}

func ensureNewline(s string) string {
	if strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}
