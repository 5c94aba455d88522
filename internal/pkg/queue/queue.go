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

// Package queue is the asynq-backed execution queue. The API layer
// enqueues run requests; workers pull them off redis and drive the
// execution lifecycle.
package queue

import (
	"context"

	"github.com/go-conduit/conduit/internal/pkg/resolver"
	"github.com/redis/go-redis/v9"
)

// Task types.
const (
	TaskTypeExecutionRun = "execution:run"
)

// Queue names. Webhook and manual triggers land in the same queue so
// FIFO admission per pipeline holds across trigger methods.
const (
	QueueExecutions = "executions"
)

// Config holds queue settings shared by client and server.
type Config struct {
	// RedisClient is the shared redis client, reused by asynq.
	RedisClient redis.UniversalClient
	// Concurrency is the number of worker goroutines.
	Concurrency int
	// LogLevel maps to asynq's log level: debug, info, warn, error.
	LogLevel string
	// ShutdownTimeout in seconds for in-flight tasks on stop.
	ShutdownTimeout int
}

// RunPayload is the body of an execution:run task. The definition is
// resolved before enqueue; workers never re-read pipeline configuration,
// so a config edit after trigger does not affect an in-flight run.
type RunPayload struct {
	ExecutionId string              `json:"execution_id"`
	PipelineId  string              `json:"pipeline_id"`
	Definition  resolver.Definition `json:"definition"`
	// RepoUrl/RepoBranch are set for repo-sourced configurations so the
	// worker can clone the sources into the task workspace.
	RepoUrl    string `json:"repo_url,omitempty"`
	RepoBranch string `json:"repo_branch,omitempty"`
}

// RunHandler processes one execution:run task.
type RunHandler interface {
	HandleRun(ctx context.Context, payload *RunPayload) error
}

// RunHandlerFunc adapts a func to RunHandler.
type RunHandlerFunc func(ctx context.Context, payload *RunPayload) error

func (f RunHandlerFunc) HandleRun(ctx context.Context, payload *RunPayload) error {
	return f(ctx, payload)
}

// redisConnOptWrapper exposes an existing redis client as an
// asynq.RedisConnOpt so both share one connection pool.
type redisConnOptWrapper struct {
	client redis.UniversalClient
}

func (r *redisConnOptWrapper) MakeRedisClient() interface{} {
	return r.client
}
