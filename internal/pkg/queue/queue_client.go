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

package queue

import (
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-conduit/conduit/pkg/log"
	"github.com/hibiken/asynq"
	"github.com/pkg/errors"
)

// Client enqueues execution runs. It lives in the API process.
type Client struct {
	client *asynq.Client
}

func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, errors.New("queue config is required")
	}
	if cfg.RedisClient == nil {
		return nil, errors.New("redis client is required")
	}

	return &Client{
		client: asynq.NewClient(&redisConnOptWrapper{client: cfg.RedisClient}),
	}, nil
}

// EnqueueRun puts an execution:run task on the executions queue. Retries
// are disabled: a failed run is a failed execution, the record already
// says so, and re-running user commands blindly is worse than surfacing
// the failure.
func (c *Client) EnqueueRun(payload *RunPayload) error {
	return c.enqueue(payload,
		asynq.Queue(QueueExecutions),
		asynq.MaxRetry(0),
	)
}

// EnqueueRunIn is EnqueueRun with a delay before the task becomes
// available to workers. Used to park an execution while its pipeline is
// busy running another one.
func (c *Client) EnqueueRunIn(delay time.Duration, payload *RunPayload) error {
	return c.enqueue(payload,
		asynq.Queue(QueueExecutions),
		asynq.MaxRetry(0),
		asynq.ProcessIn(delay),
	)
}

func (c *Client) enqueue(payload *RunPayload, opts ...asynq.Option) error {
	data, err := sonic.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "marshal run payload")
	}

	task := asynq.NewTask(TaskTypeExecutionRun, data)
	info, err := c.client.Enqueue(task, opts...)
	if err != nil {
		return errors.Wrap(err, "enqueue run")
	}

	log.Infow("execution enqueued",
		"execution_id", payload.ExecutionId,
		"pipeline_id", payload.PipelineId,
		"task_id", info.ID,
	)
	return nil
}

func (c *Client) Close() error {
	return c.client.Close()
}
