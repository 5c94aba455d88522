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
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/go-conduit/conduit/pkg/log"
	"github.com/hibiken/asynq"
	"github.com/pkg/errors"
)

// Server pulls execution runs off redis and hands them to the registered
// handler.
type Server struct {
	server *asynq.Server
	mux    *asynq.ServeMux
}

func NewServer(cfg *Config) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("queue config is required")
	}
	if cfg.RedisClient == nil {
		return nil, errors.New("redis client is required")
	}

	var logLevel asynq.LogLevel
	if cfg.LogLevel != "" {
		if err := logLevel.Set(cfg.LogLevel); err != nil {
			log.Warnw("invalid queue log level, using info", "logLevel", cfg.LogLevel, "error", err)
			logLevel = asynq.InfoLevel
		}
	} else {
		logLevel = asynq.InfoLevel
	}

	shutdownTimeout := 10 * time.Second
	if cfg.ShutdownTimeout > 0 {
		shutdownTimeout = time.Duration(cfg.ShutdownTimeout) * time.Second
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	server := asynq.NewServer(
		&redisConnOptWrapper{client: cfg.RedisClient},
		asynq.Config{
			Concurrency:     concurrency,
			Queues:          map[string]int{QueueExecutions: 1},
			Logger:          &asynqLoggerAdapter{},
			LogLevel:        logLevel,
			ShutdownTimeout: shutdownTimeout,
		},
	)

	s := &Server{
		server: server,
		mux:    asynq.NewServeMux(),
	}
	log.Infow("queue server created", "concurrency", concurrency)
	return s, nil
}

// RegisterRunHandler binds the handler for execution:run tasks.
func (s *Server) RegisterRunHandler(handler RunHandler) {
	s.mux.HandleFunc(TaskTypeExecutionRun, func(ctx context.Context, t *asynq.Task) error {
		var payload RunPayload
		if err := sonic.Unmarshal(t.Payload(), &payload); err != nil {
			return errors.Wrap(err, "unmarshal run payload")
		}
		return handler.HandleRun(ctx, &payload)
	})
}

// Start runs the worker loop in the background.
func (s *Server) Start() error {
	return s.server.Start(s.mux)
}

// Shutdown waits for in-flight tasks up to the shutdown timeout.
func (s *Server) Shutdown() {
	s.server.Shutdown()
}
