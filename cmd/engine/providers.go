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

package main

import (
	"github.com/go-conduit/conduit/internal/engine/conf"
	"github.com/go-conduit/conduit/internal/engine/repo"
	"github.com/go-conduit/conduit/internal/engine/service"
	"github.com/go-conduit/conduit/internal/pkg/gitfs"
	"github.com/go-conduit/conduit/internal/pkg/lifecycle"
	"github.com/go-conduit/conduit/internal/pkg/queue"
	"github.com/go-conduit/conduit/internal/pkg/resolver"
	"github.com/go-conduit/conduit/internal/pkg/runner"
	"github.com/go-conduit/conduit/pkg/cache"
	"github.com/go-conduit/conduit/pkg/database"
	"github.com/go-conduit/conduit/pkg/log"
	"github.com/go-conduit/conduit/pkg/server"
	"github.com/redis/go-redis/v9"
)

func provideLogConf(appConf conf.AppConfig) *log.Conf {
	return &appConf.Log
}

func provideHttpConf(appConf conf.AppConfig) *server.Http {
	return &appConf.Http
}

func provideRedis(appConf conf.AppConfig) (redis.UniversalClient, error) {
	client, err := cache.NewRedis(appConf.Redis)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func provideDatabase(appConf conf.AppConfig) (database.IDatabase, error) {
	db, err := database.NewDatabase(appConf.Database)
	if err != nil {
		return nil, err
	}
	return database.NewGormDB(db), nil
}

func provideQueueConfig(appConf conf.AppConfig, redisClient redis.UniversalClient) *queue.Config {
	return &queue.Config{
		RedisClient: redisClient,
		Concurrency: appConf.Runner.Concurrency,
	}
}

func provideQueueClient(cfg *queue.Config) (*queue.Client, func(), error) {
	client, err := queue.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, func() {
		if err := client.Close(); err != nil {
			log.Errorf("close queue client: %v", err)
		}
	}, nil
}

func provideGitClient(appConf conf.AppConfig) *gitfs.Client {
	return gitfs.NewClient("", 0, appConf.Runner.WorkDir)
}

func provideTaskRunner(appConf conf.AppConfig) runner.TaskRunner {
	return runner.NewShellRunner("", appConf.Runner.UseDocker, appConf.Runner.TaskTimeout)
}

func provideResolver(git *gitfs.Client) *resolver.Resolver {
	return resolver.New(git)
}

func provideManager(
	appConf conf.AppConfig,
	repos *repo.Repositories,
	taskRunner runner.TaskRunner,
	git *gitfs.Client,
	client *queue.Client,
) *lifecycle.Manager {
	return lifecycle.NewManager(repos.Execution, taskRunner, git, client, appConf.Runner.CancelGracePeriod)
}

func provideEnqueuer(client *queue.Client) service.Enqueuer {
	return client
}

func provideCanceller(manager *lifecycle.Manager) service.Canceller {
	return manager
}
