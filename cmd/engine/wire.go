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

//go:build wireinject
// +build wireinject

package main

import (
	"github.com/go-conduit/conduit/internal/engine/conf"
	"github.com/go-conduit/conduit/internal/engine/repo"
	"github.com/go-conduit/conduit/internal/engine/router"
	"github.com/go-conduit/conduit/internal/engine/service"
	"github.com/go-conduit/conduit/internal/pkg/queue"
	"github.com/go-conduit/conduit/pkg/log"
	"github.com/google/wire"
)

// initEngine assembles the engine process from its configuration.
func initEngine(appConf conf.AppConfig) (*application, func(), error) {
	panic(wire.Build(
		confProviderSet,
		log.ProviderSet,
		infraProviderSet,
		repo.ProviderSet,
		runProviderSet,
		service.ProviderSet,
		router.NewRouter,
		newApplication,
	))
}

// confProviderSet splits AppConfig into the sections the graph consumes.
var confProviderSet = wire.NewSet(
	provideLogConf,
	provideHttpConf,
)

// infraProviderSet builds redis, the database handle and the queue
// transport.
var infraProviderSet = wire.NewSet(
	provideRedis,
	provideDatabase,
	provideQueueConfig,
	provideQueueClient,
	queue.NewServer,
)

// runProviderSet builds everything that resolves and executes tasks.
var runProviderSet = wire.NewSet(
	provideGitClient,
	provideTaskRunner,
	provideResolver,
	provideManager,
	provideEnqueuer,
	provideCanceller,
)
