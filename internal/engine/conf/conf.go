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

package conf

import (
	"fmt"
	"sync"
	"time"

	"github.com/go-conduit/conduit/pkg/cache"
	"github.com/go-conduit/conduit/pkg/conf"
	"github.com/go-conduit/conduit/pkg/database"
	"github.com/go-conduit/conduit/pkg/log"
	"github.com/go-conduit/conduit/pkg/server"
)

// AppConfig is the engine's full configuration, loaded from a TOML file
// and hot-reloaded on change.
type AppConfig struct {
	Log      log.Conf
	Http     server.Http
	Database database.Database
	Redis    cache.Redis
	Runner   Runner
}

// Runner configures task execution.
type Runner struct {
	// UseDocker wraps each task command in a container of the
	// definition's env image. When false, commands run on the host
	// shell and the env image is only recorded in the logs.
	UseDocker bool
	// TaskTimeout bounds a single task, not the whole execution.
	TaskTimeout time.Duration
	// WorkDir is where repo workspaces are cloned. Empty means the
	// system temp dir.
	WorkDir string
	// Concurrency is the number of queue workers pulling executions.
	Concurrency int
	// CancelGracePeriod is how long a cancelled task gets to wind down
	// before the execution is finalized without it.
	CancelGracePeriod time.Duration
}

// SetDefaults fills the zero values that have sensible defaults.
func (r *Runner) SetDefaults() {
	if r.TaskTimeout <= 0 {
		r.TaskTimeout = time.Hour
	}
	if r.Concurrency <= 0 {
		r.Concurrency = 10
	}
	if r.CancelGracePeriod <= 0 {
		r.CancelGracePeriod = 10 * time.Second
	}
}

var (
	cfg  AppConfig
	once sync.Once
)

// NewConf loads the configuration once. Subsequent calls return the
// same instance.
func NewConf(confDir string) AppConfig {
	once.Do(func() {
		if err := conf.LoadConfigFile(confDir, &cfg); err != nil {
			panic(fmt.Sprintf("load conf file error: %s", err))
		}
		if cfg.Log.Output == "" {
			cfg.Log = *log.SetDefaults()
		}
		cfg.Runner.SetDefaults()
	})
	return cfg
}
