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
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-conduit/conduit/internal/engine/conf"
	"github.com/go-conduit/conduit/internal/engine/router"
	"github.com/go-conduit/conduit/internal/pkg/lifecycle"
	"github.com/go-conduit/conduit/internal/pkg/queue"
	"github.com/go-conduit/conduit/pkg/log"
	"github.com/go-conduit/conduit/pkg/server"
	"github.com/go-conduit/conduit/pkg/shutdown"
)

var configFile string

func init() {
	flag.StringVar(&configFile, "conf", "conf.d/config.toml", "conf file path, e.g. -conf ./conf.d/config.toml")
}

// application is the assembled engine process, built by initEngine.
type application struct {
	logger      *log.Logger
	httpConf    *server.Http
	router      *router.Router
	queueServer *queue.Server
	manager     *lifecycle.Manager
}

func newApplication(
	logger *log.Logger,
	httpConf *server.Http,
	route *router.Router,
	queueServer *queue.Server,
	manager *lifecycle.Manager,
) *application {
	return &application{
		logger:      logger,
		httpConf:    httpConf,
		router:      route,
		queueServer: queueServer,
		manager:     manager,
	}
}

func main() {
	flag.Parse()

	app, cleanup, err := initEngine(conf.NewConf(configFile))
	if err != nil {
		panic(err)
	}

	app.logger.Log.Infow("engine assembled",
		"http_host", app.httpConf.Host,
		"http_port", app.httpConf.Port,
	)

	app.queueServer.RegisterRunHandler(app.manager)
	if err := app.queueServer.Start(); err != nil {
		log.Fatalf("start queue server: %v", err)
	}

	httpClean := app.httpConf.Server(app.router.Router())

	sd := shutdown.NewManager()
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sc
		sd.Shutdown()
	}()

	<-sd.Wait()
	log.Info("shutting down")

	httpClean()
	app.queueServer.Shutdown()
	cleanup()
	log.Info("bye")
}
