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

package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-conduit/conduit/pkg/log"
)

// Http holds the http server settings. Timeouts are in seconds.
type Http struct {
	Host            string
	Port            int
	Mode            string
	ContextPath     string
	ExposeMetrics   bool
	AccessLog       bool
	ReadTimeout     int
	WriteTimeout    int
	IdleTimeout     int
	ShutdownTimeout int
	TLS             TLS
	Auth            Auth
}

type TLS struct {
	CertFile string
	KeyFile  string
}

// Auth configures the bearer token middleware for the authenticated API
// surface. Webhook routes are excluded from it.
type Auth struct {
	SecretKey    string
	AccessExpire time.Duration
}

// Server starts the http server in the background and returns a
// graceful-shutdown func. Signal handling is the caller's business.
func (h *Http) Server(engine *gin.Engine) func() {
	addr := fmt.Sprintf("%s:%d", h.Host, h.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      engine,
		ReadTimeout:  time.Duration(h.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(h.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(h.IdleTimeout) * time.Second,
	}

	go func() {
		log.Infof("http server start at: %s", addr)

		var err error
		if h.TLS.CertFile != "" && h.TLS.KeyFile != "" {
			err = srv.ListenAndServeTLS(h.TLS.CertFile, h.TLS.KeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("http server error: %v", err)
		}
	}()

	return func() {
		c, cancel := context.WithTimeout(context.Background(), time.Second*time.Duration(h.ShutdownTimeout))
		defer cancel()

		srv.SetKeepAlivesEnabled(false)
		if err := srv.Shutdown(c); err != nil {
			log.Errorf("http server shutdown error: %v", err)
			return
		}
		log.Info("http server exit")
	}
}
