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

package router

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-conduit/conduit/internal/engine/service"
	"github.com/go-conduit/conduit/internal/pkg/resolver"
	"github.com/go-conduit/conduit/pkg/httpx"
	"github.com/go-conduit/conduit/pkg/httpx/interceptor"
	"github.com/go-conduit/conduit/pkg/server"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Router struct {
	Http     *server.Http
	Services *service.Services
}

func NewRouter(httpConf *server.Http, services *service.Services) *Router {
	return &Router{
		Http:     httpConf,
		Services: services,
	}
}

func (rt *Router) Router() *gin.Engine {
	gin.SetMode(rt.Http.Mode)

	r := gin.New()

	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {
		fmt.Printf("[Conduit] %-6s %-25s --> %s (%d handlers) \n", httpMethod, absolutePath, handlerName, nuHandlers)
	}

	r.Use(interceptor.CorsInterceptor())
	r.Use(interceptor.ExceptionInterceptor)

	if rt.Http.AccessLog {
		r.Use(gin.LoggerWithFormatter(httpx.AccessLogFormat))
	}

	if rt.Http.ExposeMetrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	// Webhook triggers authenticate by trigger token alone, no session.
	r.POST("/webhook/:token", rt.webhookTrigger)

	api := r.Group(rt.Http.ContextPath)
	{
		rt.routerGroup(api)
	}

	return r
}

func (rt *Router) routerGroup(r *gin.RouterGroup) {
	auth := interceptor.AuthorizationInterceptor(rt.Http.Auth.SecretKey)

	pipeline := r.Group("/pipeline", auth)
	{
		pipeline.POST("", rt.createPipeline)
		pipeline.GET("", rt.listPipelines)
		pipeline.GET("/:pipelineId", rt.getPipeline)
		pipeline.PUT("/:pipelineId", rt.updatePipeline)
		pipeline.DELETE("/:pipelineId", rt.deletePipeline)
		pipeline.PUT("/:pipelineId/config", rt.updatePipelineConfig)
		pipeline.POST("/:pipelineId/transfer", rt.transferPipeline)

		pipeline.GET("/:pipelineId/permission", rt.listPermissions)
		pipeline.POST("/:pipelineId/permission", rt.addPermission)
		pipeline.PUT("/:pipelineId/permission/:permissionId", rt.updatePermission)
		pipeline.DELETE("/:pipelineId/permission/:permissionId", rt.removePermission)

		pipeline.POST("/:pipelineId/trigger", rt.triggerExecution)
		pipeline.GET("/:pipelineId/execution", rt.listExecutions)
	}

	execution := r.Group("/execution", auth)
	{
		execution.GET("/:executionId", rt.getExecution)
		execution.GET("/:executionId/logs", rt.getExecutionLogs)
		execution.POST("/:executionId/cancel", rt.cancelExecution)
	}
}

// replyErr maps service sentinels onto the response envelope. Anything
// unmatched is an internal error; the detail stays in the log, not the
// body.
func (rt *Router) replyErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		httpx.WithRepErrMsg(c, http.StatusNotFound, httpx.NotFound.Code, httpx.NotFound.Msg)
	case errors.Is(err, service.ErrAuthorizationDenied):
		httpx.WithRepErrMsg(c, http.StatusForbidden, httpx.Forbidden.Code, httpx.Forbidden.Msg)
	case errors.Is(err, service.ErrPipelineInactive):
		httpx.WithRepErrMsg(c, http.StatusUnprocessableEntity, httpx.PipelineInactive.Code, httpx.PipelineInactive.Msg)
	case resolver.IsResolutionError(err):
		httpx.WithRepErr(c, http.StatusUnprocessableEntity, httpx.InvalidConfig.Code, httpx.InvalidConfig.Msg, err.Error())
	case errors.Is(err, service.ErrExecutionTerminal),
		errors.Is(err, service.ErrDuplicatePermission),
		errors.Is(err, service.ErrInvalidLevel),
		errors.Is(err, service.ErrOwnerPermission),
		errors.Is(err, service.ErrUserNotFound):
		httpx.WithRepErr(c, http.StatusConflict, httpx.BadRequest.Code, httpx.BadRequest.Msg, err.Error())
	default:
		httpx.WithRepErrMsg(c, http.StatusInternalServerError, httpx.InternalError.Code, httpx.InternalError.Msg)
	}
}
