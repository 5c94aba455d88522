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
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-conduit/conduit/pkg/httpx"
	"github.com/go-conduit/conduit/pkg/httpx/interceptor"
)

func (rt *Router) triggerExecution(c *gin.Context) {
	execution, err := rt.Services.Execution.TriggerManual(c.Request.Context(),
		c.Param("pipelineId"), interceptor.UserIdFromContext(c))
	if err != nil {
		rt.replyErr(c, err)
		return
	}
	httpx.WithRepJSON(c, execution.Summary())
}

func (rt *Router) listExecutions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	summaries, err := rt.Services.Execution.List(c.Param("pipelineId"),
		interceptor.UserIdFromContext(c), limit)
	if err != nil {
		rt.replyErr(c, err)
		return
	}
	httpx.WithRepJSON(c, summaries)
}

func (rt *Router) getExecution(c *gin.Context) {
	execution, err := rt.Services.Execution.Get(c.Param("executionId"), interceptor.UserIdFromContext(c))
	if err != nil {
		rt.replyErr(c, err)
		return
	}
	httpx.WithRepJSON(c, execution.Summary())
}

// getExecutionLogs returns the log body accumulated so far; for running
// executions that is a prefix of the final log.
func (rt *Router) getExecutionLogs(c *gin.Context) {
	execution, err := rt.Services.Execution.Get(c.Param("executionId"), interceptor.UserIdFromContext(c))
	if err != nil {
		rt.replyErr(c, err)
		return
	}
	httpx.WithRepJSON(c, gin.H{
		"executionId": execution.ExecutionId,
		"status":      execution.Status,
		"logs":        execution.Logs,
	})
}

func (rt *Router) cancelExecution(c *gin.Context) {
	if err := rt.Services.Execution.Cancel(c.Param("executionId"), interceptor.UserIdFromContext(c)); err != nil {
		rt.replyErr(c, err)
		return
	}
	httpx.WithRepNotDetail(c)
}
