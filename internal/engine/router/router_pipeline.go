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
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-conduit/conduit/internal/engine/model"
	"github.com/go-conduit/conduit/pkg/httpx"
	"github.com/go-conduit/conduit/pkg/httpx/interceptor"
)

func (rt *Router) createPipeline(c *gin.Context) {
	var req model.CreatePipelineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.WithRepErr(c, http.StatusBadRequest, httpx.BadRequest.Code, httpx.BadRequest.Msg, err.Error())
		return
	}

	detail, err := rt.Services.Pipeline.Create(interceptor.UserIdFromContext(c), &req)
	if err != nil {
		rt.replyErr(c, err)
		return
	}
	httpx.WithRepJSON(c, detail)
}

func (rt *Router) listPipelines(c *gin.Context) {
	pipelines, err := rt.Services.Pipeline.List(interceptor.UserIdFromContext(c))
	if err != nil {
		rt.replyErr(c, err)
		return
	}
	httpx.WithRepJSON(c, pipelines)
}

func (rt *Router) getPipeline(c *gin.Context) {
	detail, err := rt.Services.Pipeline.Get(c.Param("pipelineId"), interceptor.UserIdFromContext(c))
	if err != nil {
		rt.replyErr(c, err)
		return
	}
	httpx.WithRepJSON(c, detail)
}

func (rt *Router) updatePipeline(c *gin.Context) {
	var req model.UpdatePipelineReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.WithRepErr(c, http.StatusBadRequest, httpx.BadRequest.Code, httpx.BadRequest.Msg, err.Error())
		return
	}

	pipeline, err := rt.Services.Pipeline.Update(c.Param("pipelineId"), interceptor.UserIdFromContext(c), &req)
	if err != nil {
		rt.replyErr(c, err)
		return
	}
	httpx.WithRepJSON(c, pipeline)
}

func (rt *Router) updatePipelineConfig(c *gin.Context) {
	var req model.UpdatePipelineConfigReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.WithRepErr(c, http.StatusBadRequest, httpx.BadRequest.Code, httpx.BadRequest.Msg, err.Error())
		return
	}

	config, err := rt.Services.Pipeline.UpdateConfig(c.Param("pipelineId"), interceptor.UserIdFromContext(c), &req)
	if err != nil {
		rt.replyErr(c, err)
		return
	}
	httpx.WithRepJSON(c, config)
}

func (rt *Router) deletePipeline(c *gin.Context) {
	if err := rt.Services.Pipeline.Delete(c.Param("pipelineId"), interceptor.UserIdFromContext(c)); err != nil {
		rt.replyErr(c, err)
		return
	}
	httpx.WithRepNotDetail(c)
}

func (rt *Router) transferPipeline(c *gin.Context) {
	var req model.TransferOwnershipReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.WithRepErr(c, http.StatusBadRequest, httpx.BadRequest.Code, httpx.BadRequest.Msg, err.Error())
		return
	}

	if err := rt.Services.Pipeline.Transfer(c.Param("pipelineId"), interceptor.UserIdFromContext(c), &req); err != nil {
		rt.replyErr(c, err)
		return
	}
	httpx.WithRepNotDetail(c)
}
