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

// loadPipeline resolves the path param into a pipeline or writes the
// error response.
func (rt *Router) loadPipeline(c *gin.Context) (*model.Pipeline, bool) {
	detail, err := rt.Services.Pipeline.Get(c.Param("pipelineId"), interceptor.UserIdFromContext(c))
	if err != nil {
		rt.replyErr(c, err)
		return nil, false
	}
	return &detail.Pipeline, true
}

func (rt *Router) listPermissions(c *gin.Context) {
	pipeline, ok := rt.loadPipeline(c)
	if !ok {
		return
	}

	grants, err := rt.Services.Permission.ListGrants(pipeline, interceptor.UserIdFromContext(c))
	if err != nil {
		rt.replyErr(c, err)
		return
	}
	httpx.WithRepJSON(c, grants)
}

func (rt *Router) addPermission(c *gin.Context) {
	var req model.AddPermissionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.WithRepErr(c, http.StatusBadRequest, httpx.BadRequest.Code, httpx.BadRequest.Msg, err.Error())
		return
	}

	pipeline, ok := rt.loadPipeline(c)
	if !ok {
		return
	}

	permission, err := rt.Services.Permission.Grant(pipeline, interceptor.UserIdFromContext(c), &req)
	if err != nil {
		rt.replyErr(c, err)
		return
	}
	httpx.WithRepJSON(c, permission)
}

func (rt *Router) updatePermission(c *gin.Context) {
	var req model.UpdatePermissionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.WithRepErr(c, http.StatusBadRequest, httpx.BadRequest.Code, httpx.BadRequest.Msg, err.Error())
		return
	}

	pipeline, ok := rt.loadPipeline(c)
	if !ok {
		return
	}

	permission, err := rt.Services.Permission.UpdateGrant(pipeline, interceptor.UserIdFromContext(c), c.Param("permissionId"), &req)
	if err != nil {
		rt.replyErr(c, err)
		return
	}
	httpx.WithRepJSON(c, permission)
}

func (rt *Router) removePermission(c *gin.Context) {
	pipeline, ok := rt.loadPipeline(c)
	if !ok {
		return
	}

	if err := rt.Services.Permission.RevokeGrant(pipeline, interceptor.UserIdFromContext(c), c.Param("permissionId")); err != nil {
		rt.replyErr(c, err)
		return
	}
	httpx.WithRepNotDetail(c)
}
