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
	"github.com/gin-gonic/gin"
	"github.com/go-conduit/conduit/pkg/httpx"
)

// webhookTrigger starts an execution for the pipeline owning the trigger
// token. Unknown, malformed and revoked tokens all get the same 404 so
// the endpoint leaks nothing about which pipelines exist.
func (rt *Router) webhookTrigger(c *gin.Context) {
	execution, err := rt.Services.Execution.TriggerWebhook(c.Request.Context(), c.Param("token"))
	if err != nil {
		rt.replyErr(c, err)
		return
	}
	httpx.WithRepJSON(c, execution.Summary())
}
