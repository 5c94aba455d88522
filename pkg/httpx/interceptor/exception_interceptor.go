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

package interceptor

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/go-conduit/conduit/pkg/httpx"
	"github.com/go-conduit/conduit/pkg/log"
)

// ExceptionInterceptor recovers panics and replies with a generic error.
// Stack traces go to the log, never to the client.
func ExceptionInterceptor(c *gin.Context) {
	defer func() {
		if err := recover(); err != nil {
			log.Errorf("panic: %v\n%s", err, debug.Stack())
			httpx.WithRepErrMsg(c, http.StatusInternalServerError,
				httpx.InternalError.Code, httpx.InternalError.Msg)
			c.Abort()
		}
	}()
	c.Next()
}
