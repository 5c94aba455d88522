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

package httpx

import (
	"github.com/gin-gonic/gin"
)

// ResponseErr is the error response envelope.
type ResponseErr struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Err  any    `json:"err,omitempty"`
	Path string `json:"path,omitempty"`
}

// WithRepErr writes an error response with detail and request path.
// The HTTP status carries the transport semantics (404, 403, ...);
// the body code carries the application code.
func WithRepErr(c *gin.Context, status, code int, msg string, err any) {
	c.JSON(status, ResponseErr{
		Code: code,
		Msg:  msg,
		Err:  err,
		Path: c.Request.URL.Path,
	})
}

// WithRepErrMsg writes an error response without extra detail.
func WithRepErrMsg(c *gin.Context, status, code int, msg string) {
	c.JSON(status, ResponseErr{
		Code: code,
		Msg:  msg,
		Path: c.Request.URL.Path,
	})
}
