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

var (
	Success = reply(200, "success")

	Failed        = reply(500, "request failed")
	InternalError = reply(500, "internal error, please contact the administrator")

	Unauthorized       = reply(4001, "unauthorized")
	AuthorizationEmpty = reply(4002, "Authorization is empty")
	TokenInvalid       = reply(4003, "Token is invalid")

	Forbidden        = reply(4031, "insufficient permission")
	NotFound         = reply(4041, "not found")
	BadRequest       = reply(4101, "invalid request")
	PipelineInactive = reply(4201, "pipeline is not active")
	InvalidConfig    = reply(4202, "pipeline configuration could not be resolved")
)

func reply(code int, msg string) *Response {
	return &Response{
		Code: code,
		Msg:  msg,
	}
}
