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
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-conduit/conduit/pkg/httpx"
	"github.com/golang-jwt/jwt/v5"
)

// ContextUserId is the gin context key carrying the authenticated user id.
const ContextUserId = "userId"

// AuthorizationInterceptor validates the Bearer token and resolves the
// acting user id into the request context. Session issuance lives outside
// this service; the interceptor only trusts a signed subject claim.
func AuthorizationInterceptor(secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			httpx.WithRepErrMsg(c, http.StatusUnauthorized,
				httpx.AuthorizationEmpty.Code, httpx.AuthorizationEmpty.Msg)
			c.Abort()
			return
		}

		tokenStr, ok := strings.CutPrefix(auth, "Bearer ")
		if !ok || tokenStr == "" {
			httpx.WithRepErrMsg(c, http.StatusUnauthorized,
				httpx.Unauthorized.Code, httpx.Unauthorized.Msg)
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secretKey), nil
		})
		if err != nil || !token.Valid {
			httpx.WithRepErrMsg(c, http.StatusUnauthorized,
				httpx.TokenInvalid.Code, httpx.TokenInvalid.Msg)
			c.Abort()
			return
		}

		sub, err := token.Claims.GetSubject()
		if err != nil || sub == "" {
			httpx.WithRepErrMsg(c, http.StatusUnauthorized,
				httpx.TokenInvalid.Code, httpx.TokenInvalid.Msg)
			c.Abort()
			return
		}

		c.Set(ContextUserId, sub)
		c.Next()
	}
}

// UserIdFromContext returns the authenticated user id. Routes behind
// AuthorizationInterceptor always have one; elsewhere it is empty.
func UserIdFromContext(c *gin.Context) string {
	v, ok := c.Get(ContextUserId)
	if !ok {
		return ""
	}
	userId, _ := v.(string)
	return userId
}
