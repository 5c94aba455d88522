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

package service

import "github.com/pkg/errors"

// Sentinel errors the router maps to http responses. Services wrap them
// with context; handlers match with errors.Is.
var (
	ErrNotFound            = errors.New("resource not found")
	ErrAuthorizationDenied = errors.New("authorization denied")
	ErrPipelineInactive    = errors.New("pipeline is not active")
	ErrDuplicatePermission = errors.New("user already has a permission on this pipeline")
	ErrInvalidLevel        = errors.New("invalid permission level")
	ErrOwnerPermission     = errors.New("owner access is implicit and cannot be granted or modified")
	ErrExecutionTerminal   = errors.New("execution already in a terminal state")
	ErrUserNotFound        = errors.New("user does not exist")
)
