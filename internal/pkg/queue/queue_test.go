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

package queue

import (
	"testing"

	"github.com/bytedance/sonic"
	"github.com/go-conduit/conduit/internal/pkg/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPayloadRoundTrip(t *testing.T) {
	payload := &RunPayload{
		ExecutionId: "exec-1",
		PipelineId:  "pipe-1",
		Definition: resolver.Definition{
			EnvImage:  "golang:1.25",
			Variables: map[string]string{"CI": "true"},
			Tasks: []resolver.Task{
				{Name: "build", Command: "go build ./..."},
				{Name: "test", Command: "go test ./..."},
			},
		},
		RepoUrl:    "https://example.com/demo.git",
		RepoBranch: "main",
	}

	data, err := sonic.Marshal(payload)
	require.NoError(t, err)

	var decoded RunPayload
	require.NoError(t, sonic.Unmarshal(data, &decoded))

	assert.Equal(t, payload.ExecutionId, decoded.ExecutionId)
	assert.Equal(t, payload.PipelineId, decoded.PipelineId)
	assert.Equal(t, payload.Definition, decoded.Definition)
	assert.Equal(t, payload.RepoUrl, decoded.RepoUrl)
	assert.Equal(t, payload.RepoBranch, decoded.RepoBranch)
}

func TestNewClientRequiresRedis(t *testing.T) {
	_, err := NewClient(&Config{})
	assert.Error(t, err)

	_, err = NewClient(nil)
	assert.Error(t, err)
}

func TestNewServerRequiresRedis(t *testing.T) {
	_, err := NewServer(&Config{})
	assert.Error(t, err)

	_, err = NewServer(nil)
	assert.Error(t, err)
}
