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

import (
	"context"
	"strings"
	"testing"

	"github.com/go-conduit/conduit/internal/engine/model"
	"github.com/go-conduit/conduit/internal/pkg/resolver"
	"github.com/go-conduit/conduit/pkg/statemachine"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTriggerManual(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	detail := f.createPipeline("alice")

	execution, err := f.svc.Execution.TriggerManual(context.Background(), detail.PipelineId, "alice")
	require.NoError(t, err)

	assert.Equal(t, statemachine.ExecutionPending, execution.Status)
	assert.Equal(t, model.TriggerManual, execution.TriggerMethod)
	require.NotNil(t, execution.TriggeredBy)
	assert.Equal(t, "alice", *execution.TriggeredBy)

	require.Len(t, f.enqueuer.payloads, 1)
	payload := f.enqueuer.payloads[0]
	assert.Equal(t, execution.ExecutionId, payload.ExecutionId)
	require.Len(t, payload.Definition.Tasks, 1)
	assert.Equal(t, "make build", payload.Definition.Tasks[0].Command)
	assert.Equal(t, resolver.DefaultEnvImage, payload.Definition.EnvImage)
}

func TestTriggerManualRequiresDeveloper(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	f.addUser("bob")
	detail := f.createPipeline("alice")
	f.grant(detail.PipelineId, "bob", model.LevelReader)

	_, err := f.svc.Execution.TriggerManual(context.Background(), detail.PipelineId, "bob")
	assert.True(t, errors.Is(err, ErrAuthorizationDenied))
	assert.Empty(t, f.enqueuer.payloads)
}

func TestTriggerManualInactivePipeline(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	detail := f.createPipeline("alice")
	inactive := false
	_, err := f.svc.Pipeline.Update(detail.PipelineId, "alice", &model.UpdatePipelineReq{IsActive: &inactive})
	require.NoError(t, err)

	_, err = f.svc.Execution.TriggerManual(context.Background(), detail.PipelineId, "alice")
	assert.True(t, errors.Is(err, ErrPipelineInactive))
}

func TestTriggerManualBrokenConfigCreatesNoExecution(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	detail, err := f.svc.Pipeline.Create("alice", &model.CreatePipelineReq{
		Name: "broken",
		Config: model.UpdatePipelineConfigReq{
			YamlSource:  model.SourceEditor,
			YamlContent: "tasks: []",
		},
	})
	require.NoError(t, err)

	_, err = f.svc.Execution.TriggerManual(context.Background(), detail.PipelineId, "alice")
	require.Error(t, err)
	assert.True(t, resolver.IsKind(err, resolver.KindSchemaError))

	executions, lerr := f.svc.Execution.List(detail.PipelineId, "alice", 0)
	require.NoError(t, lerr)
	assert.Empty(t, executions, "resolution failure must not leave an execution record")
}

func TestTriggerWebhook(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	detail := f.createPipeline("alice")

	execution, err := f.svc.Execution.TriggerWebhook(context.Background(), detail.TriggerToken)
	require.NoError(t, err)
	assert.Equal(t, model.TriggerWebhook, execution.TriggerMethod)
	assert.Nil(t, execution.TriggeredBy, "webhook triggers carry no actor")
	assert.Len(t, f.enqueuer.payloads, 1)
}

func TestTriggerWebhookUnknownToken(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	f.createPipeline("alice")

	_, err := f.svc.Execution.TriggerWebhook(context.Background(), strings.Repeat("x", 32))
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = f.svc.Execution.TriggerWebhook(context.Background(), "short")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestTriggerWebhookInactivePipelineLooksUnknown(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	detail := f.createPipeline("alice")
	inactive := false
	_, err := f.svc.Pipeline.Update(detail.PipelineId, "alice", &model.UpdatePipelineReq{IsActive: &inactive})
	require.NoError(t, err)

	_, err = f.svc.Execution.TriggerWebhook(context.Background(), detail.TriggerToken)
	assert.True(t, errors.Is(err, ErrNotFound),
		"an inactive pipeline's token must look unknown to webhook callers")
	assert.False(t, errors.Is(err, ErrPipelineInactive))

	executions, lerr := f.svc.Execution.List(detail.PipelineId, "alice", 0)
	require.NoError(t, lerr)
	assert.Empty(t, executions)
}

func TestTriggerWebhookCarriesRepoSource(t *testing.T) {
	fetcher := fetcherFunc(func(_ context.Context, repoURL, branch, path string) ([]byte, error) {
		return []byte(validYaml), nil
	})
	f := newFixture(fetcher)
	f.addUser("alice")
	detail, err := f.svc.Pipeline.Create("alice", &model.CreatePipelineReq{
		Name: "repo-based",
		Config: model.UpdatePipelineConfigReq{
			YamlSource: model.SourceRepo,
			RepoUrl:    "https://example.com/demo.git",
			RepoBranch: "release",
		},
	})
	require.NoError(t, err)

	_, err = f.svc.Execution.TriggerWebhook(context.Background(), detail.TriggerToken)
	require.NoError(t, err)

	require.Len(t, f.enqueuer.payloads, 1)
	payload := f.enqueuer.payloads[0]
	assert.Equal(t, "https://example.com/demo.git", payload.RepoUrl)
	assert.Equal(t, "release", payload.RepoBranch)
}

func TestTriggerEnqueueFailureFailsExecution(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	detail := f.createPipeline("alice")
	f.enqueuer.fail = true

	_, err := f.svc.Execution.TriggerManual(context.Background(), detail.PipelineId, "alice")
	require.Error(t, err)

	executions, lerr := f.svc.Execution.List(detail.PipelineId, "alice", 0)
	require.NoError(t, lerr)
	require.Len(t, executions, 1)
	assert.Equal(t, statemachine.ExecutionFailed, executions[0].Status)
}

func TestGetExecutionRequiresReader(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	detail := f.createPipeline("alice")
	execution, err := f.svc.Execution.TriggerManual(context.Background(), detail.PipelineId, "alice")
	require.NoError(t, err)

	_, err = f.svc.Execution.Get(execution.ExecutionId, "stranger")
	assert.True(t, errors.Is(err, ErrAuthorizationDenied))

	got, err := f.svc.Execution.Get(execution.ExecutionId, "alice")
	require.NoError(t, err)
	assert.Equal(t, execution.ExecutionId, got.ExecutionId)
}

func TestListExecutionsNewestFirst(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	detail := f.createPipeline("alice")

	first, err := f.svc.Execution.TriggerManual(context.Background(), detail.PipelineId, "alice")
	require.NoError(t, err)
	second, err := f.svc.Execution.TriggerManual(context.Background(), detail.PipelineId, "alice")
	require.NoError(t, err)

	summaries, err := f.svc.Execution.List(detail.PipelineId, "alice", 0)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, second.ExecutionId, summaries[0].ExecutionId)
	assert.Equal(t, first.ExecutionId, summaries[1].ExecutionId)

	limited, err := f.svc.Execution.List(detail.PipelineId, "alice", 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestCancelExecution(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	detail := f.createPipeline("alice")
	execution, err := f.svc.Execution.TriggerManual(context.Background(), detail.PipelineId, "alice")
	require.NoError(t, err)

	require.NoError(t, f.svc.Execution.Cancel(execution.ExecutionId, "alice"))
	assert.Equal(t, []string{execution.ExecutionId}, f.canceller.cancelled)
}

func TestCancelTerminalExecution(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	detail := f.createPipeline("alice")
	execution, err := f.svc.Execution.TriggerManual(context.Background(), detail.PipelineId, "alice")
	require.NoError(t, err)

	_, err = f.executions.Finalize(execution.ExecutionId, statemachine.ExecutionSuccess, nil)
	require.NoError(t, err)

	err = f.svc.Execution.Cancel(execution.ExecutionId, "alice")
	assert.True(t, errors.Is(err, ErrExecutionTerminal))
	assert.Empty(t, f.canceller.cancelled)
}

func TestCancelRequiresDeveloper(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	f.addUser("bob")
	detail := f.createPipeline("alice")
	f.grant(detail.PipelineId, "bob", model.LevelReader)
	execution, err := f.svc.Execution.TriggerManual(context.Background(), detail.PipelineId, "alice")
	require.NoError(t, err)

	err = f.svc.Execution.Cancel(execution.ExecutionId, "bob")
	assert.True(t, errors.Is(err, ErrAuthorizationDenied))
}
