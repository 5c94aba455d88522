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
	"testing"

	"github.com/go-conduit/conduit/internal/engine/model"
	"github.com/go-conduit/conduit/pkg/token"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePipelineIssuesToken(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")

	detail := f.createPipeline("alice")
	assert.Len(t, detail.TriggerToken, token.Length)
	assert.True(t, detail.IsActive)
	assert.Equal(t, "alice", detail.OwnerId)
	require.NotNil(t, detail.Config)
	assert.Equal(t, model.SourceEditor, detail.Config.YamlSource)
}

func TestCreatePipelineRejectsInvalidConfig(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")

	_, err := f.svc.Pipeline.Create("alice", &model.CreatePipelineReq{
		Name: "broken",
		Config: model.UpdatePipelineConfigReq{
			YamlSource: model.SourceEditor, // no content
		},
	})
	assert.Error(t, err)

	_, err = f.svc.Pipeline.Create("alice", &model.CreatePipelineReq{
		Name: "broken",
		Config: model.UpdatePipelineConfigReq{
			YamlSource: model.SourceRepo, // no repo url
		},
	})
	assert.Error(t, err)
}

func TestCreatePipelineRepoConfigDefaults(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")

	detail, err := f.svc.Pipeline.Create("alice", &model.CreatePipelineReq{
		Name: "repo-based",
		Config: model.UpdatePipelineConfigReq{
			YamlSource: model.SourceRepo,
			RepoUrl:    "https://example.com/demo.git",
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "main", detail.Config.RepoBranch)
	assert.Equal(t, "pipeline.yml", detail.Config.YamlFilePath)
}

func TestGetRedactsTokenBelowMaintainer(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	f.addUser("bob")
	f.addUser("carol")
	detail := f.createPipeline("alice")
	f.grant(detail.PipelineId, "bob", model.LevelReader)
	f.grant(detail.PipelineId, "carol", model.LevelMaintainer)

	asOwner, err := f.svc.Pipeline.Get(detail.PipelineId, "alice")
	require.NoError(t, err)
	assert.NotEmpty(t, asOwner.TriggerToken)

	asReader, err := f.svc.Pipeline.Get(detail.PipelineId, "bob")
	require.NoError(t, err)
	assert.Empty(t, asReader.TriggerToken)

	asMaintainer, err := f.svc.Pipeline.Get(detail.PipelineId, "carol")
	require.NoError(t, err)
	assert.NotEmpty(t, asMaintainer.TriggerToken)
}

func TestGetRedactsYamlContentBelowMaintainer(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	f.addUser("bob")
	f.addUser("carol")
	detail := f.createPipeline("alice")
	f.grant(detail.PipelineId, "bob", model.LevelReader)
	f.grant(detail.PipelineId, "carol", model.LevelMaintainer)

	asReader, err := f.svc.Pipeline.Get(detail.PipelineId, "bob")
	require.NoError(t, err)
	require.NotNil(t, asReader.Config)
	assert.Empty(t, asReader.Config.YamlContent, "readers must not see the YAML body")
	assert.Equal(t, model.SourceEditor, asReader.Config.YamlSource)

	asMaintainer, err := f.svc.Pipeline.Get(detail.PipelineId, "carol")
	require.NoError(t, err)
	require.NotNil(t, asMaintainer.Config)
	assert.Equal(t, validYaml, asMaintainer.Config.YamlContent)

	asOwner, err := f.svc.Pipeline.Get(detail.PipelineId, "alice")
	require.NoError(t, err)
	require.NotNil(t, asOwner.Config)
	assert.Equal(t, validYaml, asOwner.Config.YamlContent)
}

func TestGetDeniesStranger(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	detail := f.createPipeline("alice")

	_, err := f.svc.Pipeline.Get(detail.PipelineId, "stranger")
	assert.True(t, errors.Is(err, ErrAuthorizationDenied))
}

func TestGetUnknownPipeline(t *testing.T) {
	f := newFixture(nil)
	_, err := f.svc.Pipeline.Get("nope", "alice")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListAccessible(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	f.addUser("bob")
	owned := f.createPipeline("alice")
	other := f.createPipeline("bob")
	f.grant(other.PipelineId, "alice", model.LevelReader)
	f.createPipeline("bob") // alice has no access to this one

	pipelines, err := f.svc.Pipeline.List("alice")
	require.NoError(t, err)
	require.Len(t, pipelines, 2)

	ids := []string{pipelines[0].PipelineId, pipelines[1].PipelineId}
	assert.Contains(t, ids, owned.PipelineId)
	assert.Contains(t, ids, other.PipelineId)
}

func TestUpdateRequiresMaintainer(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	f.addUser("bob")
	detail := f.createPipeline("alice")
	f.grant(detail.PipelineId, "bob", model.LevelDeveloper)

	name := "renamed"
	_, err := f.svc.Pipeline.Update(detail.PipelineId, "bob", &model.UpdatePipelineReq{Name: &name})
	assert.True(t, errors.Is(err, ErrAuthorizationDenied))
}

func TestUpdateIsPartial(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	detail := f.createPipeline("alice")

	inactive := false
	updated, err := f.svc.Pipeline.Update(detail.PipelineId, "alice", &model.UpdatePipelineReq{IsActive: &inactive})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)
	assert.Equal(t, "demo", updated.Name, "unset fields keep their values")
}

func TestUpdateConfigLatestWins(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	detail := f.createPipeline("alice")

	updated, err := f.svc.Pipeline.UpdateConfig(detail.PipelineId, "alice", &model.UpdatePipelineConfigReq{
		YamlSource: model.SourceRepo,
		RepoUrl:    "https://example.com/demo.git",
		RepoBranch: "release",
	})
	require.NoError(t, err)
	assert.Equal(t, model.SourceRepo, updated.YamlSource)

	got, err := f.pipelines.GetConfig(detail.PipelineId)
	require.NoError(t, err)
	assert.Equal(t, "release", got.RepoBranch)
}

func TestDeleteOwnerOnly(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	f.addUser("bob")
	detail := f.createPipeline("alice")
	f.grant(detail.PipelineId, "bob", model.LevelMaintainer)

	err := f.svc.Pipeline.Delete(detail.PipelineId, "bob")
	assert.True(t, errors.Is(err, ErrAuthorizationDenied))

	require.NoError(t, f.svc.Pipeline.Delete(detail.PipelineId, "alice"))
	_, err = f.svc.Pipeline.Get(detail.PipelineId, "alice")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestTransferOwnership(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	f.addUser("bob")
	detail := f.createPipeline("alice")
	f.grant(detail.PipelineId, "bob", model.LevelDeveloper)

	require.NoError(t, f.svc.Pipeline.Transfer(detail.PipelineId, "alice", &model.TransferOwnershipReq{NewOwnerId: "bob"}))

	pipeline, err := f.pipelines.GetByPipelineId(detail.PipelineId)
	require.NoError(t, err)
	assert.Equal(t, "bob", pipeline.OwnerId)

	// Bob's old grant is gone, ownership subsumes it.
	level, err := f.svc.Permission.EffectiveLevel(pipeline, "bob")
	require.NoError(t, err)
	assert.Equal(t, model.LevelOwner, level)
	grants, err := f.permissions.List(detail.PipelineId)
	require.NoError(t, err)
	assert.Empty(t, grants)

	// The previous owner keeps nothing.
	level, err = f.svc.Permission.EffectiveLevel(pipeline, "alice")
	require.NoError(t, err)
	assert.Equal(t, model.LevelNone, level)
}

func TestTransferToUnknownUser(t *testing.T) {
	f := newFixture(nil)
	f.addUser("alice")
	detail := f.createPipeline("alice")

	err := f.svc.Pipeline.Transfer(detail.PipelineId, "alice", &model.TransferOwnershipReq{NewOwnerId: "ghost"})
	assert.True(t, errors.Is(err, ErrUserNotFound))
}
