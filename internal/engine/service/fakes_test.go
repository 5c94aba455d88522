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
	"sort"
	"sync"

	"github.com/go-conduit/conduit/internal/engine/model"
	"github.com/go-conduit/conduit/internal/engine/repo"
	"github.com/go-conduit/conduit/internal/pkg/queue"
	"github.com/go-conduit/conduit/internal/pkg/resolver"
	"github.com/go-conduit/conduit/pkg/statemachine"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users map[string]*model.User
}

func (r *fakeUserRepo) GetByUserId(userId string) (*model.User, error) {
	if u, ok := r.users[userId]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Exists(userId string) (bool, error) {
	_, ok := r.users[userId]
	return ok, nil
}

type fakePermissionRepo struct {
	grants map[string]*model.PipelinePermission // by permissionId
}

func (r *fakePermissionRepo) Get(pipelineId, userId string) (*model.PipelinePermission, error) {
	for _, g := range r.grants {
		if g.PipelineId == pipelineId && g.UserId == userId {
			return g, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePermissionRepo) GetByPermissionId(permissionId string) (*model.PipelinePermission, error) {
	if g, ok := r.grants[permissionId]; ok {
		return g, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePermissionRepo) List(pipelineId string) ([]model.PipelinePermission, error) {
	var out []model.PipelinePermission
	for _, g := range r.grants {
		if g.PipelineId == pipelineId {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PermissionId < out[j].PermissionId })
	return out, nil
}

func (r *fakePermissionRepo) Create(permission *model.PipelinePermission) error {
	r.grants[permission.PermissionId] = permission
	return nil
}

func (r *fakePermissionRepo) UpdateLevel(permissionId string, level model.PermissionLevel) error {
	if g, ok := r.grants[permissionId]; ok {
		g.Level = level
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (r *fakePermissionRepo) Delete(permissionId string) error {
	delete(r.grants, permissionId)
	return nil
}

type fakePipelineRepo struct {
	pipelines   map[string]*model.Pipeline
	configs     map[string]*model.PipelineConfig
	permissions *fakePermissionRepo
}

func (r *fakePipelineRepo) CreateWithConfig(pipeline *model.Pipeline, config *model.PipelineConfig) error {
	r.pipelines[pipeline.PipelineId] = pipeline
	config.PipelineId = pipeline.PipelineId
	r.configs[pipeline.PipelineId] = config
	return nil
}

func (r *fakePipelineRepo) GetByPipelineId(pipelineId string) (*model.Pipeline, error) {
	if p, ok := r.pipelines[pipelineId]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePipelineRepo) GetByTriggerToken(token string) (*model.Pipeline, error) {
	for _, p := range r.pipelines {
		if p.TriggerToken == token {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePipelineRepo) ListByOwner(ownerId string) ([]model.Pipeline, error) {
	var out []model.Pipeline
	for _, p := range r.pipelines {
		if p.OwnerId == ownerId {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *fakePipelineRepo) ListAccessible(userId string) ([]model.Pipeline, error) {
	var out []model.Pipeline
	for _, p := range r.pipelines {
		if p.OwnerId == userId {
			out = append(out, *p)
			continue
		}
		if _, err := r.permissions.Get(p.PipelineId, userId); err == nil {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PipelineId < out[j].PipelineId })
	return out, nil
}

func (r *fakePipelineRepo) Update(pipeline *model.Pipeline) error {
	if _, ok := r.pipelines[pipeline.PipelineId]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.pipelines[pipeline.PipelineId] = pipeline
	return nil
}

func (r *fakePipelineRepo) UpdateOwner(pipelineId, newOwnerId string) error {
	if p, ok := r.pipelines[pipelineId]; ok {
		p.OwnerId = newOwnerId
		return nil
	}
	return gorm.ErrRecordNotFound
}

func (r *fakePipelineRepo) Delete(pipelineId string) error {
	delete(r.pipelines, pipelineId)
	delete(r.configs, pipelineId)
	return nil
}

func (r *fakePipelineRepo) TriggerTokenExists(token string) (bool, error) {
	_, err := r.GetByTriggerToken(token)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *fakePipelineRepo) GetConfig(pipelineId string) (*model.PipelineConfig, error) {
	if c, ok := r.configs[pipelineId]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakePipelineRepo) ReplaceConfig(config *model.PipelineConfig) error {
	if _, ok := r.configs[config.PipelineId]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.configs[config.PipelineId] = config
	return nil
}

type fakeExecutionRepo struct {
	mu         sync.Mutex
	executions map[string]*model.Execution
	order      []string
}

func newFakeExecutionRepo() *fakeExecutionRepo {
	return &fakeExecutionRepo{executions: make(map[string]*model.Execution)}
}

func (r *fakeExecutionRepo) Create(execution *model.Execution) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.executions[execution.ExecutionId] = execution
	r.order = append(r.order, execution.ExecutionId)
	return nil
}

func (r *fakeExecutionRepo) GetByExecutionId(executionId string) (*model.Execution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.executions[executionId]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeExecutionRepo) ListByPipeline(pipelineId string, limit int) ([]model.Execution, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Execution
	for i := len(r.order) - 1; i >= 0; i-- {
		e := r.executions[r.order[i]]
		if e != nil && e.PipelineId == pipelineId {
			out = append(out, *e)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeExecutionRepo) MarkRunning(executionId string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.executions[executionId]
	if !ok || e.Status != statemachine.ExecutionPending {
		return false, nil
	}
	e.Status = statemachine.ExecutionRunning
	return true, nil
}

func (r *fakeExecutionRepo) AppendLogs(executionId, chunk string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.executions[executionId]
	if !ok || e.Status.IsTerminal() {
		return false, nil
	}
	e.Logs += chunk
	return true, nil
}

func (r *fakeExecutionRepo) Finalize(executionId string, status statemachine.ExecutionStatus, errorMessage *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.executions[executionId]
	if !ok || e.Status.IsTerminal() {
		return false, nil
	}
	e.Status = status
	e.ErrorMessage = errorMessage
	return true, nil
}

func (r *fakeExecutionRepo) HasRunning(pipelineId string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.executions {
		if e.PipelineId == pipelineId && e.Status == statemachine.ExecutionRunning {
			return true, nil
		}
	}
	return false, nil
}

type fakeEnqueuer struct {
	payloads []*queue.RunPayload
	fail     bool
}

func (e *fakeEnqueuer) EnqueueRun(payload *queue.RunPayload) error {
	if e.fail {
		return errors.New("queue unavailable")
	}
	e.payloads = append(e.payloads, payload)
	return nil
}

type fakeCanceller struct {
	cancelled []string
}

func (c *fakeCanceller) Cancel(executionId string) error {
	c.cancelled = append(c.cancelled, executionId)
	return nil
}

type fetcherFunc func(ctx context.Context, repoURL, branch, path string) ([]byte, error)

func (f fetcherFunc) FetchFile(ctx context.Context, repoURL, branch, path string) ([]byte, error) {
	return f(ctx, repoURL, branch, path)
}

// fixture wires the services against in-memory repositories.
type fixture struct {
	users       *fakeUserRepo
	permissions *fakePermissionRepo
	pipelines   *fakePipelineRepo
	executions  *fakeExecutionRepo
	enqueuer    *fakeEnqueuer
	canceller   *fakeCanceller
	svc         *Services
}

func newFixture(fetcher resolver.FileFetcher) *fixture {
	users := &fakeUserRepo{users: make(map[string]*model.User)}
	permissions := &fakePermissionRepo{grants: make(map[string]*model.PipelinePermission)}
	pipelines := &fakePipelineRepo{
		pipelines:   make(map[string]*model.Pipeline),
		configs:     make(map[string]*model.PipelineConfig),
		permissions: permissions,
	}
	executions := newFakeExecutionRepo()
	enqueuer := &fakeEnqueuer{}
	canceller := &fakeCanceller{}

	repos := &repo.Repositories{
		User:       users,
		Pipeline:   pipelines,
		Permission: permissions,
		Execution:  executions,
	}
	return &fixture{
		users:       users,
		permissions: permissions,
		pipelines:   pipelines,
		executions:  executions,
		enqueuer:    enqueuer,
		canceller:   canceller,
		svc:         NewServices(repos, resolver.New(fetcher), enqueuer, canceller),
	}
}

func (f *fixture) addUser(userId string) {
	f.users.users[userId] = &model.User{UserId: userId, Username: userId}
}

const validYaml = "tasks:\n  - name: build\n    command: make build\n"

func (f *fixture) createPipeline(ownerId string) *model.PipelineDetail {
	detail, err := f.svc.Pipeline.Create(ownerId, &model.CreatePipelineReq{
		Name: "demo",
		Config: model.UpdatePipelineConfigReq{
			YamlSource:  model.SourceEditor,
			YamlContent: validYaml,
		},
	})
	if err != nil {
		panic(err)
	}
	return detail
}

func (f *fixture) grant(pipelineId, userId string, level model.PermissionLevel) {
	f.permissions.grants["grant-"+pipelineId+"-"+userId] = &model.PipelinePermission{
		PermissionId: "grant-" + pipelineId + "-" + userId,
		PipelineId:   pipelineId,
		UserId:       userId,
		Level:        level,
	}
}
