package pipeline_test

import (
	"context"
	"sync"
	"time"

	"github.com/waabox/cplog/internal/domain"
)

// fakeOrchestrator satisfies domain.Orchestrator with canned answers.
type fakeOrchestrator struct {
	state    domain.PipelineState
	stateErr error
	def      domain.PipelineDefinition
	defErr   error
}

func (f *fakeOrchestrator) PipelineState(_ context.Context, name string) (domain.PipelineState, error) {
	if f.stateErr != nil {
		return domain.PipelineState{}, f.stateErr
	}
	s := f.state
	if s.PipelineName == "" {
		s.PipelineName = name
	}
	return s, nil
}

func (f *fakeOrchestrator) PipelineDefinition(_ context.Context, _ string) (domain.PipelineDefinition, error) {
	return f.def, f.defErr
}

// fakeBuildRunner maps project names to build ids and records every call.
type fakeBuildRunner struct {
	mu     sync.Mutex
	ids    map[string][]string
	errs   map[string]error
	delays map[string]time.Duration
	calls  []string
}

func (f *fakeBuildRunner) ListBuildIDs(ctx context.Context, project string) ([]string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, project)
	delay := f.delays[project]
	err := f.errs[project]
	ids := f.ids[project]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (f *fakeBuildRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// fakeLogStore serves pages keyed by "group|stream|token".
type fakeLogStore struct {
	mu      sync.Mutex
	pages   map[string]domain.LogEventsPage
	errs    map[string]error
	delays  map[string]time.Duration
	queries []domain.LogEventsQuery
}

func pageKey(group, stream, token string) string {
	return group + "|" + stream + "|" + token
}

func (f *fakeLogStore) LogEvents(ctx context.Context, q domain.LogEventsQuery) (domain.LogEventsPage, error) {
	key := pageKey(q.Stream.Group, q.Stream.Stream, q.NextToken)
	f.mu.Lock()
	f.queries = append(f.queries, q)
	delay := f.delays[q.Stream.Stream]
	err := f.errs[q.Stream.Stream]
	page, ok := f.pages[key]
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return domain.LogEventsPage{}, ctx.Err()
		}
	}
	if err != nil {
		return domain.LogEventsPage{}, err
	}
	if !ok {
		return domain.LogEventsPage{}, &domain.LogStreamNotFoundError{Group: q.Stream.Group, Stream: q.Stream.Stream}
	}
	return page, nil
}

func (f *fakeLogStore) queryCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries)
}

func stage(name, status, executionID string) domain.StageState {
	return domain.StageState{
		StageName:       name,
		LatestExecution: &domain.StageExecution{Status: status, PipelineExecutionID: executionID},
	}
}

func action(config map[string]string) domain.ActionDeclaration {
	return domain.ActionDeclaration{Configuration: config}
}
