// Package pipeline correlates CodePipeline state with CodeBuild runs and
// their CloudWatch log streams. It only reads from the services behind the
// domain ports and never mutates them.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/waabox/cplog/internal/domain"
	"github.com/waabox/cplog/internal/logging"
)

// Inspector derives the run status of a pipeline from its stage states.
type Inspector struct {
	orchestrator domain.Orchestrator
	logger       *slog.Logger
}

// NewInspector creates an Inspector. A nil logger discards output.
func NewInspector(orchestrator domain.Orchestrator, logger *slog.Logger) *Inspector {
	return &Inspector{orchestrator: orchestrator, logger: logging.OrNop(logger)}
}

// RunStatus queries the orchestrator for the pipeline's stage states and derives
// the aggregate result and run id.
func (i *Inspector) RunStatus(ctx context.Context, pipelineName string) (domain.PipelineRunStatus, error) {
	state, err := i.orchestrator.PipelineState(ctx, pipelineName)
	if err != nil {
		return domain.PipelineRunStatus{}, upstream(domain.ServiceOrchestrator, "GetPipelineState", pipelineName, err)
	}
	i.logger.Debug("fetched pipeline state", "pipeline", pipelineName, "stages", len(state.Stages))
	if state.PipelineName == "" {
		state.PipelineName = pipelineName
	}
	return DeriveRunStatus(state)
}

// DeriveRunStatus computes the run status of a pipeline state.
//
// The result is FAILURE when any stage's latest execution status is exactly
// "Failed". The run id is taken from the last stage in returned order, which
// is positional and not necessarily the last declared stage.
func DeriveRunStatus(state domain.PipelineState) (domain.PipelineRunStatus, error) {
	if len(state.Stages) == 0 {
		return domain.PipelineRunStatus{}, &domain.MalformedResponseError{
			Service: domain.ServiceOrchestrator,
			Reason:  fmt.Sprintf("pipeline %q has no stage states", state.PipelineName),
		}
	}

	result := domain.ResultSuccess
	var runID string
	for _, stage := range state.Stages {
		if stage.LatestExecution == nil {
			return domain.PipelineRunStatus{}, &domain.MalformedResponseError{
				Service: domain.ServiceOrchestrator,
				Reason:  fmt.Sprintf("stage %q of pipeline %q has no latest execution", stage.StageName, state.PipelineName),
			}
		}
		if stage.LatestExecution.Status == domain.StatusFailed {
			result = domain.ResultFailure
		}
		runID = stage.LatestExecution.PipelineExecutionID
	}
	if runID == "" {
		return domain.PipelineRunStatus{}, &domain.MalformedResponseError{
			Service: domain.ServiceOrchestrator,
			Reason:  fmt.Sprintf("pipeline %q: last stage has an empty execution id", state.PipelineName),
		}
	}

	return domain.PipelineRunStatus{
		PipelineName:    state.PipelineName,
		PipelineVersion: state.PipelineVersion,
		RunID:           runID,
		DisplayName:     domain.DisplayName(runID),
		Result:          result,
		Stages:          state.Stages,
	}, nil
}

// upstream wraps a port failure in UpstreamQueryError unless the port already
// returned one of the typed domain errors.
func upstream(service, operation, resource string, err error) error {
	var (
		upstreamErr  *domain.UpstreamQueryError
		malformedErr *domain.MalformedResponseError
		noBuildsErr  *domain.NoBuildsFoundError
		noStreamErr  *domain.LogStreamNotFoundError
	)
	switch {
	case errors.As(err, &upstreamErr),
		errors.As(err, &malformedErr),
		errors.As(err, &noBuildsErr),
		errors.As(err, &noStreamErr):
		return err
	}
	return &domain.UpstreamQueryError{
		Service:   service,
		Operation: operation,
		Resource:  resource,
		Err:       err,
	}
}
