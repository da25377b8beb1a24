// Package awsci adapts CodePipeline, CodeBuild and CloudWatch Logs to the
// domain ports.
package awsci

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/codebuild"
	codebuildtypes "github.com/aws/aws-sdk-go-v2/service/codebuild/types"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
	codepipelinetypes "github.com/aws/aws-sdk-go-v2/service/codepipeline/types"
	"github.com/aws/smithy-go"

	"github.com/waabox/cplog/internal/domain"
)

const resourceNotFoundCode = "ResourceNotFoundException"

// Adapter implements the orchestrator, build runner and log store ports on AWS.
type Adapter struct {
	clients *Clients
}

// Ensure Adapter fully implements the domain ports.
var (
	_ domain.Orchestrator = (*Adapter)(nil)
	_ domain.BuildRunner  = (*Adapter)(nil)
	_ domain.LogStore     = (*Adapter)(nil)
)

// NewAdapter creates an adapter that takes its SDK clients from clients.
func NewAdapter(clients *Clients) *Adapter {
	return &Adapter{clients: clients}
}

// PipelineState returns the state of every stage of the pipeline.
func (a *Adapter) PipelineState(ctx context.Context, name string) (domain.PipelineState, error) {
	out, err := a.clients.CodePipeline().GetPipelineState(ctx, &codepipeline.GetPipelineStateInput{
		Name: aws.String(name),
	})
	if err != nil {
		return domain.PipelineState{}, err
	}
	state := domain.PipelineState{
		PipelineName:    aws.ToString(out.PipelineName),
		PipelineVersion: aws.ToInt32(out.PipelineVersion),
		Stages:          make([]domain.StageState, len(out.StageStates)),
	}
	for i, s := range out.StageStates {
		state.Stages[i] = toStageState(s)
	}
	return state, nil
}

// PipelineDefinition returns the declared stages and actions of the pipeline.
func (a *Adapter) PipelineDefinition(ctx context.Context, name string) (domain.PipelineDefinition, error) {
	out, err := a.clients.CodePipeline().GetPipeline(ctx, &codepipeline.GetPipelineInput{
		Name: aws.String(name),
	})
	if err != nil {
		return domain.PipelineDefinition{}, err
	}
	if out.Pipeline == nil {
		return domain.PipelineDefinition{}, &domain.MalformedResponseError{
			Service: domain.ServiceOrchestrator,
			Reason:  fmt.Sprintf("GetPipeline %q returned no pipeline declaration", name),
		}
	}
	def := domain.PipelineDefinition{
		Name:   aws.ToString(out.Pipeline.Name),
		Stages: make([]domain.StageDeclaration, len(out.Pipeline.Stages)),
	}
	for i, s := range out.Pipeline.Stages {
		def.Stages[i] = toStageDeclaration(s)
	}
	return def, nil
}

// ListBuildIDs returns the ids of the project's builds, most recent first.
// Only the first page is requested; callers only need the newest id.
func (a *Adapter) ListBuildIDs(ctx context.Context, project string) ([]string, error) {
	out, err := a.clients.CodeBuild().ListBuildsForProject(ctx, &codebuild.ListBuildsForProjectInput{
		ProjectName: aws.String(project),
		SortOrder:   codebuildtypes.SortOrderTypeDescending,
	})
	if err != nil {
		return nil, err
	}
	return out.Ids, nil
}

// LogEvents returns one page of messages of a CodeBuild log stream.
func (a *Adapter) LogEvents(ctx context.Context, query domain.LogEventsQuery) (domain.LogEventsPage, error) {
	input := &cloudwatchlogs.GetLogEventsInput{
		LogGroupName:  aws.String(query.Stream.Group),
		LogStreamName: aws.String(query.Stream.Stream),
	}
	if query.FromHead {
		input.StartFromHead = aws.Bool(true)
	}
	if query.NextToken != "" {
		input.NextToken = aws.String(query.NextToken)
	}

	out, err := a.clients.CloudWatchLogs().GetLogEvents(ctx, input)
	if err != nil {
		if isNotFound(err) {
			return domain.LogEventsPage{}, &domain.LogStreamNotFoundError{
				Group:  query.Stream.Group,
				Stream: query.Stream.Stream,
			}
		}
		return domain.LogEventsPage{}, err
	}

	page := domain.LogEventsPage{
		Messages:         make([]string, len(out.Events)),
		NextForwardToken: aws.ToString(out.NextForwardToken),
	}
	for i, e := range out.Events {
		page.Messages[i] = aws.ToString(e.Message)
	}
	return page, nil
}

func isNotFound(err error) bool {
	var apiErr smithy.APIError
	return errors.As(err, &apiErr) && apiErr.ErrorCode() == resourceNotFoundCode
}

func toStageState(s codepipelinetypes.StageState) domain.StageState {
	state := domain.StageState{StageName: aws.ToString(s.StageName)}
	if s.LatestExecution != nil {
		state.LatestExecution = &domain.StageExecution{
			Status:              string(s.LatestExecution.Status),
			PipelineExecutionID: aws.ToString(s.LatestExecution.PipelineExecutionId),
		}
	}
	return state
}

func toStageDeclaration(s codepipelinetypes.StageDeclaration) domain.StageDeclaration {
	stage := domain.StageDeclaration{
		Name:    aws.ToString(s.Name),
		Actions: make([]domain.ActionDeclaration, len(s.Actions)),
	}
	for i, act := range s.Actions {
		stage.Actions[i] = domain.ActionDeclaration{
			Name:          aws.ToString(act.Name),
			Configuration: act.Configuration,
		}
	}
	return stage
}
