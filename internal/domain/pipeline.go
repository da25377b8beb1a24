package domain

import (
	"fmt"
	"strings"
)

// RunResult is the aggregate outcome of a pipeline run.
type RunResult string

const (
	ResultSuccess RunResult = "SUCCESS"
	ResultFailure RunResult = "FAILURE"
)

// StatusFailed is the stage execution status that marks a run as failed.
// The comparison is exact and case-sensitive.
const StatusFailed = "Failed"

// StageExecution is the latest execution of a single stage as reported by CodePipeline.
type StageExecution struct {
	Status              string `json:"status" yaml:"status"`
	PipelineExecutionID string `json:"pipelineExecutionId" yaml:"pipelineExecutionId"`
}

// StageState is the orchestrator's view of one stage. It is passed through unchanged.
type StageState struct {
	StageName       string          `json:"stageName" yaml:"stageName"`
	LatestExecution *StageExecution `json:"latestExecution,omitempty" yaml:"latestExecution,omitempty"`
}

// PipelineState is the raw answer of the orchestrator for a pipeline, stages in returned order.
type PipelineState struct {
	PipelineName    string
	PipelineVersion int32
	Stages          []StageState
}

// PipelineRunStatus is the derived status of the current run of a pipeline.
type PipelineRunStatus struct {
	PipelineName    string       `json:"pipelineName" yaml:"pipelineName"`
	PipelineVersion int32        `json:"pipelineVersion" yaml:"pipelineVersion"`
	RunID           string       `json:"runId" yaml:"runId"`
	DisplayName     string       `json:"displayName" yaml:"displayName"`
	Result          RunResult    `json:"result" yaml:"result"`
	Stages          []StageState `json:"stageStates" yaml:"stageStates"`
}

// ActionDeclaration is a single action of a pipeline stage.
type ActionDeclaration struct {
	Name          string
	Configuration map[string]string
}

// StageDeclaration is a declared pipeline stage with its ordered actions.
type StageDeclaration struct {
	Name    string
	Actions []ActionDeclaration
}

// PipelineDefinition is the declarative structure of a pipeline.
type PipelineDefinition struct {
	Name   string
	Stages []StageDeclaration
}

// ProjectNameKey is the action configuration key that references a CodeBuild project.
const ProjectNameKey = "ProjectName"

// CodeBuildLogGroupPrefix is prepended to a build id to form its CloudWatch log group.
const CodeBuildLogGroupPrefix = "/aws/codebuild/"

// LogLocator is the composite "<buildId>:<streamSuffix>" identifier returned by CodeBuild.
type LogLocator string

// LogStreamRef addresses a single CloudWatch Logs stream.
type LogStreamRef struct {
	Group  string
	Stream string
}

// ParseLogLocator splits a locator at its first ':' into the log group and stream
// of the build. Both halves must be non-empty.
func ParseLogLocator(locator LogLocator) (LogStreamRef, error) {
	buildID, stream, ok := strings.Cut(string(locator), ":")
	if !ok {
		return LogStreamRef{}, &MalformedResponseError{
			Service: ServiceBuildRunner,
			Reason:  fmt.Sprintf("log locator %q has no ':' separator", locator),
		}
	}
	if buildID == "" || stream == "" {
		return LogStreamRef{}, &MalformedResponseError{
			Service: ServiceBuildRunner,
			Reason:  fmt.Sprintf("log locator %q has an empty build id or stream", locator),
		}
	}
	return LogStreamRef{
		Group:  CodeBuildLogGroupPrefix + buildID,
		Stream: stream,
	}, nil
}

// DisplayName returns the segment of a run id before its first '-'.
func DisplayName(runID string) string {
	head, _, _ := strings.Cut(runID, "-")
	return head
}
