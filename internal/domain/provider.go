package domain

import "context"

// Orchestrator is the port to the pipeline orchestration service.
type Orchestrator interface {
	PipelineState(ctx context.Context, name string) (PipelineState, error)
	PipelineDefinition(ctx context.Context, name string) (PipelineDefinition, error)
}

// BuildRunner is the port to the build execution service.
type BuildRunner interface {
	// ListBuildIDs returns the build ids of a project, most recent first.
	ListBuildIDs(ctx context.Context, project string) ([]string, error)
}

// LogEventsQuery selects one page of events of a log stream.
// Without FromHead and NextToken the store answers with its most recent page.
type LogEventsQuery struct {
	Stream    LogStreamRef
	FromHead  bool
	NextToken string
}

// LogEventsPage is one page of log event messages in store order.
type LogEventsPage struct {
	Messages         []string
	NextForwardToken string
}

// LogStore is the port to the log storage service.
// Implementations return *LogStreamNotFoundError when the stream does not exist.
type LogStore interface {
	LogEvents(ctx context.Context, query LogEventsQuery) (LogEventsPage, error)
}

// PipelineReader answers the two read-only queries cplog exposes.
type PipelineReader interface {
	// JobMeta returns the status of the pipeline's current run.
	JobMeta(ctx context.Context, pipelineName string) (PipelineRunStatus, error)
	// JobLog returns the aggregate transcript of the latest build of every
	// build project the pipeline references.
	JobLog(ctx context.Context, pipelineName string) (string, error)
}
