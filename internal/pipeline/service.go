package pipeline

import (
	"context"
	"log/slog"

	"github.com/waabox/cplog/internal/domain"
	"github.com/waabox/cplog/internal/logging"
)

// DefaultMaxConcurrency bounds the per-stage fan-out when Options leaves it unset.
const DefaultMaxConcurrency = 8

// Options tunes a Service.
type Options struct {
	// MaxConcurrency bounds in-flight calls in each fan-out stage.
	MaxConcurrency int
	// MaxLogPages caps pages read per log stream. 0 or 1 reads a single page.
	MaxLogPages int
	Logger      *slog.Logger
}

var _ domain.PipelineReader = (*Service)(nil)

// Service exposes the two read-only pipeline queries: run status and aggregate log.
type Service struct {
	orchestrator   domain.Orchestrator
	inspector      *Inspector
	locator        *Locator
	retriever      *Retriever
	maxConcurrency int
	logger         *slog.Logger
}

// NewService wires the inspector, locator and retriever over the given ports.
func NewService(orchestrator domain.Orchestrator, builds domain.BuildRunner, logs domain.LogStore, opts Options) *Service {
	logger := logging.OrNop(opts.Logger)
	maxConcurrency := opts.MaxConcurrency
	if maxConcurrency < 1 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return &Service{
		orchestrator:   orchestrator,
		inspector:      NewInspector(orchestrator, logger),
		locator:        NewLocator(builds, logger),
		retriever:      NewRetriever(logs, opts.MaxLogPages, logger),
		maxConcurrency: maxConcurrency,
		logger:         logger,
	}
}

// JobMeta returns the current run status of the pipeline.
func (s *Service) JobMeta(ctx context.Context, pipelineName string) (domain.PipelineRunStatus, error) {
	return s.inspector.RunStatus(ctx, pipelineName)
}

// JobLog returns the newline-joined transcripts of the latest build of every
// CodeBuild project the pipeline references, in resolution order.
// Any failing project fails the whole call.
func (s *Service) JobLog(ctx context.Context, pipelineName string) (string, error) {
	def, err := s.orchestrator.PipelineDefinition(ctx, pipelineName)
	if err != nil {
		return "", upstream(domain.ServiceOrchestrator, "GetPipeline", pipelineName, err)
	}

	projects := ResolveBuildProjects(def)
	s.logger.Debug("resolved build projects", "pipeline", pipelineName, "projects", projects)
	if len(projects) == 0 {
		return "", nil
	}

	locators, err := fanOut(ctx, s.maxConcurrency, projects, s.locator.LatestBuild)
	if err != nil {
		return "", err
	}
	transcripts, err := fanOut(ctx, s.maxConcurrency, locators, s.retriever.Transcript)
	if err != nil {
		return "", err
	}
	return AssembleReport(transcripts), nil
}
