package pipeline

import (
	"context"
	"log/slog"

	"github.com/waabox/cplog/internal/domain"
	"github.com/waabox/cplog/internal/logging"
)

// Locator finds the most recent build of a CodeBuild project.
type Locator struct {
	builds domain.BuildRunner
	logger *slog.Logger
}

// NewLocator creates a Locator. A nil logger discards output.
func NewLocator(builds domain.BuildRunner, logger *slog.Logger) *Locator {
	return &Locator{builds: builds, logger: logging.OrNop(logger)}
}

// LatestBuild returns the log locator of the project's most recent build.
// The build runner lists ids most-recent-first, so the first id is used.
func (l *Locator) LatestBuild(ctx context.Context, project string) (domain.LogLocator, error) {
	ids, err := l.builds.ListBuildIDs(ctx, project)
	if err != nil {
		return "", upstream(domain.ServiceBuildRunner, "ListBuildsForProject", project, err)
	}
	if len(ids) == 0 {
		return "", &domain.NoBuildsFoundError{Project: project}
	}
	l.logger.Debug("located latest build", "project", project, "build_id", ids[0])
	return domain.LogLocator(ids[0]), nil
}
