package pipeline

import "github.com/waabox/cplog/internal/domain"

// ResolveBuildProjects returns the CodeBuild project names referenced by the
// pipeline's actions, in stage order then action order. Duplicates are kept:
// each reference gets its own log section.
func ResolveBuildProjects(def domain.PipelineDefinition) []string {
	var projects []string
	for _, stage := range def.Stages {
		for _, action := range stage.Actions {
			if name, ok := action.Configuration[domain.ProjectNameKey]; ok {
				projects = append(projects, name)
			}
		}
	}
	return projects
}
