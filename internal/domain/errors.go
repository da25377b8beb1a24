// internal/domain/errors.go
package domain

import "fmt"

// Service names used in error values and logs.
const (
	ServiceOrchestrator = "codepipeline"
	ServiceBuildRunner  = "codebuild"
	ServiceLogStore     = "logs"
)

// UpstreamQueryError is returned when a call to an external service fails
// (network, auth, throttling, not-found). It unwraps to the underlying error.
type UpstreamQueryError struct {
	Service   string
	Operation string
	Resource  string
	Err       error
}

func (e *UpstreamQueryError) Error() string {
	return fmt.Sprintf("%s %s %q: %v", e.Service, e.Operation, e.Resource, e.Err)
}

func (e *UpstreamQueryError) Unwrap() error {
	return e.Err
}

// MalformedResponseError is returned when a service answer violates an assumed invariant.
type MalformedResponseError struct {
	Service string
	Reason  string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed %s response: %s", e.Service, e.Reason)
}

// NoBuildsFoundError is returned when a build project has never been built.
type NoBuildsFoundError struct {
	Project string
}

func (e *NoBuildsFoundError) Error() string {
	return fmt.Sprintf("no builds found for project %q", e.Project)
}

// LogStreamNotFoundError is returned when a build's log stream does not exist.
type LogStreamNotFoundError struct {
	Group  string
	Stream string
}

func (e *LogStreamNotFoundError) Error() string {
	return fmt.Sprintf("log stream %s/%s not found", e.Group, e.Stream)
}
