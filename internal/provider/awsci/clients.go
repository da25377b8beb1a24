package awsci

import (
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/codebuild"
	"github.com/aws/aws-sdk-go-v2/service/codepipeline"
)

// Clients lazily builds one SDK client per service and reuses it for the
// lifetime of the value. It is safe for concurrent use.
type Clients struct {
	cfg      aws.Config
	endpoint string

	pipelineOnce sync.Once
	pipeline     *codepipeline.Client

	buildOnce sync.Once
	build     *codebuild.Client

	logsOnce sync.Once
	logs     *cloudwatchlogs.Client
}

// NewClients creates a client provider bound to cfg and its region.
// endpoint overrides the service endpoint for every client (LocalStack, tests);
// pass empty string to use the regional AWS endpoints.
func NewClients(cfg aws.Config, endpoint string) *Clients {
	return &Clients{cfg: cfg, endpoint: endpoint}
}

// Region returns the region every client is bound to.
func (c *Clients) Region() string {
	return c.cfg.Region
}

// CodePipeline returns the orchestrator client.
func (c *Clients) CodePipeline() *codepipeline.Client {
	c.pipelineOnce.Do(func() {
		c.pipeline = codepipeline.NewFromConfig(c.cfg, func(o *codepipeline.Options) {
			if c.endpoint != "" {
				o.BaseEndpoint = aws.String(c.endpoint)
			}
		})
	})
	return c.pipeline
}

// CodeBuild returns the build runner client.
func (c *Clients) CodeBuild() *codebuild.Client {
	c.buildOnce.Do(func() {
		c.build = codebuild.NewFromConfig(c.cfg, func(o *codebuild.Options) {
			if c.endpoint != "" {
				o.BaseEndpoint = aws.String(c.endpoint)
			}
		})
	})
	return c.build
}

// CloudWatchLogs returns the log store client.
func (c *Clients) CloudWatchLogs() *cloudwatchlogs.Client {
	c.logsOnce.Do(func() {
		c.logs = cloudwatchlogs.NewFromConfig(c.cfg, func(o *cloudwatchlogs.Options) {
			if c.endpoint != "" {
				o.BaseEndpoint = aws.String(c.endpoint)
			}
		})
	})
	return c.logs
}
