// Package cli wires configuration, AWS credentials and the pipeline service
// into the cplog command tree.
package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/waabox/cplog/internal/config"
	"github.com/waabox/cplog/internal/domain"
	"github.com/waabox/cplog/internal/logging"
)

// readerFactory builds the pipeline reader once configuration is resolved.
type readerFactory func(ctx context.Context, cfg config.Config, logger *slog.Logger) (domain.PipelineReader, error)

type globalFlags struct {
	configPath  string
	region      string
	profile     string
	logLevel    string
	concurrency int
	maxLogPages int
}

// app carries the state shared by every subcommand of one invocation.
type app struct {
	flags      globalFlags
	configPath string
	cfg        config.Config
	logger     *slog.Logger
	newReader  readerFactory
}

// Execute runs the cplog command tree with the process arguments.
func Execute(ctx context.Context, version string) error {
	return NewRootCommand(version).ExecuteContext(ctx)
}

// NewRootCommand builds the cplog command tree backed by AWS.
func NewRootCommand(version string) *cobra.Command {
	return newRootCommand(version, newAWSReader)
}

func newRootCommand(version string, factory readerFactory) *cobra.Command {
	a := &app{newReader: factory, logger: logging.Nop()}
	root := &cobra.Command{
		Use:   "cplog",
		Short: "Read-only CodePipeline status and CodeBuild log aggregator",
		Long: `cplog reports the result of the current run of an AWS CodePipeline and
collects the CloudWatch logs of the latest build of every CodeBuild
project the pipeline references into a single report.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.configPath, "config", "c", "", "config file (default is $HOME/.config/cplog/config.toml)")
	pf.StringVar(&a.flags.region, "region", "", "AWS region")
	pf.StringVar(&a.flags.profile, "profile", "", "AWS shared config profile")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.IntVar(&a.flags.concurrency, "concurrency", 0, "max in-flight AWS calls per fan-out stage")
	pf.IntVar(&a.flags.maxLogPages, "max-log-pages", 0, "max CloudWatch pages read per log stream")

	root.AddCommand(a.statusCmd(), a.logsCmd(), a.watchCmd(), a.configCmd())
	return root
}

// setup resolves configuration from .env, the config file, the environment and
// flags, in increasing order of precedence.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if err := config.LoadDotEnv(".env"); err != nil {
		return err
	}
	a.configPath = a.flags.configPath
	if a.configPath == "" {
		a.configPath = config.DefaultConfigPath()
	}
	cfg, err := config.LoadFrom(a.configPath)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("region") {
		cfg.Region = a.flags.region
	}
	if flags.Changed("profile") {
		cfg.AWS.Profile = a.flags.profile
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = a.flags.logLevel
	}
	if flags.Changed("concurrency") {
		cfg.Concurrency = a.flags.concurrency
	}
	if flags.Changed("max-log-pages") {
		cfg.MaxLogPages = a.flags.maxLogPages
	}

	a.cfg = cfg
	a.logger = logging.New(cmd.ErrOrStderr(), cfg.LogLevelOrDefault())
	return nil
}

// pipelineName returns the positional pipeline argument, falling back to config.
func (a *app) pipelineName(args []string) (string, error) {
	if len(args) > 0 && args[0] != "" {
		return args[0], nil
	}
	if a.cfg.Pipeline != "" {
		return a.cfg.Pipeline, nil
	}
	return "", errors.New("no pipeline given: pass it as an argument, set CPLOG_PIPELINE or add pipeline to the config file")
}

// reader resolves the pipeline name and builds the reader for a subcommand.
func (a *app) reader(cmd *cobra.Command, args []string) (domain.PipelineReader, string, error) {
	name, err := a.pipelineName(args)
	if err != nil {
		return nil, "", err
	}
	reader, err := a.newReader(cmd.Context(), a.cfg, a.logger)
	if err != nil {
		return nil, "", err
	}
	return reader, name, nil
}
