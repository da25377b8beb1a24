package cli

import (
	"context"
	"errors"
	"log/slog"

	"github.com/waabox/cplog/internal/awsauth"
	"github.com/waabox/cplog/internal/config"
	"github.com/waabox/cplog/internal/domain"
	"github.com/waabox/cplog/internal/pipeline"
	"github.com/waabox/cplog/internal/provider/awsci"
)

var errNoRegion = errors.New("no AWS region configured: use --region, AWS_REGION or region in the config file")

func newAWSReader(ctx context.Context, cfg config.Config, logger *slog.Logger) (domain.PipelineReader, error) {
	awsCfg, err := awsauth.Load(ctx, awsOptions(cfg))
	if err != nil {
		return nil, err
	}
	if awsCfg.Region == "" {
		return nil, errNoRegion
	}
	logger.Debug("resolved AWS config", "region", awsCfg.Region, "endpoint", cfg.AWS.EndpointURL)

	adapter := awsci.NewAdapter(awsci.NewClients(awsCfg, cfg.AWS.EndpointURL))
	return pipeline.NewService(adapter, adapter, adapter, pipeline.Options{
		MaxConcurrency: cfg.ConcurrencyOrDefault(),
		MaxLogPages:    cfg.MaxLogPagesOrDefault(),
		Logger:         logger,
	}), nil
}

// awsOptions maps the config file's AWS settings onto credential options.
func awsOptions(cfg config.Config) awsauth.Options {
	return awsauth.Options{
		Region:          cfg.Region,
		Profile:         cfg.AWS.Profile,
		EnvPrefix:       cfg.AWS.EnvPrefix,
		AccessKeyID:     cfg.AWS.AccessKeyID,
		SecretAccessKey: cfg.AWS.SecretAccessKey,
		RoleARN:         cfg.AWS.RoleARN,
		AccountID:       cfg.AWS.AccountID,
		RoleName:        cfg.AWS.RoleName,
	}
}
