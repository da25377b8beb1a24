// Package awsauth resolves AWS credentials and region into an aws.Config.
package awsauth

import (
	"context"
	"fmt"
	"os"
	"regexp"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// defaultEnvPrefix is the prefix the SDK itself reads credentials from.
const defaultEnvPrefix = "AWS"

// roleSessionName identifies cplog sessions in CloudTrail.
const roleSessionName = "cplog"

var roleARNPattern = regexp.MustCompile(`^arn:aws:iam::[0-9]{12}:role/[a-zA-Z0-9+=,.@\-_]*$`)

// Options selects how credentials are resolved. Every field is optional.
type Options struct {
	Region  string
	Profile string
	// EnvPrefix reads <prefix>_ACCESS_KEY_ID, <prefix>_SECRET_ACCESS_KEY and
	// <prefix>_SESSION_TOKEN instead of the standard AWS_ variables.
	EnvPrefix       string
	AccessKeyID     string
	SecretAccessKey string
	// RoleARN is assumed after the base credentials resolve. AccountID and
	// RoleName together take precedence over it.
	RoleARN   string
	AccountID string
	RoleName  string
}

// Load resolves an aws.Config through the SDK default chain (environment,
// shared profile, container or instance metadata). Explicit keys, or keys under
// a custom env prefix, replace the chain. When a valid role ARN is configured
// the resolved credentials are used to assume it.
func Load(ctx context.Context, opts Options) (aws.Config, error) {
	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}
	if static, ok := staticCredentials(opts); ok {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(static))
	}

	cfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("loading AWS config: %w", err)
	}

	if roleARN, ok := RoleARN(opts); ok {
		provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(cfg), roleARN,
			func(o *stscreds.AssumeRoleOptions) {
				o.RoleSessionName = roleSessionName
			})
		cfg.Credentials = aws.NewCredentialsCache(provider)
	}
	return cfg, nil
}

// RoleARN returns the role to assume and whether it is valid. An ARN composed
// from AccountID and RoleName wins over RoleARN. Invalid ARNs are ignored.
func RoleARN(opts Options) (string, bool) {
	arn := opts.RoleARN
	if opts.AccountID != "" && opts.RoleName != "" {
		arn = fmt.Sprintf("arn:aws:iam::%s:role/%s", opts.AccountID, opts.RoleName)
	}
	if !roleARNPattern.MatchString(arn) {
		return "", false
	}
	return arn, true
}

func staticCredentials(opts Options) (aws.CredentialsProvider, bool) {
	if opts.AccessKeyID != "" && opts.SecretAccessKey != "" {
		return credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""), true
	}
	prefix := opts.EnvPrefix
	if prefix == "" || prefix == defaultEnvPrefix {
		return nil, false
	}
	id := os.Getenv(prefix + "_ACCESS_KEY_ID")
	secret := os.Getenv(prefix + "_SECRET_ACCESS_KEY")
	if id == "" || secret == "" {
		return nil, false
	}
	return credentials.NewStaticCredentialsProvider(id, secret, os.Getenv(prefix+"_SESSION_TOKEN")), true
}
