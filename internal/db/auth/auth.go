// Package auth resolves short-lived database credentials for deployments
// that authenticate with AWS RDS IAM instead of a static password.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	rdsauth "github.com/aws/aws-sdk-go-v2/feature/rds/auth"
	"github.com/jackc/pgx/v5"

	"github.com/stacklok/pipeline-tracker/internal/config"
)

const regionDetect = "detect"

// BeforeConnectFunc sets the password of a connection right before it is opened
type BeforeConnectFunc func(ctx context.Context, connConfig *pgx.ConnConfig) error

// NewBeforeConnect returns a hook that generates a fresh IAM token for every
// new pool connection. The region is resolved once, up front.
func NewBeforeConnect(ctx context.Context, cfg *config.DatabaseConfig) (BeforeConnectFunc, error) {
	if err := checkDynamic(cfg); err != nil {
		return nil, err
	}

	region, err := resolveRegion(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return func(ctx context.Context, connConfig *pgx.ConnConfig) error {
		token, err := buildToken(ctx, cfg, region)
		if err != nil {
			return err
		}
		connConfig.Password = token
		return nil
	}, nil
}

// NewToken returns a single IAM token, or an empty string when dynamic
// authentication is not configured.
func NewToken(ctx context.Context, cfg *config.DatabaseConfig) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("database configuration is required")
	}
	if cfg.DynamicAuth == nil {
		return "", nil
	}
	if err := checkDynamic(cfg); err != nil {
		return "", err
	}

	region, err := resolveRegion(ctx, cfg)
	if err != nil {
		return "", err
	}
	return buildToken(ctx, cfg, region)
}

// ConnectionString builds a connection string for one-shot connections such
// as migrations, which open their own connection and cannot use a hook. The
// IAM token is embedded as the password when dynamic auth is configured.
func ConnectionString(ctx context.Context, cfg *config.DatabaseConfig) (string, error) {
	if cfg == nil {
		return "", fmt.Errorf("database configuration is required")
	}
	if !cfg.UsesDynamicAuth() {
		return cfg.GetConnectionString()
	}

	token, err := NewToken(ctx, cfg)
	if err != nil {
		return "", fmt.Errorf("failed to resolve database auth token: %w", err)
	}
	return cfg.BuildConnectionString(token), nil
}

func checkDynamic(cfg *config.DatabaseConfig) error {
	if cfg == nil {
		return fmt.Errorf("database configuration is required")
	}
	if cfg.DynamicAuth == nil {
		return fmt.Errorf("dynamic authentication is not configured")
	}
	if cfg.DynamicAuth.AWSRDSIAM == nil {
		return fmt.Errorf("dynamic auth is configured but no supported auth method (e.g., awsRdsIam) is specified")
	}
	return nil
}

// resolveRegion reads the region from the config, asking IMDS when it is "detect"
func resolveRegion(ctx context.Context, cfg *config.DatabaseConfig) (string, error) {
	region := cfg.DynamicAuth.AWSRDSIAM.Region
	switch region {
	case "":
		return "", fmt.Errorf("AWS RDS IAM region is not configured")
	case regionDetect:
		client := imds.New(imds.Options{
			HTTPClient: &http.Client{Timeout: 2 * time.Second},
		})
		out, err := client.GetRegion(ctx, &imds.GetRegionInput{})
		if err != nil {
			return "", fmt.Errorf("failed to get region from IMDS: %w", err)
		}
		return out.Region, nil
	default:
		return region, nil
	}
}

func buildToken(ctx context.Context, cfg *config.DatabaseConfig, region string) (string, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return "", fmt.Errorf("failed to load AWS config: %w", err)
	}

	endpoint := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	token, err := rdsauth.BuildAuthToken(ctx, endpoint, region, cfg.User, awsCfg.Credentials)
	if err != nil {
		return "", fmt.Errorf("failed to build authentication token: %w", err)
	}
	return token, nil
}
