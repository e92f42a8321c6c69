package archive

import (
	"errors"
	"fmt"
	"time"

	"github.com/tablo-app/tablo/internal/pkg/env"
)

// Config holds audit archive configuration
type Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	BucketName      string
	EndpointURL     string // Optional for S3-compatible services
	Enabled         bool

	// EventRetention is how long processed webhook events stay in MySQL
	// before being exported and pruned.
	EventRetention time.Duration
	// AttemptRetention is how long rate-limit ledger rows are kept.
	AttemptRetention time.Duration
}

// LoadConfig loads archive configuration from environment variables
func LoadConfig() (*Config, error) {
	config := &Config{
		AccessKeyID:      env.GetEnv("ARCHIVE_S3_ACCESS_KEY_ID", ""),
		SecretAccessKey:  env.GetEnv("ARCHIVE_S3_SECRET_ACCESS_KEY", ""),
		Region:           env.GetEnv("ARCHIVE_S3_REGION", "eu-central-1"),
		BucketName:       env.GetEnv("ARCHIVE_S3_BUCKET_NAME", ""),
		EndpointURL:      env.GetEnv("ARCHIVE_S3_ENDPOINT_URL", ""),
		Enabled:          env.GetEnv("ARCHIVE_ENABLED", "false") == "true",
		EventRetention:   time.Duration(env.GetEnvInt("ARCHIVE_EVENT_RETENTION_DAYS", 30)) * 24 * time.Hour,
		AttemptRetention: time.Duration(env.GetEnvInt("ARCHIVE_ATTEMPT_RETENTION_HOURS", 24)) * time.Hour,
	}

	if config.Enabled {
		if config.AccessKeyID == "" {
			return nil, errors.New("ARCHIVE_S3_ACCESS_KEY_ID is required when the archive is enabled")
		}
		if config.SecretAccessKey == "" {
			return nil, errors.New("ARCHIVE_S3_SECRET_ACCESS_KEY is required when the archive is enabled")
		}
		if config.BucketName == "" {
			return nil, errors.New("ARCHIVE_S3_BUCKET_NAME is required when the archive is enabled")
		}
	}

	return config, nil
}

// IsEnabled returns true if the audit archive is enabled
func (c *Config) IsEnabled() bool {
	return c.Enabled
}

// EventObjectKey generates the S3 object key for a webhook event payload.
// Format: webhook-events/YYYY/MM/DD/<stripe event id>.json
func (c *Config) EventObjectKey(stripeEventID string, processedAt time.Time) string {
	return fmt.Sprintf("webhook-events/%s/%s.json", processedAt.UTC().Format("2006/01/02"), stripeEventID)
}
