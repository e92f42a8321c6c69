package archive

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/tablo-app/tablo/app/repository"
)

const sweepBatchSize = 200

// Archiver exports processed webhook events to S3 as the long-term audit
// trail and prunes them, plus expired rate-limit ledger rows, from MySQL.
type Archiver struct {
	s3Client *s3.Client
	config   *Config
	events   repository.WebhookEventRepository
	attempts repository.CheckoutAttemptRepository
}

// NewArchiver creates an archiver from config and the repositories it
// sweeps.
func NewArchiver(cfg *Config, events repository.WebhookEventRepository, attempts repository.CheckoutAttemptRepository) (*Archiver, error) {
	if !cfg.IsEnabled() {
		return nil, fmt.Errorf("audit archive is disabled")
	}

	awsConfig, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	s3Client := s3.NewFromConfig(awsConfig, func(o *s3.Options) {
		if cfg.EndpointURL != "" {
			o.BaseEndpoint = aws.String(cfg.EndpointURL)
			o.UsePathStyle = true // S3-compatible services need path-style URLs
		}
	})

	return &Archiver{
		s3Client: s3Client,
		config:   cfg,
		events:   events,
		attempts: attempts,
	}, nil
}

// Run performs one sweep: export-and-prune webhook events past retention,
// then prune expired checkout attempts. Events that fail to upload stay in
// MySQL and are retried on the next sweep.
func (a *Archiver) Run(ctx context.Context) error {
	now := time.Now()

	events, err := a.events.ListProcessedBefore(now.Add(-a.config.EventRetention), sweepBatchSize)
	if err != nil {
		return fmt.Errorf("list archivable events: %w", err)
	}

	var archived []uint
	for _, event := range events {
		processedAt := event.CreatedAt
		if event.ProcessedAt != nil {
			processedAt = *event.ProcessedAt
		}
		key := a.config.EventObjectKey(event.StripeEventID, processedAt)

		_, err := a.s3Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(a.config.BucketName),
			Key:         aws.String(key),
			Body:        bytes.NewReader([]byte(event.PayloadJSON)),
			ContentType: aws.String("application/json"),
		})
		if err != nil {
			log.Printf("[Archive] Upload of event %s failed, will retry next sweep: %v", event.StripeEventID, err)
			continue
		}
		archived = append(archived, event.ID)
	}

	if len(archived) > 0 {
		if err := a.events.DeleteByIDs(archived); err != nil {
			return fmt.Errorf("prune archived events: %w", err)
		}
		log.Printf("[Archive] Exported %d webhook events to s3://%s", len(archived), a.config.BucketName)
	}

	pruned, err := a.attempts.DeleteBefore(now.Add(-a.config.AttemptRetention))
	if err != nil {
		return fmt.Errorf("prune checkout attempts: %w", err)
	}
	if pruned > 0 {
		log.Printf("[Archive] Pruned %d expired checkout attempts", pruned)
	}
	return nil
}

// RunPeriodically sweeps on the given interval until the context ends.
func (a *Archiver) RunPeriodically(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := a.Run(ctx); err != nil {
				log.Printf("[Archive] Sweep failed: %v", err)
			}
		}
	}
}
