package main

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	_ "github.com/pbnjay/grate/xls"
	"github.com/sirupsen/logrus"

	"finbrook/econfeed/internal/collect"
	"finbrook/econfeed/internal/config"
	"finbrook/econfeed/internal/store"
)

func collectData(ctx context.Context, log *logrus.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if cfg.SnapshotPath == "" {
		return fmt.Errorf("ECONFEED_SNAPSHOT_PATH is not set")
	}

	s3Path, err := store.ParseS3(cfg.SnapshotPath)
	if err != nil {
		return fmt.Errorf("snapshot path must be an s3:// URL: %w", err)
	}

	client := collect.NewClient(collect.ClientConfig{
		UserAgent:         cfg.UserAgent,
		Timeout:           cfg.HTTPTimeout,
		Retries:           cfg.Retries,
		RetryBackoff:      cfg.RetryBackoff,
		RequestsPerSecond: cfg.RequestsPerSecond,
	}, log)

	collector := collect.NewDMOCollector(client, log)

	collected, err := collector.Collect(ctx, time.Now())
	if err != nil {
		return err
	}

	for _, f := range collected.Failures {
		log.WithError(f.Err).WithField("source", collected.Source).Warn("row rejected")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to load config: %v", err)
	}

	s3Client := s3.NewFromConfig(awsCfg)

	outPath, err := store.SnapshotToS3(ctx, collected, s3Client, s3Path)
	if err != nil {
		return err
	}

	log.WithFields(logrus.Fields{
		"path":    outPath,
		"records": len(collected.Records),
	}).Info("snapshot written")

	if cfg.DatabaseURL != "" {
		db, err := store.NewPostgres(ctx, cfg.DatabaseURL, log)
		if err != nil {
			return err
		}
		defer db.Close()

		if _, err := db.UpsertBonds(ctx, store.TableGiltPrices, collected); err != nil {
			return err
		}
	}

	return nil
}

func responseWithFailure(rec events.SQSMessage) events.SQSEventResponse {
	return events.SQSEventResponse{
		BatchItemFailures: []events.SQSBatchItemFailure{
			{
				ItemIdentifier: rec.MessageId,
			},
		},
	}
}

func handler(ctx context.Context, request events.SQSEvent) (events.SQSEventResponse, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	err := collectData(ctx, log)

	if err != nil && len(request.Records) > 0 {
		// should just have a single record, ignore the rest
		rec := request.Records[0]
		return responseWithFailure(rec), fmt.Errorf("failed to collect data: %v", err)
	}

	return events.SQSEventResponse{}, nil
}

func main() {
	lambda.Start(handler)
}
