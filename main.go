package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"metric-anomaly-detector/src/cloudwatch"
	"metric-anomaly-detector/src/config"
	"metric-anomaly-detector/src/logger"
	s3store "metric-anomaly-detector/src/s3"
	"metric-anomaly-detector/src/sagemaker"
	"metric-anomaly-detector/src/workflow"

	"github.com/aws/aws-lambda-go/lambda"
)

// One binary serves all six state machine steps; each Lambda function sets
// HANDLER_NAME to pick its step.
const (
	handlerDataUpload              = "data-upload"
	handlerStartTrainingJob        = "start-training-job"
	handlerCheckTrainingJobStatus  = "check-training-job-status"
	handlerStartTransformJob       = "start-transform-job"
	handlerCheckTransformJobStatus = "check-transform-job-status"
	handlerAnomalousDataUpload     = "anomalous-data-upload"
)

type handlerFunc func(ctx context.Context, raw json.RawMessage) (workflow.Record, error)

func resolveHandler(cfg *config.Config, log *slog.Logger) (handlerFunc, error) {
	switch cfg.HandlerName {
	case handlerDataUpload:
		files := s3store.NewFileManager(s3store.Client())
		return cloudwatch.NewDataUploadHandler(cfg, cloudwatch.Client(), files, log).Handle, nil
	case handlerStartTrainingJob:
		return sagemaker.NewStartTrainingJobHandler(cfg, sagemaker.Client(), log).Handle, nil
	case handlerCheckTrainingJobStatus:
		return sagemaker.NewCheckTrainingJobStatusHandler(sagemaker.Client(), log).Handle, nil
	case handlerStartTransformJob:
		return sagemaker.NewStartTransformJobHandler(cfg, sagemaker.Client(), log).Handle, nil
	case handlerCheckTransformJobStatus:
		return sagemaker.NewCheckTransformJobStatusHandler(sagemaker.Client(), log).Handle, nil
	case handlerAnomalousDataUpload:
		files := s3store.NewFileManager(s3store.Client())
		return cloudwatch.NewAnomalousDataUploadHandler(cfg, cloudwatch.Client(), files, log).Handle, nil
	default:
		return nil, fmt.Errorf("%w: HANDLER_NAME=%q", config.ErrInvalidConfig, cfg.HandlerName)
	}
}

func main() {
	log := logger.New()

	lambda.Start(func(ctx context.Context, event json.RawMessage) (interface{}, error) {
		cfg, err := config.Load()
		if err != nil {
			log.Error("failed to load config", "error", err)
			return nil, err
		}

		handle, err := resolveHandler(cfg, log.With("handler", cfg.HandlerName))
		if err != nil {
			log.Error("failed to resolve handler", "error", err)
			return nil, err
		}

		record, err := handle(ctx, event)
		if err != nil {
			log.Error("step failed", "handler", cfg.HandlerName, "error", err)
			return nil, err
		}
		return record, nil
	})
}
