package sagemaker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"metric-anomaly-detector/src/types"
	"metric-anomaly-detector/src/workflow"

	"github.com/aws/aws-sdk-go/aws"
	sm "github.com/aws/aws-sdk-go/service/sagemaker"
	"github.com/aws/aws-sdk-go/service/sagemaker/sagemakeriface"
)

// The status handlers run on a poll loop driven by the state machine: each
// receives the record produced by the start step (or by its own previous
// poll), refreshes the job status on it and hands it back.

type CheckTrainingJobStatusHandler struct {
	sm  sagemakeriface.SageMakerAPI
	log *slog.Logger
}

func NewCheckTrainingJobStatusHandler(client sagemakeriface.SageMakerAPI, log *slog.Logger) *CheckTrainingJobStatusHandler {
	return &CheckTrainingJobStatusHandler{sm: client, log: log}
}

func (h *CheckTrainingJobStatusHandler) Handle(ctx context.Context, raw json.RawMessage) (workflow.Record, error) {
	var input types.StartTrainingJobOutput
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, fmt.Errorf("failed to decode training job record: %w", err)
	}

	result, err := h.sm.DescribeTrainingJob(&sm.DescribeTrainingJobInput{
		TrainingJobName: aws.String(input.TrainingJobName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe training job %s: %w", input.TrainingJobName, err)
	}

	input.TrainingJobStatus = aws.StringValue(result.TrainingJobStatus)
	h.log.Info("checked training job", "job", input.TrainingJobName, "status", input.TrainingJobStatus)
	return workflow.Merge(raw, &input)
}

type CheckTransformJobStatusHandler struct {
	sm  sagemakeriface.SageMakerAPI
	log *slog.Logger
}

func NewCheckTransformJobStatusHandler(client sagemakeriface.SageMakerAPI, log *slog.Logger) *CheckTransformJobStatusHandler {
	return &CheckTransformJobStatusHandler{sm: client, log: log}
}

func (h *CheckTransformJobStatusHandler) Handle(ctx context.Context, raw json.RawMessage) (workflow.Record, error) {
	var input types.StartTransformJobOutput
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, fmt.Errorf("failed to decode transform job record: %w", err)
	}

	result, err := h.sm.DescribeTransformJob(&sm.DescribeTransformJobInput{
		TransformJobName: aws.String(input.TransformJobName),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to describe transform job %s: %w", input.TransformJobName, err)
	}

	input.TransformJobStatus = aws.StringValue(result.TransformJobStatus)
	h.log.Info("checked transform job", "job", input.TransformJobName, "status", input.TransformJobStatus)
	return workflow.Merge(raw, &input)
}
