package sagemaker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"metric-anomaly-detector/src/config"
	"metric-anomaly-detector/src/types"
	"metric-anomaly-detector/src/workflow"

	"github.com/aws/aws-sdk-go/aws"
	sm "github.com/aws/aws-sdk-go/service/sagemaker"
	"github.com/aws/aws-sdk-go/service/sagemaker/sagemakeriface"
)

const (
	transformInputCompressionType = "None"
	transformInputContentType     = "text/csv;label_size=0"
	transformInputSplitType       = "Line"

	transformOutputAccept       = "application/jsonlines"
	transformOutputAssembleWith = "Line"
	transformOutputPathPrefix   = "data/transform/output/values/"
	transformOutputFileSuffix   = ".out"
)

// ErrNoModel is returned when no trained RandomCutForest model exists yet,
// i.e. the train state machine has never completed.
var ErrNoModel = errors.New("no random-cut-forest model available")

// transformJobConfig assembles the CreateTransformJob request for one run.
type transformJobConfig struct {
	timestamp string
	bucket    string
	key       string
	file      string
	modelName string
	cfg       *config.Config
}

func (t transformJobConfig) jobName() string {
	return AlgorithmName + "-" + t.timestamp
}

func (t transformJobConfig) anomalyScoresKeyPrefix() string {
	return transformOutputPathPrefix + t.timestamp + "/"
}

// anomalyScoresKey is where batch transform assembles the score lines, e.g.
// data/transform/output/values/123456789/values.csv.out.
func (t transformJobConfig) anomalyScoresKey() string {
	return t.anomalyScoresKeyPrefix() + t.file + transformOutputFileSuffix
}

func (t transformJobConfig) request() *sm.CreateTransformJobInput {
	return &sm.CreateTransformJobInput{
		TransformJobName: aws.String(t.jobName()),
		ModelName:        aws.String(t.modelName),
		TransformResources: &sm.TransformResources{
			InstanceCount: aws.Int64(int64(t.cfg.TransformInstanceCount)),
			InstanceType:  aws.String(t.cfg.TransformInstanceType),
		},
		TransformInput: &sm.TransformInput{
			CompressionType: aws.String(transformInputCompressionType),
			ContentType:     aws.String(transformInputContentType),
			DataSource: &sm.TransformDataSource{
				S3DataSource: &sm.TransformS3DataSource{
					S3DataType: aws.String(s3DataType),
					S3Uri:      aws.String(s3Prefix + t.bucket + "/" + t.key),
				},
			},
			SplitType: aws.String(transformInputSplitType),
		},
		TransformOutput: &sm.TransformOutput{
			S3OutputPath: aws.String(s3Prefix + t.bucket + "/" + t.anomalyScoresKeyPrefix()),
			Accept:       aws.String(transformOutputAccept),
			AssembleWith: aws.String(transformOutputAssembleWith),
		},
	}
}

// StartTransformJobHandler scores previously unseen datapoints with the most
// recently trained model. It is the second step of the transform state machine.
type StartTransformJobHandler struct {
	cfg *config.Config
	sm  sagemakeriface.SageMakerAPI
	log *slog.Logger
}

func NewStartTransformJobHandler(cfg *config.Config, client sagemakeriface.SageMakerAPI, log *slog.Logger) *StartTransformJobHandler {
	return &StartTransformJobHandler{cfg: cfg, sm: client, log: log}
}

func (h *StartTransformJobHandler) Handle(ctx context.Context, raw json.RawMessage) (workflow.Record, error) {
	var input types.StartTransformJobInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, fmt.Errorf("failed to decode start transform job input: %w", err)
	}
	if err := h.cfg.ValidateTransform(); err != nil {
		return nil, err
	}

	modelName, err := h.latestModelName()
	if err != nil {
		return nil, err
	}
	h.log.Info("resolved latest model", "model", modelName)

	jobConfig := transformJobConfig{
		timestamp: input.Timestamp,
		bucket:    input.Bucket,
		key:       input.ValuesKey,
		file:      input.ValuesFile,
		modelName: modelName,
		cfg:       h.cfg,
	}
	request := jobConfig.request()

	h.log.Info("starting sagemaker transform job", "job", aws.StringValue(request.TransformJobName))
	if _, err := h.sm.CreateTransformJob(request); err != nil {
		return nil, fmt.Errorf("failed to create transform job: %w", err)
	}

	return workflow.Merge(raw, &types.StartTransformJobOutput{
		Bucket:             input.Bucket,
		Timestamp:          input.Timestamp,
		TimestampsKey:      input.TimestampsKey,
		AnomalyScoresKey:   jobConfig.anomalyScoresKey(),
		TransformJobName:   jobConfig.jobName(),
		TransformJobStatus: sm.TransformJobStatusInProgress,
	})
}

// latestModelName returns the newest model whose name carries the algorithm
// prefix.
func (h *StartTransformJobHandler) latestModelName() (string, error) {
	result, err := h.sm.ListModels(&sm.ListModelsInput{
		NameContains: aws.String(AlgorithmName),
		MaxResults:   aws.Int64(1),
		SortBy:       aws.String(sm.ModelSortKeyCreationTime),
		SortOrder:    aws.String(sm.OrderKeyDescending),
	})
	if err != nil {
		return "", fmt.Errorf("failed to list models: %w", err)
	}
	if len(result.Models) == 0 {
		return "", ErrNoModel
	}
	return aws.StringValue(result.Models[0].ModelName), nil
}
