package sagemaker

import (
	"context"
	"encoding/json"
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
	trainingInputMode = "File"

	hyperparamFeatureDim        = "feature_dim"
	hyperparamFeatureDimValue   = "1" // one-dimensional metric data
	hyperparamNumTrees          = "num_trees"
	hyperparamNumSamplesPerTree = "num_samples_per_tree"

	s3DistributionType = "ShardedByS3Key"
	s3DataType         = "S3Prefix"
	s3Prefix           = "s3://"

	trainingChannelName        = "train"
	trainingChannelContentType = "text/csv;label_size=0"

	modelKeyPrefix  = "/models/"
	modelPathSuffix = "/output/model.tar.gz"

	trainingJobMaxRuntimeSeconds = 20 * 60
)

// trainingJobConfig assembles the CreateTrainingJob request for one run.
type trainingJobConfig struct {
	timestamp string
	bucket    string
	key       string
	cfg       *config.Config
}

func (t trainingJobConfig) jobName() string {
	return AlgorithmName + "-" + t.timestamp
}

func (t trainingJobConfig) modelOutputPathPrefix() string {
	return s3Prefix + t.bucket + modelKeyPrefix
}

// modelOutputPath is where SageMaker leaves the trained model, e.g.
// s3://test-bucket/models/random-cut-forest-123456789/output/model.tar.gz.
func (t trainingJobConfig) modelOutputPath() string {
	return t.modelOutputPathPrefix() + t.jobName() + modelPathSuffix
}

func (t trainingJobConfig) request() (*sm.CreateTrainingJobInput, error) {
	image, err := AlgorithmImage(t.cfg.Region)
	if err != nil {
		return nil, err
	}

	return &sm.CreateTrainingJobInput{
		AlgorithmSpecification: &sm.AlgorithmSpecification{
			TrainingImage:     aws.String(image),
			TrainingInputMode: aws.String(trainingInputMode),
		},
		HyperParameters: map[string]*string{
			hyperparamFeatureDim:        aws.String(hyperparamFeatureDimValue),
			hyperparamNumTrees:          aws.String(t.cfg.TrainingNumTrees),
			hyperparamNumSamplesPerTree: aws.String(t.cfg.TrainingNumSamplesPerTree),
		},
		InputDataConfig: []*sm.Channel{{
			ChannelName: aws.String(trainingChannelName),
			ContentType: aws.String(trainingChannelContentType),
			DataSource: &sm.DataSource{
				S3DataSource: &sm.S3DataSource{
					S3DataDistributionType: aws.String(s3DistributionType),
					S3DataType:             aws.String(s3DataType),
					S3Uri:                  aws.String(s3Prefix + t.bucket + "/" + t.key),
				},
			},
		}},
		OutputDataConfig: &sm.OutputDataConfig{
			S3OutputPath: aws.String(t.modelOutputPathPrefix()),
		},
		ResourceConfig: &sm.ResourceConfig{
			InstanceCount:  aws.Int64(int64(t.cfg.TrainingInstanceCount)),
			InstanceType:   aws.String(t.cfg.TrainingInstanceType),
			VolumeSizeInGB: aws.Int64(int64(t.cfg.TrainingVolumeSizeInGB)),
		},
		RoleArn: aws.String(t.cfg.SagemakerRoleArn),
		StoppingCondition: &sm.StoppingCondition{
			MaxRuntimeInSeconds: aws.Int64(trainingJobMaxRuntimeSeconds),
		},
		TrainingJobName: aws.String(t.jobName()),
	}, nil
}

// StartTrainingJobHandler submits a RandomCutForest training job over the
// values file the previous step uploaded. It runs in the train state machine.
type StartTrainingJobHandler struct {
	cfg *config.Config
	sm  sagemakeriface.SageMakerAPI
	log *slog.Logger
}

func NewStartTrainingJobHandler(cfg *config.Config, client sagemakeriface.SageMakerAPI, log *slog.Logger) *StartTrainingJobHandler {
	return &StartTrainingJobHandler{cfg: cfg, sm: client, log: log}
}

func (h *StartTrainingJobHandler) Handle(ctx context.Context, raw json.RawMessage) (workflow.Record, error) {
	var input types.StartTrainingJobInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, fmt.Errorf("failed to decode start training job input: %w", err)
	}
	if err := h.cfg.ValidateTraining(); err != nil {
		return nil, err
	}

	jobConfig := trainingJobConfig{
		timestamp: input.Timestamp,
		bucket:    input.Bucket,
		key:       input.ValuesKey,
		cfg:       h.cfg,
	}
	request, err := jobConfig.request()
	if err != nil {
		return nil, err
	}

	h.log.Info("starting sagemaker training job", "job", aws.StringValue(request.TrainingJobName))
	if _, err := h.sm.CreateTrainingJob(request); err != nil {
		return nil, fmt.Errorf("failed to create training job: %w", err)
	}

	return workflow.Merge(raw, &types.StartTrainingJobOutput{
		Timestamp:         input.Timestamp,
		TrainingJobName:   jobConfig.jobName(),
		TrainingJobStatus: sm.TrainingJobStatusInProgress,
		ModelOutputPath:   jobConfig.modelOutputPath(),
	})
}
