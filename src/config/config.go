// Package config resolves the Lambda environment into one Config struct,
// built once per invocation and passed to every handler that needs it.
package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config contains every environment value the handlers depend on.
type Config struct {
	HandlerName string `koanf:"handler_name"`

	CloudwatchNamespace           string `koanf:"cloudwatch_namespace"`
	CloudwatchMetricName          string `koanf:"cloudwatch_metric_name"`
	CloudwatchMetricStatistic     string `koanf:"cloudwatch_metric_statistic"`
	CloudwatchMetricPeriodSeconds int    `koanf:"cloudwatch_metric_period_in_seconds"`

	SagemakerRoleArn string `koanf:"sagemaker_role_arn"`

	TrainingInstanceCount     int    `koanf:"sagemaker_training_instance_count"`
	TrainingInstanceType      string `koanf:"sagemaker_training_instance_type"`
	TrainingVolumeSizeInGB    int    `koanf:"sagemaker_training_volume_size"`
	TrainingNumTrees          string `koanf:"sagemaker_training_num_trees"`
	TrainingNumSamplesPerTree string `koanf:"sagemaker_training_num_samples_per_tree"`

	TransformInstanceCount int    `koanf:"sagemaker_transform_instance_count"`
	TransformInstanceType  string `koanf:"sagemaker_transform_instance_type"`

	S3BucketName string `koanf:"s3_bucket_name"`

	Region string `koanf:"aws_default_region"`
}

// Load reads the Lambda environment into a Config. Env names are the fixed
// contract shared with the deployment templates (CLOUDWATCH_NAMESPACE,
// SAGEMAKER_ROLE_ARN, S3_BUCKET_NAME, ...).
func Load() (*Config, error) {
	k := koanf.New(".")

	provider := env.Provider("", ".", func(s string) string {
		return strings.ToLower(s)
	})
	if err := k.Load(provider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &cfg, nil
}

// Validate checks the settings a given handler is about to rely on. Handlers
// call the check matching their scope so an unrelated missing variable does
// not fail the step.

func (c *Config) ValidateCloudwatch() error {
	if err := requireString("CLOUDWATCH_NAMESPACE", c.CloudwatchNamespace); err != nil {
		return err
	}
	if err := requireString("CLOUDWATCH_METRIC_NAME", c.CloudwatchMetricName); err != nil {
		return err
	}
	if err := requireString("CLOUDWATCH_METRIC_STATISTIC", c.CloudwatchMetricStatistic); err != nil {
		return err
	}
	return requirePositive("CLOUDWATCH_METRIC_PERIOD_IN_SECONDS", c.CloudwatchMetricPeriodSeconds)
}

func (c *Config) ValidateS3() error {
	return requireString("S3_BUCKET_NAME", c.S3BucketName)
}

func (c *Config) ValidateTraining() error {
	if err := requireString("SAGEMAKER_ROLE_ARN", c.SagemakerRoleArn); err != nil {
		return err
	}
	if err := requireString("SAGEMAKER_TRAINING_INSTANCE_TYPE", c.TrainingInstanceType); err != nil {
		return err
	}
	if err := requirePositive("SAGEMAKER_TRAINING_INSTANCE_COUNT", c.TrainingInstanceCount); err != nil {
		return err
	}
	if err := requirePositive("SAGEMAKER_TRAINING_VOLUME_SIZE", c.TrainingVolumeSizeInGB); err != nil {
		return err
	}
	if err := requireString("SAGEMAKER_TRAINING_NUM_TREES", c.TrainingNumTrees); err != nil {
		return err
	}
	if err := requireString("SAGEMAKER_TRAINING_NUM_SAMPLES_PER_TREE", c.TrainingNumSamplesPerTree); err != nil {
		return err
	}
	return requireString("AWS_DEFAULT_REGION", c.Region)
}

func (c *Config) ValidateTransform() error {
	if err := requireString("SAGEMAKER_TRANSFORM_INSTANCE_TYPE", c.TransformInstanceType); err != nil {
		return err
	}
	return requirePositive("SAGEMAKER_TRANSFORM_INSTANCE_COUNT", c.TransformInstanceCount)
}

func requireString(name, value string) error {
	if value == "" {
		return fmt.Errorf("%w: %s", ErrMissingConfig, name)
	}
	return nil
}

func requirePositive(name string, value int) error {
	if value <= 0 {
		return fmt.Errorf("%w: %s must be a positive integer", ErrInvalidConfig, name)
	}
	return nil
}
