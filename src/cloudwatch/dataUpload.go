package cloudwatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"metric-anomaly-detector/src/config"
	s3store "metric-anomaly-detector/src/s3"
	"metric-anomaly-detector/src/types"
	"metric-anomaly-detector/src/workflow"

	"github.com/aws/aws-sdk-go/aws"
	cw "github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
)

// GetMetricStatistics returns at most 1440 datapoints per call, so longer
// ranges are fetched as a sequence of back-to-back windows.
const datapointsPerRequest = 1440

const (
	valuesFileType     = "values"
	timestampsFileType = "timestamps"
)

// DataUploadHandler reads a metric's statistics from CloudWatch and uploads
// values and timestamps to S3 as separate newline-delimited CSV files. It is
// the entry step of both the train and the transform state machines.
type DataUploadHandler struct {
	cfg   *config.Config
	cw    cloudwatchiface.CloudWatchAPI
	files *s3store.FileManager
	log   *slog.Logger
	now   func() time.Time
}

func NewDataUploadHandler(cfg *config.Config, client cloudwatchiface.CloudWatchAPI, files *s3store.FileManager, log *slog.Logger) *DataUploadHandler {
	return &DataUploadHandler{cfg: cfg, cw: client, files: files, log: log, now: time.Now}
}

func (h *DataUploadHandler) Handle(ctx context.Context, raw json.RawMessage) (workflow.Record, error) {
	var input types.DataUploadInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, fmt.Errorf("failed to decode data upload input: %w", err)
	}
	if err := h.cfg.ValidateCloudwatch(); err != nil {
		return nil, err
	}
	if err := h.cfg.ValidateS3(); err != nil {
		return nil, err
	}

	datapoints, err := h.fetchDatapoints(input.TimeRangeInDays)
	if err != nil {
		return nil, err
	}
	h.log.Info("retrieved datapoints", "count", len(datapoints))

	output, err := h.uploadDatapoints(datapoints, input.JobType)
	if err != nil {
		return nil, err
	}
	return workflow.Merge(raw, output)
}

func (h *DataUploadHandler) fetchDatapoints(timeRangeInDays int) ([]*cw.Datapoint, error) {
	period := h.cfg.CloudwatchMetricPeriodSeconds
	numRequests := numberOfRequests(period, timeRangeInDays)
	h.log.Info("calculated metric requests", "count", numRequests)

	var datapoints []*cw.Datapoint
	end := h.now()
	delta := time.Duration(datapointsPerRequest*period) * time.Second
	for i := 0; i < numRequests; i++ {
		start := end.Add(-delta)
		result, err := h.cw.GetMetricStatistics(&cw.GetMetricStatisticsInput{
			MetricName: aws.String(h.cfg.CloudwatchMetricName),
			Namespace:  aws.String(h.cfg.CloudwatchNamespace),
			Period:     aws.Int64(int64(period)),
			Statistics: []*string{aws.String(h.cfg.CloudwatchMetricStatistic)},
			StartTime:  aws.Time(start),
			EndTime:    aws.Time(end),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to get metric statistics: %w", err)
		}
		datapoints = append(datapoints, result.Datapoints...)
		end = start
	}

	sort.Slice(datapoints, func(i, j int) bool {
		return datapoints[i].Timestamp.Before(*datapoints[j].Timestamp)
	})
	return datapoints, nil
}

func (h *DataUploadHandler) uploadDatapoints(datapoints []*cw.Datapoint, jobType string) (*types.DataUploadOutput, error) {
	timestamp := strconv.FormatInt(h.now().UnixMilli(), 10)
	bucket := h.cfg.S3BucketName

	values := extractValues(datapoints, h.cfg.CloudwatchMetricStatistic)
	timestamps := extractTimestamps(datapoints)

	valuesKey := inputKey(jobType, valuesFileType, timestamp)
	if err := h.files.Upload(bucket, valuesKey, values); err != nil {
		return nil, err
	}
	h.log.Info("uploaded values file", "bucket", bucket, "key", valuesKey)

	timestampsKey := inputKey(jobType, timestampsFileType, timestamp)
	if err := h.files.Upload(bucket, timestampsKey, timestamps); err != nil {
		return nil, err
	}
	h.log.Info("uploaded timestamps file", "bucket", bucket, "key", timestampsKey)

	return &types.DataUploadOutput{
		Bucket:        bucket,
		Timestamp:     timestamp,
		TimestampsKey: timestampsKey,
		ValuesKey:     inputKeyPrefix(jobType, valuesFileType, timestamp),
		ValuesFile:    inputFileName(valuesFileType),
	}, nil
}

// numberOfRequests is the window count needed to cover the requested range,
// rounded up.
func numberOfRequests(periodSeconds, timeRangeInDays int) int {
	intervalSeconds := timeRangeInDays * 24 * 60 * 60
	numberOfDatapoints := intervalSeconds / periodSeconds
	return (numberOfDatapoints + datapointsPerRequest - 1) / datapointsPerRequest
}

// statisticValue picks the datapoint field matching the configured statistic.
func statisticValue(d *cw.Datapoint, statistic string) float64 {
	switch statistic {
	case cw.StatisticSum:
		return aws.Float64Value(d.Sum)
	case cw.StatisticMaximum:
		return aws.Float64Value(d.Maximum)
	case cw.StatisticMinimum:
		return aws.Float64Value(d.Minimum)
	case cw.StatisticSampleCount:
		return aws.Float64Value(d.SampleCount)
	default:
		return aws.Float64Value(d.Average)
	}
}

func extractValues(datapoints []*cw.Datapoint, statistic string) string {
	lines := make([]string, len(datapoints))
	for i, d := range datapoints {
		lines[i] = strconv.FormatFloat(statisticValue(d, statistic), 'f', -1, 64)
	}
	return strings.Join(lines, "\n")
}

func extractTimestamps(datapoints []*cw.Datapoint) string {
	lines := make([]string, len(datapoints))
	for i, d := range datapoints {
		lines[i] = strconv.FormatInt(d.Timestamp.UnixMilli(), 10)
	}
	return strings.Join(lines, "\n")
}
