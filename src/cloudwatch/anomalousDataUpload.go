package cloudwatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"metric-anomaly-detector/src/anomaly"
	"metric-anomaly-detector/src/config"
	s3store "metric-anomaly-detector/src/s3"
	"metric-anomaly-detector/src/types"
	"metric-anomaly-detector/src/workflow"

	"github.com/aws/aws-sdk-go/aws"
	cw "github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
)

const (
	anomalyIndicatorSuffix   = "AnomalyIndicator"
	storageResolutionSeconds = 60
	// PutMetricData rejects requests carrying more than 100 datums.
	metricDatumsPerRequest = 100
)

// AnomalousDataUploadHandler is the last step of the transform state machine.
// It downloads the anomaly scores and the original metric timestamps from S3,
// classifies scores against the 2 sigma cutoff and publishes a 0/1 anomaly
// indicator metric back to CloudWatch.
type AnomalousDataUploadHandler struct {
	cfg   *config.Config
	cw    cloudwatchiface.CloudWatchAPI
	files *s3store.FileManager
	log   *slog.Logger
}

func NewAnomalousDataUploadHandler(cfg *config.Config, client cloudwatchiface.CloudWatchAPI, files *s3store.FileManager, log *slog.Logger) *AnomalousDataUploadHandler {
	return &AnomalousDataUploadHandler{cfg: cfg, cw: client, files: files, log: log}
}

func (h *AnomalousDataUploadHandler) Handle(ctx context.Context, raw json.RawMessage) (workflow.Record, error) {
	var input types.AnomalousDataUploadInput
	if err := json.Unmarshal(raw, &input); err != nil {
		return nil, fmt.Errorf("failed to decode anomalous data upload input: %w", err)
	}
	if err := h.cfg.ValidateCloudwatch(); err != nil {
		return nil, err
	}

	scores, err := h.readScores(input.Bucket, input.AnomalyScoresKey)
	if err != nil {
		return nil, err
	}

	indices, err := anomaly.FindAnomalousIndices(scores)
	if err != nil {
		return nil, err
	}
	h.log.Info("classified anomaly scores", "datapoints", len(scores), "anomalies", len(indices))

	timestamps, err := h.readTimestamps(input.Bucket, input.TimestampsKey)
	if err != nil {
		return nil, err
	}
	if len(timestamps) != len(scores) {
		return nil, fmt.Errorf("score/timestamp series length mismatch: %d scores, %d timestamps", len(scores), len(timestamps))
	}

	if err := h.uploadIndicator(timestamps, indices); err != nil {
		return nil, err
	}

	return workflow.Merge(raw, &types.AnomalousDataUploadOutput{AnomalyCount: len(indices)})
}

func (h *AnomalousDataUploadHandler) readScores(bucket, key string) ([]float64, error) {
	lines, err := h.files.ReadLines(bucket, key)
	if err != nil {
		return nil, err
	}
	h.log.Info("retrieved anomaly score lines", "count", len(lines))
	return parseScoreLines(lines)
}

func (h *AnomalousDataUploadHandler) readTimestamps(bucket, key string) ([]int64, error) {
	lines, err := h.files.ReadLines(bucket, key)
	if err != nil {
		return nil, err
	}
	h.log.Info("retrieved timestamp lines", "count", len(lines))
	return parseTimestampLines(lines)
}

func (h *AnomalousDataUploadHandler) uploadIndicator(timestamps []int64, indices []int) error {
	datums := indicatorDatums(timestamps, indices, h.cfg.CloudwatchMetricName)

	batches := chunkDatums(datums, metricDatumsPerRequest)
	h.log.Info("publishing anomaly indicator", "datums", len(datums), "requests", len(batches))
	for _, batch := range batches {
		_, err := h.cw.PutMetricData(&cw.PutMetricDataInput{
			MetricData: batch,
			Namespace:  aws.String(h.cfg.CloudwatchNamespace),
		})
		if err != nil {
			return fmt.Errorf("failed to put metric data: %w", err)
		}
	}
	return nil
}

// indicatorDatums builds one datum per original datapoint, value 1 at the
// anomalous positions and 0 elsewhere.
func indicatorDatums(timestamps []int64, indices []int, metricName string) []*cw.MetricDatum {
	indicator := anomaly.IndicatorSeries(indices, len(timestamps))
	datums := make([]*cw.MetricDatum, len(timestamps))
	for i, ts := range timestamps {
		datums[i] = &cw.MetricDatum{
			MetricName:        aws.String(metricName + anomalyIndicatorSuffix),
			Timestamp:         aws.Time(time.UnixMilli(ts)),
			StorageResolution: aws.Int64(storageResolutionSeconds),
			Value:             aws.Float64(indicator[i]),
		}
	}
	return datums
}

func chunkDatums(datums []*cw.MetricDatum, size int) [][]*cw.MetricDatum {
	var chunks [][]*cw.MetricDatum
	for start := 0; start < len(datums); start += size {
		end := start + size
		if end > len(datums) {
			end = len(datums)
		}
		chunks = append(chunks, datums[start:end])
	}
	return chunks
}
