package cloudwatch

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"metric-anomaly-detector/src/config"
	s3store "metric-anomaly-detector/src/s3"

	"github.com/aws/aws-sdk-go/aws"
	cw "github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"

	. "github.com/smartystreets/goconvey/convey"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockCloudWatch struct {
	cloudwatchiface.CloudWatchAPI

	statsInputs  []*cw.GetMetricStatisticsInput
	statsOutputs []*cw.GetMetricStatisticsOutput
	statsErr     error

	putInputs []*cw.PutMetricDataInput
	putErr    error
}

func (m *mockCloudWatch) GetMetricStatistics(in *cw.GetMetricStatisticsInput) (*cw.GetMetricStatisticsOutput, error) {
	if m.statsErr != nil {
		return nil, m.statsErr
	}
	m.statsInputs = append(m.statsInputs, in)
	out := m.statsOutputs[0]
	if len(m.statsOutputs) > 1 {
		m.statsOutputs = m.statsOutputs[1:]
	}
	return out, nil
}

func (m *mockCloudWatch) PutMetricData(in *cw.PutMetricDataInput) (*cw.PutMetricDataOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.putInputs = append(m.putInputs, in)
	return &cw.PutMetricDataOutput{}, nil
}

type mockObjectStore struct {
	s3iface.S3API

	objects map[string]string
	puts    map[string]string
}

func (m *mockObjectStore) GetObject(in *awss3.GetObjectInput) (*awss3.GetObjectOutput, error) {
	content := m.objects[aws.StringValue(in.Key)]
	return &awss3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(content))}, nil
}

func (m *mockObjectStore) PutObject(in *awss3.PutObjectInput) (*awss3.PutObjectOutput, error) {
	if m.puts == nil {
		m.puts = map[string]string{}
	}
	body, _ := io.ReadAll(in.Body)
	m.puts[aws.StringValue(in.Key)] = string(body)
	return &awss3.PutObjectOutput{}, nil
}

func testConfig() *config.Config {
	return &config.Config{
		CloudwatchNamespace:           "Custom/Service",
		CloudwatchMetricName:          "Latency",
		CloudwatchMetricStatistic:     "Average",
		CloudwatchMetricPeriodSeconds: 60,
		S3BucketName:                  "anomaly-data",
	}
}

func datapoint(ts time.Time, avg float64) *cw.Datapoint {
	return &cw.Datapoint{Timestamp: aws.Time(ts), Average: aws.Float64(avg)}
}

func TestNumberOfRequests(t *testing.T) {
	Convey("Given the 1440 datapoint per request ceiling", t, func() {
		Convey("One day at 60s period fits in one request", func() {
			So(numberOfRequests(60, 1), ShouldEqual, 1)
		})
		Convey("Two days at 60s period need two requests", func() {
			So(numberOfRequests(60, 2), ShouldEqual, 2)
		})
		Convey("A partial window still costs a full request", func() {
			So(numberOfRequests(60, 3), ShouldEqual, 3)
			So(numberOfRequests(300, 1), ShouldEqual, 1)
		})
	})
}

func TestExtract(t *testing.T) {
	base := time.UnixMilli(1700000000000).UTC()
	datapoints := []*cw.Datapoint{
		{Timestamp: aws.Time(base), Average: aws.Float64(1.5), Sum: aws.Float64(15)},
		{Timestamp: aws.Time(base.Add(time.Minute)), Average: aws.Float64(2.5), Sum: aws.Float64(25)},
	}

	Convey("Given retrieved datapoints", t, func() {
		Convey("Then values follow the configured statistic", func() {
			So(extractValues(datapoints, "Average"), ShouldEqual, "1.5\n2.5")
			So(extractValues(datapoints, "Sum"), ShouldEqual, "15\n25")
		})

		Convey("And timestamps come out as epoch millis", func() {
			So(extractTimestamps(datapoints), ShouldEqual, "1700000000000\n1700000060000")
		})
	})
}

func TestInputKeys(t *testing.T) {
	Convey("Given a train run at timestamp 123456789", t, func() {
		Convey("Then the values file key follows the data layout", func() {
			So(inputKey("train", "values", "123456789"), ShouldEqual, "data/train/input/values/123456789/values.csv")
			So(inputKeyPrefix("train", "values", "123456789"), ShouldEqual, "data/train/input/values/123456789/")
			So(inputFileName("values"), ShouldEqual, "values.csv")
		})
	})
}

func TestDataUploadHandler(t *testing.T) {
	now := time.UnixMilli(1700000000000).UTC()

	Convey("Given two request windows worth of unsorted datapoints", t, func() {
		mock := &mockCloudWatch{
			statsOutputs: []*cw.GetMetricStatisticsOutput{
				{Datapoints: []*cw.Datapoint{
					datapoint(now.Add(-2*time.Minute), 3),
					datapoint(now.Add(-5*time.Minute), 1),
				}},
				{Datapoints: []*cw.Datapoint{
					datapoint(now.Add(-25*time.Hour), 7),
				}},
			},
		}
		store := &mockObjectStore{}
		handler := NewDataUploadHandler(testConfig(), mock, s3store.NewFileManager(store), testLogger())
		handler.now = func() time.Time { return now }

		raw := json.RawMessage(`{"jobType":"train","timeRangeInDays":2,"trigger":"monthly"}`)

		Convey("When the handler runs", func() {
			record, err := handler.Handle(context.Background(), raw)
			So(err, ShouldBeNil)

			Convey("Then it issues one request per window, walking backward", func() {
				So(mock.statsInputs, ShouldHaveLength, 2)
				first := mock.statsInputs[0]
				So(aws.StringValue(first.MetricName), ShouldEqual, "Latency")
				So(aws.StringValue(first.Namespace), ShouldEqual, "Custom/Service")
				So(aws.Int64Value(first.Period), ShouldEqual, 60)
				So(aws.TimeValue(first.EndTime).Equal(now), ShouldBeTrue)
				So(aws.TimeValue(first.StartTime).Equal(now.Add(-1440*time.Minute)), ShouldBeTrue)
				So(aws.TimeValue(mock.statsInputs[1].EndTime).Equal(now.Add(-1440*time.Minute)), ShouldBeTrue)
			})

			Convey("And the uploaded CSVs are sorted by timestamp", func() {
				valuesKey := "data/train/input/values/1700000000000/values.csv"
				timestampsKey := "data/train/input/timestamps/1700000000000/timestamps.csv"
				So(store.puts[valuesKey], ShouldEqual, "7\n1\n3")
				So(store.puts[timestampsKey], ShouldEqual, "1699910000000\n1699999700000\n1699999880000")
			})

			Convey("And the output record carries the S3 locations plus passthrough fields", func() {
				So(record["bucket"], ShouldEqual, "anomaly-data")
				So(record["timestamp"], ShouldEqual, "1700000000000")
				So(record["valuesKey"], ShouldEqual, "data/train/input/values/1700000000000/")
				So(record["valuesFile"], ShouldEqual, "values.csv")
				So(record["timestampsKey"], ShouldEqual, "data/train/input/timestamps/1700000000000/timestamps.csv")
				So(record["trigger"], ShouldEqual, "monthly")
			})
		})
	})

	Convey("Given incomplete configuration", t, func() {
		cfg := testConfig()
		cfg.CloudwatchMetricName = ""
		handler := NewDataUploadHandler(cfg, &mockCloudWatch{}, s3store.NewFileManager(&mockObjectStore{}), testLogger())

		Convey("Then the step fails before any call is made", func() {
			_, err := handler.Handle(context.Background(), json.RawMessage(`{"jobType":"train","timeRangeInDays":1}`))
			So(err, ShouldNotBeNil)
		})
	})
}
