package anomaly_test

import (
	"errors"
	"testing"

	"metric-anomaly-detector/src/anomaly"

	. "github.com/smartystreets/goconvey/convey"
)

func TestFindAnomalousIndices(t *testing.T) {
	Convey("Given a flat series with one clear outlier", t, func() {
		scores := make([]float64, 21)
		for i := range scores {
			scores[i] = 1.0
		}
		scores[20] = 100.0

		Convey("Then only the outlier index is classified anomalous", func() {
			indices, err := anomaly.FindAnomalousIndices(scores)
			So(err, ShouldBeNil)
			So(indices, ShouldResemble, []int{20})
		})

		Convey("And a second run on the same input yields the same result", func() {
			first, err := anomaly.FindAnomalousIndices(scores)
			So(err, ShouldBeNil)
			second, err := anomaly.FindAnomalousIndices(scores)
			So(err, ShouldBeNil)
			So(second, ShouldResemble, first)
		})

		Convey("And every returned index is strictly above the cutoff", func() {
			indices, err := anomaly.FindAnomalousIndices(scores)
			So(err, ShouldBeNil)
			cutoff := anomaly.Mean(scores) + 2*anomaly.StandardDeviation(scores)
			for _, i := range indices {
				So(scores[i], ShouldBeGreaterThan, cutoff)
			}
		})
	})

	Convey("Given a constant series", t, func() {
		scores := []float64{3.5, 3.5, 3.5, 3.5}

		Convey("Then nothing is anomalous, the comparison being strict", func() {
			indices, err := anomaly.FindAnomalousIndices(scores)
			So(err, ShouldBeNil)
			So(indices, ShouldBeEmpty)
		})
	})

	Convey("Given a mildly varying series", t, func() {
		scores := []float64{1, 2, 3, 4, 5}

		Convey("Then nothing crosses the 2 sigma cutoff", func() {
			indices, err := anomaly.FindAnomalousIndices(scores)
			So(err, ShouldBeNil)
			So(indices, ShouldBeEmpty)
		})
	})

	Convey("Given an empty series", t, func() {
		Convey("Then the evaluator refuses the input", func() {
			indices, err := anomaly.FindAnomalousIndices(nil)
			So(indices, ShouldBeNil)
			So(errors.Is(err, anomaly.ErrEmptyScores), ShouldBeTrue)
		})
	})

	Convey("Given a series with several outliers", t, func() {
		scores := make([]float64, 40)
		for i := range scores {
			scores[i] = 2.0
		}
		scores[3] = 90.0
		scores[17] = 85.0

		Convey("Then all outlier indices come back in ascending order", func() {
			indices, err := anomaly.FindAnomalousIndices(scores)
			So(err, ShouldBeNil)
			So(indices, ShouldResemble, []int{3, 17})
		})
	})
}

func TestIndicatorSeries(t *testing.T) {
	Convey("Given an anomalous-index set over a series of length 10", t, func() {
		indices := []int{2, 7}
		series := anomaly.IndicatorSeries(indices, 10)

		Convey("Then the series has a 1 at each anomalous index and 0 elsewhere", func() {
			So(series, ShouldHaveLength, 10)
			ones := 0
			for i, v := range series {
				if i == 2 || i == 7 {
					So(v, ShouldEqual, 1.0)
					ones++
				} else {
					So(v, ShouldEqual, 0.0)
				}
			}
			So(ones, ShouldEqual, len(indices))
		})
	})

	Convey("Given no anomalies", t, func() {
		series := anomaly.IndicatorSeries(nil, 4)

		Convey("Then the series is all zeros", func() {
			So(series, ShouldResemble, []float64{0, 0, 0, 0})
		})
	})
}

func TestStatistics(t *testing.T) {
	Convey("Given a small series", t, func() {
		xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}

		Convey("Then mean and population standard deviation match the textbook values", func() {
			So(anomaly.Mean(xs), ShouldEqual, 5.0)
			So(anomaly.StandardDeviation(xs), ShouldEqual, 2.0)
		})
	})

	Convey("Given an empty series", t, func() {
		Convey("Then the standard deviation is zero", func() {
			So(anomaly.StandardDeviation(nil), ShouldEqual, 0.0)
		})
	})
}
