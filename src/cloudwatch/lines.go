package cloudwatch

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
)

// Line parsing for the files the batch transform step leaves in S3. Scores
// arrive as JSON lines ({"score": 1.23}), timestamps as bare epoch millis.

var (
	ErrMalformedScoreLine     = errors.New("malformed anomaly score line")
	ErrMalformedTimestampLine = errors.New("malformed timestamp line")
)

type scoreLine struct {
	Score float64 `json:"score"`
}

func parseScoreLines(lines []string) ([]float64, error) {
	scores := make([]float64, 0, len(lines))
	for i, line := range lines {
		var parsed scoreLine
		if err := json.Unmarshal([]byte(line), &parsed); err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedScoreLine, i+1, err)
		}
		scores = append(scores, parsed.Score)
	}
	return scores, nil
}

func parseTimestampLines(lines []string) ([]int64, error) {
	timestamps := make([]int64, 0, len(lines))
	for i, line := range lines {
		ts, err := strconv.ParseInt(line, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %v", ErrMalformedTimestampLine, i+1, err)
		}
		timestamps = append(timestamps, ts)
	}
	return timestamps, nil
}
