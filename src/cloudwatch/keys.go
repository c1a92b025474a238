package cloudwatch

import "fmt"

// S3 key layout for uploaded input files. A values file written for the
// transform run at timestamp 123 lands at
// data/transform/input/values/123/values.csv, and the batch transform output
// later shows up under data/transform/output/values/123/.
func inputKeyPrefix(jobType, fileType, timestamp string) string {
	return fmt.Sprintf("data/%s/input/%s/%s/", jobType, fileType, timestamp)
}

func inputFileName(fileType string) string {
	return fileType + ".csv"
}

func inputKey(jobType, fileType, timestamp string) string {
	return inputKeyPrefix(jobType, fileType, timestamp) + inputFileName(fileType)
}
