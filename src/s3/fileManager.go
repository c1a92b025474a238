package s3

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

// FileManager reads and writes the newline-delimited files the pipeline
// exchanges through S3.
type FileManager struct {
	client s3iface.S3API
}

func NewFileManager(client s3iface.S3API) *FileManager {
	return &FileManager{client: client}
}

// Upload stores content under bucket/key.
func (f *FileManager) Upload(bucket, key, content string) error {
	_, err := f.client.PutObject(&awss3.PutObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Body:   strings.NewReader(content),
	})
	if err != nil {
		return fmt.Errorf("failed to upload s3://%s/%s: %w", bucket, key, err)
	}
	return nil
}

// ReadLines fetches bucket/key and splits it into lines.
func (f *FileManager) ReadLines(bucket, key string) ([]string, error) {
	result, err := f.client.GetObject(&awss3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", bucket, key, err)
	}
	defer result.Body.Close()

	var lines []string
	scanner := bufio.NewScanner(result.Body)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", bucket, key, err)
	}
	return lines, nil
}
