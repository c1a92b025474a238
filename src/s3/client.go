package s3

import (
	"sync"

	"github.com/aws/aws-sdk-go/aws/session"
	awss3 "github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
)

var (
	clientInstance s3iface.S3API
	once           sync.Once
)

// Client returns the shared S3 client, created lazily on first use.
func Client() s3iface.S3API {
	once.Do(func() {
		sess := session.Must(session.NewSession())
		clientInstance = awss3.New(sess)
	})

	return clientInstance
}
