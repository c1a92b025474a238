package sagemaker

import (
	"sync"

	"github.com/aws/aws-sdk-go/aws/session"
	sm "github.com/aws/aws-sdk-go/service/sagemaker"
	"github.com/aws/aws-sdk-go/service/sagemaker/sagemakeriface"
)

var (
	clientInstance sagemakeriface.SageMakerAPI
	once           sync.Once
)

// Client returns the shared SageMaker client, created lazily on first use.
func Client() sagemakeriface.SageMakerAPI {
	once.Do(func() {
		sess := session.Must(session.NewSession())
		clientInstance = sm.New(sess)
	})

	return clientInstance
}
