package cloudwatch

import (
	"sync"

	"github.com/aws/aws-sdk-go/aws/session"
	cw "github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/aws/aws-sdk-go/service/cloudwatch/cloudwatchiface"
)

var (
	clientInstance cloudwatchiface.CloudWatchAPI
	once           sync.Once
)

// Client returns the shared CloudWatch client, created lazily on first use.
func Client() cloudwatchiface.CloudWatchAPI {
	once.Do(func() {
		sess := session.Must(session.NewSession())
		clientInstance = cw.New(sess)
	})

	return clientInstance
}
