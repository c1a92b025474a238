package sagemaker

import "fmt"

// AlgorithmName prefixes training jobs, transform jobs and models so the
// latest-model lookup can filter on it.
const AlgorithmName = "random-cut-forest"

const (
	algorithmImageName = "randomcutforest"
	algorithmImageTag  = "1"
)

// Registry accounts hosting the first-party RandomCutForest image, per region.
var regionRegistry = map[string]string{
	"us-west-1":      "632365934929.dkr.ecr.us-west-1.amazonaws.com",
	"us-west-2":      "174872318107.dkr.ecr.us-west-2.amazonaws.com",
	"us-east-1":      "382416733822.dkr.ecr.us-east-1.amazonaws.com",
	"us-east-2":      "404615174143.dkr.ecr.us-east-2.amazonaws.com",
	"ap-northeast-1": "351501993468.dkr.ecr.ap-northeast-1.amazonaws.com",
	"ap-northeast-2": "835164637446.dkr.ecr.ap-northeast-2.amazonaws.com",
	"ap-south-1":     "991648021394.dkr.ecr.ap-south-1.amazonaws.com",
	"ap-southeast-1": "475088953585.dkr.ecr.ap-southeast-1.amazonaws.com",
	"ap-southeast-2": "712309505854.dkr.ecr.ap-southeast-2.amazonaws.com",
	"ca-central-1":   "469771592824.dkr.ecr.ca-central-1.amazonaws.com",
	"eu-central-1":   "664544806723.dkr.ecr.eu-central-1.amazonaws.com",
	"eu-west-1":      "438346466558.dkr.ecr.eu-west-1.amazonaws.com",
	"eu-west-2":      "644912444149.dkr.ecr.eu-west-2.amazonaws.com",
}

// AlgorithmImage resolves the RandomCutForest training image URI for a region.
func AlgorithmImage(region string) (string, error) {
	registry, ok := regionRegistry[region]
	if !ok {
		return "", fmt.Errorf("no RandomCutForest registry known for region %q", region)
	}
	return fmt.Sprintf("%s/%s:%s", registry, algorithmImageName, algorithmImageTag), nil
}
