// internal/common/aws/clients.go
package aws

import (
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// Clients bundles the service clients built from one aws.Config.
type Clients struct {
	SQS      *sqs.Client
	DynamoDB *dynamodb.Client
	SES      *ses.Client
	SNS      *sns.Client
}

func NewClients(cfg aws.Config) *Clients {
	return &Clients{
		SQS:      sqs.NewFromConfig(cfg),
		DynamoDB: dynamodb.NewFromConfig(cfg),
		SES:      ses.NewFromConfig(cfg),
		SNS:      sns.NewFromConfig(cfg),
	}
}
