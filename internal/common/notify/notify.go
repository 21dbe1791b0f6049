// Package notify delivers recommendation notifications by email.
package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"

	"dining-concierge/internal/models"
)

// Notifier sends a notification and returns the provider's message id.
type Notifier interface {
	Send(ctx context.Context, n *models.Notification) (string, error)
}

type SESAPI interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SESNotifier sends plain-text email from a fixed, verified sender.
type SESNotifier struct {
	client SESAPI
	sender string
}

func NewSESNotifier(client SESAPI, sender string) *SESNotifier {
	return &SESNotifier{client: client, sender: sender}
}

func (s *SESNotifier) Send(ctx context.Context, n *models.Notification) (string, error) {
	out, err := s.client.SendEmail(ctx, &ses.SendEmailInput{
		Source: aws.String(s.sender),
		Destination: &types.Destination{
			ToAddresses: []string{n.Recipient},
		},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(n.Subject)},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(n.Body)},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("ses send to %s: %w", n.Recipient, err)
	}
	return aws.ToString(out.MessageId), nil
}

// SNSNotifier publishes to a topic whose subscribers receive the email.
// The recipient is carried as a message attribute for filter policies.
type SNSNotifier struct {
	client   SNSAPI
	topicARN string
}

func NewSNSNotifier(client SNSAPI, topicARN string) *SNSNotifier {
	return &SNSNotifier{client: client, topicARN: topicARN}
}

func (s *SNSNotifier) Send(ctx context.Context, n *models.Notification) (string, error) {
	out, err := s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(s.topicARN),
		Subject:  aws.String(n.Subject),
		Message:  aws.String(n.Body),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"recipient": {
				DataType:    aws.String("String"),
				StringValue: aws.String(n.Recipient),
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("sns publish to %s: %w", s.topicARN, err)
	}
	return aws.ToString(out.MessageId), nil
}
