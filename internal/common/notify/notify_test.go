package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dining-concierge/internal/models"
)

// ==========================
// Mock Implementations
// ==========================

type MockSESService struct {
	SendEmailFunc func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

func (m *MockSESService) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	return m.SendEmailFunc(ctx, params, optFns...)
}

type MockSNSService struct {
	PublishFunc func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

func (m *MockSNSService) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	return m.PublishFunc(ctx, params, optFns...)
}

func testNotification() *models.Notification {
	return &models.Notification{
		ID:        "n-1",
		Recipient: "a@x.com",
		Subject:   models.RecommendationSubject,
		Body:      "Hello! Here are my italian restaurant suggestions",
	}
}

// ==========================
// SES
// ==========================

func TestSESNotifier_Send(t *testing.T) {
	var captured *ses.SendEmailInput
	client := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			captured = params
			return &ses.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
		},
	}

	id, err := NewSESNotifier(client, "concierge@example.com").Send(context.Background(), testNotification())
	require.NoError(t, err)
	assert.Equal(t, "ses-1", id)

	assert.Equal(t, "concierge@example.com", aws.ToString(captured.Source))
	assert.Equal(t, []string{"a@x.com"}, captured.Destination.ToAddresses)
	assert.Equal(t, "Your Dining Recommendations", aws.ToString(captured.Message.Subject.Data))
	assert.Equal(t, "Hello! Here are my italian restaurant suggestions", aws.ToString(captured.Message.Body.Text.Data))
	assert.Nil(t, captured.Message.Body.Html, "plain text only")
}

func TestSESNotifier_SendError(t *testing.T) {
	client := &MockSESService{
		SendEmailFunc: func(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
			return nil, errors.New("MessageRejected: Email address is not verified")
		},
	}

	_, err := NewSESNotifier(client, "concierge@example.com").Send(context.Background(), testNotification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MessageRejected")
}

// ==========================
// SNS
// ==========================

func TestSNSNotifier_Send(t *testing.T) {
	var captured *sns.PublishInput
	client := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			captured = params
			return &sns.PublishOutput{MessageId: aws.String("sns-1")}, nil
		},
	}

	topic := "arn:aws:sns:us-east-1:123456789012:dining-recommendations"
	id, err := NewSNSNotifier(client, topic).Send(context.Background(), testNotification())
	require.NoError(t, err)
	assert.Equal(t, "sns-1", id)

	assert.Equal(t, topic, aws.ToString(captured.TopicArn))
	assert.Equal(t, "Your Dining Recommendations", aws.ToString(captured.Subject))
	assert.Equal(t, "a@x.com", aws.ToString(captured.MessageAttributes["recipient"].StringValue))
}

func TestSNSNotifier_SendError(t *testing.T) {
	client := &MockSNSService{
		PublishFunc: func(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
			return nil, errors.New("throttled")
		},
	}

	_, err := NewSNSNotifier(client, "arn:topic").Send(context.Background(), testNotification())
	assert.ErrorContains(t, err, "throttled")
}
