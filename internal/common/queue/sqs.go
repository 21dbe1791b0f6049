// internal/common/queue/sqs.go
package queue

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"dining-concierge/internal/common/config"
)

// SQSAPI is the subset of the SQS client the queue needs.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

const sqsMaxBatch = 10

type SQSQueue struct {
	client            SQSAPI
	url               string
	waitTime          time.Duration
	visibilityTimeout time.Duration
}

func NewSQSQueue(client SQSAPI, cfg config.QueueConfig) *SQSQueue {
	return &SQSQueue{
		client:            client,
		url:               cfg.URL,
		waitTime:          config.GetDuration(cfg.WaitTime),
		visibilityTimeout: config.GetDuration(cfg.VisibilityTimeout),
	}
}

func (q *SQSQueue) Send(ctx context.Context, body string) (string, error) {
	out, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.url),
		MessageBody: aws.String(body),
	})
	if err != nil {
		return "", fmt.Errorf("sqs send: %w", err)
	}
	return aws.ToString(out.MessageId), nil
}

func (q *SQSQueue) Receive(ctx context.Context, maxMessages int) ([]Message, error) {
	if maxMessages < 1 {
		maxMessages = 1
	}
	if maxMessages > sqsMaxBatch {
		maxMessages = sqsMaxBatch
	}

	input := &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(q.url),
		MaxNumberOfMessages: int32(maxMessages),
		WaitTimeSeconds:     int32(q.waitTime / time.Second),
		AttributeNames:      []types.QueueAttributeName{types.QueueAttributeName("ApproximateReceiveCount")},
	}
	if q.visibilityTimeout > 0 {
		input.VisibilityTimeout = int32(q.visibilityTimeout / time.Second)
	}

	out, err := q.client.ReceiveMessage(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("sqs receive: %w", err)
	}

	messages := make([]Message, 0, len(out.Messages))
	for _, m := range out.Messages {
		redelivered := false
		if n, err := strconv.Atoi(m.Attributes["ApproximateReceiveCount"]); err == nil && n > 1 {
			redelivered = true
		}
		messages = append(messages, Message{
			ID:            aws.ToString(m.MessageId),
			ReceiptHandle: aws.ToString(m.ReceiptHandle),
			Body:          aws.ToString(m.Body),
			Redelivered:   redelivered,
		})
	}
	return messages, nil
}

func (q *SQSQueue) Delete(ctx context.Context, receiptHandle string) error {
	_, err := q.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(q.url),
		ReceiptHandle: aws.String(receiptHandle),
	})
	if err != nil {
		return fmt.Errorf("sqs delete: %w", err)
	}
	return nil
}
