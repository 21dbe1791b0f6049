// Package queue is the at-least-once channel between the dialog hook and
// the recommendation worker.
package queue

import (
	"context"
	"encoding/json"
	"fmt"

	"dining-concierge/internal/models"
)

// Message is one delivery of a queued request. A message that is not
// deleted becomes visible again after the visibility timeout.
type Message struct {
	ID            string
	ReceiptHandle string
	Body          string
	Redelivered   bool
}

type Publisher interface {
	Send(ctx context.Context, body string) (string, error)
}

type Consumer interface {
	Receive(ctx context.Context, maxMessages int) ([]Message, error)
	// Delete acknowledges a message by its receipt handle.
	Delete(ctx context.Context, receiptHandle string) error
}

type Queue interface {
	Publisher
	Consumer
}

// SendRequest encodes req as the flat JSON message body and enqueues it.
func SendRequest(ctx context.Context, p Publisher, req *models.RecommendationRequest) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	return p.Send(ctx, string(body))
}
