// internal/common/queue/redis.go
package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"dining-concierge/internal/common/config"
)

const bodyField = "body"

const claimStart = "0-0"

// RedisStreamQueue implements the queue on a Redis stream with a consumer
// group. Entries read but not acknowledged within the visibility timeout
// are claimed again by the next Receive, giving SQS-like redelivery.
type RedisStreamQueue struct {
	rdb               redis.Cmdable
	stream            string
	group             string
	consumer          string
	block             time.Duration
	visibilityTimeout time.Duration

	// claimCursor is where the next XAUTOCLAIM resumes scanning the pending
	// entries list. Redis hands back 0-0 once the whole list was scanned.
	mu          sync.Mutex
	claimCursor string
}

// NewRedisStreamQueue creates the consumer group if it does not exist yet.
// An empty consumer name gets a random one.
func NewRedisStreamQueue(ctx context.Context, rdb redis.Cmdable, cfg config.QueueConfig, consumer string) (*RedisStreamQueue, error) {
	if consumer == "" {
		consumer = "consumer-" + uuid.NewString()[:8]
	}

	err := rdb.XGroupCreateMkStream(ctx, cfg.Stream, cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return nil, fmt.Errorf("create consumer group %s: %w", cfg.Group, err)
	}

	return &RedisStreamQueue{
		rdb:               rdb,
		stream:            cfg.Stream,
		group:             cfg.Group,
		consumer:          consumer,
		block:             config.GetDuration(cfg.WaitTime),
		visibilityTimeout: config.GetDuration(cfg.VisibilityTimeout),
		claimCursor:       claimStart,
	}, nil
}

func (q *RedisStreamQueue) Send(ctx context.Context, body string) (string, error) {
	id, err := q.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]interface{}{bodyField: body},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("redis xadd: %w", err)
	}
	return id, nil
}

func (q *RedisStreamQueue) Receive(ctx context.Context, maxMessages int) ([]Message, error) {
	if maxMessages < 1 {
		maxMessages = 1
	}

	q.mu.Lock()
	start := q.claimCursor
	q.mu.Unlock()

	claimed, next, err := q.rdb.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   q.stream,
		Group:    q.group,
		Consumer: q.consumer,
		MinIdle:  q.visibilityTimeout,
		Start:    start,
		Count:    int64(maxMessages),
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("redis xautoclaim: %w", err)
	}
	q.advanceClaimCursor(next)

	messages := make([]Message, 0, maxMessages)
	for _, m := range claimed {
		messages = append(messages, toMessage(m, true))
	}
	if len(messages) >= maxMessages {
		return messages, nil
	}

	block := q.block
	if block <= 0 {
		block = -1 // no BLOCK argument
	}
	streams, err := q.rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.group,
		Consumer: q.consumer,
		Streams:  []string{q.stream, ">"},
		Count:    int64(maxMessages - len(messages)),
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return messages, nil
		}
		return nil, fmt.Errorf("redis xreadgroup: %w", err)
	}

	for _, s := range streams {
		for _, m := range s.Messages {
			messages = append(messages, toMessage(m, false))
		}
	}
	return messages, nil
}

func (q *RedisStreamQueue) advanceClaimCursor(next string) {
	if next == "" {
		next = claimStart
	}
	q.mu.Lock()
	q.claimCursor = next
	q.mu.Unlock()
}

// Delete acknowledges the entry and removes it from the stream.
func (q *RedisStreamQueue) Delete(ctx context.Context, receiptHandle string) error {
	_, err := q.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.XAck(ctx, q.stream, q.group, receiptHandle)
		pipe.XDel(ctx, q.stream, receiptHandle)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis ack %s: %w", receiptHandle, err)
	}
	return nil
}

func toMessage(m redis.XMessage, redelivered bool) Message {
	body, _ := m.Values[bodyField].(string)
	return Message{
		ID:            m.ID,
		ReceiptHandle: m.ID,
		Body:          body,
		Redelivered:   redelivered,
	}
}
