// internal/workers/recommendation/send-recommendations/handler_test.go
package sendrecommendations

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	apperrors "dining-concierge/internal/common/errors"
	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/common/queue"
	"dining-concierge/internal/common/store"
	"dining-concierge/internal/models"
)

// ==========================
// Mock Implementations
// ==========================

type fakeConsumer struct {
	mu         sync.Mutex
	pending    []queue.Message
	deleted    []string
	receives   int
	receiveErr error
	deleteErr  error
}

func (f *fakeConsumer) Receive(ctx context.Context, maxMessages int) ([]queue.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.receives++
	if f.receiveErr != nil {
		return nil, f.receiveErr
	}
	n := maxMessages
	if n > len(f.pending) {
		n = len(f.pending)
	}
	out := f.pending[:n]
	f.pending = f.pending[n:]
	return out, nil
}

func (f *fakeConsumer) Delete(ctx context.Context, receiptHandle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, receiptHandle)
	return nil
}

func (f *fakeConsumer) deletedHandles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deleted...)
}

func (f *fakeConsumer) receiveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receives
}

type fakeIndex struct {
	mu      sync.Mutex
	entries map[string][]models.RestaurantIndexEntry
	err     error
	aliases []string
}

func (f *fakeIndex) SearchByCuisine(ctx context.Context, alias string, size int) ([]models.RestaurantIndexEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.aliases = append(f.aliases, alias)
	if f.err != nil {
		return nil, f.err
	}
	hits := f.entries[alias]
	if len(hits) > size {
		hits = hits[:size]
	}
	return hits, nil
}

type fakeRecords struct {
	restaurants map[string]*models.Restaurant
	err         error
}

func (f *fakeRecords) Get(ctx context.Context, businessID string) (*models.Restaurant, error) {
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.restaurants[businessID]
	if !ok {
		return nil, store.ErrNotFound
	}
	return r, nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []*models.Notification
	failFor string
	err     error
}

func (f *fakeNotifier) Send(ctx context.Context, n *models.Notification) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil && (f.failFor == "" || f.failFor == n.Recipient) {
		return "", f.err
	}
	f.sent = append(f.sent, n)
	return fmt.Sprintf("provider-%d", len(f.sent)), nil
}

// ==========================
// Test Helper Functions
// ==========================

type fixture struct {
	consumer *fakeConsumer
	index    *fakeIndex
	records  *fakeRecords
	notifier *fakeNotifier
	handler  *Handler
}

func newFixture(t *testing.T, cfg *Config) *fixture {
	t.Helper()
	if cfg == nil {
		cfg = LoadConfig()
	}
	f := &fixture{
		consumer: &fakeConsumer{},
		index:    &fakeIndex{entries: map[string][]models.RestaurantIndexEntry{}},
		records:  &fakeRecords{restaurants: map[string]*models.Restaurant{}},
		notifier: &fakeNotifier{},
	}
	h, err := NewHandler(cfg, f.consumer, f.index, f.records, f.notifier, logger.NewTestLogger(t),
		WithRand(rand.New(rand.NewSource(42))))
	require.NoError(t, err)
	f.handler = h
	return f
}

// addRestaurants indexes ids under alias and stores a record for each.
func (f *fixture) addRestaurants(alias string, ids ...string) {
	for _, id := range ids {
		f.index.entries[alias] = append(f.index.entries[alias], models.RestaurantIndexEntry{
			RestaurantID: id,
			Cuisine:      alias,
			Type:         models.RestaurantDocumentType,
		})
		f.records.restaurants[id] = &models.Restaurant{
			BusinessID: id,
			Name:       "Restaurant " + id,
			Address:    id + " Broadway",
		}
	}
}

func message(id, body string) queue.Message {
	return queue.Message{ID: id, ReceiptHandle: "rh-" + id, Body: body}
}

func requestBody(cuisine, email string) string {
	return fmt.Sprintf(`{"Location":"manhattan","Cuisine":%q,"DiningTime":"19:00","DiningDate":"2024-01-03","NumberOfPeople":4,"Email":%q}`, cuisine, email)
}

// recommendationLines returns the numbered lines of a notification body.
func recommendationLines(body string) []string {
	var lines []string
	for _, l := range strings.Split(body, "\n") {
		if len(l) > 2 && l[0] >= '1' && l[0] <= '9' && l[1] == '.' {
			lines = append(lines, l)
		}
	}
	return lines
}

// ==========================
// Core Functionality Tests
// ==========================

func TestProcessBatch_RecommendsThreeDistinctRestaurants(t *testing.T) {
	f := newFixture(t, nil)
	f.addRestaurants("italian", "r1", "r2", "r3", "r4", "r5")

	result := f.handler.ProcessBatch(context.Background(), []queue.Message{message("m1", requestBody("italian", "a@x.com"))})

	require.NoError(t, result.Err())
	assert.Equal(t, []string{"m1"}, result.Acknowledged)
	assert.Equal(t, []string{"rh-m1"}, f.consumer.deletedHandles())
	assert.Equal(t, []string{"italian"}, f.index.aliases)

	require.Len(t, f.notifier.sent, 1)
	note := f.notifier.sent[0]
	assert.Equal(t, "a@x.com", note.Recipient)
	assert.Equal(t, "Your Dining Recommendations", note.Subject)
	assert.True(t, strings.HasPrefix(note.Body,
		"Hello! Here are my italian restaurant suggestions for 4 people, for 2024-01-03 at 19:00:\n\n"))
	assert.True(t, strings.HasSuffix(note.Body, "\nEnjoy your meal!"))

	lines := recommendationLines(note.Body)
	require.Len(t, lines, 3)
	seen := map[string]bool{}
	for i, line := range lines {
		assert.True(t, strings.HasPrefix(line, fmt.Sprintf("%d. Restaurant r", i+1)), line)
		name := strings.SplitN(line, ",", 2)[0]
		assert.False(t, seen[name], "duplicate recommendation %s", name)
		seen[name] = true
	}
}

func TestProcessBatch_IndianUsesAliasAndReportsNoneFound(t *testing.T) {
	f := newFixture(t, nil)

	result := f.handler.ProcessBatch(context.Background(), []queue.Message{message("m1", requestBody("indian", "a@x.com"))})

	require.NoError(t, result.Err())
	assert.Equal(t, []string{"indpak"}, f.index.aliases)
	require.Len(t, f.notifier.sent, 1)
	assert.Equal(t,
		"Hello! We couldn't find any indian restaurants in our database right now. Please try another cuisine!",
		f.notifier.sent[0].Body)
	assert.Equal(t, []string{"rh-m1"}, f.consumer.deletedHandles())
}

func TestProcessBatch_SendFailureLeavesMessage(t *testing.T) {
	f := newFixture(t, nil)
	f.addRestaurants("thai", "t1", "t2")
	f.notifier.err = errors.New("MessageRejected")

	result := f.handler.ProcessBatch(context.Background(), []queue.Message{message("m1", requestBody("thai", "a@x.com"))})

	require.Error(t, result.Err())
	assert.Equal(t, []string{"m1"}, result.FailedIDs())
	assert.Equal(t, apperrors.ErrCodeNotificationSendFailed, apperrors.CodeOf(result.Failures[0].Err))
	assert.Empty(t, f.consumer.deletedHandles(), "message must stay on the queue")
}

func TestProcessBatch_MalformedMessagesAreDiscarded(t *testing.T) {
	f := newFixture(t, nil)

	msgs := []queue.Message{
		message("bad-json", `Cuisine=thai`),
		message("no-email", `{"Cuisine":"thai"}`),
		message("bad-party", `{"Cuisine":"thai","Email":"a@x.com","NumberOfPeople":{"n":2}}`),
	}
	result := f.handler.ProcessBatch(context.Background(), msgs)

	require.NoError(t, result.Err())
	assert.ElementsMatch(t, []string{"bad-json", "no-email", "bad-party"}, result.Discarded)
	assert.ElementsMatch(t, []string{"rh-bad-json", "rh-no-email", "rh-bad-party"}, f.consumer.deletedHandles())
	assert.Empty(t, f.notifier.sent)
	assert.Empty(t, f.index.aliases)
}

func TestProcessBatch_MissingRecordsAreSkipped(t *testing.T) {
	f := newFixture(t, nil)
	f.addRestaurants("mexican", "x1", "x2")
	delete(f.records.restaurants, "x2")

	result := f.handler.ProcessBatch(context.Background(), []queue.Message{message("m1", requestBody("mexican", "a@x.com"))})

	require.NoError(t, result.Err())
	lines := recommendationLines(f.notifier.sent[0].Body)
	assert.Equal(t, []string{"1. Restaurant x1, located at x1 Broadway"}, lines)
}

func TestProcessBatch_NoHydratedRecordsSendsNoneFound(t *testing.T) {
	f := newFixture(t, nil)
	f.addRestaurants("chinese", "c1")
	delete(f.records.restaurants, "c1")

	result := f.handler.ProcessBatch(context.Background(), []queue.Message{message("m1", requestBody("chinese", "a@x.com"))})

	require.NoError(t, result.Err())
	assert.Equal(t, NoneFoundBody("chinese"), f.notifier.sent[0].Body)
	assert.Equal(t, []string{"rh-m1"}, f.consumer.deletedHandles())
}

func TestProcessBatch_DuplicateHitsAreCollapsed(t *testing.T) {
	f := newFixture(t, nil)
	f.addRestaurants("japanese", "j1", "j2")
	f.index.entries["japanese"] = append(f.index.entries["japanese"],
		models.RestaurantIndexEntry{RestaurantID: "j1"},
		models.RestaurantIndexEntry{RestaurantID: "j1"},
	)

	result := f.handler.ProcessBatch(context.Background(), []queue.Message{message("m1", requestBody("japanese", "a@x.com"))})

	require.NoError(t, result.Err())
	lines := recommendationLines(f.notifier.sent[0].Body)
	require.Len(t, lines, 2)
	assert.NotEqual(t, lines[0][3:], lines[1][3:])
}

// ==========================
// Error Handling Tests
// ==========================

func TestProcessBatch_DependencyFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(f *fixture)
		code  apperrors.ErrorCode
	}{
		{
			name:  "search index down",
			setup: func(f *fixture) { f.index.err = errors.New("connection refused") },
			code:  apperrors.ErrCodeSearchQueryFailed,
		},
		{
			name:  "search timeout",
			setup: func(f *fixture) { f.index.err = fmt.Errorf("search: %w", context.DeadlineExceeded) },
			code:  apperrors.ErrCodeSearchTimeout,
		},
		{
			name: "record store down",
			setup: func(f *fixture) {
				f.addRestaurants("thai", "t1")
				f.records.err = errors.New("throttled")
			},
			code: apperrors.ErrCodeRecordLookupFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil)
			tt.setup(f)

			result := f.handler.ProcessBatch(context.Background(), []queue.Message{message("m1", requestBody("thai", "a@x.com"))})

			require.Len(t, result.Failures, 1)
			assert.Equal(t, tt.code, apperrors.CodeOf(result.Failures[0].Err))
			assert.True(t, apperrors.IsRetryable(result.Failures[0].Err))
			assert.Empty(t, f.notifier.sent)
			assert.Empty(t, f.consumer.deletedHandles())
		})
	}
}

func TestProcessBatch_AckFailureAfterSend(t *testing.T) {
	f := newFixture(t, nil)
	f.addRestaurants("thai", "t1")
	f.consumer.deleteErr = errors.New("receipt handle expired")

	result := f.handler.ProcessBatch(context.Background(), []queue.Message{message("m1", requestBody("thai", "a@x.com"))})

	require.Len(t, result.Failures, 1)
	assert.Equal(t, apperrors.ErrCodeQueueDelete, apperrors.CodeOf(result.Failures[0].Err))
	assert.Len(t, f.notifier.sent, 1)
}

func TestProcessBatch_LogsRedelivery(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	consumer := &fakeConsumer{}
	index := &fakeIndex{entries: map[string][]models.RestaurantIndexEntry{}}
	notifier := &fakeNotifier{}
	h, err := NewHandler(LoadConfig(), consumer, index, &fakeRecords{}, notifier,
		logger.NewZapAdapter(zap.New(core)), WithRand(rand.New(rand.NewSource(1))))
	require.NoError(t, err)

	first := message("m1", requestBody("thai", "a@x.com"))
	again := message("m2", requestBody("thai", "b@x.com"))
	again.Redelivered = true

	result := h.ProcessBatch(context.Background(), []queue.Message{first, again})
	require.NoError(t, result.Err())
	require.Len(t, notifier.sent, 2)

	warnings := logs.FilterMessageSnippet("redelivered message").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, "m2", warnings[0].ContextMap()["messageId"])

	sent := map[string]bool{}
	for _, entry := range logs.FilterMessage("Notification sent").All() {
		fields := entry.ContextMap()
		sent[fields["messageId"].(string)] = fields["redelivered"].(bool)
	}
	assert.Equal(t, map[string]bool{"m1": false, "m2": true}, sent)
}

func TestProcessBatch_FailuresAreIsolated(t *testing.T) {
	for _, concurrency := range []int{1, 4} {
		t.Run(fmt.Sprintf("concurrency=%d", concurrency), func(t *testing.T) {
			cfg := LoadConfig()
			cfg.Concurrency = concurrency
			f := newFixture(t, cfg)
			f.addRestaurants("italian", "r1", "r2", "r3", "r4")
			f.notifier.err = errors.New("mailbox full")
			f.notifier.failFor = "b@x.com"

			msgs := []queue.Message{
				message("m1", requestBody("italian", "a@x.com")),
				message("m2", requestBody("italian", "b@x.com")),
				message("m3", requestBody("italian", "c@x.com")),
			}
			result := f.handler.ProcessBatch(context.Background(), msgs)

			assert.Equal(t, 3, result.Received)
			assert.ElementsMatch(t, []string{"m1", "m3"}, result.Acknowledged)
			assert.Equal(t, []string{"m2"}, result.FailedIDs())
			assert.ElementsMatch(t, []string{"rh-m1", "rh-m3"}, f.consumer.deletedHandles())
			assert.Contains(t, result.Err().Error(), "1 of 3 messages failed (m2)")
		})
	}
}

// ==========================
// Drain
// ==========================

func TestDrain(t *testing.T) {
	t.Run("empty queue", func(t *testing.T) {
		f := newFixture(t, nil)

		result, err := f.handler.Drain(context.Background())
		require.NoError(t, err)
		assert.Zero(t, result.Received)
		assert.NoError(t, result.Err())
	})

	t.Run("receives at most one batch", func(t *testing.T) {
		cfg := LoadConfig()
		cfg.BatchSize = 2
		f := newFixture(t, cfg)
		f.addRestaurants("thai", "t1")
		for i := 0; i < 3; i++ {
			f.consumer.pending = append(f.consumer.pending, message(fmt.Sprintf("m%d", i), requestBody("thai", "a@x.com")))
		}

		result, err := f.handler.Drain(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, result.Received)
		assert.Len(t, f.consumer.pending, 1)
	})

	t.Run("receive error", func(t *testing.T) {
		f := newFixture(t, nil)
		f.consumer.receiveErr = errors.New("queue does not exist")

		_, err := f.handler.Drain(context.Background())
		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeQueueReceive, apperrors.CodeOf(err))
	})
}

func TestNewHandler_DefaultRand(t *testing.T) {
	h, err := NewHandler(LoadConfig(), &fakeConsumer{}, &fakeIndex{}, &fakeRecords{}, &fakeNotifier{}, logger.NewNoOpLogger())
	require.NoError(t, err)
	assert.NotNil(t, h.rng)
	assert.Nil(t, h.obs)
}
