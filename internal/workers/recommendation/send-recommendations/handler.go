// internal/workers/recommendation/send-recommendations/handler.go
package sendrecommendations

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	apperrors "dining-concierge/internal/common/errors"
	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/common/metrics"
	"dining-concierge/internal/common/notify"
	"dining-concierge/internal/common/observability"
	"dining-concierge/internal/common/queue"
	"dining-concierge/internal/common/search"
	"dining-concierge/internal/common/store"
	"dining-concierge/internal/common/validation"
	"dining-concierge/internal/models"
)

type Handler struct {
	config    *Config
	consumer  queue.Consumer
	index     search.Index
	records   store.RecordStore
	notifier  notify.Notifier
	validator *validation.Validator
	obs       *observability.Observability
	logger    logger.Logger

	rngMu sync.Mutex
	rng   *rand.Rand
}

type Option func(*Handler)

// WithRand fixes the shuffle source.
func WithRand(rng *rand.Rand) Option {
	return func(h *Handler) {
		h.rng = rng
	}
}

func WithObservability(obs *observability.Observability) Option {
	return func(h *Handler) {
		h.obs = obs
	}
}

func NewHandler(config *Config, consumer queue.Consumer, index search.Index, records store.RecordStore, notifier notify.Notifier, log logger.Logger, opts ...Option) (*Handler, error) {
	validator, err := validation.NewRequestValidator()
	if err != nil {
		return nil, err
	}

	h := &Handler{
		config:    config,
		consumer:  consumer,
		index:     index,
		records:   records,
		notifier:  notifier,
		validator: validator,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Drain receives one batch from the queue and processes it. An empty queue
// is not an error.
func (h *Handler) Drain(ctx context.Context) (*BatchResult, error) {
	msgs, err := h.consumer.Receive(ctx, h.config.BatchSize)
	if err != nil {
		return nil, apperrors.NewQueueReceiveError(err)
	}
	if len(msgs) == 0 {
		h.logger.Info("No new requests in queue, waiting for next poll", nil)
		h.obs.RecordBatch(ctx, 0, 0, "empty")
		return &BatchResult{}, nil
	}
	return h.ProcessBatch(ctx, msgs), nil
}

// ProcessBatch handles every message independently; one failure never
// stops the others. At most Concurrency messages run at once.
func (h *Handler) ProcessBatch(ctx context.Context, msgs []queue.Message) *BatchResult {
	start := time.Now()
	result := &BatchResult{
		BatchID:  uuid.NewString(),
		Received: len(msgs),
	}
	log := h.logger.WithFields(map[string]interface{}{"batchId": result.BatchID})
	log.Info("Processing batch", map[string]interface{}{"size": len(msgs)})

	var mu sync.Mutex
	g := new(errgroup.Group)
	limit := h.config.Concurrency
	if limit < 1 {
		limit = 1
	}
	g.SetLimit(limit)

	for _, msg := range msgs {
		msg := msg
		g.Go(func() error {
			outcome, err := h.processMessage(ctx, log, msg)

			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case OutcomeSent:
				result.Acknowledged = append(result.Acknowledged, msg.ID)
			case OutcomeDiscarded:
				result.Discarded = append(result.Discarded, msg.ID)
			default:
				result.Failures = append(result.Failures, MessageFailure{MessageID: msg.ID, Err: err})
			}
			return nil
		})
	}
	_ = g.Wait()

	h.obs.RecordBatch(ctx, result.Received, time.Since(start), result.status())
	log.Info("Batch complete", map[string]interface{}{
		"acknowledged": len(result.Acknowledged),
		"discarded":    len(result.Discarded),
		"failed":       len(result.Failures),
		"durationMs":   time.Since(start).Milliseconds(),
	})
	return result
}

func (h *Handler) processMessage(ctx context.Context, log logger.Logger, msg queue.Message) (outcome string, err error) {
	start := time.Now()
	log = log.WithFields(map[string]interface{}{
		"messageId":   msg.ID,
		"redelivered": msg.Redelivered,
	})
	if msg.Redelivered {
		log.Warn("Processing redelivered message, the recipient may get a duplicate email", nil)
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.MessageTimeout)
	defer cancel()

	defer func() {
		metrics.MessagesProcessed.WithLabelValues(outcome).Inc()
		metrics.MessageDuration.WithLabelValues(outcome).Observe(time.Since(start).Seconds())
		if err != nil {
			log.Error("Message left for redelivery", map[string]interface{}{
				"error":     err,
				"code":      apperrors.CodeOf(err),
				"retryable": apperrors.IsRetryable(err),
			})
		}
	}()

	req, err := h.decode(msg.Body)
	if err != nil {
		// Retrying can never fix the body, so it is dropped.
		log.Warn("Discarding malformed message", map[string]interface{}{"error": err})
		if err := h.ack(ctx, msg); err != nil {
			return OutcomeFailed, err
		}
		return OutcomeDiscarded, nil
	}

	note, kind, err := h.buildNotification(ctx, log, req)
	if err != nil {
		return OutcomeFailed, err
	}

	providerID, err := h.notifier.Send(ctx, note)
	if err != nil {
		return OutcomeFailed, apperrors.NewNotificationSendError(err)
	}
	metrics.NotificationsSent.WithLabelValues(kind).Inc()
	log.Info("Notification sent", map[string]interface{}{
		"notificationId": note.ID,
		"providerId":     providerID,
		"kind":           kind,
	})

	// Acknowledge only after a successful send.
	if err := h.ack(ctx, msg); err != nil {
		return OutcomeFailed, err
	}
	return OutcomeSent, nil
}

func (h *Handler) decode(body string) (*models.RecommendationRequest, error) {
	if result := h.validator.Validate([]byte(body)); !result.Valid {
		return nil, apperrors.NewMessageMalformedError(result.Error())
	}

	var req models.RecommendationRequest
	if err := json.Unmarshal([]byte(body), &req); err != nil {
		return nil, apperrors.NewMessageMalformedError(err.Error())
	}
	return &req, nil
}

// buildNotification runs search, selection and hydration for one request.
func (h *Handler) buildNotification(ctx context.Context, log logger.Logger, req *models.RecommendationRequest) (*models.Notification, string, error) {
	alias := CuisineAlias(req.Cuisine)

	entries, err := h.index.SearchByCuisine(ctx, alias, h.config.MaxSearchResults)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, "", apperrors.NewSearchTimeoutError(err)
		}
		return nil, "", apperrors.NewSearchQueryFailedError(err)
	}

	ids := SelectCandidates(entries, h.config.Recommendations, h.lockedRand())

	recs := make([]models.Recommendation, 0, len(ids))
	for _, id := range ids {
		restaurant, err := h.records.Get(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			log.Debug("Indexed restaurant missing from record store", map[string]interface{}{"restaurantId": id})
			continue
		}
		if err != nil {
			return nil, "", apperrors.NewRecordLookupError(id, err)
		}
		recs = append(recs, models.Recommendation{
			RestaurantID: id,
			Name:         restaurant.DisplayName(),
			Address:      restaurant.DisplayAddress(),
		})
	}

	note := &models.Notification{
		ID:        uuid.NewString(),
		Recipient: req.Email,
		Subject:   models.RecommendationSubject,
	}
	if len(recs) == 0 {
		note.Body = NoneFoundBody(req.Cuisine)
		return note, KindNoneFound, nil
	}
	note.Body = ComposeBody(req, recs)
	return note, KindRecommendations, nil
}

func (h *Handler) ack(ctx context.Context, msg queue.Message) error {
	if err := h.consumer.Delete(ctx, msg.ReceiptHandle); err != nil {
		return apperrors.NewQueueDeleteError(err)
	}
	return nil
}

// lockedRand serialises access to the shared source; *rand.Rand is not
// safe for concurrent use.
func (h *Handler) lockedRand() *rand.Rand {
	h.rngMu.Lock()
	defer h.rngMu.Unlock()
	return rand.New(rand.NewSource(h.rng.Int63()))
}
