// internal/workers/dialog/dialog-hook/handler.go
package dialoghook

import (
	"context"
	"errors"
	"fmt"

	apperrors "dining-concierge/internal/common/errors"
	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/common/metrics"
	"dining-concierge/internal/common/queue"
	"dining-concierge/internal/common/store"
	"dining-concierge/internal/models"
	validateslots "dining-concierge/internal/workers/dialog/validate-slots"
)

// SlotValidator is satisfied by validateslots.Validator.
type SlotValidator interface {
	Validate(slots models.Slots) validateslots.Outcome
}

type intentHandler func(ctx context.Context, event *models.HookEvent) *models.HookResponse

// Handler answers dialog engine code hook invocations. It keeps no state
// between turns.
type Handler struct {
	config    *Config
	validator SlotValidator
	history   store.HistoryStore
	queue     queue.Publisher
	logger    logger.Logger
	intents   map[models.IntentName]intentHandler
}

func NewHandler(config *Config, validator SlotValidator, history store.HistoryStore, publisher queue.Publisher, log logger.Logger) *Handler {
	h := &Handler{
		config:    config,
		validator: validator,
		history:   history,
		queue:     publisher,
		logger:    log.WithFields(map[string]interface{}{"taskType": TaskType}),
	}
	h.intents = map[models.IntentName]intentHandler{
		models.IntentGreeting:          h.greeting,
		models.IntentThankYou:          h.thankYou,
		models.IntentDiningSuggestions: h.diningSuggestions,
		models.IntentRepeatSearch:      h.repeatSearch,
	}
	return h
}

// Handle dispatches one code hook event. The only error is an intent this
// bot does not handle, which is a configuration fault on the engine side.
func (h *Handler) Handle(ctx context.Context, event *models.HookEvent) (*models.HookResponse, error) {
	name, err := models.ParseIntentName(event.SessionState.Intent.Name)
	if err != nil {
		h.logger.Error("Unsupported intent", map[string]interface{}{
			"intent": event.SessionState.Intent.Name,
		})
		return nil, apperrors.NewIntentNotSupportedError(err)
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	resp := h.intents[name](ctx, event)

	metrics.DialogTurns.WithLabelValues(string(name), string(resp.ActionType())).Inc()
	h.logger.Debug("Dialog turn handled", map[string]interface{}{
		"intent":           name,
		"invocationSource": event.InvocationSource,
		"action":           resp.ActionType(),
	})
	return resp, nil
}

func (h *Handler) greeting(ctx context.Context, event *models.HookEvent) *models.HookResponse {
	email := event.Email()
	if email == "" {
		return closeIntent(event, MsgGreeting)
	}

	history, err := h.history.Get(ctx, email)
	switch {
	case err == nil && history.LastCuisine != "":
		return closeIntent(event, fmt.Sprintf(MsgWelcomeBackFmt, history.LastCuisine))
	case err != nil && !errors.Is(err, store.ErrNotFound):
		h.logger.Warn("History lookup failed, using generic greeting", map[string]interface{}{
			"error": apperrors.NewHistoryLookupError(err),
		})
	}
	return closeIntent(event, MsgGreeting)
}

func (h *Handler) thankYou(_ context.Context, event *models.HookEvent) *models.HookResponse {
	return closeIntent(event, MsgThankYou)
}

func (h *Handler) diningSuggestions(ctx context.Context, event *models.HookEvent) *models.HookResponse {
	switch event.InvocationSource {
	case models.InvocationDialogCodeHook:
		outcome := h.validator.Validate(event.Slots())
		if !outcome.Valid {
			h.logger.Info("Slot rejected", map[string]interface{}{
				"slot": outcome.ViolatedSlot,
			})
			return elicitSlot(event, outcome.ViolatedSlot, outcome.Message)
		}
		return delegate(event)

	case models.InvocationFulfillmentCodeHook:
		req, err := h.fulfillDiningSuggestions(ctx, event)
		if err != nil {
			h.logger.Error("Fulfillment failed", map[string]interface{}{"error": err})
			return closeIntent(event, MsgStartOver)
		}
		return closeIntent(event, fmt.Sprintf(MsgRequestReceivedFmt, req.Cuisine, req.Email))
	}

	return delegate(event)
}

// fulfillDiningSuggestions enqueues the request and then overwrites the
// user's history. A history failure after a successful enqueue still fails
// the turn; the queued request is delivered regardless.
func (h *Handler) fulfillDiningSuggestions(ctx context.Context, event *models.HookEvent) (*models.RecommendationRequest, error) {
	slots := event.Slots()

	email := slots.Interpreted(models.SlotEmail)
	if email == "" {
		email = event.Email()
	}

	req := &models.RecommendationRequest{
		Location:   slots.InterpretedOrUnknown(models.SlotLocation),
		Cuisine:    slots.InterpretedOrUnknown(models.SlotCuisine),
		DiningTime: slots.InterpretedOrUnknown(models.SlotDiningTime),
		DiningDate: slots.InterpretedOrUnknown(models.SlotDiningDate),
		PartySize:  models.ParsePartySize(slots.Interpreted(models.SlotNumberOfPeople)),
		Email:      models.OrUnknown(email),
	}
	if err := req.Enqueueable(); err != nil {
		return nil, apperrors.NewFulfillmentFailedError(err)
	}

	if err := h.enqueue(ctx, models.IntentDiningSuggestions, req); err != nil {
		return nil, err
	}

	err := h.history.Put(ctx, &models.UserHistory{
		Email:        req.Email,
		LastCuisine:  req.Cuisine,
		LastLocation: req.Location,
	})
	if err != nil {
		return nil, apperrors.NewHistoryUpsertError(err)
	}
	return req, nil
}

func (h *Handler) repeatSearch(ctx context.Context, event *models.HookEvent) *models.HookResponse {
	email := event.Email()
	if email == "" {
		return closeIntent(event, MsgNoPreviousSearch)
	}

	history, err := h.history.Get(ctx, email)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			h.logger.Error("History lookup failed", map[string]interface{}{
				"error": apperrors.NewHistoryLookupError(err),
			})
		}
		return closeIntent(event, MsgNoPreviousSearch)
	}

	if event.InvocationSource != models.InvocationFulfillmentCodeHook {
		return delegate(event)
	}

	slots := event.Slots()
	req := &models.RecommendationRequest{
		Location:   models.OrUnknown(history.LastLocation),
		Cuisine:    models.OrUnknown(history.LastCuisine),
		DiningTime: slots.InterpretedOrUnknown(models.SlotDiningTime),
		DiningDate: slots.InterpretedOrUnknown(models.SlotDiningDate),
		PartySize:  models.ParsePartySize(slots.Interpreted(models.SlotNumberOfPeople)),
		Email:      email,
	}
	if err := req.Enqueueable(); err != nil {
		h.logger.Error("Stored history is incomplete", map[string]interface{}{
			"error": apperrors.NewFulfillmentFailedError(err),
		})
		return closeIntent(event, MsgStartOver)
	}

	if err := h.enqueue(ctx, models.IntentRepeatSearch, req); err != nil {
		h.logger.Error("Repeat search failed", map[string]interface{}{"error": err})
		return closeIntent(event, MsgStartOver)
	}

	return closeIntent(event, fmt.Sprintf(MsgRepeatRequestFmt, req.Cuisine, req.Location, req.PartySize, req.Email))
}

func (h *Handler) enqueue(ctx context.Context, intent models.IntentName, req *models.RecommendationRequest) error {
	id, err := queue.SendRequest(ctx, h.queue, req)
	if err != nil {
		return apperrors.NewQueueSendError(err)
	}

	metrics.RequestsEnqueued.WithLabelValues(string(intent)).Inc()
	h.logger.Info("Request enqueued", map[string]interface{}{
		"messageId": id,
		"intent":    intent,
		"cuisine":   req.Cuisine,
	})
	return nil
}
