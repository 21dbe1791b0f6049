// internal/workers/recommendation/send-recommendations/models.go
package sendrecommendations

import (
	"errors"
	"fmt"
	"strings"
)

const TaskType = "send-recommendations"

// Message outcomes, used as metric labels.
const (
	OutcomeSent      = "sent"
	OutcomeDiscarded = "discarded"
	OutcomeFailed    = "failed"
)

// Notification kinds.
const (
	KindRecommendations = "recommendations"
	KindNoneFound       = "none_found"
)

// MessageFailure reports a message that was left on the queue for redelivery.
type MessageFailure struct {
	MessageID string
	Err       error
}

// BatchResult summarises one batch. Failures mirrors a batch-item-failures
// response: the ids the queue should redeliver.
type BatchResult struct {
	BatchID      string
	Received     int
	Acknowledged []string
	Discarded    []string
	Failures     []MessageFailure
}

// FailedIDs returns the ids of messages that were not acknowledged.
func (r *BatchResult) FailedIDs() []string {
	ids := make([]string, 0, len(r.Failures))
	for _, f := range r.Failures {
		ids = append(ids, f.MessageID)
	}
	return ids
}

// Err joins the per-message failures, nil when every message was handled.
func (r *BatchResult) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, fmt.Errorf("message %s: %w", f.MessageID, f.Err))
	}
	return fmt.Errorf("%d of %d messages failed (%s): %w",
		len(r.Failures), r.Received, strings.Join(r.FailedIDs(), ", "), errors.Join(errs...))
}

func (r *BatchResult) status() string {
	switch {
	case r.Received == 0:
		return "empty"
	case len(r.Failures) > 0:
		return "partial"
	default:
		return "ok"
	}
}
