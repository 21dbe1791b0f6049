// internal/workers/recommendation/send-recommendations/poller.go
package sendrecommendations

import (
	"context"
	"time"
)

// Run drains the queue once immediately and then every PollInterval until
// ctx is cancelled. Receive errors are logged and retried on the next tick.
func (h *Handler) Run(ctx context.Context) error {
	interval := h.config.PollInterval
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.logger.Info("Recommendation worker started", map[string]interface{}{
		"pollInterval": interval.String(),
		"batchSize":    h.config.BatchSize,
		"concurrency":  h.config.Concurrency,
	})

	for {
		h.poll(ctx)

		select {
		case <-ctx.Done():
			h.logger.Info("Recommendation worker stopped", nil)
			return nil
		case <-ticker.C:
		}
	}
}

func (h *Handler) poll(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	result, err := h.Drain(ctx)
	if err != nil {
		if ctx.Err() == nil {
			h.logger.Error("Queue receive failed", map[string]interface{}{"error": err})
		}
		return
	}
	if len(result.Failures) > 0 {
		h.logger.Warn("Messages left for redelivery", map[string]interface{}{
			"failed": result.FailedIDs(),
		})
	}
}
