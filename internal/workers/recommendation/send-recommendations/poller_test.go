package sendrecommendations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestRun_PollsUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := LoadConfig()
	cfg.PollInterval = 5 * time.Millisecond
	f := newFixture(t, cfg)
	f.addRestaurants("thai", "t1")
	f.consumer.pending = append(f.consumer.pending, message("m1", requestBody("thai", "a@x.com")))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.handler.Run(ctx) }()

	require.Eventually(t, func() bool { return f.consumer.receiveCount() >= 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancel")
	}

	assert.Equal(t, []string{"rh-m1"}, f.consumer.deletedHandles())
}

func TestRun_SurvivesReceiveErrors(t *testing.T) {
	defer goleak.VerifyNone(t)

	cfg := LoadConfig()
	cfg.PollInterval = 5 * time.Millisecond
	f := newFixture(t, cfg)
	f.consumer.receiveErr = errors.New("connection reset")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.handler.Run(ctx) }()

	require.Eventually(t, func() bool { return f.consumer.receiveCount() >= 2 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}
