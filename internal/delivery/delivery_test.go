package delivery

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimulatorRoll(t *testing.T) {
	online := NewSimulator(0, 0.1)

	online.WithRoll(func() float64 { return 0.05 })
	assert.ErrorIs(t, online.Attempt(context.Background(), true), ErrNetwork)

	online.WithRoll(func() float64 { return 0.95 })
	assert.NoError(t, online.Attempt(context.Background(), true))
}

func TestSimulatorOfflinePasses(t *testing.T) {
	s := NewSimulator(0, 1.0).WithRoll(func() float64 { return 0 })
	assert.NoError(t, s.Attempt(context.Background(), false))
}

func TestSimulatorHonorsCancellation(t *testing.T) {
	s := NewSimulator(time.Minute, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := s.Attempt(ctx, true)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
