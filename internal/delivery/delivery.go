// Package delivery isolates the delivery-attempt capability behind a port so
// the simulated roll can be swapped for a real transport or a deterministic
// double.
package delivery

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"
)

// ErrNetwork is the modeled failure of a delivery attempt.
var ErrNetwork = errors.New("network error")

// Port models a single delivery attempt for an outbound user message.
// A nil return means the message was delivered.
type Port interface {
	Attempt(ctx context.Context, online bool) error
}

// Simulator stands in for real delivery confirmation: it waits a fixed
// latency, then rolls for failure. The roll only applies while online;
// offline attempts pass unconditionally, which keeps the permissive
// offline-send behavior intact.
type Simulator struct {
	delay       time.Duration
	failureRate float64
	roll        func() float64
}

// NewSimulator returns a Simulator with the given latency and failure rate.
func NewSimulator(delay time.Duration, failureRate float64) *Simulator {
	return &Simulator{
		delay:       delay,
		failureRate: failureRate,
		roll:        rand.Float64,
	}
}

// WithRoll overrides the failure roll. Used by tests.
func (s *Simulator) WithRoll(roll func() float64) *Simulator {
	s.roll = roll
	return s
}

// Attempt implements Port.
func (s *Simulator) Attempt(ctx context.Context, online bool) error {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if !online {
		return nil
	}
	if s.roll() < s.failureRate {
		return ErrNetwork
	}
	return nil
}

// Fixed is a deterministic Port returning a preset outcome.
type Fixed struct {
	Err error
}

// Attempt implements Port.
func (f Fixed) Attempt(context.Context, bool) error {
	return f.Err
}
