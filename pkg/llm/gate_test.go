package llm

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type slowGenerator struct {
	active  atomic.Int32
	maxSeen atomic.Int32
	release chan struct{}
}

func (s *slowGenerator) Model() string { return "slow" }

func (s *slowGenerator) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	for {
		m := s.maxSeen.Load()
		if n <= m || s.maxSeen.CompareAndSwap(m, n) {
			break
		}
	}
	<-s.release
	return prompt + "done", nil
}

func TestGateLimitsConcurrency(t *testing.T) {
	inner := &slowGenerator{release: make(chan struct{})}
	g := NewGate(inner, 2)

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := g.Generate(context.Background(), "x", Params{})
			assert.NoError(t, err)
			assert.Equal(t, "xdone", out)
		}()
	}

	require.Eventually(t, func() bool { return g.InFlight() == 2 }, time.Second, 5*time.Millisecond)
	close(inner.release)
	wg.Wait()

	assert.Equal(t, int32(2), inner.maxSeen.Load())
	assert.Equal(t, "slow", g.Model())
}

func TestGateCancelledWhileWaiting(t *testing.T) {
	inner := &slowGenerator{release: make(chan struct{})}
	g := NewGate(inner, 1)

	go func() { _, _ = g.Generate(context.Background(), "a", Params{}) }()
	require.Eventually(t, func() bool { return g.InFlight() == 1 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := g.Generate(ctx, "b", Params{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(inner.release)
}
