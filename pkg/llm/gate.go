package llm

import (
	"context"
	"sync/atomic"

	"github.com/artem13815/finadvice/pkg/logging"
)

// Gate limits the number of generations in flight against one backend.
type Gate struct {
	next       TextGenerator
	sem        chan struct{}
	queued     atomic.Int64
	processing atomic.Int64
}

// NewGate wraps next so that at most size generations run at once.
func NewGate(next TextGenerator, size int) *Gate {
	if size <= 0 {
		size = 1
	}
	return &Gate{next: next, sem: make(chan struct{}, size)}
}

func (g *Gate) Model() string { return g.next.Model() }

// Generate waits for a free slot; a cancelled caller gives up its place in line.
func (g *Gate) Generate(ctx context.Context, prompt string, p Params) (string, error) {
	g.queued.Add(1)
	select {
	case g.sem <- struct{}{}:
		g.queued.Add(-1)
	case <-ctx.Done():
		g.queued.Add(-1)
		return "", ctx.Err()
	}
	g.processing.Add(1)
	defer func() {
		g.processing.Add(-1)
		<-g.sem
	}()

	logging.GetLogger().Debugf("Model: %s | Queued: %d | Processing: %d",
		g.next.Model(), g.queued.Load(), g.processing.Load())
	return g.next.Generate(ctx, prompt, p)
}

// InFlight reports the number of generations currently holding a slot.
func (g *Gate) InFlight() int64 { return g.processing.Load() }
