package checkers

import (
	"context"
	"errors"
)

var ErrModelNotLoaded = errors.New("model not loaded")

// Availability is satisfied by advice.UseCase.
type Availability interface {
	Available() bool
}

// ModelChecker fails while the startup model load has not succeeded. The load is
// never retried, so a failing checker stays failing for the process lifetime.
type ModelChecker struct {
	src Availability
}

func NewModelChecker(src Availability) *ModelChecker {
	return &ModelChecker{src: src}
}

func (c *ModelChecker) Name() string { return "model" }

func (c *ModelChecker) Check(ctx context.Context) error {
	if !c.src.Available() {
		return ErrModelNotLoaded
	}
	return nil
}
