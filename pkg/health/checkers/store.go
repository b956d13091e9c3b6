package checkers

import (
	"context"
	"time"
)

// Pinger is any store that can report connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreChecker pings the history store (postgres or sqlite).
type StoreChecker struct {
	name string
	db   Pinger
}

func NewStoreChecker(name string, db Pinger) *StoreChecker {
	return &StoreChecker{name: name, db: db}
}

func (c *StoreChecker) Name() string { return c.name }

func (c *StoreChecker) Check(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	return c.db.Ping(ctx)
}
