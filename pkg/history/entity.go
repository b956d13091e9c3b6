package history

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("history record not found")

// Record is one successful advice exchange.
type Record struct {
	ID         uuid.UUID       `json:"id"`
	Query      string          `json:"query"`
	UserData   json.RawMessage `json:"userData,omitempty" swaggertype:"object"`
	Prompt     string          `json:"prompt"`
	Response   string          `json:"response"`
	Model      string          `json:"model"`
	DurationMs int64           `json:"durationMs"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// Recorder is the write side used by the advice service.
type Recorder interface {
	Create(ctx context.Context, r Record) error
}

// Repository persists advice history.
type Repository interface {
	Recorder
	GetByID(ctx context.Context, id uuid.UUID) (Record, error)
	List(ctx context.Context, limit, offset int) ([]Record, error)
	Ping(ctx context.Context) error
	Close() error
}
