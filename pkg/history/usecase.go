package history

import (
	"context"

	"github.com/google/uuid"
)

const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// UseCase is the read side exposed over HTTP.
type UseCase interface {
	Get(ctx context.Context, id uuid.UUID) (Record, error)
	List(ctx context.Context, limit, offset int) ([]Record, error)
}

type service struct {
	repo Repository
}

func NewService(repo Repository) UseCase {
	return &service{repo: repo}
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (Record, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) List(ctx context.Context, limit, offset int) ([]Record, error) {
	if limit <= 0 || limit > MaxLimit {
		limit = DefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	items, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []Record{}
	}
	return items, nil
}
