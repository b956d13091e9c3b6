package sqlite

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/artem13815/finadvice/pkg/history"
)

func openTestRepo(t *testing.T) *HistoryRepository {
	t.Helper()
	repo, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestCreateAndGet(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()

	rec := history.Record{
		ID:         uuid.New(),
		Query:      "Should I buy gold?",
		UserData:   json.RawMessage(`{"savings":2000}`),
		Prompt:     "<|user|>\nShould I buy gold?",
		Response:   "Diversify.",
		Model:      "tinyllama",
		DurationMs: 1200,
		CreatedAt:  time.Now().UTC().Truncate(time.Millisecond),
	}
	require.NoError(t, repo.Create(ctx, rec))

	got, err := repo.GetByID(ctx, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.Query, got.Query)
	assert.JSONEq(t, `{"savings":2000}`, string(got.UserData))
	assert.Equal(t, rec.Response, got.Response)
	assert.Equal(t, int64(1200), got.DurationMs)
	assert.WithinDuration(t, rec.CreatedAt, got.CreatedAt, time.Millisecond)

	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, history.ErrNotFound)
}

func TestListNewestFirst(t *testing.T) {
	repo := openTestRepo(t)
	ctx := context.Background()
	base := time.Now().UTC()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Create(ctx, history.Record{
			Query:     []string{"a", "b", "c"}[i],
			Model:     "m",
			CreatedAt: base.Add(time.Duration(i) * time.Second),
		}))
	}

	items, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "c", items[0].Query)
	assert.Equal(t, "b", items[1].Query)
	assert.Nil(t, items[0].UserData)

	items, err = repo.List(ctx, 10, 2)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "a", items[0].Query)

	require.NoError(t, repo.Ping(ctx))
}
