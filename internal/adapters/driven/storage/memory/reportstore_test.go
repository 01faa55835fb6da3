package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deckmend/internal/core/domain"
)

func report(id string, at time.Time) *domain.RepairReport {
	return &domain.RepairReport{
		ID:        id,
		InputHash: "in-" + id,
		CreatedAt: at,
		Result:    domain.PipelineResult{Success: true, Output: []byte("bytes")},
	}
}

func TestReportStore_SaveAndGet(t *testing.T) {
	store := NewReportStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, report("r1", time.Now())))

	got, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "in-r1", got.InputHash)
	assert.True(t, got.Result.Success)
	assert.Nil(t, got.Result.Output, "repaired bytes are not kept")
}

func TestReportStore_SaveRejectsMissingID(t *testing.T) {
	store := NewReportStore()
	assert.ErrorIs(t, store.Save(context.Background(), &domain.RepairReport{}), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.Save(context.Background(), nil), domain.ErrInvalidInput)
}

func TestReportStore_GetMissing(t *testing.T) {
	_, err := NewReportStore().Get(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReportStore_ListNewestFirst(t *testing.T) {
	store := NewReportStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, report("old", base)))
	require.NoError(t, store.Save(ctx, report("new", base.Add(2*time.Hour))))
	require.NoError(t, store.Save(ctx, report("mid", base.Add(time.Hour))))

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{all[0].ID, all[1].ID, all[2].ID})

	limited, err := store.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "new", limited[0].ID)
}

func TestReportStore_Delete(t *testing.T) {
	store := NewReportStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, report("r1", time.Now())))

	require.NoError(t, store.Delete(ctx, "r1"))
	assert.ErrorIs(t, store.Delete(ctx, "r1"), domain.ErrNotFound)

	_, err := store.Get(ctx, "r1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
