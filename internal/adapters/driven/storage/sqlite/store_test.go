package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deckmend/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() {
		assert.NoError(t, store.Close())
	})
	return store
}

func testReport(id string, createdAt time.Time) *domain.RepairReport {
	passed := false
	return &domain.RepairReport{
		ID:         id,
		InputPath:  "decks/" + id + ".pptx",
		OutputPath: "decks/" + id + ".repaired.pptx",
		InputHash:  "aaaa",
		OutputHash: "bbbb",
		Result: domain.PipelineResult{
			Success:     false,
			FailedStage: "rel-references",
			Metrics: []domain.StageMetrics{{
				Stage:      "rel-references",
				InputHash:  "bbbb",
				OutputHash: "bbbb",
				Stats:      map[string]any{"danglingReferences": 1},
				DurationMs: 0.5,
				Passed:     &passed,
			}},
			TotalDurationMs: 0.5,
			Output:          []byte("zip"),
		},
		QualityBefore: domain.QualityScore{Score: 70, Issues: []string{"x"}, Breakdown: map[string]float64{"criticalParts": 25}},
		QualityAfter:  &domain.QualityScore{Score: 95, Issues: []string{}, Breakdown: map[string]float64{"criticalParts": 25}},
		CreatedAt:     createdAt,
	}
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, "history.db"), store.Path())
	_, err = os.Stat(store.Path())
	assert.NoError(t, err)
}

func TestNewStore_DefaultDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	store, err := NewStore("")
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(home, ".deckmend", "data", "history.db"), store.Path())
}

func TestNewStore_MigrationsRunOnce(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.ReportStore().Save(context.Background(), testReport("r1", time.Now())))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	var applied int
	require.NoError(t, second.db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&applied))
	assert.Equal(t, 1, applied)

	_, err = second.ReportStore().Get(context.Background(), "r1")
	assert.NoError(t, err, "data survives reopening")
}

func TestReportStore_SaveAndGet(t *testing.T) {
	store := setupTestStore(t).ReportStore()
	ctx := context.Background()
	at := time.Date(2026, 5, 4, 10, 30, 0, 0, time.UTC)
	want := testReport("r1", at)

	require.NoError(t, store.Save(ctx, want))

	got, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, want.InputPath, got.InputPath)
	assert.Equal(t, want.OutputPath, got.OutputPath)
	assert.Equal(t, want.InputHash, got.InputHash)
	assert.Equal(t, want.OutputHash, got.OutputHash)
	assert.True(t, at.Equal(got.CreatedAt))

	assert.False(t, got.Result.Success)
	assert.Equal(t, "rel-references", got.Result.FailedStage)
	require.Len(t, got.Result.Metrics, 1)
	require.NotNil(t, got.Result.Metrics[0].Passed)
	assert.False(t, *got.Result.Metrics[0].Passed)
	assert.Nil(t, got.Result.Output)

	assert.Equal(t, 70, got.QualityBefore.Score)
	require.NotNil(t, got.QualityAfter)
	assert.Equal(t, 95, got.QualityAfter.Score)
}

func TestReportStore_SaveUpdates(t *testing.T) {
	store := setupTestStore(t).ReportStore()
	ctx := context.Background()
	report := testReport("r1", time.Now())
	require.NoError(t, store.Save(ctx, report))

	report.Error = "stage content-types: boom"
	report.QualityAfter = nil
	require.NoError(t, store.Save(ctx, report))

	got, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "stage content-types: boom", got.Error)
	assert.Nil(t, got.QualityAfter)
}

func TestReportStore_SaveRejectsMissingID(t *testing.T) {
	store := setupTestStore(t).ReportStore()
	assert.ErrorIs(t, store.Save(context.Background(), &domain.RepairReport{}), domain.ErrInvalidInput)
}

func TestReportStore_GetNotFound(t *testing.T) {
	store := setupTestStore(t).ReportStore()

	_, err := store.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReportStore_ListNewestFirst(t *testing.T) {
	store := setupTestStore(t).ReportStore()
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, store.Save(ctx, testReport("old", base)))
	require.NoError(t, store.Save(ctx, testReport("new", base.Add(2*time.Hour))))
	require.NoError(t, store.Save(ctx, testReport("mid", base.Add(time.Hour))))

	all, err := store.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "new", all[0].ID)
	assert.Equal(t, "mid", all[1].ID)
	assert.Equal(t, "old", all[2].ID)

	limited, err := store.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, "new", limited[0].ID)
}

func TestReportStore_ListEmpty(t *testing.T) {
	store := setupTestStore(t).ReportStore()

	reports, err := store.List(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, reports)
	assert.Empty(t, reports)
}

func TestReportStore_Delete(t *testing.T) {
	store := setupTestStore(t).ReportStore()
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, testReport("r1", time.Now())))

	require.NoError(t, store.Delete(ctx, "r1"))
	assert.ErrorIs(t, store.Delete(ctx, "r1"), domain.ErrNotFound)

	_, err := store.Get(ctx, "r1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
