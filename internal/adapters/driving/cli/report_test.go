package cli

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deckmend/internal/core/domain"
)

func seedReports(t *testing.T, svc testServices) {
	t.Helper()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"r-old", "r-new"} {
		require.NoError(t, svc.reports.Save(context.Background(), &domain.RepairReport{
			ID:        id,
			InputPath: id + ".pptx",
			Result:    domain.PipelineResult{Success: i == 1},
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}
}

func TestReportCmd_List(t *testing.T) {
	svc := setupTestServices(t)
	seedReports(t, svc)

	r := executeCommand(t, nil, "report", "list")

	requireNoError(t, r)
	assert.Less(t, strings.Index(r.stdout, "r-new"), strings.Index(r.stdout, "r-old"))
	assert.Contains(t, r.stdout, "r-old.pptx")
}

func TestReportCmd_ListLimitJSON(t *testing.T) {
	svc := setupTestServices(t)
	seedReports(t, svc)

	r := executeCommand(t, nil, "report", "list", "-n", "1", "--format", "json")

	requireNoError(t, r)
	var reports []domain.RepairReport
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &reports))
	require.Len(t, reports, 1)
	assert.Equal(t, "r-new", reports[0].ID)
}

func TestReportCmd_ListEmpty(t *testing.T) {
	setupTestServices(t)

	r := executeCommand(t, nil, "report", "list")

	requireNoError(t, r)
	assert.Contains(t, r.stdout, "No repair history.")
}

func TestReportCmd_ListNegativeLimit(t *testing.T) {
	setupTestServices(t)

	r := executeCommand(t, nil, "report", "list", "-n", "-1")

	assert.ErrorIs(t, r.err, domain.ErrInvalidInput)
}

func TestReportCmd_Show(t *testing.T) {
	svc := setupTestServices(t)
	seedReports(t, svc)

	r := executeCommand(t, nil, "report", "show", "r-old")

	requireNoError(t, r)
	assert.Contains(t, r.stdout, "r-old.pptx")
	assert.Contains(t, r.stdout, "failed")
}

func TestReportCmd_ShowMissing(t *testing.T) {
	setupTestServices(t)

	r := executeCommand(t, nil, "report", "show", "nope")

	assert.ErrorIs(t, r.err, domain.ErrNotFound)
}

func TestReportCmd_Delete(t *testing.T) {
	svc := setupTestServices(t)
	seedReports(t, svc)

	r := executeCommand(t, nil, "report", "delete", "r-old")

	requireNoError(t, r)
	assert.Contains(t, r.stdout, "Deleted report r-old")
	_, err := svc.reports.Get(context.Background(), "r-old")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	r = executeCommand(t, nil, "report", "delete", "r-old")
	assert.ErrorIs(t, r.err, domain.ErrNotFound)
}
