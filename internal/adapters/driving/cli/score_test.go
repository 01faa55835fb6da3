package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deckmend/internal/core/domain"
)

func TestScoreCmd_CleanDeck(t *testing.T) {
	setupTestServices(t)
	path := filepath.Join(t.TempDir(), "deck.pptx")
	require.NoError(t, os.WriteFile(path, cleanDeck(t), 0o644))

	r := executeCommand(t, nil, "score", path)

	requireNoError(t, r)
	assert.Contains(t, r.stdout, "100/100")
	assert.Contains(t, r.stdout, domain.CategoryCriticalParts)
	assert.NotContains(t, r.stdout, "issues:")
}

func TestScoreCmd_BrokenDeckListsIssues(t *testing.T) {
	setupTestServices(t)
	path := filepath.Join(t.TempDir(), "deck.pptx")
	require.NoError(t, os.WriteFile(path, brokenDeck(t), 0o644))

	r := executeCommand(t, nil, "score", path)

	requireNoError(t, r)
	assert.Contains(t, r.stdout, "issues:")
	assert.Contains(t, r.stdout, "Absolute relationship target")
}

func TestScoreCmd_StdinJSON(t *testing.T) {
	setupTestServices(t)

	r := executeCommand(t, bytes.NewReader([]byte("garbage")), "score", "-f", "json", "-")

	requireNoError(t, r)
	var results []scoredPackage
	require.NoError(t, json.Unmarshal([]byte(r.stdout), &results))
	require.Len(t, results, 1)
	assert.Equal(t, "<stdin>", results[0].Path)
	assert.Equal(t, 0, results[0].Score.Score)
	assert.Equal(t, []string{domain.QualityIssueInvalidBuffer}, results[0].Score.Issues)
}

func TestScoreCmd_MinThreshold(t *testing.T) {
	setupTestServices(t)
	dir := t.TempDir()
	clean := filepath.Join(dir, "clean.pptx")
	broken := filepath.Join(dir, "broken.pptx")
	require.NoError(t, os.WriteFile(clean, cleanDeck(t), 0o644))
	require.NoError(t, os.WriteFile(broken, brokenDeck(t), 0o644))

	r := executeCommand(t, nil, "score", "--min", "100", clean, broken)

	require.Error(t, r.err)
	assert.Equal(t, "1 of 2 packages scored below 100", r.err.Error())

	r = executeCommand(t, nil, "score", "--min", "100", clean)
	requireNoError(t, r)
}

func TestScoreCmd_MissingFile(t *testing.T) {
	setupTestServices(t)

	r := executeCommand(t, nil, "score", filepath.Join(t.TempDir(), "missing.pptx"))

	require.Error(t, r.err)
	assert.ErrorIs(t, r.err, os.ErrNotExist)
}

func TestScoreCmd_NoServices(t *testing.T) {
	SetServices(Services{})

	r := executeCommand(t, nil, "score", "deck.pptx")

	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "quality service not configured")
}
