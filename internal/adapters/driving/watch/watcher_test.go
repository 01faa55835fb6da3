package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/custodia-labs/deckmend/internal/core/domain"
	"github.com/custodia-labs/deckmend/internal/core/services"
	"github.com/custodia-labs/deckmend/internal/ooxml"
	"github.com/custodia-labs/deckmend/internal/ooxml/ooxmltest"
)

type result struct {
	path   string
	report *domain.RepairReport
	err    error
}

func startWatcher(t *testing.T, dir string) (<-chan result, func()) {
	t.Helper()

	results := make(chan result, 8)
	w, err := New(services.NewRepairService(ooxml.NewCodec(), nil, nil), dir,
		WithDebounce(50*time.Millisecond),
		WithResultFunc(func(path string, report *domain.RepairReport, err error) {
			results <- result{path: path, report: report, err: err}
		}),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	return results, func() {
		cancel()
		assert.NoError(t, <-done)
	}
}

func TestWatcher_RepairsNewPackages(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	results, stop := startWatcher(t, dir)
	defer stop()

	deck := ooxmltest.NewDeck(1).SetSlide(1, ooxmltest.Shapes("1", "1")...).Bytes(t)
	path := filepath.Join(dir, "incoming.pptx")
	require.NoError(t, os.WriteFile(path, deck, 0o644))

	select {
	case r := <-results:
		require.NoError(t, r.err)
		assert.Equal(t, path, r.path)
		assert.True(t, r.report.Succeeded())
		assert.FileExists(t, filepath.Join(dir, "incoming.repaired.pptx"))
	case <-time.After(5 * time.Second):
		t.Fatal("no repair within 5s")
	}

	// The repaired output must not trigger another repair.
	select {
	case r := <-results:
		t.Fatalf("unexpected repair of %s", r.path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	results, stop := startWatcher(t, dir)
	defer stop()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.repaired.pptx"), []byte("x"), 0o644))

	select {
	case r := <-results:
		t.Fatalf("unexpected repair of %s", r.path)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestWatcher_Accepts(t *testing.T) {
	w, err := New(services.NewRepairService(ooxml.NewCodec(), nil, nil), t.TempDir())
	require.NoError(t, err)

	tests := []struct {
		path string
		want bool
	}{
		{"deck.pptx", true},
		{"DECK.PPTX", true},
		{"deck.repaired.pptx", false},
		{"deck.docx", false},
		{".deck.pptx", false},
		{"~$deck.pptx", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, w.Accepts(tt.path), tt.path)
	}
}

func TestNew_Validates(t *testing.T) {
	repair := services.NewRepairService(ooxml.NewCodec(), nil, nil)

	_, err := New(nil, t.TempDir())
	assert.Error(t, err)

	_, err = New(repair, filepath.Join(t.TempDir(), "missing"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	file := filepath.Join(t.TempDir(), "file.pptx")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))
	_, err = New(repair, file)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
