package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/deckmend/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/deckmend/internal/core/services"
	"github.com/custodia-labs/deckmend/internal/ooxml"
	"github.com/custodia-labs/deckmend/internal/ooxml/ooxmltest"
)

// testServices wires real services over in-memory stores.
type testServices struct {
	settings *services.SettingsService
	reports  *memory.ReportStore
}

func setupTestServices(t *testing.T) testServices {
	t.Helper()
	codec := ooxml.NewCodec()
	settings := services.NewSettingsService(memory.NewConfigStore())
	reports := memory.NewReportStore()

	SetServices(Services{
		Repair:   services.NewRepairService(codec, settings, reports),
		Quality:  services.NewQualityService(codec),
		Reports:  services.NewReportService(reports),
		Settings: settings,
	})
	t.Cleanup(func() { SetServices(Services{}) })

	return testServices{settings: settings, reports: reports}
}

// result is the captured output of one command run.
type result struct {
	stdout string
	stderr string
	err    error
}

// executeCommand runs rootCmd with args and stdin, resetting flag state
// left behind by earlier runs.
func executeCommand(t *testing.T, stdin io.Reader, args ...string) result {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetIn(stdin)
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	}()

	err := rootCmd.ExecuteContext(context.Background())
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func brokenDeck(t *testing.T) []byte {
	t.Helper()
	return ooxmltest.NewDeck(2).
		AbsoluteTargets(ooxmltest.PresentationRelsPath).
		SetSlide(1, ooxmltest.Shapes("1", "2", "2")...).
		DropOverride(ooxmltest.SlidePath(2)).
		Bytes(t)
}

func cleanDeck(t *testing.T) []byte {
	t.Helper()
	return ooxmltest.NewDeck(1).Bytes(t)
}

func requireNoError(t *testing.T, r result) {
	t.Helper()
	require.NoError(t, r.err, "stdout: %s\nstderr: %s", r.stdout, r.stderr)
}

// syncBuffer is a bytes.Buffer safe for a command writing in one goroutine
// while the test reads in another.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) Contains(s string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return strings.Contains(b.buf.String(), s)
}
