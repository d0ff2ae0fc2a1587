package relay_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/perfship/perfship/pkg/perfrun"
	"github.com/perfship/perfship/pkg/relay"
	"github.com/perfship/perfship/pkg/report"
	"github.com/perfship/perfship/pkg/telemetry"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakePerf writes an executable standing in for perf in both modes: record
// creates the --output= file and report prints a fixed attribution table.
func fakePerf(t *testing.T) string {
	t.Helper()

	script := `#!/bin/sh
mode=$1
shift
case "$mode" in
record)
	for a in "$@"; do
		case "$a" in
		--output=*) : > "${a#--output=}" ;;
		esac
	done
	;;
report)
	cat <<'EOF'
# Samples: 4  of event 'cycles'
    75.00%  prog  libc.so  [.] busy_loop
    25.00%  prog  prog     [.] main
EOF
	;;
esac
`
	path := filepath.Join(t.TempDir(), "perf")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func newRelay(t *testing.T, rec *telemetry.Recorder, out io.Writer) *relay.Relay {
	t.Helper()

	perf := fakePerf(t)
	return &relay.Relay{
		Session:  rec,
		Runner:   &perfrun.Runner{Perf: perf, TempDir: t.TempDir(), Logger: quietLogger()},
		Uploader: &report.Uploader{Perf: perf, Logger: quietLogger()},
		Logger:   quietLogger(),
		Out:      out,
	}
}

func TestRelayRun(t *testing.T) {
	t.Parallel()

	rec := &telemetry.Recorder{}
	var out bytes.Buffer
	r := newRelay(t, rec, &out)

	require.NoError(t, r.Run(context.Background(), []string{"-g", "true"}))

	require.Len(t, rec.Transactions, 1)
	txn := rec.Transactions[0]

	assert.Equal(t, "Linux Perf Counters", txn.Name)
	assert.Equal(t, "BackendTrans/Perf/counters", txn.Category)
	assert.True(t, txn.Ended)
	assert.Contains(t, txn.Attributes, "ct_tx_start_time")

	// Both symbols were attributed a share of a positive duration.
	assert.Contains(t, txn.Attributes, "Custom/ct_busy_loop@libc.so")
	assert.Contains(t, txn.Attributes, "Custom/ct_main@prog")

	// One segment per phase, both closed.
	require.Len(t, txn.Segments, 2)
	assert.Equal(t, "perf record", txn.Segments[0].Name)
	assert.Equal(t, "perf report", txn.Segments[1].Name)
	assert.True(t, txn.Segments[0].Ended)
	assert.True(t, txn.Segments[1].Ended)

	assert.Empty(t, txn.Errors)
	assert.Contains(t, out.String(), "busy_loop")
}

func TestRelayRunCleansUpArtifact(t *testing.T) {
	t.Parallel()

	rec := &telemetry.Recorder{}
	tempDir := t.TempDir()
	perf := fakePerf(t)
	r := &relay.Relay{
		Session:  rec,
		Runner:   &perfrun.Runner{Perf: perf, TempDir: tempDir, Logger: quietLogger()},
		Uploader: &report.Uploader{Perf: perf, Logger: quietLogger()},
		Logger:   quietLogger(),
	}

	require.NoError(t, r.Run(context.Background(), []string{"true"}))

	entries, err := os.ReadDir(tempDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "capture artifact should have been removed")
}

func TestRelayRunInterruptedBeforeSpawn(t *testing.T) {
	t.Parallel()

	rec := &telemetry.Recorder{}
	r := newRelay(t, rec, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, r.Run(ctx, []string{"true"}))

	require.Len(t, rec.Transactions, 1)
	txn := rec.Transactions[0]

	// Execution was skipped entirely, but the transaction still ended and
	// the record segment was still closed.
	assert.True(t, txn.Ended)
	require.Len(t, txn.Segments, 1)
	assert.Equal(t, "perf record", txn.Segments[0].Name)
	assert.True(t, txn.Segments[0].Ended)

	for key := range txn.Attributes {
		assert.NotContains(t, key, "Custom/ct_")
	}
}

func TestRelayRunSpawnFailureNoticed(t *testing.T) {
	t.Parallel()

	rec := &telemetry.Recorder{}
	r := &relay.Relay{
		Session:  rec,
		Runner:   &perfrun.Runner{Perf: filepath.Join(t.TempDir(), "no-such-perf"), Logger: quietLogger()},
		Uploader: &report.Uploader{Logger: quietLogger()},
		Logger:   quietLogger(),
	}

	require.NoError(t, r.Run(context.Background(), []string{"true"}))

	txn := rec.Transactions[0]
	assert.True(t, txn.Ended)
	require.Len(t, txn.Errors, 1)
	assert.Equal(t, "spawn", txn.Errors[0].Category)
}

func TestRelayRunSessionSetupFailureAborts(t *testing.T) {
	t.Parallel()

	rec := &telemetry.Recorder{StartErr: errors.New("no backend")}
	r := newRelay(t, rec, io.Discard)

	err := r.Run(context.Background(), []string{"true"})
	assert.Error(t, err)
	assert.Empty(t, rec.Transactions)
}

func TestRelayRunSanitizesOutputOption(t *testing.T) {
	t.Parallel()

	rec := &telemetry.Recorder{}
	tempDir := t.TempDir()
	perf := fakePerf(t)
	r := &relay.Relay{
		Session:  rec,
		Runner:   &perfrun.Runner{Perf: perf, TempDir: tempDir, Logger: quietLogger()},
		Uploader: &report.Uploader{Perf: perf, Logger: quietLogger()},
		Logger:   quietLogger(),
	}

	hijack := filepath.Join(t.TempDir(), "hijacked.data")
	require.NoError(t, r.Run(context.Background(), []string{"--output=" + hijack, "true"}))

	// The caller-supplied output path was stripped; the runner's own
	// artifact path won and has since been cleaned up.
	_, err := os.Stat(hijack)
	assert.True(t, os.IsNotExist(err))
	assert.Contains(t, rec.Transactions[0].Attributes, "Custom/ct_busy_loop@libc.so")
}
