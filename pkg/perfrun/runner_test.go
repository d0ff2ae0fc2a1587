package perfrun

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// fakePerf writes an executable standing in for perf. In record mode it
// creates the file named by --output= and exits with the given status.
func fakePerf(t *testing.T, exitCode int) string {
	t.Helper()

	script := fmt.Sprintf(`#!/bin/sh
for a in "$@"; do
	case "$a" in
	--output=*) : > "${a#--output=}" ;;
	esac
done
exit %d
`, exitCode)
	path := filepath.Join(t.TempDir(), "perf")
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestRunnerRun(t *testing.T) {
	t.Parallel()

	r := &Runner{
		Perf:    fakePerf(t, 0),
		TempDir: t.TempDir(),
		Logger:  quietLogger(),
	}

	res, err := r.Run(context.Background(), []string{"-g", "true"})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, 0, res.ExitCode)
	assert.FileExists(t, res.Artifact)
	assert.GreaterOrEqual(t, res.Elapsed.Seconds(), 0.0)
}

func TestRunnerRunPropagatesExitStatus(t *testing.T) {
	t.Parallel()

	r := &Runner{
		Perf:    fakePerf(t, 3),
		TempDir: t.TempDir(),
		Logger:  quietLogger(),
	}

	res, err := r.Run(context.Background(), []string{"false"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.ExitCode)
}

func TestRunnerRunSpawnFailure(t *testing.T) {
	t.Parallel()

	r := &Runner{
		Perf:    filepath.Join(t.TempDir(), "no-such-perf"),
		TempDir: t.TempDir(),
		Logger:  quietLogger(),
	}

	_, err := r.Run(context.Background(), []string{"true"})
	assert.ErrorIs(t, err, ErrSpawn)
}

func TestRunnerRunCancelledBeforeSpawn(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{
		Perf:    fakePerf(t, 0),
		TempDir: t.TempDir(),
		Logger:  quietLogger(),
	}

	res, err := r.Run(ctx, []string{"true"})
	assert.ErrorIs(t, err, ErrInterrupted)
	assert.Nil(t, res)
}
