// Package perfrun runs a target program under "perf record" and owns the
// capture artifact the profiler writes.
package perfrun

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"
)

// Sentinel errors for the distinct ways a profiled run can fail before the
// target program ever produces an exit status.
var (
	// ErrNoTempPath means no free capture path was found within the
	// attempt bound.
	ErrNoTempPath = errors.New("no free capture file path")

	// ErrInterrupted means the run was cancelled at one of the polling
	// points, either before the profiler was spawned or while waiting
	// for it.
	ErrInterrupted = errors.New("interrupted by signal")

	// ErrSpawn means the profiler subprocess could not be started.
	ErrSpawn = errors.New("spawning perf record failed")
)

// Result describes one profiled run.
type Result struct {
	// ExitCode is the target program's exit status.
	ExitCode int

	// Artifact is the capture file "perf record" wrote. It is set as soon
	// as a path has been chosen, so callers can clean up even when the
	// run itself failed.
	Artifact string

	// Elapsed is the wall-clock duration of the profiled run, measured
	// around the blocking wait.
	Elapsed Elapsed
}

// Runner executes "perf record" against a target command line.
type Runner struct {
	// Perf is the profiler binary. Defaults to "perf" resolved via PATH.
	Perf string

	// TempDir is where capture artifacts are placed. Defaults to the
	// system temp directory.
	TempDir string

	Logger *logrus.Logger
}

func (r *Runner) perfBinary() string {
	if r.Perf != "" {
		return r.Perf
	}
	return "perf"
}

func (r *Runner) tempDir() string {
	if r.TempDir != "" {
		return r.TempDir
	}
	return os.TempDir()
}

// Run profiles the given command line, which must already be sanitized: any
// perf record options come first, then the target program and its arguments.
// The child inherits stdin, stdout and stderr so the target behaves as if it
// were run directly.
//
// A non-nil Result is returned whenever a capture path was chosen, even on
// error, so the caller can attempt artifact cleanup. A non-zero target exit
// status is a result, not an error.
func (r *Runner) Run(ctx context.Context, args []string) (*Result, error) {
	perf, err := exec.LookPath(r.perfBinary())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	artifact, err := selectArtifactPath(ctx, r.tempDir(), fileExists)
	if err != nil {
		return nil, err
	}
	res := &Result{Artifact: artifact}

	argv := make([]string, 0, len(args)+2)
	argv = append(argv, "record", "--output="+artifact)
	argv = append(argv, args...)

	if ctx.Err() != nil {
		return res, ErrInterrupted
	}

	cmd := exec.Command(perf, argv...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	r.Logger.WithFields(logrus.Fields{
		"artifact": artifact,
		"args":     args,
	}).Debug("Starting perf record")

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return res, fmt.Errorf("%w: %v", ErrSpawn, err)
	}

	// Deliberately no preemptive kill on cancellation: an interactive
	// interrupt reaches the whole foreground process group, so the child
	// sees it directly and the wait below returns on its own.
	waitErr := cmd.Wait()
	res.Elapsed = elapsedBetween(start, time.Now())

	if ctx.Err() != nil {
		return res, ErrInterrupted
	}

	if waitErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) {
			return res, fmt.Errorf("waiting for perf record: %w", waitErr)
		}
		res.ExitCode = exitErr.ExitCode()
	}

	r.Logger.WithFields(logrus.Fields{
		"exit_code": res.ExitCode,
		"seconds":   res.Elapsed.Seconds(),
	}).Debug("perf record finished")

	return res, nil
}
