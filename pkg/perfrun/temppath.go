package perfrun

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"
)

// maxPathAttempts bounds how many candidate capture paths are tried before
// giving up.
const maxPathAttempts = 10

// selectArtifactPath picks a capture file path under dir that does not exist
// yet. Candidates are named from the pid, the current time and a
// pseudo-random value so concurrent invocations on the same host do not
// collide. The random source is local to this call; the telemetry agent's
// harvest goroutine may be using the global one.
func selectArtifactPath(ctx context.Context, dir string, exists func(string) bool) (string, error) {
	pid := os.Getpid()
	now := time.Now().Unix()
	rng := rand.New(rand.NewSource(int64(17*pid) + now))

	for i := 0; i < maxPathAttempts; i++ {
		if ctx.Err() != nil {
			return "", ErrInterrupted
		}
		candidate := filepath.Join(dir, fmt.Sprintf("perf_%d_%d_%d.data", pid, now, rng.Int63()))
		if !exists(candidate) {
			return candidate, nil
		}
	}

	return "", ErrNoTempPath
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
