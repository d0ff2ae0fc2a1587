// Package interrupt turns SIGINT/SIGTERM into context cancellation.
//
// Cancellation is cooperative: the runner and uploader check the context at
// defined polling points rather than being killed mid-phase, so telemetry
// segments still get closed and the capture artifact still gets cleaned up.
package interrupt

import (
	"context"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// WithSignals returns a copy of parent that is cancelled on the first
// SIGINT or SIGTERM. A second signal is re-raised with the default
// disposition restored, so anything else watching for it (or the kernel)
// still observes it instead of the handler swallowing it.
//
// The returned stop function releases the signal watcher.
func WithSignals(parent context.Context, logger *logrus.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)

	ch := make(chan os.Signal, 2)
	signal.Notify(ch, unix.SIGINT, unix.SIGTERM)

	go func() {
		sig, ok := <-ch
		if !ok {
			return
		}
		logger.WithField("signal", sig).Warn("Interrupt requested, finishing up")
		cancel()

		sig, ok = <-ch
		if !ok {
			return
		}
		signal.Stop(ch)
		if s, isUnix := sig.(unix.Signal); isUnix {
			unix.Kill(unix.Getpid(), s)
		}
	}()

	stop := func() {
		signal.Stop(ch)
		close(ch)
		cancel()
	}
	return ctx, stop
}
