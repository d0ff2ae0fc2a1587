// Command perfship runs a target program under "perf record" and ships the
// per-symbol time attribution from "perf report" to New Relic as attributes
// of a single transaction.
package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/perfship/perfship/pkg/interrupt"
	"github.com/perfship/perfship/pkg/perfrun"
	"github.com/perfship/perfship/pkg/relay"
	"github.com/perfship/perfship/pkg/report"
	"github.com/perfship/perfship/pkg/telemetry"
)

const appName = "Linux Performance Counters to New Relic"

const shutdownTimeout = 10 * time.Second

// errUsage marks the one path that exits non-zero.
var errUsage = errors.New("usage")

var logger = logrus.New()

// rootCmd parses nothing itself: everything after the license key belongs to
// perf record or to the target program, so flag parsing is disabled and the
// raw argument vector is handed through.
var rootCmd = &cobra.Command{
	Use:   "perfship <license-key> [perf-record-options...] <program> [args...]",
	Short: "Record a program under perf and ship the report to New Relic",
	Long: `perfship runs <program> under "perf record", measures its wall-clock
duration, then parses "perf report" and attaches each symbol's share of that
duration to one New Relic transaction as a Custom/ct_<symbol>@<module>
attribute.

Options between the license key and <program> are passed to "perf record"
as-is, except output-path options (-o, --output=), which are removed so the
report step can find the capture file.`,
	DisableFlagParsing: true,
	SilenceUsage:       true,
	SilenceErrors:      true,
	RunE:               run,
}

func run(cmd *cobra.Command, args []string) error {
	if len(args) < 2 || args[0] == "-h" || args[0] == "--help" {
		_ = cmd.Usage()
		return errUsage
	}

	licenseKey, tail := args[0], args[1:]

	session, err := telemetry.NewNewRelic(licenseKey, appName, logger)
	if err != nil {
		// Setup failure: nothing else executes, but the process still
		// exits zero; the diagnostic on stderr is the whole story.
		logger.WithError(err).Error("Telemetry setup failed, aborting")
		return nil
	}
	defer session.Shutdown(shutdownTimeout)

	ctx, stop := interrupt.WithSignals(context.Background(), logger)
	defer stop()

	r := &relay.Relay{
		Session:  session,
		Runner:   &perfrun.Runner{Logger: logger},
		Uploader: &report.Uploader{Logger: logger},
		Logger:   logger,
		Out:      os.Stdout,
	}
	// A failed transaction setup is logged inside Run; the process still
	// exits zero.
	_ = r.Run(ctx, tail)
	return nil
}

func main() {
	logger.SetOutput(os.Stderr)
	if os.Getenv("PERFSHIP_DEBUG") != "" {
		logger.SetLevel(logrus.DebugLevel)
	}

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
