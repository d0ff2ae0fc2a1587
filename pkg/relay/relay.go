// Package relay orchestrates a single profiled run: sanitize the perf
// options, run the target under perf record, attribute the report to one
// telemetry transaction and clean up the capture artifact.
package relay

import (
	"context"
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/perfship/perfship/pkg/perfargs"
	"github.com/perfship/perfship/pkg/perfrun"
	"github.com/perfship/perfship/pkg/report"
	"github.com/perfship/perfship/pkg/telemetry"
)

const (
	transactionName     = "Linux Perf Counters"
	transactionCategory = "BackendTrans/Perf/counters"

	recordSegment = "perf record"
	reportSegment = "perf report"
)

// Relay wires the runner and uploader to one telemetry session.
type Relay struct {
	Session  telemetry.Session
	Runner   *perfrun.Runner
	Uploader *report.Uploader
	Logger   *logrus.Logger

	// Out receives the local hot-symbol summary after a successful run.
	Out io.Writer
}

// Run profiles args (perf options, then the target command line) under one
// telemetry transaction. Every failure past transaction setup is reported
// and absorbed; only a failed StartTransaction aborts, and even that is
// returned rather than exiting.
func (r *Relay) Run(ctx context.Context, args []string) error {
	r.Logger.Debug("Beginning telemetry transaction")
	txn, err := r.Session.StartTransaction(transactionName)
	if err != nil {
		r.Logger.WithError(err).Error("Could not begin telemetry transaction, aborting")
		return err
	}

	txn.SetCategory(transactionCategory)
	txn.AddAttribute("ct_tx_start_time", strconv.FormatInt(time.Now().Unix(), 10))

	sanitized := perfargs.Sanitize(args, r.Logger)

	var res *perfrun.Result
	var runErr error

	seg := txn.StartSegment(recordSegment)
	if ctx.Err() == nil {
		res, runErr = r.Runner.Run(ctx, sanitized)
	}
	// Close the segment before honoring an interrupt.
	seg.End()

	switch {
	case ctx.Err() != nil:
		// Skip the report phase; cleanup below still runs.
	case runErr != nil:
		r.noticeRunError(txn, runErr)
	case res.ExitCode >= 0:
		repSeg := txn.StartSegment(reportSegment)
		samples, upErr := r.Uploader.Upload(ctx, txn, res.Artifact, res.Elapsed)
		repSeg.End()
		if upErr == nil && r.Out != nil {
			report.RenderSummary(r.Out, samples)
		}
	}

	if res != nil && res.Artifact != "" {
		if err := perfrun.RemoveArtifact(res.Artifact, time.Now()); err != nil {
			r.Logger.WithError(err).Error("Could not remove capture artifact")
			txn.NoticeError("unlink_capture_artifact", err.Error())
		}
	}

	r.Logger.Debug("Ending telemetry transaction")
	txn.End()
	return nil
}

// noticeRunError maps a runner failure to a transaction error event.
func (r *Relay) noticeRunError(txn telemetry.Transaction, err error) {
	category := "perf_record"
	switch {
	case errors.Is(err, perfrun.ErrNoTempPath):
		category = "capture_path"
	case errors.Is(err, perfrun.ErrInterrupted):
		category = "interrupted"
	case errors.Is(err, perfrun.ErrSpawn):
		category = "spawn"
	}
	r.Logger.WithError(err).WithField("category", category).Error("Profiled run failed")
	txn.NoticeError(category, err.Error())
}
