package report

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/sirupsen/logrus"

	"github.com/perfship/perfship/pkg/perfrun"
	"github.com/perfship/perfship/pkg/telemetry"
)

// Sentinel errors for the two ways the report subprocess itself can fail.
// Both are also reported on the transaction as error events.
var (
	ErrReportStart = errors.New("starting perf report failed")
	ErrReportWait  = errors.New("perf report did not finish cleanly")
)

// Uploader runs "perf report" against a capture artifact and ships one
// attribute per hot symbol to the telemetry transaction.
type Uploader struct {
	// Perf is the profiler binary. Defaults to "perf" resolved via PATH.
	Perf string

	Logger *logrus.Logger
}

func (u *Uploader) perfBinary() string {
	if u.Perf != "" {
		return u.Perf
	}
	return "perf"
}

// Upload parses the report for the given capture artifact and adds one
// attribute per symbol whose attributed duration is non-zero at six-decimal
// precision. Malformed report lines are skipped, never fatal. The returned
// samples are the ones actually shipped, for local display.
func (u *Uploader) Upload(ctx context.Context, txn telemetry.Transaction, artifact string, total perfrun.Elapsed) ([]Sample, error) {
	cmd := exec.Command(u.perfBinary(), "report", "--stdio", "--input="+artifact)
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, u.notice(txn, ErrReportStart, err)
	}
	if err := cmd.Start(); err != nil {
		return nil, u.notice(txn, ErrReportStart, err)
	}

	totalSeconds := total.Seconds()
	u.Logger.WithField("seconds", fmt.Sprintf("%.6f", totalSeconds)).Debug("Total profiled duration")

	var shipped []Sample
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		if ctx.Err() != nil {
			break
		}

		sample, ok := parseLine(scanner.Text())
		if !ok {
			continue
		}
		sample.Seconds = (sample.Percent / 100) * totalSeconds

		if sample.Value() == "0.000000" {
			// Weightless symbol, nothing to attribute.
			continue
		}

		u.Logger.WithFields(logrus.Fields{
			"attribute": sample.Key(),
			"value":     sample.Value(),
		}).Debug("Adding symbol attribute")

		txn.AddAttribute(sample.Key(), sample.Value())
		shipped = append(shipped, sample)
	}

	if err := scanner.Err(); err != nil {
		_ = cmd.Wait()
		return shipped, u.notice(txn, ErrReportWait, err)
	}
	if err := cmd.Wait(); err != nil {
		return shipped, u.notice(txn, ErrReportWait, err)
	}

	return shipped, nil
}

// notice logs the failure, reports it on the transaction and wraps it in its
// sentinel class.
func (u *Uploader) notice(txn telemetry.Transaction, class error, err error) error {
	u.Logger.WithError(err).Error(class.Error())
	txn.NoticeError(class.Error(), err.Error())
	return fmt.Errorf("%w: %v", class, err)
}
