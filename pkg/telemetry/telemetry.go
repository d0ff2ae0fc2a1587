// Package telemetry abstracts the APM backend a profiled run reports to.
//
// All transaction-level calls are best-effort: implementations log failures
// to the standard error stream and carry on, so a flaky backend never stops
// a run.
package telemetry

import "time"

// Session starts transactions against the telemetry backend.
type Session interface {
	// StartTransaction begins one logical unit of telemetry work. Failure
	// here is the only telemetry error that aborts a run.
	StartTransaction(name string) (Transaction, error)

	// Shutdown flushes buffered data, waiting at most timeout.
	Shutdown(timeout time.Duration)
}

// Transaction is one logical unit of telemetry work corresponding to a
// single profiled run.
type Transaction interface {
	// SetCategory records the transaction's category.
	SetCategory(category string)

	// AddAttribute attaches a string-valued fact to the transaction.
	AddAttribute(key, value string)

	// StartSegment opens a named timed sub-interval of the transaction.
	StartSegment(name string) Segment

	// NoticeError reports a transaction-scoped error event.
	NoticeError(category, message string)

	// End finishes the transaction.
	End()
}

// Segment is a named timed sub-interval of a transaction.
type Segment interface {
	End()
}
