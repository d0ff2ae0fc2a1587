package telemetry

import (
	"fmt"
	"time"

	"github.com/newrelic/go-agent/v3/integrations/nrlogrus"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/sirupsen/logrus"
)

// connectTimeout bounds the wait for the agent's initial connection. The
// tool is short-lived, so the run proceeds even if the backend is slow; the
// final Shutdown still flushes whatever was buffered.
const connectTimeout = 5 * time.Second

// NewRelic is a Session backed by the New Relic Go agent.
type NewRelic struct {
	app    *newrelic.Application
	logger *logrus.Logger
}

// NewNewRelic creates a session for the given license key. The agent logs
// through the supplied logrus logger.
func NewNewRelic(licenseKey, appName string, logger *logrus.Logger) (*NewRelic, error) {
	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(appName),
		newrelic.ConfigLicense(licenseKey),
		nrlogrus.ConfigLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("creating telemetry application: %w", err)
	}

	if err := app.WaitForConnection(connectTimeout); err != nil {
		logger.WithError(err).Warn("Telemetry backend not connected yet, continuing")
	}

	return &NewRelic{app: app, logger: logger}, nil
}

// StartTransaction begins a background (non-web) transaction.
func (s *NewRelic) StartTransaction(name string) (Transaction, error) {
	txn := s.app.StartTransaction(name)
	if txn == nil {
		return nil, fmt.Errorf("telemetry transaction %q could not be started", name)
	}
	return &nrTransaction{txn: txn}, nil
}

// Shutdown flushes buffered telemetry data.
func (s *NewRelic) Shutdown(timeout time.Duration) {
	s.app.Shutdown(timeout)
}

type nrTransaction struct {
	txn *newrelic.Transaction
}

func (t *nrTransaction) SetCategory(category string) {
	// The Go agent has no transaction category call; record it as an
	// attribute under the same reserved-word-safe prefix as the rest.
	t.txn.AddAttribute("ct_category", category)
}

func (t *nrTransaction) AddAttribute(key, value string) {
	t.txn.AddAttribute(key, value)
}

func (t *nrTransaction) StartSegment(name string) Segment {
	return t.txn.StartSegment(name)
}

func (t *nrTransaction) NoticeError(category, message string) {
	t.txn.NoticeError(newrelic.Error{
		Message: message,
		Class:   category,
	})
}

func (t *nrTransaction) End() {
	t.txn.End()
}
