package telemetry

import "time"

// Recorder is an in-memory Session used by tests in place of a real backend.
type Recorder struct {
	Transactions []*RecordedTransaction

	// StartErr, when set, is returned from StartTransaction.
	StartErr error
}

// RecordedTransaction captures everything reported on one transaction.
type RecordedTransaction struct {
	Name       string
	Category   string
	Attributes map[string]string
	Segments   []*RecordedSegment
	Errors     []RecordedError
	Ended      bool
}

// RecordedSegment is one opened segment and whether it was closed.
type RecordedSegment struct {
	Name  string
	Ended bool
}

// RecordedError is one transaction-scoped error event.
type RecordedError struct {
	Category string
	Message  string
}

// StartTransaction records a new transaction.
func (r *Recorder) StartTransaction(name string) (Transaction, error) {
	if r.StartErr != nil {
		return nil, r.StartErr
	}
	txn := &RecordedTransaction{
		Name:       name,
		Attributes: make(map[string]string),
	}
	r.Transactions = append(r.Transactions, txn)
	return txn, nil
}

// Shutdown is a no-op.
func (r *Recorder) Shutdown(time.Duration) {}

func (t *RecordedTransaction) SetCategory(category string) { t.Category = category }

func (t *RecordedTransaction) AddAttribute(key, value string) { t.Attributes[key] = value }

func (t *RecordedTransaction) StartSegment(name string) Segment {
	seg := &RecordedSegment{Name: name}
	t.Segments = append(t.Segments, seg)
	return seg
}

func (t *RecordedTransaction) NoticeError(category, message string) {
	t.Errors = append(t.Errors, RecordedError{Category: category, Message: message})
}

func (t *RecordedTransaction) End() { t.Ended = true }

func (s *RecordedSegment) End() { s.Ended = true }
