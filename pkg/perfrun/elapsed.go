package perfrun

import "time"

// Elapsed is a wall-clock duration split into whole seconds and a
// nanosecond remainder. The remainder is always in [0, 1e9).
type Elapsed struct {
	Sec  int64
	Nsec int64
}

// elapsedBetween computes end - start, borrowing a whole second when the
// nanosecond difference is negative.
func elapsedBetween(start, end time.Time) Elapsed {
	e := Elapsed{
		Sec:  end.Unix() - start.Unix(),
		Nsec: int64(end.Nanosecond()) - int64(start.Nanosecond()),
	}
	if e.Nsec < 0 {
		e.Sec--
		e.Nsec += int64(time.Second)
	}
	return e
}

// Seconds returns the duration as a floating-point number of seconds.
func (e Elapsed) Seconds() float64 {
	return float64(e.Sec) + float64(e.Nsec)/float64(time.Second)
}
