// Package report parses "perf report" output and attributes each symbol's
// share of the profiled run to the telemetry transaction.
package report

import (
	"fmt"
	"strconv"
	"strings"
)

// maxAttributeLen is the longest attribute name the backend accepts.
const maxAttributeLen = 255

// attributePrefix namespaces attribute names so a symbol cannot collide with
// a query-language reserved word on the backend.
const attributePrefix = "Custom/ct_"

// Sample is one attributed row of perf report output.
type Sample struct {
	// Percent is the symbol's share of samples, 0-100.
	Percent float64

	// Module is the binary object owning the symbol.
	Module string

	// Symbol is the symbolized function name.
	Symbol string

	// Seconds is the absolute duration attributed to the symbol:
	// Percent/100 of the profiled run.
	Seconds float64
}

// Key returns the attribute name for the sample, bounded to the backend's
// maximum identifier length.
func (s Sample) Key() string {
	key := attributePrefix + s.Symbol + "@" + s.Module
	if len(key) > maxAttributeLen {
		key = key[:maxAttributeLen]
	}
	return key
}

// Value returns the attributed duration formatted to six decimals.
func (s Sample) Value() string {
	return fmt.Sprintf("%.6f", s.Seconds)
}

// parseLine extracts (percent, module, symbol) from one line of perf report
// output. Blank lines, comment lines and anything that does not validate as
// a data row yield ok == false.
//
// A data row looks like:
//
//	16.67%  prog  libc-2.17.so  [.] __fxstat64
func parseLine(line string) (Sample, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return Sample{}, false
	}

	fields := strings.Fields(trimmed)
	if len(fields) < 5 {
		return Sample{}, false
	}

	pctText, found := strings.CutSuffix(fields[0], "%")
	if !found {
		return Sample{}, false
	}
	pct, err := strconv.ParseFloat(pctText, 64)
	if err != nil || pct < 0 || pct > 100 {
		return Sample{}, false
	}

	return Sample{
		Percent: pct,
		Module:  fields[2],
		Symbol:  fields[4],
	}, true
}
