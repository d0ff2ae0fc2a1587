// Package perfargs rewrites caller-supplied perf record options before they
// are forwarded to the profiler subprocess.
package perfargs

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// Sanitize returns a copy of args with perf's output-path options removed.
// The capture file location is chosen by the runner, so a caller-supplied
// "-o <path>", "-o<path>" or "--output=<path>" would silently redirect the
// data away from where the report step looks for it.
//
// Only the leading run of dash-prefixed tokens is treated as perf options.
// The first token that does not start with a dash is the target program;
// everything from there on is the target's own command line and passes
// through verbatim, dashes and all.
//
// No other perf option is sanitized. Options that change the report format
// can still corrupt downstream parsing.
func Sanitize(args []string, logger *logrus.Logger) []string {
	out := make([]string, 0, len(args))

	inPerfOpts := true
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case inPerfOpts && strings.HasPrefix(arg, "--output="):
			logger.WithField("option", arg).Warn("Ignoring perf output option")
		case inPerfOpts && strings.HasPrefix(arg, "-o"):
			logger.WithField("option", arg).Warn("Ignoring perf output option")
			if arg == "-o" && i+1 < len(args) {
				// Separate value token: "-o <path>".
				i++
			}
		default:
			out = append(out, arg)
			if !strings.HasPrefix(arg, "-") {
				inPerfOpts = false
			}
		}
	}

	return out
}
