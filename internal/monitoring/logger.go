// Package monitoring provides the diagnostic logging hook and Prometheus
// metrics shared by the mission and avoidance components.
package monitoring

import "log"

// Logf is a diagnostic logger injected into components at construction.
// There is deliberately no package-level logger that callers mutate; each
// component owns the logger it was handed.
type Logf func(format string, v ...interface{})

// OrDefault returns f, or log.Printf when f is nil.
func OrDefault(f Logf) Logf {
	if f == nil {
		return log.Printf
	}
	return f
}

// Discard is a no-op logger for tests and callers that want silence.
func Discard(string, ...interface{}) {}
