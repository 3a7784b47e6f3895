// Package monitoring holds the diagnostic logger shared by the light-curve
// packages and command.
package monitoring

import (
	"log"
	"time"
)

// Logf is the package-level diagnostic logger. It defaults to log.Printf but may
// be replaced by SetLogger. Tests or production code can redirect or mute it.
var Logf func(format string, v ...interface{}) = log.Printf

// SetLogger replaces the package logger. Passing nil will set a no-op logger.
func SetLogger(f func(format string, v ...interface{})) {
	if f == nil {
		Logf = func(string, ...interface{}) {}
		return
	}
	Logf = f
}

// Timed logs how long an operation took once the returned func is called:
//
//	defer monitoring.Timed("synthesize %d samples", n)()
func Timed(format string, v ...interface{}) func() {
	start := time.Now()
	return func() {
		Logf(format+" in %s", append(v, time.Since(start).Round(time.Microsecond))...)
	}
}
