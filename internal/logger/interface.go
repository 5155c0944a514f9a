// Package logger provides structured logging for the library.
//
// The dataset builder and fetcher accept a Logger so callers choose between
// a silent run and progress reporting without any process-wide toggle.
package logger

// Logger provides structured logging with context
type Logger interface {
	Info(component, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
	Warning(component, message string, fields map[string]interface{})
	Debug(component, message string, fields map[string]interface{})
}

// Silent returns a Logger that discards everything. It is the default for
// library entry points when no logger is supplied.
func Silent() Logger {
	return silentLogger{}
}

type silentLogger struct{}

func (silentLogger) Info(string, string, map[string]interface{})    {}
func (silentLogger) Error(string, error, map[string]interface{})    {}
func (silentLogger) Warning(string, string, map[string]interface{}) {}
func (silentLogger) Debug(string, string, map[string]interface{})   {}
