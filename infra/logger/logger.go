package logger

import corelogger "github.com/ktakeda47/jikanwari/core/logger"

// Logger mirrors the core logging facade.
type Logger = corelogger.Logger

// NopLogger discards everything. Tests and silent runs use it.
type NopLogger struct{}

func (NopLogger) Debugf(string, ...any)         {}
func (NopLogger) Debugw(string, map[string]any) {}
func (NopLogger) Infof(string, ...any)          {}
func (NopLogger) Warnf(string, ...any)          {}
func (NopLogger) Errorf(string, ...any)         {}

// New returns the logger for a component. Output format follows the
// APP_ENV environment variable, verbosity follows JW_LOG_LEVEL.
func New(component string) Logger {
	return NewZerologLogger(component)
}
