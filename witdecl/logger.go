package witdecl

import (
	"sync"

	"go.uber.org/zap"
)

var (
	logger     *zap.Logger
	loggerOnce sync.Once
)

// Logger returns the witdecl package's logger instance.
// It uses a no-op logger by default.
func Logger() *zap.Logger {
	loggerOnce.Do(func() {
		if logger == nil {
			logger = zap.NewNop()
		}
	})
	return logger
}

// SetLogger configures the witdecl package's logger.
// This must be called before any conversion.
func SetLogger(l *zap.Logger) {
	logger = l
}

// debugf logs at debug level through the configured logger.
func debugf(format string, args ...any) {
	Logger().Sugar().Debugf(format, args...)
}
