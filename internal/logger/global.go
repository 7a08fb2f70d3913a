// global.go
package logger

import "sync"

var (
	globalMu     sync.RWMutex
	globalLogger Logger
)

// SetGlobal installs the process-wide logger. Packages that are not handed a
// logger explicitly fall back to Global().Module(name).
func SetGlobal(l Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = l
}

// Global returns the process-wide logger, or a discard logger before
// SetGlobal has been called.
func Global() Logger {
	globalMu.RLock()
	l := globalLogger
	globalMu.RUnlock()
	if l == nil {
		return NewDiscardLogger()
	}
	return l
}
