package rx

import (
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// logger traces discarded sends, discarded state transitions and retry
// attempts. It is a nop unless SetLogger installs something; the discard
// behaviors themselves stay silent no-ops either way.
var logger = atomic.NewPointer(zap.NewNop())

// SetLogger installs a logger for the package's debug traces. Passing nil
// restores the nop logger. Safe to call while subscriptions are live.
func SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	logger.Store(l)
}
