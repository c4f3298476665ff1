package runner

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Guard serialises mutations of the assignment set. At most one scheduling
// run (or workflow transition) may hold it; a second caller fails fast
// instead of queueing.
type Guard struct {
	mu     sync.Mutex
	logger *zap.Logger

	held   bool
	holder string
	since  time.Time
}

// NewGuard builds a guard. A nil logger is replaced with a no-op one.
func NewGuard(logger *zap.Logger) *Guard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Guard{logger: logger}
}

// TryAcquire attempts to take the guard for the named operation. It returns
// false immediately when another operation holds it.
func (g *Guard) TryAcquire(operation string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.held {
		g.logger.Warn("mutation guard busy",
			zap.String("requested_by", operation),
			zap.String("held_by", g.holder),
			zap.Duration("held_for", time.Since(g.since)),
		)
		return false
	}
	g.held = true
	g.holder = operation
	g.since = time.Now().UTC()
	g.logger.Debug("mutation guard acquired", zap.String("operation", operation))
	return true
}

// Release frees the guard. Releasing an unheld guard is a no-op.
func (g *Guard) Release() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.held {
		return
	}
	g.logger.Debug("mutation guard released",
		zap.String("operation", g.holder),
		zap.Duration("held_for", time.Since(g.since)),
	)
	g.held = false
	g.holder = ""
}

// Holder reports the operation currently holding the guard, if any.
func (g *Guard) Holder() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.holder, g.held
}
