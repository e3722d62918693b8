package rng

import "go.uber.org/zap"

// loggedSource wraps a Source and logs every draw at debug level. Wrapping
// the seeded source this way makes a battle's full roll stream visible when
// diagnosing a damage dispute.
type loggedSource struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedSource returns a Source that delegates to src and logs each draw
// to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedSource(src Source, logger *zap.Logger) Source {
	return &loggedSource{src: src, logger: logger}
}

// Intn draws from the wrapped source and logs the bound and value.
//
// Precondition: n > 0.
func (l *loggedSource) Intn(n int) int {
	val := l.src.Intn(n)
	l.logger.Debug("rng draw",
		zap.Int("bound", n),
		zap.Int("value", val),
	)
	return val
}
