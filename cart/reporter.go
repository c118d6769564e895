package cart

import "go.uber.org/zap"

// Reporter receives storage failures the store recovers from on its own.
type Reporter interface {
	LoadFailed(key string, err error)
	PersistFailed(key string, err error)
}

// LogReporter writes failures to a zap logger.
type LogReporter struct {
	logger *zap.Logger
}

func NewLogReporter(logger *zap.Logger) *LogReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogReporter{logger: logger}
}

func (r *LogReporter) LoadFailed(key string, err error) {
	r.logger.Warn("discarding stored cart", zap.String("key", key), zap.Error(err))
}

func (r *LogReporter) PersistFailed(key string, err error) {
	r.logger.Error("failed to persist cart", zap.String("key", key), zap.Error(err))
}
