package scoped

import "time"

// QueryLogEvent describes one predicate query for logging.
type QueryLogEvent struct {
	Engine   string
	Expr     string
	Entries  int
	Matched  int
	Duration time.Duration
	Err      error
}

// QueryLogger records query events.
type QueryLogger interface {
	LogQuery(QueryLogEvent)
}

// QueryLoggerFunc adapts a function to QueryLogger.
type QueryLoggerFunc func(QueryLogEvent)

// LogQuery implements QueryLogger.
func (f QueryLoggerFunc) LogQuery(event QueryLogEvent) {
	if f != nil {
		f(event)
	}
}

type noopQueryLogger struct{}

func (noopQueryLogger) LogQuery(QueryLogEvent) {}

// WithQueryLogger attaches a query logger to the registry.
func WithQueryLogger(logger QueryLogger) Option {
	return func(cfg *registryConfig) {
		if logger == nil {
			cfg.logger = noopQueryLogger{}
			return
		}
		cfg.logger = logger
	}
}
