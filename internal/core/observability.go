package core

import (
	"context"
	"time"
)

// Logger is the structured logging surface used by core components.
// Arguments after msg are alternating keys and values.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// MetricsRecorder receives one observation per store or propagation operation.
type MetricsRecorder interface {
	Observe(ctx context.Context, operation string, success bool, duration time.Duration)
}

type noopMetrics struct{}

func (noopMetrics) Observe(context.Context, string, bool, time.Duration) {}

// Option configures a Service and the stores it builds.
type Option func(*options)

type options struct {
	logger       Logger
	metrics      MetricsRecorder
	seedDefaults bool
	now          func() time.Time
}

func defaultOptions() options {
	return options{
		logger:  noopLogger{},
		metrics: noopMetrics{},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder. A nil recorder is ignored.
func WithMetrics(metrics MetricsRecorder) Option {
	return func(o *options) {
		if metrics != nil {
			o.metrics = metrics
		}
	}
}

// WithSeedDefaults enables seeding the default parties and voters when
// their tables are empty. Ideologies are always seeded.
func WithSeedDefaults(enabled bool) Option {
	return func(o *options) {
		o.seedDefaults = enabled
	}
}

// observe records the outcome of an operation started at start.
func (o options) observe(ctx context.Context, operation string, start time.Time, err error) {
	o.metrics.Observe(ctx, operation, err == nil, o.now().Sub(start))
}
