package retrieval

import "log/slog"

// DefaultTopK is the number of passages returned when no other limit is set.
const DefaultTopK = 3

type options struct {
	topK   int
	logger *slog.Logger
}

func newOptions(opts []Option) options {
	o := options{topK: DefaultTopK, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures the retrievers of this package.
type Option func(*options)

// WithTopK sets the maximum number of passages returned.
// Values below 1 keep the default.
func WithTopK(k int) Option {
	return func(o *options) {
		if k > 0 {
			o.topK = k
		}
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}
