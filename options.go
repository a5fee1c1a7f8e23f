package pathstore

import (
	"log/slog"

	"github.com/hupe1980/pathstore/codec"
	"github.com/hupe1980/pathstore/persistence"
	"github.com/hupe1980/pathstore/resource"
)

// DefaultConcurrency bounds parallel transfers in Export and Import.
const DefaultConcurrency = 4

type options struct {
	logger      *Logger
	metrics     MetricsCollector
	rc          *resource.Controller
	rcConfig    resource.Config
	compression persistence.Compression
	ragged      bool
	codec       codec.Codec
	concurrency int
}

func defaultOptions() options {
	return options{
		logger:      NoopLogger(),
		metrics:     NoopMetricsCollector{},
		compression: persistence.CompressionNone,
		codec:       codec.Default,
		concurrency: DefaultConcurrency,
	}
}

// Option configures New.
type Option func(*options)

// WithLogger sets the logger. nil restores the no-op logger.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithLogLevel logs text to stderr at the given level.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector sets the metrics sink. nil disables metrics.
func WithMetricsCollector(m MetricsCollector) Option {
	return func(o *options) {
		if m == nil {
			m = NoopMetricsCollector{}
		}
		o.metrics = m
	}
}

// WithResourceController shares rc with other components. It takes
// precedence over WithMemoryLimit and WithIOLimit.
func WithResourceController(rc *resource.Controller) Option {
	return func(o *options) {
		o.rc = rc
	}
}

// WithMemoryLimit caps the bytes of sample storage the store may hold.
// Requests beyond it fail with ErrAllocationFailure.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.rcConfig.MemoryLimitBytes = bytes
	}
}

// WithIOLimit throttles file and blob store transfers to bytesPerSec.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.rcConfig.IOLimitBytesPerSec = bytesPerSec
	}
}

// WithCompression selects the body compression of serialized blobs.
// Deserialize accepts every compression regardless.
func WithCompression(c persistence.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

// WithRaggedAxes allows paths whose axes differ in length to be
// serialized and deserialized.
func WithRaggedAxes() Option {
	return func(o *options) {
		o.ragged = true
	}
}

// WithCodec sets the codec for new snapshot manifests. If nil is passed,
// codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithConcurrency bounds parallel transfers in Export and Import.
func WithConcurrency(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.concurrency = n
	}
}
