package rpcinfo

import "time"

// CompressionName is a canonical lowercase compression algorithm token, the
// kind advertised in grpc-encoding / grpc-accept-encoding headers.
type CompressionName string

const (
	CompressionIdentity CompressionName = "identity"
	CompressionGzip     CompressionName = "gzip"
)

// Config is the closed enumeration of per-call tunables. Every field here
// corresponds to a row in spec section 4.4's option table; there is no
// open-ended property bag.
type Config struct {
	ConnectTimeout time.Duration
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	// Timeout is the end-to-end wall-clock limit for the whole call.
	Timeout time.Duration

	// SendCompressions is ordered; only the first entry is used, for the
	// outbound message (open question in spec section 9: first-wins
	// semantics are preserved, not a fallback chain).
	SendCompressions []CompressionName
	// AcceptCompressions is matched against the peer's grpc-encoding and
	// is the list advertised via grpc-accept-encoding.
	AcceptCompressions []CompressionName
}

// Clear resets the config to its defaults. Called when a context returns to
// its pool, per the "reusable" discipline in spec section 4.4.
func (c *Config) Clear() {
	*c = Config{}
}

// FirstSendCompression returns the preferred send compression, or identity
// if none was configured.
func (c *Config) FirstSendCompression() CompressionName {
	if len(c.SendCompressions) == 0 {
		return CompressionIdentity
	}
	return c.SendCompressions[0]
}

// Option configures a Config. Functional options are the Go-idiomatic
// analogue of the builder methods on the Rust Config type.
type Option func(*Config)

// WithConnectTimeout sets the max time to establish a TCP/TLS connection.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Config) { c.ConnectTimeout = d }
}

// WithReadTimeout sets the max idle time between reads.
func WithReadTimeout(d time.Duration) Option {
	return func(c *Config) { c.ReadTimeout = d }
}

// WithWriteTimeout sets the max time for a single write to drain.
func WithWriteTimeout(d time.Duration) Option {
	return func(c *Config) { c.WriteTimeout = d }
}

// WithTimeout sets the end-to-end call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) { c.Timeout = d }
}

// WithSendCompressions sets the ordered outbound compression preference.
func WithSendCompressions(names ...CompressionName) Option {
	return func(c *Config) { c.SendCompressions = append([]CompressionName(nil), names...) }
}

// WithAcceptCompressions sets the ordered accepted compression list.
func WithAcceptCompressions(names ...CompressionName) Option {
	return func(c *Config) { c.AcceptCompressions = append([]CompressionName(nil), names...) }
}

// NewConfig builds a Config from functional options, starting from defaults.
func NewConfig(opts ...Option) Config {
	var c Config
	for _, opt := range opts {
		opt(&c)
	}
	return c
}
