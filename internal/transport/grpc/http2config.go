package grpc

import "time"

// Http2Config carries the HTTP/2 tuning knobs spec.md section 6 exposes as
// configuration, mapped onto golang.org/x/net/http2.Transport fields where
// the library has an equivalent. Not every knob maps cleanly onto a
// client-side http2.Transport field — see the per-field comments below and
// DESIGN.md for the ones carried as documented no-ops.
type Http2Config struct {
	// InitialStreamWindowSize and InitialConnectionWindowSize tune HTTP/2
	// flow control. golang.org/x/net/http2.Transport does not expose a
	// client-side initial window size field (that knob exists only on the
	// server side, http2.Server.MaxUploadBufferPerConnection/PerStream);
	// these are carried as documented no-ops until the library grows one.
	InitialStreamWindowSize     uint32
	InitialConnectionWindowSize uint32

	// MaxFrameSize bounds the largest HTTP/2 frame this transport will
	// accept from the peer, applied to http2.Transport.MaxReadFrameSize.
	MaxFrameSize uint32

	// AdaptiveWindow has no equivalent in golang.org/x/net/http2.Transport
	// (the library doesn't implement BDP-based window auto-tuning on the
	// client); carried as a documented no-op.
	AdaptiveWindow bool

	// KeepAliveInterval and KeepAliveTimeout apply to http2.Transport's
	// ReadIdleTimeout/PingTimeout: ReadIdleTimeout is the idle period after
	// which a health-check PING is sent, and PingTimeout bounds how long
	// the transport waits for the PING ack before tearing the connection
	// down.
	KeepAliveInterval time.Duration
	KeepAliveTimeout  time.Duration
	// KeepAliveWhileIdle gates whether ReadIdleTimeout applies at all: when
	// false, KeepAliveInterval is not wired to the transport, matching
	// http2.Transport's own "zero ReadIdleTimeout disables health checks"
	// default.
	KeepAliveWhileIdle bool

	// MaxConcurrentResetStreams maps to
	// http2.Transport.StrictMaxConcurrentStreams: there's no direct
	// numeric knob on the client transport for the reset-stream count
	// itself, so a positive value here turns on strict enforcement of the
	// peer's advertised MAX_CONCURRENT_STREAMS instead, the closest
	// available bookkeeping lever.
	MaxConcurrentResetStreams int

	// MaxSendBufSize has no equivalent in golang.org/x/net/http2.Transport
	// (write buffering is internal to the library); carried as a
	// documented no-op.
	MaxSendBufSize int
}

// DefaultHttp2Config returns the zero-tuning default: no explicit frame
// size cap, no keepalive pings, no strict stream-count enforcement — the
// same defaults http2.Transport itself applies when its fields are left
// at the zero value.
func DefaultHttp2Config() Http2Config {
	return Http2Config{}
}
