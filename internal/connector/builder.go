package connector

import "github.com/Haofei/volo-go/internal/rpcinfo"

// Builder assembles a Connector from a Plain base, optionally upgrading it
// to TLS. Once TLS has been explicitly disabled, calling WithTLS is a
// construction-time error rather than a silent no-op (spec section 4.2,
// "Builder invariants").
type Builder struct {
	cfg         rpcinfo.Config
	plain       *Plain
	current     Connector
	tlsDisabled bool
	err         error
}

// NewBuilder starts a Builder with a Plain connector as its base.
func NewBuilder(cfg rpcinfo.Config) *Builder {
	p := NewPlain(cfg)
	return &Builder{cfg: cfg, plain: p, current: p}
}

// DisableTLS marks this builder as never allowed to upgrade to TLS. Any
// later WithTLS call becomes a fatal construction error.
func (b *Builder) DisableTLS() *Builder {
	b.tlsDisabled = true
	return b
}

// WithTLS upgrades the current connector to TLS. Calling this after
// DisableTLS sets a sticky construction error and leaves the builder's
// connector unchanged.
func (b *Builder) WithTLS(tlsCfg TLSConfig) *Builder {
	if b.err != nil {
		return b
	}
	if b.tlsDisabled {
		b.err = Internal("tls requested on a connector built with DisableTLS")
		return b
	}
	b.current = NewTLS(b.plain, tlsCfg)
	return b
}

// Build returns the assembled Connector, or the first construction error
// encountered.
func (b *Builder) Build() (Connector, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.current, nil
}
