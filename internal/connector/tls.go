package connector

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"

	"go.uber.org/zap"

	"github.com/Haofei/volo-go/internal/logging"
	"github.com/Haofei/volo-go/internal/rpcinfo"
)

// TLSConfig configures the ALPN/cert validation behavior of a TLS
// connector. ALPN is derived from which HTTP versions are enabled, per
// spec section 4.2 ("h2" if HTTP/2 enabled, "http/1.1" if HTTP/1 enabled).
type TLSConfig struct {
	HTTP2Enabled bool
	HTTP1Enabled bool
	RootCAs      *x509.CertPool // nil uses the system pool
	Certificates []tls.Certificate
}

// TLS wraps a Plain connector, upgrading the dialed connection with a TLS
// handshake. The PeerInfo's TLSName is used for SNI and certificate
// validation (spec section 4.2, "TLS behavior").
type TLS struct {
	inner   *Plain
	alpn    []string
	rootCAs *x509.CertPool
	certs   []tls.Certificate
}

// NewTLS builds a TLS connector from an existing Plain connector and the
// ALPN/cert configuration.
func NewTLS(inner *Plain, cfg TLSConfig) *TLS {
	var alpn []string
	if cfg.HTTP2Enabled {
		alpn = append(alpn, "h2")
	}
	if cfg.HTTP1Enabled {
		alpn = append(alpn, "http/1.1")
	}
	return &TLS{inner: inner, alpn: alpn, rootCAs: cfg.RootCAs, certs: cfg.Certificates}
}

// Call performs the inner plain connect, then a TLS handshake using
// peer.TLSName for SNI and certificate validation.
func (t *TLS) Call(ctx context.Context, peer rpcinfo.PeerInfo) (net.Conn, error) {
	raw, err := t.inner.Call(ctx, withHTTPScheme(peer))
	if err != nil {
		return nil, err
	}

	tlsCfg := &tls.Config{
		ServerName:   peer.TLSName,
		NextProtos:   t.alpn,
		RootCAs:      t.rootCAs,
		Certificates: t.certs,
	}

	tlsConn := tls.Client(raw, tlsCfg)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		raw.Close()
		logging.ForCall("", "").Warn("tls handshake failed", logging.PeerField(peer.TLSName), zap.Error(err))
		return nil, Unavailable(err)
	}
	return tlsConn, nil
}

// withHTTPScheme rewrites a PeerInfo's scheme to "http" before handing it
// to the inner Plain connector: the "https" scheme is this TLS variant's
// own concern, not the Plain connector's scheme gate.
func withHTTPScheme(peer rpcinfo.PeerInfo) rpcinfo.PeerInfo {
	peer.Scheme = "http"
	return peer
}
