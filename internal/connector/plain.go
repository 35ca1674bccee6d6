package connector

import (
	"context"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/Haofei/volo-go/internal/logging"
	"github.com/Haofei/volo-go/internal/rpcinfo"
)

// Plain dials raw TCP or Unix sockets. It is the connector's starting
// variant; TLS wraps it rather than replacing it.
type Plain struct {
	dialer *net.Dialer
	cfg    rpcinfo.Config
}

// NewPlain builds a Plain connector honoring connect/read/write timeouts.
// The read/write timeouts aren't enforced by net.Dialer itself; they are
// applied as deadlines on the returned connection so that idle reads/slow
// writes surface as transport errors per spec section 4.4's option table.
func NewPlain(cfg rpcinfo.Config) *Plain {
	return &Plain{
		dialer: &net.Dialer{Timeout: cfg.ConnectTimeout},
		cfg:    cfg,
	}
}

// Call dials peer.Address, rejecting any non-"http" scheme with a
// BadScheme error (spec section 4.2, "Plain behavior").
func (p *Plain) Call(ctx context.Context, peer rpcinfo.PeerInfo) (net.Conn, error) {
	if peer.Scheme != "http" {
		return nil, BadScheme(peer.Scheme)
	}

	network, address := dialTarget(peer.Address)
	conn, err := p.dialer.DialContext(ctx, network, address)
	if err != nil {
		logging.Global().Warn("plain connect failed",
			zap.String("network", network), zap.String("address", address), zap.Error(err))
		return nil, Unavailable(err)
	}
	return applyIODeadlines(conn, p.cfg), nil
}

func dialTarget(addr rpcinfo.Address) (network, address string) {
	if addr.Network == rpcinfo.NetworkUnix {
		return "unix", addr.Path
	}
	return "tcp", addr.IP
}

// applyIODeadlines wraps conn so that every Read/Write refreshes a deadline
// derived from cfg, giving the read/write timeout knobs teeth beyond the
// initial dial.
func applyIODeadlines(conn net.Conn, cfg rpcinfo.Config) net.Conn {
	if cfg.ReadTimeout <= 0 && cfg.WriteTimeout <= 0 {
		return conn
	}
	return &deadlineConn{Conn: conn, readTimeout: cfg.ReadTimeout, writeTimeout: cfg.WriteTimeout}
}

type deadlineConn struct {
	net.Conn
	readTimeout, writeTimeout time.Duration
}

func (c *deadlineConn) Read(b []byte) (int, error) {
	if c.readTimeout > 0 {
		c.Conn.SetReadDeadline(time.Now().Add(c.readTimeout))
	}
	return c.Conn.Read(b)
}

func (c *deadlineConn) Write(b []byte) (int, error) {
	if c.writeTimeout > 0 {
		c.Conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	}
	return c.Conn.Write(b)
}
