// Package thriftclient pools outbound Thrift connections per backend,
// dialed through the connector package rather than Thrift's own TSocket,
// so the same scheme-aware Plain/TLS dispatch used by the gRPC transport
// applies to Thrift clients too.
package thriftclient

import (
	"context"
	"fmt"
	"net"
	"sync"

	athrift "github.com/apache/thrift/lib/go/thrift"

	"github.com/Haofei/volo-go/internal/connector"
	"github.com/Haofei/volo-go/internal/rpcinfo"
)

// TransportKind selects the outer Thrift transport framing.
type TransportKind int

const (
	TransportFramed TransportKind = iota
	TransportBuffered
)

// ProtocolKind selects the inner Thrift wire protocol.
type ProtocolKind int

const (
	ProtocolBinary ProtocolKind = iota
	ProtocolCompact
)

// PoolConfig configures how a Pool wraps dialed connections. Conf may be
// nil; Thrift's protocol/transport constructors treat that as defaults.
type PoolConfig struct {
	Transport TransportKind
	Protocol  ProtocolKind
	Conf      *athrift.TConfiguration
}

// connEntry is one pooled connection: a transport plus the input/output
// protocols layered on it. Thrift's wire protocol is not multiplexed onto
// a connection, so callers must hold mu for the duration of one
// request/response round-trip.
type connEntry struct {
	mu        sync.Mutex
	transport athrift.TTransport
	iprot     athrift.TProtocol
	oprot     athrift.TProtocol
}

// Acquire locks the entry and returns its protocol pair plus a release
// function the caller must defer.
func (e *connEntry) Acquire() (iprot, oprot athrift.TProtocol, release func()) {
	e.mu.Lock()
	return e.iprot, e.oprot, e.mu.Unlock
}

// Pool is a per-backend cache of open Thrift connections, keyed by peer
// address. Grounded on the teacher's thrift translator connection cache
// (sync.Map + IsOpen + recreate-on-close), adapted to dial through a
// connector.Connector instead of constructing a TSocket directly.
type Pool struct {
	conn    connector.Connector
	cfg     PoolConfig
	entries sync.Map // string (peer address) -> *connEntry
}

// NewPool builds a Pool dialing through conn and wrapping connections per
// cfg's transport/protocol choice.
func NewPool(conn connector.Connector, cfg PoolConfig) *Pool {
	return &Pool{conn: conn, cfg: cfg}
}

// Get returns the pooled connection for peer, dialing and wrapping a fresh
// one if none is cached or the cached one has been closed underneath us.
func (p *Pool) Get(ctx context.Context, peer rpcinfo.PeerInfo) (*connEntry, error) {
	key := peer.Address.String()

	if existing, ok := p.entries.Load(key); ok {
		entry := existing.(*connEntry)
		if entry.transport.IsOpen() {
			return entry, nil
		}
		p.entries.Delete(key)
	}

	raw, err := p.conn.Call(ctx, peer)
	if err != nil {
		return nil, err
	}

	transport := wrapTransport(raw, p.cfg)
	if err := transport.Open(); err != nil {
		raw.Close()
		return nil, fmt.Errorf("thriftclient: open transport to %s: %w", key, err)
	}
	iprot, oprot := wrapProtocol(transport, p.cfg)

	entry := &connEntry{transport: transport, iprot: iprot, oprot: oprot}
	actual, loaded := p.entries.LoadOrStore(key, entry)
	if loaded {
		transport.Close()
		return actual.(*connEntry), nil
	}
	return entry, nil
}

// Close tears down and forgets every pooled connection.
func (p *Pool) Close() {
	p.entries.Range(func(key, value any) bool {
		value.(*connEntry).transport.Close()
		p.entries.Delete(key)
		return true
	})
}

func wrapTransport(conn net.Conn, cfg PoolConfig) athrift.TTransport {
	base := &connTransport{Conn: conn}
	if cfg.Transport == TransportBuffered {
		return athrift.NewTBufferedTransport(base, 4096)
	}
	return athrift.NewTFramedTransportConf(base, cfg.Conf)
}

func wrapProtocol(transport athrift.TTransport, cfg PoolConfig) (iprot, oprot athrift.TProtocol) {
	if cfg.Protocol == ProtocolCompact {
		return athrift.NewTCompactProtocolConf(transport, cfg.Conf), athrift.NewTCompactProtocolConf(transport, cfg.Conf)
	}
	return athrift.NewTBinaryProtocolConf(transport, cfg.Conf), athrift.NewTBinaryProtocolConf(transport, cfg.Conf)
}

// connTransport adapts a net.Conn already produced by the connector layer
// to Thrift's TTransport interface; Open/Close/IsOpen track pool-visible
// liveness rather than performing any dialing of their own.
type connTransport struct {
	net.Conn
	open bool
}

func (c *connTransport) Open() error {
	c.open = true
	return nil
}

func (c *connTransport) IsOpen() bool {
	return c.open
}

func (c *connTransport) Close() error {
	c.open = false
	return c.Conn.Close()
}

func (c *connTransport) Flush(context.Context) error {
	return nil
}

func (c *connTransport) RemainingBytes() uint64 {
	return 0
}
