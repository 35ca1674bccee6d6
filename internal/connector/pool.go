package connector

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/sync/singleflight"

	"github.com/Haofei/volo-go/internal/rpcinfo"
)

var (
	poolDialsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "volo_connector_pool_dials_total",
		Help: "Total dial attempts issued by the connector pool.",
	})
	poolDialErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "volo_connector_pool_dial_errors_total",
		Help: "Total dial failures observed by the connector pool.",
	})
	poolActiveConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "volo_connector_pool_active_connections",
		Help: "Connections currently checked out of the connector pool.",
	})
)

// pooledConn pairs a live connection with its lease bookkeeping, mirroring
// the teacher's per-address idle-connection slot.
type pooledConn struct {
	conn      net.Conn
	createdAt time.Time
	lastUsed  time.Time
}

// Pool is a bounded, deduplicated connection cache keyed by PeerInfo. Keys
// are hashed with xxhash into a fixed-size LRU so that a pool serving many
// distinct peers can't grow without bound; concurrent dials to the same
// peer are collapsed via singleflight so a cache-cold burst of calls opens
// one connection, not N (spec section 5, "Connector pooling").
type Pool struct {
	inner Connector

	mu    sync.Mutex
	cache *lru.Cache[uint64, []*pooledConn]

	group singleflight.Group

	maxIdlePerKey int
	maxIdleTime   time.Duration
	maxLifetime   time.Duration
}

// PoolConfig configures Pool's bounds.
type PoolConfig struct {
	MaxKeys       int
	MaxIdlePerKey int
	MaxIdleTime   time.Duration
	MaxLifetime   time.Duration
}

// DefaultPoolConfig mirrors the teacher's connection-pool defaults.
var DefaultPoolConfig = PoolConfig{
	MaxKeys:       1024,
	MaxIdlePerKey: 10,
	MaxIdleTime:   90 * time.Second,
	MaxLifetime:   10 * time.Minute,
}

// NewPool wraps inner with a bounded idle-connection cache.
func NewPool(inner Connector, cfg PoolConfig) *Pool {
	if cfg.MaxKeys <= 0 {
		cfg.MaxKeys = DefaultPoolConfig.MaxKeys
	}
	if cfg.MaxIdlePerKey <= 0 {
		cfg.MaxIdlePerKey = DefaultPoolConfig.MaxIdlePerKey
	}
	if cfg.MaxIdleTime <= 0 {
		cfg.MaxIdleTime = DefaultPoolConfig.MaxIdleTime
	}
	if cfg.MaxLifetime <= 0 {
		cfg.MaxLifetime = DefaultPoolConfig.MaxLifetime
	}

	cache, _ := lru.NewWithEvict[uint64, []*pooledConn](cfg.MaxKeys, func(_ uint64, evicted []*pooledConn) {
		for _, pc := range evicted {
			pc.conn.Close()
		}
	})

	return &Pool{
		inner:         inner,
		cache:         cache,
		maxIdlePerKey: cfg.MaxIdlePerKey,
		maxIdleTime:   cfg.MaxIdleTime,
		maxLifetime:   cfg.MaxLifetime,
	}
}

// peerKey hashes the fields of a PeerInfo that determine connection
// identity into a single uint64 LRU key.
func peerKey(peer rpcinfo.PeerInfo) uint64 {
	h := xxhash.New()
	h.WriteString(peer.Scheme)
	h.WriteString(peer.Address.String())
	h.WriteString(peer.TLSName)
	return h.Sum64()
}

// Call returns a pooled idle connection for peer if one is valid, otherwise
// dials a new one through inner. Concurrent calls for the same peer that
// miss the idle cache share a single in-flight dial.
func (p *Pool) Call(ctx context.Context, peer rpcinfo.PeerInfo) (net.Conn, error) {
	key := peerKey(peer)

	if conn, ok := p.take(key); ok {
		poolActiveConns.Inc()
		return &pooledReturn{Conn: conn, pool: p, key: key}, nil
	}

	dialKey := strconv.FormatUint(key, 10)
	v, err, _ := p.group.Do(dialKey, func() (interface{}, error) {
		poolDialsTotal.Inc()
		conn, err := p.inner.Call(ctx, peer)
		if err != nil {
			poolDialErrorsTotal.Inc()
			return nil, err
		}
		return conn, nil
	})
	if err != nil {
		return nil, err
	}

	poolActiveConns.Inc()
	return &pooledReturn{Conn: v.(net.Conn), pool: p, key: key}, nil
}

// take pops a still-valid idle connection for key, if any.
func (p *Pool) take(key uint64) (net.Conn, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	conns, ok := p.cache.Get(key)
	if !ok || len(conns) == 0 {
		return nil, false
	}

	pc := conns[len(conns)-1]
	conns = conns[:len(conns)-1]
	if len(conns) > 0 {
		p.cache.Add(key, conns)
	} else {
		p.cache.Remove(key)
	}

	if !p.valid(pc) {
		pc.conn.Close()
		return p.take(key)
	}
	return pc.conn, true
}

func (p *Pool) valid(pc *pooledConn) bool {
	now := time.Now()
	if now.Sub(pc.lastUsed) > p.maxIdleTime {
		return false
	}
	if now.Sub(pc.createdAt) > p.maxLifetime {
		return false
	}
	return true
}

// release returns conn to the idle cache for key, closing it instead if the
// per-key slot is already full.
func (p *Pool) release(key uint64, conn net.Conn) {
	poolActiveConns.Dec()

	p.mu.Lock()
	defer p.mu.Unlock()

	conns, _ := p.cache.Get(key)
	if len(conns) >= p.maxIdlePerKey {
		conn.Close()
		return
	}

	p.cache.Add(key, append(conns, &pooledConn{
		conn:      conn,
		createdAt: time.Now(),
		lastUsed:  time.Now(),
	}))
}

// pooledReturn wraps a connection leased from a Pool, returning it to the
// idle cache on Close instead of tearing it down.
type pooledReturn struct {
	net.Conn
	pool   *Pool
	key    uint64
	closed bool
	mu     sync.Mutex
}

func (c *pooledReturn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.pool.release(c.key, c.Conn)
	return nil
}
