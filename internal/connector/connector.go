// Package connector is the scheme-aware connection factory: given a peer
// descriptor it produces a ready, byte-oriented duplex connection, dialing
// plain TCP/Unix or upgrading to TLS depending on the variant built.
package connector

import (
	"context"
	"net"

	"github.com/Haofei/volo-go/internal/rpcinfo"
)

// Connector is the single capability both the Plain and TLS variants share:
// turn a PeerInfo into a live connection. Builder picks the variant at
// construction time; calls then go through this interface's dynamic method
// dispatch, not a switch over a closed set of variants.
type Connector interface {
	Call(ctx context.Context, peer rpcinfo.PeerInfo) (net.Conn, error)
}
