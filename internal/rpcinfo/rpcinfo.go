package rpcinfo

// Role determines default codec behavior: clients always frame Thrift
// messages, servers mirror whatever shape they received.
type Role int

const (
	RoleClient Role = iota
	RoleServer
)

func (r Role) String() string {
	if r == RoleServer {
		return "server"
	}
	return "client"
}

// RPCInfo is the immutable-per-call description of who is being called and
// how, threaded through the call context.
type RPCInfo struct {
	Callee PeerInfo
	Method string
	Config Config
}

// CalleeAddress returns the callee's address, and whether one was set. The
// gRPC transport's first step (spec section 4.1, step 1) depends on this.
func (r RPCInfo) CalleeAddress() (Address, bool) {
	if r.Callee.Address == (Address{}) {
		return Address{}, false
	}
	return r.Callee.Address, true
}
