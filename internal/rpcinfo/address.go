// Package rpcinfo holds the per-call target, config and role that the
// transport layers consult but never mutate concurrently.
package rpcinfo

import "fmt"

// Network identifies the transport family of a PeerInfo address.
type Network int

const (
	// NetworkIP addresses a TCP/IP host:port endpoint.
	NetworkIP Network = iota
	// NetworkUnix addresses a Unix domain socket path.
	NetworkUnix
)

func (n Network) String() string {
	switch n {
	case NetworkIP:
		return "ip"
	case NetworkUnix:
		return "unix"
	default:
		return "unknown"
	}
}

// Address is the tagged union of peer address shapes this runtime dials.
// Go has no sum types, so the Network tag selects which field is valid.
type Address struct {
	Network Network
	IP      string // "host:port", valid when Network == NetworkIP
	Path    string // filesystem path, valid when Network == NetworkUnix
}

// IPAddress builds an Address for a TCP/IP endpoint.
func IPAddress(hostport string) Address {
	return Address{Network: NetworkIP, IP: hostport}
}

// UnixAddress builds an Address for a Unix domain socket.
func UnixAddress(path string) Address {
	return Address{Network: NetworkUnix, Path: path}
}

func (a Address) String() string {
	switch a.Network {
	case NetworkUnix:
		return a.Path
	default:
		return a.IP
	}
}

// PeerInfo is the immutable triple consumed by the connector: scheme,
// address, and an optional TLS server name for SNI/certificate validation.
type PeerInfo struct {
	Scheme  string // "http" or "https"
	Address Address
	TLSName string
}

func (p PeerInfo) String() string {
	return fmt.Sprintf("%s://%s", p.Scheme, p.Address)
}
