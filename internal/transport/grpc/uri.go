package grpc

import (
	"encoding/hex"
	"net/url"

	"github.com/Haofei/volo-go/internal/rpcinfo"
	"github.com/Haofei/volo-go/internal/status"
	"google.golang.org/grpc/codes"
)

// buildURI constructs the outbound request URI per spec section 4.1: IP
// addresses get scheme "http" with authority "ip:port"; Unix sockets get
// scheme "http+unix" with the hex-encoded path as authority. path already
// contains any query component and is used verbatim.
func buildURI(addr rpcinfo.Address, path string) (*url.URL, error) {
	u, err := url.Parse(path)
	if err != nil {
		return nil, status.New(codes.Internal, "invalid method path: "+err.Error()).Err()
	}

	switch addr.Network {
	case rpcinfo.NetworkIP:
		u.Scheme = "http"
		u.Host = addr.IP
	case rpcinfo.NetworkUnix:
		u.Scheme = "http+unix"
		u.Host = hex.EncodeToString([]byte(addr.Path))
	default:
		return nil, status.New(codes.Internal, "unknown address network").Err()
	}
	return u, nil
}
